// internal/dtmf/tones_test.go
package dtmf

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestToneToChar_RoundTrip(t *testing.T) {
	tests := []struct {
		mask uint8
		want byte
	}{
		{0x11, '1'}, {0x21, '2'}, {0x41, '3'}, {0x81, 'A'},
		{0x12, '4'}, {0x22, '5'}, {0x42, '6'}, {0x82, 'B'},
		{0x14, '7'}, {0x24, '8'}, {0x44, '9'}, {0x84, 'C'},
		{0x18, '*'}, {0x28, '0'}, {0x48, '#'}, {0x88, 'D'},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, ToneToChar(tt.mask), "mask %08b", tt.mask)
		})
	}
}

func TestToneToChar_Unmapped(t *testing.T) {
	tests := []struct {
		name string
		mask uint8
	}{
		{"no bits", 0x00},
		{"all bits", 0xFF},
		{"single row", 0x01},
		{"single column", 0x10},
		{"two rows", 0x03},
		{"two columns", 0x30},
		{"row pair plus column", 0x13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, NoSymbol, ToneToChar(tt.mask), "mask %08b", tt.mask)
		})
	}
}

func TestToneToChar_OnlyRowColumnPairsMap(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		mask := rapid.Uint8().Draw(t, "mask")

		ch := ToneToChar(mask)
		rowColPair := bits.OnesCount8(mask&0x0F) == 1 && bits.OnesCount8(mask&0xF0) == 1
		if rowColPair && ch == NoSymbol {
			t.Fatalf("mask %08b is a row+column pair but has no symbol", mask)
		}
		if !rowColPair && ch != NoSymbol {
			t.Fatalf("mask %08b is not a row+column pair but mapped to %q", mask, ch)
		}
	})
}
