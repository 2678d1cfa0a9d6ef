// internal/dtmf/tones.go
// Package dtmf implements a self-calibrating Goertzel detector for
// DTMF (touch tone) keypad signals read from an analog line.
//
// The engine measures the host's real achievable sample rate during
// calibration, paces the sampling loop to a target rate, and classifies
// fixed-size blocks of samples into a per-tone detection bitmask.
package dtmf

// NumTones is the size of the DTMF frequency set: four row tones and
// four column tones.
const NumTones = 8

// Tones lists the standard DTMF frequencies in Hz, rows first.
// A tone's index in this array is its identity throughout the package,
// including its bit position in detection masks.
var Tones = [NumTones]float32{697, 770, 852, 941, 1209, 1336, 1477, 1633}

// NoSymbol is returned by ToneToChar for bit patterns that do not map
// to a keypad character.
const NoSymbol byte = 0

// symbol pairs one row+column bit pattern with its keypad character.
type symbol struct {
	mask uint8
	ch   byte
}

// symbolTable covers the full 4x4 keypad. Rows occupy bits 0-3
// (697-941 Hz), columns bits 4-7 (1209-1633 Hz).
var symbolTable = [2 * NumTones]symbol{
	{0x11, '1'}, {0x21, '2'}, {0x41, '3'}, {0x81, 'A'},
	{0x12, '4'}, {0x22, '5'}, {0x42, '6'}, {0x82, 'B'},
	{0x14, '7'}, {0x24, '8'}, {0x44, '9'}, {0x84, 'C'},
	{0x18, '*'}, {0x28, '0'}, {0x48, '#'}, {0x88, 'D'},
}

// ToneToChar translates a detection bitmask into the keypad character
// it represents. Only exact matches count; anything else, including a
// zero mask or a mask with extra bits set, returns NoSymbol.
func ToneToChar(mask uint8) byte {
	for _, s := range symbolTable {
		if s.mask == mask {
			return s.ch
		}
	}
	return NoSymbol
}
