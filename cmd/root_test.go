// cmd/root_test.go
package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func resetViperForTest() {
	viper.Reset()
}

func writeTestConfig(t *testing.T, content string) {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, ".config"))
	configDir := filepath.Join(tmpDir, ".config", "phonedtmf")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestRootCmd_HasExpectedFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	tests := []struct {
		name      string
		shorthand string
	}{
		{"input", "i"},
		{"port", "p"},
		{"device", "d"},
		{"max-frequency", "f"},
		{"debug", "D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := flags.Lookup(tt.name)
			if flag == nil {
				t.Errorf("flag %q not found", tt.name)
				return
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("flag %q shorthand = %q, want %q", tt.name, flag.Shorthand, tt.shorthand)
			}
		})
	}
}

func TestRootCmd_Properties(t *testing.T) {
	if rootCmd.Use != "phonedtmf" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "phonedtmf")
	}
	if rootCmd.Short == "" {
		t.Error("rootCmd.Short is empty")
	}
	if rootCmd.Long == "" {
		t.Error("rootCmd.Long is empty")
	}
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	want := map[string]bool{"listen": false, "calibrate": false, "devices": false}
	for _, sub := range rootCmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCmd_HelpOutput(t *testing.T) {
	resetViperForTest()
	writeTestConfig(t, "")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"--help"})

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("Execute() with --help error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{"phonedtmf", "--device", "--max-frequency", "listen", "calibrate"} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestRootCmd_FlagDefaults(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	tests := []struct {
		name         string
		defaultValue string
	}{
		{"input", "audio"},
		{"port", ""},
		{"device", "-1"},
		{"max-frequency", "6000"},
		{"debug", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := flags.Lookup(tt.name)
			if flag == nil {
				t.Fatalf("flag %q not found", tt.name)
			}
			if flag.DefValue != tt.defaultValue {
				t.Errorf("flag %q default = %q, want %q", tt.name, flag.DefValue, tt.defaultValue)
			}
		})
	}
}

func TestRootCmd_FlagDescriptions(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	for _, name := range []string{"input", "port", "device", "max-frequency", "debug"} {
		t.Run(name, func(t *testing.T) {
			flag := flags.Lookup(name)
			if flag == nil {
				t.Fatalf("flag %q not found", name)
			}
			if flag.Usage == "" {
				t.Errorf("flag %q has no description", name)
			}
		})
	}
}

func TestInitConfig(t *testing.T) {
	resetViperForTest()
	writeTestConfig(t, "sample_count: 128")

	// Should not panic
	initConfig()

	if viper.GetInt("sample_count") != 128 {
		t.Errorf("viper.GetInt(sample_count) = %d, want 128", viper.GetInt("sample_count"))
	}
}

func TestListenCmd_InvalidConfig(t *testing.T) {
	resetViperForTest()
	// sample_count far out of range fails validation before any
	// hardware is touched.
	writeTestConfig(t, "sample_count: 1000000")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"listen"})

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for invalid config, got nil")
	}
	if !strings.Contains(err.Error(), "config") {
		t.Errorf("expected config error, got: %v", err)
	}
}

func TestListenCmd_SerialWithoutPort(t *testing.T) {
	resetViperForTest()
	writeTestConfig(t, "input: serial")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"listen"})

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for serial input without a port, got nil")
	}
	if !strings.Contains(err.Error(), "serial_port") {
		t.Errorf("expected serial_port error, got: %v", err)
	}
}
