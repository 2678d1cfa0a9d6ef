// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	AppName       = "phonedtmf"
	ConfigType    = "yaml"
	DefaultConfig = `# phoneDTMF Configuration

# Input backend: "audio" samples a capture device, "serial" reads a
# serial-attached microcontroller streaming raw ADC values.
input: "audio"

# Serial backend
serial_port: ""         # e.g. /dev/ttyACM0
baud_rate: 460800       # must match the firmware's UART configuration

# Audio backend
device_index: -1        # -1 for default capture device
sample_rate: 48000      # card rate in Hz; the engine paces itself below this
buffer_size: 512        # capture frames per callback

# Detection engine
pin: 0                  # analog pin identifier passed to the sampler
sample_count: 256       # samples per detection block; 256 gives the
                        # millisecond clock enough resolution for the
                        # rate-adjust loop to settle
max_frequency: 6000     # target sample rate ceiling in Hz
calibration_passes: 250 # rate-adjust iteration cap before giving up
threshold: -1           # detection threshold; negative = automatic
                        # (twice the block's mean magnitude)

# Listener
debounce_blocks: 2      # consecutive agreeing blocks to accept a key

# Output
debug: false            # enable debug output
`
)

// Settings holds all application configuration
type Settings struct {
	// Input backend selection
	Input string `mapstructure:"input"`

	// Serial backend
	SerialPort string `mapstructure:"serial_port"`
	BaudRate   int    `mapstructure:"baud_rate"`

	// Audio backend
	DeviceIndex int `mapstructure:"device_index"`
	SampleRate  int `mapstructure:"sample_rate"`
	BufferSize  int `mapstructure:"buffer_size"`

	// Detection engine
	Pin               int     `mapstructure:"pin"`
	SampleCount       int     `mapstructure:"sample_count"`
	MaxFrequency      float64 `mapstructure:"max_frequency"`
	CalibrationPasses int     `mapstructure:"calibration_passes"`
	Threshold         float64 `mapstructure:"threshold"`

	// Listener
	DebounceBlocks int `mapstructure:"debounce_blocks"`

	// Output
	Debug bool `mapstructure:"debug"`
}

// Init initializes Viper with defaults and config file.
// Config file search order: current directory, then ~/.config/phonedtmf/
func Init() error {
	viper.SetDefault("input", "audio")
	viper.SetDefault("serial_port", "")
	viper.SetDefault("baud_rate", 460800)
	viper.SetDefault("device_index", -1)
	viper.SetDefault("sample_rate", 48000)
	viper.SetDefault("buffer_size", 512)
	viper.SetDefault("pin", 0)
	viper.SetDefault("sample_count", 256)
	viper.SetDefault("max_frequency", 6000)
	viper.SetDefault("calibration_passes", 250)
	viper.SetDefault("threshold", -1.0)
	viper.SetDefault("debounce_blocks", 2)
	viper.SetDefault("debug", false)

	viper.SetConfigType(ConfigType)

	// Priority order: current directory first, then XDG config
	viper.AddConfigPath(".")

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	viper.AddConfigPath(filepath.Join(configDir, AppName))

	// Try .config.yaml first (hidden file), then config.yaml
	viper.SetConfigName(".config")
	if err = viper.ReadInConfig(); err != nil {
		viper.SetConfigName("config")
		err = viper.ReadInConfig()
	}

	// Read config file - if not found, create default in XDG config dir
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			xdgConfigPath := filepath.Join(configDir, AppName)
			if err = ensureConfigExists(xdgConfigPath); err != nil {
				return err
			}
			if err = viper.ReadInConfig(); err != nil {
				return fmt.Errorf("read config: %w", err)
			}
		} else {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return nil
}

func ensureConfigExists(configPath string) error {
	configFile := filepath.Join(configPath, "config.yaml")

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err = os.MkdirAll(configPath, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		if err = os.WriteFile(configFile, []byte(DefaultConfig), 0644); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	}
	return nil
}

// Get returns the current settings
func Get() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &s, nil
}

// Validate checks that all settings are within acceptable ranges
func (s *Settings) Validate() error {
	var errs []error

	switch s.Input {
	case "audio", "serial":
	default:
		errs = append(errs, fmt.Errorf("input must be \"audio\" or \"serial\", got %q", s.Input))
	}

	if s.Input == "serial" && s.SerialPort == "" {
		errs = append(errs, errors.New("serial_port is required when input is \"serial\""))
	}
	if s.BaudRate <= 0 {
		errs = append(errs, fmt.Errorf("baud_rate must be positive, got %d", s.BaudRate))
	}

	if s.SampleRate < 8000 || s.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("sample_rate must be between 8000 and 192000 Hz, got %d", s.SampleRate))
	}
	if s.BufferSize < 64 || s.BufferSize > 8192 {
		errs = append(errs, fmt.Errorf("buffer_size must be between 64 and 8192, got %d", s.BufferSize))
	}

	if s.Pin < 0 {
		errs = append(errs, fmt.Errorf("pin must be non-negative, got %d", s.Pin))
	}
	if s.SampleCount < 16 || s.SampleCount > 1024 {
		errs = append(errs, fmt.Errorf("sample_count must be between 16 and 1024, got %d", s.SampleCount))
	}
	// The highest DTMF tone is 1633 Hz; the target rate must clear
	// Nyquist for it with margin.
	if s.MaxFrequency < 3300 || s.MaxFrequency > 50000 {
		errs = append(errs, fmt.Errorf("max_frequency must be between 3300 and 50000 Hz, got %v", s.MaxFrequency))
	}
	if s.CalibrationPasses < 1 || s.CalibrationPasses > 10000 {
		errs = append(errs, fmt.Errorf("calibration_passes must be between 1 and 10000, got %d", s.CalibrationPasses))
	}
	if s.Threshold == 0 {
		errs = append(errs, errors.New("threshold must be negative (automatic) or positive, got 0"))
	}

	if s.DebounceBlocks < 1 || s.DebounceBlocks > 50 {
		errs = append(errs, fmt.Errorf("debounce_blocks must be between 1 and 50, got %d", s.DebounceBlocks))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
