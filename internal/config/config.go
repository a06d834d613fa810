package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type I2C struct {
	Bus  string `yaml:"bus,omitempty"`  // e.g. I2C1, empty for the first bus found
	Addr uint16 `yaml:"addr,omitempty"` // e.g. 0x40

	// Board channels the three servos are wired to.
	Channels []int `yaml:"channels,omitempty"`
}

type Config struct {
	Driver   string `yaml:"driver"` // "gpio" | "pca9685" | "sim"
	LogLevel string `yaml:"log_level,omitempty"`
	I2C      I2C    `yaml:"i2c,omitempty"`
}

func Default() *Config {
	return &Config{
		Driver:   "gpio",
		LogLevel: "info",
		I2C:      I2C{Channels: []int{0, 1, 2}},
	}
}

// Load reads path over the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	return c, nil
}
