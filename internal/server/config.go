package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete server configuration.
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Tables []TableConfig  `hcl:"table,block"`
}

// ServerSettings contains server-level configuration.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// TableConfig defines one poker table.
type TableConfig struct {
	Name            string `hcl:"name,label"`
	Seats           int    `hcl:"seats,optional"`
	SmallBlind      int    `hcl:"small_blind"`
	BigBlind        int    `hcl:"big_blind"`
	StartingStack   int    `hcl:"starting_stack,optional"`
	HandLimit       int    `hcl:"hand_limit,optional"`
	ActionTimeoutMS int    `hcl:"action_timeout_ms,optional"`
}

// ActionTimeout returns the per-decision clock, or zero for no clock.
func (t TableConfig) ActionTimeout() time.Duration {
	return time.Duration(t.ActionTimeoutMS) * time.Millisecond
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Tables: []TableConfig{
			{
				Name:            "main",
				Seats:           6,
				SmallBlind:      1,
				BigBlind:        2,
				StartingStack:   200,
				ActionTimeoutMS: 30000,
			},
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to
// defaults when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}

	for i := range config.Tables {
		if config.Tables[i].Seats == 0 {
			config.Tables[i].Seats = 6
		}
		if config.Tables[i].StartingStack == 0 {
			config.Tables[i].StartingStack = config.Tables[i].BigBlind * 100
		}
	}

	return &config, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}

	for _, table := range c.Tables {
		if table.SmallBlind <= 0 {
			return fmt.Errorf("table %s: small blind must be positive", table.Name)
		}
		if table.BigBlind < table.SmallBlind {
			return fmt.Errorf("table %s: big blind must be at least the small blind", table.Name)
		}
		if table.Seats < 2 || table.Seats > 10 {
			return fmt.Errorf("table %s: seats must be between 2 and 10", table.Name)
		}
		if table.StartingStack < table.BigBlind {
			return fmt.Errorf("table %s: starting stack must cover the big blind", table.Name)
		}
		if table.ActionTimeoutMS < 0 {
			return fmt.Errorf("table %s: action timeout cannot be negative", table.Name)
		}
	}
	return nil
}

// ListenAddress returns the host:port the server binds to.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
