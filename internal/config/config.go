package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application. Values are layered:
// defaults, then the optional YAML config file, then environment
// variables. Command flags override on top of the loaded Config.
type Config struct {
	// Observability
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	// Parse run
	ReportDir     string `yaml:"report_dir"`      // directory searched for login reports
	OutputPath    string `yaml:"output_path"`     // CSV output file
	PortWWNFilter string `yaml:"port_wwn_filter"` // regexp applied to portWwn before export
	StatePath     string `yaml:"state_path"`      // parse state db; empty disables incremental skip

	// Collector
	SymcliPath     string   `yaml:"symcli_path"`     // explicit SYMCLI location; empty means auto-discover
	CheckpointPath string   `yaml:"checkpoint_path"` // collection checkpoint file; empty disables
	ArrayFamilies  []string `yaml:"array_families"`  // array family tags recognized in symcfg inventory

	// Tracing
	TracingEnabled  bool   `yaml:"tracing_enabled"`
	TracingEndpoint string `yaml:"tracing_endpoint"`
	TracingProtocol string `yaml:"tracing_protocol"` // "grpc" or "http"

	// ClickHouse export (optional second sink next to the CSV)
	ClickHouseEnabled  bool   `yaml:"clickhouse_enabled"`
	ClickHouseHost     string `yaml:"clickhouse_host"`
	ClickHousePort     int    `yaml:"clickhouse_port"`
	ClickHouseDB       string `yaml:"clickhouse_db"`
	ClickHouseTable    string `yaml:"clickhouse_table"`
	ClickHouseUser     string `yaml:"clickhouse_user"`
	ClickHousePassword string `yaml:"clickhouse_password"`
}

// Load builds the configuration from defaults, the optional YAML file at
// configFile, and environment variables, in that order of precedence.
func Load(configFile string) (*Config, error) {
	cfg := defaults()

	if configFile != "" {
		if err := cfg.loadFile(configFile); err != nil {
			return nil, err
		}
	}
	cfg.loadEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		LogLevel: "info",

		ReportDir:  ".",
		OutputPath: "logins.csv",

		CheckpointPath: "collect-checkpoint.yaml",
		ArrayFamilies:  []string{"VMAX", "PowerMax"},

		TracingProtocol: "grpc",

		ClickHouseHost:  "localhost",
		ClickHousePort:  9000,
		ClickHouseDB:    "logs",
		ClickHouseTable: "fc_logins",
		ClickHouseUser:  "default",
	}
}

// loadFile overlays the YAML config file onto cfg. Keys absent from the
// file keep their current values.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// loadEnv overlays environment variables onto cfg.
func (c *Config) loadEnv() {
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)

	c.ReportDir = getEnv("REPORT_DIR", c.ReportDir)
	c.OutputPath = getEnv("OUTPUT_PATH", c.OutputPath)
	c.PortWWNFilter = getEnv("PORT_WWN_FILTER", c.PortWWNFilter)
	c.StatePath = getEnv("STATE_PATH", c.StatePath)

	c.SymcliPath = getEnv("SYMCLI_PATH", c.SymcliPath)
	c.CheckpointPath = getEnv("CHECKPOINT_PATH", c.CheckpointPath)
	if families := os.Getenv("ARRAY_FAMILIES"); families != "" {
		c.ArrayFamilies = parseList(families)
	}

	c.TracingEnabled = getEnvBool("TRACING_ENABLED", c.TracingEnabled)
	c.TracingEndpoint = getEnv("TRACING_ENDPOINT", c.TracingEndpoint)
	c.TracingProtocol = getEnv("TRACING_PROTOCOL", c.TracingProtocol)

	c.ClickHouseEnabled = getEnvBool("CLICKHOUSE_ENABLED", c.ClickHouseEnabled)
	c.ClickHouseHost = getEnv("CLICKHOUSE_HOST", c.ClickHouseHost)
	c.ClickHousePort = getEnvInt("CLICKHOUSE_PORT", c.ClickHousePort)
	c.ClickHouseDB = getEnv("CLICKHOUSE_DB", c.ClickHouseDB)
	c.ClickHouseTable = getEnv("CLICKHOUSE_TABLE", c.ClickHouseTable)
	c.ClickHouseUser = getEnv("CLICKHOUSE_USER", c.ClickHouseUser)
	c.ClickHousePassword = getEnv("CLICKHOUSE_PASSWORD", c.ClickHousePassword)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.OutputPath == "" {
		return fmt.Errorf("OUTPUT_PATH is required")
	}
	if c.PortWWNFilter != "" {
		if _, err := regexp.Compile(c.PortWWNFilter); err != nil {
			return fmt.Errorf("PORT_WWN_FILTER is not a valid regular expression: %w", err)
		}
	}
	if len(c.ArrayFamilies) == 0 {
		return fmt.Errorf("ARRAY_FAMILIES must name at least one array family tag")
	}
	if c.TracingEnabled && c.TracingProtocol != "grpc" && c.TracingProtocol != "http" {
		return fmt.Errorf("TRACING_PROTOCOL must be 'grpc' or 'http', got %q", c.TracingProtocol)
	}
	if c.ClickHouseEnabled {
		if c.ClickHouseHost == "" {
			return fmt.Errorf("CLICKHOUSE_HOST is required when ClickHouse export is enabled")
		}
		if c.ClickHousePort <= 0 || c.ClickHousePort > 65535 {
			return fmt.Errorf("CLICKHOUSE_PORT must be between 1 and 65535")
		}
		if c.ClickHouseDB == "" {
			return fmt.Errorf("CLICKHOUSE_DB is required when ClickHouse export is enabled")
		}
		if c.ClickHouseTable == "" {
			return fmt.Errorf("CLICKHOUSE_TABLE is required when ClickHouse export is enabled")
		}
	}
	return nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable or returns a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// parseList parses a semicolon-separated list.
func parseList(s string) []string {
	parts := strings.Split(s, ";")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
