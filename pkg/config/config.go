package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"AtlasQuant/internal/services/analytics"
	"AtlasQuant/internal/services/execution"
	"AtlasQuant/internal/services/marketdata"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	MarketData struct {
		BaseURL   string        `yaml:"base_url"`
		Timeout   time.Duration `yaml:"timeout"`
		UserAgent string        `yaml:"user_agent"`
		CacheTTL  time.Duration `yaml:"cache_ttl"`
	} `yaml:"marketdata"`
	Tape struct {
		Enabled        bool          `yaml:"enabled"`
		URL            string        `yaml:"url"`
		Token          string        `yaml:"token"`
		Symbols        []string      `yaml:"symbols"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
		MaxRPS         int           `yaml:"max_rps"`
		BufferSize     int           `yaml:"buffer_size"`
		LastPriceTTL   time.Duration `yaml:"last_price_ttl"`
	} `yaml:"tape"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		ReportTopic  string   `yaml:"report_topic"`
		IntentTopic  string   `yaml:"intent_topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
		LedgerTable      string        `yaml:"ledger_table"`
		UniverseTable    string        `yaml:"universe_table"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Risk struct {
		Profiles         map[string]analytics.Profile `yaml:"profiles"`
		RuinThresholdPct float64                      `yaml:"ruin_threshold_pct"`
		Weights          analytics.Weights            `yaml:"weights"`
	} `yaml:"risk"`
	Safety execution.SafetyConfig `yaml:"safety"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("MARKETDATA_BASE_URL"); v != "" {
		c.MarketData.BaseURL = v
	}
	if v := os.Getenv("TAPE_TOKEN"); v != "" {
		c.Tape.Token = v
	}
	if v := os.Getenv("TAPE_SYMBOLS"); v != "" {
		c.Tape.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}

	return c, nil
}

// MarketDataConfig maps the marketdata section onto the bar-source config.
func (c *Config) MarketDataConfig() marketdata.Config {
	return marketdata.Config{
		BaseURL:   c.MarketData.BaseURL,
		Timeout:   c.MarketData.Timeout,
		UserAgent: c.MarketData.UserAgent,
	}
}

// TapeStreamConfig maps the tape section onto the stream config.
func (c *Config) TapeStreamConfig() marketdata.StreamConfig {
	return marketdata.StreamConfig{
		URL:            c.Tape.URL,
		Token:          c.Tape.Token,
		Symbols:        c.Tape.Symbols,
		ReconnectDelay: c.Tape.ReconnectDelay,
		PingInterval:   c.Tape.PingInterval,
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.MarketData.CacheTTL == 0 {
		c.MarketData.CacheTTL = 10 * time.Minute
	}
	if len(c.Risk.Profiles) == 0 {
		c.Risk.Profiles = analytics.DefaultProfiles()
	}
	if c.Risk.RuinThresholdPct == 0 {
		c.Risk.RuinThresholdPct = analytics.DefaultRuinThresholdPct
	}
	if c.Risk.Weights.Sum() == 0 {
		c.Risk.Weights = analytics.DefaultWeights()
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.MarketData.BaseURL == "" {
		return fmt.Errorf("marketdata.base_url is required")
	}
	if c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Tape.Enabled {
		if c.Tape.URL == "" {
			return fmt.Errorf("tape.url is required when tape is enabled")
		}
		if len(c.Tape.Symbols) == 0 {
			return fmt.Errorf("tape.symbols cannot be empty when tape is enabled")
		}
	}
	for name, p := range c.Risk.Profiles {
		if err := p.Validate(name); err != nil {
			return err
		}
	}
	return nil
}
