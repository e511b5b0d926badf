package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Engine struct {
		Pairs             []string      `yaml:"pairs" validate:"min=1"`
		TickInterval      time.Duration `yaml:"tick_interval" default:"15s"`
		RetentionHorizon  time.Duration `yaml:"retention_horizon" default:"30m"`
		MinUpdateInterval time.Duration `yaml:"min_update_interval" default:"3s"`
		MinPoints         int           `yaml:"min_points" default:"2" validate:"gte=2"`
		TrendEpsilon      float64       `yaml:"trend_epsilon" default:"0.001"`
		MinStrengthPct    float64       `yaml:"min_strength_pct" default:"0.05"`
		MinProfitPct      float64       `yaml:"min_profit_pct" default:"0.3"`
		BaseTpPct         float64       `yaml:"base_tp_pct" default:"0.015"`
		MaxTpMultiplier   float64       `yaml:"max_tp_multiplier" default:"3.0"`
		MinGapPct         float64       `yaml:"min_gap_pct" default:"0.001"`
		EmissionThreshold float64       `yaml:"emission_threshold" default:"3" validate:"gte=0,lte=10"`
		ActiveThreshold   float64       `yaml:"active_threshold" default:"7" validate:"gte=0,lte=10"`
		EmitBurst         float64       `yaml:"emit_burst" default:"3"`
		EmitPerMinute     float64       `yaml:"emit_per_minute" default:"1"`
	} `yaml:"engine"`
	Source struct {
		Mode           string        `yaml:"mode" default:"websocket" validate:"oneof=websocket kafka"`
		WebSocketURL   string        `yaml:"websocket_url"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
		PingInterval   time.Duration `yaml:"ping_interval" default:"30s"`
		MaxSampleAge   time.Duration `yaml:"max_sample_age" default:"2m"`
	} `yaml:"source"`
	Forecast struct {
		ServiceURL string        `yaml:"service_url"`
		Timeout    time.Duration `yaml:"timeout" default:"3s"`
		CacheTTL   time.Duration `yaml:"cache_ttl" default:"1m"`
	} `yaml:"forecast"`
	Notify struct {
		Mode string `yaml:"mode" default:"kafka" validate:"oneof=kafka queue log"`
	} `yaml:"notify"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		SignalsTopic string   `yaml:"signals_topic" default:"tradepulse.signals"`
		SamplesTopic string   `yaml:"samples_topic" default:"tradepulse.samples"`
		LogsTopic    string   `yaml:"logs_topic" default:"tradepulse.logs"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"5s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"5s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"tradepulse"`
			Workers    int           `yaml:"workers" default:"4"`
			BufferSize int           `yaml:"buffer_size" default:"1024"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"tradepulse"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		Table            string        `yaml:"table" default:"signals"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Queue    struct {
			Workers    int           `yaml:"workers" default:"2"`
			QueueSize  int           `yaml:"queue_size" default:"256"`
			RetryLimit int           `yaml:"retry_limit" default:"3"`
			RetryDelay time.Duration `yaml:"retry_delay" default:"5s"`
		} `yaml:"queue"`
	} `yaml:"redis"`
}

// Load reads a YAML configuration file, fills defaults and validates.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
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

	if v := os.Getenv("PAIRS"); v != "" {
		c.Engine.Pairs = strings.Split(v, ",")
	}
	if v := os.Getenv("SOURCE_MODE"); v != "" {
		c.Source.Mode = v
	}
	if v := os.Getenv("SOURCE_WEBSOCKET_URL"); v != "" {
		c.Source.WebSocketURL = v
	}
	if v := os.Getenv("FORECAST_SERVICE_URL"); v != "" {
		c.Forecast.ServiceURL = v
	}
	if v := os.Getenv("NOTIFY_MODE"); v != "" {
		c.Notify.Mode = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
		c.ClickHouse.Enabled = true
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks structural constraints plus the couplings the tag
// validator cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Source.Mode == "websocket" && c.Source.WebSocketURL == "" {
		return fmt.Errorf("source.websocket_url is required for websocket mode")
	}
	if c.Source.Mode == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required for kafka source mode")
	}
	if c.Notify.Mode == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required for kafka notify mode")
	}
	if c.Notify.Mode == "queue" && !c.Redis.Enabled {
		return fmt.Errorf("redis must be enabled for queue notify mode")
	}
	if c.Engine.EmissionThreshold > c.Engine.ActiveThreshold {
		return fmt.Errorf("engine.emission_threshold must not exceed engine.active_threshold")
	}
	return nil
}
