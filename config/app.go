package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides: server.addr is CITYKIT_SERVER_ADDR.
const EnvPrefix = "CITYKIT"

// AppConfig is the process configuration.
type AppConfig struct {
	App      AppSection      `mapstructure:"app"`
	Server   ServerSection   `mapstructure:"server"`
	Catalog  CatalogSection  `mapstructure:"catalog"`
	Encoder  EncoderSection  `mapstructure:"encoder"`
	Model    ModelSection    `mapstructure:"model"`
	Store    StoreSection    `mapstructure:"store"`
	Ranking  RankingSection  `mapstructure:"ranking"`
	Feedback FeedbackSection `mapstructure:"feedback"`
	Pipeline PipelineSection `mapstructure:"pipeline"`
	Filter   FilterSection   `mapstructure:"filter"`
}

type AppSection struct {
	Name      string `mapstructure:"name"`
	LogLevel  string `mapstructure:"log_level"`
	LogPretty bool   `mapstructure:"log_pretty"`
}

type ServerSection struct {
	Addr            string        `mapstructure:"addr"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug / release / test
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type CatalogSection struct {
	CitiesPath     string `mapstructure:"cities_path"`
	EmbeddingsPath string `mapstructure:"embeddings_path"`
}

type EncoderSection struct {
	Path string `mapstructure:"path"`
}

type ModelSection struct {
	Kind      string            `mapstructure:"kind"` // dense / tfserving
	Path      string            `mapstructure:"path"`
	Endpoint  string            `mapstructure:"endpoint"`
	Name      string            `mapstructure:"name"`
	Version   string            `mapstructure:"version"`
	Signature string            `mapstructure:"signature"`
	Output    string            `mapstructure:"output"`
	Timeout   time.Duration     `mapstructure:"timeout"`
	Slots     map[string]string `mapstructure:"slots"` // encoder segment -> artifact input
	Auth      ModelAuthSection  `mapstructure:"auth"`
}

// ModelAuthSection holds model server credentials; an empty Type sends none.
type ModelAuthSection struct {
	Type     string `mapstructure:"type"` // basic / bearer / api_key
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Token    string `mapstructure:"token"`
	APIKey   string `mapstructure:"api_key"`
}

type StoreSection struct {
	Kind      string `mapstructure:"kind"` // memory / redis
	RedisAddr string `mapstructure:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type RankingSection struct {
	DefaultK int     `mapstructure:"default_k"`
	Alpha    float64 `mapstructure:"alpha"`
	Beta     float64 `mapstructure:"beta"`
	Gamma    float64 `mapstructure:"gamma"`
}

type FeedbackSection struct {
	Exclusive bool `mapstructure:"exclusive"`
}

type PipelineSection struct {
	Path string `mapstructure:"path"`
}

type FilterSection struct {
	// DistanceRules maps a distance answer to a CEL keep-expression.
	// Empty means the built-in rules.
	DistanceRules map[string]string `mapstructure:"distance_rules"`
	Blacklist     []string          `mapstructure:"blacklist"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "citykit")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_pretty", false)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("catalog.cities_path", "data/cities.csv")
	v.SetDefault("catalog.embeddings_path", "data/city_embeddings.csv")
	v.SetDefault("encoder.path", "data/encoders.yaml")
	v.SetDefault("model.kind", "dense")
	v.SetDefault("model.path", "data/user_tower.json")
	v.SetDefault("model.signature", "serving_default")
	v.SetDefault("model.timeout", 5*time.Second)
	// registered so CITYKIT_MODEL_AUTH_* env vars are picked up
	v.SetDefault("model.auth.type", "")
	v.SetDefault("model.auth.username", "")
	v.SetDefault("model.auth.password", "")
	v.SetDefault("model.auth.token", "")
	v.SetDefault("model.auth.api_key", "")
	v.SetDefault("store.kind", "memory")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.key_prefix", "citykit")
	v.SetDefault("ranking.default_k", 5)
	v.SetDefault("ranking.alpha", 1.0)
	v.SetDefault("ranking.beta", 0.7)
	v.SetDefault("ranking.gamma", 0.7)
	v.SetDefault("feedback.exclusive", false)
	v.SetDefault("pipeline.path", "")
}

// Load reads path (YAML, optional when empty) and applies CITYKIT_*
// environment overrides on top of the defaults.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the combinations viper cannot express.
func (c *AppConfig) Validate() error {
	switch c.Model.Kind {
	case "dense":
		if c.Model.Path == "" {
			return fmt.Errorf("model.path is required for model.kind=dense")
		}
	case "tfserving":
		if c.Model.Endpoint == "" || c.Model.Name == "" {
			return fmt.Errorf("model.endpoint and model.name are required for model.kind=tfserving")
		}
	default:
		return fmt.Errorf("unsupported model.kind %q", c.Model.Kind)
	}
	switch c.Model.Auth.Type {
	case "", "basic", "bearer", "api_key":
	default:
		return fmt.Errorf("unsupported model.auth.type %q", c.Model.Auth.Type)
	}
	switch c.Store.Kind {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported store.kind %q", c.Store.Kind)
	}
	if c.Catalog.CitiesPath == "" || c.Catalog.EmbeddingsPath == "" {
		return fmt.Errorf("catalog.cities_path and catalog.embeddings_path are required")
	}
	if c.Encoder.Path == "" {
		return fmt.Errorf("encoder.path is required")
	}
	return nil
}
