package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar 指定配置文件路径的环境变量。
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths 未指定 CONFIG_PATH 时依次查找的配置文件。
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/gamerec/config.yaml",
}

// AppConfig 是进程级配置。加载优先级：环境变量 > 配置文件 > 默认值。
type AppConfig struct {
	Catalog   CatalogConfig   `koanf:"catalog"`
	IGDB      IGDBConfig      `koanf:"igdb"`
	Recommend RecommendConfig `koanf:"recommend"`
	Cache     CacheConfig     `koanf:"cache"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// CatalogConfig 选择游戏目录实现。
type CatalogConfig struct {
	Backend    string `koanf:"backend" validate:"oneof=igdb static"`
	StaticPath string `koanf:"static_path" validate:"required_if=Backend static"`
}

// IGDBConfig 是 IGDB API 与 Twitch 认证配置。
type IGDBConfig struct {
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	BaseURL      string        `koanf:"base_url" validate:"required,url"`
	AuthURL      string        `koanf:"auth_url" validate:"required,url"`
	Timeout      time.Duration `koanf:"timeout" validate:"gt=0"`
	RateLimit    float64       `koanf:"rate_limit" validate:"gt=0"`
	RateBurst    int           `koanf:"rate_burst" validate:"gte=1"`
}

// RecommendConfig 是推荐流程配置。
type RecommendConfig struct {
	MinRating       float64       `koanf:"min_rating" validate:"gte=0"`
	CandidateLimit  int           `koanf:"candidate_limit" validate:"gte=1,lte=500"`
	SimilarLimit    int           `koanf:"similar_limit" validate:"gte=0"`
	TopN            int           `koanf:"top_n" validate:"gte=0"`
	NegativeRatings string        `koanf:"negative_ratings" validate:"oneof=aversion reject"`
	ExcludeRated    bool          `koanf:"exclude_rated"`
	RecallTimeout   time.Duration `koanf:"recall_timeout" validate:"gt=0"`
	PipelinePath    string        `koanf:"pipeline_path"`
	VocabularyPath  string        `koanf:"vocabulary_path"`
	Explain         int           `koanf:"explain" validate:"gte=0"`
}

// CacheConfig 是目录缓存配置。
type CacheConfig struct {
	Backend   string        `koanf:"backend" validate:"oneof=none memory redis"`
	RedisAddr string        `koanf:"redis_addr" validate:"required_if=Backend redis"`
	RedisDB   int           `koanf:"redis_db" validate:"gte=0"`
	TTL       time.Duration `koanf:"ttl" validate:"gte=0"`
}

// ServerConfig 是 HTTP 服务配置。
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port" validate:"gte=1,lte=65535"`
	ReadTimeout       time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout      time.Duration `koanf:"write_timeout" validate:"gt=0"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
}

// LoggingConfig 是日志配置。
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// RecommendConfig 实现 core.RecallConfig，作为文件 Pipeline 中召回源的默认值。
func (c RecommendConfig) DefaultCandidateLimit() int { return c.CandidateLimit }
func (c RecommendConfig) DefaultSimilarLimit() int { return c.SimilarLimit }
func (c RecommendConfig) DefaultMinRating() float64 { return c.MinRating }
func (c RecommendConfig) DefaultTimeout() time.Duration { return c.RecallTimeout }

// Addr 返回监听地址。
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Catalog: CatalogConfig{Backend: "igdb"},
		IGDB: IGDBConfig{
			BaseURL:   "https://api.igdb.com/v4",
			AuthURL:   "https://id.twitch.tv/oauth2/token",
			Timeout:   10 * time.Second,
			RateLimit: 4,
			RateBurst: 4,
		},
		Recommend: RecommendConfig{
			MinRating:       6,
			CandidateLimit:  500,
			NegativeRatings: "aversion",
			RecallTimeout:   10 * time.Second,
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     24 * time.Hour,
		},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8000,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 60,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// envMappings 把环境变量名（小写）映射为配置路径；未列出的变量被忽略。
var envMappings = map[string]string{
	"twitch_client_id":     "igdb.client_id",
	"twitch_client_secret": "igdb.client_secret",
	"igdb_base_url":        "igdb.base_url",
	"igdb_auth_url":        "igdb.auth_url",
	"igdb_timeout":         "igdb.timeout",
	"igdb_rate_limit":      "igdb.rate_limit",

	"catalog_backend":     "catalog.backend",
	"catalog_static_path": "catalog.static_path",

	"recommend_min_rating":       "recommend.min_rating",
	"recommend_candidate_limit":  "recommend.candidate_limit",
	"recommend_similar_limit":    "recommend.similar_limit",
	"recommend_top_n":            "recommend.top_n",
	"recommend_negative_ratings": "recommend.negative_ratings",
	"recommend_exclude_rated":    "recommend.exclude_rated",
	"recommend_recall_timeout":   "recommend.recall_timeout",
	"recommend_explain":          "recommend.explain",
	"pipeline_path":              "recommend.pipeline_path",
	"vocabulary_path":            "recommend.vocabulary_path",

	"cache_backend": "cache.backend",
	"cache_ttl":     "cache.ttl",
	"redis_addr":    "cache.redis_addr",
	"redis_db":      "cache.redis_db",

	"http_host":           "server.host",
	"http_port":           "server.port",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// Load 加载配置：.env（可选）-> 默认值 -> 配置文件（可选）-> 环境变量，然后校验。
func Load() (*AppConfig, error) {
	// .env 不存在不是错误
	_ = godotenv.Load()
	return LoadFrom(findConfigFile())
}

// LoadFrom 使用指定配置文件加载，path 为空时跳过文件层。
func LoadFrom(path string) (*AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultAppConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &AppConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate 校验配置；igdb 目录要求 Twitch 凭据。
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Catalog.Backend == "igdb" && (c.IGDB.ClientID == "" || c.IGDB.ClientSecret == "") {
		return fmt.Errorf("igdb catalog requires TWITCH_CLIENT_ID and TWITCH_CLIENT_SECRET")
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
