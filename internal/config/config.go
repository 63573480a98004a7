// Package config centraliza o carregamento de configurações do gateway.
//
// Ordem de precedência (a última vence): valores padrão, arquivo YAML apontado
// por GATEWAY_CONFIG_FILE, variáveis de ambiente (um .env no diretório atual é
// carregado antes, sem sobrescrever o ambiente).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	ListenAddr  string            `yaml:"listen_addr"`
	Store       StoreConfig       `yaml:"store"`
	Rate        RateConfig        `yaml:"rate"`
	Proxy       ProxyConfig       `yaml:"proxy"`
	Client      ClientConfig      `yaml:"client"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Stats       StatsConfig       `yaml:"stats"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type StoreConfig struct {
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// RateConfig é a política de admissão por host.
type RateConfig struct {
	Namespace         string        `yaml:"namespace"`
	TokensPerInterval int           `yaml:"tokens_per_interval"`
	IntervalSeconds   int           `yaml:"interval_seconds"`
	StoreTimeout      time.Duration `yaml:"store_timeout"`
	FailOpen          bool          `yaml:"fail_open"`
}

type ProxyConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	PassThrough bool          `yaml:"pass_through"`
}

// ClientConfig é o token bucket por cliente (opcional).
type ClientConfig struct {
	Enabled    bool    `yaml:"enabled"`
	RPS        float64 `yaml:"rps"`
	Burst      int     `yaml:"burst"`
	KeyHeader  string  `yaml:"key_header"`
	TrustXFF   bool    `yaml:"trust_xff"`
	AddHeaders bool    `yaml:"add_headers"`
}

type ConcurrencyConfig struct {
	Max     int           `yaml:"max"`
	Timeout time.Duration `yaml:"timeout"`
}

type StatsConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Prefix     string        `yaml:"prefix"`
	TTL        time.Duration `yaml:"ttl"`
	Bucket     string        `yaml:"bucket"`
	TrackHosts bool          `yaml:"track_hosts"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

// Default devolve a configuração padrão: 2 requisições por segundo por host.
func Default() Config {
	return Config{
		ListenAddr: ":8080",
		Store: StoreConfig{
			Backend: StoreRedis,
			Redis:   RedisConfig{Addr: "127.0.0.1:6379"},
		},
		Rate: RateConfig{
			Namespace:         "hapi-rate-limit-proxy",
			TokensPerInterval: 2,
			IntervalSeconds:   1,
			StoreTimeout:      500 * time.Millisecond,
		},
		Proxy: ProxyConfig{
			Timeout:     20 * time.Second,
			PassThrough: true,
		},
		Client: ClientConfig{
			RPS:   10,
			Burst: 20,
		},
		Concurrency: ConcurrencyConfig{Max: 100},
		Stats: StatsConfig{
			Prefix: "ratelimit:stats",
			TTL:    24 * time.Hour,
			Bucket: "minute",
		},
		Metrics: MetricsConfig{Enabled: true},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("GATEWAY_CONFIG_FILE")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	e := &envReader{}

	e.strVar("LISTEN_ADDR", &cfg.ListenAddr)
	e.strVar("STORE_BACKEND", &cfg.Store.Backend)
	e.strVar("REDIS_ADDR", &cfg.Store.Redis.Addr)
	e.strVar("REDIS_PASSWORD", &cfg.Store.Redis.Password)
	e.intVar("REDIS_DB", &cfg.Store.Redis.DB)

	e.strVar("RATE_NAMESPACE", &cfg.Rate.Namespace)
	e.intVar("RATE_TOKENS_PER_INTERVAL", &cfg.Rate.TokensPerInterval)
	e.intVar("RATE_INTERVAL_SECONDS", &cfg.Rate.IntervalSeconds)
	e.durationVar("RATE_STORE_TIMEOUT", &cfg.Rate.StoreTimeout)
	e.boolVar("RATE_FAIL_OPEN", &cfg.Rate.FailOpen)

	e.durationVar("PROXY_TIMEOUT", &cfg.Proxy.Timeout)
	e.boolVar("PROXY_PASS_THROUGH", &cfg.Proxy.PassThrough)

	e.boolVar("CLIENT_RATE_ENABLED", &cfg.Client.Enabled)
	e.floatVar("CLIENT_RATE_RPS", &cfg.Client.RPS)
	e.intVar("CLIENT_RATE_BURST", &cfg.Client.Burst)
	e.strVar("CLIENT_KEY_HEADER", &cfg.Client.KeyHeader)
	e.boolVar("TRUST_XFF", &cfg.Client.TrustXFF)
	e.boolVar("ADD_RATELIMIT_HEADERS", &cfg.Client.AddHeaders)

	e.intVar("CONCURRENCY_MAX", &cfg.Concurrency.Max)
	e.durationVar("CONCURRENCY_TIMEOUT", &cfg.Concurrency.Timeout)

	e.boolVar("RATE_STATS_ENABLED", &cfg.Stats.Enabled)
	e.strVar("RATE_STATS_PREFIX", &cfg.Stats.Prefix)
	e.durationVar("RATE_STATS_TTL", &cfg.Stats.TTL)
	e.strVar("RATE_STATS_BUCKET", &cfg.Stats.Bucket)
	e.boolVar("RATE_STATS_TRACK_HOSTS", &cfg.Stats.TrackHosts)

	e.boolVar("METRICS_ENABLED", &cfg.Metrics.Enabled)

	e.strVar("LOG_LEVEL", &cfg.Logging.Level)
	e.strVar("LOG_FORMAT", &cfg.Logging.Format)
	e.strVar("LOG_OUTPUT", &cfg.Logging.Output)
	e.strVar("LOG_FILE", &cfg.Logging.FilePath)

	return errors.Join(e.errs...)
}

// Validate confere o que não dá para corrigir com um padrão.
// A política de rate limit é validada de novo em domain.NewPolicy.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Backend {
	case StoreRedis:
		if strings.TrimSpace(c.Store.Redis.Addr) == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required when STORE_BACKEND=redis"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unsupported STORE_BACKEND %q", c.Store.Backend))
	}
	if c.Rate.TokensPerInterval <= 0 {
		errs = append(errs, errors.New("RATE_TOKENS_PER_INTERVAL must be > 0"))
	}
	if c.Rate.IntervalSeconds <= 0 {
		errs = append(errs, errors.New("RATE_INTERVAL_SECONDS must be > 0"))
	}
	if c.Client.Enabled && (c.Client.RPS <= 0 || c.Client.Burst <= 0) {
		errs = append(errs, errors.New("CLIENT_RATE_RPS and CLIENT_RATE_BURST must be > 0"))
	}
	if c.Concurrency.Max < 0 {
		errs = append(errs, errors.New("CONCURRENCY_MAX must be >= 0"))
	}
	if c.Stats.Enabled && c.Store.Backend != StoreRedis {
		errs = append(errs, errors.New("RATE_STATS_ENABLED requires STORE_BACKEND=redis"))
	}
	return errors.Join(errs...)
}

// envReader aplica variáveis definidas e acumula erros de parse,
// em vez de cair silenciosamente no padrão.
type envReader struct {
	errs []error
}

func (e *envReader) lookup(k string) (string, bool) {
	v, ok := os.LookupEnv(k)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *envReader) strVar(k string, dst *string) {
	if v, ok := e.lookup(k); ok {
		*dst = v
	}
}

func (e *envReader) intVar(k string, dst *int) {
	v, ok := e.lookup(k)
	if !ok {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s: %w", k, err))
		return
	}
	*dst = i
}

func (e *envReader) floatVar(k string, dst *float64) {
	v, ok := e.lookup(k)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s: %w", k, err))
		return
	}
	*dst = f
}

func (e *envReader) boolVar(k string, dst *bool) {
	v, ok := e.lookup(k)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s: %w", k, err))
		return
	}
	*dst = b
}

func (e *envReader) durationVar(k string, dst *time.Duration) {
	v, ok := e.lookup(k)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s: %w", k, err))
		return
	}
	*dst = d
}
