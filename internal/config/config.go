package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/xxxsen/common/logger"
)

var DefaultCandidateLabels = []string{
	"technology", "business", "politics", "sports", "entertainment",
	"health", "science", "education", "travel", "food",
}

const (
	DefaultClassifierEndpoint = "https://router.huggingface.co/hf-inference/models/facebook/bart-large-mnli"
	DefaultSummarizerModel    = "gemini-2.5-flash"
)

type Config struct {
	Port          int              `json:"port"`
	Database      DatabaseConfig   `json:"database"`
	JWT           JWTConfig        `json:"jwt"`
	Analyze       AnalyzeConfig    `json:"analyze"`
	Classifier    ClassifierConfig `json:"classifier"`
	Summarizer    SummarizerConfig `json:"summarizer"`
	Mock          MockConfig       `json:"mock"`
	CORSAllowlist []string         `json:"cors_allowlist"`
	LogConfig     logger.LogConfig `json:"log_config"`
}

type DatabaseConfig struct {
	Driver   string `json:"driver"`
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type JWTConfig struct {
	Secret     string `json:"secret"`
	Algorithm  string `json:"algorithm"`
	TTLMinutes int    `json:"ttl_minutes"`
}

type AnalyzeConfig struct {
	MinTextLength   int      `json:"min_text_length"`
	MaxTextLength   int      `json:"max_text_length"`
	MockMode        bool     `json:"mock_mode"`
	RateLimitMs     int      `json:"rate_limit_ms"`
	CandidateLabels []string `json:"candidate_labels"`
}

type ClassifierConfig struct {
	Endpoint       string `json:"endpoint"`
	Token          string `json:"token"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	MaxAttempts    int    `json:"max_attempts"`
	RetryDelayMs   int    `json:"retry_delay_ms"`
	WarmupCron     string `json:"warmup_cron"`
}

type GeneratorConfig struct {
	Provider string                 `json:"provider"`
	Model    string                 `json:"model"`
	Data     map[string]interface{} `json:"data"`
}

type SummarizerConfig struct {
	Providers       []GeneratorConfig `json:"providers"`
	TimeoutSeconds  int               `json:"timeout_seconds"`
	MaxAttempts     int               `json:"max_attempts"`
	MaxSummaryChars int               `json:"max_summary_chars"`
}

type MockConfig struct {
	Seed            int64 `json:"seed"`
	SimulateLatency *bool `json:"simulate_latency"`
}

func (m MockConfig) ShouldSimulateLatency() bool {
	return m.SimulateLatency == nil || *m.SimulateLatency
}

// Load reads the optional json file at path, applies environment overrides and defaults, then
// validates. An empty path means environment only.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()
		if err := json.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type lookupFunc func(key string) (string, bool)

func firstEnv(lookup lookupFunc, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

func applyEnv(cfg *Config, lookup lookupFunc) error {
	if v, ok := firstEnv(lookup, "PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %w", err)
		}
		cfg.Port = port
	}
	if v, ok := firstEnv(lookup, "DATABASE_URL"); ok {
		cfg.Database.DSN = v
	}
	if v, ok := firstEnv(lookup, "POSTGRES_SERVER"); ok {
		cfg.Database.Host = v
	}
	if v, ok := firstEnv(lookup, "POSTGRES_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid POSTGRES_PORT: %w", err)
		}
		cfg.Database.Port = port
	}
	if v, ok := firstEnv(lookup, "POSTGRES_USER"); ok {
		cfg.Database.User = v
	}
	if v, ok := firstEnv(lookup, "POSTGRES_PASSWORD"); ok {
		cfg.Database.Password = v
	}
	if v, ok := firstEnv(lookup, "POSTGRES_DB"); ok {
		cfg.Database.DBName = v
	}
	if v, ok := firstEnv(lookup, "SECRET_KEY", "JWT_SECRET"); ok {
		cfg.JWT.Secret = v
	}
	if v, ok := firstEnv(lookup, "ALGORITHM", "JWT_ALGO"); ok {
		cfg.JWT.Algorithm = v
	}
	if v, ok := firstEnv(lookup, "ACCESS_TOKEN_EXPIRE_MINUTES"); ok {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ACCESS_TOKEN_EXPIRE_MINUTES: %w", err)
		}
		cfg.JWT.TTLMinutes = minutes
	}
	if v, ok := firstEnv(lookup, "MOCK_MODE"); ok {
		cfg.Analyze.MockMode = strings.EqualFold(v, "true")
	}
	if v, ok := firstEnv(lookup, "HF_TOKEN", "HF_API_KEY"); ok {
		cfg.Classifier.Token = v
	}
	if v, ok := firstEnv(lookup, "GEMINI_API_KEY"); ok {
		if len(cfg.Summarizer.Providers) == 0 {
			cfg.Summarizer.Providers = []GeneratorConfig{{Provider: "gemini", Model: DefaultSummarizerModel}}
		}
		for i := range cfg.Summarizer.Providers {
			p := &cfg.Summarizer.Providers[i]
			if !strings.EqualFold(p.Provider, "gemini") {
				continue
			}
			if p.Data == nil {
				p.Data = map[string]interface{}{}
			}
			if key, _ := p.Data["api_key"].(string); key == "" {
				p.Data["api_key"] = v
			}
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.JWT.Algorithm == "" {
		cfg.JWT.Algorithm = "HS256"
	}
	if cfg.JWT.TTLMinutes == 0 {
		cfg.JWT.TTLMinutes = 60
	}
	if cfg.Analyze.MinTextLength == 0 {
		cfg.Analyze.MinTextLength = 20
	}
	if len(cfg.Analyze.CandidateLabels) == 0 {
		cfg.Analyze.CandidateLabels = append([]string(nil), DefaultCandidateLabels...)
	}
	if cfg.Classifier.Endpoint == "" {
		cfg.Classifier.Endpoint = DefaultClassifierEndpoint
	}
	if cfg.Classifier.TimeoutSeconds == 0 {
		cfg.Classifier.TimeoutSeconds = 60
	}
	if cfg.Classifier.MaxAttempts == 0 {
		cfg.Classifier.MaxAttempts = 3
	}
	if cfg.Classifier.RetryDelayMs == 0 {
		cfg.Classifier.RetryDelayMs = 5000
	}
	if len(cfg.Summarizer.Providers) == 0 {
		cfg.Summarizer.Providers = []GeneratorConfig{{Provider: "gemini", Model: DefaultSummarizerModel}}
	}
	for i := range cfg.Summarizer.Providers {
		p := &cfg.Summarizer.Providers[i]
		if p.Model == "" && strings.EqualFold(p.Provider, "gemini") {
			p.Model = DefaultSummarizerModel
		}
		if p.Data == nil {
			p.Data = map[string]interface{}{}
		}
	}
	if cfg.Summarizer.TimeoutSeconds == 0 {
		cfg.Summarizer.TimeoutSeconds = 30
	}
	if cfg.Summarizer.MaxAttempts == 0 {
		cfg.Summarizer.MaxAttempts = 3
	}
	if cfg.Summarizer.MaxSummaryChars == 0 {
		cfg.Summarizer.MaxSummaryChars = 500
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
		cfg.LogConfig.Console = true
	}
}

func validate(cfg *Config) error {
	if cfg.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	if cfg.JWT.TTLMinutes < 0 {
		return fmt.Errorf("jwt.ttl_minutes must be positive")
	}
	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.DSN == "" && (cfg.Database.User == "" || cfg.Database.DBName == "") {
			return fmt.Errorf("database.dsn or database user/dbname are required")
		}
	case "sqlite":
		if cfg.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for sqlite")
		}
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite")
	}
	if cfg.Analyze.MinTextLength < 0 || cfg.Analyze.MaxTextLength < 0 {
		return fmt.Errorf("analyze text length limits must not be negative")
	}
	if cfg.Analyze.MaxTextLength > 0 && cfg.Analyze.MaxTextLength < cfg.Analyze.MinTextLength {
		return fmt.Errorf("analyze.max_text_length must be >= analyze.min_text_length")
	}
	if cfg.Classifier.MaxAttempts < 1 || cfg.Summarizer.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be >= 1")
	}
	return nil
}

// PostgresDSN returns the connection string for the postgres driver. Cloud style
// postgres:// urls without an explicit sslmode get sslmode=require.
func (d DatabaseConfig) PostgresDSN() string {
	if d.DSN == "" {
		sslmode := d.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.DBName, sslmode)
	}
	dsn := d.DSN
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err == nil && u.Query().Get("sslmode") == "" {
			q := u.Query()
			q.Set("sslmode", "require")
			u.RawQuery = q.Encode()
			dsn = u.String()
		}
	}
	return dsn
}
