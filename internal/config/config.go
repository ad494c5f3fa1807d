package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"beacon-dashboard/internal/domain"
)

const (
	DefaultAddr       = "127.0.0.1:8787"
	DefaultEndpoint   = "https://api.monday.com/v2"
	DefaultAPIVersion = "2024-01"
	DefaultBoardID    = "8670560706"
	DefaultPageLimit  = 500
	DefaultItemsPath  = "$.data.boards[0].items_page.items"
	DefaultTTLSeconds = 30
	DefaultPollSecs   = 15
	DefaultHistoryDSN = ":memory:"
)

type MondayConfig struct {
	Endpoint          string  `yaml:"endpoint" validate:"required,url"`
	APIVersion        string  `yaml:"api_version" validate:"required"`
	APIToken          string  `yaml:"api_token"`
	BoardID           string  `yaml:"board_id" validate:"required,numeric"`
	PageLimit         int     `yaml:"page_limit" validate:"min=1,max=500"`
	ItemsPath         string  `yaml:"items_path" validate:"required,startswith=$"`
	TimeoutSeconds    int     `yaml:"timeout_seconds" validate:"min=0"`
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gt=0"`
}

type ColumnsConfig struct {
	Opportunities string   `yaml:"opportunities" validate:"required"`
	Company       string   `yaml:"company" validate:"required"`
	Consent       string   `yaml:"consent" validate:"required"`
	ConsentTokens []string `yaml:"consent_tokens" validate:"min=1,dive,required"`
}

type Config struct {
	App struct {
		Addr    string `yaml:"addr" validate:"required,hostname_port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Monday  MondayConfig  `yaml:"monday"`
	Columns ColumnsConfig `yaml:"columns"`

	Cache struct {
		TTLSeconds int `yaml:"ttl_seconds" validate:"min=1"`
	} `yaml:"cache"`

	Gateway struct {
		DropUnknownOpportunities bool `yaml:"drop_unknown_opportunities"`
	} `yaml:"gateway"`

	Dashboard struct {
		GatewayURL  string `yaml:"gateway_url" validate:"omitempty,url"`
		PollSeconds int    `yaml:"poll_seconds" validate:"min=1"`
		Title       string `yaml:"title"`
		Subtitle    string `yaml:"subtitle"`
		FormURL     string `yaml:"form_url" validate:"omitempty,url"`
	} `yaml:"dashboard"`

	History struct {
		DSN  string `yaml:"dsn" validate:"required"`
		Keep int    `yaml:"keep" validate:"min=1"`
	} `yaml:"history"`

	CategoriesFile string            `yaml:"categories_file"`
	Categories     []domain.Category `yaml:"categories" validate:"dive"`
}

func (c Config) TTL() time.Duration { return time.Duration(c.Cache.TTLSeconds) * time.Second }

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Dashboard.PollSeconds) * time.Second
}

func (c Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.Monday.TimeoutSeconds) * time.Second
}

// GatewayURL is where the dashboard polls. Without an explicit setting it is
// this process' own survey endpoint.
func (c Config) GatewayURL() string {
	if c.Dashboard.GatewayURL != "" {
		return c.Dashboard.GatewayURL
	}
	return "http://" + c.App.Addr + "/api/survey-data"
}

func (c Config) Catalog() (*domain.Catalog, error) {
	return domain.NewCatalog(c.Categories)
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(b)
	if err != nil {
		return cfg, err
	}
	if cfg.CategoriesFile != "" {
		p := cfg.CategoriesFile
		if !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(path), p)
		}
		if err := OverlayCategories(&cfg, p); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// Parse decodes YAML with ${VAR} expansion and fills defaults.
func Parse(b []byte) (Config, error) {
	var cfg Config
	expanded := os.ExpandEnv(string(b))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	applyEnv(&cfg)
	return cfg, nil
}

func Default() Config {
	var cfg Config
	applyDefaults(&cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.App.Addr == "" {
		cfg.App.Addr = DefaultAddr
	}
	if cfg.Monday.Endpoint == "" {
		cfg.Monday.Endpoint = DefaultEndpoint
	}
	if cfg.Monday.APIVersion == "" {
		cfg.Monday.APIVersion = DefaultAPIVersion
	}
	if cfg.Monday.BoardID == "" {
		cfg.Monday.BoardID = DefaultBoardID
	}
	if cfg.Monday.PageLimit == 0 {
		cfg.Monday.PageLimit = DefaultPageLimit
	}
	if cfg.Monday.ItemsPath == "" {
		cfg.Monday.ItemsPath = DefaultItemsPath
	}
	if cfg.Monday.RequestsPerSecond == 0 {
		cfg.Monday.RequestsPerSecond = 5
	}
	if cfg.Columns.Opportunities == "" {
		cfg.Columns.Opportunities = "dropdown_mknydrxj"
	}
	if cfg.Columns.Company == "" {
		cfg.Columns.Company = "text_mknzjpxx"
	}
	if cfg.Columns.Consent == "" {
		cfg.Columns.Consent = "boolean07mvgyyk"
	}
	if len(cfg.Columns.ConsentTokens) == 0 {
		cfg.Columns.ConsentTokens = []string{"v", "✓"}
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = DefaultTTLSeconds
	}
	if cfg.Dashboard.PollSeconds == 0 {
		cfg.Dashboard.PollSeconds = DefaultPollSecs
	}
	if cfg.Dashboard.Title == "" {
		cfg.Dashboard.Title = "The Beacon International"
	}
	if cfg.Dashboard.Subtitle == "" {
		cfg.Dashboard.Subtitle = "Live community interest • 2025 opportunities"
	}
	if cfg.History.DSN == "" {
		cfg.History.DSN = DefaultHistoryDSN
	}
	if cfg.History.Keep == 0 {
		cfg.History.Keep = 500
	}
	if len(cfg.Categories) == 0 && cfg.CategoriesFile == "" {
		cfg.Categories = domain.DefaultCategories()
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("BEACON_ADDR"); v != "" {
		cfg.App.Addr = v
	}
	if v := os.Getenv("BEACON_DATA_DIR"); v != "" {
		cfg.App.DataDir = v
	}
}

// Redacted is cfg safe to show over HTTP.
func (c Config) Redacted() Config {
	out := c
	if out.Monday.APIToken != "" {
		out.Monday.APIToken = "********"
	}
	out.Categories = append([]domain.Category(nil), c.Categories...)
	return out
}
