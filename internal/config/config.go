// Package config loads application configuration from config.yaml and
// LEADGEN_-prefixed environment variables, and owns the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/leadgen-cli/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	ICP        ICPConfig        `yaml:"icp" mapstructure:"icp"`
	Resolver   ResolverConfig   `yaml:"resolver" mapstructure:"resolver"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Territory  TerritoryConfig  `yaml:"territory" mapstructure:"territory"`
	FTP        FTPConfig        `yaml:"ftp" mapstructure:"ftp"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Export     ExportConfig     `yaml:"export" mapstructure:"export"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string           `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string           `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string           `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	Pool        store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// ICPConfig points at the scoring profile.
type ICPConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ResolverConfig configures website contact resolution.
type ResolverConfig struct {
	TimeoutSecs int  `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UseJina     bool `yaml:"use_jina" mapstructure:"use_jina"`
}

// PipelineConfig configures batch enrichment.
type PipelineConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// TerritoryConfig points at an optional shapefile restricting runs to a
// sales territory.
type TerritoryConfig struct {
	Name          string `yaml:"name" mapstructure:"name"`
	ShapefilePath string `yaml:"shapefile_path" mapstructure:"shapefile_path"`
}

// FTPConfig holds credentials for FTP-hosted lead files.
type FTPConfig struct {
	User        string `yaml:"user" mapstructure:"user"`
	Pass        string `yaml:"pass" mapstructure:"pass"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// JinaConfig holds Jina AI Reader settings, the fallback fetcher for
// websites that block plain HTTP.
type JinaConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// NotionConfig holds Notion API credentials and the leads database ID.
type NotionConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	LeadDB string `yaml:"lead_db" mapstructure:"lead_db"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	KeyPath  string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`
}

// ExportConfig configures the default export target.
type ExportConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
	Path   string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "leads.db")
	v.SetDefault("store.pool.max_conns", 10)
	v.SetDefault("store.pool.min_conns", 2)
	v.SetDefault("icp.path", "icp.yaml")
	v.SetDefault("resolver.timeout_secs", 45)
	v.SetDefault("resolver.use_jina", false)
	v.SetDefault("pipeline.workers", 3)
	v.SetDefault("ftp.timeout_secs", 30)
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("export.format", "csv")
	v.SetDefault("export.path", "leads_export.csv")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields a given command mode depends on. Modes:
// "pipeline" for run/score/import, "export" for CRM delivery, "serve" for
// the webhook server.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "pipeline":
		switch c.Store.Driver {
		case "sqlite":
			if c.Store.SQLitePath == "" {
				problems = append(problems, "store.sqlite_path is required")
			}
		case "postgres":
			if c.Store.DatabaseURL == "" {
				problems = append(problems, "store.database_url is required")
			}
		default:
			problems = append(problems, "store.driver must be sqlite or postgres")
		}
		if c.Pipeline.Workers < 1 || c.Pipeline.Workers > 50 {
			problems = append(problems, "pipeline.workers must be between 1 and 50")
		}
		if c.Resolver.UseJina && c.Jina.Key == "" {
			problems = append(problems, "jina.key is required when resolver.use_jina is set")
		}
	case "export":
		switch c.Export.Format {
		case "csv", "jsonl", "xlsx":
			if c.Export.Path == "" {
				problems = append(problems, "export.path is required")
			}
		case "notion":
			if c.Notion.Token == "" {
				problems = append(problems, "notion.token is required")
			}
			if c.Notion.LeadDB == "" {
				problems = append(problems, "notion.lead_db is required")
			}
		case "salesforce":
			if c.Salesforce.ClientID == "" {
				problems = append(problems, "salesforce.client_id is required")
			}
			if c.Salesforce.Username == "" {
				problems = append(problems, "salesforce.username is required")
			}
			if c.Salesforce.KeyPath == "" {
				problems = append(problems, "salesforce.key_path is required")
			}
		default:
			problems = append(problems, "export.format must be csv, jsonl, xlsx, notion, or salesforce")
		}
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
