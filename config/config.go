package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
}

type WatcherConfig struct {
	Dir       string `mapstructure:"dir"`
	Extension string `mapstructure:"extension"`
}

type IngestConfig struct {
	// SchemaMode is "exact" or "superset", TypeMatch is "exact" or "relaxed".
	SchemaMode string `mapstructure:"schema_mode"`
	TypeMatch  string `mapstructure:"type_match"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	KeyID     string `mapstructure:"key_id"`
	AccessKey string `mapstructure:"access_key"`
	Timeout   string `mapstructure:"timeout"`
}

type ArchiveConfig struct {
	// Type selects the archive backend: "none", "filesystem" or "s3".
	Type string   `mapstructure:"type"`
	Dir  string   `mapstructure:"dir"`
	S3   S3Config `mapstructure:"s3"`
}

type AppConfig struct {
	Database DatabaseConfig `mapstructure:"database"`
	Watcher  WatcherConfig  `mapstructure:"watcher"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
}

var Cfg = &AppConfig{}

// Load reads the config file (if any) and environment overrides into Cfg.
// Environment variables use the REPORT_INGESTOR prefix with underscores,
// e.g. REPORT_INGESTOR_DATABASE_HOST.
func Load(cfgFile string) error {
	v := viper.New()

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "reports")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("watcher.dir", "./shared_folder")
	v.SetDefault("watcher.extension", ".xlsx")
	v.SetDefault("ingest.schema_mode", "exact")
	v.SetDefault("ingest.type_match", "exact")
	v.SetDefault("archive.type", "none")
	v.SetDefault("archive.dir", "./archive")
	v.SetDefault("archive.s3.timeout", "30s")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("report-ingestor")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/report-ingestor")
	}

	v.SetEnvPrefix("REPORT_INGESTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing default config file is fine, defaults and env cover it.
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(Cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}
