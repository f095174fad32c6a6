package orm

import (
	"fmt"
	"strings"

	"report-ingestor/config"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"

	"gorm.io/gorm/logger"

	"gorm.io/gorm"
)

func InitDB() *DB {
	dsn := fmt.Sprintf(
		"host='%s' port='%d' user='%s' password='%s' dbname='%s' sslmode='%s'",
		config.Cfg.Database.Host,
		config.Cfg.Database.Port,
		config.Cfg.Database.Username,
		config.Cfg.Database.Password,
		config.Cfg.Database.Database,
		config.Cfg.Database.SSLMode,
	)

	dsn_redacted := redactDSN(dsn, config.Cfg.Database.Password)
	log.Debug().
		Msgf("Connecting to postgres using the following information: %s", dsn_redacted)

	dbGorm, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to the database")
	}

	log.Debug().Msg("Successfully connected to the database")

	db, err := New(dbGorm)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	return db
}

// redactDSN masks the password inside a DSN. An empty password is left
// alone; replacing the empty string would garble the whole line.
func redactDSN(dsn string, password string) string {
	if password == "" {
		return dsn
	}

	return strings.ReplaceAll(dsn, password, "*****")
}

// DB wraps the gorm handle with the report store operations.
type DB struct {
	dbGorm *gorm.DB
}

// New runs migrations and returns a report store backed by the given
// gorm handle. Split out from InitDB so tests can supply their own driver.
func New(dbGorm *gorm.DB) (*DB, error) {
	err := dbGorm.AutoMigrate(
		&ReportType{},
		&ReportMetadata{},
		&RawReportRow{},
		&RowFingerprint{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &DB{dbGorm: dbGorm}, nil
}
