package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"report-ingestor/archive"
	"report-ingestor/config"
	"report-ingestor/ingest"
	"report-ingestor/orm"
	"report-ingestor/watcher"
	"report-ingestor/xlsxreader"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfgFile := flag.String("config", "", "path to config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := config.Load(*cfgFile); err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db := orm.InitDB()

	ingestor := ingest.New(
		db,
		xlsxreader.New(),
		ingestorOptions()...,
	)

	w := watcher.New(
		config.Cfg.Watcher.Dir,
		config.Cfg.Watcher.Extension,
		func(path string) {
			outcome, err := ingestor.ProcessFile(context.Background(), path)
			if err != nil {
				// A failed file never halts the watch loop.
				log.Error().Err(err).Str("path", path).Msg("failed to process file")

				return
			}
			log.Debug().
				Str("path", path).
				Int("new_rows", outcome.NewRows).
				Msg("file processed")
		},
	)

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	if err := w.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("watcher terminated")
	}
}

func ingestorOptions() []ingest.Option {
	var opts []ingest.Option

	switch config.Cfg.Ingest.SchemaMode {
	case "superset":
		opts = append(opts, ingest.WithSchemaMode(ingest.SchemaSuperset))
	case "exact", "":
	default:
		log.Warn().
			Msgf("unknown schema mode '%s', defaulting to exact", config.Cfg.Ingest.SchemaMode)
	}

	switch config.Cfg.Ingest.TypeMatch {
	case "relaxed":
		opts = append(opts, ingest.WithRelaxedTypeMatch())
	case "exact", "":
	default:
		log.Warn().
			Msgf("unknown type match mode '%s', defaulting to exact", config.Cfg.Ingest.TypeMatch)
	}

	if archiver := initializeArchiveStore(); archiver != nil {
		opts = append(opts, ingest.WithArchiver(archiver))
	}

	return opts
}

func initializeArchiveStore() ingest.Archiver {
	switch config.Cfg.Archive.Type {
	case "filesystem":
		return initFilesystemArchive()
	case "s3":
		return initS3Archive()
	case "none", "":
		return nil
	default:
		log.Warn().
			Msgf("unknown archive type '%s', archiving disabled", config.Cfg.Archive.Type)

		return nil
	}
}

func initFilesystemArchive() ingest.Archiver {
	// Initialize filesystem archive
	fsArchive, err := archive.NewFilesystem(config.Cfg.Archive.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize filesystem archive")
	}
	log.Info().
		Str("archive_dir", config.Cfg.Archive.Dir).
		Msg("filesystem archive initialized")

	return fsArchive
}

func initS3Archive() ingest.Archiver {
	// Initialize s3 archive
	s3Archive, err := archive.NewS3()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize s3 archive")
	}
	log.Info().Msg("s3 archive initialized")

	return s3Archive
}
