package main

import (
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/sir_venger/photo_archive/internal/config"
)

const (
	flagConfig         = "config"
	flagLogging        = "logging"
	flagLogLevel       = "log-level"
	flagDebug          = "debug"
	flagAddr           = "addr"
	flagPhotosDir      = "photos-dir"
	flagChunkSize      = "chunk-size"
	flagDelay          = "delay"
	flagQueueDepth     = "queue-depth"
	flagArchiver       = "archiver"
	flagFlat           = "flat"
	flagIndex          = "index"
	flagUptimeInterval = "uptime-interval"
)

// globalFlags действуют для всех подкоманд.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Value:   config.DefaultConfigPath,
			Usage:   "Path to YAML config (optional)",
			Sources: cli.EnvVars("CONFIG_PATH"),
		},
		&cli.BoolFlag{
			Name:    flagLogging,
			Value:   true,
			Usage:   "Enable logging",
			Sources: cli.EnvVars("LOGGING"),
		},
		&cli.StringFlag{
			Name:    flagLogLevel,
			Aliases: []string{"l"},
			Value:   config.DefaultLogLevel,
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
		&cli.BoolFlag{
			Name:    flagDebug,
			Aliases: []string{"d"},
			Usage:   "Human-readable development logging",
		},
	}
}

// serviceFlags возвращает настройки сервиса. Каждый вызов создаёт новые флаги, потому что
// один и тот же набор висит и на корневой команде, и на подкомандах.
func serviceFlags(local bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagAddr,
			Value:   config.DefaultListenAddr,
			Usage:   "Listen address",
			Sources: cli.EnvVars("LISTEN_ADDR"),
			Local:   local,
		},
		&cli.StringFlag{
			Name:    flagPhotosDir,
			Value:   config.DefaultPhotosDir,
			Usage:   "Directory with photo albums",
			Sources: cli.EnvVars("PHOTOS_DIR"),
			Local:   local,
		},
		&cli.IntFlag{
			Name:    flagChunkSize,
			Value:   config.DefaultChunkSize,
			Usage:   "Relay chunk size in bytes",
			Sources: cli.EnvVars("CHUNK_SIZE"),
			Local:   local,
		},
		&cli.StringFlag{
			Name:    flagDelay,
			Value:   "0",
			Usage:   "Delay after every chunk, seconds (0.5) or duration (500ms)",
			Sources: cli.EnvVars("CHUNK_DELAY"),
			Local:   local,
		},
		&cli.IntFlag{
			Name:    flagQueueDepth,
			Value:   config.DefaultQueueDepth,
			Usage:   "How many chunks the archiver may run ahead of the client",
			Sources: cli.EnvVars("QUEUE_DEPTH"),
			Local:   local,
		},
		&cli.StringFlag{
			Name:    flagArchiver,
			Usage:   "Archiver command; runs inside the album dir, {dir} is replaced by its path (default: built-in packer)",
			Sources: cli.EnvVars("ARCHIVER_CMD"),
			Local:   local,
		},
		&cli.BoolFlag{
			Name:    flagFlat,
			Usage:   "Store files without directories (built-in packer only)",
			Sources: cli.EnvVars("ARCHIVE_FLAT"),
			Local:   local,
		},
		&cli.StringFlag{
			Name:    flagIndex,
			Usage:   "Index page file (default: embedded page)",
			Sources: cli.EnvVars("INDEX_PATH"),
			Local:   local,
		},
		&cli.StringFlag{
			Name:    flagUptimeInterval,
			Value:   config.DefaultUptimeInterval.String(),
			Usage:   "Interval between /uptime lines",
			Sources: cli.EnvVars("UPTIME_INTERVAL"),
			Local:   local,
		},
	}
}

// loadConfig собирает конфигурацию: YAML поверх значений по умолчанию, затем
// явно заданные флаги и ENV. Флаг, который не задан, YAML не перетирает.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String(flagConfig))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet(flagLogging) {
		cfg.Logging = cmd.Bool(flagLogging)
	}
	if cmd.IsSet(flagLogLevel) {
		cfg.LogLevel = cmd.String(flagLogLevel)
	}
	if cmd.IsSet(flagAddr) {
		cfg.ListenAddr = cmd.String(flagAddr)
	}
	if cmd.IsSet(flagPhotosDir) {
		cfg.PhotosDir = cmd.String(flagPhotosDir)
	}
	if cmd.IsSet(flagChunkSize) {
		cfg.ChunkSize = int(cmd.Int(flagChunkSize))
	}
	if cmd.IsSet(flagDelay) {
		d, err := config.ParseSeconds(cmd.String(flagDelay))
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", flagDelay, err)
		}
		cfg.ChunkDelay = d
	}
	if cmd.IsSet(flagQueueDepth) {
		cfg.QueueDepth = int(cmd.Int(flagQueueDepth))
	}
	if cmd.IsSet(flagArchiver) {
		cfg.Archiver = config.SplitCommand(cmd.String(flagArchiver))
	}
	if cmd.IsSet(flagFlat) {
		cfg.Flatten = cmd.Bool(flagFlat)
	}
	if cmd.IsSet(flagIndex) {
		cfg.IndexPath = cmd.String(flagIndex)
	}
	if cmd.IsSet(flagUptimeInterval) {
		d, err := config.ParseSeconds(cmd.String(flagUptimeInterval))
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", flagUptimeInterval, err)
		}
		cfg.UptimeInterval = d
	}

	return cfg, nil
}
