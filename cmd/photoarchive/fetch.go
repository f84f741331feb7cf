package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/sir_venger/photo_archive/pkg/archiveclient"
)

var fetchCommand = &cli.Command{
	Name:  "fetch",
	Usage: "Download an album archive from a running server",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Value:   "http://localhost:8080",
			Usage:   "Base URL of the archive server",
			Sources: cli.EnvVars("ARCHIVE_SERVER"),
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Value:   "archive.zip",
			Usage:   "Output file, - for stdout",
		},
	},
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      "hash",
			UsageText: "Archive identifier",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		logger := getLogger(ctx)

		hash := command.StringArg("hash")
		if hash == "" {
			return fmt.Errorf("no archive hash provided")
		}
		out := command.String("out")

		var opts []archiveclient.Option
		if progress := archiveclient.TerminalOutput(os.Stderr); progress != nil {
			opts = append(opts, archiveclient.WithProgress(progress))
		}
		client := archiveclient.New(opts...)

		n, err := download(ctx, client, command.String("server"), hash, out)
		if errors.Is(err, archiveclient.ErrNotFound) {
			return fmt.Errorf("archive %q was not found or removed", hash)
		}
		if err != nil {
			return err
		}

		logger.Info("archive downloaded", zap.String("archive_hash", hash), zap.String("out", out), zap.Int64("bytes", n))
		return nil
	},
}

// download пишет архив в файл через временный, чтобы оборванная загрузка не
// оставила на диске битый архив под целевым именем.
func download(ctx context.Context, client archiveclient.Client, server, hash, out string) (int64, error) {
	if out == "-" {
		return client.Download(ctx, server, hash, os.Stdout)
	}

	tmp, err := os.CreateTemp(filepath.Dir(out), ".photoarchive-*.part")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := client.Download(ctx, server, hash, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, err
	}

	if err := os.Rename(tmp.Name(), out); err != nil {
		return n, fmt.Errorf("save %s: %w", out, err)
	}
	return n, nil
}
