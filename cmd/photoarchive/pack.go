package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/sir_venger/photo_archive/internal/packer"
)

var packCommand = &cli.Command{
	Name:  "pack",
	Usage: "Write a ZIP archive of a directory to stdout",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "flat",
			Usage: "Store files by base name only",
		},
		&cli.BoolFlag{
			Name:  "store",
			Usage: "Do not compress entries",
		},
	},
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      "dir",
			Value:     ".",
			UsageText: "Directory to archive",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		dir := command.StringArg("dir")
		if dir == "" {
			dir = "."
		}

		opts := packer.Options{
			Flatten: command.Bool("flat"),
			Store:   command.Bool("store"),
		}
		if err := packer.Write(ctx, afero.NewOsFs(), dir, os.Stdout, opts); err != nil {
			return fmt.Errorf("pack %s: %w", dir, err)
		}
		return nil
	},
}
