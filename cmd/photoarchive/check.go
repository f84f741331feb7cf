package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	"github.com/sir_venger/photo_archive/internal/usecase/archivesvc"
)

var checkCommand = &cli.Command{
	Name:  "check",
	Usage: "Verify the archiver binary and the photos directory",
	Flags: serviceFlags(false),
	Action: func(ctx context.Context, command *cli.Command) error {
		cfg, err := loadConfig(command)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		archiver, err := archivesvc.ResolveCommand(cfg.Archiver, cfg.Flatten)
		if err != nil {
			return err
		}
		results := archivesvc.CheckArchiver(archiver, cfg.PhotosDir)

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CHECK\tSTATUS\tTARGET\tDETAIL")
		for _, st := range results {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", st.Name, lo.Ternary(st.Available, "ok", "FAIL"), st.Target, st.Detail)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		failed := lo.Filter(results, func(st archivesvc.Status, _ int) bool { return !st.Available })
		if len(failed) > 0 {
			return fmt.Errorf("%d of %d checks failed", len(failed), len(results))
		}
		return nil
	},
}
