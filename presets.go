package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/fogmaze/game/config"
	"github.com/wricardo/fogmaze/validate"
)

var errInvalidPresets = errors.New("some presets have errors")

func presetsCommand(settings config.Settings) *cli.Command {
	dirFlag := func() cli.Flag {
		return &cli.StringFlag{Name: "config-dir", Value: settings.ConfigDir, Usage: "directory of maze presets"}
	}

	return &cli.Command{
		Name:  "presets",
		Usage: "inspect the maze presets",
		Commands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "check every preset file and a sample maze from each",
				Flags: []cli.Flag{
					dirFlag(),
					&cli.Int64Flag{Name: "seed", Value: 1, Usage: "seed for sample mazes of unseeded presets"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					results, err := validate.Dir(cmd.String("config-dir"), cmd.Int64("seed"))
					if err != nil {
						return err
					}
					return printValidation(os.Stdout, results)
				},
			},
			{
				Name:  "list",
				Usage: "list loadable presets",
				Flags: []cli.Flag{dirFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					presets, err := config.NewManager(cmd.String("config-dir"))
					if err != nil {
						return err
					}
					return printPresets(os.Stdout, presets)
				},
			},
		},
	}
}

func printValidation(w io.Writer, results []validate.Result) error {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)
		if result.Valid {
			fmt.Fprintln(w, "VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  "+info)
			}
			continue
		}
		allValid = false
		fmt.Fprintln(w, "INVALID")
		for _, err := range result.Errors {
			fmt.Fprintln(w, "  "+err.Error())
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if !allValid {
		fmt.Fprintln(w, "Some presets have errors")
		return errInvalidPresets
	}
	fmt.Fprintf(w, "All %d presets are valid\n", len(results))
	return nil
}

func printPresets(w io.Writer, presets *config.Manager) error {
	configs, err := presets.ListConfigs()
	if err != nil {
		return err
	}
	def := presets.GetDefault()
	for _, c := range configs {
		marker := " "
		if c.Name == def.Name {
			marker = "*"
		}
		size := fmt.Sprintf("%dx%d", c.Rows, c.Cols)
		if c.RandomSize {
			size = "up to " + size
		}
		fmt.Fprintf(w, "%s %-10s %-14s %s\n", marker, c.ConfigID, size, c.Description)
	}
	if len(configs) == 0 {
		fmt.Fprintf(w, "* %-10s %dx%d\n", def.Name, def.Rows, def.Cols)
	}
	return nil
}
