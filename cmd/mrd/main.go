// Command mrd prints the metadata header of text files as a table or TSV.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/bjaus/metard"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultDisplayWidth = 80

type flags struct {
	path    string
	out     string
	format  string
	column  int
	jobs    int
	config  string
	verbose bool
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "mrd [path]",
		Short: "Text file metadata parser",
		Long: `mrd reads the "label: value" header of metadata files.

Given a single file it prints that file's fields. Given a directory it reads
every matching file, fills in fields a file lacks and prints one row per file.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				f.path = args[0]
			}
			err := run(cmd, f, stdout, stderr)
			if err != nil {
				fmt.Fprintln(stderr, "mrd:", err)
			}
			return err
		},
	}

	wd, _ := os.Getwd()
	cmd.Flags().StringVarP(&f.path, "path", "p", wd, "file or folder with target files")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output file")
	cmd.Flags().StringVarP(&f.format, "type", "t", string(metard.Table), "output type for folders: tbl, tsv, json, yaml")
	cmd.Flags().IntVarP(&f.column, "column", "c", metard.DefaultConfig().MaxColumn, "column max width for table, 0 for none")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", metard.DefaultConfig().Jobs, "files read concurrently")
	cmd.Flags().StringVar(&f.config, "config", "", "YAML config file")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log progress to stderr")
	return cmd
}

func run(cmd *cobra.Command, f flags, stdout, stderr io.Writer) error {
	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	reader, err := metard.NewReader(cfg, metard.WithLogger(logger))
	if err != nil {
		return err
	}

	info, err := os.Stat(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("path not found", "path", f.path)
			return nil
		}
		return err
	}

	var r metard.Renderer
	switch {
	case info.Mode().IsRegular() && metard.IsTarget(f.path, cfg.Suffix):
		rec, err := reader.Read(f.path)
		if err != nil {
			return err
		}
		r = metard.NewFieldList(rec, displayWidth())
	case info.IsDir():
		fields, batch, err := reader.LoadNormalized(cmd.Context(), f.path)
		if err != nil {
			return err
		}
		logger.Debug("normalized", "files", len(batch), "fields", fields.Len())
		r, err = metard.NewRenderer(cfg.Format, fields, batch, cfg)
		if err != nil {
			return err
		}
	default:
		logger.Warn("not a target file or folder", "path", f.path, "suffix", cfg.Suffix)
		return nil
	}

	return writeOutput(r, f.out, stdout, logger)
}

// loadConfig layers defaults, the config file, .env and MRD_* variables, and
// flags the user set explicitly.
func loadConfig(cmd *cobra.Command, f flags) (metard.Config, error) {
	cfg := metard.DefaultConfig()
	if f.config != "" {
		var err error
		if cfg, err = metard.LoadConfig(f.config); err != nil {
			return cfg, err
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	flagSet := cmd.Flags()
	if flagSet.Changed("type") {
		format, err := metard.ParseFormat(f.format)
		if err != nil {
			return cfg, err
		}
		cfg.Format = format
	}
	if flagSet.Changed("column") {
		cfg.MaxColumn = f.column
	}
	if flagSet.Changed("jobs") {
		cfg.Jobs = f.jobs
	}
	return cfg, cfg.Validate()
}

// writeOutput writes to out when it names a file and to stdout otherwise.
func writeOutput(r metard.Renderer, out string, stdout io.Writer, logger *slog.Logger) error {
	if out == "" {
		return metard.Write(stdout, r)
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		logger.Warn("output is a directory, writing to stdout", "out", out)
		return metard.Write(stdout, r)
	}

	file, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := metard.Write(file, r); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// displayWidth returns $COLUMNS, then the terminal width, then 80.
func displayWidth() int {
	if n, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && n > 0 {
		return n
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultDisplayWidth
}
