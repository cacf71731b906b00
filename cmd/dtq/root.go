package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/magpierre/datatable-engine/config"
	"github.com/magpierre/datatable-engine/datatable"
	"github.com/magpierre/datatable-engine/export"
	"github.com/magpierre/datatable-engine/internal/logging"
	"github.com/magpierre/datatable-engine/internal/render"
	"github.com/magpierre/datatable-engine/internal/shell"
	"github.com/magpierre/datatable-engine/loader"
)

type options struct {
	configPath string
	logLevel   string
	filter     string
	where      string
	sortBy     string
	desc       bool
	page       int
	size       int
	noColor    bool
	format     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "dtq",
		Short:         "Filter, sort, page and export tabular data files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "configuration file (yaml, toml or json)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newViewCmd(opts),
		newExportCmd(opts),
		newShellCmd(opts),
		newSchemaCmd(opts),
	)
	return root
}

func addQueryFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVar(&opts.filter, "filter", "", "show rows containing this text in any column")
	cmd.Flags().StringVar(&opts.where, "where", "", "keep rows matching an expression, e.g. 'age >= 30 AND city = oslo'")
	cmd.Flags().StringVar(&opts.sortBy, "sort", "", "sort by this column")
	cmd.Flags().BoolVar(&opts.desc, "desc", false, "sort descending")
	cmd.Flags().IntVar(&opts.size, "size", 0, "rows per page")
}

func newViewCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view FILE",
		Short: "Print one page of a data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(ctxOf(cmd), opts, args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if opts.page > 0 {
				s.table.Evaluate(s.records)
				s.table.GoToPage(opts.page)
			}
			res := s.table.Evaluate(s.records)
			ro := render.DefaultOptions()
			ro.Color = !opts.noColor
			ro.Status = s.table.Status()
			return render.Page(cmd.OutOrStdout(), s.table.Schema(), res, nil, ro)
		},
	}
	addQueryFlags(cmd, opts)
	cmd.Flags().IntVar(&opts.page, "page", 0, "page to show")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable styling")
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export FILE OUT",
		Short: "Write the filtered and sorted rows of FILE to OUT",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(ctxOf(cmd), opts, args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			format, err := export.FormatFromPath(args[1])
			if opts.format != "" {
				format, err = export.ParseFormat(opts.format)
			}
			if err != nil {
				return err
			}

			view := s.table.View(s.records)
			tbl, err := export.Build(s.table.Schema(), view, nil)
			if err != nil {
				return err
			}
			defer tbl.Release()
			if err := export.WriteFile(args[1], format, tbl); err != nil {
				return err
			}
			s.logger.Info("exported rows", "path", args[1], "format", format.String(), "rows", len(view))
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows to %s\n", len(view), args[1])
			return nil
		},
	}
	addQueryFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.format, "format", "", "output format: parquet, csv or json (default from extension)")
	return cmd
}

func newShellCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell FILE",
		Short: "Explore a data file interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(ctxOf(cmd), opts, args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ro := render.DefaultOptions()
			ro.Color = !opts.noColor
			sess := shell.New(s.table, s.records, cmd.OutOrStdout(), ro, s.logger)
			return sess.Run("dtq> ")
		},
	}
	addQueryFlags(cmd, opts)
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable styling")
	return cmd
}

func newSchemaCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "schema FILE",
		Short: "List the columns of a data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx, cancel := loader.WithTimeout(ctxOf(cmd), cfg.LoadTimeout)
			defer cancel()
			ds, err := (&loader.Loader{Logger: logger}).Load(ctx, args[0])
			if err != nil {
				return err
			}
			return render.Source(cmd.OutOrStdout(), ds)
		},
	}
}

// session is a loaded file with its table.
type session struct {
	table   *shell.Table
	records []datatable.Row
	logger  *slog.Logger
}

func setup(opts *options, logOut io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.size > 0 {
		cfg.ItemsPerPage = opts.size
	}
	return cfg, logging.New(cfg.Log, logOut), nil
}

func open(ctx context.Context, opts *options, path string, logOut io.Writer) (*session, error) {
	cfg, logger, err := setup(opts, logOut)
	if err != nil {
		return nil, err
	}

	ctx, cancel := loader.WithTimeout(ctx, cfg.LoadTimeout)
	defer cancel()
	ds, err := (&loader.Loader{Logger: logger}).Load(ctx, path)
	if err != nil {
		return nil, err
	}
	schema, err := cfg.BuildSchema(ds, logger)
	if err != nil {
		return nil, err
	}
	records, err := datatable.Rows(ds)
	if err != nil {
		return nil, err
	}
	if records, err = shell.Where(schema, records, opts.where); err != nil {
		return nil, fmt.Errorf("--where: %w", err)
	}
	tbl, err := datatable.New(schema, datatable.RowID, cfg.TableConfig(logger))
	if err != nil {
		return nil, err
	}

	tbl.SetFilterText(opts.filter)
	if opts.sortBy != "" {
		dir := datatable.SortAscending
		if opts.desc {
			dir = datatable.SortDescending
		}
		if err := tbl.SetSort(opts.sortBy, dir); err != nil {
			return nil, fmt.Errorf("--sort %s: %w", opts.sortBy, err)
		}
	}
	return &session{table: tbl, records: records, logger: logger}, nil
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
