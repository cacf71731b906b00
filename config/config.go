// Package config loads table, logging and column settings from an optional
// file and DTQ_ prefixed environment variables.
package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/magpierre/datatable-engine/datatable"
	"github.com/magpierre/datatable-engine/internal/logging"
	"github.com/magpierre/datatable-engine/script"
)

// EnvPrefix prefixes every environment override, e.g. DTQ_ITEMS_PER_PAGE.
const EnvPrefix = "DTQ"

// Config is the complete configuration of a table session.
type Config struct {
	ItemsPerPage        int            `mapstructure:"items_per_page"`
	InitialPage         int            `mapstructure:"initial_page"`
	ResetPageOnFilter   bool           `mapstructure:"reset_page_on_filter"`
	ClampPageOnEvaluate bool           `mapstructure:"clamp_page_on_evaluate"`
	Sortable            bool           `mapstructure:"sortable"`
	LoadTimeout         time.Duration  `mapstructure:"load_timeout"`
	Log                 logging.Config `mapstructure:"log"`
	Columns             []ColumnConfig `mapstructure:"columns"`
}

// ColumnConfig selects, renames or computes one column. Field names the
// source column and defaults to ID. A non-empty Expr makes the column
// computed; see package script.
type ColumnConfig struct {
	ID       string `mapstructure:"id"`
	Title    string `mapstructure:"title"`
	Field    string `mapstructure:"field"`
	Expr     string `mapstructure:"expr"`
	Sortable bool   `mapstructure:"sortable"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("items_per_page", datatable.DefaultItemsPerPage)
	v.SetDefault("initial_page", datatable.DefaultInitialPage)
	v.SetDefault("reset_page_on_filter", false)
	v.SetDefault("clamp_page_on_evaluate", false)
	v.SetDefault("sortable", true)
	v.SetDefault("load_timeout", "60s")
	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.add_source", false)
	v.SetDefault("columns", []ColumnConfig{})
}

// Load reads the configuration. path may be empty, in which case only the
// defaults and the environment apply. Environment variables take
// precedence over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// TableConfig returns the table options carried by the configuration.
func (c *Config) TableConfig(logger *slog.Logger) datatable.Config {
	return datatable.Config{
		ItemsPerPage:        c.ItemsPerPage,
		InitialPage:         c.InitialPage,
		ResetPageOnFilter:   c.ResetPageOnFilter,
		ClampPageOnEvaluate: c.ClampPageOnEvaluate,
		Logger:              logger,
	}
}

// BuildSchema returns the schema for ds. Without configured columns every
// source column is shown, sortable when Sortable is set.
func (c *Config) BuildSchema(ds datatable.DataSource, logger *slog.Logger) (*datatable.Schema[datatable.Row], error) {
	if len(c.Columns) == 0 {
		return datatable.SchemaFromSource(ds, c.Sortable)
	}
	if ds == nil {
		return nil, datatable.ErrNoDataSource
	}

	names := datatable.ColumnNames(ds)
	columns := make([]datatable.Column[datatable.Row], 0, len(c.Columns))
	for _, cc := range c.Columns {
		col, err := cc.build(ds, names, logger)
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	return datatable.NewSchema(columns...)
}

func (cc ColumnConfig) build(ds datatable.DataSource, names []string, logger *slog.Logger) (datatable.Column[datatable.Row], error) {
	var col datatable.Column[datatable.Row]
	if cc.Expr != "" {
		var err error
		col, err = script.Column(cc.ID, cc.Title, cc.Expr, names, logger)
		if err != nil {
			return col, fmt.Errorf("column %q: %w", cc.ID, err)
		}
	} else {
		field := cc.Field
		if field == "" {
			field = cc.ID
		}
		idx := slices.Index(names, field)
		if idx < 0 {
			return col, fmt.Errorf("%w: %q", datatable.ErrColumnNotFound, field)
		}
		dataType, err := ds.ColumnType(idx)
		if err != nil {
			return col, err
		}
		id := cc.ID
		if id == "" {
			id = field
		}
		col = datatable.SourceColumn(id, idx, dataType)
		if cc.Title != "" {
			col = col.WithTitle(cc.Title)
		}
	}
	if cc.Sortable {
		col = col.AsSortable()
	}
	return col, nil
}
