// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package loader opens data files as datatable sources.
package loader

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	arrowadapter "github.com/magpierre/datatable-engine/adapters/arrow"
	csvadapter "github.com/magpierre/datatable-engine/adapters/csv"
	sliceadapter "github.com/magpierre/datatable-engine/adapters/slice"
	"github.com/magpierre/datatable-engine/datatable"
)

// FileType represents the type of data file.
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeCSV
	FileTypeParquet
	FileTypeJSON
)

func (f FileType) String() string {
	switch f {
	case FileTypeCSV:
		return "csv"
	case FileTypeParquet:
		return "parquet"
	case FileTypeJSON:
		return "json"
	default:
		return "unknown"
	}
}

var (
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrEmptyJSON       = errors.New("JSON file is empty or has no records")
)

// DetectFileType determines the type of file from its extension.
func DetectFileType(path string) FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return FileTypeCSV
	case ".parquet", ".pq":
		return FileTypeParquet
	case ".json":
		return FileTypeJSON
	default:
		return FileTypeUnknown
	}
}

// DetectCSVSeparator picks the most frequent of comma, semicolon, tab and
// pipe on the first line of r. Ties and lines with none of them give comma.
func DetectCSVSeparator(r io.Reader) (rune, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return ',', scanner.Err()
	}
	firstLine := scanner.Text()

	detected, maxCount := ',', 0
	for _, sep := range []rune{',', ';', '\t', '|'} {
		if n := strings.Count(firstLine, string(sep)); n > maxCount {
			detected, maxCount = sep, n
		}
	}
	return detected, nil
}

// SeparatorName returns a human-readable name for sep.
func SeparatorName(sep rune) string {
	switch sep {
	case ',':
		return "comma"
	case ';':
		return "semicolon"
	case '\t':
		return "tab"
	case '|':
		return "pipe"
	default:
		return string(sep)
	}
}

// DefaultTimeout bounds a load when no timeout is configured.
const DefaultTimeout = 60 * time.Second

// WithTimeout derives a context for one load. Timeouts of zero or less
// use DefaultTimeout.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// Loader reads data files. The zero value is ready to use.
type Loader struct {
	Logger    *slog.Logger
	Allocator memory.Allocator
}

// Load opens path with a default Loader.
func Load(ctx context.Context, path string) (datatable.DataSource, error) {
	return (&Loader{}).Load(ctx, path)
}

// Load opens path as a data source, choosing the reader by extension.
func (l *Loader) Load(ctx context.Context, path string) (datatable.DataSource, error) {
	var (
		src datatable.DataSource
		err error
	)
	fileType := DetectFileType(path)
	switch fileType {
	case FileTypeCSV:
		src, err = l.loadCSV(path)
	case FileTypeParquet:
		src, err = l.loadParquet(ctx, path)
	case FileTypeJSON:
		src, err = l.loadJSON(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	src.Metadata()["path"] = path
	l.logger().Info("loaded data file",
		"file", filepath.Base(path),
		"type", fileType.String(),
		"rows", src.RowCount(),
		"columns", src.ColumnCount())
	return src, nil
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l.Logger
}

func (l *Loader) loadCSV(path string) (datatable.DataSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	separator, err := DetectCSVSeparator(f)
	f.Close()
	if err != nil {
		l.logger().Warn("separator detection failed, using comma", "file", path, "error", err)
		separator = ','
	}
	l.logger().Debug("detected CSV separator", "separator", SeparatorName(separator))

	config := csvadapter.DefaultConfig()
	config.Delimiter = separator
	src, err := csvadapter.NewFromFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV data source: %w", err)
	}
	return src, nil
}

func (l *Loader) loadParquet(ctx context.Context, path string) (datatable.DataSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer f.Close()

	pf, err := file.NewParquetReader(f, file.WithReadProps(parquet.NewReaderProperties(nil)))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pf.Close()

	mem := l.Allocator
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	arrowReader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	defer table.Release()

	src, err := arrowadapter.NewFromArrowTable(table)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow data source: %w", err)
	}
	return src, nil
}

func (l *Loader) loadJSON(path string) (datatable.DataSource, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}
	data, err := ParseJSON(content)
	if err != nil {
		return nil, err
	}
	src, err := sliceadapter.NewFromMaps(data)
	if err != nil {
		return nil, fmt.Errorf("failed to create data source from JSON: %w", err)
	}
	return src, nil
}

// ParseJSON decodes an array of objects, or a single object as one record.
func ParseJSON(content []byte) ([]map[string]interface{}, error) {
	var data []map[string]interface{}
	if err := json.Unmarshal(content, &data); err != nil {
		var single map[string]interface{}
		if err := json.Unmarshal(content, &single); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		data = []map[string]interface{}{single}
	}
	if len(data) == 0 {
		return nil, ErrEmptyJSON
	}
	return data, nil
}
