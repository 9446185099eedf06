package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"epldash/internal/dataprocessing"
	"epldash/pkg/contracts/domain"
)

// Format is the container format of an uploaded dataset
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// headerSearchDepth bounds how far down a sheet the header row may sit
const headerSearchDepth = 10

// DetectFormat picks the format from a file name extension
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
}

// Table is a parsed dataset before validation
type Table struct {
	Schema  domain.Schema
	Records []domain.Record
	// Rows holds the source row number of each record
	Rows []int
}

// Loader turns uploaded files into validated record stores
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a dataset loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "ingest"))}
}

// Load parses r according to the extension of name and builds a store.
// Missing required columns are reported before any row is validated.
func (l *Loader) Load(ctx context.Context, name string, r io.Reader) (*dataprocessing.Store, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}

	var table *Table
	switch format {
	case FormatXLSX:
		table, err = ReadXLSX(r)
	default:
		table, err = ReadCSV(r)
	}
	if err != nil {
		l.logger.WarnContext(ctx, "Failed to parse dataset",
			slog.String("name", name),
			slog.String("error", err.Error()))
		return nil, err
	}

	store, err := dataprocessing.NewStore(table.Schema, table.Records)
	if err != nil {
		var recErr *dataprocessing.RecordError
		if errors.As(err, &recErr) && recErr.Index < len(table.Rows) {
			err = fmt.Errorf("row %d: %w", table.Rows[recErr.Index], err)
		}
		l.logger.WarnContext(ctx, "Dataset rejected",
			slog.String("name", name),
			slog.Any("schema", table.Schema),
			slog.String("error", err.Error()))
		return nil, err
	}

	l.logger.InfoContext(ctx, "Dataset loaded",
		slog.String("name", name),
		slog.String("format", string(format)),
		slog.Int("records", store.Len()),
		slog.Any("capabilities", store.Capabilities().List()))
	return store, nil
}

// LoadFile opens path and loads it
func (l *Loader) LoadFile(ctx context.Context, path string) (*dataprocessing.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	return l.Load(ctx, filepath.Base(path), f)
}

// ReadCSV parses a delimited file. A UTF-8 BOM is skipped and the delimiter
// is ';' when the header uses it, ',' otherwise.
func ReadCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var header []string
	var rows [][]string
	var lines []int
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if header == nil {
			header = row
			continue
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}
	if header == nil || isBlank(header) {
		return nil, ErrEmptyDataset
	}

	return buildTable(header, rows, lines)
}

func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

// ReadXLSX parses the first sheet whose leading rows contain a records header
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		for i := 0; i < len(rows) && i < headerSearchDepth; i++ {
			if looksLikeHeader(rows[i]) {
				data := rows[i+1:]
				lines := make([]int, len(data))
				for j := range data {
					lines[j] = i + 2 + j
				}
				return buildTable(rows[i], data, lines)
			}
		}
	}
	return nil, ErrNoDataSheet
}

func buildTable(header []string, rows [][]string, rowNums []int) (*Table, error) {
	index, schema := indexHeader(header)
	records, lines, err := parseRecords(index, rows, rowNums)
	if err != nil {
		return nil, err
	}
	return &Table{Schema: schema, Records: records, Rows: lines}, nil
}
