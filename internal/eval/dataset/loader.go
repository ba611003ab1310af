package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Loader reads part-pair datasets from JSONL or Parquet files
type Loader struct {
	datasetPath string
}

// NewLoader creates a new dataset loader
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// Load loads every record from the dataset file
func (l *Loader) Load() ([]PairRecord, error) {
	return l.LoadSample(0)
}

// LoadSample loads at most limit records; limit <= 0 loads everything
func (l *Loader) LoadSample(limit int) ([]PairRecord, error) {
	ext := strings.ToLower(filepath.Ext(l.datasetPath))

	switch ext {
	case ".parquet":
		return l.loadParquet(limit)
	case ".jsonl", ".json":
		return l.loadJSONL(limit)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
}

// LoadWithFilter loads records matching a filter function
func (l *Loader) LoadWithFilter(filterFn func(*PairRecord) bool) ([]PairRecord, error) {
	records, err := l.Load()
	if err != nil {
		return nil, err
	}

	filtered := records[:0]
	for i := range records {
		if filterFn(&records[i]) {
			filtered = append(filtered, records[i])
		}
	}
	return filtered, nil
}

// loadJSONL loads records from a JSONL file, skipping malformed lines
func (l *Loader) loadJSONL(limit int) ([]PairRecord, error) {
	slog.Debug("Opening JSONL file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	records, err := ReadJSONL(file, limit)
	if err != nil {
		return nil, err
	}

	slog.Debug("Finished reading JSONL file", "total_records", len(records))
	return records, nil
}

// ReadJSONL decodes one PairRecord per line from r
func ReadJSONL(r io.Reader, limit int) ([]PairRecord, error) {
	var records []PairRecord
	scanner := bufio.NewScanner(r)

	// Spec lists can make long lines
	const maxCapacity = 4 * 1024 * 1024
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		if limit > 0 && len(records) >= limit {
			break
		}
		lineNum++
		line := scanner.Bytes()

		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var record PairRecord
		if err := json.Unmarshal(line, &record); err != nil {
			slog.Warn("Skipping malformed dataset line", "line", lineNum, "err", err)
			continue
		}

		records = append(records, record)

		if lineNum%1000 == 0 {
			slog.Debug("Reading JSONL", "lines_read", lineNum)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	return records, nil
}

// loadParquet loads records from a Parquet file in batches
func (l *Loader) loadParquet(limit int) ([]PairRecord, error) {
	slog.Debug("Opening Parquet file", "path", l.datasetPath, "limit", limit)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	slog.Debug("Parquet file stats", "size_bytes", info.Size(), "size_mb", info.Size()/1024/1024)

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[PairRecord](pf)
	defer reader.Close()

	var records []PairRecord

	batchNum := 0
	for limit <= 0 || len(records) < limit {
		// fresh batch each time: the reader may reuse slice memory in rows
		rows := make([]PairRecord, 128)
		n, err := reader.Read(rows)
		if n > 0 {
			batchNum++
			if limit > 0 && n > limit-len(records) {
				n = limit - len(records)
			}
			records = append(records, rows[:n]...)
			slog.Debug("Read batch from Parquet", "batch", batchNum, "rows_in_batch", n, "total_rows_read", len(records))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Finished reading Parquet file", "total_records", len(records), "total_batches", batchNum)

	return records, nil
}

// WriteParquet writes records to a Parquet file, used to convert JSONL
// cross-reference exports into the columnar format
func WriteParquet(path string, records []PairRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[PairRecord](file)
	if _, err := writer.Write(records); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
