package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/onrus/powermax-logins/internal/domain"
)

// Header columns of the flat login table, in output order.
var csvColumns = []string{
	"array",
	"directorPort",
	"directorWwpn",
	"nodeWwn",
	"portWwn",
	"initiatorName",
	"fcid",
	"loggedIn",
	"onFabric",
	"logTime",
	"sourceFile",
}

// CSVWriter writes login records to a CSV file, one row per record.
// Empty fields become empty cells.
type CSVWriter struct {
	path   string
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates the output file at path, truncating (with a
// warning) any file already there, and writes the header row.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if _, err := os.Stat(path); err == nil {
		log.Warn().Str("path", path).Msg("Overwriting existing output file")
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(csvColumns); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	return &CSVWriter{
		path:   path,
		file:   file,
		writer: writer,
	}, nil
}

// Write appends one row per record.
func (w *CSVWriter) Write(ctx context.Context, records []domain.LoginRecord) error {
	for _, record := range records {
		if err := w.writer.Write(csvRow(record)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	return nil
}

// Close flushes buffered rows and closes the file.
func (w *CSVWriter) Close() error {
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to flush CSV output: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close output file %s: %w", w.path, err)
	}

	log.Debug().Str("path", w.path).Msg("CSV output written")
	return nil
}

func csvRow(r domain.LoginRecord) []string {
	return []string{
		r.Array,
		r.DirectorPort,
		r.DirectorWWPN,
		r.NodeWWN,
		r.PortWWN,
		r.InitiatorName,
		r.FCID,
		r.LoggedIn,
		r.OnFabric,
		r.LogTime,
		r.SourceFile,
	}
}
