package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/onrus/powermax-logins/internal/config"
	"github.com/onrus/powermax-logins/internal/domain"
	"github.com/onrus/powermax-logins/internal/export"
	"github.com/onrus/powermax-logins/internal/report"
	"github.com/onrus/powermax-logins/internal/state"
)

// ParseService runs one parse pass: resolve input files, extract the
// login records, filter, export.
type ParseService struct {
	cfg *config.Config
}

// NewParseService creates a new parse service.
func NewParseService(cfg *config.Config) (*ParseService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	return &ParseService{cfg: cfg}, nil
}

// Run parses the given paths (or the report directory's default glob
// when none are given) and exports the resulting records. Per-file
// failures are logged, counted and skipped; the returned error reports
// only conditions that prevent the run itself, such as a bad input
// pattern or an unwritable output file.
func (s *ParseService) Run(ctx context.Context, paths []string) (*domain.RunSummary, error) {
	summary := &domain.RunSummary{
		RunID:     uuid.New().String(),
		StartTime: time.Now(),
	}

	ctx, span := startSpan(ctx, "parse", attribute.String("run_id", summary.RunID))
	defer span.End()

	log.Info().
		Str("run_id", summary.RunID).
		Strs("paths", paths).
		Msg("Starting parse run")

	files, err := report.ResolveInputs(paths, s.cfg.ReportDir)
	if err != nil {
		var noInput *domain.NoInputError
		if errors.As(err, &noInput) {
			log.Warn().Err(noInput).Msg("No input files matched, no output written")
			return s.finish(summary), nil
		}
		spanError(span, err, "resolving inputs")
		return summary, err
	}
	summary.FilesResolved = len(files)

	var store state.Store
	if s.cfg.StatePath != "" {
		boltStore, err := state.NewBoltDBStore(s.cfg.StatePath)
		if err != nil {
			spanError(span, err, "opening state store")
			return summary, err
		}
		store = boltStore
		defer store.Close()
	}

	// One parser for the whole run, so director and array context carries
	// across files the way it carries across blocks.
	parser := report.NewParser()
	var records []domain.LoginRecord

	for _, file := range files {
		if ctx.Err() != nil {
			log.Warn().Str("file", file).Msg("Run interrupted, skipping remaining files")
			break
		}
		records = append(records, s.parseFile(ctx, parser, store, file, summary)...)
	}

	if len(records) == 0 {
		log.Warn().Msg("No login records found")
	}

	filtered, err := report.FilterByPortWWN(records, s.cfg.PortWWNFilter)
	if err != nil {
		spanError(span, err, "applying filter")
		return summary, err
	}
	if s.cfg.PortWWNFilter != "" {
		log.Info().
			Str("filter", s.cfg.PortWWNFilter).
			Int("records", len(records)).
			Int("matching", len(filtered)).
			Msg("Applied portWwn filter")
	}
	summary.RecordsExported = len(filtered)

	if err := s.export(ctx, filtered); err != nil {
		spanError(span, err, "exporting records")
		return summary, err
	}

	span.SetAttributes(
		attribute.Int("files", summary.FilesParsed),
		attribute.Int("records", summary.RecordsParsed),
	)
	return s.finish(summary), nil
}

// parseFile reads and parses one report file, returning its finalized
// records. Failures are logged and counted, never propagated: the run
// always continues with the next file.
func (s *ParseService) parseFile(ctx context.Context, parser *report.Parser, store state.Store, file string, summary *domain.RunSummary) []domain.LoginRecord {
	_, span := startSpan(ctx, "parse.file", attribute.String("file", file))
	defer span.End()

	data, err := os.ReadFile(file)
	if err != nil {
		log.Warn().Err(err).Str("file", file).Msg("Skipping unreadable file")
		summary.FilesFailed++
		spanError(span, err, "reading file")
		return nil
	}

	digest := state.ContentDigest(data)
	if store != nil {
		known, err := store.Get(ctx, stateKey(file))
		if err != nil {
			log.Warn().Err(err).Str("file", file).Msg("State lookup failed, re-parsing")
		} else if known == digest {
			log.Debug().Str("file", file).Msg("File unchanged since last parse, skipping")
			summary.FilesSkipped++
			return nil
		}
	}

	logParseStart(file)

	records, err := parser.Parse(file, string(data))
	summary.RecordsParsed += len(records)
	span.SetAttributes(attribute.Int("records", len(records)))

	if err != nil {
		// Records finalized before the failure stay in the output; the
		// file is not marked parsed, so the next run retries it.
		log.Error().Err(err).Str("file", file).Msg("Error processing file")
		summary.FilesFailed++
		spanError(span, err, "parsing file")
		return records
	}

	summary.FilesParsed++
	if store != nil {
		if err := store.Set(ctx, stateKey(file), digest); err != nil {
			log.Warn().Err(err).Str("file", file).Msg("Failed to record parse state")
		}
	}
	return records
}

// export writes the records: always the CSV, plus ClickHouse when
// enabled. A ClickHouse failure is reported without invalidating the
// already-written CSV.
func (s *ParseService) export(ctx context.Context, records []domain.LoginRecord) error {
	csvWriter, err := export.NewCSVWriter(s.cfg.OutputPath)
	if err != nil {
		return err
	}
	if err := writeTo(ctx, csvWriter, records); err != nil {
		return err
	}
	log.Info().
		Str("path", s.cfg.OutputPath).
		Int("records", len(records)).
		Msg("CSV output written")

	if s.cfg.ClickHouseEnabled {
		if err := s.exportClickHouse(ctx, records); err != nil {
			log.Error().Err(err).Msg("ClickHouse export failed")
		}
	}
	return nil
}

func (s *ParseService) exportClickHouse(ctx context.Context, records []domain.LoginRecord) error {
	writer, err := export.NewClickHouseWriter(ctx,
		s.cfg.ClickHouseHost, s.cfg.ClickHousePort,
		s.cfg.ClickHouseDB, s.cfg.ClickHouseTable,
		s.cfg.ClickHouseUser, s.cfg.ClickHousePassword)
	if err != nil {
		return err
	}
	if err := writeTo(ctx, writer, records); err != nil {
		return err
	}
	log.Info().
		Int("records", len(records)).
		Msg("ClickHouse output written")
	return nil
}

// writeTo pushes the full record sequence through one sink and closes it.
func writeTo(ctx context.Context, w export.Writer, records []domain.LoginRecord) error {
	if err := w.Write(ctx, records); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (s *ParseService) finish(summary *domain.RunSummary) *domain.RunSummary {
	summary.EndTime = time.Now()
	log.Info().
		Str("run_id", summary.RunID).
		Int("files_resolved", summary.FilesResolved).
		Int("files_parsed", summary.FilesParsed).
		Int("files_failed", summary.FilesFailed).
		Int("files_skipped", summary.FilesSkipped).
		Int("records_parsed", summary.RecordsParsed).
		Int("records_exported", summary.RecordsExported).
		Dur("duration", summary.Duration()).
		Msg("Parse run finished")
	return summary
}

// stateKey is the absolute path when resolvable, so the same file found
// through different relative paths skips consistently.
func stateKey(file string) string {
	abs, err := filepath.Abs(file)
	if err != nil {
		return file
	}
	return abs
}

// logParseStart names the array and collection time when the file
// follows the collector's naming convention.
func logParseStart(file string) {
	if arrayID, collectedAt, err := report.ParseReportFilename(filepath.Base(file)); err == nil {
		log.Debug().
			Str("file", file).
			Str("array", arrayID).
			Time("collected_at", collectedAt).
			Msg("Parsing login report")
		return
	}
	log.Debug().Str("file", file).Msg("Parsing input file")
}
