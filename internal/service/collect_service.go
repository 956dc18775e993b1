package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/onrus/powermax-logins/internal/collector"
	"github.com/onrus/powermax-logins/internal/config"
	"github.com/onrus/powermax-logins/internal/domain"
)

// CollectService runs one collection pass: resolve the array list and
// dump one login report file per array into the report directory.
type CollectService struct {
	cfg    *config.Config
	source collector.ReportSource
}

// NewCollectService creates a collect service that locates the SYMCLI
// tools at run time.
func NewCollectService(cfg *config.Config) (*CollectService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	return &CollectService{cfg: cfg}, nil
}

// NewCollectServiceWithSource creates a collect service around an
// explicit report source instead of the SYMCLI tools.
func NewCollectServiceWithSource(cfg *config.Config, source collector.ReportSource) (*CollectService, error) {
	svc, err := NewCollectService(cfg)
	if err != nil {
		return nil, err
	}
	svc.source = source
	return svc, nil
}

// Run collects login reports for arrayIDs, or for every discoverable
// array when none are given. Tool and per-array failures are logged and
// counted; the run itself never fails on them.
func (s *CollectService) Run(ctx context.Context, arrayIDs []string) (*domain.CollectSummary, error) {
	summary := &domain.CollectSummary{
		RunID:           uuid.New().String(),
		StartTime:       time.Now(),
		ArraysRequested: len(arrayIDs),
	}

	ctx, span := startSpan(ctx, "collect", attribute.String("run_id", summary.RunID))
	defer span.End()

	log.Info().
		Str("run_id", summary.RunID).
		Strs("arrays", arrayIDs).
		Str("dir", s.cfg.ReportDir).
		Msg("Starting collection run")

	if s.source == nil {
		symaccess, err := collector.FindSymaccess(s.cfg.SymcliPath)
		if err != nil {
			// Without the tool nothing can be collected; the run still
			// completes and reports.
			toolErr := &domain.ExternalToolError{Tool: "symaccess", Err: err}
			log.Error().Err(toolErr).Msg("Cannot collect reports")
			spanError(span, toolErr, "locating SYMCLI")
			summary.ArraysFailed = len(arrayIDs)
			return s.finish(summary), nil
		}
		log.Debug().Str("symaccess", symaccess).Msg("SYMCLI located")
		s.source = collector.NewSymCLISource(symaccess, s.cfg.ArrayFamilies)
	}

	ids := arrayIDs
	if len(ids) == 0 {
		discovered, err := s.source.ArrayIDs(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Array discovery failed")
			spanError(span, err, "discovering arrays")
			return s.finish(summary), nil
		}
		if len(discovered) == 0 {
			log.Warn().Msg("No arrays discovered")
		}
		ids = discovered
	}
	summary.ArraysResolved = len(ids)

	var checkpoint *collector.Checkpoint
	if s.cfg.CheckpointPath != "" {
		checkpoint = collector.LoadCheckpoint(s.checkpointPath())
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			log.Warn().Str("array", id).Msg("Run interrupted, skipping remaining arrays")
			break
		}
		if err := s.collectOne(ctx, id, checkpoint); err != nil {
			log.Error().Err(err).Str("array", id).Msg("Failed to collect login report")
			summary.ArraysFailed++
			continue
		}
		summary.ArraysCollected++
	}

	span.SetAttributes(
		attribute.Int("arrays", summary.ArraysResolved),
		attribute.Int("collected", summary.ArraysCollected),
	)
	return s.finish(summary), nil
}

// collectOne fetches and stores the login report of a single array.
func (s *CollectService) collectOne(ctx context.Context, arrayID string, checkpoint *collector.Checkpoint) error {
	ctx, span := startSpan(ctx, "collect.array", attribute.String("array", arrayID))
	defer span.End()

	if checkpoint != nil {
		if prev, ok := checkpoint.Arrays[arrayID]; ok {
			log.Debug().
				Str("array", arrayID).
				Time("last_collected", prev.CollectedAt).
				Msg("Array collected before")
		}
	}

	text, err := s.source.LoginReport(ctx, arrayID)
	if err != nil {
		spanError(span, err, "requesting report")
		return err
	}

	collectedAt := time.Now()
	path, err := collector.WriteReport(s.cfg.ReportDir, arrayID, collectedAt, text)
	if err != nil {
		spanError(span, err, "writing report")
		return err
	}

	if checkpoint != nil {
		checkpoint.Update(arrayID, filepath.Base(path), collectedAt)
	}

	log.Info().
		Str("array", arrayID).
		Str("file", path).
		Int("bytes", len(text)).
		Msg("Login report collected")
	return nil
}

// checkpointPath resolves a relative checkpoint path against the report
// directory.
func (s *CollectService) checkpointPath() string {
	if filepath.IsAbs(s.cfg.CheckpointPath) {
		return s.cfg.CheckpointPath
	}
	return filepath.Join(s.cfg.ReportDir, s.cfg.CheckpointPath)
}

func (s *CollectService) finish(summary *domain.CollectSummary) *domain.CollectSummary {
	summary.EndTime = time.Now()
	log.Info().
		Str("run_id", summary.RunID).
		Int("arrays_requested", summary.ArraysRequested).
		Int("arrays_resolved", summary.ArraysResolved).
		Int("arrays_collected", summary.ArraysCollected).
		Int("arrays_failed", summary.ArraysFailed).
		Dur("duration", summary.Duration()).
		Msg("Collection run finished")
	return summary
}
