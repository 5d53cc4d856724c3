package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/saurab2057/Filetool/internal/cloudconvert"
	"github.com/saurab2057/Filetool/internal/metrics"
	"github.com/saurab2057/Filetool/internal/model"
	"github.com/saurab2057/Filetool/internal/repository"
	"github.com/saurab2057/Filetool/internal/validation"
)

const historyWriteTimeout = 10 * time.Second

// Converter runs one file through the conversion vendor.
type Converter interface {
	Convert(ctx context.Context, conv cloudconvert.Conversion) (*cloudconvert.File, error)
}

type ConversionService struct {
	jobs        repository.JobRepository
	converter   Converter
	metrics     *metrics.Metrics
	fileTimeout time.Duration
	now         func() time.Time
}

func NewConversionService(jobs repository.JobRepository, converter Converter, m *metrics.Metrics, fileTimeout time.Duration) *ConversionService {
	return &ConversionService{
		jobs:        jobs,
		converter:   converter,
		metrics:     m,
		fileTimeout: fileTimeout,
		now:         time.Now,
	}
}

// ConvertBatch converts every request concurrently and returns one outcome per
// request in input order. A failing file never affects its siblings.
//
// Conversions are detached from ctx cancellation: once accepted, a batch runs
// to completion or to the per-file deadline.
func (s *ConversionService) ConvertBatch(ctx context.Context, identity *model.Identity, requests []model.ConversionRequest) []model.ConversionOutcome {
	ctx = context.WithoutCancel(ctx)
	outcomes := make([]model.ConversionOutcome, len(requests))

	var wg sync.WaitGroup
	for i := range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = s.convertOne(ctx, identity, requests[i])
		}()
	}
	wg.Wait()

	return outcomes
}

func (s *ConversionService) convertOne(ctx context.Context, identity *model.Identity, req model.ConversionRequest) (outcome model.ConversionOutcome) {
	safeName := validation.SanitizeFilename(req.OriginalName)
	if safeName == "" {
		safeName = "upload." + req.SourceFormat
	}
	log := slog.With("user_id", identity.ID, "filename", safeName, "from", req.SourceFormat, "to", req.TargetFormat)

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic during conversion", "panic", r, "stack", string(debug.Stack()))
			s.metrics.Conversion(req.TargetFormat, metrics.OutcomePanic, 0)
			outcome = failedOutcome(req.OriginalName, "Conversion failed.")
		}
	}()

	recipe, err := BuildRecipe(req.SourceFormat, req.TargetFormat, req.Settings)
	if err != nil {
		log.Info("unsupported conversion")
		s.metrics.Conversion(req.TargetFormat, metrics.OutcomeUnsupported, 0)
		return failedOutcome(req.OriginalName, outcomeMessage(err))
	}

	convCtx := ctx
	if s.fileTimeout > 0 {
		var cancel context.CancelFunc
		convCtx, cancel = context.WithTimeout(ctx, s.fileTimeout)
		defer cancel()
	}

	start := time.Now()
	file, err := s.converter.Convert(convCtx, cloudconvert.Conversion{
		From:     req.SourceFormat,
		To:       req.TargetFormat,
		Filename: safeName,
		Recipe:   recipe,
		Content:  req.Content,
	})
	if err != nil {
		if errors.Is(err, ErrNoOutputProduced) {
			log.Warn("conversion produced no output")
			s.metrics.Conversion(req.TargetFormat, metrics.OutcomeNoOutput, time.Since(start))
		} else {
			err = &VendorError{Err: err}
			log.Error("conversion failed", "error", err)
			s.metrics.Conversion(req.TargetFormat, metrics.OutcomeVendorError, time.Since(start))
		}
		return failedOutcome(req.OriginalName, outcomeMessage(err))
	}

	s.metrics.Conversion(req.TargetFormat, metrics.OutcomeSuccess, time.Since(start))
	s.recordHistory(ctx, identity.ID, req.TargetFormat, file)

	log.Info("conversion finished", "duration_ms", time.Since(start).Milliseconds())
	return model.ConversionOutcome{OriginalName: req.OriginalName, Success: true, DownloadURL: file.URL}
}

// recordHistory stores the finished conversion. Failures are logged only: the
// file was converted and that result stands.
func (s *ConversionService) recordHistory(ctx context.Context, userID, target string, file *cloudconvert.File) {
	ctx, cancel := context.WithTimeout(ctx, historyWriteTimeout)
	defer cancel()

	job := &model.ConversionJob{
		ID:          uuid.NewString(),
		UserID:      userID,
		Filename:    file.Filename,
		Format:      target,
		SizeInBytes: file.Size,
		ProcessedAt: s.now().UTC(),
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		s.metrics.HistoryWriteFailed()
		slog.Error("failed to save conversion history", "error", err, "user_id", userID, "filename", file.Filename)
	}
}

// History returns the caller's conversions, newest first.
func (s *ConversionService) History(ctx context.Context, userID string) ([]*model.ConversionJob, error) {
	jobs, err := s.jobs.ByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return jobs, nil
}

func failedOutcome(name, message string) model.ConversionOutcome {
	return model.ConversionOutcome{OriginalName: name, Success: false, Message: message}
}

// outcomeMessage is the client-facing text for a per-file failure.
func outcomeMessage(err error) string {
	var unsupported *UnsupportedConversionError
	var jobErr *cloudconvert.JobError
	var apiErr *cloudconvert.APIError

	switch {
	case errors.As(err, &unsupported):
		return fmt.Sprintf("Unsupported conversion from .%s to .%s", unsupported.From, unsupported.To)
	case errors.Is(err, ErrNoOutputProduced):
		return "Conversion process did not produce an output file."
	case errors.Is(err, context.DeadlineExceeded):
		return "Conversion timed out."
	case errors.As(err, &jobErr) && jobErr.Message != "":
		return jobErr.Message
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	default:
		return "Conversion failed."
	}
}
