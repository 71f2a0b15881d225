package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/basel-ax/diffusionto/internal/domain"
	"github.com/basel-ax/diffusionto/internal/repository"
)

// GenerateOptions controls where a generation is written and how long to wait for it
type GenerateOptions struct {
	// Output is the file to write. Empty means a content addressed name.
	Output string
	// OutputDir prefixes content addressed names. Explicit outputs are used as given.
	OutputDir string
	// MaxWait bounds the polling. Negative waits without a limit.
	MaxWait time.Duration
}

// GenerationResult describes a finished generation
type GenerationResult struct {
	RunID string
	Token domain.JobToken
	Image *domain.GeneratedImage
	Path  string
}

// ImageGenerationService runs a generation from submission to the file on disk
type ImageGenerationService struct {
	client  domain.ImageGenerator
	history repository.HistoryRepository
	log     zerolog.Logger
}

// NewImageGenerationService creates a new image generation service. history may be nil.
func NewImageGenerationService(client domain.ImageGenerator, history repository.HistoryRepository, log zerolog.Logger) *ImageGenerationService {
	return &ImageGenerationService{
		client:  client,
		history: history,
		log:     log,
	}
}

// Generate submits req, waits for the image, and writes it to disk
func (s *ImageGenerationService) Generate(ctx context.Context, req domain.GenerationRequest, opts GenerateOptions) (*GenerationResult, error) {
	runID := uuid.NewString()
	log := s.log.With().Str("run_id", runID).Logger()

	token, err := s.client.RequestImage(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to request image: %w", err)
	}
	log.Debug().Str("token", string(token)).Msg("waiting for image")

	img, err := s.client.CheckAndWait(ctx, token, opts.MaxWait)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for image: %w", err)
	}

	data, err := DecodeRaw(img.Raw)
	if err != nil {
		return nil, err
	}

	path := OutputFilename(data, opts.Output)
	if opts.Output == "" && opts.OutputDir != "" {
		path = filepath.Join(opts.OutputDir, path)
	}
	if err := WriteImage(path, data); err != nil {
		return nil, err
	}

	log.Info().
		Str("path", path).
		Uint64("image_id", img.ID).
		Uint64("credits_used", img.CreditsUsed).
		Msg("image saved")

	result := &GenerationResult{
		RunID: runID,
		Token: token,
		Image: img,
		Path:  path,
	}
	s.record(ctx, log, req, result)

	return result, nil
}

func (s *ImageGenerationService) record(ctx context.Context, log zerolog.Logger, req domain.GenerationRequest, res *GenerationResult) {
	if s.history == nil {
		return
	}

	negative, _ := req.NegativePrompt()
	rec := &domain.GenerationRecord{
		RunID:          res.RunID,
		Token:          string(res.Token),
		Prompt:         req.Prompt(),
		NegativePrompt: negative,
		Steps:          int(req.Steps()),
		Model:          req.Model().String(),
		Size:           req.Size().String(),
		Orientation:    req.Orientation().String(),
		ImageID:        res.Image.ID,
		CreditsUsed:    res.Image.CreditsUsed,
		OutputPath:     res.Path,
	}
	if err := s.history.Save(ctx, rec); err != nil {
		log.Warn().Err(err).Msg("failed to record generation history")
	}
}

// History returns the most recent generations, newest first
func (s *ImageGenerationService) History(ctx context.Context, limit int) ([]domain.GenerationRecord, error) {
	if s.history == nil {
		return nil, fmt.Errorf("generation history is not configured")
	}
	return s.history.ListRecent(ctx, limit)
}
