package service

import (
	"context"
	"time"

	"github.com/basel-ax/diffusionto/internal/domain"
)

type fakeGenerator struct {
	token      domain.JobToken
	image      *domain.GeneratedImage
	requestErr error
	waitErr    error

	requests []domain.GenerationRequest
	waits    []time.Duration
}

func (f *fakeGenerator) RequestImage(ctx context.Context, req domain.GenerationRequest) (domain.JobToken, error) {
	f.requests = append(f.requests, req)
	if f.requestErr != nil {
		return "", f.requestErr
	}
	return f.token, nil
}

func (f *fakeGenerator) CheckStatus(ctx context.Context, token domain.JobToken) (*domain.GeneratedImage, error) {
	if f.waitErr != nil {
		return nil, f.waitErr
	}
	return f.image, nil
}

func (f *fakeGenerator) CheckAndWait(ctx context.Context, token domain.JobToken, maxWait time.Duration) (*domain.GeneratedImage, error) {
	f.waits = append(f.waits, maxWait)
	return f.CheckStatus(ctx, token)
}

type fakeHistory struct {
	saved   []domain.GenerationRecord
	saveErr error
}

func (f *fakeHistory) EnsureSchema(ctx context.Context) error { return nil }

func (f *fakeHistory) Save(ctx context.Context, rec *domain.GenerationRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	rec.ID = int64(len(f.saved) + 1)
	f.saved = append(f.saved, *rec)
	return nil
}

func (f *fakeHistory) ListRecent(ctx context.Context, limit int) ([]domain.GenerationRecord, error) {
	var out []domain.GenerationRecord
	for i := len(f.saved) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.saved[i])
	}
	return out, nil
}
