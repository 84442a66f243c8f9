package repository

import (
	"context"

	"insider-tracker/internal/tracker/config"
	"insider-tracker/pkg/logger"
)

// DocumentsRepository downloads raw filing documents.
type DocumentsRepository interface {
	// Fetch downloads one document. Failures are per-document; callers log
	// and skip rather than aborting the batch.
	Fetch(ctx context.Context, url string) (string, error)
}

type documentsRepository struct {
	cfg    *config.Config
	log    *logger.Logger
	client *EdgarClient
}

// NewDocumentsRepository creates a new DocumentsRepository.
func NewDocumentsRepository(cfg *config.Config, log *logger.Logger, client *EdgarClient) DocumentsRepository {
	return &documentsRepository{cfg: cfg, log: log, client: client}
}

func (r *documentsRepository) Fetch(ctx context.Context, url string) (string, error) {
	body, err := r.client.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
