package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/bobeautician/advisor/internal/errors"
	"github.com/bobeautician/advisor/internal/models"
	"github.com/bobeautician/advisor/internal/observability"
	"github.com/bobeautician/advisor/pkg/cache"
)

const intakeSavedMessage = "Intake form saved successfully"

// IntakeService stores submitted intake forms in memory so later questions can refer to them
// by intake_id. Entries expire after the configured TTL and are lost on restart.
type IntakeService struct {
	entries *cache.LoaderCache[string, *models.IntakeData]
	metrics observability.CacheMetrics
}

// NewIntakeService creates an intake store holding at most maxEntries forms for ttl each.
// metrics may be nil.
func NewIntakeService(maxEntries int, ttl time.Duration, metrics observability.CacheMetrics) *IntakeService {
	return &IntakeService{
		entries: cache.NewExpiringLoaderCache[string, *models.IntakeData](maxEntries, ttl, func(id string) string { return id }),
		metrics: metrics,
	}
}

// Submit stores a validated intake form and returns the acknowledgement with its new ID.
func (s *IntakeService) Submit(ctx context.Context, sub *models.IntakeSubmission) (*models.IntakeResponse, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate intake id: %w", err)
	}

	s.entries.Set(id.String(), sub.IntakeData())

	if s.metrics != nil {
		s.metrics.RecordStore(ctx, observability.CacheIntake)
	}

	slog.InfoContext(ctx, "intake form submitted",
		"intake_id", id.String(),
		"skin_type", sub.SkinType,
		"sensitive", sub.Sensitive,
		"concerns", len(sub.Concerns),
	)

	return &models.IntakeResponse{
		Status:   "success",
		Message:  intakeSavedMessage,
		IntakeID: id.String(),
	}, nil
}

// Get returns the stored intake form, or a NotFoundError when it never existed or has expired.
func (s *IntakeService) Get(ctx context.Context, id string) (*models.IntakeData, error) {
	data, ok := s.entries.Peek(id)

	if s.metrics != nil {
		s.metrics.RecordLookup(ctx, observability.CacheIntake, ok)
	}

	if !ok {
		return nil, apperrors.NewNotFoundError("intake", "Intake not found")
	}

	return data, nil
}
