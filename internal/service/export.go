package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// ExportService assembles the flat itinerary export of one trip.
type ExportService struct {
	store *TripStore
}

// NewExportService constructs an ExportService.
func NewExportService(store *TripStore) *ExportService {
	return &ExportService{store: store}
}

// Export returns the trip and one ExportRow per activity in itinerary order.
// A trip with no activities yields a single row with empty activity fields.
func (s *ExportService) Export(ctx context.Context, actor, tripID uuid.UUID) (domain.Trip, []domain.ExportRow, error) {
	trip, err := s.store.Load(ctx, tripID, actor, domain.CapRead)
	if err != nil {
		return domain.Trip{}, nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	return trip, trip.ExportRows(), nil
}
