package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/notify"
)

// ChatService implements a trip's append-only group chat.
type ChatService struct {
	store *TripStore
	fx    Effects
}

// NewChatService constructs a ChatService.
func NewChatService(store *TripStore, fx Effects) *ChatService {
	return &ChatService{store: store, fx: fx}
}

// Post appends a message from actor stamped with the current time.
func (s *ChatService) Post(ctx context.Context, actor, tripID uuid.UUID, content string) (domain.ChatMessage, error) {
	var posted domain.ChatMessage
	trip, err := s.store.Mutate(ctx, tripID, actor, domain.CapWrite, func(t *domain.Trip, now time.Time) error {
		var err error
		posted, err = t.PostMessage(actor, content, now)
		return err
	})
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("service.ChatService.Post: %w", err)
	}
	s.fx.publish(ctx, notify.ChatPosted, trip, actor, posted.ID)
	return posted, nil
}

// List returns the chat log oldest first.
func (s *ChatService) List(ctx context.Context, actor, tripID uuid.UUID) ([]domain.ChatMessage, error) {
	trip, err := s.store.Load(ctx, tripID, actor, domain.CapRead)
	if err != nil {
		return nil, fmt.Errorf("service.ChatService.List: %w", err)
	}
	if trip.Messages == nil {
		return []domain.ChatMessage{}, nil
	}
	return trip.Messages, nil
}
