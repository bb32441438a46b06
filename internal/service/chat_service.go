package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/astrochat/astrochat-backend/internal/chat"
	"github.com/astrochat/astrochat-backend/internal/domain"
	"github.com/astrochat/astrochat-backend/internal/repository"
)

// ChatService appends message/response exchanges and serves history.
type ChatService struct {
	entries   repository.ChatStore
	responder chat.Responder
	logger    *zap.Logger
}

func NewChatService(entries repository.ChatStore, responder chat.Responder, logger *zap.Logger) *ChatService {
	return &ChatService{entries: entries, responder: responder, logger: logger}
}

// Send generates a response for the message and logs the exchange.
func (s *ChatService) Send(ctx context.Context, userID uuid.UUID, message string) (domain.ChatEntry, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return domain.ChatEntry{}, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}

	entry, err := s.entries.Append(ctx, domain.ChatEntry{
		UserID:   userID,
		Message:  trimmed,
		Response: s.responder(trimmed),
	})
	if err != nil {
		return domain.ChatEntry{}, err
	}

	s.log().Debug("chat entry appended", zap.String("user_id", userID.String()))
	return entry, nil
}

// History returns the caller's exchanges in chronological order.
func (s *ChatService) History(ctx context.Context, userID uuid.UUID) ([]domain.ChatEntry, error) {
	return s.entries.ListFor(ctx, userID)
}

func (s *ChatService) log() *zap.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return zap.L()
}
