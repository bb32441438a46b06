// Package notify abstracts the outbound email/SMS collaborator that
// delivers verification codes. There is no real provider integration;
// the logging dispatcher stands in for one. Dispatch failures are
// reported to the caller, never retried.
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/astrochat/astrochat-backend/internal/domain"
)

// Dispatcher delivers a verification code to the identifier's owner
// over the channel matching the identifier kind.
type Dispatcher interface {
	SendCode(ctx context.Context, kind domain.IdentifierKind, identifier, code string) error
}

// LogDispatcher writes outbound messages to the log instead of an
// email/SMS gateway. The code is logged so local development can
// complete verification flows without a provider account.
type LogDispatcher struct {
	logger *zap.Logger
}

func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) SendCode(ctx context.Context, kind domain.IdentifierKind, identifier, code string) error {
	d.log().Info("dispatching verification code",
		zap.String("channel", string(kind)),
		zap.String("identifier", identifier),
		zap.String("code", code),
	)
	return nil
}

func (d *LogDispatcher) log() *zap.Logger {
	if d != nil && d.logger != nil {
		return d.logger
	}
	return zap.L()
}
