package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-console/internal/events"
)

// AuditWorker writes every console action to the audit log.
type AuditWorker struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditWorker creates the worker.
func NewAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) *AuditWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditWorker{dispatcher: dispatcher, logger: logger.Named("audit")}
}

// Start subscribes to all events.
func (w *AuditWorker) Start() {
	if w.dispatcher == nil {
		return
	}
	w.dispatcher.SubscribeAll(w.handle)
}

func (w *AuditWorker) handle(_ context.Context, event events.Event) error {
	w.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("session_id", event.Actor.SessionID),
		zap.String("user_id", event.Actor.UserID),
		zap.String("actor", event.Actor.Name),
		zap.Any("payload", event.Payload))
	return nil
}
