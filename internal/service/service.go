// Package service holds the console's use cases. Every call runs with the
// operator's credential already attached to the context by the auth middleware.
package service

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/spec-kit/staff-console/internal/domain"
	"github.com/spec-kit/staff-console/internal/events"
	"github.com/spec-kit/staff-console/internal/imaging"
)

// RawFile is an image as picked by the operator, before pre-processing.
type RawFile struct {
	Filename string
	Content  io.Reader
}

// prepareImage runs the picked file through the image pre-processor and
// returns it as an upload for field.
func prepareImage(field string, file *RawFile) (*domain.Upload, error) {
	if file == nil {
		return nil, nil
	}
	blob, err := imaging.Process(file.Content, file.Filename)
	if err != nil {
		return nil, err
	}
	return &domain.Upload{
		Field:       field,
		Filename:    blob.Name,
		ContentType: blob.ContentType,
		Data:        blob.Data,
	}, nil
}

// publish emits an event. The action already succeeded upstream, so a failing
// subscriber is logged and not surfaced.
func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
