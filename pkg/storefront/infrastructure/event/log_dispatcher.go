package event

import (
	"context"

	log "github.com/sirupsen/logrus"

	"storefront/pkg/storefront/domain/service"
)

// NewLogDispatcher returns a dispatcher that only records events in the log.
// It is used when no broker is configured.
func NewLogDispatcher(logger log.FieldLogger) service.EventDispatcher {
	return &logDispatcher{logger: logger}
}

type logDispatcher struct {
	logger log.FieldLogger
}

func (d *logDispatcher) Dispatch(_ context.Context, event service.Event) error {
	d.logger.WithFields(log.Fields{
		"type":  event.Type(),
		"event": event,
	}).Info("event dispatched")
	return nil
}
