// Package logging provides an EventPublisher that only logs, used when no
// broker is configured.
package logging

import (
	"context"

	"go.uber.org/zap"

	"github.com/sheikh-saqib/personal-finance-ledger/internal/interfaces"
)

type Publisher struct {
	logger *zap.Logger
}

func NewPublisher(logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{logger: logger.Named("events")}
}

func (p *Publisher) Publish(_ context.Context, topic, key string, event any) error {
	p.logger.Debug("ledger event",
		zap.String("topic", topic),
		zap.String("key", key),
		zap.Any("event", event))
	return nil
}

var _ interfaces.EventPublisher = (*Publisher)(nil)
