package kafka_middleware

import (
	"context"
	"time"

	"dentabook/pkg/kafka"
)

// PublishObserver receives the outcome of every publish.
type PublishObserver func(topic, eventType string, duration time.Duration, err error)

// MetricsProducerMiddleware times each publish and reports it to observe.
func MetricsProducerMiddleware(observe PublishObserver) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.PublishFunc) error {
		start := time.Now()
		err := next(ctx, msg)
		if observe != nil {
			observe(msg.Topic, msg.GetEventType(), time.Since(start), err)
		}
		return err
	}
}
