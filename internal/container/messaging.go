package container

import (
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/samber/do"
	"github.com/serroba/sentinel/internal/analytics"
	analyticsstore "github.com/serroba/sentinel/internal/analytics/store"
	"github.com/serroba/sentinel/internal/messaging"
	"go.uber.org/zap"
)

// DefaultConsumerGroup is the Redis streams consumer group used when none is configured.
const DefaultConsumerGroup = "sentinel-analytics"

// RejectedPublisher publishes rejection events.
type RejectedPublisher = messaging.Publish[analytics.RejectedEvent]

// PublisherGroupPackage provides the Redis streams publisher and the typed
// rejection publisher. With events disabled rejections are discarded and no
// connection is opened.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		client := do.MustInvoke[*RedisClient](i).Client

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client:     client,
			Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
		}, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (RejectedPublisher, error) {
		if !do.MustInvoke[*Options](i).Events {
			return messaging.Discard[analytics.RejectedEvent](), nil
		}

		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return analytics.NewRejectedPublisher(group.Publisher()), nil
	})
}

// ConsumerGroupPackage provides the analytics consumers reading rejection events.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		client := do.MustInvoke[*RedisClient](i).Client

		consumerGroup := opts.ConsumerGroup
		if consumerGroup == "" {
			consumerGroup = DefaultConsumerGroup
		}

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        client,
			Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
			ConsumerGroup: consumerGroup,
		}, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, err
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(analytics.NewConsumer(subscriber, analyticsstore.NewNoop(logger), logger))

		return group, nil
	})
}
