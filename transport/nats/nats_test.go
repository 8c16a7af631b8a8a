package nats

import (
	"context"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c-fraser/connekted/transport"
)

// stubFactories installs happy-path factory overrides, capturing the URLs
// they were configured with, and restores the real ones when the test ends.
func stubFactories(t *testing.T) (pub *mockPublisher, sub *mockSubscriber, urls *[2]string) {
	t.Helper()
	originalPubFactory := PublisherFactory
	originalSubFactory := SubscriberFactory
	t.Cleanup(func() {
		PublisherFactory = originalPubFactory
		SubscriberFactory = originalSubFactory
	})

	pub = &mockPublisher{}
	sub = &mockSubscriber{}
	urls = &[2]string{}
	PublisherFactory = func(config nats.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
		urls[0] = config.URL
		return pub, nil
	}
	SubscriberFactory = func(config nats.SubscriberConfig, logger watermill.LoggerAdapter) (message.Subscriber, error) {
		urls[1] = config.URL
		return sub, nil
	}
	return pub, sub, urls
}

func TestRegistration(t *testing.T) {
	original := transport.DefaultRegistry
	defer func() { transport.DefaultRegistry = original }()
	transport.DefaultRegistry = transport.NewRegistry()
	Register()

	caps := transport.GetCapabilities(TransportName)
	assert.Equal(t, TransportName, caps.Name)
	assert.Equal(t, transport.NATSCapabilities, Capabilities())
	assert.True(t, caps.SupportsOrdering, "core NATS preserves subject order")
	assert.False(t, caps.SupportsReliableDelivery(), "core NATS is at-most-once; JetStream adds persistence")
}

func TestBuildPassesURLToBothEnds(t *testing.T) {
	pub, sub, urls := stubFactories(t)

	cfg := &mockConfig{natsURL: "nats://localhost:4222"}
	tr, err := Build(context.Background(), cfg, watermill.NopLogger{})

	require.NoError(t, err)
	assert.Equal(t, message.Publisher(pub), tr.Publisher)
	assert.Equal(t, message.Subscriber(sub), tr.Subscriber)
	assert.Equal(t, "nats://localhost:4222", urls[0], "publisher connects to the configured URL")
	assert.Equal(t, "nats://localhost:4222", urls[1], "subscriber connects to the configured URL")
}

func TestBuildFailures(t *testing.T) {
	cases := []struct {
		name     string
		sabotage func()
		want     string
	}{
		{
			name: "publisher connection",
			sabotage: func() {
				PublisherFactory = func(config nats.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
					return nil, errors.New("publisher connect refused")
				}
			},
			want: "publisher connect refused",
		},
		{
			name: "subscriber connection",
			sabotage: func() {
				SubscriberFactory = func(config nats.SubscriberConfig, logger watermill.LoggerAdapter) (message.Subscriber, error) {
					return nil, errors.New("subscriber connect refused")
				}
			},
			want: "subscriber connect refused",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stubFactories(t)
			tc.sabotage()

			cfg := &mockConfig{natsURL: "nats://localhost:4222"}
			_, err := Build(context.Background(), cfg, watermill.NopLogger{})

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestRegistryBuildsThisTransport(t *testing.T) {
	pub, _, _ := stubFactories(t)

	cfg := &mockConfig{natsURL: "nats://localhost:4222"}
	tr, err := transport.Build(context.Background(), cfg, watermill.NopLogger{})

	require.NoError(t, err, "importing this package must be enough to register it")
	assert.Equal(t, message.Publisher(pub), tr.Publisher)
}

type mockConfig struct {
	natsURL string
}

func (m *mockConfig) GetPubSubSystem() string       { return TransportName }
func (m *mockConfig) GetKafkaBrokers() []string     { return nil }
func (m *mockConfig) GetKafkaConsumerGroup() string { return "" }
func (m *mockConfig) GetRabbitMQURL() string        { return "" }
func (m *mockConfig) GetNATSURL() string            { return m.natsURL }
func (m *mockConfig) GetHTTPServerAddress() string  { return "" }
func (m *mockConfig) GetHTTPPublisherURL() string   { return "" }
func (m *mockConfig) GetAWSRegion() string          { return "" }
func (m *mockConfig) GetAWSAccountID() string       { return "" }
func (m *mockConfig) GetAWSAccessKeyID() string     { return "" }
func (m *mockConfig) GetAWSSecretAccessKey() string { return "" }
func (m *mockConfig) GetAWSEndpoint() string        { return "" }

type mockPublisher struct{}

func (m *mockPublisher) Publish(topic string, messages ...*message.Message) error { return nil }
func (m *mockPublisher) Close() error                                             { return nil }

type mockSubscriber struct{}

func (m *mockSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return make(chan *message.Message), nil
}
func (m *mockSubscriber) Close() error { return nil }
