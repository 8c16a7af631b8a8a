package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConfig struct {
	system string
}

func (c *stubConfig) GetPubSubSystem() string       { return c.system }
func (c *stubConfig) GetKafkaBrokers() []string     { return nil }
func (c *stubConfig) GetKafkaConsumerGroup() string { return "" }
func (c *stubConfig) GetRabbitMQURL() string        { return "" }
func (c *stubConfig) GetNATSURL() string            { return "" }
func (c *stubConfig) GetHTTPServerAddress() string  { return "" }
func (c *stubConfig) GetHTTPPublisherURL() string   { return "" }
func (c *stubConfig) GetAWSRegion() string          { return "" }
func (c *stubConfig) GetAWSAccountID() string       { return "" }
func (c *stubConfig) GetAWSAccessKeyID() string     { return "" }
func (c *stubConfig) GetAWSSecretAccessKey() string { return "" }
func (c *stubConfig) GetAWSEndpoint() string        { return "" }

type stubPublisher struct{}

func (p *stubPublisher) Publish(topic string, messages ...*message.Message) error { return nil }
func (p *stubPublisher) Close() error                                             { return nil }

type stubSubscriber struct{}

func (s *stubSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return nil, nil
}
func (s *stubSubscriber) Close() error { return nil }

func stubBuilder(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (Transport, error) {
	return Transport{Publisher: &stubPublisher{}, Subscriber: &stubSubscriber{}}, nil
}

func TestRegistryBuild(t *testing.T) {
	registry := NewRegistry()
	registry.Register("stub", stubBuilder)

	tr, err := registry.Build(context.Background(), &stubConfig{system: "stub"}, watermill.NopLogger{})
	require.NoError(t, err)
	assert.NotNil(t, tr.Publisher)
	assert.NotNil(t, tr.Subscriber)
}

func TestRegistryBuildUnknownTransport(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Build(context.Background(), &stubConfig{system: "missing"}, watermill.NopLogger{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown transport: "missing"`)
}

func TestRegistryBuildNilConfig(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Build(context.Background(), nil, watermill.NopLogger{})
	require.Error(t, err)
}

func TestRegistryBuildPropagatesBuilderError(t *testing.T) {
	registry := NewRegistry()
	sentinel := errors.New("broker unreachable")
	registry.Register("failing", func(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (Transport, error) {
		return Transport{}, sentinel
	})

	_, err := registry.Build(context.Background(), &stubConfig{system: "failing"}, watermill.NopLogger{})
	assert.ErrorIs(t, err, sentinel)
}

func TestRegistryCapabilities(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterWithCapabilities("stub", stubBuilder, Capabilities{
		Name:        "stub",
		SupportsAck: true,
	})

	caps := registry.GetCapabilities("stub")
	assert.Equal(t, "stub", caps.Name)
	assert.True(t, caps.SupportsAck)

	unknown := registry.GetCapabilities("nope")
	assert.Equal(t, "nope", unknown.Name)
	assert.False(t, unknown.SupportsAck)
}

func TestRegistryNames(t *testing.T) {
	registry := NewRegistry()
	registry.Register("one", stubBuilder)
	registry.Register("two", stubBuilder)

	assert.ElementsMatch(t, []string{"one", "two"}, registry.Names())
}

func TestDefaultRegistryHelpers(t *testing.T) {
	original := DefaultRegistry
	defer func() { DefaultRegistry = original }()
	DefaultRegistry = NewRegistry()

	RegisterWithCapabilities("stub", stubBuilder, Capabilities{Name: "stub", SupportsOrdering: true})

	caps := GetCapabilities("stub")
	assert.True(t, caps.SupportsOrdering)

	tr, err := Build(context.Background(), &stubConfig{system: "stub"}, watermill.NopLogger{})
	require.NoError(t, err)
	assert.NotNil(t, tr.Publisher)
}
