package event

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nuggets/internal/nugget"
)

type MockAMQPChannel struct {
	mock.Mock
}

func (m *MockAMQPChannel) PublishWithContext(
	ctx context.Context,
	exchange, key string,
	mandatory, immediate bool,
	msg amqp.Publishing,
) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func (m *MockAMQPChannel) Close() error { return nil } // unused, but needed

func newTestPublisher(mockCh *MockAMQPChannel) *RabbitPublisher {
	return &RabbitPublisher{
		conn:       nil,
		ch:         mockCh,
		exchange:   "nuggets",
		routingKey: "nugget.normalized",
		logger:     log.New(io.Discard, "", 0),
	}
}

func TestPublishNuggetNormalized_PublishesCorrectly(t *testing.T) {
	mockCh := &MockAMQPChannel{}
	pub := newTestPublisher(mockCh)

	a := &nugget.Article{
		Title:      "A Nugget",
		SourceType: nugget.SourceTypeText,
		Tags:       []string{"Tech"},
	}

	var captured amqp.Publishing

	mockCh.
		On("PublishWithContext", mock.Anything, "nuggets", "nugget.normalized", false, false, mock.AnythingOfType("amqp091.Publishing")).
		Run(func(args mock.Arguments) {
			captured = args.Get(5).(amqp.Publishing)
		}).
		Return(nil).
		Once()

	err := pub.PublishNuggetNormalized(context.Background(), "create", a)
	require.NoError(t, err)
	mockCh.AssertExpectations(t)

	assert.Equal(t, "application/json", captured.ContentType)
	assert.Equal(t, uint8(amqp.Persistent), captured.DeliveryMode)

	var msg NuggetNormalizedMessage
	require.NoError(t, json.Unmarshal(captured.Body, &msg))
	assert.Equal(t, "nugget.normalized", msg.Event)
	assert.Equal(t, "create", msg.Mode)
	assert.Equal(t, "A Nugget", msg.Nugget.Title)
}

func TestPublishNuggetNormalized_PropagatesPublishError(t *testing.T) {
	mockCh := &MockAMQPChannel{}
	pub := newTestPublisher(mockCh)

	mockCh.
		On("PublishWithContext", mock.Anything, "nuggets", "nugget.normalized", false, false, mock.AnythingOfType("amqp091.Publishing")).
		Return(errors.New("broker down")).
		Once()

	err := pub.PublishNuggetNormalized(context.Background(), "edit", &nugget.Article{})
	assert.EqualError(t, err, "broker down")
}
