package events

import (
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Domain event topics consumed by notification and analytics collaborators.
const (
	TopicBookingCreated          = "booking.created"
	TopicBookingUpdated          = "booking.updated"
	TopicBookingCancelled        = "booking.cancelled"
	TopicBookingPaymentConfirmed = "booking.payment.confirmed"
	TopicBookingCheckedIn        = "booking.checkedIn"
	TopicBookingCompleted        = "booking.completed"
	TopicBookingNoShow           = "booking.noShow"
)

// BookingEvent is the JSON payload carried by every booking topic. Data holds
// the operation-specific fields (refund amount on cancellation, transaction id
// on payment confirmation).
type BookingEvent struct {
	BookingID  string                 `json:"booking_id"`
	UserID     string                 `json:"user_id"`
	VenueID    string                 `json:"venue_id"`
	Status     string                 `json:"status"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// Publisher pushes domain events onto Redis streams. Events are published
// only after the state-changing write has committed; consumers are expected
// to handle at-least-once delivery.
type Publisher struct {
	pub    message.Publisher
	prefix string
}

// NewPublisher wraps a redisstream publisher over an existing client.
// streamPrefix namespaces the topics (e.g. "courtside" publishes to
// "courtside.booking.created") so multiple deployments can share a Redis.
func NewPublisher(client *redis.Client, streamPrefix string, logger watermill.LoggerAdapter) (*Publisher, error) {
	pub, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: client,
	}, logger)
	if err != nil {
		return nil, err
	}

	return &Publisher{pub: pub, prefix: streamPrefix}, nil
}

func (p *Publisher) PublishBookingEvent(topic string, event *BookingEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set("topic", topic)
	msg.Metadata.Set("occurred_at", event.OccurredAt.Format(time.RFC3339))

	stream := topic
	if p.prefix != "" {
		stream = p.prefix + "." + topic
	}

	return p.pub.Publish(stream, msg)
}

func (p *Publisher) Close() error {
	return p.pub.Close()
}
