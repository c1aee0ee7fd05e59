package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lisiobuddy/lisiobuddy-backend/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeProfileEvents = "profile.events"
	RoutingProfileUpdated = "profile.updated"
)

// ProfileUpdated is published after an edit has been stored.
type ProfileUpdated struct {
	EventType     string    `json:"event_type"`
	ProfileID     string    `json:"profile_id"`
	OwnerID       string    `json:"owner_id"`
	EditedBy      string    `json:"edited_by"`
	EditedAsAdmin bool      `json:"edited_as_admin"`
	Status        string    `json:"status"`
	Course        string    `json:"course"`
	Interests     []string  `json:"interests"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewProfileUpdated(p *domain.Profile, editor domain.Viewer, at time.Time) *ProfileUpdated {
	return &ProfileUpdated{
		EventType:     RoutingProfileUpdated,
		ProfileID:     p.ID,
		OwnerID:       p.UserID,
		EditedBy:      editor.AccountID,
		EditedAsAdmin: editor.IsAdmin() && !editor.Owns(p),
		Status:        string(p.EffectiveStatus()),
		Course:        p.Course,
		Interests:     append([]string{}, p.Interests...),
		OccurredAt:    at.UTC(),
	}
}

type Publisher interface {
	PublishProfileUpdated(ctx context.Context, event *ProfileUpdated) error
	Close() error
}

// RabbitPublisher publishes to a durable topic exchange. With an empty URL it
// only logs, so local runs need no broker.
type RabbitPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	enabled  bool
}

func NewRabbitPublisher(url string) (*RabbitPublisher, error) {
	if url == "" {
		fmt.Println("[Events] RABBITMQ_URL is empty, event publishing is disabled")
		return &RabbitPublisher{exchange: ExchangeProfileEvents}, nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		ExchangeProfileEvents, // name
		"topic",               // type
		true,                  // durable
		false,                 // auto-deleted
		false,                 // internal
		false,                 // no-wait
		nil,                   // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	fmt.Printf("[Events] publisher ready on exchange %s\n", ExchangeProfileEvents)

	return &RabbitPublisher{
		conn:     conn,
		channel:  channel,
		exchange: ExchangeProfileEvents,
		enabled:  true,
	}, nil
}

func (p *RabbitPublisher) Enabled() bool {
	return p.enabled
}

func (p *RabbitPublisher) PublishProfileUpdated(ctx context.Context, event *ProfileUpdated) error {
	if !p.enabled {
		fmt.Printf("[Events] publishing disabled, skipping %s for profile %s\n", event.EventType, event.ProfileID)
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		RoutingProfileUpdated,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
			Body:         body,
			Headers: amqp.Table{
				"event_type": event.EventType,
				"profile_id": event.ProfileID,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	fmt.Printf("[Events] published %s for profile %s\n", event.EventType, event.ProfileID)
	return nil
}

func (p *RabbitPublisher) Close() error {
	if !p.enabled {
		return nil
	}

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			fmt.Printf("[Events] error closing channel: %v\n", err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("failed to close RabbitMQ connection: %w", err)
		}
	}
	return nil
}

// MemoryPublisher records events; used by tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	Events []ProfileUpdated
	Err    error
}

func (m *MemoryPublisher) PublishProfileUpdated(ctx context.Context, event *ProfileUpdated) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Events = append(m.Events, *event)
	return nil
}

func (m *MemoryPublisher) Published() []ProfileUpdated {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ProfileUpdated(nil), m.Events...)
}

func (m *MemoryPublisher) Close() error {
	return nil
}
