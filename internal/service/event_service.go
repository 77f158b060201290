package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/techversity/crm-api/internal/models"
)

// Lifecycle event types emitted over the brokers.
const (
	EventStatusChanged = "enquiry.status_changed"
	EventReminderSent  = "reminder.sent"
)

// LifecycleEvent is the JSON payload published for downstream consumers
// (reporting dashboards, chat integrations).
type LifecycleEvent struct {
	Source         string    `json:"source"`
	Type           string    `json:"type"`
	EnquiryID      uint      `json:"enquiry_id"`
	Student        string    `json:"student"`
	Course         string    `json:"course,omitempty"`
	Status         string    `json:"status,omitempty"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	Attender       string    `json:"attender,omitempty"`
	SentAt         time.Time `json:"sent_at"`
}

// EventPublisher emits lifecycle events. Publishing is best-effort and must
// never fail the operation that triggered it.
type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, enquiry models.StudentEnquiry, previousStatus string)
	PublishReminderSent(ctx context.Context, enquiry models.StudentEnquiry, attender string)
}

type eventPublisher struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	nodeID       string
}

// NewEventPublisher constructs a broker-backed publisher. Either client may be
// nil; events then go out on the remaining transport only.
func NewEventPublisher(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) EventPublisher {
	if channelBase == "" {
		channelBase = "crm"
	}

	return &eventPublisher{
		redis:        redisClient,
		redisChannel: channelBase + ":events",
		nats:         natsConn,
		natsSubject:  strings.ReplaceAll(channelBase, ":", ".") + ".events",
		logger:       logger.With().Str("component", "event_publisher").Logger(),
		nodeID:       uuid.NewString(),
	}
}

func (p *eventPublisher) PublishStatusChanged(ctx context.Context, enquiry models.StudentEnquiry, previousStatus string) {
	p.publish(ctx, LifecycleEvent{
		Type:           EventStatusChanged,
		EnquiryID:      enquiry.ID,
		Student:        enquiry.Name,
		Course:         enquiry.Course,
		Status:         enquiry.Status,
		PreviousStatus: previousStatus,
		Attender:       enquiry.Attender,
	})
}

func (p *eventPublisher) PublishReminderSent(ctx context.Context, enquiry models.StudentEnquiry, attender string) {
	p.publish(ctx, LifecycleEvent{
		Type:      EventReminderSent,
		EnquiryID: enquiry.ID,
		Student:   enquiry.Name,
		Course:    enquiry.Course,
		Status:    enquiry.Status,
		Attender:  attender,
	})
}

func (p *eventPublisher) publish(ctx context.Context, event LifecycleEvent) {
	event.Source = p.nodeID
	event.SentAt = time.Now().UTC()

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to encode lifecycle event")
		return
	}

	if p.redis != nil {
		if err := p.redis.Publish(ctx, p.redisChannel, payload).Err(); err != nil {
			p.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to publish lifecycle event to redis")
		}
	}

	if p.nats != nil {
		if err := p.nats.Publish(p.natsSubject, payload); err != nil {
			p.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to publish lifecycle event to nats")
		}
	}
}

// NopEventPublisher discards every event. Used when no broker is configured.
type NopEventPublisher struct{}

func (NopEventPublisher) PublishStatusChanged(context.Context, models.StudentEnquiry, string) {}

func (NopEventPublisher) PublishReminderSent(context.Context, models.StudentEnquiry, string) {}
