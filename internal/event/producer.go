package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Kafka topics for storefront domain events.
var (
	TopicUserRegistered = pkgkafka.Topic("user", "registered")
	TopicStoreCreated   = pkgkafka.Topic("store", "created")
	TopicStoreUpdated   = pkgkafka.Topic("store", "updated")
	TopicStoreDeleted   = pkgkafka.Topic("store", "deleted")
	TopicStoreRestored  = pkgkafka.Topic("store", "restored")
)

// Aggregate type constants.
const (
	AggregateTypeUser  = "user"
	AggregateTypeStore = "store"
)

// Source identifies events emitted by this service.
const Source = "storefront"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// StoreData is the payload shared by every store lifecycle event.
type StoreData struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	IsPublic  bool   `json:"is_public"`
	IsDeleted bool   `json:"is_deleted"`
}

// publisher is the part of *pkgkafka.Producer used here.
type publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront domain events. A Producer built without a
// Kafka publisher drops every event, which is how a deployment with Kafka
// disabled runs.
type Producer struct {
	kafka  publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer. kafka may be nil.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	if kafka == nil {
		return &Producer{logger: logger}
	}
	return &Producer{kafka: kafka, logger: logger}
}

// Enabled reports whether events are actually sent.
func (p *Producer) Enabled() bool {
	return p != nil && p.kafka != nil
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role.String(),
	}
	return p.publish(ctx, TopicUserRegistered, user.ID, AggregateTypeUser, data)
}

// PublishStoreCreated publishes a store.created event.
func (p *Producer) PublishStoreCreated(ctx context.Context, store *domain.Store) error {
	return p.publishStore(ctx, TopicStoreCreated, store)
}

// PublishStoreUpdated publishes a store.updated event.
func (p *Producer) PublishStoreUpdated(ctx context.Context, store *domain.Store) error {
	return p.publishStore(ctx, TopicStoreUpdated, store)
}

// PublishStoreDeleted publishes a store.deleted event.
func (p *Producer) PublishStoreDeleted(ctx context.Context, store *domain.Store) error {
	return p.publishStore(ctx, TopicStoreDeleted, store)
}

// PublishStoreRestored publishes a store.restored event.
func (p *Producer) PublishStoreRestored(ctx context.Context, store *domain.Store) error {
	return p.publishStore(ctx, TopicStoreRestored, store)
}

func (p *Producer) publishStore(ctx context.Context, topic string, store *domain.Store) error {
	data := StoreData{
		ID:        store.ID,
		UserID:    store.UserID,
		Username:  store.Username,
		Name:      store.Name,
		IsPublic:  store.IsPublic,
		IsDeleted: !store.IsActive(),
	}
	return p.publish(ctx, topic, store.ID, AggregateTypeStore, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	if !p.Enabled() {
		return nil
	}

	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}
