// pkg/kafka/user_consumer.go
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"

	"user-profile-service/internal/domain"
)

const (
	TopicUserEvents = "user-topic"
	ConsumerGroupID = "user-sync-group"
)

// EventHandler receives each decoded identity event. Implemented by
// usecase.UserUsecase.
type EventHandler interface {
	HandleUserEvent(ctx context.Context, evt *domain.UserEvent) error
}

// UserEventConsumer syncs the profile store with "user created" events
// from the identity system. Delivery is at-least-once; the handler is
// create-only, so replays and duplicates are no-ops.
type UserEventConsumer struct {
	consumer sarama.ConsumerGroup
	handler  EventHandler
}

func NewUserEventConsumer(brokers []string, groupID string, handler EventHandler) (*UserEventConsumer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V3_0_0_0
	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Consumer.Group.Session.Timeout = 20 * time.Second
	config.Consumer.Group.Heartbeat.Interval = 6 * time.Second
	config.Consumer.MaxProcessingTime = 30 * time.Second

	consumer, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &UserEventConsumer{
		consumer: consumer,
		handler:  handler,
	}, nil
}

func (c *UserEventConsumer) Start(ctx context.Context) error {
	topics := []string{TopicUserEvents}
	handler := &consumerGroupHandler{handler: c.handler}

	for {
		if err := c.consumer.Consume(ctx, topics, handler); err != nil {
			log.Printf("Error from consumer: %v", err)
		}

		// if ctx is cancelled, exit cleanly
		if ctx.Err() != nil {
			log.Println("Context cancelled, shutting down consumer")
			return nil
		}
	}
}

func (c *UserEventConsumer) Close() error {
	return c.consumer.Close()
}

// consumerGroupHandler implements sarama.ConsumerGroupHandler
type consumerGroupHandler struct {
	handler EventHandler
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Println("Consumer group session started")
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Println("Consumer group session ended")
	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var evt domain.UserEvent
		if err := json.Unmarshal(message.Value, &evt); err != nil {
			log.Printf("Failed to unmarshal user event: %v", err)
			session.MarkMessage(message, "")
			continue
		}

		log.Printf("Consumed user event: user_id=%s username=%s", evt.UserID, evt.Username)

		// Storage failures abort the claim without marking the offset;
		// the broker redelivers and the create-only handler absorbs the
		// replay.
		if err := h.handler.HandleUserEvent(session.Context(), &evt); err != nil {
			log.Printf("Failed to process user event user_id=%s: %v", evt.UserID, err)
			return err
		}

		session.MarkMessage(message, "")
	}

	return nil
}
