package service

import (
	"context"
	"encoding/json"
	"log"

	"ai-mediation-be/internal/entity"
	"ai-mediation-be/internal/websocket"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IFeedService interface {
	Consume(ctx context.Context) error
}

// feedService bridges the in-process message bus to the websocket hub.
// Every persisted message row is re-published on the bus; this consumer
// hands it to the hub which applies the per-thread role filter.
type feedService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	hub       *websocket.Hub
}

func NewFeedService(pubSub *gochannel.GoChannel, topicName string, hub *websocket.Hub) IFeedService {
	return &feedService{
		pubSub:    pubSub,
		topicName: topicName,
		hub:       hub,
	}
}

func (fs *feedService) Consume(ctx context.Context) error {
	messages, err := fs.pubSub.Subscribe(ctx, fs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			fs.processMessage(msg)
		}
	}()

	return nil
}

func (fs *feedService) processMessage(msg *message.Message) {
	var row entity.Message
	if err := json.Unmarshal(msg.Payload, &row); err != nil {
		log.Printf("[ERROR] Failed to unmarshal feed message: %v", err)
		msg.Ack()
		return
	}

	fs.hub.Deliver(&row)
	msg.Ack()
}
