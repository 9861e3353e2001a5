package config

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/pubsub"
)

// NewPubSubTopic returns the topic document events are published to, or nil
// when Pub/Sub is not configured (local dev, tests). Publishing happens only
// after the posting transaction commits, via the outbox dispatcher.
func NewPubSubTopic(ctx context.Context) *pubsub.Topic {
	projectID := pubsubProjectID()
	topicID := os.Getenv("PUBSUB_TOPIC")
	if projectID == "" || topicID == "" {
		return nil
	}

	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		log.Printf("pubsub client unavailable: %v; continuing without event publishing", err)
		return nil
	}
	return client.Topic(topicID)
}

func pubsubProjectID() string {
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		return v
	}
	// Cloud Run/Cloud Functions often set this.
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	return ""
}
