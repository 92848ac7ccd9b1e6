package config

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

// RegisterEventMessage is published after every committed register upload so
// downstream consumers (phone provisioning, reporting) can refresh.
type RegisterEventMessage struct {
	Register      string    `json:"register"`
	Strategy      string    `json:"strategy"`
	Sent          int       `json:"sent"`
	Created       int       `json:"created"`
	Updated       int       `json:"updated"`
	Deleted       int       `json:"deleted"`
	ErrorCount    int       `json:"error_count"`
	AuditUserId   int       `json:"audit_user_id"`
	CompletedAt   time.Time `json:"completed_at"`
	CorrelationId string    `json:"correlation_id"`
}

var (
	pubsubClient   *pubsub.Client
	pubsubClientMu sync.Mutex
)

func init() {
	godotenv.Load()
}

func getPubSubProjectID() string {
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		return v
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	if v := os.Getenv("GCP_PROJECT"); v != "" {
		return v
	}
	return ""
}

func getPubSubClient(ctx context.Context) (*pubsub.Client, error) {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		return pubsubClient, nil
	}

	projectID := getPubSubProjectID()
	if projectID == "" {
		return nil, errors.New("PUBSUB_PROJECT_ID/GOOGLE_CLOUD_PROJECT not set")
	}

	var opts []option.ClientOption
	if credJSON := os.Getenv("PUBSUB_CREDENTIALS_JSON"); credJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, err
	}
	pubsubClient = client
	return pubsubClient, nil
}

// PublishRegisterEvent is best-effort: upload results are already persisted,
// so a publish failure is logged and swallowed.
func PublishRegisterEvent(ctx context.Context, msg RegisterEventMessage) {
	topicID := os.Getenv("PUBSUB_REGISTER_TOPIC")
	if topicID == "" {
		return
	}

	client, err := getPubSubClient(ctx)
	if err != nil {
		log.Printf("pubsub client unavailable: %v", err)
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal register event: %v", err)
		return
	}

	topic := client.Topic(topicID)
	result := topic.Publish(ctx, &pubsub.Message{Data: data})
	if _, err := result.Get(ctx); err != nil {
		log.Printf("failed to publish register event: %v", err)
	}
}
