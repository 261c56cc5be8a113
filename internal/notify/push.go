package notify

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"guestflow-backend/internal/logger"
)

type Pusher interface {
	Push(ctx context.Context, deviceToken string, msg Message) error
}

type firebasePusher struct {
	client *messaging.Client
}

// NewFirebasePusher connects to Firebase Cloud Messaging with a service
// account credentials file.
func NewFirebasePusher(ctx context.Context, projectID, credentialsFile string) (Pusher, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}
	return &firebasePusher{client: client}, nil
}

func (p *firebasePusher) Push(ctx context.Context, deviceToken string, msg Message) error {
	logger.ExternalServiceCall("fcm", "Send", "title", msg.Title)
	id, err := p.client.Send(ctx, &messaging.Message{
		Token: deviceToken,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Attributes,
	})
	logger.ExternalServiceResult("fcm", "Send", err, "messageID", id)
	return err
}

type noopPusher struct{}

func NewNoopPusher() Pusher {
	return noopPusher{}
}

func (noopPusher) Push(ctx context.Context, deviceToken string, msg Message) error {
	return nil
}
