// internal/messaging/notifications.go

package messaging

import (
    "context"
    "fmt"
    "log"

    firebase "firebase.google.com/go/v4"
    fcm "firebase.google.com/go/v4/messaging"
    "google.golang.org/api/option"
)

type PushService interface {
    SendNotification(ctx context.Context, userID int64, notification *PushNotification) error
}

type PushNotification struct {
    Title string            `json:"title"`
    Body  string            `json:"body"`
    Data  map[string]string `json:"data,omitempty"`
    Sound string            `json:"sound,omitempty"`
}

type pushService struct {
    fcmClient *fcm.Client
    repo      Repository
}

// NewPushService creates an FCM-backed push sender
func NewPushService(credentialsPath string, repo Repository) (PushService, error) {
    ctx := context.Background()

    opt := option.WithCredentialsFile(credentialsPath)
    app, err := firebase.NewApp(ctx, nil, opt)
    if err != nil {
        return nil, fmt.Errorf("error initializing firebase app: %v", err)
    }

    client, err := app.Messaging(ctx)
    if err != nil {
        return nil, fmt.Errorf("error getting messaging client: %v", err)
    }

    return &pushService{
        fcmClient: client,
        repo:      repo,
    }, nil
}

// SendNotification delivers a notification to every active device token a
// user has registered
func (s *pushService) SendNotification(ctx context.Context, userID int64, notification *PushNotification) error {
    tokens, err := s.repo.GetUserPushTokens(ctx, userID)
    if err != nil {
        return fmt.Errorf("failed to get user tokens: %v", err)
    }

    if len(tokens) == 0 {
        log.Printf("No push tokens found for user %d", userID)
        return nil
    }

    for _, token := range tokens {
        message := &fcm.Message{
            Token: token.Token,
            Notification: &fcm.Notification{
                Title: notification.Title,
                Body:  notification.Body,
            },
            Data: notification.Data,
        }

        switch token.Platform {
        case "ios":
            message.APNS = &fcm.APNSConfig{
                Payload: &fcm.APNSPayload{
                    Aps: &fcm.Aps{
                        Sound: notification.Sound,
                    },
                },
            }
        case "android":
            message.Android = &fcm.AndroidConfig{
                Priority: "high",
                Notification: &fcm.AndroidNotification{
                    Sound:    notification.Sound,
                    Priority: fcm.PriorityHigh,
                },
            }
        }

        if _, err := s.fcmClient.Send(ctx, message); err != nil {
            log.Printf("Failed to send push notification to token %s: %v", token.Token, err)

            if fcm.IsRegistrationTokenNotRegistered(err) {
                log.Printf("Token %s is not registered, deleting", token.Token)
                s.repo.DeletePushToken(ctx, token.Token)
            }
        }
    }

    return nil
}

// mockPushService logs instead of sending, for tests and local runs
// without Firebase credentials
type mockPushService struct{}

func NewMockPushService() PushService {
    return &mockPushService{}
}

func (m *mockPushService) SendNotification(ctx context.Context, userID int64, notification *PushNotification) error {
    log.Printf("Mock: push to user %d: %s - %s", userID, notification.Title, notification.Body)
    return nil
}
