package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMService sends fill-level alerts through Firebase Cloud Messaging
type FCMService struct {
	client *messaging.Client
}

// NewFCMService reads service account credentials from a file
func NewFCMService(credentialsFile string) (*FCMService, error) {
	return newFCMService(option.WithCredentialsFile(credentialsFile))
}

// NewFCMServiceFromBase64 takes the service account JSON base64-encoded,
// for hosts that only offer environment variables
func NewFCMServiceFromBase64(credentialsBase64 string) (*FCMService, error) {
	credentialsJSON, err := base64.StdEncoding.DecodeString(credentialsBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode FIREBASE_CREDENTIALS_BASE64: %w", err)
	}
	return newFCMService(option.WithCredentialsJSON(credentialsJSON))
}

func newFCMService(opt option.ClientOption) (*FCMService, error) {
	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}

	return &FCMService{client: client}, nil
}

// AlertTopic is the FCM topic operators of a trashcan subscribe to
func AlertTopic(trashcan int) string {
	return "trashcan-" + strconv.Itoa(trashcan)
}

// BinFullMessage builds the alert sent when a bin crosses the fill threshold
func BinFullMessage(trashcan, binNumber int, wasteType string, capacity float64) *messaging.Message {
	return &messaging.Message{
		Topic: AlertTopic(trashcan),
		Notification: &messaging.Notification{
			Title: fmt.Sprintf("Bin %d is almost full", binNumber),
			Body:  fmt.Sprintf("The %s bin of trashcan %d is at %.0f%%. Please empty it.", wasteType, trashcan, capacity),
		},
		Data: map[string]string{
			"type":       "bin_full",
			"trashcan":   strconv.Itoa(trashcan),
			"bin_number": strconv.Itoa(binNumber),
			"waste_type": wasteType,
			"capacity":   strconv.FormatFloat(capacity, 'f', 2, 64),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}
}

// SendBinFullAlert notifies the trashcan's topic that a bin needs emptying
func (s *FCMService) SendBinFullAlert(ctx context.Context, trashcan, binNumber int, wasteType string, capacity float64) error {
	id, err := s.client.Send(ctx, BinFullMessage(trashcan, binNumber, wasteType, capacity))
	if err != nil {
		return fmt.Errorf("failed to send fill alert for bin %d: %w", binNumber, err)
	}
	log.Printf("📣 Fill alert for trashcan %d bin %d sent to %s (%s)", trashcan, binNumber, AlertTopic(trashcan), id)
	return nil
}
