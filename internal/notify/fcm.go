package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2/google"

	"github.com/chisomo-phiri/studyhub/internal/config"
	"github.com/chisomo-phiri/studyhub/internal/models"
)

const fcmScope = "https://www.googleapis.com/auth/firebase.messaging"

// FCMSender delivers through the Firebase Cloud Messaging HTTP v1 API, using
// a service-account token source for authentication.
type FCMSender struct {
	client   *http.Client
	endpoint string
}

func NewFCM(ctx context.Context, cfg config.PushConfig) (*FCMSender, error) {
	creds, err := os.ReadFile(cfg.FCMCredentials)
	if err != nil {
		return nil, fmt.Errorf("read FCM credentials: %w", err)
	}
	jwtCfg, err := google.JWTConfigFromJSON(creds, fcmScope)
	if err != nil {
		return nil, fmt.Errorf("parse FCM credentials: %w", err)
	}

	return &FCMSender{
		client:   jwtCfg.Client(ctx),
		endpoint: fmt.Sprintf("https://fcm.googleapis.com/v1/projects/%s/messages:send", cfg.FCMProjectID),
	}, nil
}

func (s *FCMSender) Send(ctx context.Context, sub models.Subscription, msg Message) error {
	body, err := json.Marshal(map[string]any{
		"message": map[string]any{
			"token": sub.Endpoint,
			"notification": map[string]string{
				"title": msg.Title,
				"body":  msg.Body,
			},
			"data": map[string]string{
				"fileId":   msg.FileID,
				"program":  msg.Program,
				"semester": msg.Semester,
				"subject":  msg.Subject,
			},
		},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	// FCM reports dead tokens as 404 or an UNREGISTERED error detail.
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if resp.StatusCode == http.StatusNotFound || strings.Contains(string(detail), "UNREGISTERED") {
		return ErrGone
	}
	return fmt.Errorf("fcm send: status %d: %s", resp.StatusCode, detail)
}
