package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// FCMProvider sends notifications via Firebase Cloud Messaging.
type FCMProvider struct {
	serverKey string
	endpoint  string
	client    *http.Client
	logger    *slog.Logger
}

func NewFCMProvider(serverKey, endpoint string, timeout time.Duration, logger *slog.Logger) *FCMProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FCMProvider{
		serverKey: serverKey,
		endpoint:  endpoint,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (p *FCMProvider) Name() string {
	return "fcm"
}

func (p *FCMProvider) Send(ctx context.Context, msg *PushMessage) (string, error) {
	if msg.Token == "" {
		return "", fmt.Errorf("fcm: empty token")
	}

	reqMap := map[string]interface{}{
		"to": msg.Token,
		"notification": map[string]string{
			"title": msg.Title,
			"body":  msg.Body,
		},
		"android": map[string]interface{}{
			"notification": map[string]interface{}{
				"channel_id":              msg.Hints.ChannelID,
				"priority":                "high",
				"default_sound":           true,
				"default_vibrate_timings": true,
				"icon":                    "@mipmap/ic_launcher",
				"color":                   msg.Hints.Color,
			},
		},
		"apns": map[string]interface{}{
			"payload": map[string]interface{}{
				"aps": map[string]interface{}{
					"sound":    "notification_sound.aiff",
					"badge":    1,
					"category": msg.Hints.Category,
				},
			},
		},
	}
	if len(msg.Data) > 0 {
		reqMap["data"] = msg.Data
	}

	body, err := json.Marshal(reqMap)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+p.serverKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fcm: received status %d", resp.StatusCode)
	}

	var fcmResp fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&fcmResp); err != nil {
		return "", err
	}
	if len(fcmResp.Results) == 0 {
		return "", fmt.Errorf("fcm: response carried no results")
	}

	res := fcmResp.Results[0]
	if res.Error != "" {
		if isTokenFatal(res.Error) {
			return "", fmt.Errorf("%w: %s", ErrInvalidToken, res.Error)
		}
		return "", fmt.Errorf("fcm: %s", res.Error)
	}

	return res.MessageID, nil
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

func isTokenFatal(err string) bool {
	switch err {
	case "NotRegistered", "InvalidRegistration", "MismatchSenderId", "UNREGISTERED":
		return true
	default:
		return false
	}
}
