package services

import (
	"context"
	"errors"
)

// ErrInvalidToken classifies provider failures caused by a token that is no
// longer registered. The dispatcher reacts by clearing the stored token;
// everything else is reported as-is.
var ErrInvalidToken = errors.New("push: token invalid or unregistered")

// PlatformHints carry the per-channel presentation settings the mobile
// clients expect.
type PlatformHints struct {
	ChannelID string
	Category  string
	Color     string
}

// PushMessage is the fully built payload handed to a provider. One message
// targets exactly one device token.
type PushMessage struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
	Hints PlatformHints
}

// PushProvider represents the downstream push transport (FCM in production).
// Send returns the provider-assigned message id on success.
type PushProvider interface {
	Name() string
	Send(ctx context.Context, msg *PushMessage) (string, error)
}
