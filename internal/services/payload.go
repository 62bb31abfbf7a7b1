package services

import (
	"github.com/bossbruno/quick-bundles-notifications/internal/models"
)

// Provider payload limits are stricter than display limits, so the body
// bound is a hard contract: anything longer is cut to 160 runes plus the
// ellipsis marker.
const (
	maxBodyRunes = 160
	ellipsis     = "..."
)

// Fallback phrases used when the source document carries no usable text.
const (
	bodyImagePlaceholder = "Image sent"
	bodyChatFallback     = "New message"
)

// Message type tags carried in the data map so the client can deep-link.
const (
	typeChat        = "chat"
	typeOrderUpdate = "order_update"
)

var (
	chatHints = PlatformHints{
		ChannelID: "chat_notifications",
		Category:  "chat_message",
		Color:     "#4CAF50",
	}
	orderHints = PlatformHints{
		ChannelID: "order_notifications",
		Category:  "order_update",
		Color:     "#2196F3",
	}
)

// Per-status order update bodies, rendered with the bundle and vendor names.
var orderBodyTemplates = map[string]string{
	"processing": "Your {{bundle}} order is being processed by {{vendor}}",
	"data_sent":  "Your {{bundle}} has been sent successfully by {{vendor}}!",
	"completed":  "Your {{bundle}} order is completed",
}

const orderBodyDefault = "Your order status has been updated to {{status}}"

// truncateBody enforces the 160-rune bound, appending the ellipsis marker
// when the text was cut.
func truncateBody(body string) string {
	runes := []rune(body)
	if len(runes) <= maxBodyRunes {
		return body
	}
	return string(runes[:maxBodyRunes]) + ellipsis
}

// bodyText picks the chat body: the message text when present, a fixed
// attachment placeholder when only media was sent, or the default phrase.
func bodyText(text, imageURL string) string {
	if text != "" {
		return truncateBody(text)
	}
	if imageURL != "" {
		return bodyImagePlaceholder
	}
	return bodyChatFallback
}

// buildChatMessage turns a pending notification document into a push
// message for its recipient token.
func buildChatMessage(n *models.Notification) *PushMessage {
	title := n.Title
	if title == "" {
		title = bodyChatFallback
	}

	data := make(map[string]string, len(n.Data)+1)
	for k, v := range n.Data {
		data[k] = v
	}
	if data["type"] == "" {
		data["type"] = typeChat
	}

	return &PushMessage{
		Token: n.RecipientToken,
		Title: title,
		Body:  bodyText(n.Body, n.ImageURL),
		Data:  data,
		Hints: chatHints,
	}
}

// buildOrderMessage formats the order-update push for a chat status
// transition, deep-linking back to the chat and bundle.
func buildOrderMessage(token, chatID, actorID string, after *models.Chat, bundleName, vendorName string) *PushMessage {
	vars := map[string]string{
		"bundle": bundleName,
		"vendor": vendorName,
		"status": after.Status,
	}
	tpl, ok := orderBodyTemplates[after.Status]
	if !ok {
		tpl = orderBodyDefault
	}

	return &PushMessage{
		Token: token,
		Title: "Order Update",
		Body:  truncateBody(Render(tpl, vars)),
		Data: map[string]string{
			"type":        typeOrderUpdate,
			"orderStatus": after.Status,
			"chatId":      chatID,
			"bundleId":    after.BundleID,
			"actorId":     actorID,
		},
		Hints: orderHints,
	}
}
