package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bossbruno/quick-bundles-notifications/internal/models"
	"github.com/bossbruno/quick-bundles-notifications/pkg/metrics"
)

// ProfileStore resolves recipient profiles and clears tokens the provider
// reported permanently invalid.
type ProfileStore interface {
	Get(ctx context.Context, id string) (*models.User, error)
	ClearDeviceToken(ctx context.Context, id string) error
}

// NotificationStore reads the current state of a dispatch record and
// applies its single terminal write.
type NotificationStore interface {
	Get(ctx context.Context, id string) (*models.Notification, error)
	MarkSent(ctx context.Context, id, messageID string, at time.Time) error
	MarkFailed(ctx context.Context, id, detail string, at time.Time) error
}

// ListingStore looks up bundle names for order-update bodies.
type ListingStore interface {
	GetListing(ctx context.Context, id string) (*models.Listing, error)
}

// TokenSuppressor short-circuits dispatch for tokens recently reported
// invalid, without a profile-store round trip.
type TokenSuppressor interface {
	IsSuppressed(ctx context.Context, token string) (bool, error)
	Suppress(ctx context.Context, token string) error
}

// Dispatcher turns one document change event into at most one push send and
// one durable status write. Each call is stateless; concurrent calls for
// different events are safe because all shared state lives in the stores.
type Dispatcher struct {
	profiles      ProfileStore
	notifications NotificationStore
	listings      ListingStore
	cache         TokenSuppressor
	push          PushProvider
	metrics       *metrics.Metrics
	logger        *slog.Logger
	systemActorID string
	now           func() time.Time
}

func NewDispatcher(
	profiles ProfileStore,
	notifications NotificationStore,
	listings ListingStore,
	cache TokenSuppressor,
	push PushProvider,
	m *metrics.Metrics,
	logger *slog.Logger,
	systemActorID string,
) *Dispatcher {
	return &Dispatcher{
		profiles:      profiles,
		notifications: notifications,
		listings:      listings,
		cache:         cache,
		push:          push,
		metrics:       m,
		logger:        logger,
		systemActorID: systemActorID,
		now:           time.Now,
	}
}

// Dispatch handles one trigger event. A skipped outcome with a nil error
// means no send was required; a non-nil error is re-signaled to the hosting
// consumer so platform-level redelivery and alerting can apply.
func (d *Dispatcher) Dispatch(ctx context.Context, ev models.TriggerEvent) (*models.DispatchOutcome, error) {
	d.metrics.IncEvents()

	switch ev.Kind {
	case models.KindCreation:
		return d.dispatchCreation(ctx, ev)
	case models.KindStatusTransition:
		return d.dispatchTransition(ctx, ev)
	default:
		return nil, fmt.Errorf("dispatch: unknown event kind %d", ev.Kind)
	}
}

func (d *Dispatcher) dispatchCreation(ctx context.Context, ev models.TriggerEvent) (*models.DispatchOutcome, error) {
	n := ev.Notification
	if n == nil {
		return nil, fmt.Errorf("dispatch: creation event without notification")
	}

	// Redelivered events carry a stale pending image; the stored record is
	// authoritative for the terminal-state guard.
	if current, err := d.notifications.Get(ctx, n.ID); err != nil {
		return nil, fmt.Errorf("dispatch: read notification %s: %w", n.ID, err)
	} else if current != nil {
		n = current
	}
	if n.Status != models.StatusPending {
		return d.skip(models.SkipAlreadyTerminal, "notification_id", n.ID)
	}

	token, skipReason, err := d.resolveCreationToken(ctx, ev.ActorID, n)
	if err != nil {
		return nil, err
	}
	if skipReason != "" {
		return d.skip(skipReason, "notification_id", n.ID)
	}

	msg := buildChatMessage(n)
	msg.Token = token

	messageID, sendErr := d.push.Send(ctx, msg)
	if sendErr != nil {
		d.handleInvalidToken(ctx, sendErr, n.RecipientID, token)
		if err := d.notifications.MarkFailed(ctx, n.ID, sendErr.Error(), d.now()); err != nil {
			d.logger.Error("failed to write back failure",
				slog.String("notification_id", n.ID), slog.Any("error", err))
		}
		d.metrics.IncFailed()
		return &models.DispatchOutcome{ErrorDetail: sendErr.Error()}, sendErr
	}

	if err := d.notifications.MarkSent(ctx, n.ID, messageID, d.now()); err != nil {
		d.metrics.IncFailed()
		return nil, fmt.Errorf("dispatch: write back sent status for %s: %w", n.ID, err)
	}

	d.metrics.IncSent()
	d.logger.Info("notification sent",
		slog.String("notification_id", n.ID),
		slog.String("message_id", messageID),
		slog.String("provider", d.push.Name()))
	return &models.DispatchOutcome{MessageID: messageID}, nil
}

func (d *Dispatcher) dispatchTransition(ctx context.Context, ev models.TriggerEvent) (*models.DispatchOutcome, error) {
	if ev.Before == nil || ev.After == nil {
		return nil, fmt.Errorf("dispatch: transition event missing before/after image")
	}
	// Redundant triggers carry no meaningful change.
	if ev.Before.Status == ev.After.Status {
		return d.skip(models.SkipNoStatusChange, "chat_id", ev.ChatID)
	}

	profile, skipReason, err := d.resolveTransitionRecipient(ctx, ev)
	if err != nil {
		return nil, err
	}
	if skipReason != "" {
		return d.skip(skipReason, "chat_id", ev.ChatID)
	}
	token := strings.TrimSpace(profile.DeviceToken)

	bundleName := d.lookupBundleName(ctx, ev.After.BundleID)
	vendorName := d.lookupVendorName(ctx, ev.After.VendorID)

	msg := buildOrderMessage(token, ev.ChatID, ev.ActorID, ev.After, bundleName, vendorName)

	messageID, sendErr := d.push.Send(ctx, msg)
	if sendErr != nil {
		d.handleInvalidToken(ctx, sendErr, profile.ID, token)
		d.metrics.IncFailed()
		// No write-back on the parent chat record; the failure propagates
		// to the hosting consumer.
		return &models.DispatchOutcome{ErrorDetail: sendErr.Error()}, sendErr
	}

	d.metrics.IncSent()
	d.logger.Info("order update sent",
		slog.String("chat_id", ev.ChatID),
		slog.String("status", ev.After.Status),
		slog.String("message_id", messageID))
	return &models.DispatchOutcome{MessageID: messageID}, nil
}

// resolveCreationToken validates the token carried on the notification
// document itself.
func (d *Dispatcher) resolveCreationToken(ctx context.Context, actorID string, n *models.Notification) (string, string, error) {
	if d.isSystemActor(actorID) {
		return "", models.SkipSystemActor, nil
	}
	token := strings.TrimSpace(n.RecipientToken)
	if token == "" {
		return "", models.SkipNoToken, nil
	}
	suppressed, err := d.tokenSuppressed(ctx, token)
	if err != nil {
		return "", "", err
	}
	if suppressed {
		return "", models.SkipSuppressedToken, nil
	}
	return token, "", nil
}

// resolveTransitionRecipient picks the chat party that did not trigger the
// change and loads their profile. A missing profile or token is a silent
// skip, not an error.
func (d *Dispatcher) resolveTransitionRecipient(ctx context.Context, ev models.TriggerEvent) (*models.User, string, error) {
	if d.isSystemActor(ev.ActorID) {
		return nil, models.SkipSystemActor, nil
	}

	recipientID := ev.After.OtherParty(ev.ActorID)
	profile, err := d.profiles.Get(ctx, recipientID)
	if err != nil {
		return nil, "", fmt.Errorf("dispatch: load profile %s: %w", recipientID, err)
	}
	if profile == nil {
		return nil, models.SkipNoProfile, nil
	}

	token := strings.TrimSpace(profile.DeviceToken)
	if token == "" {
		return nil, models.SkipNoToken, nil
	}
	suppressed, err := d.tokenSuppressed(ctx, token)
	if err != nil {
		return nil, "", err
	}
	if suppressed {
		return nil, models.SkipSuppressedToken, nil
	}
	return profile, "", nil
}

// handleInvalidToken clears the stored token and suppresses it when the
// provider classified the failure as unregistered. The cleanup is
// best-effort; the dispatch is still reported as failed.
func (d *Dispatcher) handleInvalidToken(ctx context.Context, sendErr error, recipientID, token string) {
	if !errors.Is(sendErr, ErrInvalidToken) {
		return
	}
	if recipientID != "" {
		if err := d.profiles.ClearDeviceToken(ctx, recipientID); err != nil {
			d.logger.Error("failed to clear device token",
				slog.String("user_id", recipientID), slog.Any("error", err))
		}
	}
	if d.cache != nil && token != "" {
		if err := d.cache.Suppress(ctx, token); err != nil {
			d.logger.Warn("failed to suppress token", slog.Any("error", err))
		}
	}
}

func (d *Dispatcher) lookupBundleName(ctx context.Context, bundleID string) string {
	const fallback = "Data Bundle"
	if bundleID == "" || d.listings == nil {
		return fallback
	}
	listing, err := d.listings.GetListing(ctx, bundleID)
	if err != nil {
		d.logger.Warn("listing lookup failed", slog.String("bundle_id", bundleID), slog.Any("error", err))
		return fallback
	}
	if listing == nil || listing.Name == "" {
		return fallback
	}
	return listing.Name
}

func (d *Dispatcher) lookupVendorName(ctx context.Context, vendorID string) string {
	const fallback = "Vendor"
	if vendorID == "" {
		return fallback
	}
	vendor, err := d.profiles.Get(ctx, vendorID)
	if err != nil {
		d.logger.Warn("vendor lookup failed", slog.String("vendor_id", vendorID), slog.Any("error", err))
		return fallback
	}
	if vendor == nil {
		return fallback
	}
	return vendor.DisplayName()
}

func (d *Dispatcher) tokenSuppressed(ctx context.Context, token string) (bool, error) {
	if d.cache == nil {
		return false, nil
	}
	suppressed, err := d.cache.IsSuppressed(ctx, token)
	if err != nil {
		return false, fmt.Errorf("dispatch: suppression check: %w", err)
	}
	return suppressed, nil
}

func (d *Dispatcher) isSystemActor(actorID string) bool {
	return actorID != "" && actorID == d.systemActorID
}

func (d *Dispatcher) skip(reason string, logKey, logValue string) (*models.DispatchOutcome, error) {
	d.metrics.IncSkipped()
	d.logger.Debug("dispatch skipped", slog.String("reason", reason), slog.String(logKey, logValue))
	return models.Skip(reason), nil
}
