package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bossbruno/quick-bundles-notifications/internal/models"
)

// ErrBadEvent marks envelopes that can never be processed (unknown shape,
// malformed images). The consumer drops these instead of redelivering.
var ErrBadEvent = errors.New("event: malformed change envelope")

// EventRouter maps raw change envelopes onto the dispatch pipeline:
// notification creations and chat status transitions go to the push
// dispatcher, report creations to the email notifier. Everything else is
// acknowledged and ignored.
type EventRouter struct {
	dispatcher *Dispatcher
	reports    *ReportNotifier
	logger     *slog.Logger
}

func NewEventRouter(dispatcher *Dispatcher, reports *ReportNotifier, logger *slog.Logger) *EventRouter {
	return &EventRouter{
		dispatcher: dispatcher,
		reports:    reports,
		logger:     logger,
	}
}

// HandleChange processes one change envelope end to end.
func (r *EventRouter) HandleChange(ctx context.Context, env *models.ChangeEnvelope) error {
	switch {
	case env.Collection == models.CollectionNotifications && env.Kind == models.ChangeCreated:
		return r.handleNotificationCreated(ctx, env)
	case env.Collection == models.CollectionChats && env.Kind == models.ChangeUpdated:
		return r.handleChatUpdated(ctx, env)
	case env.Collection == models.CollectionReports && env.Kind == models.ChangeCreated:
		return r.handleReportCreated(ctx, env)
	default:
		r.logger.Debug("ignoring change event",
			slog.String("collection", env.Collection),
			slog.String("kind", env.Kind),
			slog.String("event_id", env.EventID))
		return nil
	}
}

func (r *EventRouter) handleNotificationCreated(ctx context.Context, env *models.ChangeEnvelope) error {
	var n models.Notification
	if err := json.Unmarshal(env.After, &n); err != nil {
		return fmt.Errorf("%w: notification %s: %v", ErrBadEvent, env.DocumentID, err)
	}
	if n.ID == "" {
		n.ID = env.DocumentID
	}
	if n.ID == "" {
		return fmt.Errorf("%w: notification event without document id", ErrBadEvent)
	}

	ev := models.NewCreationEvent(&n)
	ev.ActorID = env.ActorID
	_, err := r.dispatcher.Dispatch(ctx, ev)
	return err
}

func (r *EventRouter) handleChatUpdated(ctx context.Context, env *models.ChangeEnvelope) error {
	if len(env.Before) == 0 {
		return fmt.Errorf("%w: chat update %s without before image", ErrBadEvent, env.DocumentID)
	}

	var before, after models.Chat
	if err := json.Unmarshal(env.Before, &before); err != nil {
		return fmt.Errorf("%w: chat %s before image: %v", ErrBadEvent, env.DocumentID, err)
	}
	if err := json.Unmarshal(env.After, &after); err != nil {
		return fmt.Errorf("%w: chat %s after image: %v", ErrBadEvent, env.DocumentID, err)
	}

	chatID := env.DocumentID
	if chatID == "" {
		chatID = after.ID
	}

	_, err := r.dispatcher.Dispatch(ctx, models.NewStatusTransitionEvent(chatID, env.ActorID, &before, &after))
	return err
}

func (r *EventRouter) handleReportCreated(ctx context.Context, env *models.ChangeEnvelope) error {
	var report models.Report
	if err := json.Unmarshal(env.After, &report); err != nil {
		return fmt.Errorf("%w: report %s: %v", ErrBadEvent, env.DocumentID, err)
	}
	if report.ID == "" {
		report.ID = env.DocumentID
	}
	return r.reports.Notify(ctx, &report)
}
