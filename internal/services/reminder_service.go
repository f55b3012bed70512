package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/store"
)

// ReminderPublisher is the broker surface the reminder scan needs.
// *amqp.Client satisfies it.
type ReminderPublisher interface {
	PublishReminder(ctx context.Context, msg *amqp.ReminderMessage) error
}

// ReminderService scans for due calendar reminders and publishes a
// notification per event. An event is marked notified only after its
// message was accepted by the broker, so a failed publish is retried on
// the next scan instead of being lost.
type ReminderService struct {
	store     store.Store
	publisher ReminderPublisher
	batchSize int
}

func NewReminderService(st store.Store, publisher ReminderPublisher, batchSize int) *ReminderService {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &ReminderService{store: st, publisher: publisher, batchSize: batchSize}
}

// ScanDue processes every reminder due at now. It returns the number of
// notifications published; a publish failure for one event is logged and
// does not block the rest of the batch.
func (s *ReminderService) ScanDue(ctx context.Context, now time.Time) (int, error) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Reminder publishing disabled, skipping scan")
		return 0, nil
	}

	due, err := s.store.DueReminders(ctx, now, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("load due reminders: %w", err)
	}

	published := 0
	for _, e := range due {
		if err := s.notify(ctx, e); err != nil {
			slog.ErrorContext(ctx, "Reminder notification failed, will retry next scan",
				"event_id", e.ID, "error", err)
			continue
		}
		published++
	}

	if published > 0 {
		slog.InfoContext(ctx, "Reminder scan completed", "due", len(due), "published", published)
	}
	return published, nil
}

func (s *ReminderService) notify(ctx context.Context, e core.CalendarEvent) error {
	msg := amqp.NewReminderMessage(e.ID, e.OwnerID, e.Title, e.ReminderAt)
	if err := s.publisher.PublishReminder(ctx, msg); err != nil {
		return fmt.Errorf("publish reminder: %w", err)
	}
	if err := s.store.MarkNotified(ctx, e.ID); err != nil {
		return &core.PersistenceError{Table: "calendar_events", Key: e.ID, Err: err}
	}
	return nil
}
