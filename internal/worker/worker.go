// Package worker runs the background loops: the reminder scan, the
// reminder delivery consumer, and the spreadsheet mirror.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"finanzas/internal/amqp"
	"finanzas/internal/mirror"
	"finanzas/internal/services"
	"finanzas/internal/store"
)

type Worker struct {
	store     store.Store
	reminders *services.ReminderService
	writer    mirror.TransactionWriter
	client    *amqp.Client

	reminderInterval time.Duration
	mirrorInterval   time.Duration
	mirrorBatch      int
}

func New(st store.Store, reminders *services.ReminderService, writer mirror.TransactionWriter, client *amqp.Client, reminderInterval, mirrorInterval time.Duration, mirrorBatch int) *Worker {
	if reminderInterval <= 0 {
		reminderInterval = time.Minute
	}
	if mirrorInterval <= 0 {
		mirrorInterval = 5 * time.Minute
	}
	if mirrorBatch <= 0 {
		mirrorBatch = 25
	}
	return &Worker{
		store:            st,
		reminders:        reminders,
		writer:           writer,
		client:           client,
		reminderInterval: reminderInterval,
		mirrorInterval:   mirrorInterval,
		mirrorBatch:      mirrorBatch,
	}
}

// Run blocks until ctx is cancelled, then returns ctx's error. Each loop
// shuts down independently; a broker outage stops only the consumer.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return w.reminderLoop(ctx) })
	if w.writer != nil {
		g.Go(func() error { return w.mirrorLoop(ctx) })
	}
	if w.client != nil {
		g.Go(func() error { return w.consumeLoop(ctx) })
	}

	return g.Wait()
}

func (w *Worker) reminderLoop(ctx context.Context) error {
	slog.InfoContext(ctx, "Reminder loop started", "interval", w.reminderInterval)
	ticker := time.NewTicker(w.reminderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.reminders.ScanDue(ctx, time.Now()); err != nil {
				slog.ErrorContext(ctx, "Reminder scan failed", "error", err)
			}
		}
	}
}

func (w *Worker) mirrorLoop(ctx context.Context) error {
	slog.InfoContext(ctx, "Mirror loop started", "interval", w.mirrorInterval, "batch", w.mirrorBatch)
	ticker := time.NewTicker(w.mirrorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessMirrorBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "Mirror batch failed", "error", err)
			}
		}
	}
}

// ProcessMirrorBatch exports pending transactions to the spreadsheet. A
// transaction is marked mirrored only after its row was appended; a failed
// append leaves it pending for the next batch.
func (w *Worker) ProcessMirrorBatch(ctx context.Context) error {
	pending, err := w.store.PendingMirror(ctx, w.mirrorBatch)
	if err != nil {
		return fmt.Errorf("load pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	categories, err := w.categoryNames(ctx)
	if err != nil {
		return err
	}

	mirrored := 0
	for _, t := range pending {
		accounts, err := w.accountNames(ctx, t.OwnerID)
		if err != nil {
			slog.ErrorContext(ctx, "Skipping mirror row, account lookup failed",
				"transaction", t.ID, "error", err)
			continue
		}
		row := mirror.RowFromTransaction(t, categories, accounts)
		rowRef, err := w.writer.Append(ctx, row)
		if err != nil {
			slog.ErrorContext(ctx, "Mirror append failed, will retry",
				"transaction", t.ID, "error", err)
			continue
		}
		if err := w.store.MarkMirrored(ctx, t.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to mark transaction mirrored",
				"transaction", t.ID, "row", rowRef, "error", err)
			continue
		}
		mirrored++
	}

	slog.InfoContext(ctx, "Mirror batch completed", "pending", len(pending), "mirrored", mirrored)
	return nil
}

func (w *Worker) consumeLoop(ctx context.Context) error {
	err := w.client.ConsumeReminders(ctx, func(msg *amqp.ReminderMessage) error {
		return w.HandleReminder(ctx, msg)
	})
	if errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		slog.ErrorContext(ctx, "Reminder consumer stopped", "error", err)
	}
	return err
}

// HandleReminder delivers one reminder notification. Delivery is currently
// a structured log line; richer channels can hang off this handler.
func (w *Worker) HandleReminder(ctx context.Context, msg *amqp.ReminderMessage) error {
	slog.InfoContext(ctx, "Reminder due",
		"event_id", msg.EventID,
		"owner", msg.OwnerID,
		"title", msg.Title,
		"due_at", msg.DueAt)
	return nil
}

func (w *Worker) categoryNames(ctx context.Context) (map[string]string, error) {
	cats, err := w.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names, nil
}

func (w *Worker) accountNames(ctx context.Context, owner string) (map[string]string, error) {
	accounts, err := w.store.ListAccounts(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("load accounts for %s: %w", owner, err)
	}
	names := make(map[string]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}
	return names, nil
}
