// Package reminder implements the background job that sends SMS
// reminders for scheduled transactions nearing their date.
package reminder

import (
	"context"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/sms"
)

// fallbackMessage is used when a scheduled transaction has no note.
const fallbackMessage = "Scheduled transaction due."

// RunResult contains the outcome of a single dispatcher run.
type RunResult struct {
	Scanned int
	Sent    int
	Skipped int
	Failed  int
}

// Dispatcher periodically scans for scheduled transactions due within
// the lookahead window that have not been notified yet, and sends one
// SMS reminder per record. Records are processed independently: a
// failed or skipped record never aborts the batch. The notified flag
// flips false to true at most once, via a conditional update, and is
// never reset.
//
// Delivery is at-least-once: a crash between a successful send and the
// flag write causes a duplicate SMS on the next run. The flag-first
// alternative would risk dropped reminders instead; the duplicate is
// the accepted cost.
type Dispatcher struct {
	db        *gorm.DB
	sender    sms.Sender
	interval  time.Duration
	lookahead time.Duration

	// runMu makes runs single-flight when the interval is shorter
	// than one run's duration.
	runMu sync.Mutex
}

// NewDispatcher creates a Dispatcher. interval controls how often the
// scan runs; lookahead is how far ahead of now a scheduled transaction
// may be to count as due.
func NewDispatcher(db *gorm.DB, sender sms.Sender, interval, lookahead time.Duration) *Dispatcher {
	return &Dispatcher{
		db:        db,
		sender:    sender,
		interval:  interval,
		lookahead: lookahead,
	}
}

// Start runs the dispatcher loop until the context is cancelled. An
// initial run fires immediately; subsequent runs fire on the interval.
func (d *Dispatcher) Start(ctx context.Context) {
	log := logger.Get()
	log.Infow("reminder dispatcher started",
		"interval", d.interval.String(),
		"lookahead", d.lookahead.String(),
	)

	d.runAndLog(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("reminder dispatcher stopped")
			return
		case <-ticker.C:
			d.runAndLog(ctx)
		}
	}
}

func (d *Dispatcher) runAndLog(ctx context.Context) {
	result, err := d.RunOnce(ctx)
	if err != nil {
		logger.Get().Errorw("reminder run failed", "error", err)
		return
	}
	if result == nil {
		return
	}
	logger.Get().Infow("reminder run completed",
		"scanned", result.Scanned,
		"sent", result.Sent,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
}

// RunOnce executes one scan-and-send cycle. If a previous run is still
// in progress the cycle is skipped and (nil, nil) is returned.
func (d *Dispatcher) RunOnce(ctx context.Context) (*RunResult, error) {
	if !d.runMu.TryLock() {
		logger.Get().Warn("previous reminder run still in progress, skipping")
		return nil, nil
	}
	defer d.runMu.Unlock()

	log := logger.Get()
	now := time.Now()
	windowEnd := now.Add(d.lookahead)

	var due []models.ScheduledTransaction
	if err := d.db.Preload("User").
		Where("notified = ? AND scheduled_at BETWEEN ? AND ?", false, now, windowEnd).
		Find(&due).Error; err != nil {
		return nil, err
	}

	result := &RunResult{Scanned: len(due)}

	for i := range due {
		record := &due[i]

		phone := record.User.PhoneNumber
		if phone == "" {
			// Not an error: the record stays unnotified and is
			// retried every run until a phone number is set or the
			// window passes.
			log.Warnw("user has no phone number, skipping reminder",
				"user_id", record.UserID,
				"scheduled_transaction_id", record.ID,
			)
			result.Skipped++
			continue
		}

		message := "Reminder: " + fallbackMessage
		if note := strings.TrimSpace(record.Note); note != "" {
			message = "Reminder: " + note
		}

		if err := d.sender.Send(ctx, phone, message); err != nil {
			log.Errorw("failed to send reminder",
				"scheduled_transaction_id", record.ID,
				"user_id", record.UserID,
				"error", err,
			)
			result.Failed++
			continue
		}

		// Conditional update: no-ops if another run already flipped
		// the flag, so overlap cannot cause a second flip.
		if err := d.db.Model(&models.ScheduledTransaction{}).
			Where("id = ? AND notified = ?", record.ID, false).
			Update("notified", true).Error; err != nil {
			log.Errorw("failed to mark reminder as notified",
				"scheduled_transaction_id", record.ID,
				"error", err,
			)
			result.Failed++
			continue
		}

		result.Sent++
	}

	return result, nil
}
