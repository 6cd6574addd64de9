package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

type sentMessage struct {
	To   string
	Body string
}

// fakeSender records sends and can be told to fail for specific numbers.
type fakeSender struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[string]error
}

func (f *fakeSender) Send(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[to]; ok {
		return err
	}
	f.sent = append(f.sent, sentMessage{To: to, Body: body})
	return nil
}

func (f *fakeSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func TestRunOnce(t *testing.T) {
	lookahead := 7 * 24 * time.Hour

	t.Run("sends_and_marks_notified", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUserWithPhone(t, db, "+15550000001")
		record := testutil.CreateTestScheduledTransaction(t, db, user.ID, time.Now().Add(24*time.Hour), "pay rent")

		sender := &fakeSender{}
		d := NewDispatcher(db, sender, time.Minute, lookahead)

		result, err := d.RunOnce(context.Background())
		testutil.AssertNoError(t, err)

		if result.Sent != 1 {
			t.Fatalf("expected 1 sent, got %+v", result)
		}
		msgs := sender.messages()
		if len(msgs) != 1 {
			t.Fatalf("expected 1 message, got %d", len(msgs))
		}
		if msgs[0].To != "+15550000001" {
			t.Errorf("expected message to +15550000001, got %s", msgs[0].To)
		}
		if msgs[0].Body != "Reminder: pay rent" {
			t.Errorf("unexpected message body %q", msgs[0].Body)
		}

		var updated models.ScheduledTransaction
		if err := db.First(&updated, record.ID).Error; err != nil {
			t.Fatalf("failed to reload record: %v", err)
		}
		if !updated.Notified {
			t.Error("record should be marked notified after a successful send")
		}
	})

	t.Run("notified_records_excluded_from_next_run", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUserWithPhone(t, db, "+15550000002")
		testutil.CreateTestScheduledTransaction(t, db, user.ID, time.Now().Add(24*time.Hour), "insurance")

		sender := &fakeSender{}
		d := NewDispatcher(db, sender, time.Minute, lookahead)

		first, err := d.RunOnce(context.Background())
		testutil.AssertNoError(t, err)
		if first.Sent != 1 {
			t.Fatalf("expected 1 sent on first run, got %+v", first)
		}

		second, err := d.RunOnce(context.Background())
		testutil.AssertNoError(t, err)
		if second.Sent != 0 {
			t.Errorf("expected 0 sent on second run, got %+v", second)
		}
		if len(sender.messages()) != 1 {
			t.Errorf("expected exactly 1 message total, got %d", len(sender.messages()))
		}
	})

	t.Run("missing_phone_skipped_and_retried", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		record := testutil.CreateTestScheduledTransaction(t, db, user.ID, time.Now().Add(24*time.Hour), "rent")

		sender := &fakeSender{}
		d := NewDispatcher(db, sender, time.Minute, lookahead)

		result, err := d.RunOnce(context.Background())
		testutil.AssertNoError(t, err)
		if result.Skipped != 1 || result.Sent != 0 {
			t.Fatalf("expected 1 skipped, got %+v", result)
		}

		// The flag stays down, so the record comes back once a phone
		// number is set.
		var reloaded models.ScheduledTransaction
		if err := db.First(&reloaded, record.ID).Error; err != nil {
			t.Fatalf("failed to reload record: %v", err)
		}
		if reloaded.Notified {
			t.Error("skipped record must stay unnotified")
		}

		if err := db.Model(user).Update("phone_number", "+15550000003").Error; err != nil {
			t.Fatalf("failed to set phone number: %v", err)
		}

		retry, err := d.RunOnce(context.Background())
		testutil.AssertNoError(t, err)
		if retry.Sent != 1 {
			t.Errorf("expected the record to send after phone update, got %+v", retry)
		}
	})

	t.Run("send_failure_does_not_stop_batch", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		failing := testutil.CreateTestUserWithPhone(t, db, "+15550000004")
		healthy := testutil.CreateTestUserWithPhone(t, db, "+15550000005")
		failRecord := testutil.CreateTestScheduledTransaction(t, db, failing.ID, time.Now().Add(24*time.Hour), "one")
		testutil.CreateTestScheduledTransaction(t, db, healthy.ID, time.Now().Add(24*time.Hour), "two")

		sender := &fakeSender{failFor: map[string]error{
			"+15550000004": errors.New("carrier rejected"),
		}}
		d := NewDispatcher(db, sender, time.Minute, lookahead)

		result, err := d.RunOnce(context.Background())
		testutil.AssertNoError(t, err)
		if result.Failed != 1 || result.Sent != 1 {
			t.Fatalf("expected 1 failed and 1 sent, got %+v", result)
		}

		// The failed record keeps its flag down for a retry.
		var reloaded models.ScheduledTransaction
		if err := db.First(&reloaded, failRecord.ID).Error; err != nil {
			t.Fatalf("failed to reload record: %v", err)
		}
		if reloaded.Notified {
			t.Error("failed record must stay unnotified")
		}
	})

	t.Run("records_outside_window_excluded", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUserWithPhone(t, db, "+15550000006")
		testutil.CreateTestScheduledTransaction(t, db, user.ID, time.Now().Add(-48*time.Hour), "past")
		testutil.CreateTestScheduledTransaction(t, db, user.ID, time.Now().Add(30*24*time.Hour), "far future")

		sender := &fakeSender{}
		d := NewDispatcher(db, sender, time.Minute, lookahead)

		result, err := d.RunOnce(context.Background())
		testutil.AssertNoError(t, err)
		if result.Scanned != 0 {
			t.Errorf("expected no records in window, got %+v", result)
		}
	})

	t.Run("empty_note_uses_fallback_message", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUserWithPhone(t, db, "+15550000007")
		testutil.CreateTestScheduledTransaction(t, db, user.ID, time.Now().Add(24*time.Hour), "   ")

		sender := &fakeSender{}
		d := NewDispatcher(db, sender, time.Minute, lookahead)

		_, err := d.RunOnce(context.Background())
		testutil.AssertNoError(t, err)

		msgs := sender.messages()
		if len(msgs) != 1 {
			t.Fatalf("expected 1 message, got %d", len(msgs))
		}
		if msgs[0].Body != "Reminder: "+fallbackMessage {
			t.Errorf("unexpected fallback body %q", msgs[0].Body)
		}
	})
}
