// Package digest computes and delivers the daily pipeline summary: how
// many sessions came in, how many qualified, and where handoffs went.
package digest

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/zulandar/switchboard/internal/config"
	"github.com/zulandar/switchboard/internal/models"
	"github.com/zulandar/switchboard/internal/notify"
)

// Report holds computed pipeline metrics for a 24-hour period.
type Report struct {
	PeriodStart     time.Time
	PeriodEnd       time.Time
	NewSessions     int
	MessagesHandled int
	Qualified       int
	Unqualified     int
	Handoffs        int
	Escalations     int
	ActiveSessions  int
}

// empty reports whether the period saw no activity at all.
func (r *Report) empty() bool {
	return r.NewSessions == 0 && r.MessagesHandled == 0 &&
		r.Qualified == 0 && r.Unqualified == 0 &&
		r.Handoffs == 0 && r.Escalations == 0
}

// Digester builds daily reports from the database and pushes them through
// the notifier on a cron schedule.
type Digester struct {
	db       *gorm.DB
	notifier notify.Notifier
	expr     string
	now      func() time.Time
}

// New creates a Digester. The cron expression comes from configuration;
// an empty expression falls back to 9am daily.
func New(db *gorm.DB, notifier notify.Notifier, cfg config.DigestConfig) *Digester {
	expr := cfg.Cron
	if expr == "" {
		expr = "0 9 * * *"
	}
	return &Digester{db: db, notifier: notifier, expr: expr, now: time.Now}
}

// Run blocks, firing one digest per scheduled tick until ctx is cancelled.
// Digests with no activity are suppressed.
func (d *Digester) Run(ctx context.Context) {
	for {
		wait := nextCronDuration(d.expr)
		if wait <= 0 {
			log.Printf("digest: invalid cron expression %q, scheduler stopped", d.expr)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		if err := d.Deliver(ctx); err != nil {
			log.Printf("digest: delivery failed: %v", err)
		}
	}
}

// Deliver builds the last-24-hours report and sends it. A report with no
// activity is dropped silently.
func (d *Digester) Deliver(ctx context.Context) error {
	until := d.now()
	report, err := d.BuildReport(until.Add(-24*time.Hour), until)
	if err != nil {
		return err
	}
	if report.empty() {
		return nil
	}

	title, body := Format(report)
	return d.notifier.Notify(ctx, notify.Event{
		Kind:  notify.KindDigest,
		Title: title,
		Body:  body,
	})
}

// BuildReport queries pipeline counts for the given time range.
func (d *Digester) BuildReport(since, until time.Time) (*Report, error) {
	report := &Report{PeriodStart: since, PeriodEnd: until}

	count := func(dest *int, q *gorm.DB) error {
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return err
		}
		*dest = int(n)
		return nil
	}

	if err := count(&report.NewSessions, d.db.Model(&models.Session{}).
		Where("created_at >= ? AND created_at < ?", since, until)); err != nil {
		return nil, fmt.Errorf("digest: count new sessions: %w", err)
	}
	if err := count(&report.MessagesHandled, d.db.Model(&models.MessageLog{}).
		Where("sender = ? AND created_at >= ? AND created_at < ?", models.SenderUser, since, until)); err != nil {
		return nil, fmt.Errorf("digest: count messages: %w", err)
	}
	if err := count(&report.Qualified, d.db.Model(&models.Session{}).
		Where("status = ? AND last_activity_at >= ? AND last_activity_at < ?",
			models.StatusQualified, since, until)); err != nil {
		return nil, fmt.Errorf("digest: count qualified: %w", err)
	}
	if err := count(&report.Unqualified, d.db.Model(&models.Session{}).
		Where("status = ? AND last_activity_at >= ? AND last_activity_at < ?",
			models.StatusUnqualified, since, until)); err != nil {
		return nil, fmt.Errorf("digest: count unqualified: %w", err)
	}
	if err := count(&report.Handoffs, d.db.Model(&models.HandoffRecord{}).
		Where("created_at >= ? AND created_at < ?", since, until)); err != nil {
		return nil, fmt.Errorf("digest: count handoffs: %w", err)
	}
	if err := count(&report.Escalations, d.db.Model(&models.Session{}).
		Where("escalated = ? AND last_activity_at >= ? AND last_activity_at < ?",
			true, since, until)); err != nil {
		return nil, fmt.Errorf("digest: count escalations: %w", err)
	}
	if err := count(&report.ActiveSessions, d.db.Model(&models.Session{}).
		Where("status IN ?", []models.QualificationStatus{
			models.StatusNotStarted, models.StatusInProgress,
		})); err != nil {
		return nil, fmt.Errorf("digest: count active sessions: %w", err)
	}

	return report, nil
}

// Format renders a report as a notification title and body.
func Format(r *Report) (string, string) {
	title := fmt.Sprintf("Daily pipeline digest (%s)", r.PeriodEnd.Format("2006-01-02"))

	lines := []string{
		fmt.Sprintf("New sessions: %d", r.NewSessions),
		fmt.Sprintf("Customer messages: %d", r.MessagesHandled),
		fmt.Sprintf("Qualified: %d", r.Qualified),
		fmt.Sprintf("Unqualified: %d", r.Unqualified),
		fmt.Sprintf("Handoffs: %d", r.Handoffs),
		fmt.Sprintf("Escalations: %d", r.Escalations),
		fmt.Sprintf("Still in pipeline: %d", r.ActiveSessions),
	}
	return title, strings.Join(lines, "\n")
}
