package orchestrator

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/zulandar/switchboard/internal/models"
)

// ErrSessionNotFound is returned by Summary for unknown session ids.
var ErrSessionNotFound = errors.New("orchestrator: session not found")

// SessionSummary is the read-model view of one session for listings and
// detail endpoints.
type SessionSummary struct {
	ID              string                     `json:"sessionId"`
	CustomerName    string                     `json:"customerName"`
	CustomerTier    models.CustomerTier        `json:"customerTier"`
	Status          models.QualificationStatus `json:"qualificationStatus"`
	CurrentAgent    models.AgentType           `json:"currentAgent"`
	EngagementScore int                        `json:"engagementScore"`
	MessageCount    int                        `json:"messageCount"`
	Escalated       bool                       `json:"escalated"`
	Budget          string                     `json:"budget,omitempty"`
	ProductInterest string                     `json:"productInterest,omitempty"`
	UseCase         string                     `json:"useCase,omitempty"`
	Timeline        string                     `json:"timeline,omitempty"`
	CreatedAt       time.Time                  `json:"createdAt"`
	LastActivityAt  time.Time                  `json:"lastActivityAt"`
}

// Metrics aggregates pipeline counts for the metrics endpoint.
type Metrics struct {
	TotalSessions int64
	NotStarted    int64
	InProgress    int64
	Qualified     int64
	Unqualified   int64
	Escalated     int64
	Handoffs      int64
	Messages      int64
}

func summarize(sess *models.Session) SessionSummary {
	return SessionSummary{
		ID:              sess.ID,
		CustomerName:    sess.CustomerName,
		CustomerTier:    sess.CustomerTier,
		Status:          sess.Status,
		CurrentAgent:    sess.CurrentAgent,
		EngagementScore: sess.EngagementScore,
		MessageCount:    sess.MessageCount,
		Escalated:       sess.Escalated,
		Budget:          budgetLine(sess.BudgetMin, sess.BudgetMax),
		ProductInterest: sess.ProductInterest,
		UseCase:         sess.UseCase,
		Timeline:        sess.Timeline,
		CreatedAt:       sess.CreatedAt,
		LastActivityAt:  sess.LastActivityAt,
	}
}

// ListSessions returns summaries of all sessions, most recently active
// first.
func (o *Orchestrator) ListSessions() ([]SessionSummary, error) {
	var sessions []models.Session
	if err := o.db.Order("last_activity_at DESC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("orchestrator: list sessions: %w", err)
	}

	out := make([]SessionSummary, 0, len(sessions))
	for i := range sessions {
		out = append(out, summarize(&sessions[i]))
	}
	return out, nil
}

// Summary returns one session's summary plus its full conversation log,
// oldest entry first.
func (o *Orchestrator) Summary(sessionID string) (*SessionSummary, []models.MessageLog, error) {
	var sess models.Session
	err := o.db.First(&sess, "id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("orchestrator: load session: %w", err)
	}

	var entries []models.MessageLog
	if err := o.db.
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, nil, fmt.Errorf("orchestrator: load conversation: %w", err)
	}

	summary := summarize(&sess)
	return &summary, entries, nil
}

// CollectMetrics aggregates pipeline counts across all sessions.
func (o *Orchestrator) CollectMetrics() (*Metrics, error) {
	m := &Metrics{}

	count := func(dest *int64, q *gorm.DB) error {
		return q.Count(dest).Error
	}

	if err := count(&m.TotalSessions, o.db.Model(&models.Session{})); err != nil {
		return nil, fmt.Errorf("orchestrator: metrics: %w", err)
	}
	statuses := []struct {
		dest   *int64
		status models.QualificationStatus
	}{
		{&m.NotStarted, models.StatusNotStarted},
		{&m.InProgress, models.StatusInProgress},
		{&m.Qualified, models.StatusQualified},
		{&m.Unqualified, models.StatusUnqualified},
	}
	for _, s := range statuses {
		if err := count(s.dest, o.db.Model(&models.Session{}).Where("status = ?", s.status)); err != nil {
			return nil, fmt.Errorf("orchestrator: metrics: %w", err)
		}
	}
	if err := count(&m.Escalated, o.db.Model(&models.Session{}).Where("escalated = ?", true)); err != nil {
		return nil, fmt.Errorf("orchestrator: metrics: %w", err)
	}
	if err := count(&m.Handoffs, o.db.Model(&models.HandoffRecord{})); err != nil {
		return nil, fmt.Errorf("orchestrator: metrics: %w", err)
	}
	if err := count(&m.Messages, o.db.Model(&models.MessageLog{}).Where("sender = ?", models.SenderUser)); err != nil {
		return nil, fmt.Errorf("orchestrator: metrics: %w", err)
	}
	return m, nil
}
