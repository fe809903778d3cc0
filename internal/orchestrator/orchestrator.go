// Package orchestrator runs the message pipeline: classify, score, route,
// draft, enrich, persist. It owns the per-session concurrency control and
// is the only writer of session state.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/zulandar/switchboard/internal/agents"
	"github.com/zulandar/switchboard/internal/config"
	"github.com/zulandar/switchboard/internal/intent"
	"github.com/zulandar/switchboard/internal/knowledge"
	"github.com/zulandar/switchboard/internal/llm"
	"github.com/zulandar/switchboard/internal/models"
	"github.com/zulandar/switchboard/internal/notify"
	"github.com/zulandar/switchboard/internal/policy"
	"github.com/zulandar/switchboard/internal/qualify"
)

var (
	// ErrInvalidRequest marks a request rejected before any state change.
	ErrInvalidRequest = errors.New("orchestrator: invalid request")

	// ErrSessionBusy is returned when another call holds the session. The
	// caller may retry; no state was touched.
	ErrSessionBusy = errors.New("orchestrator: session busy")
)

// Request is one inbound customer message.
type Request struct {
	SessionID    string
	Message      string
	CustomerName string              // optional, applied on session creation
	CustomerTier models.CustomerTier // optional, applied on session creation
	CustomerID   string              // optional, applied on session creation
}

// Result is the pipeline outcome for one message.
type Result struct {
	SessionID       string
	Agent           models.AgentType
	Response        string
	Intent          intent.Intent
	Confidence      float64
	Status          models.QualificationStatus
	HandoffOccurred bool
	Escalated       bool
}

// Opts holds the orchestrator's collaborators. LLM may be nil to disable
// enrichment; Notifier may be nil to disable notifications.
type Opts struct {
	DB       *gorm.DB
	Store    *knowledge.Store
	Config   config.QualificationConfig
	Registry *agents.Registry
	LLM      llm.Client
	Notifier notify.Notifier

	// LLMTimeout bounds each enrichment call. Zero means 10 seconds.
	LLMTimeout time.Duration
}

// Orchestrator coordinates the pipeline stages over shared session state.
type Orchestrator struct {
	db         *gorm.DB
	store      *knowledge.Store
	cfg        config.QualificationConfig
	classifier *intent.Classifier
	scorer     *qualify.Scorer
	policy     *policy.Policy
	registry   *agents.Registry
	llm        llm.Client
	notifier   notify.Notifier
	llmTimeout time.Duration
	locks      *sessionLocks
	now        func() time.Time
}

// New validates opts and builds the orchestrator.
func New(opts Opts) (*Orchestrator, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("orchestrator: db is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("orchestrator: knowledge store is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("orchestrator: agent registry is required")
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Noop{}
	}
	timeout := opts.LLMTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Orchestrator{
		db:         opts.DB,
		store:      opts.Store,
		cfg:        opts.Config,
		classifier: intent.NewClassifier(opts.Store, opts.Config.Lookback),
		scorer:     qualify.NewScorer(opts.Store, opts.Config),
		policy:     policy.New(opts.Config.Lookback),
		registry:   opts.Registry,
		llm:        opts.LLM,
		notifier:   notifier,
		llmTimeout: timeout,
		locks:      newSessionLocks(),
		now:        time.Now,
	}, nil
}

// ProcessMessage runs one message through the full pipeline. Concurrent
// calls for the same session fail fast with ErrSessionBusy.
func (o *Orchestrator) ProcessMessage(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, fmt.Errorf("%w: sessionId is required", ErrInvalidRequest)
	}
	if req.CustomerTier != "" && !models.ValidTier(req.CustomerTier) {
		return nil, fmt.Errorf("%w: unknown customer tier %q", ErrInvalidRequest, req.CustomerTier)
	}

	lock := o.locks.forSession(req.SessionID)
	if !lock.TryLock() {
		return nil, ErrSessionBusy
	}
	defer lock.Unlock()

	sess, err := o.loadOrCreate(req)
	if err != nil {
		return nil, err
	}

	history, err := o.recentHistory(sess.ID)
	if err != nil {
		return nil, err
	}

	in, confidence := o.classifier.Classify(req.Message, history)

	inbound := models.MessageLog{
		SessionID:  sess.ID,
		Sender:     models.SenderUser,
		Content:    req.Message,
		Intent:     string(in),
		Confidence: confidence,
		CreatedAt:  o.now(),
	}
	if err := o.appendLog(&inbound); err != nil {
		return nil, err
	}

	if sess.Escalated {
		return o.frozenReply(ctx, sess, in, confidence)
	}

	outcome := o.scorer.UpdateProfile(sess, req.Message, in)

	since, err := o.messagesSinceHandoff(sess.ID)
	if err != nil {
		return nil, err
	}

	decision := o.policy.Decide(sess, policy.Input{
		Intent:               in,
		StatusChanged:        outcome.StatusChanged,
		MessagesSinceHandoff: since,
	})

	switch {
	case decision.Escalate:
		sess.Escalated = true
		if sess.CurrentAgent == "" {
			sess.CurrentAgent = decision.Agent
		}
		o.emit(ctx, notify.Event{
			Kind:         notify.KindEscalation,
			SessionID:    sess.ID,
			CustomerName: sess.CustomerName,
			FromAgent:    sess.CurrentAgent,
			Reason:       decision.Reason,
			Status:       sess.Status,
			Profile:      profileSummary(sess),
		})

	case decision.Handoff:
		if err := o.recordHandoff(sess, decision, inbound.ID); err != nil {
			return nil, err
		}
		o.emit(ctx, notify.Event{
			Kind:         notify.KindHandoff,
			SessionID:    sess.ID,
			CustomerName: sess.CustomerName,
			FromAgent:    sess.CurrentAgent,
			ToAgent:      decision.Agent,
			Reason:       decision.Reason,
			Status:       sess.Status,
			Profile:      profileSummary(sess),
		})
		sess.CurrentAgent = decision.Agent

	default:
		sess.CurrentAgent = decision.Agent
	}

	var response string
	if decision.Escalate {
		response = o.escalationReply()
	} else {
		agent := o.registry.ForType(sess.CurrentAgent)
		response = o.enrich(ctx, agent.Type(), agent.Draft(ctx, sess, in, req.Message))
	}

	if err := o.appendLog(&models.MessageLog{
		SessionID: sess.ID,
		Sender:    string(sess.CurrentAgent),
		Content:   response,
		AgentType: sess.CurrentAgent,
		CreatedAt: o.now(),
	}); err != nil {
		return nil, err
	}

	sess.LastActivityAt = o.now()
	if err := o.db.Save(sess).Error; err != nil {
		return nil, fmt.Errorf("orchestrator: save session: %w", err)
	}

	return &Result{
		SessionID:       sess.ID,
		Agent:           sess.CurrentAgent,
		Response:        response,
		Intent:          in,
		Confidence:      confidence,
		Status:          sess.Status,
		HandoffOccurred: decision.Handoff,
		Escalated:       sess.Escalated,
	}, nil
}

// frozenReply handles messages on an already-escalated session: the message
// is logged, the profile stays untouched, and a holding reply goes out.
func (o *Orchestrator) frozenReply(_ context.Context, sess *models.Session, in intent.Intent, confidence float64) (*Result, error) {
	response := o.escalationReply()

	if err := o.appendLog(&models.MessageLog{
		SessionID: sess.ID,
		Sender:    models.SenderSystem,
		Content:   response,
		CreatedAt: o.now(),
	}); err != nil {
		return nil, err
	}

	sess.LastActivityAt = o.now()
	if err := o.db.Save(sess).Error; err != nil {
		return nil, fmt.Errorf("orchestrator: save session: %w", err)
	}

	return &Result{
		SessionID:  sess.ID,
		Agent:      sess.CurrentAgent,
		Response:   response,
		Intent:     in,
		Confidence: confidence,
		Status:     sess.Status,
		Escalated:  true,
	}, nil
}

func (o *Orchestrator) escalationReply() string {
	if text, ok := o.store.Response(string(intent.HandoffRequest)); ok {
		return text
	}
	return o.store.Fallback()
}

// enrich asks the language model to polish the draft under a bounded
// timeout. Any failure falls back to the draft unchanged.
func (o *Orchestrator) enrich(ctx context.Context, agent models.AgentType, draft string) string {
	if o.llm == nil || draft == "" {
		return draft
	}

	ctx, cancel := context.WithTimeout(ctx, o.llmTimeout)
	defer cancel()

	system := fmt.Sprintf(
		"You are a %s agent for an electronics retailer. Rewrite the reply below so it reads naturally and warmly. Keep every fact, question, and product mention. Reply with the rewritten text only.",
		strings.ReplaceAll(string(agent), "_", " "))

	enriched, err := o.llm.Complete(ctx, system, draft)
	if err != nil {
		log.Printf("orchestrator: enrichment failed, using draft: %v", err)
		return draft
	}
	if enriched == "" {
		return draft
	}
	return enriched
}

// emit sends a notification without letting delivery problems affect the
// pipeline.
func (o *Orchestrator) emit(ctx context.Context, ev notify.Event) {
	if err := o.notifier.Notify(ctx, ev); err != nil {
		log.Printf("orchestrator: notify %s for session %s: %v", ev.Kind, ev.SessionID, err)
	}
}

// recordHandoff writes the audit record with a profile snapshot. logID is
// the triggering log entry, the watermark the anti-thrash window counts
// from.
func (o *Orchestrator) recordHandoff(sess *models.Session, d policy.Decision, logID uint) error {
	snapshot, err := json.Marshal(map[string]any{
		"budgetMin":       sess.BudgetMin,
		"budgetMax":       sess.BudgetMax,
		"productInterest": sess.ProductInterest,
		"useCase":         sess.UseCase,
		"timeline":        sess.Timeline,
		"status":          sess.Status,
		"engagementScore": sess.EngagementScore,
		"messageCount":    sess.MessageCount,
	})
	if err != nil {
		return fmt.Errorf("orchestrator: marshal profile snapshot: %w", err)
	}

	rec := models.HandoffRecord{
		SessionID:   sess.ID,
		FromAgent:   sess.CurrentAgent,
		ToAgent:     d.Agent,
		Reason:      d.Reason,
		LogID:       logID,
		ProfileJSON: string(snapshot),
		CreatedAt:   o.now(),
	}
	if err := o.db.Create(&rec).Error; err != nil {
		return fmt.Errorf("orchestrator: record handoff: %w", err)
	}
	return nil
}

func (o *Orchestrator) loadOrCreate(req Request) (*models.Session, error) {
	var sess models.Session
	err := o.db.First(&sess, "id = ?", req.SessionID).Error
	if err == nil {
		return &sess, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("orchestrator: load session: %w", err)
	}

	sess = models.Session{
		ID:             req.SessionID,
		CreatedAt:      o.now(),
		LastActivityAt: o.now(),
	}
	if req.CustomerName != "" {
		sess.CustomerName = req.CustomerName
	}
	if req.CustomerTier != "" {
		sess.CustomerTier = req.CustomerTier
	}
	if req.CustomerID != "" {
		sess.CustomerID = req.CustomerID
	}
	if err := o.db.Create(&sess).Error; err != nil {
		return nil, fmt.Errorf("orchestrator: create session: %w", err)
	}
	// Re-read so column defaults (name, tier, status) are populated.
	if err := o.db.First(&sess, "id = ?", req.SessionID).Error; err != nil {
		return nil, fmt.Errorf("orchestrator: reload session: %w", err)
	}
	return &sess, nil
}

// recentHistory returns the last lookback log entries, oldest first.
func (o *Orchestrator) recentHistory(sessionID string) ([]models.MessageLog, error) {
	lookback := o.cfg.Lookback
	if lookback <= 0 {
		lookback = 10
	}

	var entries []models.MessageLog
	if err := o.db.
		Where("session_id = ?", sessionID).
		Order("id DESC").
		Limit(lookback).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("orchestrator: load history: %w", err)
	}

	// Reverse into chronological order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// messagesSinceHandoff counts log entries appended after the session's most
// recent handoff, or -1 when it has never handed off. The count compares
// log ids against the handoff's watermark, so entries sharing a timestamp
// with the handoff still land on the correct side of the window.
func (o *Orchestrator) messagesSinceHandoff(sessionID string) (int, error) {
	var last models.HandoffRecord
	err := o.db.
		Where("session_id = ?", sessionID).
		Order("id DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return -1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("orchestrator: load last handoff: %w", err)
	}

	var n int64
	if err := o.db.Model(&models.MessageLog{}).
		Where("session_id = ? AND id > ?", sessionID, last.LogID).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("orchestrator: count since handoff: %w", err)
	}
	return int(n), nil
}

// profileSummary renders the qualification profile as one line for
// notifications.
func profileSummary(sess *models.Session) string {
	var parts []string
	if sess.ProductInterest != "" {
		parts = append(parts, sess.ProductInterest)
	}
	if sess.BudgetMin != nil || sess.BudgetMax != nil {
		parts = append(parts, budgetLine(sess.BudgetMin, sess.BudgetMax))
	}
	if sess.UseCase != "" {
		parts = append(parts, sess.UseCase)
	}
	if sess.Timeline != "" {
		parts = append(parts, sess.Timeline)
	}
	if len(parts) == 0 {
		return "no signals yet"
	}
	return strings.Join(parts, ", ")
}

func budgetLine(min, max *int) string {
	switch {
	case min != nil && max != nil && *min == *max:
		return fmt.Sprintf("$%d", *min)
	case min != nil && max != nil:
		return fmt.Sprintf("$%d-$%d", *min, *max)
	case min != nil:
		return fmt.Sprintf("$%d+", *min)
	case max != nil:
		return fmt.Sprintf("up to $%d", *max)
	default:
		return ""
	}
}

// appendLog persists one log entry, filling in its assigned id.
func (o *Orchestrator) appendLog(entry *models.MessageLog) error {
	if err := o.db.Create(entry).Error; err != nil {
		return fmt.Errorf("orchestrator: append log: %w", err)
	}
	return nil
}
