package qualify

import (
	"fmt"
	"testing"

	"github.com/zulandar/switchboard/internal/config"
	"github.com/zulandar/switchboard/internal/intent"
	"github.com/zulandar/switchboard/internal/knowledge"
	"github.com/zulandar/switchboard/internal/models"
)

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	return NewScorer(knowledge.Default(), config.QualificationConfig{
		EngagementThreshold: 3,
		EngagementCeiling:   20,
		MaxMessages:         15,
		MinSignals:          2,
		Lookback:            10,
	})
}

func newTestSession() *models.Session {
	return &models.Session{ID: "sess-1", Status: models.StatusNotStarted}
}

func TestUpdateProfile_SignalMovesToInProgress(t *testing.T) {
	s := newTestScorer(t)
	sess := newTestSession()

	out := s.UpdateProfile(sess, "Hi, I'm looking for a laptop for my business", intent.ProductInquiry)

	if sess.Status != models.StatusInProgress {
		t.Errorf("Status = %q, want %q", sess.Status, models.StatusInProgress)
	}
	if !out.StatusChanged || out.PreviousStatus != models.StatusNotStarted {
		t.Errorf("outcome = %+v, want status change from not_started", out)
	}
	if sess.ProductInterest != "laptops" {
		t.Errorf("ProductInterest = %q, want laptops", sess.ProductInterest)
	}
	if sess.UseCase != "business" {
		t.Errorf("UseCase = %q, want business", sess.UseCase)
	}
	if sess.MessageCount != 1 {
		t.Errorf("MessageCount = %d, want 1", sess.MessageCount)
	}
}

func TestUpdateProfile_NoSignalStaysNotStarted(t *testing.T) {
	s := newTestScorer(t)
	sess := newTestSession()

	out := s.UpdateProfile(sess, "the weather is nice today", intent.General)

	if sess.Status != models.StatusNotStarted {
		t.Errorf("Status = %q, want %q", sess.Status, models.StatusNotStarted)
	}
	if out.StatusChanged {
		t.Error("StatusChanged = true, want false")
	}
	if len(out.Signals) != 0 {
		t.Errorf("Signals = %v, want none", out.Signals)
	}
}

func TestUpdateProfile_QualifiesAtTwoSignalsAboveThreshold(t *testing.T) {
	s := newTestScorer(t)
	sess := newTestSession()

	s.UpdateProfile(sess, "I need a laptop for work", intent.ProductInquiry)
	s.UpdateProfile(sess, "my budget is around $1,200", intent.Pricing)

	if sess.SignalCount() < 2 {
		t.Fatalf("SignalCount = %d, want >= 2", sess.SignalCount())
	}
	if sess.EngagementScore <= 3 {
		t.Fatalf("EngagementScore = %d, want > threshold 3", sess.EngagementScore)
	}
	if sess.Status != models.StatusQualified {
		t.Errorf("Status = %q, want %q", sess.Status, models.StatusQualified)
	}
}

func TestUpdateProfile_QualifiedIsTerminal(t *testing.T) {
	s := newTestScorer(t)
	sess := newTestSession()
	sess.Status = models.StatusQualified
	sess.MessageCount = 14

	out := s.UpdateProfile(sess, "ok thanks", intent.General)

	if sess.Status != models.StatusQualified {
		t.Errorf("Status = %q, want qualified to stick past the message cap", sess.Status)
	}
	if out.StatusChanged {
		t.Error("StatusChanged = true, want false")
	}
}

func TestUpdateProfile_UnqualifiedAtMessageCap(t *testing.T) {
	s := newTestScorer(t)
	sess := newTestSession()

	var out Outcome
	for i := 0; i < 15; i++ {
		out = s.UpdateProfile(sess, fmt.Sprintf("just chatting, message %d", i), intent.General)
	}

	if sess.Status != models.StatusUnqualified {
		t.Errorf("Status after 15 generic messages = %q, want %q", sess.Status, models.StatusUnqualified)
	}
	if !out.StatusChanged {
		t.Error("final message should report the status change")
	}
	if sess.MessageCount != 15 {
		t.Errorf("MessageCount = %d, want 15", sess.MessageCount)
	}
}

func TestUpdateProfile_UnqualifiedFromInProgress(t *testing.T) {
	s := newTestScorer(t)
	sess := newTestSession()
	sess.Status = models.StatusInProgress
	sess.ProductInterest = "laptops"
	sess.MessageCount = 14

	s.UpdateProfile(sess, "hmm", intent.General)

	if sess.Status != models.StatusUnqualified {
		t.Errorf("Status = %q, want %q", sess.Status, models.StatusUnqualified)
	}
}

func TestUpdateProfile_EngagementMonotonicAndCapped(t *testing.T) {
	s := newTestScorer(t)
	sess := newTestSession()

	prev := 0
	for i := 0; i < 30; i++ {
		s.UpdateProfile(sess, "I need a laptop for work today", intent.ProductInquiry)
		if sess.EngagementScore < prev {
			t.Fatalf("message %d: engagement dropped from %d to %d", i, prev, sess.EngagementScore)
		}
		prev = sess.EngagementScore
	}
	if sess.EngagementScore != 20 {
		t.Errorf("EngagementScore = %d, want capped at 20", sess.EngagementScore)
	}
}

func TestUpdateProfile_EmptyMessageNoEngagement(t *testing.T) {
	s := newTestScorer(t)
	sess := newTestSession()
	sess.EngagementScore = 5

	s.UpdateProfile(sess, "   ", intent.General)

	if sess.EngagementScore != 5 {
		t.Errorf("EngagementScore = %d, want unchanged 5", sess.EngagementScore)
	}
	if sess.MessageCount != 1 {
		t.Errorf("MessageCount = %d, want 1", sess.MessageCount)
	}
}

func TestUpdateProfile_RestartClearsProfileKeepsEngagement(t *testing.T) {
	s := newTestScorer(t)
	sess := newTestSession()

	s.UpdateProfile(sess, "I want a laptop for gaming, budget $2,000", intent.ProductInquiry)
	if sess.Status == models.StatusNotStarted {
		t.Fatalf("setup: expected progress before restart, got %q", sess.Status)
	}
	engagement := sess.EngagementScore

	out := s.UpdateProfile(sess, "actually let's start over", intent.General)

	if !out.Restarted {
		t.Error("Restarted = false, want true")
	}
	if sess.Status != models.StatusNotStarted {
		t.Errorf("Status = %q, want %q", sess.Status, models.StatusNotStarted)
	}
	if sess.HasBudget() || sess.ProductInterest != "" || sess.UseCase != "" || sess.Timeline != "" {
		t.Errorf("profile not cleared: %+v", sess)
	}
	if sess.EngagementScore < engagement {
		t.Errorf("EngagementScore = %d, want >= %d (preserved across restart)", sess.EngagementScore, engagement)
	}
}

func TestUpdateProfile_BudgetLastWriteWins(t *testing.T) {
	s := newTestScorer(t)
	sess := newTestSession()

	s.UpdateProfile(sess, "my budget is $1,000", intent.Pricing)
	out := s.UpdateProfile(sess, "actually I can go up to $2,000", intent.Pricing)

	if !out.BudgetRevised {
		t.Error("BudgetRevised = false, want true")
	}
	if sess.BudgetMin == nil || *sess.BudgetMin != 0 {
		t.Errorf("BudgetMin = %v, want 0", sess.BudgetMin)
	}
	if sess.BudgetMax == nil || *sess.BudgetMax != 2000 {
		t.Errorf("BudgetMax = %v, want 2000", sess.BudgetMax)
	}
}

func TestUpdateProfile_SameBudgetNotRevised(t *testing.T) {
	s := newTestScorer(t)
	sess := newTestSession()

	s.UpdateProfile(sess, "my budget is $1,000", intent.Pricing)
	out := s.UpdateProfile(sess, "like I said, $1,000", intent.Pricing)

	if out.BudgetRevised {
		t.Error("BudgetRevised = true for an identical restatement, want false")
	}
}

func TestUpdateProfile_BareNumberWithPricingIntent(t *testing.T) {
	s := newTestScorer(t)
	sess := newTestSession()

	out := s.UpdateProfile(sess, "1500", intent.Pricing)

	if sess.BudgetMin == nil || *sess.BudgetMin != 1500 || sess.BudgetMax == nil || *sess.BudgetMax != 1500 {
		t.Errorf("budget = %s, want $1500", formatBudget(sess.BudgetMin, sess.BudgetMax))
	}
	if len(out.Signals) != 1 || out.Signals[0] != "budget" {
		t.Errorf("Signals = %v, want [budget]", out.Signals)
	}

	// The same bare number without pricing context is not a budget.
	other := newTestSession()
	s.UpdateProfile(other, "1500", intent.General)
	if other.HasBudget() {
		t.Error("bare number with general intent should not set a budget")
	}
}

func TestUpdateProfile_BrandDoesNotOverwriteExplicitInterest(t *testing.T) {
	s := newTestScorer(t)
	sess := newTestSession()

	s.UpdateProfile(sess, "I'm shopping for headphones", intent.ProductInquiry)
	if sess.ProductInterest != "audio" {
		t.Fatalf("setup: ProductInterest = %q, want audio", sess.ProductInterest)
	}

	// Lenovo is a laptop brand; a passing mention keeps the stated interest.
	s.UpdateProfile(sess, "my Lenovo has terrible speakers", intent.ProductInquiry)
	if sess.ProductInterest != "audio" {
		t.Errorf("ProductInterest = %q, want audio preserved over brand mention", sess.ProductInterest)
	}

	// An explicit keyword for another category does replace it.
	s.UpdateProfile(sess, "forget that, I need a new laptop", intent.ProductInquiry)
	if sess.ProductInterest != "laptops" {
		t.Errorf("ProductInterest = %q, want laptops after explicit switch", sess.ProductInterest)
	}
}

func TestUpdateProfile_QualificationScenario(t *testing.T) {
	s := newTestScorer(t)
	sess := newTestSession()

	steps := []struct {
		message string
		in      intent.Intent
		status  models.QualificationStatus
	}{
		{"Hi there", intent.Greeting, models.StatusNotStarted},
		{"I'm looking at laptops", intent.ProductInquiry, models.StatusInProgress},
		{"budget is between $800 and $1,200", intent.Pricing, models.StatusQualified},
		{"need it for school this week", intent.General, models.StatusQualified},
	}
	for i, st := range steps {
		s.UpdateProfile(sess, st.message, st.in)
		if sess.Status != st.status {
			t.Fatalf("step %d (%q): Status = %q, want %q", i, st.message, sess.Status, st.status)
		}
	}
	if sess.SignalCount() != 3 {
		t.Errorf("SignalCount = %d, want 3", sess.SignalCount())
	}
}
