package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zulandar/switchboard/internal/agents"
	"github.com/zulandar/switchboard/internal/config"
	"github.com/zulandar/switchboard/internal/knowledge"
	"github.com/zulandar/switchboard/internal/models"
	"github.com/zulandar/switchboard/internal/orchestrator"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Session{}, &models.MessageLog{}, &models.HandoffRecord{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	store := knowledge.Default()
	orch, err := orchestrator.New(orchestrator.Opts{
		DB:    db,
		Store: store,
		Config: config.QualificationConfig{
			EngagementThreshold: 3,
			EngagementCeiling:   20,
			MaxMessages:         15,
			MinSignals:          2,
			Lookback:            10,
		},
		Registry: agents.NewRegistry(store,
			agents.NewSBDR(store),
			agents.NewAccountManager(store, nil),
			agents.NewCustomerSuccess(store, 20)),
	})
	if err != nil {
		t.Fatalf("orchestrator.New: %v", err)
	}
	return NewRouter(orch)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestChat(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/chat",
		`{"sessionId":"s1","message":"Hi, I'm looking for a laptop for business"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["intent"] != "product_inquiry" {
		t.Errorf("intent = %v, want product_inquiry", resp["intent"])
	}
	if resp["qualificationStatus"] != "in_progress" {
		t.Errorf("qualificationStatus = %v, want in_progress", resp["qualificationStatus"])
	}
	if resp["agent"] != "sbdr" {
		t.Errorf("agent = %v, want sbdr", resp["agent"])
	}
	if resp["response"] == "" {
		t.Error("response is empty")
	}
}

func TestChat_MissingSessionID(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/chat", `{"message":"hello"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestChat_MalformedBody(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/chat", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSessionList(t *testing.T) {
	router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/chat", `{"sessionId":"s1","message":"hello"}`)
	doJSON(t, router, http.MethodPost, "/chat", `{"sessionId":"s2","message":"hi there"}`)

	rec := doJSON(t, router, http.MethodGet, "/sessions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Sessions []map[string]any `json:"sessions"`
		Count    int              `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 || len(resp.Sessions) != 2 {
		t.Errorf("count = %d, sessions = %d, want 2 each", resp.Count, len(resp.Sessions))
	}
}

func TestSessionDetail(t *testing.T) {
	router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/chat", `{"sessionId":"s1","message":"I need a laptop"}`)

	rec := doJSON(t, router, http.MethodGet, "/sessions/s1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Session      map[string]any   `json:"session"`
		Conversation []map[string]any `json:"conversation"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Session["sessionId"] != "s1" {
		t.Errorf("sessionId = %v, want s1", resp.Session["sessionId"])
	}
	// One inbound message plus one agent reply.
	if len(resp.Conversation) != 2 {
		t.Errorf("conversation entries = %d, want 2", len(resp.Conversation))
	}
}

func TestSessionDetail_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/sessions/ghost", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router := newTestRouter(t)

	doJSON(t, router, http.MethodPost, "/chat", `{"sessionId":"s1","message":"hello"}`)

	rec := doJSON(t, router, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "switchboard_sessions_total 1") {
		t.Errorf("metrics missing session count: %q", body)
	}
	if !strings.Contains(body, "switchboard_messages_total 1") {
		t.Errorf("metrics missing message count: %q", body)
	}
}

func TestStart_NilOrchestrator(t *testing.T) {
	err := Start(context.Background(), StartOpts{})
	if err == nil {
		t.Fatal("expected error for nil orchestrator")
	}
	if !strings.Contains(err.Error(), "orchestrator is required") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "orchestrator is required")
	}
}
