package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zulandar/switchboard/internal/models"
	"github.com/zulandar/switchboard/internal/orchestrator"
)

// chatRequest is the POST /chat payload.
type chatRequest struct {
	SessionID    string `json:"sessionId"`
	Message      string `json:"message"`
	CustomerName string `json:"customerName"`
	CustomerTier string `json:"customerTier"`
	CustomerID   string `json:"customerId"`
}

// chatResponse is the POST /chat reply.
type chatResponse struct {
	SessionID       string  `json:"sessionId"`
	Agent           string  `json:"agent"`
	Response        string  `json:"response"`
	Intent          string  `json:"intent"`
	Confidence      float64 `json:"confidence"`
	Status          string  `json:"qualificationStatus"`
	HandoffOccurred bool    `json:"handoffOccurred"`
	Escalated       bool    `json:"escalated"`
}

func handleHealthz() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func handleChat(orch *orchestrator.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req chatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
			return
		}

		result, err := orch.ProcessMessage(c.Request.Context(), orchestrator.Request{
			SessionID:    req.SessionID,
			Message:      req.Message,
			CustomerName: req.CustomerName,
			CustomerTier: models.CustomerTier(req.CustomerTier),
			CustomerID:   req.CustomerID,
		})
		switch {
		case errors.Is(err, orchestrator.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case errors.Is(err, orchestrator.ErrSessionBusy):
			c.Header("Retry-After", "1")
			c.JSON(http.StatusConflict, gin.H{"error": "session busy, retry shortly"})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, chatResponse{
			SessionID:       result.SessionID,
			Agent:           string(result.Agent),
			Response:        result.Response,
			Intent:          string(result.Intent),
			Confidence:      result.Confidence,
			Status:          string(result.Status),
			HandoffOccurred: result.HandoffOccurred,
			Escalated:       result.Escalated,
		})
	}
}

func handleSessionList(orch *orchestrator.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions, err := orch.ListSessions()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
	}
}

func handleSessionDetail(orch *orchestrator.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, log, err := orch.Summary(c.Param("id"))
		if errors.Is(err, orchestrator.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		type logEntry struct {
			Sender    string `json:"sender"`
			Content   string `json:"content"`
			Intent    string `json:"intent,omitempty"`
			AgentType string `json:"agentType,omitempty"`
		}
		entries := make([]logEntry, 0, len(log))
		for _, e := range log {
			entries = append(entries, logEntry{
				Sender:    e.Sender,
				Content:   e.Content,
				Intent:    e.Intent,
				AgentType: string(e.AgentType),
			})
		}

		c.JSON(http.StatusOK, gin.H{"session": summary, "conversation": entries})
	}
}

// handleMetrics renders pipeline counts in the plain text exposition format.
func handleMetrics(orch *orchestrator.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := orch.CollectMetrics()
		if err != nil {
			c.String(http.StatusInternalServerError, "internal error")
			return
		}

		var b strings.Builder
		write := func(name string, value int64) {
			fmt.Fprintf(&b, "switchboard_%s %d\n", name, value)
		}
		write("sessions_total", m.TotalSessions)
		write("sessions_not_started", m.NotStarted)
		write("sessions_in_progress", m.InProgress)
		write("sessions_qualified", m.Qualified)
		write("sessions_unqualified", m.Unqualified)
		write("sessions_escalated", m.Escalated)
		write("handoffs_total", m.Handoffs)
		write("messages_total", m.Messages)

		c.String(http.StatusOK, b.String())
	}
}
