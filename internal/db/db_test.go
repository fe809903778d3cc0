package db

import (
	"strings"
	"testing"

	"github.com/zulandar/switchboard/internal/config"
	"github.com/zulandar/switchboard/internal/models"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		User:     "sb",
		Password: "hunter2",
		Host:     "10.0.0.5",
		Port:     3307,
		Database: "switchboard_prod",
	})

	for _, want := range []string{"sb:hunter2@", "tcp(10.0.0.5:3307)", "/switchboard_prod", "parseTime=true"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("DSN = %q, want to contain %q", dsn, want)
		}
	}
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(config.DatabaseConfig{Driver: "postgres"})
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestAutoMigrate(t *testing.T) {
	db, err := ConnectMemory()
	if err != nil {
		t.Fatalf("ConnectMemory: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	// All tables exist and accept rows.
	if err := db.Create(&models.Session{ID: "sess-1"}).Error; err != nil {
		t.Errorf("create session after migrate: %v", err)
	}
	if err := db.Create(&models.MessageLog{SessionID: "sess-1", Sender: "user", Content: "hi"}).Error; err != nil {
		t.Errorf("create message after migrate: %v", err)
	}
	if err := db.Create(&models.HandoffRecord{SessionID: "sess-1", ToAgent: models.AgentSBDR}).Error; err != nil {
		t.Errorf("create handoff after migrate: %v", err)
	}
}
