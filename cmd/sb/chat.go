package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zulandar/switchboard/internal/db"
	"github.com/zulandar/switchboard/internal/models"
	"github.com/zulandar/switchboard/internal/orchestrator"
)

func newChatCmd() *cobra.Command {
	var (
		configPath string
		sessionID  string
		name       string
		tier       string
		customerID string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long:  "Runs the full pipeline against an in-memory database, useful for trying the agents locally.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, configPath, sessionID, name, tier, customerID)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Switchboard config file")
	cmd.Flags().StringVar(&sessionID, "session", "local-chat", "session id to use")
	cmd.Flags().StringVar(&name, "name", "", "customer name")
	cmd.Flags().StringVar(&tier, "tier", "prospect", "customer tier (prospect, customer, vip)")
	cmd.Flags().StringVar(&customerID, "customer", "", "storefront customer id for order lookups")
	return cmd
}

func runChat(cmd *cobra.Command, configPath, sessionID, name, tier, customerID string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if !models.ValidTier(models.CustomerTier(tier)) {
		return fmt.Errorf("unknown tier %q (want prospect, customer, or vip)", tier)
	}

	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = promptForAPIKey(out)
	}

	gormDB, err := db.ConnectMemory()
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	orch, err := buildOrchestrator(cfg, gormDB)
	if err != nil {
		return err
	}

	if cfg.OpenAI.APIKey == "" {
		fmt.Fprintln(out, "No OpenAI key set; replies use knowledge-base drafts.")
	}
	fmt.Fprintln(out, "Chat started. Type 'exit' to quit.")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			break
		}

		res, err := orch.ProcessMessage(cmd.Context(), orchestrator.Request{
			SessionID:    sessionID,
			Message:      line,
			CustomerName: name,
			CustomerTier: models.CustomerTier(tier),
			CustomerID:   customerID,
		})
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}

		fmt.Fprintf(out, "[%s] %s\n", res.Agent, res.Response)
		fmt.Fprintf(out, "     (intent=%s confidence=%.1f status=%s", res.Intent, res.Confidence, res.Status)
		if res.HandoffOccurred {
			fmt.Fprint(out, " handoff")
		}
		if res.Escalated {
			fmt.Fprint(out, " escalated")
		}
		fmt.Fprintln(out, ")")
	}
	return scanner.Err()
}

// promptForAPIKey asks for an OpenAI key without echoing it. Returns empty
// when stdin is not a terminal or the user skips the prompt.
func promptForAPIKey(out io.Writer) string {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return ""
	}

	fmt.Fprint(out, "OpenAI API key (enter to skip): ")
	key, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(key))
}
