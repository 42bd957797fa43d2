package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexcodex/pagemend/agents"
	"github.com/lexcodex/pagemend/framework"
	"github.com/lexcodex/pagemend/llm"
	"github.com/lexcodex/pagemend/persistence"
)

var (
	flagModel     string
	flagEndpoint  string
	flagWorkspace string
	flagConfig    string

	globalCfg *agents.GlobalConfig
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pagemend",
		Short:         "Automated web page defect remediation pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flagWorkspace == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				flagWorkspace = wd
			}
			if flagConfig == "" {
				flagConfig = agents.DefaultConfigPath(flagWorkspace)
			}
			cfg, err := agents.LoadGlobalConfig(flagConfig, flagWorkspace)
			if err != nil {
				return err
			}
			if flagModel != "" {
				cfg.Model.Name = flagModel
			}
			if flagEndpoint != "" {
				cfg.Model.Endpoint = flagEndpoint
			}
			globalCfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flagModel, "model", envOrDefault("OLLAMA_MODEL", ""), "Override the configured Ollama model")
	root.PersistentFlags().StringVar(&flagEndpoint, "ollama", envOrDefault("OLLAMA_ENDPOINT", ""), "Override the configured Ollama endpoint")
	root.PersistentFlags().StringVar(&flagWorkspace, "workspace", "", "Workspace directory")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to pagemend config file")

	root.AddCommand(newRunCmd(), newAuditCmd(), newReviewCmd(), newRunsCmd())
	return root
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRunCmd() *cobra.Command {
	var htmlPath, cssPath, jsPath, inputPath, telemetryPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the remediation pipeline on a page bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := buildInput(htmlPath, cssPath, jsPath, inputPath)
			if err != nil {
				return err
			}

			model := llm.NewClient(globalCfg.Model.Endpoint, globalCfg.Model.Name)
			model.SetDebugLogging(globalCfg.Logging.LLM)
			options := &framework.LLMOptions{
				Model:       globalCfg.Model.Name,
				Temperature: globalCfg.Model.Temperature,
				MaxTokens:   globalCfg.Model.MaxTokens,
			}

			fixerAgent := agents.NewBugFixer(model, options)
			if telemetryPath != "" {
				sink, err := framework.NewJSONFileTelemetry(telemetryPath)
				if err != nil {
					return err
				}
				defer sink.Close()
				fixerAgent.SetTelemetry(framework.MultiplexTelemetry{
					Sinks: []framework.Telemetry{framework.LoggerTelemetry{}, sink},
				})
			} else {
				fixerAgent.SetTelemetry(framework.LoggerTelemetry{})
			}

			final, state, err := fixerAgent.Run(cmd.Context(), input)
			if err != nil {
				return err
			}

			store, err := persistence.NewFileRunStore(globalCfg.Runs.Dir)
			if err != nil {
				return err
			}
			record := &persistence.RunRecord{
				ID:     fmt.Sprintf("run-%d", time.Now().UnixNano()),
				State:  state,
				Status: persistence.RunStatusPending,
			}
			if err := store.Save(cmd.Context(), record); err != nil {
				return err
			}

			cmd.Printf("Run %s stored for review.\n", record.ID)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"final_output":        final,
				"fixes":               state.Fixes["fixes"],
				"manual_fix_required": state.Fixes["manual_fix_required"],
			})
		},
	}
	cmd.Flags().StringVar(&htmlPath, "html", "", "Path to the page HTML")
	cmd.Flags().StringVar(&cssPath, "css", "", "Path to the page CSS")
	cmd.Flags().StringVar(&jsPath, "js", "", "Path to the page JavaScript")
	cmd.Flags().StringVar(&inputPath, "input", "", "JSON file with a full input payload (overrides --html/--css/--js)")
	cmd.Flags().StringVar(&telemetryPath, "telemetry-log", "", "Append NDJSON telemetry events to this file")
	return cmd
}

func buildInput(htmlPath, cssPath, jsPath, inputPath string) (map[string]any, error) {
	if inputPath != "" {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, err
		}
		var input map[string]any
		if err := json.Unmarshal(data, &input); err != nil {
			return nil, err
		}
		return input, nil
	}
	input := map[string]any{}
	for key, path := range map[string]string{"html": htmlPath, "css": cssPath, "js": jsPath} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		input[key] = string(data)
	}
	if len(input) == 0 {
		return nil, errors.New("provide --input or at least one of --html/--css/--js")
	}
	return input, nil
}

func newAuditCmd() *cobra.Command {
	var status, approver, changeID string
	auditCmd := &cobra.Command{Use: "audit", Short: "Inspect the approval audit log"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List audit log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closer, err := openAuditLogger()
			if err != nil {
				return err
			}
			defer closer()
			entries, err := logger.Query(cmd.Context(), framework.AuditQuery{
				Status:   status,
				Approver: approver,
				ChangeID: changeID,
			})
			if err != nil {
				return err
			}
			for _, entry := range entries {
				cmd.Printf("%s\t%s\t%s\t%s\t%s\n",
					formatTime(entry.Timestamp),
					orDash(entry.ChangeID),
					orDash(entry.Status),
					orDash(entry.Approver),
					orDash(entry.Comments))
			}
			return nil
		},
	}
	listCmd.Flags().StringVar(&status, "status", "", "Filter by status")
	listCmd.Flags().StringVar(&approver, "approver", "", "Filter by approver")
	listCmd.Flags().StringVar(&changeID, "change", "", "Filter by change ID")

	auditCmd.AddCommand(listCmd)
	return auditCmd
}

func newRunsCmd() *cobra.Command {
	runsCmd := &cobra.Command{Use: "runs", Short: "Inspect stored pipeline runs"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := persistence.NewFileRunStore(globalCfg.Runs.Dir)
			if err != nil {
				return err
			}
			records, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, record := range records {
				cmd.Printf("%s\t%s\t%s\n", record.ID, record.Status, record.UpdatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a stored run",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("run id required")
			}
			store, err := persistence.NewFileRunStore(globalCfg.Runs.Dir)
			if err != nil {
				return err
			}
			record, ok, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("run %s not found", args[0])
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(record)
		},
	}

	runsCmd.AddCommand(listCmd, showCmd)
	return runsCmd
}

func newReviewCmd() *cobra.Command {
	var approverName string
	cmd := &cobra.Command{
		Use:   "review <run-id>",
		Short: "Review a stored run and record the approval decision",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("run id required")
			}
			store, err := persistence.NewFileRunStore(globalCfg.Runs.Dir)
			if err != nil {
				return err
			}
			record, ok, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("run %s not found", args[0])
			}

			decision, err := runReviewUI(record)
			if err != nil {
				return err
			}
			if decision == "" {
				cmd.Println("Review closed without a decision.")
				return nil
			}

			logger, closer, err := openAuditLogger()
			if err != nil {
				return err
			}
			defer closer()
			entry := agents.NormalizeAuditEntry(map[string]any{
				"change_id": record.ID,
				"status":    decision,
				"approver":  approverName,
				"comments":  fmt.Sprintf("Reviewed via pagemend review on %s", time.Now().UTC().Format(time.RFC3339)),
			})
			if err := logger.Log(cmd.Context(), entry); err != nil {
				return err
			}

			record.Status = persistence.RunStatus(decision)
			if err := store.Save(cmd.Context(), record); err != nil {
				return err
			}
			cmd.Printf("Run %s %s by %s.\n", record.ID, decision, approverName)
			return nil
		},
	}
	cmd.Flags().StringVar(&approverName, "approver", envOrDefault("USER", "reviewer"), "Name recorded in the audit log")
	return cmd
}

// openAuditLogger picks the configured backend. SQLite is the default so the
// log survives restarts; "memory" exists for throwaway environments.
func openAuditLogger() (framework.AuditLogger, func(), error) {
	if strings.EqualFold(globalCfg.Audit.Backend, "memory") {
		return framework.NewInMemoryAuditLogger(globalCfg.Audit.Limit), func() {}, nil
	}
	path := globalCfg.Audit.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	store, err := persistence.NewSQLiteAuditLog(path)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}

func orDash(value *string) string {
	if value == nil || *value == "" {
		return "-"
	}
	return *value
}
