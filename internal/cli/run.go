package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ArtCenter1/storymaster/internal/provider"
)

var runFlags struct {
	action   string
	inputs   []string
	docID    string
	save     bool
	user     string
	project  string
	provider string
	priority string
	model    string
}

var runCmd = &cobra.Command{
	Use:   "run <agent-id>",
	Short: "Execute an agent action against the configured providers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		inputs, err := parseInputs(runFlags.inputs)
		if err != nil {
			return err
		}
		if runFlags.user != "" {
			inputs["userId"] = runFlags.user
		}
		if runFlags.project != "" {
			inputs["projectId"] = runFlags.project
		}

		var docContent string
		if runFlags.docID != "" {
			doc, err := a.docs.Get(runFlags.docID)
			if err != nil {
				return err
			}
			docContent = doc.Content
			inputs["storyFileId"] = doc.ID
		}

		opts := provider.Options{
			MaxTokens:         a.cfg.Model.MaxTokens,
			Temperature:       a.cfg.Model.Temperature,
			Model:             runFlags.model,
			CostPriority:      runFlags.priority,
			PreferredProvider: runFlags.provider,
		}

		sess, err := a.orch.ExecuteAgentAction(cmd.Context(), args[0], runFlags.action, inputs, docContent, opts)
		if err != nil {
			a.monitor.RecordError()
			return err
		}

		a.monitor.Record(sess)
		if err := a.sessions.Save(sess); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		if a.publisher != nil {
			if err := a.publisher.Publish(cmd.Context(), sess); err != nil {
				slog.Warn("Failed to publish session event", "error", err)
			}
		}

		if runFlags.save && runFlags.docID != "" {
			message := fmt.Sprintf("%s: %s", sess.AgentID, runFlags.action)
			if _, err := a.docs.Update(runFlags.docID, sess.Response(), message, sess.UserID, nil); err != nil {
				return fmt.Errorf("save document: %w", err)
			}
			cmd.Println(color.GreenString("Saved response to document %s", runFlags.docID))
		}

		cmd.Println(sess.Response())
		cmd.Println(color.HiBlackString("session %s | %s/%s | %d tokens | $%.4f | %dms",
			sess.ID, sess.Usage.Provider, sess.Usage.Model,
			sess.Usage.Tokens, sess.Usage.Cost, sess.Usage.LatencyMS))
		return nil
	},
}

// parseInputs turns repeated key=value flags into an input map.
func parseInputs(pairs []string) (map[string]string, error) {
	inputs := map[string]string{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid input %q, expected key=value", pair)
		}
		inputs[key] = value
	}
	return inputs, nil
}

func init() {
	runCmd.Flags().StringVarP(&runFlags.action, "action", "a", "draft", "agent action to execute")
	runCmd.Flags().StringArrayVarP(&runFlags.inputs, "input", "i", nil, "action input as key=value (repeatable)")
	runCmd.Flags().StringVar(&runFlags.docID, "doc", "", "document ID to pass as current document")
	runCmd.Flags().BoolVar(&runFlags.save, "save", false, "write the response back to --doc as a new version")
	runCmd.Flags().StringVar(&runFlags.user, "user", "", "user ID recorded on the session")
	runCmd.Flags().StringVar(&runFlags.project, "project", "", "project ID recorded on the session")
	runCmd.Flags().StringVar(&runFlags.provider, "provider", "", "provider to try first (openai, anthropic, gemini)")
	runCmd.Flags().StringVar(&runFlags.priority, "priority", "", "cost priority: fast, balanced or quality")
	runCmd.Flags().StringVar(&runFlags.model, "model", "", "explicit model override")
}
