package cli

import (
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ArtCenter1/storymaster/internal/usage"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show rolling usage metrics and system health",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.loadHistory(); err != nil {
			return err
		}

		metrics := a.monitor.GlobalMetrics()
		health := a.monitor.SystemHealth()

		cmd.Println(color.CyanString("storymaster status"))
		cmd.Printf("Providers: %s\n", strings.Join(a.gateway.ProviderNames(), ", "))
		cmd.Printf("Agents:    %d loaded from %s\n", a.registry.Len(), a.cfg.Paths.AgentsDir)
		cmd.Println()

		cmd.Println("Last 24h:")
		cmd.Printf("  Sessions:     %d\n", metrics.WindowSessions)
		cmd.Printf("  Tokens:       %d\n", metrics.TotalTokens)
		cmd.Printf("  Cost:         $%.4f\n", metrics.TotalCost)
		cmd.Printf("  Active users: %d\n", metrics.ActiveUsers)
		cmd.Printf("  Avg latency:  %.0fms (p95 %dms, p99 %dms)\n",
			metrics.AvgLatencyMS, metrics.P95LatencyMS, metrics.P99LatencyMS)
		cmd.Printf("  Error rate:   %.1f%%\n", metrics.ErrorRate)
		if len(metrics.TopAgents) > 0 {
			cmd.Println("  Top agents:")
			for _, agent := range metrics.TopAgents {
				cmd.Printf("    %-16s %d\n", agent.AgentID, agent.Count)
			}
		}
		cmd.Println()

		cmd.Printf("Health: %s\n", colorStatus(health.Status))
		for _, alert := range health.Alerts {
			cmd.Printf("  ! %s\n", alert)
		}

		if a.notifier != nil {
			if err := a.notifier.NotifyHealth(cmd.Context(), health); err != nil {
				slog.Warn("Failed to send health notification", "error", err)
			}
		}
		return nil
	},
}

func colorStatus(status string) string {
	switch status {
	case usage.StatusHealthy:
		return color.GreenString(status)
	case usage.StatusWarning:
		return color.YellowString(status)
	default:
		return color.RedString(status)
	}
}
