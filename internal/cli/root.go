// Package cli implements the storymaster command line interface.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/ArtCenter1/storymaster/internal/cli.version=1.2.3"
	version = "0.4.0"
	logo    = "\n" +
		"      _                                         _\n" +
		"  ___| |_ ___  _ __ _   _ _ __ ___   __ _ ___| |_ ___ _ __\n" +
		" / __| __/ _ \\| '__| | | | '_ ` _ \\ / _` / __| __/ _ \\ '__|\n" +
		" \\__ \\ || (_) | |  | |_| | | | | | | (_| \\__ \\ ||  __/ |\n" +
		" |___/\\__\\___/|_|   \\__, |_| |_| |_|\\__,_|___/\\__\\___|_|\n" +
		"                    |___/\n"
)

var rootCmd = &cobra.Command{
	Use:   "storymaster",
	Short: "storymaster - collaborative story drafting with agent personas",
	Long:  color.CyanString(logo) + "\nDraft stories with scripted agent personas backed by LLM providers.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the storymaster version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("storymaster %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(statusCmd)
}
