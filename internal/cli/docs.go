package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ArtCenter1/storymaster/internal/store"
)

var docsFlags struct {
	project string
	user    string
	message string
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage versioned story documents",
}

var docsCreateCmd = &cobra.Command{
	Use:   "create <filename> [content-file]",
	Short: "Create a new document (content from file or stdin)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		content, err := readContent(args)
		if err != nil {
			return err
		}
		doc, err := a.docs.Create(docsFlags.project, args[0], content, nil, docsFlags.user)
		if err != nil {
			return err
		}
		cmd.Println(color.GreenString("Created document %s (version %d)", doc.ID, doc.Version))
		return nil
	},
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents in a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		docs, err := a.docs.List(docsFlags.project)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			cmd.Printf("No documents in project %q\n", docsFlags.project)
			return nil
		}
		for _, doc := range docs {
			cmd.Printf("%s  v%-3d  %-24s  %s\n", doc.ID, doc.Version, doc.Filename,
				doc.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var docsShowCmd = &cobra.Command{
	Use:   "show <document-id> [version]",
	Short: "Print document content, current or a specific version",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if len(args) == 2 {
			v, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[1])
			}
			ver, err := a.docs.GetVersion(args[0], v)
			if err != nil {
				return err
			}
			cmd.Print(ver.Content)
			return nil
		}
		doc, err := a.docs.Get(args[0])
		if err != nil {
			return err
		}
		cmd.Print(doc.Content)
		return nil
	},
}

var docsUpdateCmd = &cobra.Command{
	Use:   "update <document-id> [content-file]",
	Short: "Write new content as the next document version",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		content, err := readContent(args)
		if err != nil {
			return err
		}
		doc, err := a.docs.Update(args[0], content, docsFlags.message, docsFlags.user, nil)
		if err != nil {
			return err
		}
		cmd.Println(color.GreenString("Updated document %s to version %d", doc.ID, doc.Version))
		return nil
	},
}

var docsHistoryCmd = &cobra.Command{
	Use:   "history <document-id>",
	Short: "Show the version history of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		versions, err := a.docs.GetVersions(args[0])
		if err != nil {
			return err
		}
		for _, v := range versions {
			cmd.Printf("v%-3d  %s  %-12s  %s\n", v.Version,
				v.CreatedAt.Format("2006-01-02 15:04"), v.CreatedBy, v.Message)
		}
		return nil
	},
}

var docsDiffCmd = &cobra.Command{
	Use:   "diff <document-id> <from-version> <to-version>",
	Short: "Show the positional line diff between two versions",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		from, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[1])
		}
		to, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[2])
		}
		result, err := a.docs.Diff(args[0], from, to)
		if err != nil {
			return err
		}
		printDiff(cmd, result)
		return nil
	},
}

var docsRevertCmd = &cobra.Command{
	Use:   "revert <document-id> <version>",
	Short: "Restore an earlier version's content as a new version",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[1])
		}
		doc, err := a.docs.RevertTo(args[0], v, docsFlags.user)
		if err != nil {
			return err
		}
		cmd.Println(color.GreenString("Reverted %s to version %d content, now at version %d",
			doc.ID, v, doc.Version))
		return nil
	},
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete <document-id>",
	Short: "Delete a document and its version history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		deleted, err := a.docs.Delete(args[0])
		if err != nil {
			return err
		}
		if !deleted {
			return store.ErrDocumentNotFound
		}
		cmd.Println(color.GreenString("Deleted document %s", args[0]))
		return nil
	},
}

func printDiff(cmd *cobra.Command, result *store.DiffResult) {
	for _, ch := range result.Changes {
		switch ch.Type {
		case store.ChangeAdd:
			cmd.Println(color.GreenString("+%d  %s", ch.Line, ch.Content))
		case store.ChangeDelete:
			cmd.Println(color.RedString("-%d  %s", ch.Line, ch.OldContent))
		case store.ChangeModify:
			cmd.Println(color.RedString("-%d  %s", ch.Line, ch.OldContent))
			cmd.Println(color.GreenString("+%d  %s", ch.Line, ch.Content))
		}
	}
	cmd.Printf("%d additions, %d deletions\n", result.Additions, result.Deletions)
}

func readContent(args []string) (string, error) {
	if len(args) == 2 {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func init() {
	docsCmd.PersistentFlags().StringVar(&docsFlags.project, "project", "default", "project ID")
	docsCmd.PersistentFlags().StringVar(&docsFlags.user, "user", "anonymous", "user ID recorded on writes")
	docsUpdateCmd.Flags().StringVarP(&docsFlags.message, "message", "m", "", "version message recorded in history")
	docsCmd.AddCommand(docsCreateCmd)
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsShowCmd)
	docsCmd.AddCommand(docsUpdateCmd)
	docsCmd.AddCommand(docsHistoryCmd)
	docsCmd.AddCommand(docsDiffCmd)
	docsCmd.AddCommand(docsRevertCmd)
	docsCmd.AddCommand(docsDeleteCmd)
}
