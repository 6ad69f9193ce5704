package cli

import (
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List and inspect agent definitions",
}

var agentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded agent definitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		defs := a.registry.Agents()
		if len(defs) == 0 {
			cmd.Printf("No agents found in %s\n", a.cfg.Paths.AgentsDir)
			return nil
		}
		cmd.Println(color.CyanString("Agents (%d):", len(defs)))
		for _, def := range defs {
			cmd.Printf("  %-16s %s\n", def.ID, def.Title)
		}
		return nil
	},
}

var agentsShowCmd = &cobra.Command{
	Use:   "show <agent-id>",
	Short: "Show one agent definition in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		def, err := a.registry.Get(args[0])
		if err != nil {
			return err
		}

		cmd.Println(color.CyanString("%s (%s)", def.Name, def.ID))
		cmd.Printf("Title: %s\n", def.Title)
		cmd.Printf("Role:  %s\n", def.Persona.Role)
		cmd.Printf("Style: %s\n", def.Persona.Style)
		if len(def.Persona.CorePrinciples) > 0 {
			cmd.Println("Principles:")
			for _, p := range def.Persona.CorePrinciples {
				cmd.Printf("  - %s\n", p)
			}
		}
		if len(def.Commands) > 0 {
			cmd.Println("Commands:")
			names := make([]string, 0, len(def.Commands))
			for name := range def.Commands {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				cmd.Printf("  %-12s %s\n", name, def.Commands[name])
			}
		}
		if missing := a.resources.Missing(def); len(missing) > 0 {
			cmd.Println(color.YellowString("Missing resources:"))
			for _, m := range missing {
				cmd.Printf("  - %s\n", m)
			}
		}
		return nil
	},
}

func init() {
	agentsCmd.AddCommand(agentsListCmd)
	agentsCmd.AddCommand(agentsShowCmd)
}
