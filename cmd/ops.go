package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mechkit/mechkit/pkg/mech"
	"github.com/mechkit/mechkit/pkg/mechkit"
)

var opsCmd = &cobra.Command{
	Use:   "ops [toolkit]",
	Short: "List toolkits and their operations",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runOps,
}

func runOps(_ *cobra.Command, args []string) error {
	cfg, err := mechkit.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	eng, err := mechkit.NewEngine(mechkit.EngineOptions{Config: cfg})
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer func() { _ = eng.Stop() }()

	kits := eng.Toolkits()
	if len(args) == 1 {
		tk, ok := eng.Toolkit(args[0])
		if !ok {
			return fmt.Errorf("unknown toolkit %q", args[0])
		}
		kits = []*mech.Toolkit{tk}
	}

	for _, tk := range kits {
		fmt.Printf("%s (operation name arrives in %q)\n", tk.Name, tk.ArgField)
		for _, d := range tk.Registry.Descriptors() {
			fmt.Printf("  %-42s %s\n", d.Name, d.Description)
		}
		fmt.Println()
	}
	return nil
}
