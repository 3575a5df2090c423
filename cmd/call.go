package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mechkit/mechkit/pkg/mech"
	"github.com/mechkit/mechkit/pkg/mechkit"
)

var (
	callToolkit string
	callOp      string
	callArgs    string
)

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Dispatch one operation and print the response as JSON",
	RunE:  runCall,
}

func init() {
	callCmd.Flags().StringVarP(&callToolkit, "toolkit", "t", "", "Toolkit to dispatch to")
	callCmd.Flags().StringVarP(&callOp, "op", "o", "", "Operation name")
	callCmd.Flags().StringVarP(&callArgs, "args", "a", "", "Operation arguments as a JSON object")
	_ = callCmd.MarkFlagRequired("toolkit")
}

// responseEnvelope is the printable subset of a dispatch response. The
// prompt pointer survives marshalling, keeping the distinction between
// no prompt and an empty one.
type responseEnvelope struct {
	Text        string         `json:"text,omitempty"`
	Prompt      *string        `json:"prompt,omitempty"`
	Transaction map[string]any `json:"transaction,omitempty"`
	Cost        map[string]any `json:"cost,omitempty"`
}

func envelopeFor(resp *mech.Response) responseEnvelope {
	return responseEnvelope{
		Text:        resp.Text,
		Prompt:      resp.Prompt,
		Transaction: resp.Transaction,
		Cost:        resp.Cost,
	}
}

func runCall(_ *cobra.Command, _ []string) error {
	cfg, err := mechkit.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	eng, err := mechkit.NewEngine(mechkit.EngineOptions{Config: cfg})
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer func() { _ = eng.Stop() }()

	args := mech.Args{}
	if callArgs != "" {
		if err := json.Unmarshal([]byte(callArgs), &args); err != nil {
			return fmt.Errorf("parse --args: %w", err)
		}
	}
	if callOp != "" {
		tk, ok := eng.Toolkit(callToolkit)
		if !ok {
			return fmt.Errorf("unknown toolkit %q", callToolkit)
		}
		args[tk.ArgField] = callOp
	}

	resp, err := eng.Dispatch(context.Background(), callToolkit, args)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(envelopeFor(resp))
}
