package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/conciergehq/concierge-go/actions"
	"github.com/conciergehq/concierge-go/actions/contextbuild"
)

type runFlags struct {
	domain      string
	targetID    string
	title       string
	subtype     string
	channel     string
	contextJSON string
	confirm     bool
	interval    time.Duration
	maxAttempts int
}

func newRunCmd(root *rootFlags) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run <action>",
		Short: "Execute a catalogue action against a business object",
		Long: `run submits an action run, polls it to completion and prints the
validated result. Pass 'list' as the action to see the catalogue.

The module context is given as a JSON object via --context; identifiers in
it (threadId, customerId, ...) serve as target fallbacks per domain.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "list" {
				printCatalog()
				return nil
			}
			ctx, client, cfg, err := root.setup(cmd.Context())
			if err != nil {
				return err
			}
			if flags.domain == "" {
				return fmt.Errorf("--domain is required")
			}
			domain, ok := contextbuild.ParseDomain(flags.domain)
			if !ok {
				return fmt.Errorf("unknown domain %q", flags.domain)
			}
			var moduleCtx map[string]any
			if flags.contextJSON != "" {
				if err := json.Unmarshal([]byte(flags.contextJSON), &moduleCtx); err != nil {
					return fmt.Errorf("parse --context: %w", err)
				}
			}

			runner := actions.NewRunner(client,
				actions.WithPollInterval(flags.interval),
				actions.WithMaxAttempts(flags.maxAttempts),
			)
			result, err := runner.Run(ctx, actions.ID(args[0]), actions.RunInput{
				TenantID: cfg.TenantID,
				Target: contextbuild.TargetRef{
					Domain:   domain,
					TargetID: flags.targetID,
					Title:    flags.title,
					Subtype:  flags.subtype,
					Channel:  flags.channel,
				},
				ModuleContext: moduleCtx,
				Confirm:       flags.confirm,
			})
			if err != nil {
				return err
			}
			return printRunResult(result)
		},
	}
	cmd.Flags().StringVar(&flags.domain, "domain", "", "Target domain (inbox, customers, documents, ...)")
	cmd.Flags().StringVar(&flags.targetID, "target-id", "", "Identifier of the object the action acts on")
	cmd.Flags().StringVar(&flags.title, "title", "", "Display title of the target")
	cmd.Flags().StringVar(&flags.subtype, "subtype", "", "Target subtype hint")
	cmd.Flags().StringVar(&flags.channel, "channel", "", "Channel the target lives on")
	cmd.Flags().StringVar(&flags.contextJSON, "context", "", "Module context as a JSON object")
	cmd.Flags().BoolVar(&flags.confirm, "confirm", false, "Approve an approval-gated action")
	cmd.Flags().DurationVar(&flags.interval, "poll-interval", time.Second, "Wait between run status polls")
	cmd.Flags().IntVar(&flags.maxAttempts, "max-attempts", 30, "Polling attempt budget before timing out")
	return cmd
}

func printCatalog() {
	defs := actions.Definitions()
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	for _, def := range defs {
		domains := make([]string, len(def.Domains))
		for i, d := range def.Domains {
			domains[i] = string(d)
		}
		gate := ""
		if def.RequiresApproval {
			gate = " (requires --confirm)"
		}
		fmt.Printf("%-22s %s%s\n", def.ID, strings.Join(domains, ","), gate)
	}
}

func printRunResult(result *actions.Result) error {
	switch result.Status {
	case actions.StatusNeedsInput:
		fmt.Println("run needs input")
		if result.RunID != "" {
			fmt.Println("  run:", result.RunID)
		}
		if ni := result.NeedsInput; ni != nil {
			if len(ni.MissingFields) > 0 {
				fmt.Println("  missing:", strings.Join(ni.MissingFields, ", "))
			}
			for _, e := range ni.Errors {
				fmt.Println("  error:", e)
			}
			if ni.ReasonCode != "" {
				fmt.Println("  reason:", ni.ReasonCode)
			}
		}
		return nil
	case actions.StatusCompleted:
		data, err := json.MarshalIndent(result.Output, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	default:
		return fmt.Errorf("unexpected result status %q", result.Status)
	}
}
