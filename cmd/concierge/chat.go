package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/conciergehq/concierge-go/gateway"
	"github.com/conciergehq/concierge-go/gateway/sse"
)

type chatFlags struct {
	session string
	channel string
	stream  bool
	confirm bool
	verbose bool
}

func newChatCmd(root *rootFlags) *cobra.Command {
	flags := &chatFlags{}
	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Send a message to the assistant",
		Long: `chat sends a message and prints the assistant reply.

With --stream the reply is rendered incrementally as the backend produces
it. Without a --session a fresh session identifier is generated, so each
invocation starts a new conversation unless one is supplied.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, client, cfg, err := root.setup(cmd.Context())
			if err != nil {
				return err
			}
			session := flags.session
			if session == "" {
				session = uuid.NewString()
			}
			req := gateway.ChatRequest{
				TenantID:  cfg.TenantID,
				SessionID: session,
				Channel:   flags.channel,
				Message:   strings.Join(args, " "),
				Confirm:   flags.confirm,
			}
			if flags.stream {
				return streamChat(ctx, client, req, flags.verbose)
			}
			resp, err := client.Chat(ctx, req)
			if err != nil {
				return err
			}
			printChatResponse(resp)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.session, "session", "", "Session identifier (default: a new one per invocation)")
	cmd.Flags().StringVar(&flags.channel, "channel", "", "Channel hint forwarded to the backend")
	cmd.Flags().BoolVar(&flags.stream, "stream", false, "Render the reply incrementally")
	cmd.Flags().BoolVar(&flags.confirm, "confirm", false, "Confirm a pending approval in this session")
	cmd.Flags().BoolVar(&flags.verbose, "verbose", false, "Print status and step events while streaming")
	return cmd
}

// streamChat renders the streamed reply on stdout. Delta events append to
// the current line; chunk events rewrite it, since they carry the cumulative
// text. The final event closes the line and prints any follow-up material.
func streamChat(ctx context.Context, client *gateway.Client, req gateway.ChatRequest, verbose bool) error {
	var (
		printed  int
		streamed bool
	)
	h := sse.Handlers{
		OnStatus: func(s sse.Status) {
			if verbose {
				fmt.Printf("-- %s\n", s.Stage)
			}
		},
		OnStepUpdate: func(u sse.StepUpdate) {
			if verbose {
				fmt.Printf("-- step %s: %s\n", u.StepID, u.Status)
			}
		},
		OnDelta: func(d sse.Delta) {
			fmt.Print(d.Text)
			printed += len(d.Text)
			streamed = true
		},
		OnChunk: func(c sse.Chunk) {
			if len(c.CumulativeText) > printed {
				fmt.Print(c.CumulativeText[printed:])
				printed = len(c.CumulativeText)
			}
			streamed = true
		},
		OnFinal: func(f sse.Final) {
			if !streamed {
				fmt.Print(f.Content)
			}
			fmt.Println()
			printFinalExtras(f)
		},
		OnError: func(e sse.ErrorEvent) {
			fmt.Printf("\nbackend error: %s\n", e.Message)
		},
		OnAbort: func() {
			fmt.Println("\n(interrupted)")
		},
	}
	return client.ChatStream(ctx, req, h)
}

func printChatResponse(resp *gateway.ChatResponse) {
	fmt.Println(resp.Content)
	for _, msg := range resp.UIMessages {
		fmt.Printf("[%s] %s\n", msg.Role, msg.Content)
	}
	printActions(resp.Actions)
}

func printFinalExtras(f sse.Final) {
	for _, msg := range f.UIMessages {
		fmt.Printf("[%s] %s\n", msg.Role, msg.Content)
	}
	printActions(f.Actions)
}

func printActions(actions []sse.SuggestedAction) {
	if len(actions) == 0 {
		return
	}
	fmt.Println("\nSuggested actions:")
	for _, a := range actions {
		fmt.Printf("  %-24s %s\n", a.ID, a.Label)
	}
}
