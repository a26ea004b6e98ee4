package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conciergehq/concierge-go/gateway"
)

func newThreadsCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threads",
		Short: "Browse conversation threads",
	}
	cmd.AddCommand(newThreadsListCmd(root))
	cmd.AddCommand(newThreadsSearchCmd(root))
	cmd.AddCommand(newThreadsShowCmd(root))
	return cmd
}

func newThreadsListCmd(root *rootFlags) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tenant's threads, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, client, cfg, err := root.setup(cmd.Context())
			if err != nil {
				return err
			}
			threads, err := client.ListThreads(ctx, cfg.TenantID, gateway.ListOptions{Limit: limit, Offset: offset})
			if err != nil {
				return err
			}
			printThreads(threads)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of threads to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of threads to skip")
	return cmd
}

func newThreadsSearchCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search threads by free text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, client, cfg, err := root.setup(cmd.Context())
			if err != nil {
				return err
			}
			threads, err := client.SearchThreads(ctx, cfg.TenantID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			printThreads(threads)
			return nil
		},
	}
}

func newThreadsShowCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <thread-id>",
		Short: "Print the messages of a thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, client, cfg, err := root.setup(cmd.Context())
			if err != nil {
				return err
			}
			messages, err := client.ThreadMessages(ctx, cfg.TenantID, args[0])
			if err != nil {
				return err
			}
			for _, msg := range messages {
				fmt.Printf("%s [%s] %s\n", msg.CreatedAt.Format("2006-01-02 15:04"), msg.Role, msg.Content)
			}
			return nil
		},
	}
}

func printThreads(threads []gateway.Thread) {
	if len(threads) == 0 {
		fmt.Println("no threads")
		return
	}
	for _, th := range threads {
		title := th.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%-28s %s %s\n", th.ID, th.UpdatedAt.Format("2006-01-02 15:04"), title)
	}
}
