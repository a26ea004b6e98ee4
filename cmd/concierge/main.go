// Command concierge is a terminal front-end for the Concierge gateway. It
// sends chat messages, drives streamed replies, executes catalogue actions
// and browses conversation threads.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"goa.design/clue/log"

	"github.com/conciergehq/concierge-go/gateway"
)

// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	configPath string
	baseURL    string
	mode       string
	token      string
	tenant     string
	debug      bool
}

func main() {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "concierge",
		Short: "Concierge gateway command line client",
		Long: `concierge talks to a Concierge gateway backend.

Use 'chat' to converse with the assistant, 'run' to execute a catalogue
action against a business object, and 'threads' to browse conversations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default $HOME/.concierge.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.baseURL, "base-url", "", "Gateway base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flags.mode, "mode", "", "Transport mode: direct or proxied (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flags.token, "token", "", "Bearer token (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flags.tenant, "tenant", "", "Tenant identifier (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newChatCmd(flags))
	rootCmd.AddCommand(newRunCmd(flags))
	rootCmd.AddCommand(newThreadsCmd(flags))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup loads the config, applies flag overrides and constructs the gateway
// client along with a logging context.
func (f *rootFlags) setup(ctx context.Context) (context.Context, *gateway.Client, *Config, error) {
	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx = log.Context(ctx, log.WithFormat(format))
	if f.debug {
		ctx = log.Context(ctx, log.WithDebug())
		log.Debugf(ctx, "debug logs enabled")
	}

	cfg, err := LoadConfig(f.configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if f.baseURL != "" {
		cfg.BaseURL = f.baseURL
	}
	if f.mode != "" {
		cfg.Mode = f.mode
	}
	if f.token != "" {
		cfg.Token = f.token
	}
	if f.tenant != "" {
		cfg.TenantID = f.tenant
	}
	if cfg.BaseURL == "" && cfg.Mode != string(gateway.ModeProxied) {
		return nil, nil, nil, fmt.Errorf("no gateway base URL: set --base-url or baseURL in the config file")
	}
	if cfg.TenantID == "" {
		return nil, nil, nil, fmt.Errorf("no tenant: set --tenant or tenantId in the config file")
	}

	var opts []gateway.Option
	if cfg.Token != "" {
		opts = append(opts, gateway.WithTokenProvider(gateway.StaticToken(cfg.Token)))
	}
	return ctx, gateway.New(cfg.Router(), opts...), cfg, nil
}
