package cli

import (
	"fmt"
	"log/slog"

	"github.com/me/pricedesk/internal/config"
	"github.com/me/pricedesk/internal/logging"
	"github.com/me/pricedesk/internal/notify"
	"github.com/me/pricedesk/internal/pricing"
	"github.com/me/pricedesk/internal/resource"
	"github.com/me/pricedesk/internal/session"
	"github.com/spf13/cobra"
)

var (
	flagConfig      string
	flagServer      string
	flagCredentials string
	flagDebug       bool
	flagLogLevel    string
	flagLogFormat   string

	logger   *slog.Logger
	tokens   *session.FileStore
	apiSess  *session.Session
	client   *pricing.Client
	notifier notify.Notifier
	registry *resource.Registry
)

// NewRootCmd creates the root cobra command for the pricedesk CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pricedesk",
		Short: "pricedesk: admin console for the pricing service",
		Long:  "pricedesk lists, filters, pages and edits pricing resources (airtime, cable, crypto, data, gift cards) and settings.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultCLIConfig()
			if err := config.LoadFile(flagConfig, &cfg); err != nil {
				return err
			}
			cfg.ApplyEnv()
			if cmd.Flags().Changed("server") {
				cfg.Server = flagServer
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = flagLogLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.LogFormat = flagLogFormat
			}
			if flagDebug {
				cfg.LogLevel = "debug"
			}
			logger = logging.NewLoggerWithWriter(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, cmd.ErrOrStderr())

			if flagCredentials != "" {
				tokens = &session.FileStore{Path: flagCredentials}
			} else {
				fs, err := session.DefaultFileStore()
				if err != nil {
					return err
				}
				tokens = fs
			}

			sess, err := session.New(tokens)
			if err != nil {
				return fmt.Errorf("load credentials: %w", err)
			}
			sess.OnInvalidate(func() {
				fmt.Fprintln(cmd.ErrOrStderr(), "session expired, run pricedesk login")
			})
			apiSess = sess

			client = pricing.NewClient(cfg.Server, sess, logger)
			notifier = notify.NewWriter(cmd.ErrOrStderr())

			reg, err := resource.NewRegistry(cfg.Paging)
			if err != nil {
				return err
			}
			registry = reg
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&flagServer, "server", config.DefaultCLIConfig().Server, "Pricing API base URL (or "+config.EnvAPIBaseURL+" env)")
	root.PersistentFlags().StringVar(&flagCredentials, "credentials", "", "Credentials file (default ~/.pricedesk/credentials.json)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newListCmd(),
		newCreateCmd(),
		newUpdateCmd(),
		newDeleteCmd(),
		newSettingsCmd(),
		newExportCmd(),
	)

	return root
}

// lookupSchema resolves a resource type argument.
func lookupSchema(name string) (resource.Schema, error) {
	schema, ok := registry.Lookup(name)
	if !ok {
		return resource.Schema{}, fmt.Errorf("unknown resource %q (known: %v)", name, registry.Names())
	}
	return schema, nil
}

// requireLogin fails early when no token is stored.
func requireLogin() error {
	if apiSess.Token() == "" {
		return fmt.Errorf("not logged in: run pricedesk login")
	}
	return nil
}
