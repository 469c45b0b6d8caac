package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/neurobridge-docchat/internal/app"
	"github.com/yungbote/neurobridge-docchat/internal/config"
	"github.com/yungbote/neurobridge-docchat/internal/platform/apierr"
	"github.com/yungbote/neurobridge-docchat/internal/platform/shutdown"
)

var (
	// Global flags
	outputFormat string
	verbose      bool
	baseURL      string
	token        string

	// Set by PersistentPreRunE for commands that talk to the API.
	docchat *app.App
)

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with your documents from the terminal",
	Long: `docchat talks to a document-chat API: upload documents, watch them
get processed, and ask questions about them in a conversation.

Configuration is read from ~/.config/docchat/config.yaml (or $DOCCHAT_CONFIG)
and DOCCHAT_* environment variables; flags override both.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch outputFormat {
		case "text", "json", "yaml":
		default:
			return fmt.Errorf("unknown --output %q (want text, json or yaml)", outputFormat)
		}
		if cmd.Annotations["offline"] == "true" {
			return nil
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := app.New(cfg, app.WithSessionExpired(func() {
			fmt.Fprintln(os.Stderr, styles.Error.Render("Your session has expired. Set a new token with --token or DOCCHAT_API_TOKEN."))
		}))
		if err != nil {
			return err
		}
		docchat = a
		return a.Start(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if docchat != nil {
			docchat.Close()
		}
	},
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if verbose {
		cfg.Log.Mode = "development"
	}
	if strings.TrimSpace(baseURL) != "" {
		cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
	if strings.TrimSpace(token) != "" {
		cfg.API.Token = strings.TrimSpace(token)
	}
	return cfg, cfg.Validate()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "API base URL (overrides api.base_url)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token (overrides api.token)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(conversationsCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(mockServerCmd)
}

func main() {
	ctx, stop := shutdown.NotifyContext(context.Background(), nil)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.Error.Render(errorLine(err)))
		os.Exit(1)
	}
}

// errorLine prefers the user-facing sentence for classified failures.
func errorLine(err error) string {
	var e *apierr.Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if verbose {
		return apierr.UserMessage(err) + " (" + err.Error() + ")"
	}
	return apierr.UserMessage(err)
}
