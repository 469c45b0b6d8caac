package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/neurobridge-docchat/internal/fakeapi"
	"github.com/yungbote/neurobridge-docchat/internal/observability"
	"github.com/yungbote/neurobridge-docchat/internal/platform/logger"
)

var (
	mockAddr         string
	mockProcessAfter int
	mockJWTSecret    string
)

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Run an in-memory document-chat API for local use",
	Long: `Serves the document-chat HTTP API from memory. Uploaded documents stay
in processing for a few status reads before completing, and assistant
replies echo the question.`,
	Annotations: map[string]string{"offline": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := "production"
		if verbose {
			mode = "development"
		}
		log, err := logger.New(mode)
		if err != nil {
			return err
		}
		defer log.Sync()

		shutdown := observability.Init(cmd.Context(), log, observability.ConfigFromEnv("docchat-mock-api"))
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Warn("tracing shutdown failed", "error", err)
			}
		}()

		srv := fakeapi.New(log, fakeapi.Options{
			ProcessAfterReads: mockProcessAfter,
			JWTSecret:         mockJWTSecret,
		})
		fmt.Fprintln(cmd.ErrOrStderr(), styles.Muted.Render("Serving on "+mockAddr))
		return srv.Run(cmd.Context(), mockAddr)
	},
}

func init() {
	mockServerCmd.Flags().StringVar(&mockAddr, "addr", ":8000", "Listen address")
	mockServerCmd.Flags().IntVar(&mockProcessAfter, "process-after", 2, "Status reads before a document finishes processing")
	mockServerCmd.Flags().StringVar(&mockJWTSecret, "jwt-secret", "", "Require HS256 bearer tokens signed with this secret")
}
