package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/scrumsmith/scrumsmith/internal/config"
	"github.com/scrumsmith/scrumsmith/internal/gateway"
	"github.com/scrumsmith/scrumsmith/internal/generate"
	"github.com/scrumsmith/scrumsmith/internal/prompt"
	"github.com/scrumsmith/scrumsmith/internal/ratelimit"
	"github.com/scrumsmith/scrumsmith/internal/stats"
)

func generateCmd() *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:          "generate [transcript-file]",
		Short:        "Generate an Agile documentation package from a transcript",
		Long:         "Generate reads a meeting transcript from a file or stdin and prints the generated documentation package as JSON.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.CredentialConfigured() {
				return fmt.Errorf("%s not configured", cfg.CredentialName())
			}

			transcript, err := readTranscript(args)
			if err != nil {
				return err
			}

			gw, err := gateway.New(cmd.Context(), gateway.Config{
				Provider: cfg.Provider,
				APIKey:   cfg.APIKey(),
				BaseURL:  cfg.BaseURL,
				Timeout:  cfg.Timeout,
			})
			if err != nil {
				return err
			}

			limiter := ratelimit.NewLimiter(cfg.RateQuota, cfg.RateWindow)
			defer limiter.Stop()

			if model == "" {
				model = cfg.Models[0]
			}

			svc := generate.NewService(limiter, prompt.NewBuilder(cfg.Models), gw, &stats.Collector{})
			doc, warnings, err := svc.Generate(cmd.Context(), "cli", transcript, model)
			if err != nil {
				return err
			}
			for _, w := range warnings {
				log.Warn().Msg(w)
			}

			out, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("encode document: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "model to generate with (defaults to the first configured model)")
	return cmd
}

func readTranscript(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read transcript: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read transcript from stdin: %w", err)
	}
	return string(data), nil
}
