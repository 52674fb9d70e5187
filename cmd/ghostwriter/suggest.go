package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"ghostwriter/internal/domain/model"
	"ghostwriter/internal/infra/adapters/llm"
	"ghostwriter/internal/infra/cache"
	"ghostwriter/internal/infra/tokens"
	"ghostwriter/internal/usecase"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	providerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	degradedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")).
			Bold(true)

	numberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

type suggestOptions struct {
	tone    string
	context []string
}

func newSuggestCmd(root *rootOptions) *cobra.Command {
	opts := &suggestOptions{}
	cmd := &cobra.Command{
		Use:   "suggest [message]",
		Short: "Generate reply suggestions for one message without starting the server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runSuggest(ctx, root, opts, strings.Join(args, " "), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVarP(&opts.tone, "tone", "t", model.DefaultTone, "reply tone: "+strings.Join(model.Tones(), ", "))
	cmd.Flags().StringArrayVarP(&opts.context, "context", "c", nil, "earlier conversation message, oldest first (repeatable)")
	return cmd
}

func runSuggest(ctx context.Context, root *rootOptions, opts *suggestOptions, message string, out, logs io.Writer) error {
	cfg, logger, err := loadConfig(root, logs)
	if err != nil {
		return err
	}
	providers, err := llm.Build(ctx, cfg.LLM, logger)
	if err != nil {
		return err
	}
	orch := usecase.NewFallbackOrchestrator(providers, usecase.OrchestratorOptions{
		AttemptTimeout:    cfg.LLM.AttemptTimeout,
		GenerationTimeout: cfg.LLM.GenerationTimeout,
		Tokens:            tokens.NewEstimator(tokenEncoding, logger),
	}, logger)

	// no usage recording and a throwaway cache: nothing outlives the command
	uc := usecase.NewSuggestionUseCase(cache.NewMemoryCache(0, logger), orch, nil, nil, cfg.Cache.TTL, logger, cfg.Runtime.Dev)
	res, err := uc.GenerateSuggestions(ctx, "", model.SuggestionRequest{
		Message:        message,
		Tone:           opts.tone,
		RecentMessages: opts.context,
	})
	if err != nil {
		return err
	}
	printSuggestions(out, res)
	return nil
}

func printSuggestions(out io.Writer, res *model.SuggestionResult) {
	fmt.Fprintln(out, headerStyle.Render("Suggestions")+" "+providerStyle.Render("via "+res.Provider))
	if res.Degraded {
		fmt.Fprintln(out, degradedStyle.Render("all providers failed; showing canned replies"))
	}
	for i, s := range res.Suggestions {
		fmt.Fprintf(out, "%s %s\n", numberStyle.Render(fmt.Sprintf("%d.", i+1)), s)
	}
	if res.TokensUsed > 0 {
		fmt.Fprintln(out, providerStyle.Render(fmt.Sprintf("~%d tokens", res.TokensUsed)))
	}
}
