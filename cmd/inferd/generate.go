package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"inferd/internal/service"
	"inferd/pkg/types"
)

func newGenerateCmd(a *app) *cobra.Command {
	var modelID string
	var maxTokens int
	var temperature float32
	cmd := &cobra.Command{
		Use:     "generate <prompt>",
		Short:   "Run a one-shot generation against a local model",
		Example: "  inferd generate \"Summarize the maintenance log\" --model llama3",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := modelID
			if id == "" {
				id = a.cfg.DefaultModel
			}
			if id == "" {
				return fmt.Errorf("no model selected: pass --model or set default_model")
			}

			svc, err := service.New(service.Options{Config: a.cfg, Logger: a.log})
			if err != nil {
				return err
			}
			defer func() { _ = svc.Shutdown() }()

			ctx := cmd.Context()
			if _, err := svc.LoadModel(ctx, id, false); err != nil {
				return err
			}
			res, err := svc.Generate(ctx, types.GenerateRequest{
				Query:   args[0],
				ModelID: id,
				Sampling: types.SamplingParams{
					MaxTokens:   maxTokens,
					Temperature: temperature,
				},
			})
			if err != nil {
				return err
			}
			fmt.Println(res.Text)
			a.log.Info().
				Str("model", res.ModelID).
				Int("completion_tokens", res.Usage.CompletionTokens).
				Float64("latency_ms", res.LatencyMS).
				Msg("generation complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&modelID, "model", "", "Model id (defaults to the configured default model)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Completion token cap for this call")
	cmd.Flags().Float32Var(&temperature, "temperature", 0, "Sampling temperature for this call")
	return cmd
}
