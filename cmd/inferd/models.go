package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"inferd/internal/registry"
	"inferd/internal/service"
	"inferd/pkg/types"
)

func newModelsCmd(a *app) *cobra.Command {
	models := &cobra.Command{
		Use:   "models",
		Short: "Inspect and edit the model registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("models requires a subcommand: list|register|scan")
		},
	}

	var asJSON bool
	list := &cobra.Command{
		Use:     "list",
		Short:   "List registered models with usage annotations",
		Example: "  inferd models list --json",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service.New(service.Options{Config: a.cfg, Logger: a.log})
			if err != nil {
				return err
			}
			defer func() { _ = svc.Shutdown() }()
			available := svc.AvailableModels()
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(available)
			}
			if len(available) == 0 {
				fmt.Println("no models registered; try 'inferd models scan'")
				return nil
			}
			for _, m := range available {
				marker := " "
				if m.Active {
					marker = "*"
				}
				fmt.Printf("%s %-28s %s\n", marker, m.ID, m.Path)
				if m.Usage != nil {
					fmt.Printf("    queries=%d tokens=%d avg_latency=%.0fms\n",
						m.Usage.Queries, m.Usage.TokensGenerated, m.Usage.AvgLatencyMS)
				}
			}
			return nil
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "Emit the raw JSON document")

	var name string
	var ctxSize, gpuLayers int
	register := &cobra.Command{
		Use:     "register <id> <path>",
		Short:   "Register a model file under an id",
		Example: "  inferd models register llama3 ~/models/llm/llama3.gguf --gpu-layers 32",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service.New(service.Options{Config: a.cfg, Logger: a.log})
			if err != nil {
				return err
			}
			defer func() { _ = svc.Shutdown() }()
			cfg := types.ModelConfig{
				ID:        args[0],
				Path:      args[1],
				Name:      name,
				CtxSize:   ctxSize,
				GPULayers: gpuLayers,
			}
			if err := svc.RegisterModel(cfg); err != nil {
				return err
			}
			fmt.Printf("registered %s\n", args[0])
			return nil
		},
	}
	register.Flags().StringVar(&name, "name", "", "Display name (defaults to the id)")
	register.Flags().IntVar(&ctxSize, "ctx-size", 0, "Context window in tokens")
	register.Flags().IntVar(&gpuLayers, "gpu-layers", 0, "Layers offloaded to the GPU")

	scan := &cobra.Command{
		Use:   "scan",
		Short: "Discover loose *.gguf files in the models directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.Open(a.cfg.ModelsDir, a.log.With().Str("component", "registry").Logger())
			if err != nil {
				return err
			}
			added, err := reg.ScanDir(registry.ScanDefaults{CtxSize: a.cfg.CtxSize, Threads: a.cfg.Threads})
			if err != nil {
				return err
			}
			if len(added) == 0 {
				fmt.Println("no new models found")
				return nil
			}
			for _, id := range added {
				fmt.Printf("registered %s\n", id)
			}
			return nil
		},
	}

	models.AddCommand(list, register, scan)
	return models
}
