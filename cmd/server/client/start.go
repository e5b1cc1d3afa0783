package client

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/deadgrid/internal/handlers/survival/v1alpha1"
)

var startSeed string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new playthrough",
	Long: `Start a new playthrough and print its id and opening snapshot. Examples:

  start
  start --seed 2024`,
	Args: cobra.NoArgs,
	RunE: startPlaythrough,
}

func init() {
	startCmd.Flags().StringVar(&startSeed, "seed", "", "world seed; random when empty")
}

func startPlaythrough(_ *cobra.Command, _ []string) error {
	fmt.Println("Starting playthrough...")
	return invoke(&v1alpha1.StartPlaythroughRequest{Seed: startSeed},
		func(ctx context.Context, c v1alpha1.SimulationServiceClient, req *structpb.Struct) (*structpb.Struct, error) {
			return c.StartPlaythrough(ctx, req)
		})
}
