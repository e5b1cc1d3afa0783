package client

import (
	"context"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/deadgrid/internal/handlers/survival/v1alpha1"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [playthrough-id]",
	Short: "Print the current snapshot of a playthrough",
	Args:  cobra.ExactArgs(1),
	RunE:  getSnapshot,
}

func getSnapshot(_ *cobra.Command, args []string) error {
	return invoke(&v1alpha1.GetSnapshotRequest{PlaythroughID: args[0]},
		func(ctx context.Context, c v1alpha1.SimulationServiceClient, msg *structpb.Struct) (*structpb.Struct, error) {
			return c.GetSnapshot(ctx, msg)
		})
}
