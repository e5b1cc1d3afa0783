package client

import (
	"context"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/deadgrid/internal/handlers/survival/v1alpha1"
)

var chooseCmd = &cobra.Command{
	Use:   "choose [playthrough-id] [event-id] [choice-id]",
	Short: "Answer the pending event",
	Args:  cobra.ExactArgs(3),
	RunE:  resolveChoice,
}

func resolveChoice(_ *cobra.Command, args []string) error {
	req := &v1alpha1.ResolveChoiceRequest{
		PlaythroughID: args[0],
		EventID:       args[1],
		ChoiceID:      args[2],
	}
	return invoke(req, func(ctx context.Context, c v1alpha1.SimulationServiceClient, msg *structpb.Struct) (*structpb.Struct, error) {
		return c.ResolveChoice(ctx, msg)
	})
}
