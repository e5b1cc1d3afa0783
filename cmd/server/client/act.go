package client

import (
	"context"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
	"github.com/KirkDiggler/deadgrid/internal/handlers/survival/v1alpha1"
)

var (
	actDirection string
	actTarget    string
	actItem      string
)

var actCmd = &cobra.Command{
	Use:   "act [playthrough-id] [action]",
	Short: "Submit a player action",
	Long: `Submit one player action. Examples:

  act pt_123 move --direction up
  act pt_123 melee --target zombie_4
  act pt_123 use_item --item medkit
  act pt_123 wait`,
	Args: cobra.ExactArgs(2),
	RunE: submitAction,
}

func init() {
	actCmd.Flags().StringVar(&actDirection, "direction", "", "up, down, left or right")
	actCmd.Flags().StringVar(&actTarget, "target", "", "target entity id")
	actCmd.Flags().StringVar(&actItem, "item", "", "inventory item for use_item")
}

func submitAction(_ *cobra.Command, args []string) error {
	req := &v1alpha1.SubmitActionRequest{
		PlaythroughID: args[0],
		Action: survival.Action{
			Type:      survival.ActionType(args[1]),
			Direction: survival.Direction(actDirection),
			TargetID:  actTarget,
			Item:      survival.ItemKind(actItem),
		},
	}
	return invoke(req, func(ctx context.Context, c v1alpha1.SimulationServiceClient, msg *structpb.Struct) (*structpb.Struct, error) {
		return c.SubmitAction(ctx, msg)
	})
}
