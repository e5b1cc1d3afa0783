package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/deadgrid/internal/engine"
	"github.com/KirkDiggler/deadgrid/internal/engine/narrative"
	"github.com/KirkDiggler/deadgrid/internal/engine/simulation"
	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
)

var (
	simulateSeed  uint64
	simulateTurns int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play a seeded game headlessly",
	Long: `Play a seeded game with the built-in autopilot and print the final snapshot as JSON.
The same seed and config always print the same snapshot.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().Uint64Var(&simulateSeed, "seed", 1, "world seed")
	simulateCmd.Flags().IntVar(&simulateTurns, "turns", 100, "number of commands to play")
}

func runSimulate(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var packs []*narrative.Pack
	if cfg.Events.TemplatePack != "" {
		pack, err := narrative.LoadPackFile(cfg.Events.TemplatePack)
		if err != nil {
			return fmt.Errorf("failed to load template pack: %w", err)
		}
		packs = append(packs, pack)
	}

	sim, err := simulation.New(&simulation.Config{
		ID:    "simulate",
		Rules: cfg.Game,
		Seed:  simulateSeed,
		Packs: packs,
	})
	if err != nil {
		return fmt.Errorf("failed to create simulation: %w", err)
	}

	ctx := context.Background()
	played := 0
	for ; played < simulateTurns; played++ {
		snap, err := sim.GetSnapshot(ctx, &engine.GetSnapshotInput{})
		if err != nil {
			return err
		}
		if snap.Snapshot.Phase == survival.PhaseGameOver {
			break
		}

		cmd := simulation.Autopilot(snap.Snapshot)
		if _, err := engine.Apply(ctx, sim, cmd); err != nil {
			slog.Debug("autopilot command declined, waiting", "kind", cmd.Kind, "error", err)
			wait := &engine.SubmitActionInput{Action: survival.Action{Type: survival.ActionWait}}
			if _, err := sim.SubmitAction(ctx, wait); err != nil {
				return fmt.Errorf("turn %d: %w", played, err)
			}
		}
	}

	final, err := sim.GetSnapshot(ctx, &engine.GetSnapshotInput{})
	if err != nil {
		return err
	}
	slog.Info("simulation finished",
		"seed", simulateSeed,
		"commands", played,
		"day", final.Snapshot.Day,
		"game_over", final.Snapshot.GameOver)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(final.Snapshot)
}
