// Package main is the entry point for the deadgrid server and tools
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/deadgrid/cmd/server/client"
	"github.com/KirkDiggler/deadgrid/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "deadgrid",
	Short: "DeadGrid survival simulation",
	Long:  `DeadGrid runs turn-based zombie survival playthroughs over gRPC, with a websocket snapshot feed.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(client.ClientCmd)
}

// loadConfig reads --config over the defaults
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
