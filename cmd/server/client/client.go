// Package client provides commands that talk to a running deadgrid server
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/deadgrid/internal/handlers/survival/v1alpha1"
)

var (
	// Connection flags
	serverAddr string
	timeout    time.Duration
)

// ClientCmd is the root command for all client commands
var ClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Play against a running server",
	Long:  `Client commands make real gRPC requests to the SimulationService.`,
}

func init() {
	ClientCmd.PersistentFlags().StringVar(&serverAddr, "server", "localhost:50051", "gRPC server address")
	ClientCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	ClientCmd.AddCommand(startCmd)
	ClientCmd.AddCommand(actCmd)
	ClientCmd.AddCommand(chooseCmd)
	ClientCmd.AddCommand(snapshotCmd)
}

// createClient creates a simulation service client
func createClient() (v1alpha1.SimulationServiceClient, func(), error) {
	conn, err := grpc.NewClient(serverAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	cleanup := func() {
		_ = conn.Close() // nolint:errcheck // safe to ignore in cleanup
	}
	return v1alpha1.NewSimulationServiceClient(conn), cleanup, nil
}

type call func(ctx context.Context, c v1alpha1.SimulationServiceClient, req *structpb.Struct) (*structpb.Struct, error)

// invoke sends req and prints the response as indented JSON
func invoke(req any, fn call) error {
	c, cleanup, err := createClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	msg, err := v1alpha1.Encode(req)
	if err != nil {
		return err
	}
	resp, err := fn(ctx, c, msg)
	if err != nil {
		return err
	}

	out, err := resp.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to render response: %w", err)
	}
	var pretty any
	if err := json.Unmarshal(out, &pretty); err != nil {
		return fmt.Errorf("failed to render response: %w", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(pretty)
}
