package client

import (
	"fmt"

	"github.com/spf13/cobra"

	transports "github.com/cis1951/lec8-backend/internal/cmd/client/transports"
)

func getLiveTransport() transports.LiveTransport {
	return transports.NewGrpcTransport(dialGRPC)
}

// NewLiveCommand constructs the `live` command group.
func NewLiveCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "live", Short: "Live feed"}
	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Print broadcasts as they happen (gRPC)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, _ := cmd.Flags().GetString("filter")
			limit, _ := cmd.Flags().GetInt("limit")
			return getLiveTransport().Tail(cmd.Context(), transports.TailRequest{Filter: filter, Limit: limit}, func(payload []byte) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), string(payload))
				return err
			})
		},
	}
	tailCmd.Flags().String("filter", "", "CEL filter (server-side), e.g. json.channel == \"general\"")
	tailCmd.Flags().Int("limit", 0, "Stop after N broadcasts (0 = infinite)")
	cmd.AddCommand(tailCmd)
	return cmd
}
