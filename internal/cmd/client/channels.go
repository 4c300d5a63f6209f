package client

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	transports "github.com/cis1951/lec8-backend/internal/cmd/client/transports"
)

func httpTransport(baseURL BaseURLFunc) transports.ChannelsTransport {
	return transports.NewHTTPTransport(baseURL(), nil)
}

// NewChannelsCommand constructs the `channels` command group.
func NewChannelsCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{Use: "channels", Short: "Channel operations"}
	cmd.AddCommand(
		newChannelsListCommand(baseURL),
		newChannelsCreateCommand(baseURL),
		newChannelsDeleteCommand(baseURL),
	)
	return cmd
}

func newChannelsListCommand(baseURL BaseURLFunc) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			chs, err := httpTransport(baseURL).ListChannels(cmd.Context())
			if err != nil {
				return err
			}
			if full, _ := cmd.Flags().GetBool("posts"); full {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(chs)
			}
			for _, line := range lo.Map(chs, func(ch transports.Channel, _ int) string {
				return fmt.Sprintf("%s\t%s\t%d posts", ch.Name, ch.ID, len(ch.Posts))
			}) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	listCmd.Flags().Bool("posts", false, "Print channels with their posts as JSON")
	return listCmd
}

func newChannelsCreateCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := httpTransport(baseURL).CreateChannel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "created:", ch.Name, ch.ID)
			return nil
		},
	}
}

func newChannelsDeleteCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete channel and all its posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := httpTransport(baseURL).DeleteChannel(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "deleted:", args[0])
			return nil
		},
	}
}
