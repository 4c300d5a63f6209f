package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the chatd client.
// It registers the channels, posts and live command groups.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "chatd",
		Short: "chatd client commands",
	}
	AddCommands(root, baseURL)
	return root
}

// AddCommands attaches the client command groups to parent.
func AddCommands(parent *cobra.Command, baseURL BaseURLFunc) {
	parent.AddCommand(
		NewChannelsCommand(baseURL),
		NewPostsCommand(baseURL),
		NewLiveCommand(),
	)
}
