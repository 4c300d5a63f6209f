package client

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cis1951/lec8-backend/internal/post"
)

// NewPostsCommand constructs the `posts` command group.
func NewPostsCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{Use: "posts", Short: "Post operations"}
	cmd.AddCommand(newPostsListCommand(baseURL), newPostsSendCommand(baseURL))
	return cmd
}

func newPostsListCommand(baseURL BaseURLFunc) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list <channel>",
		Short: "List posts of a channel in createdAt order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			posts, err := httpTransport(baseURL).ListPosts(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, p := range posts {
				if err := enc.Encode(p); err != nil {
					return err
				}
			}
			return nil
		},
	}
	listCmd.Flags().Int("limit", 0, "Max posts (0 = server default)")
	return listCmd
}

func newPostsSendCommand(baseURL BaseURLFunc) *cobra.Command {
	sendCmd := &cobra.Command{
		Use:   "send <channel>",
		Short: "Submit a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, _ := cmd.Flags().GetString("content")
			author, _ := cmd.Flags().GetString("author")
			id, _ := cmd.Flags().GetString("id")
			createdAt, _ := cmd.Flags().GetInt64("created-at")
			if id == "" {
				id = uuid.NewString()
			}
			if createdAt == 0 {
				createdAt = time.Now().UnixMilli()
			}
			p := post.Post{ID: id, Author: author, Content: content, CreatedAt: createdAt}
			if err := httpTransport(baseURL).SendPost(cmd.Context(), args[0], p); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "posted:", id)
			return nil
		},
	}
	sendCmd.Flags().String("content", "", "Post content")
	sendCmd.Flags().String("author", "", "Author (server defaults to Anonymous)")
	sendCmd.Flags().String("id", "", "Post id (random UUID if empty)")
	sendCmd.Flags().Int64("created-at", 0, "Timestamp in Unix ms (now if 0)")
	return sendCmd
}
