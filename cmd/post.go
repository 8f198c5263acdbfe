package cmd

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	postContentType string
	postMediaFile   string
)

var postCmd = &cobra.Command{
	Use:   "post <content>",
	Short: "Publish a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newContainer()
		if err != nil {
			return err
		}
		defer c.Close()
		ctx := cmd.Context()

		if _, err := c.Session.Rehydrate(ctx); err != nil {
			return err
		}

		var mediaData string
		if postMediaFile != "" {
			data, err := os.ReadFile(postMediaFile)
			if err != nil {
				return fmt.Errorf("read media file: %w", err)
			}
			mediaData = base64.StdEncoding.EncodeToString(data)
		}

		post, err := c.Interactions.CreatePost(ctx, args[0], postContentType, mediaData)
		if err != nil {
			return err
		}

		fmt.Println("published post", post.ID)
		if post.MediaURL != "" {
			fmt.Println("media:", post.MediaURL)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(postCmd)

	postCmd.Flags().StringVarP(&postContentType, "type", "t", "text", "content type: text, image, video, audio")
	postCmd.Flags().StringVarP(&postMediaFile, "media-file", "m", "", "file to attach as base64 media data")
}
