package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"kingface-client/domain"
)

var (
	feedSkip  int
	feedLimit int
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the latest posts",
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

		posts, err := c.Interactions.Feed(ctx, feedSkip, feedLimit)
		if err != nil {
			return err
		}

		if len(posts) == 0 {
			fmt.Println("no posts yet")
			return nil
		}
		for _, p := range posts {
			printPost(&p, c.Interactions.Liked(p.ID))
		}

		if stats := c.Interactions.Stats(ctx); stats != nil {
			fmt.Printf("-- %d users, %d posts, %d likes, %.1f KFTL spent --\n",
				stats.UsersCount, stats.PostsCount, stats.LikesCount, stats.TotalKFTLSpent)
		}
		return nil
	},
}

func printPost(p *domain.Post, liked bool) {
	marker := " "
	if liked {
		marker = "*"
	}
	fmt.Printf("%s %s  @%s  [%s]  %d likes  %s\n", marker, p.ID, p.AuthorUsername,
		p.ContentType, p.LikesCount, p.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Printf("    %s\n", p.Content)
	if p.MediaURL != "" {
		fmt.Printf("    media: %s\n", p.MediaURL)
	}
}

func init() {
	rootCmd.AddCommand(feedCmd)

	feedCmd.Flags().IntVar(&feedSkip, "skip", 0, "number of posts to skip")
	feedCmd.Flags().IntVar(&feedLimit, "limit", 20, "page size")
}
