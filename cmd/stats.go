package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show platform statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newContainer()
		if err != nil {
			return err
		}
		defer c.Close()

		stats := c.Interactions.Stats(cmd.Context())
		if stats == nil {
			fmt.Println("stats unavailable")
			return nil
		}

		fmt.Printf("users:      %d\n", stats.UsersCount)
		fmt.Printf("posts:      %d\n", stats.PostsCount)
		fmt.Printf("likes:      %d\n", stats.LikesCount)
		fmt.Printf("KFTL spent: %.1f\n", stats.TotalKFTLSpent)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
