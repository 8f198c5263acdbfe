package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile <username>",
	Short: "Show a user's public profile and posts",
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

		user, err := c.Interactions.GetUser(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("@%s (%s)\n", user.Username, user.DisplayName)
		if user.Bio != "" {
			fmt.Println(user.Bio)
		}
		fmt.Printf("wallet: %s\n", user.WalletAddress)

		posts, err := c.Interactions.UserPosts(ctx, user.ID, 0, 20)
		if err != nil {
			return err
		}
		for _, p := range posts {
			printPost(&p, c.Interactions.Liked(p.ID))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
}
