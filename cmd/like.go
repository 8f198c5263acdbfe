package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var likeCmd = &cobra.Command{
	Use:   "like <post-id>",
	Short: "Spend 1 KFTL to like a post",
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

		resp, err := c.Interactions.Like(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s (spent %.1f KFTL)\n", resp.Message, resp.KFTLSpent)
		if user := c.Session.CurrentUser(); user != nil {
			fmt.Printf("balance: %.1f KFTL\n", user.KFTLBalance)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(likeCmd)
}
