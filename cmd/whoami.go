package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session, rehydrating it from the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newContainer()
		if err != nil {
			return err
		}
		defer c.Close()

		user, err := c.Session.Rehydrate(cmd.Context())
		if err != nil {
			return err
		}
		if user == nil {
			fmt.Println("not signed in")
			return nil
		}

		fmt.Printf("@%s (%s)\n", user.Username, user.DisplayName)
		fmt.Printf("wallet:  %s\n", user.WalletAddress)
		fmt.Printf("balance: %.1f KFTL\n", user.KFTLBalance)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
