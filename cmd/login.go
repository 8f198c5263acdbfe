package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	loginUsername    string
	loginDisplayName string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in by proving ownership of the local wallet key",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newContainer()
		if err != nil {
			return err
		}
		defer c.Close()
		ctx := cmd.Context()

		addr, err := c.Session.ConnectWallet(ctx)
		if err != nil {
			return err
		}
		fmt.Println("wallet:", addr)

		user, err := c.Session.Login(ctx, loginUsername, loginDisplayName)
		if err != nil {
			return err
		}

		fmt.Printf("signed in as @%s (%s)\n", user.Username, user.DisplayName)
		fmt.Printf("balance: %.1f KFTL\n", user.KFTLBalance)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "username (min 3 characters)")
	loginCmd.Flags().StringVarP(&loginDisplayName, "display-name", "d", "", "display name")
	_ = loginCmd.MarkFlagRequired("username")
	_ = loginCmd.MarkFlagRequired("display-name")
}
