package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCookiesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cookies",
		Short: "Manage the cookie file",
	}

	seal := &cobra.Command{
		Use:   "seal <netscape-cookies.txt> <sealed-output>",
		Short: "Encrypt a cookie file with COOKIES_KEY",
		Long: `seal encrypts a Netscape cookie file. Point COOKIES_FILE at the output;
downloads then decrypt it to a private temporary file for each run.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Vault.SealFile(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sealed %s -> %s\n", args[0], args[1])
			return nil
		},
	}

	cmd.AddCommand(seal)
	return cmd
}
