package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/fitcoach-api/internal/remote"
)

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Exchange --email and --password for a token",
		Long:  "Prints an access token suitable for FITCOACH_API_TOKEN.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.email == "" || a.password == "" {
				return errors.New("--email and --password are required")
			}
			client, err := remote.New(remote.Options{BaseURL: a.apiURL, Timeout: a.cfg.Remote.Timeout, Logger: a.logger})
			if err != nil {
				return err
			}
			token, err := client.Login(cmd.Context(), a.email, a.password)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, token)
			return nil
		},
	}
}
