// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"github.com/spf13/cobra"

	"github.com/taibuivan/stockroom/internal/client"
)

type credentialFlags struct {
	username string
	password string
}

func (flags *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flags.username, "username", "u", "", "account username (prompted when empty)")
	cmd.Flags().StringVarP(&flags.password, "password", "p", "", "account password (prompted when empty)")
}

func newRegisterCmd(state *app, envr *environment) *cobra.Command {
	flags := &credentialFlags{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := state.navigate(cmd, "/register"); err != nil {
				return err
			}
			username, password, err := promptCredentials(cmd, envr, flags.username, flags.password)
			if err != nil {
				return err
			}
			if err := state.session.Register(cmd.Context(), username, password); err != nil {
				return &authError{err: err}
			}
			cmd.Printf("Registered and signed in as %s\n", username)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newLoginCmd(state *app, envr *environment) *cobra.Command {
	flags := &credentialFlags{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := state.navigate(cmd, client.LoginPath); err != nil {
				return err
			}
			username, password, err := promptCredentials(cmd, envr, flags.username, flags.password)
			if err != nil {
				return err
			}
			if err := state.session.Login(cmd.Context(), username, password); err != nil {
				return &authError{err: err}
			}
			cmd.Printf("Signed in as %s\n", username)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newLogoutCmd(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := state.session.Logout(); err != nil {
				return err
			}
			cmd.Println("Signed out")
			return nil
		},
	}
}

func newStatusCmd(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is stored and still accepted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !state.session.IsAuthenticated() {
				cmd.Println("Not signed in")
				return nil
			}

			identity, err := state.api.Profile(cmd.Context())
			if err != nil {
				if client.IsUnauthorized(err) {
					cmd.Println("Stored session was rejected by the server; sign in again")
					return nil
				}
				return err
			}
			cmd.Printf("Signed in as %s (%s)\n", identity.Username, identity.ID)
			return nil
		},
	}
}
