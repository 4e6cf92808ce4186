// Copyright (c) 2026 Stockroom. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/taibuivan/stockroom/internal/client"
	"github.com/taibuivan/stockroom/internal/platform/constants"
)

// cliConfig is read from the environment and overridden by flags.
type cliConfig struct {
	APIURL    string        `env:"STOCKROOM_API_URL"    envDefault:"http://localhost:3001"`
	TokenFile string        `env:"STOCKROOM_TOKEN_FILE"`
	Timeout   time.Duration `env:"STOCKROOM_TIMEOUT"    envDefault:"10s"`
	Verbose   bool          `env:"STOCKROOM_VERBOSE"`
}

// environment holds process-level seams so commands can be tested.
type environment struct {
	stdin        io.Reader
	readPassword func() (string, error)
}

func newEnvironment() *environment {
	return &environment{
		stdin: os.Stdin,
		readPassword: func() (string, error) {
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			return string(raw), err
		},
	}
}

// app is built per invocation once flags are parsed.
type app struct {
	api     *client.APIClient
	session *client.Session
	router  client.Router
}

// ErrRedirected is returned when the guard sends a command to the login view.
var ErrRedirected = errors.New("not signed in")

// NewRootCmd creates the root command of the CLI.
func NewRootCmd(envr *environment) *cobra.Command {
	cfg := &cliConfig{}
	state := &app{}

	cmd := &cobra.Command{
		Use:           constants.AppName,
		Short:         "Stockroom command-line client",
		Long:          `Sign in to a Stockroom server and manage its product catalog.`,
		Version:       constants.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return state.init(cmd, cfg)
		},
	}

	if err := env.Parse(cfg); err != nil {
		cmd.PrintErrln("config:", err)
	}

	cmd.PersistentFlags().StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "server base URL (STOCKROOM_API_URL)")
	cmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "where the session token is kept (STOCKROOM_TOKEN_FILE)")
	cmd.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout (STOCKROOM_TIMEOUT)")
	cmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "print the underlying cause of sign-in failures (STOCKROOM_VERBOSE)")

	cmd.AddCommand(newRegisterCmd(state, envr))
	cmd.AddCommand(newLoginCmd(state, envr))
	cmd.AddCommand(newLogoutCmd(state))
	cmd.AddCommand(newStatusCmd(state))
	cmd.AddCommand(newProductsCmd(state))

	return cmd
}

// execute runs cmd and prints the user-facing message of any failure.
// With --verbose the cause behind a generic sign-in message follows it.
func execute(cmd *cobra.Command) error {
	err := cmd.Execute()
	if err == nil {
		return nil
	}

	cmd.PrintErrln("error:", describe(err))
	if verbose, _ := cmd.PersistentFlags().GetBool("verbose"); verbose {
		if detail := authDetail(err); detail != "" {
			cmd.PrintErrln("detail:", detail)
		}
	}
	return err
}

func (state *app) init(cmd *cobra.Command, cfg *cliConfig) error {
	api, err := client.NewAPIClient(cfg.APIURL, client.WithTimeout(cfg.Timeout))
	if err != nil {
		return err
	}

	tokenFile := cfg.TokenFile
	if tokenFile == "" {
		if tokenFile, err = client.DefaultTokenPath(); err != nil {
			return err
		}
	}

	session, err := client.NewSession(api, client.NewFileStore(tokenFile))
	if err != nil {
		cmd.PrintErrln("warning:", err)
	}
	api.UseTokens(session)

	state.api = api
	state.session = session
	return nil
}

// navigate guards path and fails with a login hint when redirected.
func (state *app) navigate(cmd *cobra.Command, path string) (client.Route, error) {
	decision, err := state.router.Navigate(state.session, path)
	if err != nil {
		return client.Route{}, err
	}
	if !decision.Render {
		cmd.PrintErrf("redirected to %s: run `%s login` first\n", decision.RedirectTo, constants.AppName)
		return client.Route{}, ErrRedirected
	}
	return decision.Route, nil
}

// authError marks a failure of register or login. Users only ever see the
// generic message for the flow, never the server's reason.
type authError struct {
	err error
}

func (e *authError) Error() string { return e.err.Error() }

func (e *authError) Unwrap() error { return e.err }

// describe turns an error into one line for the terminal.
func describe(err error) string {
	var authErr *authError
	var apiErr *client.APIError
	switch {
	case errors.Is(err, ErrRedirected):
		return err.Error()
	case errors.As(err, &authErr):
		return client.UserMessage(authErr.err)
	case errors.As(err, &apiErr):
		return apiErr.Message
	default:
		return err.Error()
	}
}

// authDetail names the stage and cause of a sign-in failure, or "".
func authDetail(err error) string {
	var authErr *authError
	if !errors.As(err, &authErr) {
		return ""
	}
	var registerErr *client.RegisterError
	if errors.As(err, &registerErr) {
		return fmt.Sprintf("%s: %v", registerErr.Stage, registerErr.Err)
	}
	return authErr.err.Error()
}

// promptCredentials fills in whichever of username and password was not
// given by flag.
func promptCredentials(cmd *cobra.Command, envr *environment, username, password string) (string, string, error) {
	reader := bufio.NewReader(envr.stdin)

	if username == "" {
		cmd.Print("Username: ")
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", "", fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}

	if password == "" {
		cmd.Print("Password: ")
		secret, err := envr.readPassword()
		cmd.Println()
		if err != nil {
			return "", "", fmt.Errorf("read password: %w", err)
		}
		password = secret
	}

	return username, password, nil
}
