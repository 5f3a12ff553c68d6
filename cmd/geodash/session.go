package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/geodash/svc/session"
)

// passwordEnv lets scripts pass a password without exposing it in argv.
const passwordEnv = "GEODASH_PASSWORD"

// password prefers the flag and falls back to GEODASH_PASSWORD.
func password(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if p := os.Getenv(passwordEnv); p != "" {
		return p, nil
	}
	return "", fmt.Errorf("password is required: use --password or %s", passwordEnv)
}

// restore loads the saved session so commands act on the stored login.
func (a *app) restore(cmd *cobra.Command) error {
	return a.dash.Session.Restore(cmd.Context())
}

// loginCmd signs in with email and password.
func (a *app) loginCmd() *cobra.Command {
	var email, pass string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := password(pass)
			if err != nil {
				return err
			}
			if err := a.restore(cmd); err != nil {
				return err
			}
			if err := a.dash.Session.Login(cmd.Context(), email, p); err != nil {
				return err
			}
			u := a.dash.Session.State().User
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", u.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&pass, "password", "p", "", "account password (or "+passwordEnv+")")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// registerCmd creates an account; the backend signs it in.
func (a *app) registerCmd() *cobra.Command {
	var in session.Registration
	var pass string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := password(pass)
			if err != nil {
				return err
			}
			in.Password = p
			if err := a.restore(cmd); err != nil {
				return err
			}
			if err := a.dash.Session.Register(cmd.Context(), in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s\n", a.dash.Session.State().User.Email)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&in.Email, "email", "e", "", "account email")
	f.StringVarP(&pass, "password", "p", "", "account password (or "+passwordEnv+")")
	f.StringVar(&in.FirstName, "first-name", "", "first name")
	f.StringVar(&in.LastName, "last-name", "", "last name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// logoutCmd ends the saved session. Not being logged in is not an error.
func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd); err != nil {
				return err
			}
			err := a.dash.Session.Logout(cmd.Context())
			switch {
			case errors.Is(err, session.ErrNotAuthenticated):
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			case errors.Is(err, session.ErrSessionExpired):
				fmt.Fprintln(cmd.OutOrStdout(), "Session had expired; local state cleared")
				return nil
			case err != nil:
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

// whoamiCmd prints the user after checking the session with the backend.
func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user, verified with the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.restore(cmd); err != nil {
				return err
			}
			if !a.dash.Session.State().IsAuthenticated {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			if err := a.dash.Session.FetchCurrentUser(cmd.Context()); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), a.dash.Session.State().User)
		},
	}
}

// forgotPasswordCmd requests a password reset email.
func (a *app) forgotPasswordCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a password reset email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.dash.Session.ForgotPassword(cmd.Context(), email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
