package main

import (
	"fmt"

	"codeberg.org/mediagate/server/internal/tui"
	"codeberg.org/mediagate/server/mediagate/accounts"
	"github.com/spf13/cobra"
)

var (
	signUpEmail    string
	signUpUsername string
	signInEmail    string
)

var signUpCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := flagOrPrompt(signUpEmail, "Email: ")
		if err != nil {
			return err
		}

		username, err := flagOrPrompt(signUpUsername, "Username: ")
		if err != nil {
			return err
		}

		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return err
		}

		err = current.controller.SignUp(cmd.Context(), accounts.SignUpRequest{
			Email:           email,
			Password:        password,
			ConfirmPassword: confirm,
			Username:        username,
		})
		if err != nil {
			return err
		}

		fmt.Println(tui.Success("Account created, you are signed in on the free plan."))
		return nil
	},
}

var signInCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in with email and password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := flagOrPrompt(signInEmail, "Email: ")
		if err != nil {
			return err
		}

		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		if err := current.controller.SignIn(cmd.Context(), accounts.SignInRequest{Email: email, Password: password}); err != nil {
			return err
		}

		fmt.Println(tui.Success("Signed in as " + email + "."))
		return nil
	},
}

var signOutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Sign out and forget the saved session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.controller.SignOut(cmd.Context()); err != nil {
			return err
		}

		fmt.Println("Signed out.")
		return nil
	},
}

var oauthCmd = &cobra.Command{
	Use:       "oauth <provider>",
	Short:     "Sign in through an OAuth provider in the browser",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"google", "github"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.controller.SignInWithOAuth(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Println(tui.Success("Signed in with " + args[0] + "."))
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user and membership",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := current.controller.RequireUser(cmd.Context())
		if err != nil {
			if state.Session != nil {
				return fmt.Errorf("signed in as %s, but the profile is not available yet", state.Session.Email)
			}

			return err
		}

		fmt.Println(tui.RenderProfile(state.User, state.Membership))
		return nil
	},
}

func init() {
	signUpCmd.Flags().StringVar(&signUpEmail, "email", "", "account email")
	signUpCmd.Flags().StringVar(&signUpUsername, "username", "", "display name")
	signInCmd.Flags().StringVar(&signInEmail, "email", "", "account email")
}
