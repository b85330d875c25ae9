package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"socialclient/models"
)

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)

	loginCmd.Flags().StringP("username", "u", "", "username (prompted when empty)")

	registerCmd.Flags().String("username", "", "username")
	registerCmd.Flags().String("email", "", "email address")
	registerCmd.Flags().String("first-name", "", "first name")
	registerCmd.Flags().String("last-name", "", "last name")
}

// field is a string flag that is prompted for when left empty.
type field struct {
	flag  string
	label string
	dst   *string
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		if username == "" {
			var err error
			if username, err = app.Prompt.Line("Username"); err != nil {
				return err
			}
		}
		password, err := app.Prompt.Password("Password")
		if err != nil {
			return err
		}

		user, err := app.Session.Login(ctxOf(cmd), username, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", author(*user))
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var req models.RegisterRequest
		fields := []field{
			{"username", "Username", &req.Username},
			{"email", "Email", &req.Email},
			{"first-name", "First name", &req.FirstName},
			{"last-name", "Last name", &req.LastName},
		}
		for _, f := range fields {
			value, _ := cmd.Flags().GetString(f.flag)
			if value == "" {
				var err error
				if value, err = app.Prompt.Line(f.label); err != nil {
					return err
				}
			}
			*f.dst = value
		}
		password, err := app.Prompt.Password("Password (at least 8 characters)")
		if err != nil {
			return err
		}
		req.Password = password

		user, err := app.Session.Register(ctxOf(cmd), req)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s!\n", author(*user))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app.Session.Logout(ctxOf(cmd))
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := signedIn(); err != nil {
			return err
		}
		user := app.Session.Current()
		fmt.Fprintf(cmd.OutOrStdout(), "%s  #%d\n", author(*user), user.ID)
		if user.Email != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", user.Email)
		}
		return nil
	},
}
