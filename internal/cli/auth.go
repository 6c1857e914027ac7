package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/justestif/moodmuse/internal/app"
	"github.com/justestif/moodmuse/internal/router"
)

// PasswordEnvVar supplies the password non-interactively.
const PasswordEnvVar = "MOODMUSE_PASSWORD"

func newLoginCmd(o *options) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			return o.withApp(cmd.Context(), nil, func(ctx context.Context, a *app.App) error {
				return signIn(ctx, cmd, a, app.Login{Email: email, Password: pw})
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (default: $"+PasswordEnvVar+" or prompt)")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd(o *options) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			return o.withApp(cmd.Context(), nil, func(ctx context.Context, a *app.App) error {
				return signIn(ctx, cmd, a, app.Register{Name: name, Email: email, Password: pw})
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name (required)")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (default: $"+PasswordEnvVar+" or prompt)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	return cmd
}

// signIn dispatches a Login or Register command from the Auth view.
func signIn(ctx context.Context, cmd *cobra.Command, a *app.App, c app.Command) error {
	st, err := settle(ctx, cmd, a)
	if err != nil {
		return err
	}
	if st.View != router.Auth {
		return fmt.Errorf("already signed in as %s; run `moodmuse logout` first", st.Session.Email)
	}

	a.Dispatch(c)
	st, err = settle(ctx, cmd, a)
	if err != nil {
		return err
	}
	if st.View != router.Landing {
		return errors.New("sign in did not complete")
	}
	return nil
}

func newLogoutCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd.Context(), nil, func(ctx context.Context, a *app.App) error {
				if _, err := settle(ctx, cmd, a); err != nil {
					return err
				}
				a.Dispatch(app.Logout{})
				_, err := settle(ctx, cmd, a)
				return err
			})
		},
	}
}

func newWhoamiCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd.Context(), nil, func(ctx context.Context, a *app.App) error {
				st, err := requireSignedIn(ctx, cmd, a)
				if err != nil {
					return err
				}
				return printSession(cmd.OutOrStdout(), o.format, st.Session)
			})
		},
	}
}

// readPassword returns flag, then $MOODMUSE_PASSWORD, then a line read from
// stdin.
func readPassword(cmd *cobra.Command, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if pw := os.Getenv(PasswordEnvVar); pw != "" {
		return pw, nil
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	sc := bufio.NewScanner(cmd.InOrStdin())
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return "", errors.New("no password given")
	}
	return strings.TrimRight(sc.Text(), "\r"), nil
}
