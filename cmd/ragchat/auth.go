package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/ragchat/internal/service/command"
	"github.com/sandevgo/ragchat/internal/service/installer"
	"github.com/sandevgo/ragchat/internal/service/session"
	"github.com/sandevgo/ragchat/internal/service/ui"
	"github.com/sandevgo/ragchat/internal/transport/cli"
	"github.com/sandevgo/ragchat/pkg/log"
	"github.com/spf13/cobra"
)

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the backend and store the access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, app *App) error {
			email := strings.TrimSpace(loginEmail)
			if email == "" {
				var err error
				if email, err = installer.Prompt("Email", "you@example.com", false); err != nil {
					return err
				}
			}
			password, err := installer.Prompt("Password", "", true)
			if err != nil {
				return err
			}

			cred, err := app.auth.Login(ctx, email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			msg := "Signed in as " + email
			if exp := cred.ExpiresAt(); !exp.IsZero() {
				msg += ", token valid until " + exp.Local().Format(time.DateTime)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.NoticeStyle.Render(msg))
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, app *App) error {
			if _, ok := app.auth.Session().Credential(); !ok {
				log.FromCtx(ctx).Info().Msg("not signed in")
				return nil
			}
			if err := app.auth.Logout(ctx); err != nil {
				return fmt.Errorf("logout failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.NoticeStyle.Render("Signed out"))
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user and token lifetime",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, app *App) error {
			out := cmd.OutOrStdout()
			result, err := command.NewWhoamiCommand(app.auth).Execute(ctx, app.Conversation(), nil)
			if err != nil {
				log.FromCtx(ctx).Debug().Err(err).Msg("profile lookup failed")
				cli.Print(out, command.NewResponseFormatter().Failure(err))
				return errReported
			}
			cli.Print(out, result)

			cred, ok := app.auth.Session().Credential()
			if !ok {
				return nil
			}
			info, err := session.InspectToken(cred.AccessToken)
			if err != nil {
				log.FromCtx(ctx).Debug().Err(err).Msg("token claims unavailable")
				return nil
			}
			if !info.ExpiresAt.IsZero() {
				fmt.Fprintf(out, "Token expires: %s\n", info.ExpiresAt.Local().Format(time.DateTime))
			}
			if info.Subject != "" {
				fmt.Fprintf(out, "Token subject: %s\n", info.Subject)
			}
			return nil
		})
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}
