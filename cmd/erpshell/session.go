package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/erpshell/internal/domain/session"
)

// askOne is swapped out by tests.
var askOne = survey.AskOne

const (
	choiceNewSession = "Open another session"
	choiceInvalidate = "Close the other sessions"
	choiceCancel     = "Cancel"
)

func newLoginCmd(flags *globalFlags) *cobra.Command {
	var login, password, conflict string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the ERP backend",
		Long: `Signs in and persists the session for the other commands. Missing
credentials are prompted for. When the account already has active sessions
you are asked how to continue unless --conflict is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			action := session.ConflictAction(conflict)
			if !action.Valid() {
				return fmt.Errorf("--conflict must be %q or %q", session.ConflictNewSession, session.ConflictInvalidatePrevious)
			}

			if login == "" {
				if err := askOne(&survey.Input{Message: "Login:"}, &login, survey.WithValidator(survey.Required)); err != nil {
					return err
				}
			}
			if password == "" {
				if err := askOne(&survey.Password{Message: "Password:"}, &password, survey.WithValidator(survey.Required)); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			rt, err := flags.open(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			res, err := rt.Session.Login(ctx, login, password, action)
			if err != nil {
				return err
			}

			if res.Kind == session.OutcomeConflict {
				if action == session.ConflictNone {
					var choice string
					err := askOne(&survey.Select{
						Message: fmt.Sprintf("%d active sessions exist for %s. How do you want to continue?", res.ActiveSessions, login),
						Options: []string{choiceNewSession, choiceInvalidate, choiceCancel},
						Default: choiceCancel,
					}, &choice)
					if err != nil {
						return err
					}
					switch choice {
					case choiceNewSession:
						action = session.ConflictNewSession
					case choiceInvalidate:
						action = session.ConflictInvalidatePrevious
					default:
						fmt.Fprintln(cmd.OutOrStdout(), "Login cancelled.")
						return nil
					}
				}
				if res, err = rt.Session.Login(ctx, login, password, action); err != nil {
					return err
				}
			}

			switch res.Kind {
			case session.OutcomeSuccess:
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\n", displayName(res))
				syncApps(ctx, rt)
				return nil
			case session.OutcomeConflict:
				return fmt.Errorf("login still conflicts with %d active sessions", res.ActiveSessions)
			default:
				return fmt.Errorf("login failed: %s", res.Message)
			}
		},
	}

	cmd.Flags().StringVarP(&login, "login", "u", "", "Login name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when empty)")
	cmd.Flags().StringVar(&conflict, "conflict", "", "Resolve an active-session conflict: new_session or invalidate_previous")
	return cmd
}

func displayName(res session.LoginResult) string {
	if res.User == nil {
		return "unknown user"
	}
	if res.User.Name != "" {
		return res.User.Name
	}
	return res.User.Login
}

func newLogoutCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := flags.open(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if !rt.Session.IsAuthenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}
			rt.Session.Logout(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newStatusCmd(flags *globalFlags) *cobra.Command {
	var validate bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the session, the open tabs and the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := flags.open(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if validate && rt.Session.IsAuthenticated() {
				rt.Session.Validate(ctx)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Backend:\t%s\n", rt.API.BaseURL())
			fmt.Fprintf(w, "Breaker:\t%s\n", rt.API.BreakerState())
			if user := rt.Session.User(); user != nil {
				fmt.Fprintf(w, "Session:\t%s (%s)\n", user.Login, user.Role)
			} else {
				fmt.Fprintf(w, "Session:\tlogged out\n")
			}
			state := rt.Shell.State()
			fmt.Fprintf(w, "Tabs:\t%d open, active %s\n", len(state.Tabs), state.ActiveTabID)
			fmt.Fprintf(w, "Modules:\t%d\n", rt.Catalog.Len())
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&validate, "validate", false, "Check the stored token against the backend first")
	return cmd
}
