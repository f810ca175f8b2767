package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/smartshuttle/shuttle/internal/auth"
	"github.com/smartshuttle/shuttle/internal/client"
	"github.com/spf13/cobra"
)

// Default server base URL; can override with SHUTTLE_SERVER env var or --server flag.
const defaultServer = "http://localhost:8080"

var (
	serverURL string
	tokenPath string
)

var rootCmd = &cobra.Command{
	Use:           "shuttlectl",
	Short:         "Command-line client for the SmartShuttle API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	server := defaultServer
	if env := os.Getenv("SHUTTLE_SERVER"); env != "" {
		server = env
	}
	defaultToken, err := client.DefaultTokenPath()
	if err != nil {
		defaultToken = ".shuttle-token"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", server, "server base URL")
	rootCmd.PersistentFlags().StringVar(&tokenPath, "token-file", defaultToken, "where the session token is kept")

	registerCmd.Flags().String("name", "", "full name")
	registerCmd.Flags().String("email", "", "email address")
	registerCmd.Flags().String("password", "", "password (at least 6 characters)")
	loginCmd.Flags().String("email", "", "email address")
	loginCmd.Flags().String("password", "", "password")
	notificationsCmd.Flags().String("filter", "all", "all|info|warning|success")
	notificationsCmd.Flags().Bool("mark-read", false, "mark every notification as read")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, meCmd, dashboardCmd,
		notificationsCmd, tripsCmd, trackingCmd, profileCmd, tourCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newClient() (*client.Client, error) {
	c := client.New(serverURL, nil)
	token, err := client.LoadToken(tokenPath)
	if err != nil {
		return nil, err
	}
	c.SetToken(token)
	return c, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a passenger account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		ctx, cancel := commandContext(cmd)
		defer cancel()

		c := client.New(serverURL, nil)
		sess, err := c.Register(ctx, auth.RegisterInput{Name: name, Email: email, Password: password})
		if err != nil {
			return describe(err)
		}
		if err := client.SaveToken(tokenPath, sess.Token); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s)\n", sess.User.Name, sess.User.UserID)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		ctx, cancel := commandContext(cmd)
		defer cancel()

		c := client.New(serverURL, nil)
		sess, err := c.Login(ctx, auth.LoginInput{Email: email, Password: password})
		if err != nil {
			return describe(err)
		}
		if err := client.SaveToken(tokenPath, sess.Token); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", sess.User.Name)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return client.ClearToken(tokenPath)
	},
}

// fetchCmd builds a command that prints one authenticated resource.
func fetchCmd(use, short string, fetch func(context.Context, *client.Client) (interface{}, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			v, err := fetch(ctx, c)
			if err != nil {
				return describe(err)
			}
			return printJSON(cmd, v)
		},
	}
}

var meCmd = fetchCmd("me", "Show the signed-in account", func(ctx context.Context, c *client.Client) (interface{}, error) {
	return c.Me(ctx)
})

var dashboardCmd = fetchCmd("dashboard", "Show the passenger dashboard", func(ctx context.Context, c *client.Client) (interface{}, error) {
	return c.Dashboard(ctx)
})

var tripsCmd = fetchCmd("trips", "List trips and reservations", func(ctx context.Context, c *client.Client) (interface{}, error) {
	return c.Trips(ctx)
})

var trackingCmd = fetchCmd("tracking", "Show the live service", func(ctx context.Context, c *client.Client) (interface{}, error) {
	return c.Tracking(ctx)
})

var profileCmd = fetchCmd("profile", "Show the passenger profile", func(ctx context.Context, c *client.Client) (interface{}, error) {
	return c.Profile(ctx)
})

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "List notifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("filter")
		markRead, _ := cmd.Flags().GetBool("mark-read")
		c, err := newClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()
		if markRead {
			if _, err := c.MarkNotificationsRead(ctx); err != nil {
				return describe(err)
			}
		}
		feed, err := c.Notifications(ctx, filter)
		if err != nil {
			return describe(err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d unread\n", feed.UnreadCount)
		for _, section := range feed.Sections {
			fmt.Fprintf(out, "\n%s\n", section.Title)
			for _, n := range section.Items {
				mark := " "
				if !n.Read {
					mark = "*"
				}
				fmt.Fprintf(out, "%s [%s] %s (%s)\n    %s\n", mark, n.Type, n.Title, n.TimeAgo, n.Body)
			}
		}
		return nil
	},
}

var tourCmd = &cobra.Command{
	Use:   "tour",
	Short: "Walk through the onboarding carousel",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(serverURL, nil)
		ctx, cancel := commandContext(cmd)
		defer cancel()

		car, err := c.StartOnboarding(ctx)
		if err != nil {
			return describe(err)
		}
		out := cmd.OutOrStdout()
		for {
			st := car.State
			fmt.Fprintf(out, "[%d/%d] %s\n    %s\n", st.Index+1, st.Total, st.Step.Title, st.Step.Description)
			if st.IsLast {
				break
			}
			// wait out the transition lock before advancing
			for st.Transitioning {
				time.Sleep(100 * time.Millisecond)
				if car, err = c.OnboardingState(ctx, car.ID); err != nil {
					return describe(err)
				}
				st = car.State
			}
			if car, err = c.Next(ctx, car.ID); err != nil {
				return describe(err)
			}
		}
		if err := c.CompleteOnboarding(ctx, car.ID); err != nil {
			return describe(err)
		}
		fmt.Fprintln(out, "Get Started!")
		return nil
	},
}

// describe flattens API validation errors into one readable line.
func describe(err error) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || len(apiErr.Fields) == 0 {
		return err
	}
	parts := make([]string, 0, len(apiErr.Fields))
	for field, msg := range apiErr.Fields {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return errors.New(strings.Join(parts, "; "))
}
