package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/taskdeck/internal/api"
)

var authFlags struct {
	username string
	password string
	name     string
	email    string
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and save the session cookie",
	Long: `Sign in to the task API. The session cookie is saved in the data
directory and reused by every other command.

The password is read from --password, then TASKDECK_PASSWORD, then stdin.`,
	RunE: runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the saved session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE:  runWhoami,
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVarP(&authFlags.username, "username", "u", "", "Username (required)")
		c.Flags().StringVarP(&authFlags.password, "password", "p", "", "Password")
		_ = c.MarkFlagRequired("username")
	}
	registerCmd.Flags().StringVar(&authFlags.name, "name", "", "Display name")
	registerCmd.Flags().StringVar(&authFlags.email, "email", "", "Email address")
}

// readPassword resolves the password from the flag, the environment or
// the first line of in.
func readPassword(cmd *cobra.Command, in io.Reader) (string, error) {
	if authFlags.password != "" {
		return authFlags.password, nil
	}
	if env := os.Getenv("TASKDECK_PASSWORD"); env != "" {
		return env, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("password is required")
	}
	return line, nil
}

func optionalFlag(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx, runtimeOptions{journal: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	password, err := readPassword(cmd, cmd.InOrStdin())
	if err != nil {
		return err
	}
	u, err := rt.session.Login(ctx, api.Credentials{Username: strings.TrimSpace(authFlags.username), Password: password})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", u.DisplayName())
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx, runtimeOptions{journal: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	password, err := readPassword(cmd, cmd.InOrStdin())
	if err != nil {
		return err
	}
	u, err := rt.session.Register(ctx, api.Registration{
		Username: strings.TrimSpace(authFlags.username),
		Password: password,
		Name:     optionalFlag(authFlags.name),
		Email:    optionalFlag(authFlags.email),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", u.DisplayName())
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx, runtimeOptions{journal: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, err := rt.requireUser(ctx); err != nil {
		return err
	}
	if err := rt.session.Logout(ctx); err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	u, err := rt.requireUser(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (#%d)\n", u.Username, u.ID)
	if u.Name != nil {
		fmt.Fprintf(out, "Name:  %s\n", *u.Name)
	}
	if u.Email != nil {
		fmt.Fprintf(out, "Email: %s\n", *u.Email)
	}
	fmt.Fprintf(out, "API:   %s\n", rt.client.BaseURL())
	return nil
}
