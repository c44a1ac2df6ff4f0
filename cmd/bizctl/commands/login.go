package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/bizapi/internal/constants"
	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
	"github.com/fivetwenty-io/bizapi/pkg/bizclient"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the backend",
		Long: `Authenticate against a backend endpoint and remember the session token.

The endpoint becomes the current API. Missing credentials are prompted for.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			endpoint := viper.GetString("api")
			if endpoint == "" && config.CurrentAPI != "" {
				if apiConfig, ok := config.APIs[config.CurrentAPI]; ok {
					endpoint = apiConfig.Endpoint
				}
			}

			reader := bufio.NewReader(cmd.InOrStdin())

			if endpoint == "" {
				endpoint = prompt(cmd.OutOrStdout(), reader, "API endpoint: ")
			}

			if endpoint == "" {
				return constants.ErrAPIEndpointRequired
			}

			if username == "" {
				username = prompt(cmd.OutOrStdout(), reader, "Username: ")
			}

			if password == "" {
				var err error

				password, err = promptPassword(cmd.InOrStdin(), cmd.OutOrStdout(), reader)
				if err != nil {
					return err
				}
			}

			endpoint = bizclient.NormalizeEndpoint(endpoint)
			domain := extractDomainFromEndpoint(endpoint)

			apiConfig, exists := config.APIs[domain]
			if !exists {
				apiConfig = &APIConfig{}
				config.APIs[domain] = apiConfig
			}

			apiConfig.Endpoint = endpoint
			apiConfig.Username = username
			config.CurrentAPI = domain

			err := saveConfigStruct(config)
			if err != nil {
				return err
			}

			viper.Set("api", endpoint)

			cli, err := CreateClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			session, err := resultValue(cli.Session().Login(cmd.Context(), username, password))
			if err != nil {
				return fmt.Errorf("%w: %w", bizclient.ErrLoginFailed, err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s as %s (%s)\n", domain, session.User.Username, session.User.Role)

			if !session.ExpiresAt.IsZero() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Session expires %s\n", formatTime(session.ExpiresAt))
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out of the backend",
		Long:  "End the server session and forget the stored token, even when the server cannot be reached",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := CreateClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			result := cli.Session().Logout(cmd.Context())
			if result.IsFailure() {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: server logout failed: %s\n", result.Message())
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Successfully logged out")

			return nil
		},
	}
}

// NewWhoAmICommand creates the whoami command.
func NewWhoAmICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := CreateClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			user, err := resultValue(cli.Session().CurrentUser(cmd.Context()))
			if err != nil {
				if bizapi.IsUnauthorized(err) {
					return constants.ErrNotAuthenticated
				}

				return err
			}

			renderer := &OutputRenderer[bizapi.User]{
				RenderTable: func(w io.Writer, user bizapi.User) error {
					return renderProperties(w, userColumns, userRow(user))
				},
			}

			return renderer.Render(cmd.OutOrStdout(), user, outputFormat())
		},
	}
}

func prompt(w io.Writer, reader *bufio.Reader, label string) string {
	_, _ = io.WriteString(w, label)

	line, _ := reader.ReadString('\n')

	return strings.TrimSpace(line)
}

// promptPassword reads a password without echo when in is a terminal.
func promptPassword(in io.Reader, w io.Writer, reader *bufio.Reader) (string, error) {
	file, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return prompt(w, reader, "Password: "), nil
	}

	fd := int(file.Fd())

	_, _ = io.WriteString(w, "Password: ")

	bytePassword, err := term.ReadPassword(fd)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	_, _ = io.WriteString(w, "\n")

	return string(bytePassword), nil
}
