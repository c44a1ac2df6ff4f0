package commands_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/bizapi/internal/fakeapi"
)

const testToken = "cli-test-token"

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

// cliEnv points viper at a scratch config and a fresh fake backend. Tests
// using it share viper's global state and must not run in parallel.
type cliEnv struct {
	server     *httptest.Server
	configPath string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()

	server := httptest.NewServer(fakeapi.New(fakeapi.SeedDataset(25), fakeapi.WithStaticToken(testToken)))
	t.Cleanup(server.Close)

	env := &cliEnv{
		server:     server,
		configPath: filepath.Join(dir, "config.yml"),
	}

	viper.Set("config", env.configPath)
	viper.Set("settings.path", filepath.Join(dir, "pagination.yml"))
	viper.Set("output", "table")
	viper.Set("log_level", "disabled")
	viper.Set("api", server.URL)
	viper.Set("token", testToken)

	return env
}

// signedOut drops the static token so the config file supplies credentials.
func (e *cliEnv) signedOut() {
	viper.Set("token", "")
}

// run executes cmd under a bare root with args and returns what it printed.
func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	root := &cobra.Command{Use: "bizctl", SilenceUsage: true, SilenceErrors: true}
	root.AddCommand(cmd)

	var out, errOut bytes.Buffer

	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(&bytes.Buffer{})
	root.SetArgs(append([]string{cmd.Name()}, args...))

	err := root.ExecuteContext(context.Background())

	return out.String(), err
}
