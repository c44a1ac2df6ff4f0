package commands_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/bizapi/cmd/bizctl/commands"
	"github.com/fivetwenty-io/bizapi/internal/constants"
	"github.com/fivetwenty-io/bizapi/pkg/bizclient"
)

func readConfigFile(t *testing.T, path string) commands.Config {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var config commands.Config
	require.NoError(t, yaml.Unmarshal(data, &config))

	return config
}

func TestLoginWhoAmILogout(t *testing.T) {
	env := newCLIEnv(t)
	env.signedOut()

	domain := strings.TrimPrefix(env.server.URL, "http://")

	out, err := run(t, commands.NewLoginCommand(), "--username", "admin", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in to "+domain+" as admin (admin)")

	config := readConfigFile(t, env.configPath)
	assert.Equal(t, domain, config.CurrentAPI)
	require.Contains(t, config.APIs, domain)
	assert.Equal(t, env.server.URL, config.APIs[domain].Endpoint)
	assert.Equal(t, "admin", config.APIs[domain].Username)
	assert.NotEmpty(t, config.APIs[domain].Token)
	require.NotNil(t, config.APIs[domain].TokenExpiresAt)
	assert.True(t, config.APIs[domain].TokenExpiresAt.After(time.Now()))

	out, err = run(t, commands.NewWhoAmICommand())
	require.NoError(t, err)
	assert.Contains(t, out, "usr-admin")

	out, err = run(t, commands.NewLogoutCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully logged out")

	config = readConfigFile(t, env.configPath)
	assert.Empty(t, config.APIs[domain].Token)
	assert.Nil(t, config.APIs[domain].TokenExpiresAt)

	_, err = run(t, commands.NewWhoAmICommand())
	require.ErrorIs(t, err, constants.ErrNotAuthenticated)
}

func TestLoginUsesCurrentAPI(t *testing.T) {
	env := newCLIEnv(t)
	env.signedOut()

	_, err := run(t, commands.NewLoginCommand(), "--username", "agent", "--password", "secret")
	require.NoError(t, err)

	// Without --api the current API from the config file is used.
	viper.Set("api", "")

	out, err := run(t, commands.NewWhoAmICommand())
	require.NoError(t, err)
	assert.Contains(t, out, "usr-agent")
}

func TestLoginFailure(t *testing.T) {
	env := newCLIEnv(t)
	env.signedOut()

	_, err := run(t, commands.NewLoginCommand(), "--username", "admin", "--password", "wrong")
	require.ErrorIs(t, err, bizclient.ErrLoginFailed)

	config := readConfigFile(t, env.configPath)
	domain := strings.TrimPrefix(env.server.URL, "http://")
	assert.Empty(t, config.APIs[domain].Token)
}

func TestLoginPromptsForCredentials(t *testing.T) {
	env := newCLIEnv(t)
	env.signedOut()

	cmd := commands.NewLoginCommand()
	cmd.SetIn(strings.NewReader("admin\nsecret\n"))

	out, err := run(t, cmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Username: ")
	assert.Contains(t, out, "as admin")
}

func TestLogoutWithoutAPI(t *testing.T) {
	newCLIEnv(t)
	viper.Set("api", "")

	_, err := run(t, commands.NewLogoutCommand())
	require.ErrorIs(t, err, constants.ErrNoAPIConfigured)
}

func TestConfigPersisterUnknownAPI(t *testing.T) {
	newCLIEnv(t)

	err := commands.NewConfigPersister().UpdateAPIToken("unknown.example.com", "token", time.Now())
	require.ErrorIs(t, err, constants.ErrAPIConfigNotFound)
}

func TestExpiredSessionNeedsLogin(t *testing.T) {
	env := newCLIEnv(t)
	env.signedOut()

	_, err := run(t, commands.NewLoginCommand(), "--username", "admin", "--password", "secret")
	require.NoError(t, err)

	domain := strings.TrimPrefix(env.server.URL, "http://")
	config := readConfigFile(t, env.configPath)

	err = commands.NewConfigPersister().UpdateAPIToken(domain, config.APIs[domain].Token, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = run(t, commands.NewWhoAmICommand())
	require.ErrorIs(t, err, constants.ErrNotAuthenticated)
}
