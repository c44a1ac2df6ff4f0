package commands_test

import (
	"encoding/json"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/bizapi/cmd/bizctl/commands"
	"github.com/fivetwenty-io/bizapi/internal/constants"
	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

func showSettings(t *testing.T) bizapi.PaginationSettings {
	t.Helper()

	viper.Set("output", constants.FormatJSON)
	defer viper.Set("output", constants.FormatTable)

	out, err := run(t, commands.NewSettingsCommand(), "show")
	require.NoError(t, err)

	var settings bizapi.PaginationSettings
	require.NoError(t, json.Unmarshal([]byte(out), &settings), out)

	return settings
}

func TestSettingsDefaults(t *testing.T) {
	newCLIEnv(t)

	assert.Equal(t, bizapi.DefaultPaginationSettings(), showSettings(t))

	out, err := run(t, commands.NewSettingsCommand(), "show")
	require.NoError(t, err)
	assert.Contains(t, out, "agent-requests")
	assert.Contains(t, out, "max")
}

func TestSettingsSetDrivesListPageSize(t *testing.T) {
	newCLIEnv(t)

	out, err := run(t, commands.NewSettingsCommand(), "set", "products", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Page size for products is now 7")

	assert.Equal(t, 7, showSettings(t).Products)

	out, err = run(t, commands.NewProductsCommand(), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Page 1 of 4 (25 products)")

	// Other entity types keep their own size.
	out, err = run(t, commands.NewCustomersCommand(), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Page 1 of 3 (25 customers)")
}

func TestSettingsMaxClampsSizes(t *testing.T) {
	newCLIEnv(t)

	_, err := run(t, commands.NewSettingsCommand(), "set", "orders", "40")
	require.NoError(t, err)

	out, err := run(t, commands.NewSettingsCommand(), "set", "max", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "Page size for max is now 20")

	settings := showSettings(t)
	assert.Equal(t, 20, settings.MaxPageSize)
	assert.Equal(t, 20, settings.Orders)
	assert.Equal(t, 10, settings.Products)
}

func TestSettingsReset(t *testing.T) {
	newCLIEnv(t)

	_, err := run(t, commands.NewSettingsCommand(), "set", "agent-requests", "3")
	require.NoError(t, err)

	out, err := run(t, commands.NewSettingsCommand(), "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "reset to defaults")

	assert.Equal(t, bizapi.DefaultPaginationSettings(), showSettings(t))
}

func TestSettingsSetInvalid(t *testing.T) {
	newCLIEnv(t)

	_, err := run(t, commands.NewSettingsCommand(), "set", "widgets", "5")
	require.ErrorIs(t, err, constants.ErrUnknownEntityType)

	_, err = run(t, commands.NewSettingsCommand(), "set", "products", "0")
	require.ErrorIs(t, err, constants.ErrInvalidPageSize)

	_, err = run(t, commands.NewSettingsCommand(), "set", "products", "many")
	require.ErrorIs(t, err, constants.ErrInvalidPageSize)
}

func TestUnreadableSettingsFallBackToDefaults(t *testing.T) {
	newCLIEnv(t)

	// A directory cannot be read as a settings file.
	viper.Set("settings.path", t.TempDir())

	out, err := run(t, commands.NewProductsCommand(), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Page 1 of 3 (25 products)")

	_, err = run(t, commands.NewSettingsCommand(), "show")
	assert.Error(t, err)
}
