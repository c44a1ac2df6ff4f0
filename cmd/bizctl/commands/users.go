package commands

import (
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

var userColumns = []string{"ID", "Username", "Full Name", "Email", "Role", "Active"}

func userRow(user bizapi.User) []string {
	return []string{
		user.ID,
		user.Username,
		user.FullName,
		user.Email,
		user.Role,
		formatBool(user.Active),
	}
}

// NewUsersCommand creates the users command group.
func NewUsersCommand() *cobra.Command {
	return newResourceCommand(&resourceSpec[bizapi.User]{
		name:     "users",
		singular: "user",
		aliases:  []string{"user", "u"},
		entity:   bizapi.EntityUsers,
		resource: func(cli bizapi.Client) bizapi.ResourceClient[bizapi.User] {
			return cli.Users()
		},
		columns: userColumns,
		row:     userRow,
	})
}
