package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/saurab2057/Filetool/internal/app"
	"github.com/saurab2057/Filetool/internal/config"
	"github.com/saurab2057/Filetool/internal/model"
	"github.com/saurab2057/Filetool/internal/service"
	"github.com/saurab2057/Filetool/internal/validation"
	"github.com/spf13/cobra"
)

// accessChange is the status and role a user subcommand applies. Empty keeps the
// current value.
type accessChange struct {
	use    string
	short  string
	status string
	role   string
}

var accessChanges = []accessChange{
	{use: "promote", short: "Grant the admin role", role: model.RoleAdmin},
	{use: "demote", short: "Revoke the admin role", role: model.RoleUser},
	{use: "ban", short: "Ban an account and end its session", status: model.StatusBanned},
	{use: "flag", short: "Flag an account for review", status: model.StatusFlagged},
	{use: "activate", short: "Lift a ban or flag", status: model.StatusActive},
}

func UserCmd() *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Inspect and manage accounts",
	}

	user.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all accounts with their latest login",
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, closeStore, err := openAdmin(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			users, err := admin.Users(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(users)
		},
	})

	for _, change := range accessChanges {
		user.AddCommand(&cobra.Command{
			Use:   change.use + " <email>",
			Short: change.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runAccessChange(cmd, args[0], change)
			},
		})
	}
	return user
}

func runAccessChange(cmd *cobra.Command, email string, change accessChange) error {
	ctx := cmd.Context()
	store, err := app.OpenStore(ctx, config.LoadDatabase())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(ctx) }()

	account, err := store.Accounts.ByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to find %s: %w", email, err)
	}

	admin := service.NewAdminService(store.Accounts, store.Jobs, store.Settings, store.Metadata)
	overview, err := admin.UpdateUser(ctx, account.ID, change.status, change.role)
	if err != nil {
		return err
	}
	return printJSON(overview)
}

// openAdmin opens the configured store and returns an admin service over it.
func openAdmin(cmd *cobra.Command) (*service.AdminService, func(), error) {
	ctx := cmd.Context()
	store, err := app.OpenStore(ctx, config.LoadDatabase())
	if err != nil {
		return nil, nil, err
	}
	admin := service.NewAdminService(store.Accounts, store.Jobs, store.Settings, store.Metadata)
	return admin, func() { _ = store.Close(ctx) }, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
