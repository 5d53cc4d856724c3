package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func SettingsCmd() *cobra.Command {
	settings := &cobra.Command{
		Use:   "settings",
		Short: "Read or change the system configuration",
	}

	settings.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the system configuration, creating defaults if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, closeStore, err := openAdmin(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			current, err := admin.Settings(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(current)
		},
	})

	settings.AddCommand(&cobra.Command{
		Use:     "set <json>",
		Short:   "Merge a JSON object into the system configuration",
		Example: `  filetool settings set '{"maxJobsPerHour": 200}'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch map[string]json.RawMessage
			if err := json.Unmarshal([]byte(args[0]), &patch); err != nil {
				return fmt.Errorf("settings must be a JSON object: %w", err)
			}

			admin, closeStore, err := openAdmin(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			updated, err := admin.UpdateSettings(cmd.Context(), patch)
			if err != nil {
				return err
			}
			return printJSON(updated)
		},
	})
	return settings
}
