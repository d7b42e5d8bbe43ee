package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bundlegen/bundlegen/internal/console"
	"github.com/bundlegen/bundlegen/internal/manifest"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all published versions from the ledger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		force, _ := cmd.Flags().GetBool("force")

		if !force {
			confirmed, err := console.Confirm(os.Stdin, os.Stdout,
				"Are you sure you want to reset the versions database?")
			if err != nil {
				return err
			}
			if !confirmed {
				fmt.Println("Wise.")
				return nil
			}
		}

		store, err := openLedger(input, log)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Reset(); err != nil {
			return err
		}
		log.Info("version ledger reset")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().StringP("input", "i", manifest.DefaultInputLTS, "LTS manifest path")
	resetCmd.Flags().BoolP("force", "f", false, "skip the confirmation prompt")
}
