package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bundlegen/bundlegen/internal/manifest"
)

var changelogCmd = &cobra.Command{
	Use:   "changelog <filetype> <version>",
	Short: "Show the changelog edit URL for a published version",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		input, _ := cmd.Flags().GetString("input")
		store, err := openLedger(input, log)
		if err != nil {
			return err
		}
		defer store.Close()
		return printChangelogURL(store, args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(changelogCmd)
	changelogCmd.Flags().StringP("input", "i", manifest.DefaultInputLTS, "LTS manifest path")
}
