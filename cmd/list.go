package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bundlegen/bundlegen/internal/manifest"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List published versions in the ledger",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		store, err := openLedger(input, log)
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.List()
		if err != nil {
			return err
		}
		for _, rec := range records {
			fmt.Printf("%s\t%s\t%s\t%s\n", rec.Filetype, rec.Version, rec.Filename, rec.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringP("input", "i", manifest.DefaultInputLTS, "LTS manifest path")
}
