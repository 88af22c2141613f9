package main

import (
	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Inspect the tags used by entries",
}

var listTagsCmd = &cobra.Command{
	Use:   "list",
	Short: "List every tag with the number of entries carrying it",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeDB, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		tags, err := svc.ListTags(cmd.Context())
		if err != nil {
			return describeError(err)
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(cmd.OutOrStdout(), tags)
		}
		printTags(cmd.OutOrStdout(), tags)
		return nil
	},
}

func initTagsCmd() {
	listTagsCmd.Flags().Bool("json", false, "Print tags as JSON")
	tagsCmd.AddCommand(listTagsCmd)
}
