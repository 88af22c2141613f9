package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/unowned-ai/daylog/pkg/journal"
)

var (
	searchFromFlag     string
	searchToFlag       string
	searchMoodsFlag    string
	searchTagsFlag     string
	searchPageFlag     int
	searchPageSizeFlag int
	searchJSONFlag     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search entries by text, date range, moods and tags",
	Long: `Search entries, most recent day first. The text matches titles and contents
case-insensitively; --moods matches any of the given ids; --tags requires all of them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := journal.SearchParams{
			PageIndex: searchPageFlag,
			PageSize:  searchPageSizeFlag,
			Tags:      journal.SplitTags(searchTagsFlag),
		}
		if len(args) == 1 {
			params.Query = args[0]
		}

		var err error
		if params.From, err = parseOptionalDate("from", searchFromFlag); err != nil {
			return err
		}
		if params.To, err = parseOptionalDate("to", searchToFlag); err != nil {
			return err
		}
		if params.MoodIDs, err = parseMoods(searchMoodsFlag); err != nil {
			return err
		}

		svc, closeDB, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		res, err := svc.Search(cmd.Context(), params)
		if err != nil {
			return describeError(err)
		}

		if searchJSONFlag {
			return printJSON(cmd.OutOrStdout(), res)
		}
		printEntryTable(cmd.OutOrStdout(), res.Items)
		if len(res.Items) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "\nShowing %d of %d matching entries (page %d).\n", len(res.Items), res.TotalCount, searchPageFlag)
		}
		return nil
	},
}

func initSearchCmd() {
	searchCmd.Flags().StringVar(&searchFromFlag, "from", "", "Earliest day to include, YYYY-MM-DD")
	searchCmd.Flags().StringVar(&searchToFlag, "to", "", "Latest day to include, YYYY-MM-DD")
	searchCmd.Flags().StringVar(&searchMoodsFlag, "moods", "", "Comma separated mood ids")
	searchCmd.Flags().StringVar(&searchTagsFlag, "tags", "", "Comma separated tags")
	searchCmd.Flags().IntVar(&searchPageFlag, "page", 0, "Zero-based page number")
	searchCmd.Flags().IntVar(&searchPageSizeFlag, "page-size", journal.DefaultPageSize, "Entries per page")
	searchCmd.Flags().BoolVar(&searchJSONFlag, "json", false, "Print the result as JSON")
}

func parseMoods(raw string) ([]int, error) {
	var moods []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid mood id %q", part)
		}
		moods = append(moods, id)
	}
	return moods, nil
}
