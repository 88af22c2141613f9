package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/unowned-ai/daylog/pkg/journal"
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "Manage journal entries",
	Long:  `Create, read, update, list and delete journal entries. A day holds at most one entry.`,
}

var createEntryCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the entry for a day",
	Long: `Create the entry for a day (today unless --date is given). Fails when the day
already has an entry, naming that entry's id.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := journal.SaveRequest{EntryDate: today()}
		if err := applyEntryFlags(cmd.Flags(), &req); err != nil {
			return err
		}

		svc, closeDB, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		view, err := svc.Save(cmd.Context(), &req)
		if err != nil {
			return describeError(err)
		}
		printEntry(cmd.OutOrStdout(), view)
		return nil
	},
}

var updateEntryCmd = &cobra.Command{
	Use:   "update [entry-id]",
	Short: "Update an entry",
	Long:  `Update an entry. Only the fields given as flags change; moving it onto an occupied day fails.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseEntryID(args[0])
		if err != nil {
			return err
		}

		svc, closeDB, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		current, err := svc.GetEntry(cmd.Context(), id)
		if err != nil {
			return describeError(err)
		}

		req := journal.SaveRequest{
			ID:            current.ID,
			EntryDate:     current.EntryDate,
			Title:         current.Title,
			PrimaryMoodID: current.PrimaryMoodID,
			TagsRaw:       current.TagsRaw,
			ContentRich:   current.ContentRich,
		}
		if err := applyEntryFlags(cmd.Flags(), &req); err != nil {
			return err
		}

		view, err := svc.Save(cmd.Context(), &req)
		if err != nil {
			return describeError(err)
		}
		printEntry(cmd.OutOrStdout(), view)
		return nil
	},
}

var getEntryCmd = &cobra.Command{
	Use:   "get [entry-id]",
	Short: "Get an entry by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseEntryID(args[0])
		if err != nil {
			return err
		}

		svc, closeDB, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			entry, err := svc.GetEntry(cmd.Context(), id)
			if err != nil {
				return describeError(err)
			}
			return printJSON(cmd.OutOrStdout(), entry)
		}

		view, err := svc.GetByID(cmd.Context(), id)
		if err != nil {
			return describeError(err)
		}
		printEntry(cmd.OutOrStdout(), view)
		return nil
	},
}

var dayEntryCmd = &cobra.Command{
	Use:   "day [YYYY-MM-DD]",
	Short: "Show the entry of a day (today by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day := today()
		if len(args) == 1 {
			parsed, err := parseDateFlag("date", args[0])
			if err != nil {
				return err
			}
			day = parsed
		}

		svc, closeDB, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		view, err := svc.GetByDate(cmd.Context(), day)
		if err != nil {
			return describeError(err)
		}
		printEntry(cmd.OutOrStdout(), view)
		return nil
	},
}

var listEntriesCmd = &cobra.Command{
	Use:   "list",
	Short: "List every entry, most recent day first",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeDB, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		views, err := svc.GetAll(cmd.Context())
		if err != nil {
			return describeError(err)
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(cmd.OutOrStdout(), views)
		}
		printEntryTable(cmd.OutOrStdout(), views)
		return nil
	},
}

var deleteEntryCmd = &cobra.Command{
	Use:   "delete [entry-id]",
	Short: "Permanently delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseEntryID(args[0])
		if err != nil {
			return err
		}

		svc, closeDB, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		if err := svc.Delete(cmd.Context(), id); err != nil {
			return describeError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Entry %d deleted.\n", id)
		return nil
	},
}

var dedupeEntriesCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Remove duplicated entry rows",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeDB, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		removed, err := svc.Deduplicate(cmd.Context())
		if err != nil {
			return describeError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d duplicate entries.\n", removed)
		return nil
	},
}

func initEntriesCmd() {
	for _, c := range []*cobra.Command{createEntryCmd, updateEntryCmd} {
		c.Flags().String("date", "", "Day of the entry, YYYY-MM-DD")
		c.Flags().Int("mood", 0, "Primary mood id (positive)")
		c.Flags().String("title", "", "Entry title")
		c.Flags().String("content", "", "Entry body as HTML")
		c.Flags().String("content-file", "", "Read the entry body from a file ('-' for stdin)")
		c.Flags().String("tags", "", "Comma separated tags")
		c.MarkFlagsMutuallyExclusive("content", "content-file")
	}
	createEntryCmd.MarkFlagRequired("mood")

	getEntryCmd.Flags().Bool("json", false, "Print the full entry as JSON")
	listEntriesCmd.Flags().Bool("json", false, "Print entries as JSON")

	entriesCmd.AddCommand(
		createEntryCmd,
		updateEntryCmd,
		getEntryCmd,
		dayEntryCmd,
		listEntriesCmd,
		deleteEntryCmd,
		dedupeEntriesCmd,
	)
}

// applyEntryFlags copies the entry flags that were set onto req.
func applyEntryFlags(flags *pflag.FlagSet, req *journal.SaveRequest) error {
	if flags.Changed("date") {
		raw, _ := flags.GetString("date")
		day, err := parseDateFlag("date", raw)
		if err != nil {
			return err
		}
		req.EntryDate = day
	}
	if flags.Changed("mood") {
		req.PrimaryMoodID, _ = flags.GetInt("mood")
	}
	if flags.Changed("title") {
		req.Title, _ = flags.GetString("title")
	}
	if flags.Changed("tags") {
		raw, _ := flags.GetString("tags")
		req.TagsRaw = strings.Join(journal.SplitTags(raw), ",")
	}
	if flags.Changed("content") {
		req.ContentRich, _ = flags.GetString("content")
	}
	if flags.Changed("content-file") {
		path, _ := flags.GetString("content-file")
		content, err := readContent(path)
		if err != nil {
			return err
		}
		req.ContentRich = content
	}
	return nil
}

func readContent(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read content from '%s': %w", path, err)
	}
	return string(data), nil
}

func parseEntryID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entry ID: %q", raw)
	}
	return id, nil
}

func parseDateFlag(name, raw string) (time.Time, error) {
	day, err := journal.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: expected YYYY-MM-DD", name, raw)
	}
	return day, nil
}

func parseOptionalDate(name, raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	day, err := parseDateFlag(name, raw)
	if err != nil {
		return nil, err
	}
	return &day, nil
}

// today is the current calendar day in local time.
func today() time.Time {
	return journal.DateOf(time.Now())
}
