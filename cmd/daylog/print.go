package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/gosuri/uitable"
	"github.com/unowned-ai/daylog/pkg/journal"
)

// Color palette "Blue Moon" from https://gogh-co.github.io/Gogh/
const (
	colorGray   = "#353b52"
	colorWhite  = "#ffffff"
	colorRed    = "#e61f44"
	colorPurple = "#b9a3eb"
	colorBlue   = "#89ddff"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color(colorBlue)).
			Background(lipgloss.Color(colorGray)).
			Padding(0, 2)
	labelStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color(colorPurple)).
			Width(10)
	textStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(colorWhite))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorRed))
)

// tableColWidth bounds every column of entry tables.
const tableColWidth = 60

func printEntry(w io.Writer, v journal.DisplayView) {
	title := v.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintln(w, titleStyle.Render(journal.FormatDate(v.EntryDate)+"  "+title))

	row := func(label, value string) {
		fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), textStyle.Render(value)))
	}
	row("ID", strconv.FormatInt(v.ID, 10))
	row("Mood", strconv.Itoa(v.PrimaryMoodID))
	if v.TagsRaw != "" {
		row("Tags", v.TagsRaw)
	}
	row("Words", strconv.Itoa(v.WordCount))
	if v.PreviewText != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, textStyle.Render(v.PreviewText))
	}
}

func printEntryTable(w io.Writer, views []journal.DisplayView) {
	if len(views) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = tableColWidth
	tbl.AddRow("ID", "DATE", "MOOD", "WORDS", "TITLE", "TAGS", "PREVIEW")
	for _, v := range views {
		tbl.AddRow(v.ID, journal.FormatDate(v.EntryDate), v.PrimaryMoodID, v.WordCount, v.Title, v.TagsRaw, v.PreviewText)
	}
	fmt.Fprintln(w, tbl)
}

func printTags(w io.Writer, tags []journal.TagCount) {
	if len(tags) == 0 {
		fmt.Fprintln(w, "No tags found.")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("TAG", "ENTRIES")
	for _, t := range tags {
		tbl.AddRow(t.Tag, t.Count)
	}
	fmt.Fprintln(w, tbl)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// describeError renders a service failure for the terminal, naming the entry
// that holds the day on date conflicts.
func describeError(err error) error {
	var svcErr *journal.Error
	if !errors.As(err, &svcErr) {
		return err
	}
	msg := svcErr.Message
	if svcErr.Conflict != nil && svcErr.Conflict.ConflictID != nil {
		msg = fmt.Sprintf("%s (existing entry id: %d)", msg, *svcErr.Conflict.ConflictID)
	}
	return errors.New(errorStyle.Render(msg))
}
