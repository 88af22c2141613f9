package journal

import (
	"time"

	"github.com/unowned-ai/daylog/pkg/textutil"
)

const (
	dateLayout = "2006-01-02"
	// timestampLayout is fixed width so stored timestamps compare and sort as text.
	timestampLayout = "2006-01-02T15:04:05.000000000Z"
)

// Entry is one journal record. At most one Entry exists per calendar day.
type Entry struct {
	ID            int64     `json:"id"`
	EntryDate     time.Time `json:"entry_date"`
	Title         string    `json:"title,omitempty"`
	ContentRich   string    `json:"content_rich,omitempty"`
	PrimaryMoodID int       `json:"primary_mood_id"`
	TagsRaw       string    `json:"tags_raw,omitempty"`
	WordCount     int       `json:"word_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DisplayView is the read-only projection handed to callers.
type DisplayView struct {
	ID            int64     `json:"id"`
	EntryDate     time.Time `json:"entry_date"`
	Title         string    `json:"title,omitempty"`
	PreviewText   string    `json:"preview_text"`
	PrimaryMoodID int       `json:"primary_mood_id"`
	TagsRaw       string    `json:"tags_raw,omitempty"`
	WordCount     int       `json:"word_count"`
}

// SaveRequest creates an entry when ID is 0 and updates entry ID otherwise.
type SaveRequest struct {
	ID            int64     `json:"id"`
	EntryDate     time.Time `json:"entry_date"`
	Title         string    `json:"title,omitempty"`
	PrimaryMoodID int       `json:"primary_mood_id"`
	TagsRaw       string    `json:"tags_raw,omitempty"`
	ContentRich   string    `json:"content_rich,omitempty"`
}

// ToDisplay converts an entry into its display view.
func ToDisplay(e Entry) DisplayView {
	return DisplayView{
		ID:            e.ID,
		EntryDate:     e.EntryDate,
		Title:         e.Title,
		PreviewText:   textutil.Preview(e.ContentRich),
		PrimaryMoodID: e.PrimaryMoodID,
		TagsRaw:       e.TagsRaw,
		WordCount:     e.WordCount,
	}
}

func toDisplays(entries []Entry) []DisplayView {
	views := make([]DisplayView, 0, len(entries))
	for _, e := range entries {
		views = append(views, ToDisplay(e))
	}
	return views
}

// DateOf returns the calendar day of t as midnight UTC. The day is taken in
// t's own location, so 2024-01-01T23:30-05:00 is 2024-01-01.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a 'YYYY-MM-DD' calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// FormatDate renders the calendar day of t as 'YYYY-MM-DD'.
func FormatDate(t time.Time) string {
	return DateOf(t).Format(dateLayout)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(timestampLayout, s)
}
