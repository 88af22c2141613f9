package journal

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datePtr(t *testing.T, s string) *time.Time {
	t.Helper()
	d := mustDate(t, s)
	return &d
}

func viewDates(views []DisplayView) []string {
	dates := make([]string, len(views))
	for i, v := range views {
		dates[i] = FormatDate(v.EntryDate)
	}
	return dates
}

func TestSearchPagination(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, day := range []string{"2024-01-03", "2024-01-01", "2024-01-05", "2024-01-02", "2024-01-04"} {
		saveEntry(t, svc, SaveRequest{EntryDate: mustDate(t, day), PrimaryMoodID: 1, Title: "walk"})
	}

	first, err := svc.Search(ctx, SearchParams{Query: "walk", PageIndex: 0, PageSize: 2})
	require.NoError(t, err)
	second, err := svc.Search(ctx, SearchParams{Query: "walk", PageIndex: 1, PageSize: 2})
	require.NoError(t, err)
	third, err := svc.Search(ctx, SearchParams{Query: "walk", PageIndex: 2, PageSize: 2})
	require.NoError(t, err)
	beyond, err := svc.Search(ctx, SearchParams{Query: "walk", PageIndex: 3, PageSize: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-01-05", "2024-01-04"}, viewDates(first.Items))
	assert.Equal(t, []string{"2024-01-03", "2024-01-02"}, viewDates(second.Items))
	assert.Equal(t, []string{"2024-01-01"}, viewDates(third.Items))
	assert.Empty(t, beyond.Items)

	for _, res := range []SearchResult{first, second, third, beyond} {
		assert.Equal(t, 5, res.TotalCount)
	}
}

func TestSearchPageIndexBeyondRange(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	saveEntry(t, svc, SaveRequest{EntryDate: mustDate(t, "2024-01-01"), PrimaryMoodID: 1})

	for _, idx := range []int{math.MaxInt / 10, math.MaxInt} {
		res, err := svc.Search(ctx, SearchParams{PageIndex: idx, PageSize: 20})
		require.NoError(t, err)
		assert.Empty(t, res.Items, "page %d", idx)
		assert.Equal(t, 1, res.TotalCount)
	}
}

func TestSearchDefaultsAndValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	start := mustDate(t, "2024-01-01")
	for i := 0; i < DefaultPageSize+3; i++ {
		saveEntry(t, svc, SaveRequest{EntryDate: start.AddDate(0, 0, i), PrimaryMoodID: 1})
	}

	res, err := svc.Search(ctx, SearchParams{})
	require.NoError(t, err)
	assert.Len(t, res.Items, DefaultPageSize)
	assert.Equal(t, DefaultPageSize+3, res.TotalCount)

	_, err = svc.Search(ctx, SearchParams{PageIndex: -1})
	requireServiceError(t, err, KindValidation)

	_, err = svc.Search(ctx, SearchParams{PageSize: -5})
	requireServiceError(t, err, KindValidation)
}

func TestSearchFreeTextWithinJanuary(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	seed := []SaveRequest{
		{EntryDate: mustDate(t, "2023-12-31"), Title: "Mood before", PrimaryMoodID: 1},
		{EntryDate: mustDate(t, "2024-01-01"), Title: "Quiet day", ContentRich: "<p>nothing much</p>", PrimaryMoodID: 1},
		{EntryDate: mustDate(t, "2024-01-15"), Title: "MOOD swings", PrimaryMoodID: 2},
		{EntryDate: mustDate(t, "2024-01-20"), Title: "Groceries", ContentRich: "<p>my mood improved</p>", PrimaryMoodID: 3},
		{EntryDate: mustDate(t, "2024-01-31"), Title: "Month end", ContentRich: "<p>Good Mood</p>", PrimaryMoodID: 4},
		{EntryDate: mustDate(t, "2024-02-01"), Title: "mood after", PrimaryMoodID: 1},
	}
	for _, req := range seed {
		saveEntry(t, svc, req)
	}

	res, err := svc.Search(ctx, SearchParams{
		Query: "mood",
		From:  datePtr(t, "2024-01-01"),
		To:    datePtr(t, "2024-01-31"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-01-31", "2024-01-20", "2024-01-15"}, viewDates(res.Items))
	assert.Equal(t, 3, res.TotalCount)
}

func TestSearchToIncludesWholeDay(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	saveEntry(t, svc, SaveRequest{EntryDate: mustDate(t, "2024-01-31"), PrimaryMoodID: 1})

	// A To with a time of day still covers the whole day.
	to := time.Date(2024, 1, 31, 0, 0, 1, 0, time.UTC)
	res, err := svc.Search(ctx, SearchParams{To: &to})
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalCount)

	res, err = svc.Search(ctx, SearchParams{To: datePtr(t, "2024-01-30")})
	require.NoError(t, err)
	assert.Zero(t, res.TotalCount)
}

func TestSearchMoodsAndTags(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	seed := []SaveRequest{
		{EntryDate: mustDate(t, "2024-04-01"), PrimaryMoodID: 1, TagsRaw: "work,travel"},
		{EntryDate: mustDate(t, "2024-04-02"), PrimaryMoodID: 2, TagsRaw: "work"},
		{EntryDate: mustDate(t, "2024-04-03"), PrimaryMoodID: 3, TagsRaw: "travel,family"},
		{EntryDate: mustDate(t, "2024-04-04"), PrimaryMoodID: 2, TagsRaw: "homework"},
	}
	for _, req := range seed {
		saveEntry(t, svc, req)
	}

	t.Run("MoodSet", func(t *testing.T) {
		res, err := svc.Search(ctx, SearchParams{MoodIDs: []int{2, 3}})
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-04-04", "2024-04-03", "2024-04-02"}, viewDates(res.Items))
	})

	t.Run("TagsAreANDed", func(t *testing.T) {
		res, err := svc.Search(ctx, SearchParams{Tags: []string{"work", "travel"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-04-01"}, viewDates(res.Items))
	})

	t.Run("TagsMatchSubstrings", func(t *testing.T) {
		res, err := svc.Search(ctx, SearchParams{Tags: []string{"work"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-04-04", "2024-04-02", "2024-04-01"}, viewDates(res.Items))
	})

	t.Run("Combined", func(t *testing.T) {
		res, err := svc.Search(ctx, SearchParams{MoodIDs: []int{2}, Tags: []string{"work"}, From: datePtr(t, "2024-04-03")})
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-04-04"}, viewDates(res.Items))
		assert.Equal(t, 1, res.TotalCount)
	})
}

func TestGetByDateAndGetAll(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetByDate(ctx, mustDate(t, "2024-01-01"))
	requireServiceError(t, err, KindNotFound)

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	saveEntry(t, svc, SaveRequest{EntryDate: mustDate(t, "2024-01-01"), PrimaryMoodID: 1, Title: "older"})
	saveEntry(t, svc, SaveRequest{EntryDate: mustDate(t, "2024-01-09"), PrimaryMoodID: 1, Title: "newer"})

	got, err := svc.GetByDate(ctx, time.Date(2024, 1, 9, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "newer", got.Title)

	all, err = svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-09", "2024-01-01"}, viewDates(all))

	_, err = svc.GetByID(ctx, 9999)
	requireServiceError(t, err, KindNotFound)
}

func TestGetEntryReturnsContent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	view := saveEntry(t, svc, SaveRequest{EntryDate: mustDate(t, "2024-01-01"), PrimaryMoodID: 1, ContentRich: "<p>full <i>body</i></p>"})

	e, err := svc.GetEntry(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, "<p>full <i>body</i></p>", e.ContentRich)
	assert.False(t, e.CreatedAt.IsZero())

	_, err = svc.GetEntry(ctx, view.ID+1)
	requireServiceError(t, err, KindNotFound)
}
