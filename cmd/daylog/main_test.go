package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unowned-ai/daylog/pkg/journal"
)

func TestMain(m *testing.M) {
	initCmd()
	os.Exit(m.Run())
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLIEntriesFlow(t *testing.T) {
	dbFile := filepath.Join(t.TempDir(), "cli.db")

	_, err := runCLI(t, "--db", dbFile, "entries", "create", "--date", "2024-01-15", "--mood", "2", "--title", "Snow day", "--content", "<p>Built a snowman</p>", "--tags", "winter, family")
	require.NoError(t, err)

	_, err = runCLI(t, "--db", dbFile, "entries", "create", "--date", "2024-01-15", "--mood", "2", "--title", "Snow day", "--content", "<p>Built a snowman</p>", "--tags", "winter, family")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Contains(t, err.Error(), "existing entry id: 1")

	out, err := runCLI(t, "--db", dbFile, "search", "snow", "--from", "2024-01-01", "--to", "2024-01-31", "--json")
	require.NoError(t, err)
	var res journal.SearchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, 1, res.TotalCount)
	assert.Equal(t, "Snow day", res.Items[0].Title)
	assert.Equal(t, "winter,family", res.Items[0].TagsRaw)
	assert.Equal(t, 3, res.Items[0].WordCount)

	out, err = runCLI(t, "--db", dbFile, "tags", "list", "--json")
	require.NoError(t, err)
	var tags []journal.TagCount
	require.NoError(t, json.Unmarshal([]byte(out), &tags))
	assert.Equal(t, []journal.TagCount{{Tag: "family", Count: 1}, {Tag: "winter", Count: 1}}, tags)

	_, err = runCLI(t, "--db", dbFile, "entries", "day", "2024-01-16")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestParseMoods(t *testing.T) {
	moods, err := parseMoods(" 1, 3,,5 ")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5}, moods)

	moods, err = parseMoods("")
	require.NoError(t, err)
	assert.Nil(t, moods)

	_, err = parseMoods("1,happy")
	assert.Error(t, err)
}

func TestParseEntryID(t *testing.T) {
	id, err := parseEntryID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "0", "-3", "abc"} {
		_, err := parseEntryID(raw)
		assert.Error(t, err, "raw %q", raw)
	}
}

func TestDescribeErrorPassesThroughPlainErrors(t *testing.T) {
	plain := errors.New("boom")
	assert.Same(t, plain, describeError(plain))
}
