package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igfakecheck/pkg/detector"
)

func ip(v int) *int { return &v }

func sampleResults() []detector.Result {
	bio := "Café ☕ & <pastries> \"fresh\" daily 🥐"
	return []detector.Result{
		detector.Analyze(detector.Profile{Username: "user12345", PostCount: ip(0), FollowerCount: ip(3), FollowingCount: ip(60)}),
		detector.Analyze(detector.Profile{Username: "baker", PostCount: ip(40), FollowerCount: ip(900), FollowingCount: ip(300), Bio: &bio}),
		detector.ErrorResult("ghost", "not_found error (code 404): User not found"),
	}
}

func TestMarshalFormat(t *testing.T) {
	data, err := Marshal(sampleResults())
	require.NoError(t, err)
	text := string(data)

	// four-space indentation
	assert.True(t, strings.HasPrefix(text, "[\n    {\n        \"Username\": \"user12345\""), text)

	// text is written verbatim
	assert.Contains(t, text, `"Bio": "Café ☕ & <pastries> \"fresh\" daily 🥐"`)
	assert.NotContains(t, text, `\u003c`)
	assert.NotContains(t, text, `\u0026`)

	assert.Contains(t, text, `"Fake Account": "Yes"`)
	assert.Contains(t, text, `"Bio": "No bio"`)
	assert.Contains(t, text, `"Posts": 0`)
}

func TestMarshalErrorRowKeys(t *testing.T) {
	data, err := Marshal([]detector.Result{detector.ErrorResult("ghost", "gone")})
	require.NoError(t, err)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 1)

	assert.Equal(t, map[string]interface{}{
		"Username":     "ghost",
		"Fake Account": "Error",
		"Error":        "gone",
	}, rows[0])
}

func TestMarshalEmpty(t *testing.T) {
	data, err := Marshal(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFilename)
	results := sampleResults()

	require.NoError(t, Write(path, results))

	got, err := Read(path)
	require.NoError(t, err)
	if diff := cmp.Diff(results, got); diff != "" {
		t.Errorf("report round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFilename)

	require.NoError(t, Write(path, sampleResults()))
	require.NoError(t, Write(path, sampleResults()[:1]))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, DefaultFilename, entries[0].Name())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestReadErrors(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Username":`), 0644))
	_, err = Read(path)
	assert.Error(t, err)
}

func TestConstants(t *testing.T) {
	assert.Equal(t, "instagram_users_report.json", DefaultFilename)
	assert.Equal(t, "application/json", MIMEType)
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleResults())
	assert.Equal(t, Summary{Total: 3, Fake: 1, Genuine: 1, Errors: 1}, s)
	assert.InDelta(t, 0.5, s.FakeRatio(), 0.0001)
	assert.Equal(t, "3 checked: 1 fake, 1 genuine, 1 errors (50% fake)", s.String())

	empty := Summarize(nil)
	assert.Zero(t, empty.FakeRatio())
}

func TestRows(t *testing.T) {
	rows := Rows(sampleResults(), TableOptions{})
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"1", "user12345", "0", "3", "60", "No bio", "Yes", ""}, rows[0])
	assert.Equal(t, []string{"3", "ghost", "-", "-", "-", "", "Error", "not_found error (code 404): User not found"}, rows[2])
	assert.Len(t, Headers(TableOptions{}), len(rows[0]))

	explained := Rows(sampleResults(), TableOptions{Explain: true})
	assert.Len(t, Headers(TableOptions{Explain: true}), len(explained[0]))
	assert.Equal(t, "9", explained[0][8])
	assert.Contains(t, explained[0][9], "no posts (+2)")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "two lines", truncate("two\n  lines", 10))
	assert.Equal(t, "ñandú caf…", truncate("ñandú café con leche", 10))
}

func TestTable(t *testing.T) {
	out := Table(sampleResults(), TableOptions{Explain: true})

	for _, want := range []string{"Username", "Fake Account", "user12345", "baker", "ghost", "Reasons"} {
		assert.Contains(t, out, want)
	}
}
