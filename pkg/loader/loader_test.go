package loader

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/logging"
	"github.com/Ramsey-B/fern/pkg/models"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ActivityFile, `[{"id":"U_1","activity":[{"video_id":"V_1","course_id":"C_1","video_start_time":1.5,"video_end_time":null}]}]`)
	writeFile(t, dir, UserFile, `[{"id":"U_1","name":"Ada"}]`)
	writeFile(t, dir, VideoFile, `[{"id":"V_1","start":[0],"end":[10]}]`)

	ds, err := NewLoader(dir, logging.NewNop()).Load()
	require.NoError(t, err)

	require.Len(t, ds.Activity, 1)
	entry := ds.Activity[0].Activity[0]
	require.NotNil(t, entry.VideoStartTime)
	assert.Equal(t, 1.5, *entry.VideoStartTime)
	assert.Nil(t, entry.VideoEndTime)
	assert.Empty(t, ds.Courses, "course.json is optional")
}

func TestLoader_MissingRequiredFile(t *testing.T) {
	_, err := NewLoader(t.TempDir(), logging.NewNop()).Load()
	assert.True(t, errors.Is(err, ErrInputMissing))
}

func TestApplyLimit(t *testing.T) {
	ds := models.Dataset{Activity: []models.ActivityRecord{{UserID: "U_1"}, {UserID: "U_2"}, {UserID: "U_3"}}}

	assert.Len(t, ApplyLimit(ds, 0).Activity, 3)
	assert.Len(t, ApplyLimit(ds, 2).Activity, 2)
	assert.Len(t, ApplyLimit(ds, 10).Activity, 3)
}

func TestConvertNDJSON_SkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "user.json")
	writeFile(t, dir, "user.json", "[\n{\"id\":\"U_1\"},\n{not json},\n\n{\"id\":\"U_2\"}\n]\n")

	res, err := ConvertNDJSON(in, "", ConvertOptions{}, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Records)
	assert.Equal(t, 1, res.Skipped)

	data, err := os.ReadFile(in)
	require.NoError(t, err)
	var users []models.UserRecord
	require.NoError(t, json.Unmarshal(data, &users))
	require.Len(t, users, 2)
	assert.Equal(t, "U_2", users[1].ID)
}

func TestConvertNDJSON_TranslatesChineseNames(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "user.json")
	writeFile(t, dir, "user.json", "{\"id\":\"U_1\",\"name\":\"张三\",\"school\":\"MIT\"}\n{\"id\":\"U_2\",\"name\":\"Alice\"}\n")

	res, err := ConvertNDJSON(in, "", ConvertOptions{Translate: true}, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Records)
	assert.Equal(t, 1, res.Translated)

	data, err := os.ReadFile(in)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"U_1","name":"Zhang San","school":"MIT"},{"id":"U_2","name":"Alice"}]`, string(data))
}

func TestConvertNDJSON_KeepsNamesWithoutTranslate(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "user.json")
	writeFile(t, dir, "user.json", "{\"id\":\"U_1\",\"name\":\"张三\"}\n")

	res, err := ConvertNDJSON(in, "", ConvertOptions{}, logging.NewNop())
	require.NoError(t, err)
	assert.Zero(t, res.Translated)

	data, err := os.ReadFile(in)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"U_1","name":"张三"}]`, string(data))
}

func TestIsMostlyChinese(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"张三", true},
		{"张 三", true},
		{"王小明2", true},
		{"张三ab", false},
		{"Alice", false},
		{"", false},
		{"   ", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsMostlyChinese(tt.in), tt.in)
	}
}

func TestTransliterate(t *testing.T) {
	assert.Equal(t, "Zhang San", Transliterate("张三"))
	assert.Equal(t, "Wang Xiao Ming 2", Transliterate("王小明2"))
	assert.Equal(t, "Li Si", Transliterate("李 四"))
}

func TestWriteDataset_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	ds := models.Dataset{
		Activity: []models.ActivityRecord{{UserID: "U_1", Activity: []models.ActivityEntry{{VideoID: "V_1"}}}},
		Users:    []models.UserRecord{{ID: "U_1"}},
		Videos:   []models.VideoRecord{{ID: "V_1"}},
	}
	require.NoError(t, WriteDataset(dir, ds))

	got, err := NewLoader(dir, logging.NewNop()).Load()
	require.NoError(t, err)
	assert.Equal(t, "V_1", got.Activity[0].Activity[0].VideoID)
	assert.NotNil(t, got.Courses)
}
