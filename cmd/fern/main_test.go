package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/loader"
	"github.com/Ramsey-B/fern/pkg/logging"
)

func quietEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("KAFKA_ENABLED", "false")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("DB_HOST", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
}

func writeInput(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		loader.ActivityFile: `[
			{"id":"U_1","activity":[{"video_id":"V_1","course_id":"C_1","video_start_time":0,"video_end_time":5,"video_progress_time":15,"local_watching_time":10}]},
			{"id":"U_2","activity":[{"video_id":"V_1","course_id":"C_1","video_start_time":0,"video_end_time":20,"video_progress_time":10,"local_watching_time":10}]}
		]`,
		loader.UserFile:  `[{"id":"U_1"},{"id":"U_2"},{"id":"U_unused"}]`,
		loader.VideoFile: `[{"id":"V_1","start":[0,10],"end":[10,20]},{"id":"V_unused","start":[0],"end":[5]}]`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSkips_Offline(t *testing.T) {
	quietEnv(t)
	dir := writeInput(t)

	out, err := run(t, "skips", "--offline", "--data", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Recommendations to skip segments:\nVideo: V_1, Segment: V_1_S1, Skip Rate: 0.50 (1/2)\n")
	assert.NotContains(t, out, "V_1_S0, Skip Rate")
}

func TestSkips_OfflineRulesMatchDirect(t *testing.T) {
	quietEnv(t)
	dir := writeInput(t)

	direct, err := run(t, "skips", "--offline", "--data", dir)
	require.NoError(t, err)
	viaRules, err := run(t, "skips", "--offline", "--rules", "--data", dir)
	require.NoError(t, err)
	assert.Equal(t, direct, viaRules)
}

func TestSpeeds_Offline(t *testing.T) {
	quietEnv(t)
	dir := writeInput(t)

	out, err := run(t, "speeds", "--offline", "--data", dir)
	require.NoError(t, err)
	assert.Equal(t, "Recommended playback speeds:\n"+
		"Video: V_1, Speed: 1.0x, Used by: 1/2 users\n"+
		"Video: V_1, Speed: 1.5x, Used by: 1/2 users\n", out)

	out, err = run(t, "speeds", "--offline", "--data", dir, "--threshold-number", "5", "--threshold-percentage", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "No recommendations found.")
}

func TestSimilar_RefusesOffline(t *testing.T) {
	quietEnv(t)
	_, err := run(t, "similar", "--offline")
	assert.Error(t, err)
}

func TestSubset(t *testing.T) {
	quietEnv(t)
	dir := writeInput(t)
	outDir := filepath.Join(t.TempDir(), "subset")

	out, err := run(t, "subset", outDir, "--data", dir, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "activity: 1, users: 1, courses: 0, videos: 1")

	ds, err := loader.NewLoader(outDir, logging.NewNop()).Load()
	require.NoError(t, err)
	assert.Len(t, ds.Users, 1)
	assert.Equal(t, "U_1", ds.Users[0].ID)
}

func TestConvert(t *testing.T) {
	quietEnv(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "user.json")
	require.NoError(t, os.WriteFile(in, []byte("{\"id\":\"U_1\"}\nnot json\n{\"id\":\"U_2\"}\n"), 0o644))

	out, err := run(t, "convert", in)
	require.NoError(t, err)
	assert.Contains(t, out, "(2 records, 1 skipped)")

	data, err := os.ReadFile(in)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"U_1"},{"id":"U_2"}]`, string(data))
}

func TestConvert_Translate(t *testing.T) {
	quietEnv(t)
	dir := t.TempDir()
	content := []byte("{\"id\":\"C_1\",\"name\":\"李明\"}\n")

	translated := filepath.Join(dir, "course.json")
	require.NoError(t, os.WriteFile(translated, content, 0o644))
	_, err := run(t, "convert", translated)
	require.NoError(t, err)
	data, err := os.ReadFile(translated)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"C_1","name":"Li Ming"}]`, string(data))

	kept := filepath.Join(dir, "kept.json")
	require.NoError(t, os.WriteFile(kept, content, 0o644))
	_, err = run(t, "convert", kept, "--no-translate")
	require.NoError(t, err)
	data, err = os.ReadFile(kept)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"C_1","name":"李明"}]`, string(data))
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	quietEnv(t)
	t.Setenv("MIN_SKIPPED", "3")

	skips, _, err := newRootCmd().Find([]string{"skips"})
	require.NoError(t, err)
	require.NoError(t, skips.ParseFlags([]string{"--min-skipped", "7", "--limit", "10"}))

	cfg, err := loadConfig(skips)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MinSkipped)
	assert.Equal(t, 10, cfg.UserVideoActLimit)
}

func TestLoadConfig_ValidatesFlagOverrides(t *testing.T) {
	quietEnv(t)

	tests := map[string][]string{
		"rate above one": {"--skip-rate-threshold", "5"},
		"negative limit": {"--limit", "-1"},
		"bad log level":  {"--log-level", "loud"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			skips, _, err := newRootCmd().Find([]string{"skips"})
			require.NoError(t, err)
			require.NoError(t, skips.ParseFlags(args))

			_, err = loadConfig(skips)
			assert.ErrorContains(t, err, "invalid configuration")
		})
	}
}
