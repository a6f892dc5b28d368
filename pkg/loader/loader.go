// Package loader reads the activity, user, course and video collections from
// an input folder.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/models"
)

const (
	ActivityFile = "user_video_act.json"
	UserFile     = "user.json"
	CourseFile   = "course.json"
	VideoFile    = "video.json"
)

// ErrInputMissing is returned when a required input file does not exist.
var ErrInputMissing = errors.New("input file missing")

// Loader reads datasets from a folder.
type Loader struct {
	folder string
	logger ectologger.Logger
}

// NewLoader creates a loader rooted at folder.
func NewLoader(folder string, logger ectologger.Logger) *Loader {
	return &Loader{folder: folder, logger: logger}
}

// Load reads all four collections. course.json is optional.
func (l *Loader) Load() (models.Dataset, error) {
	var ds models.Dataset

	if err := l.readArray(ActivityFile, &ds.Activity, true); err != nil {
		return ds, err
	}
	if err := l.readArray(UserFile, &ds.Users, true); err != nil {
		return ds, err
	}
	if err := l.readArray(CourseFile, &ds.Courses, false); err != nil {
		return ds, err
	}
	if err := l.readArray(VideoFile, &ds.Videos, true); err != nil {
		return ds, err
	}

	l.logger.WithFields(map[string]any{
		"folder":   l.folder,
		"activity": len(ds.Activity),
		"users":    len(ds.Users),
		"courses":  len(ds.Courses),
		"videos":   len(ds.Videos),
	}).Info("Loaded input collections")

	return ds, nil
}

func (l *Loader) readArray(name string, dest any, required bool) error {
	path := filepath.Join(l.folder, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if required {
			return fmt.Errorf("%w: %s", ErrInputMissing, path)
		}
		l.logger.WithField("path", path).Warn("Optional input file not found, continuing without it")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// ApplyLimit keeps the first limit activity records. Zero means unlimited.
func ApplyLimit(ds models.Dataset, limit int) models.Dataset {
	if limit <= 0 || len(ds.Activity) <= limit {
		return ds
	}
	ds.Activity = ds.Activity[:limit]
	return ds
}

// WriteDataset writes the four collections as indented JSON arrays.
func WriteDataset(folder string, ds models.Dataset) error {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", folder, err)
	}
	files := []struct {
		name string
		data any
	}{
		{ActivityFile, nonNil(ds.Activity)},
		{UserFile, nonNil(ds.Users)},
		{CourseFile, nonNil(ds.Courses)},
		{VideoFile, nonNil(ds.Videos)},
	}
	for _, f := range files {
		out, err := json.MarshalIndent(f.data, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", f.name, err)
		}
		if err := os.WriteFile(filepath.Join(folder, f.name), out, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
