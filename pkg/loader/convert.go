package loader

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gobusters/ectologger"
)

// ConvertOptions controls ConvertNDJSON.
type ConvertOptions struct {
	// Translate rewrites top-level string fields written mostly in Chinese
	// characters as capitalized pinyin.
	Translate bool
}

// ConvertResult summarizes one NDJSON conversion.
type ConvertResult struct {
	Path       string
	Records    int
	Skipped    int
	Translated int
}

// ConvertNDJSON rewrites a newline-delimited JSON file as a JSON array.
// Bracket-only lines and trailing commas are tolerated; lines that fail to
// parse are logged and skipped. An empty output path overwrites the input.
func ConvertNDJSON(inputPath, outputPath string, opts ConvertOptions, logger ectologger.Logger) (ConvertResult, error) {
	res := ConvertResult{Path: outputPath}
	if res.Path == "" {
		res.Path = inputPath
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return res, fmt.Errorf("failed to open %s: %w", inputPath, err)
	}

	objs := make([]json.RawMessage, 0)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "[" || line == "]" {
			continue
		}
		line = strings.TrimSuffix(line, ",")

		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			res.Skipped++
			logger.WithError(err).WithFields(map[string]any{
				"path": inputPath,
				"line": lineNo,
			}).Warn("Skipping malformed record")
			continue
		}

		record := json.RawMessage(line)
		if opts.Translate {
			if n := translateFields(obj); n > 0 {
				encoded, err := json.Marshal(obj)
				if err != nil {
					return res, fmt.Errorf("failed to encode line %d of %s: %w", lineNo, inputPath, err)
				}
				record = encoded
				res.Translated += n
			}
		}
		objs = append(objs, record)
	}
	scanErr := scanner.Err()
	f.Close()
	if scanErr != nil {
		return res, fmt.Errorf("failed to scan %s: %w", inputPath, scanErr)
	}

	var buf bytes.Buffer
	out, err := json.Marshal(objs)
	if err != nil {
		return res, fmt.Errorf("failed to encode %s: %w", res.Path, err)
	}
	if err := json.Indent(&buf, out, "", "  "); err != nil {
		return res, fmt.Errorf("failed to indent %s: %w", res.Path, err)
	}
	if err := os.WriteFile(res.Path, buf.Bytes(), 0o644); err != nil {
		return res, fmt.Errorf("failed to write %s: %w", res.Path, err)
	}

	res.Records = len(objs)
	logger.WithFields(map[string]any{
		"input":      inputPath,
		"output":     res.Path,
		"records":    res.Records,
		"skipped":    res.Skipped,
		"translated": res.Translated,
	}).Info("Converted newline-delimited JSON to array")
	return res, nil
}

// ConvertFolder converts every *.json file in folder in place.
func ConvertFolder(folder string, opts ConvertOptions, logger ectologger.Logger) ([]ConvertResult, error) {
	matches, err := filepath.Glob(filepath.Join(folder, "*.json"))
	if err != nil {
		return nil, err
	}
	results := make([]ConvertResult, 0, len(matches))
	for _, path := range matches {
		res, err := ConvertNDJSON(path, "", opts, logger)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// translateFields transliterates the top-level string values of obj that are
// mostly Chinese and returns how many were rewritten.
func translateFields(obj map[string]json.RawMessage) int {
	n := 0
	for key, raw := range obj {
		var value string
		if err := json.Unmarshal(raw, &value); err != nil || !IsMostlyChinese(value) {
			continue
		}
		encoded, err := json.Marshal(Transliterate(value))
		if err != nil {
			continue
		}
		obj[key] = encoded
		n++
	}
	return n
}
