package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"igfakecheck/pkg/detector"
)

const (
	// DefaultFilename is the name the report is saved and offered under
	DefaultFilename = "instagram_users_report.json"

	// MIMEType is the content type of the report
	MIMEType = "application/json"

	indent = "    "
)

// Marshal encodes results as the report document
func Marshal(results []detector.Result) ([]byte, error) {
	if results == nil {
		results = []detector.Result{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(results); err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a report document
func Unmarshal(data []byte) ([]detector.Result, error) {
	var results []detector.Result
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return results, nil
}

// Write saves the report to path, replacing any previous report atomically
func Write(path string, results []detector.Result) error {
	data, err := Marshal(results)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".report-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set report permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Read loads a report written by Write
func Read(path string) ([]detector.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return Unmarshal(data)
}
