package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Formats lists the supported report formats.
var Formats = []string{"text", "json", "csv", "yaml"}

// report is the serialized form of a Result.
type report struct {
	Items   []*Item `json:"items" yaml:"items"`
	Summary Stats   `json:"summary" yaml:"summary"`
}

// formatBatchResults formats the batch processing results in the specified format.
func formatBatchResults(r *Result, format string) (string, error) {
	switch format {
	case "json":
		return formatJSON(r)
	case "csv":
		return formatCSV(r)
	case "yaml", "yml":
		return formatYAML(r)
	case "text", "":
		return formatText(r), nil
	default:
		return "", fmt.Errorf("unsupported format %q (must be one of: %s)", format, strings.Join(Formats, ", "))
	}
}

func newReport(r *Result) report {
	items := r.Items
	if items == nil {
		items = []*Item{}
	}
	return report{Items: items, Summary: r.Stats()}
}

// formatJSON formats results as JSON.
func formatJSON(r *Result) (string, error) {
	bts, err := json.MarshalIndent(newReport(r), "", "  ")
	if err != nil {
		return "", err
	}
	return string(bts) + "\n", nil
}

// formatYAML formats results as YAML.
func formatYAML(r *Result) (string, error) {
	bts, err := yaml.Marshal(newReport(r))
	if err != nil {
		return "", err
	}
	return string(bts), nil
}

// formatCSV formats results as CSV, one row per payload.
func formatCSV(r *Result) (string, error) {
	var output strings.Builder
	writer := csv.NewWriter(&output)
	if err := writer.Write([]string{"line", "payload", "code", "version", "status", "files", "error"}); err != nil {
		return "", err
	}
	for _, it := range r.Items {
		status := "ok"
		if !it.OK() {
			status = "failed"
		}
		row := []string{
			strconv.Itoa(it.Line),
			it.Payload,
			it.Code,
			strconv.Itoa(it.Version),
			status,
			strings.Join(baseNames(it.Files), ";"),
			it.Error,
		}
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}
	writer.Flush()
	return output.String(), writer.Error()
}

// formatText formats results as plain text.
func formatText(r *Result) string {
	var output strings.Builder
	for _, it := range r.Items {
		if it.OK() {
			fmt.Fprintf(&output, "OK     %-4s  %s -> %s\n", it.Code, it.Payload, strings.Join(baseNames(it.Files), ", "))
		} else {
			fmt.Fprintf(&output, "FAILED %-4s  %s (line %d): %s\n", it.Code, it.Payload, it.Line, it.Error)
		}
	}
	s := r.Stats()
	fmt.Fprintf(&output, "%d generated, %d failed, %d blank lines skipped in %v\n",
		s.Generated, s.Failed, s.Skipped, s.TotalDuration.Round(time.Millisecond))
	return output.String()
}

func baseNames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}
