// Package report records the outcome of a conversion batch.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/roboco-io/bmp2yuv/internal/batch"
	"github.com/roboco-io/bmp2yuv/internal/bmp"
)

// Summary describes one batch run.
type Summary struct {
	RunID     string       `json:"run_id" yaml:"run_id"`
	Source    string       `json:"source" yaml:"source"`
	Layout    string       `json:"layout" yaml:"layout"`
	Started   time.Time    `json:"started" yaml:"started"`
	Finished  time.Time    `json:"finished" yaml:"finished"`
	Converted int          `json:"converted" yaml:"converted"`
	Failed    int          `json:"failed" yaml:"failed"`
	Files     []FileResult `json:"files" yaml:"files"`
}

// FileResult describes one converted (or failed) file.
type FileResult struct {
	Input     string `json:"input" yaml:"input"`
	Output    string `json:"output,omitempty" yaml:"output,omitempty"`
	Width     int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height    int    `json:"height,omitempty" yaml:"height,omitempty"`
	Bytes     int64  `json:"bytes,omitempty" yaml:"bytes,omitempty"`
	Millis    int64  `json:"millis" yaml:"millis"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
}

// New creates an empty summary with a fresh run ID.
func New(source, layout string, started time.Time) *Summary {
	return &Summary{
		RunID:   uuid.NewString(),
		Source:  source,
		Layout:  layout,
		Started: started,
		Files:   make([]FileResult, 0),
	}
}

// Add records batch results.
func (s *Summary) Add(results ...batch.Result) {
	for _, res := range results {
		fr := FileResult{
			Input:  res.Job.Item.Name,
			Millis: res.Duration.Milliseconds(),
		}
		if res.Header != nil && res.Header.Info.Width > 0 {
			fr.Width = res.Header.Width()
			fr.Height = res.Header.Height()
		}
		if res.OK() {
			fr.Output = res.Job.Output
			fr.Bytes = res.Bytes
			s.Converted++
		} else {
			fr.Error = res.Err.Error()
			fr.ErrorKind = bmp.KindOf(res.Err)
			s.Failed++
		}
		s.Files = append(s.Files, fr)
	}
}

// Finish stamps the end time.
func (s *Summary) Finish(t time.Time) {
	s.Finished = t
}

// Marshal encodes the summary as "json" or "yaml".
func (s *Summary) Marshal(format string) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(s, "", "  ")
	case "yaml":
		return yaml.Marshal(s)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// FormatForPath picks the report format from a file extension; anything
// other than .yaml or .yml is JSON.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// Write saves the summary to path in the format implied by its extension.
func (s *Summary) Write(path string) error {
	data, err := s.Marshal(FormatForPath(path))
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
