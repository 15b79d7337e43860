package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/roboco-io/bmp2yuv/internal/batch"
	"github.com/roboco-io/bmp2yuv/internal/bmp"
	"github.com/roboco-io/bmp2yuv/internal/bmp/bmptest"
	"github.com/roboco-io/bmp2yuv/internal/source"
)

func sampleSummary(t *testing.T) *Summary {
	t.Helper()
	h, err := bmp.ParseHeader(bmptest.Header(bmptest.HeaderSpec{Width: 4, Height: 2, BitsPerPixel: 24}, 0))
	if err != nil {
		t.Fatal(err)
	}

	s := New("input_images", "standard", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	s.Add(
		batch.Result{
			Job:      batch.Job{Item: source.Item{Name: "input_images/a.bmp"}, Output: "out/a.yuv"},
			Header:   h,
			Bytes:    24,
			Duration: 3 * time.Millisecond,
		},
		batch.Result{
			Job: batch.Job{Item: source.Item{Name: "input_images/b.bmp"}, Output: "out/b.yuv"},
			Err: fmt.Errorf("%w: 8 bits per pixel", bmp.ErrUnsupportedFormat),
		},
	)
	s.Finish(s.Started.Add(time.Second))
	return s
}

func TestNew(t *testing.T) {
	s := New("src", "legacy", time.Now())

	if _, err := uuid.Parse(s.RunID); err != nil {
		t.Errorf("expected a UUID run id, got %q: %v", s.RunID, err)
	}
	if s.Source != "src" || s.Layout != "legacy" {
		t.Errorf("unexpected summary %+v", s)
	}
	if s.Files == nil {
		t.Error("expected non-nil file list")
	}

	other := New("src", "legacy", time.Now())
	if other.RunID == s.RunID {
		t.Error("expected distinct run ids")
	}
}

func TestSummary_Add(t *testing.T) {
	s := sampleSummary(t)

	if s.Converted != 1 || s.Failed != 1 {
		t.Errorf("expected 1 converted and 1 failed, got %d/%d", s.Converted, s.Failed)
	}

	ok := s.Files[0]
	if ok.Output != "out/a.yuv" || ok.Width != 4 || ok.Height != 2 || ok.Bytes != 24 || ok.Millis != 3 {
		t.Errorf("unexpected success entry %+v", ok)
	}
	if ok.Error != "" || ok.ErrorKind != "" {
		t.Errorf("expected no error on success entry, got %+v", ok)
	}

	bad := s.Files[1]
	if bad.Output != "" {
		t.Errorf("expected no output for failed file, got %q", bad.Output)
	}
	if bad.ErrorKind != "unsupported_format" {
		t.Errorf("expected kind unsupported_format, got %q", bad.ErrorKind)
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"report.json", "json"},
		{"report.yaml", "yaml"},
		{"REPORT.YML", "yaml"},
		{"report", "json"},
	}

	for _, tc := range tests {
		if got := FormatForPath(tc.path); got != tc.expected {
			t.Errorf("FormatForPath(%q) = %q, want %q", tc.path, got, tc.expected)
		}
	}
}

func TestSummary_Marshal(t *testing.T) {
	s := sampleSummary(t)

	data, err := s.Marshal("json")
	if err != nil {
		t.Fatalf("json marshal failed: %v", err)
	}
	var decoded Summary
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded.RunID != s.RunID || len(decoded.Files) != 2 {
		t.Errorf("json lost data: %+v", decoded)
	}

	data, err = s.Marshal("yaml")
	if err != nil {
		t.Fatalf("yaml marshal failed: %v", err)
	}
	var generic map[string]any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if generic["layout"] != "standard" {
		t.Errorf("expected layout 'standard', got %v", generic["layout"])
	}

	if _, err := s.Marshal("xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestSummary_Write(t *testing.T) {
	s := sampleSummary(t)
	path := filepath.Join(t.TempDir(), "reports", "run.yaml")

	if err := s.Write(path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	var decoded Summary
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if decoded.Failed != 1 || decoded.Files[1].ErrorKind != "unsupported_format" {
		t.Errorf("unexpected decoded report %+v", decoded)
	}
}

func TestSummary_WriteUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	err := sampleSummary(t).Write(filepath.Join(blocker, "report.json"))
	if err == nil {
		t.Error("expected error writing below a regular file")
	}
}
