package main

import (
	"image"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/roboco-io/bmp2yuv/internal/bmp/bmptest"
)

// buildTestBinary builds the command into a temp directory.
func buildTestBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping binary build in short mode")
	}
	name := "bmp2yuv_test"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	binPath := filepath.Join(t.TempDir(), name)
	buildCmd := exec.Command("go", "build", "-o", binPath, ".")
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to build binary: %v\n%s", err, out)
	}
	return binPath
}

// run executes the binary with HOME pointing at an empty directory so the
// user's own config file is never read.
func run(t *testing.T, binPath, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binPath, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"HOME="+t.TempDir(),
		"USERPROFILE="+t.TempDir(),
		"BMP2YUV_INPUT=", "BMP2YUV_OUTPUT=", "BMP2YUV_LAYOUT=", "BMP2YUV_WORKERS=", "BMP2YUV_TRACE=",
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func writeBitmap(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 40), uint8(y * 40), 128, 255})
		}
	}
	if err := os.WriteFile(path, bmptest.Encode(img, 3), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestConvertCommand(t *testing.T) {
	binPath := buildTestBinary(t)

	work := t.TempDir()
	in := filepath.Join(work, "input_images")
	if err := os.MkdirAll(in, 0755); err != nil {
		t.Fatal(err)
	}
	writeBitmap(t, filepath.Join(in, "a.bmp"), 3, 2)
	writeBitmap(t, filepath.Join(in, "b.BMP"), 1, 1)

	broken := filepath.Join(work, "broken")
	if err := os.MkdirAll(broken, 0755); err != nil {
		t.Fatal(err)
	}
	writeBitmap(t, filepath.Join(broken, "ok.bmp"), 2, 2)
	if err := os.WriteFile(filepath.Join(broken, "bad.bmp"), []byte("BM"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		args       []string
		wantErr    bool
		wantOutput []string
		wantFiles  []string
	}{
		{
			name:      "default input directory",
			args:      nil,
			wantFiles: []string{"output_yuv/a.yuv", "output_yuv/b.yuv"},
		},
		{
			name:       "explicit output with verbose",
			args:       []string{"convert", in, "-o", "yuv", "-v"},
			wantOutput: []string{"a.bmp", "완료"},
			wantFiles:  []string{"yuv/a.yuv"},
		},
		{
			name:       "partial failure",
			args:       []string{"convert", broken, "-o", "partial", "--report", "report.json"},
			wantErr:    true,
			wantOutput: []string{"bad.bmp", "truncated"},
			wantFiles:  []string{"partial/ok.yuv", "report.json"},
		},
		{
			name:    "non-existent input",
			args:    []string{"convert", "nonexistent"},
			wantErr: true,
		},
		{
			name:    "invalid layout",
			args:    []string{"convert", in, "--layout", "planar"},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			output, err := run(t, binPath, work, tc.args...)

			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error but got none\noutput: %s", output)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v\noutput: %s", err, output)
			}

			for _, want := range tc.wantOutput {
				if !strings.Contains(output, want) {
					t.Errorf("output should contain %q, got: %s", want, output)
				}
			}
			for _, f := range tc.wantFiles {
				if _, err := os.Stat(filepath.Join(work, f)); err != nil {
					t.Errorf("expected %s to exist: %v", f, err)
				}
			}
		})
	}
}

func TestInspectCommand(t *testing.T) {
	binPath := buildTestBinary(t)
	work := t.TempDir()
	writeBitmap(t, filepath.Join(work, "a.bmp"), 5, 3)

	output, err := run(t, binPath, work, "inspect", "a.bmp", "--format", "text")
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput: %s", err, output)
	}
	for _, want := range []string{"5x3", "BI_RGB", "45 bytes"} {
		if !strings.Contains(output, want) {
			t.Errorf("output should contain %q, got: %s", want, output)
		}
	}
}

func TestLayoutsCommand(t *testing.T) {
	binPath := buildTestBinary(t)

	output, err := run(t, binPath, t.TempDir(), "layouts")
	if err != nil {
		t.Errorf("unexpected error: %v\noutput: %s", err, output)
	}
	for _, l := range []string{"standard", "legacy"} {
		if !strings.Contains(output, l) {
			t.Errorf("output should contain layout %q, got: %s", l, output)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	binPath := buildTestBinary(t)

	output, err := run(t, binPath, t.TempDir(), "version")
	if err != nil {
		t.Errorf("unexpected error: %v\noutput: %s", err, output)
	}
	if !strings.Contains(output, "bmp2yuv") {
		t.Errorf("output should contain 'bmp2yuv', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	binPath := buildTestBinary(t)

	output, err := run(t, binPath, t.TempDir(), "--help")
	if err != nil {
		t.Errorf("unexpected error: %v\noutput: %s", err, output)
	}
	for _, s := range []string{"bmp2yuv", "convert", "inspect", "layouts", "config"} {
		if !strings.Contains(output, s) {
			t.Errorf("output should contain %q, got: %s", s, output)
		}
	}
}
