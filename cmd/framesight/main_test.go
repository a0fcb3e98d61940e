package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"framesight/internal/config"
	"framesight/internal/media"
)

func writeFile(path, body string) error {
	return os.WriteFile(path, []byte(body), 0o644)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	cfgPath := filepath.Join(base, "config.toml")
	body := `[paths]
work_dir = "` + filepath.Join(base, "work") + `"
log_dir = "` + filepath.Join(base, "logs") + `"
catalog_dir = "` + filepath.Join(base, "catalog") + `"

[masks]
enabled = false
`
	if err := writeFile(cfgPath, body); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func writeTestManifest(t *testing.T) string {
	t.Helper()
	manifest := media.Manifest{
		Meta: media.VideoMetadata{FPS: 2, Width: 64, Height: 64},
	}
	for i := 0; i < 6; i++ {
		manifest.Entries = append(manifest.Entries, media.ManifestFrame{
			Index:     i,
			Timestamp: float64(i) / 2,
			Detections: []media.Detection{{
				ClassLabel: "bowl",
				Confidence: 0.9,
				BBox:       media.BBox{X: float64(i * 2), Y: 4, Width: 80, Height: 80},
			}},
		})
	}
	payload, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := writeFile(path, string(payload)); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestAnalyzeAndReportCommands(t *testing.T) {
	t.Setenv(config.AnalyzerAPIKeyEnv, "")
	cfgPath := writeTestConfig(t)
	manifestPath := writeTestManifest(t)

	out, err := execute(t, "--config", cfgPath, "analyze", manifestPath, "--video", "/videos/demo.mp4")
	if err != nil {
		t.Fatalf("analyze: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Saved report ") {
		t.Fatalf("missing save confirmation:\n%s", out)
	}
	// No API key configured, so the run degrades but does not fail.
	if !strings.Contains(out, "partial") {
		t.Fatalf("expected partial status:\n%s", out)
	}

	listOut, err := execute(t, "--config", cfgPath, "report", "list")
	if err != nil {
		t.Fatalf("report list: %v\n%s", err, listOut)
	}
	if !strings.Contains(listOut, "/videos/demo.mp4") {
		t.Fatalf("report missing from listing:\n%s", listOut)
	}

	id := extractReportID(t, out)
	showOut, err := execute(t, "--config", cfgPath, "report", "show", id, "--json")
	if err != nil {
		t.Fatalf("report show: %v\n%s", err, showOut)
	}
	if !strings.Contains(showOut, "\"video_path\": \"/videos/demo.mp4\"") {
		t.Fatalf("unexpected show output:\n%s", showOut)
	}
}

func TestAnalyzeNoSave(t *testing.T) {
	t.Setenv(config.AnalyzerAPIKeyEnv, "")
	cfgPath := writeTestConfig(t)
	manifestPath := writeTestManifest(t)

	out, err := execute(t, "--config", cfgPath, "analyze", manifestPath, "--no-save")
	if err != nil {
		t.Fatalf("analyze: %v\n%s", err, out)
	}
	if strings.Contains(out, "Saved report") {
		t.Fatalf("report should not have been saved:\n%s", out)
	}

	listOut, err := execute(t, "--config", cfgPath, "report", "list")
	if err != nil {
		t.Fatalf("report list: %v", err)
	}
	if !strings.Contains(listOut, "No reports") {
		t.Fatalf("catalog should be empty:\n%s", listOut)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := execute(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected init output:\n%s", out)
	}

	if _, err := execute(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init to refuse overwrite")
	}

	valOut, err := execute(t, "config", "validate", "--path", target)
	if err != nil {
		t.Fatalf("config validate: %v\n%s", err, valOut)
	}
	if !strings.Contains(valOut, "is valid") {
		t.Fatalf("unexpected validate output:\n%s", valOut)
	}
}

func TestReportShowUnknownID(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := execute(t, "--config", cfgPath, "report", "show", "nope"); err == nil {
		t.Fatal("expected unknown report id to error")
	}
}

func extractReportID(t *testing.T, out string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Saved report ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "Saved report "))
		}
	}
	t.Fatalf("no report id in output:\n%s", out)
	return ""
}
