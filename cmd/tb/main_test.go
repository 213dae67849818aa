package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

const testConfig = `
toolbar:
  name: test
  items:
    - id: bold
      toggle: true
      properties:
        text: Bold
    - separator
    - id: left
      group: align
    - id: right
      group: align
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(testConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runTB(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func robotItems(t *testing.T, out string) map[string]bool {
	t.Helper()
	var got robotOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	active := make(map[string]bool)
	for _, it := range got.Snapshot.Items {
		active[it.ID] = it.Active
	}
	return active
}

func TestVersionAndHelp(t *testing.T) {
	code, out, _ := runTB(t, "--version")
	if code != 0 || !strings.HasPrefix(out, "tb ") {
		t.Errorf("unexpected --version result %d %q", code, out)
	}

	code, out, _ = runTB(t, "--help")
	if code != 0 || !strings.Contains(out, "-robot-items") {
		t.Errorf("unexpected --help result %d %q", code, out)
	}

	if code, _, _ := runTB(t, "--no-such-flag"); code != 2 {
		t.Errorf("expected exit 2 for a bad flag, got %d", code)
	}
}

func TestRobotItems(t *testing.T) {
	path := writeTestConfig(t)

	code, out, errOut := runTB(t, "--config", path, "--robot-items")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	active := robotItems(t, out)
	if !active["left"] || active["right"] || active["bold"] {
		t.Errorf("unexpected initial state %v", active)
	}
	if !strings.Contains(out, `"toolbar": "test"`) {
		t.Errorf("expected toolbar name in output:\n%s", out)
	}
}

func TestSelect_IsRemembered(t *testing.T) {
	path := writeTestConfig(t)

	code, out, errOut := runTB(t, "--config", path, "--select", "right, bold", "--robot-items")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	active := robotItems(t, out)
	if !active["right"] || active["left"] || !active["bold"] {
		t.Errorf("unexpected state after --select %v", active)
	}

	// The next run restores the selection from the state database.
	_, out, _ = runTB(t, "--config", path, "--robot-items")
	active = robotItems(t, out)
	if !active["right"] || !active["bold"] {
		t.Errorf("expected selection to be restored, got %v", active)
	}

	_, out, _ = runTB(t, "--config", path, "--no-state", "--robot-items")
	active = robotItems(t, out)
	if active["right"] || active["bold"] {
		t.Errorf("expected --no-state to ignore remembered state, got %v", active)
	}
}

func TestSelect_ByIndexAndUnknown(t *testing.T) {
	path := writeTestConfig(t)

	code, out, _ := runTB(t, "--config", path, "--no-state", "--select", "_last", "--robot-items")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if active := robotItems(t, out); !active["right"] {
		t.Errorf("expected _last to select right, got %v", active)
	}

	code, _, errOut := runTB(t, "--config", path, "--no-state", "--select", "missing")
	if code != 1 || !strings.Contains(errOut, "not found") {
		t.Errorf("expected not-found failure, got %d %q", code, errOut)
	}
}

func TestExport(t *testing.T) {
	path := writeTestConfig(t)
	dir := t.TempDir()
	svgPath := filepath.Join(dir, "bar.svg")
	pngPath := filepath.Join(dir, "bar.png")
	mmdPath := filepath.Join(dir, "bar.mmd")

	code, out, errOut := runTB(t, "--config", path, "--no-state", "--export", svgPath+","+pngPath+","+mmdPath)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	for _, p := range []string{svgPath, pngPath, mmdPath} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
		if !strings.Contains(out, p) {
			t.Errorf("expected %s to be reported", p)
		}
	}
}

func TestBadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("toolbar:\n  items:\n    - type: dropdown\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, _, errOut := runTB(t, "--config", path, "--no-state", "--robot-items")
	if code != 1 || !strings.Contains(errOut, "unknown item type") {
		t.Errorf("expected build failure, got %d %q", code, errOut)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b ,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("unexpected %v", got)
	}
	if splitList("") != nil {
		t.Error("expected nil for empty input")
	}
}

func writeHookConfig(t *testing.T, hooksYAML string) string {
	t.Helper()
	path := writeTestConfig(t)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, append(data, []byte(hooksYAML)...), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSelect_RunsHooks(t *testing.T) {
	out := filepath.Join(t.TempDir(), "hook.out")
	path := writeHookConfig(t, `
hooks:
  - group: align
    command: echo "$TB_TOOLBAR $TB_ITEM_ID $TB_ITEM_ACTIVE" >> "$OUT"
    env:
      OUT: `+out+`
`)

	code, _, errOut := runTB(t, "--config", path, "--no-state", "--select", "right,bold")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("hook did not run: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "test right 1" {
		t.Errorf("unexpected hook output %q", got)
	}
	if !strings.Contains(errOut, "hooks: 1 succeeded, 0 failed") {
		t.Errorf("expected summary on stderr, got %q", errOut)
	}

	if err := os.Remove(out); err != nil {
		t.Fatal(err)
	}
	code, _, _ = runTB(t, "--config", path, "--no-state", "--no-hooks", "--select", "left")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("--no-hooks should skip hooks")
	}
}

func TestSelect_FailingHook(t *testing.T) {
	path := writeHookConfig(t, `
hooks:
  - name: guard
    item: bold
    command: exit 2
    on_error: fail
  - command: ""
`)

	code, _, errOut := runTB(t, "--config", path, "--no-state", "--select", "bold")
	if code != 1 {
		t.Fatalf("expected failure exit, got %d", code)
	}
	for _, want := range []string{"Warning: hook 2 has empty command", "1 failed", "hook guard"} {
		if !strings.Contains(errOut, want) {
			t.Errorf("stderr missing %q: %s", want, errOut)
		}
	}
}
