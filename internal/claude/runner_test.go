package claude

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fakeClaude writes an executable shell script standing in for the claude CLI.
// It echoes its arguments and exits with the code found in $FAKE_CLAUDE_EXIT.
func fakeClaude(t *testing.T) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake claude script requires a POSIX shell")
	}

	script := `#!/bin/sh
echo "args: $*"
echo "stderr: $*" >&2
exit ${FAKE_CLAUDE_EXIT:-0}
`
	path := filepath.Join(t.TempDir(), "claude")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("Failed to write fake claude: %v", err)
	}
	return path
}

func newTestRunner(binary string) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	r := NewRunner(binary)
	r.Stdin = strings.NewReader("")
	r.Stdout = &stdout
	r.Stderr = &stderr
	return r, &stdout, &stderr
}

func TestMarketplaceAddArgs(t *testing.T) {
	got := MarketplaceAddArgs("jhlee0409/selfish-pipeline")
	want := []string{"plugin", "marketplace", "add", "jhlee0409/selfish-pipeline"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MarketplaceAddArgs mismatch (-want +got):\n%s", diff)
	}
}

func TestInstallArgs(t *testing.T) {
	got := InstallArgs("selfish", "selfish-pipeline", "project")
	want := []string{"plugin", "install", "selfish@selfish-pipeline", "--scope", "project"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("InstallArgs mismatch (-want +got):\n%s", diff)
	}
}

func TestCommandLine(t *testing.T) {
	got := CommandLine(InstallArgs("selfish", "selfish-pipeline", "local"))
	want := "claude plugin install selfish@selfish-pipeline --scope local"
	if got != want {
		t.Errorf("CommandLine = %q, want %q", got, want)
	}
}

func TestProbeMissingBinary(t *testing.T) {
	r, _, _ := newTestRunner(filepath.Join(t.TempDir(), "does-not-exist"))

	if err := r.Probe(); err == nil {
		t.Error("Probe should fail for a missing binary")
	}
}

func TestProbeSuccessDiscardsOutput(t *testing.T) {
	t.Setenv("FAKE_CLAUDE_EXIT", "0")
	r, stdout, stderr := newTestRunner(fakeClaude(t))

	if err := r.Probe(); err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if stdout.Len() != 0 || stderr.Len() != 0 {
		t.Errorf("Probe should not pass output through, got stdout=%q stderr=%q", stdout.String(), stderr.String())
	}
}

func TestProbeNonZeroExit(t *testing.T) {
	t.Setenv("FAKE_CLAUDE_EXIT", "3")
	r, _, _ := newTestRunner(fakeClaude(t))

	if err := r.Probe(); err == nil {
		t.Error("Probe should fail on non-zero exit")
	}
}

func TestRunPassesOutputThrough(t *testing.T) {
	t.Setenv("FAKE_CLAUDE_EXIT", "0")
	r, stdout, stderr := newTestRunner(fakeClaude(t))

	if err := r.Run(MarketplaceAddArgs("jhlee0409/selfish-pipeline")...); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(stdout.String(), "args: plugin marketplace add jhlee0409/selfish-pipeline") {
		t.Errorf("stdout not passed through: %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "stderr: plugin marketplace add") {
		t.Errorf("stderr not passed through: %q", stderr.String())
	}
}

func TestRunFailure(t *testing.T) {
	t.Setenv("FAKE_CLAUDE_EXIT", "1")
	r, _, _ := newTestRunner(fakeClaude(t))

	err := r.Run(InstallArgs("selfish", "selfish-pipeline", "user")...)
	if err == nil {
		t.Fatal("Run should fail on non-zero exit")
	}
	if !strings.Contains(err.Error(), "--scope user") {
		t.Errorf("Expected command in error, got: %v", err)
	}
}
