package claude

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/cli/safeexec"
	"github.com/rs/zerolog/log"
)

// DefaultBinary is the command name shown in manual instructions
const DefaultBinary = "claude"

// Runner invokes the Claude Code CLI
type Runner struct {
	binary string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewRunner creates a Runner for the given binary name or path, wired to the
// process standard streams
func NewRunner(binary string) *Runner {
	return &Runner{
		binary: binary,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Binary returns the configured binary name or path
func (r *Runner) Binary() string {
	return r.binary
}

// Resolve locates the binary. Unlike exec.LookPath it never resolves to the
// current directory on Windows.
func (r *Runner) Resolve() (string, error) {
	path, err := safeexec.LookPath(r.binary)
	if err != nil {
		return "", fmt.Errorf("%s not found: %w", r.binary, err)
	}
	return path, nil
}

// Probe runs `<binary> --version` with all output discarded
func (r *Runner) Probe() error {
	path, err := r.Resolve()
	if err != nil {
		return err
	}

	cmd := exec.Command(path, "--version")
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	log.Debug().Str("binary", path).Msg("probing claude cli")

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s --version failed: %w", r.binary, err)
	}
	return nil
}

// Run executes the binary with args, passing the standard streams through so
// the operator sees (and can answer) anything the CLI prints
func (r *Runner) Run(args ...string) error {
	path, err := r.Resolve()
	if err != nil {
		return err
	}

	cmd := exec.Command(path, args...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	log.Debug().Str("binary", path).Strs("args", args).Msg("running claude cli")

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", r.binary, strings.Join(args, " "), err)
	}
	return nil
}

// MarketplaceAddArgs returns the arguments that register repo as a marketplace
func MarketplaceAddArgs(repo string) []string {
	return []string{"plugin", "marketplace", "add", repo}
}

// InstallArgs returns the arguments that install plugin@marketplace at scope
func InstallArgs(plugin, marketplace, scope string) []string {
	return []string{"plugin", "install", plugin + "@" + marketplace, "--scope", scope}
}

// CommandLine renders args as a command the operator can paste into a shell
func CommandLine(args []string) string {
	return DefaultBinary + " " + strings.Join(args, " ")
}
