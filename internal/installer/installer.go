package installer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jhlee0409/selfish-pipeline/internal/claude"
	"github.com/jhlee0409/selfish-pipeline/internal/printer"
)

const (
	GitHubRepo      = "jhlee0409/selfish-pipeline"
	MarketplaceName = "selfish-pipeline"
	PluginName      = "selfish"

	// ClaudeInstallURL is where operators are sent when the CLI is missing
	ClaudeInstallURL = "https://claude.ai/code"

	bannerTitle = "Selfish Pipeline — Claude Code Plugin Installer"
)

var (
	// ErrMissingDependency is returned when the claude CLI cannot be invoked
	ErrMissingDependency = errors.New("claude code cli is not installed")
	// ErrInstallFailed is returned when the plugin install command fails
	ErrInstallFailed = errors.New("plugin installation failed")
)

// Outcomes handed to a Recorder
const (
	OutcomeInstalled         = "installed"
	OutcomeInstallFailed     = "install_failed"
	OutcomeInvalidSelection  = "invalid_selection"
	OutcomeMissingDependency = "missing_dependency"
	OutcomeError             = "error"
)

// Commander runs the plugin manager CLI
type Commander interface {
	Probe() error
	Run(args ...string) error
}

// Questioner reads a single answer from the operator and must be closed after use
type Questioner interface {
	Question(prompt string) (string, error)
	Close() error
}

// Recorder receives the outcome of each run. Errors are logged and ignored.
type Recorder interface {
	Record(scope, outcome string) error
}

// Installer drives the interactive install: probe, prompt, register, install
type Installer struct {
	cli        Commander
	openPrompt func() Questioner
	out        *printer.Printer
	errOut     *printer.Printer
	recorder   Recorder
}

// Option configures an Installer
type Option func(*Installer)

// WithRecorder records every run's outcome to r
func WithRecorder(r Recorder) Option {
	return func(i *Installer) {
		i.recorder = r
	}
}

// New creates an Installer. openPrompt is only called once the claude CLI is
// known to be present.
func New(cli Commander, openPrompt func() Questioner, stdout, stderr io.Writer, opts ...Option) *Installer {
	i := &Installer{
		cli:        cli,
		openPrompt: openPrompt,
		out:        printer.New(stdout),
		errOut:     printer.New(stderr),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Execute runs the installer and returns the process exit code. Errors and
// panics that were not already reported are printed here.
func (i *Installer) Execute() (code int) {
	var scope ScopeOption

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%v", r)
			i.reportUnexpected(err)
			i.record(scope, err)
			code = 1
		}
	}()

	scope, err := i.Run()
	i.record(scope, err)

	if err != nil {
		if !reported(err) {
			i.reportUnexpected(err)
		}
		return 1
	}
	return 0
}

// Run performs the install and returns the chosen scope. Failures of the
// dependency check, the scope selection and the install command are printed
// before being returned.
func (i *Installer) Run() (ScopeOption, error) {
	i.banner()

	if err := i.cli.Probe(); err != nil {
		log.Debug().Err(err).Msg("dependency probe failed")
		i.errOut.Errorln("Claude Code CLI is not installed.")
		i.errOut.Println("  Install it from " + ClaudeInstallURL)
		return ScopeOption{}, fmt.Errorf("%w: %v", ErrMissingDependency, err)
	}

	rl := i.openPrompt()
	defer func() { _ = rl.Close() }()

	scope, err := i.chooseScope(rl)
	if err != nil {
		return ScopeOption{}, err
	}

	if err := i.install(scope); err != nil {
		return scope, err
	}
	return scope, nil
}

func (i *Installer) banner() {
	i.out.Blank()
	i.out.Title(bannerTitle)
	i.out.Println(strings.Repeat("=", len([]rune(bannerTitle))))
	i.out.Blank()
}

func (i *Installer) chooseScope(rl Questioner) (ScopeOption, error) {
	i.out.Println("Select install scope:")
	i.out.Blank()
	for _, s := range Scopes() {
		i.out.Println(fmt.Sprintf("  %s) %s", s.Key, s.Label))
		i.out.Arrowln(5, s.Desc)
	}
	i.out.Blank()

	answer, err := rl.Question(fmt.Sprintf("  Choose [%s] (default: %s): ", KeyHint(), DefaultKey()))
	if err != nil {
		return ScopeOption{}, err
	}

	scope, err := SelectScope(answer)
	if err != nil {
		i.errOut.Blank()
		i.errOut.Errorln("Invalid selection.")
		return ScopeOption{}, fmt.Errorf("%w: %q", err, strings.TrimSpace(answer))
	}
	return scope, nil
}

func (i *Installer) install(scope ScopeOption) error {
	i.out.Blank()
	i.out.Arrowln(0, fmt.Sprintf("Installing with %s scope...", scope.Label))
	i.out.Blank()

	addArgs := claude.MarketplaceAddArgs(GitHubRepo)
	installArgs := claude.InstallArgs(PluginName, MarketplaceName, scope.Name)

	// A failure here usually means the marketplace is already registered
	i.out.Println("[1/2] Registering marketplace...")
	if err := i.cli.Run(addArgs...); err != nil {
		log.Debug().Err(err).Msg("marketplace registration returned an error, continuing")
	}

	i.out.Println(fmt.Sprintf("[2/2] Installing plugin (--scope %s)...", scope.Name))
	if err := i.cli.Run(installArgs...); err != nil {
		log.Debug().Err(err).Str("scope", scope.Name).Msg("plugin install failed")
		i.errOut.Blank()
		i.errOut.Errorln("Installation failed. Try manually:")
		i.errOut.Println("  " + claude.CommandLine(addArgs))
		i.errOut.Println("  " + claude.CommandLine(installArgs))
		return fmt.Errorf("%w: %v", ErrInstallFailed, err)
	}

	i.out.Blank()
	i.out.Successln("Installation complete!")
	i.out.Blank()
	i.out.Println("Next steps:")
	i.out.Println("  /" + PluginName + ":init                    Create project config")
	i.out.Println("  /" + PluginName + `:auto "feature desc"      Run the pipeline`)
	i.out.Blank()
	return nil
}

func (i *Installer) reportUnexpected(err error) {
	i.errOut.Blank()
	i.errOut.Errorln("Installation failed: " + err.Error())
}

func (i *Installer) record(scope ScopeOption, err error) {
	if i.recorder == nil {
		return
	}
	if rerr := i.recorder.Record(scope.Name, outcomeOf(err)); rerr != nil {
		log.Debug().Err(rerr).Msg("failed to record install attempt")
	}
}

// reported reports whether err was already printed by Run
func reported(err error) bool {
	return errors.Is(err, ErrMissingDependency) ||
		errors.Is(err, ErrInvalidSelection) ||
		errors.Is(err, ErrInstallFailed)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeInstalled
	case errors.Is(err, ErrMissingDependency):
		return OutcomeMissingDependency
	case errors.Is(err, ErrInvalidSelection):
		return OutcomeInvalidSelection
	case errors.Is(err, ErrInstallFailed):
		return OutcomeInstallFailed
	default:
		return OutcomeError
	}
}
