package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jhlee0409/selfish-pipeline/internal/claude"
	"github.com/jhlee0409/selfish-pipeline/internal/completions"
	"github.com/jhlee0409/selfish-pipeline/internal/config"
	"github.com/jhlee0409/selfish-pipeline/internal/db"
	"github.com/jhlee0409/selfish-pipeline/internal/history"
	"github.com/jhlee0409/selfish-pipeline/internal/installer"
	"github.com/jhlee0409/selfish-pipeline/internal/logging"
	"github.com/jhlee0409/selfish-pipeline/internal/prompt"
	"github.com/jhlee0409/selfish-pipeline/internal/update"
)

// Version is set at build time via ldflags
var Version = "dev"

const (
	defaultHistoryLimit = 20
	updateNoticeWait    = 500 * time.Millisecond
)

// Process streams, swapped out by tests
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

const usage = `selfish - Claude Code plugin installer for the Selfish Pipeline

Usage:
  selfish                       Install the plugin (interactive)
  selfish install               Same as running without arguments
  selfish history [n]           Show the last n install attempts (default 20, needs history enabled)
  selfish history export        Print install history as YAML
  selfish history clear         Delete install history
  selfish update [--check]      Update to latest version (--yes skips the prompt)
  selfish completions <shell>   Generate shell completions (bash/zsh/fish)
  selfish debug                 Show debug information
  selfish help                  Show this help message
  selfish version               Show version information

Install scopes:
  1) user      ~/.claude/settings.json
  2) project   .claude/settings.json
  3) local     .claude/settings.local.json

Configuration:
  ~/.config/selfish/config.yaml, overridden by SELFISH_CLAUDE_BIN,
  SELFISH_NO_UPDATE_CHECK, SELFISH_HISTORY and SELFISH_LOG_LEVEL.
  Install history is off unless "history: true" or SELFISH_HISTORY=1 is set.
`

func main() {
	code, err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

// checksUpdates reports whether a command should look for a newer release.
// Install stays silent so the default run touches nothing outside the plugin
// manager; the rest are skipped because their stdout is consumed by other tools.
func checksUpdates(cfg config.Config, command string) bool {
	if cfg.NoUpdateCheck {
		return false
	}
	switch command {
	case "install", "version", "--version", "-v", "completions", "update":
		return false
	}
	return true
}

// showUpdateNotice prints the result of the background check, waiting briefly
// for it, and falls back to whatever the cache already says
func showUpdateNotice(updates <-chan *update.UpdateInfo) {
	select {
	case info, ok := <-updates:
		if ok && info != nil {
			fmt.Fprint(stderr, update.FormatNotice(info.LatestVersion, info.CurrentVersion))
			return
		}
	case <-time.After(updateNoticeWait):
	}

	if notice := update.GetUpdateNotice(Version); notice != "" {
		fmt.Fprint(stderr, notice)
	}
}

func run(args []string) (int, error) {
	command := "install"
	if len(args) >= 1 {
		command = args[0]
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil && command != "install" {
		return 1, cfgErr
	}
	if cfgErr != nil {
		cfg = config.FromEnv()
	}
	logging.Setup(cfg.LogLevel, stderr)
	if cfgErr != nil {
		log.Debug().Err(cfgErr).Msg("ignoring unreadable config, using defaults")
	}

	if checksUpdates(cfg, command) {
		updates := update.CheckForUpdateAsync(Version)
		defer showUpdateNotice(updates)
	}

	switch command {
	case "install":
		return handleInstall(cfg), nil
	case "history":
		return 0, handleHistory(cfg, args[1:])
	case "update":
		return 0, handleUpdate(args[1:])
	case "completions":
		return 0, handleCompletions(args[1:])
	case "debug":
		return 0, handleDebug(cfg)
	case "help", "--help", "-h":
		fmt.Fprint(stdout, usage)
		return 0, nil
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "selfish version %s\n", Version)
		return 0, nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		fmt.Fprint(stderr, usage)
		return 1, nil
	}
}

func handleInstall(cfg config.Config) int {
	var opts []installer.Option

	// History is opt-in; without it the install writes no files of its own
	if cfg.History {
		if err := db.InitDB(); err != nil {
			log.Debug().Err(err).Msg("install history unavailable")
		} else {
			defer func() { _ = db.Close() }()
			opts = append(opts, installer.WithRecorder(
				history.NewRecorder(installer.PluginName+"@"+installer.MarketplaceName, installer.GitHubRepo),
			))
		}
	}

	inst := installer.New(
		claude.NewRunner(cfg.ClaudePath),
		func() installer.Questioner { return prompt.NewLineReader(stdin, stdout) },
		stdout,
		stderr,
		opts...,
	)
	return inst.Execute()
}

func handleHistory(cfg config.Config, args []string) error {
	if !cfg.History {
		fmt.Fprintln(stdout, "Install history is disabled.")
		fmt.Fprintln(stdout, "Set 'history: true' in config.yaml or SELFISH_HISTORY=1 to record installs.")
		return nil
	}

	if err := db.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() { _ = db.Close() }()

	action := ""
	if len(args) >= 1 {
		action = args[0]
	}

	switch action {
	case "export":
		output, err := history.Export()
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, string(output))
		return nil
	case "clear":
		removed, err := history.Clear()
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Removed %d install attempt(s)\n", removed)
		return nil
	}

	limit := defaultHistoryLimit
	if action != "" {
		n, err := strconv.Atoi(action)
		if err != nil || n < 1 {
			return fmt.Errorf("usage: selfish history [n|export|clear]")
		}
		limit = n
	}

	attempts, err := history.List(limit)
	if err != nil {
		return err
	}

	if len(attempts) == 0 {
		fmt.Fprintln(stdout, "No install attempts recorded. Run 'selfish' to install the plugin.")
		return nil
	}

	fmt.Fprintln(stdout, "Recent install attempts:")
	for _, a := range attempts {
		scope := a.Scope
		if scope == "" {
			scope = "-"
		}
		fmt.Fprintf(stdout, "  %s  %-8s %s\n", a.CreatedAt.Format("2006-01-02 15:04:05"), scope, a.Outcome)
	}
	fmt.Fprintf(stdout, "\nShowing %d (most recent first)\n", len(attempts))
	return nil
}

func handleUpdate(args []string) error {
	checkOnly := false
	opts := update.Options{}
	for _, arg := range args {
		switch arg {
		case "--check", "-c":
			checkOnly = true
		case "--yes", "-y":
			opts.AssumeYes = true
		default:
			return fmt.Errorf("usage: selfish update [--check] [--yes]")
		}
	}

	if checkOnly {
		info, err := update.CheckForUpdate(Version)
		if err != nil {
			return fmt.Errorf("failed to check for updates: %w", err)
		}

		if info.UpdateAvailable {
			fmt.Fprintf(stdout, "Update available: %s (current: %s)\n", info.LatestVersion, info.CurrentVersion)
			fmt.Fprintf(stdout, "Run 'selfish update' to install\n")
			fmt.Fprintf(stdout, "Release: %s\n", info.ReleaseURL)
		} else {
			fmt.Fprintf(stdout, "Already up to date (version %s)\n", Version)
		}
		return nil
	}

	return update.PerformUpdate(Version, opts)
}

func handleCompletions(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: selfish completions <shell>\nSupported shells: bash, zsh, fish")
	}

	script, err := completions.Generate(args[0])
	if err != nil {
		return err
	}

	fmt.Fprint(stdout, script)
	return nil
}

func handleDebug(cfg config.Config) error {
	fmt.Fprintln(stdout, "selfish Debug Information")
	fmt.Fprintln(stdout, "=========================")
	fmt.Fprintf(stdout, "Version:     %s\n", Version)
	fmt.Fprintf(stdout, "OS/Arch:     %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(stdout, "Go version:  %s\n", runtime.Version())

	runner := claude.NewRunner(cfg.ClaudePath)
	if path, err := runner.Resolve(); err == nil {
		fmt.Fprintf(stdout, "Claude CLI:  %s\n", path)
	} else {
		fmt.Fprintf(stdout, "Claude CLI:  %s (not found)\n", runner.Binary())
	}

	if configPath, err := config.Path(); err == nil {
		if _, err := os.Stat(configPath); err == nil {
			fmt.Fprintf(stdout, "Config:      %s\n", configPath)
		} else {
			fmt.Fprintf(stdout, "Config:      %s (not found, using defaults)\n", configPath)
		}
	}
	fmt.Fprintf(stdout, "Log level:   %s\n", cfg.LogLevel)

	fmt.Fprintf(stdout, "Marketplace: %s (%s)\n", installer.MarketplaceName, installer.GitHubRepo)
	fmt.Fprintf(stdout, "Plugin:      %s@%s\n", installer.PluginName, installer.MarketplaceName)

	if !cfg.History {
		fmt.Fprintf(stdout, "History:     disabled\n")
		return nil
	}

	dbPath, err := db.Path()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Database:    %s\n", dbPath)

	if info, err := os.Stat(dbPath); err == nil {
		fmt.Fprintf(stdout, "DB size:     %d bytes\n", info.Size())
	} else {
		fmt.Fprintf(stdout, "DB size:     (not found)\n")
		return nil
	}

	if err := db.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() { _ = db.Close() }()

	stats, err := history.Stats()
	if err != nil {
		return err
	}

	outcomes := make([]string, 0, len(stats))
	total := 0
	for outcome, count := range stats {
		outcomes = append(outcomes, outcome)
		total += count
	}
	sort.Strings(outcomes)

	fmt.Fprintf(stdout, "\nHistory:\n")
	fmt.Fprintf(stdout, "  Attempts:  %d\n", total)
	for _, outcome := range outcomes {
		fmt.Fprintf(stdout, "  %-18s %d\n", outcome+":", stats[outcome])
	}

	return nil
}
