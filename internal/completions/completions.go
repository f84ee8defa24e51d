package completions

import (
	"fmt"
	"strings"
)

// Bash generates bash completion script
func Bash() string {
	return `# selfish bash completion script
# Add to ~/.bashrc: eval "$(selfish completions bash)"

_selfish_completions() {
    local cur prev commands
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    commands="install history update completions debug help version"

    case "${prev}" in
        selfish)
            COMPREPLY=( $(compgen -W "${commands}" -- "${cur}") )
            return 0
            ;;
        history)
            COMPREPLY=( $(compgen -W "export clear" -- "${cur}") )
            return 0
            ;;
        completions)
            COMPREPLY=( $(compgen -W "bash zsh fish" -- "${cur}") )
            return 0
            ;;
        update|--check|--yes)
            COMPREPLY=( $(compgen -W "--check --yes" -- "${cur}") )
            return 0
            ;;
        *)
            ;;
    esac
}

complete -F _selfish_completions selfish
`
}

// Zsh generates zsh completion script
func Zsh() string {
	return `#compdef selfish
# selfish zsh completion script
# Add to ~/.zshrc: eval "$(selfish completions zsh)"

_selfish() {
    local -a commands

    commands=(
        'install:Install the selfish plugin into Claude Code'
        'history:Show recorded install attempts'
        'update:Update to latest version'
        'completions:Generate shell completions'
        'debug:Show debug information'
        'help:Show help'
        'version:Show version'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case $state in
        command)
            _describe -t commands 'selfish commands' commands
            ;;
        args)
            case $words[2] in
                history)
                    _values 'actions' 'export[print history as YAML]' 'clear[delete history]'
                    ;;
                completions)
                    _values 'shells' 'bash' 'zsh' 'fish'
                    ;;
                update)
                    _values 'flags' '--check[check only]' '--yes[skip confirmation]'
                    ;;
            esac
            ;;
    esac
}

_selfish "$@"
`
}

// Fish generates fish completion script
func Fish() string {
	return `# selfish fish completion script
# Add to ~/.config/fish/completions/selfish.fish

# Disable file completion by default
complete -c selfish -f

# Commands
complete -c selfish -n "__fish_use_subcommand" -a "install" -d "Install the selfish plugin"
complete -c selfish -n "__fish_use_subcommand" -a "history" -d "Show recorded install attempts"
complete -c selfish -n "__fish_use_subcommand" -a "update" -d "Update to latest version"
complete -c selfish -n "__fish_use_subcommand" -a "completions" -d "Generate shell completions"
complete -c selfish -n "__fish_use_subcommand" -a "debug" -d "Show debug information"
complete -c selfish -n "__fish_use_subcommand" -a "help" -d "Show help"
complete -c selfish -n "__fish_use_subcommand" -a "version" -d "Show version"

# History actions
complete -c selfish -n "__fish_seen_subcommand_from history" -a "export" -d "Print history as YAML"
complete -c selfish -n "__fish_seen_subcommand_from history" -a "clear" -d "Delete history"

# Flags
complete -c selfish -n "__fish_seen_subcommand_from update" -l check -d "Check only"
complete -c selfish -n "__fish_seen_subcommand_from update" -l yes -d "Skip confirmation"

# Shell completion for completions command
complete -c selfish -n "__fish_seen_subcommand_from completions" -a "bash zsh fish" -d "Shell"
`
}

// Generate returns the completion script for the given shell
func Generate(shell string) (string, error) {
	switch strings.ToLower(shell) {
	case "bash":
		return Bash(), nil
	case "zsh":
		return Zsh(), nil
	case "fish":
		return Fish(), nil
	default:
		return "", fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish)", shell)
	}
}
