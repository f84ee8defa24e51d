package installer

import (
	"errors"
	"strings"
)

// ErrInvalidSelection is returned when the operator's answer matches no scope key
var ErrInvalidSelection = errors.New("invalid selection")

// ScopeOption is one selectable installation target
type ScopeOption struct {
	Key   string // selector typed at the prompt
	Name  string // value passed to --scope
	Label string
	Desc  string // settings file the plugin manager writes, shown for orientation
}

var scopeOptions = [...]ScopeOption{
	{
		Key:   "1",
		Name:  "user",
		Label: "User (all projects for this user)",
		Desc:  "~/.claude/settings.json",
	},
	{
		Key:   "2",
		Name:  "project",
		Label: "Project (shared with team, committable)",
		Desc:  ".claude/settings.json",
	},
	{
		Key:   "3",
		Name:  "local",
		Label: "Local (this project only, gitignored)",
		Desc:  ".claude/settings.local.json",
	},
}

// Scopes returns the selectable scopes in display order. The slice is a copy.
func Scopes() []ScopeOption {
	out := make([]ScopeOption, len(scopeOptions))
	copy(out, scopeOptions[:])
	return out
}

// DefaultKey is used when the operator just presses enter
func DefaultKey() string {
	return scopeOptions[0].Key
}

// SelectScope maps a raw prompt answer to a scope. Blank answers pick the
// first scope; anything else must equal a key exactly after trimming.
func SelectScope(answer string) (ScopeOption, error) {
	choice := strings.TrimSpace(answer)
	if choice == "" {
		choice = DefaultKey()
	}

	for _, s := range scopeOptions {
		if s.Key == choice {
			return s, nil
		}
	}
	return ScopeOption{}, ErrInvalidSelection
}

// KeyHint renders the keys for the prompt, e.g. "1/2/3"
func KeyHint() string {
	keys := make([]string, len(scopeOptions))
	for i, s := range scopeOptions {
		keys[i] = s.Key
	}
	return strings.Join(keys, "/")
}
