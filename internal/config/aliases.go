package config

import (
	"errors"
	"fmt"
	"slices"
)

// MaxAliasDepth bounds how many aliases may expand into one another.
const MaxAliasDepth = 10

// ErrRecursiveAlias is returned when an alias expands back into itself.
var ErrRecursiveAlias = errors.New("recursive alias")

// ExpandAliases rewrites args (without the program name) while their first
// word names an alias, keeping the remaining arguments after the expansion.
// Names in builtin are never treated as aliases.
func ExpandAliases(aliases map[string][]string, builtin []string, args []string) ([]string, error) {
	if len(args) == 0 || len(aliases) == 0 {
		return args, nil
	}

	seen := make(map[string]bool)
	for depth := 0; ; depth++ {
		name := args[0]
		if slices.Contains(builtin, name) {
			return args, nil
		}
		expansion, ok := aliases[name]
		if !ok {
			return args, nil
		}
		if seen[name] {
			return nil, fmt.Errorf("alias %q: %w", name, ErrRecursiveAlias)
		}
		if depth >= MaxAliasDepth {
			return nil, fmt.Errorf("maximum alias expansion depth exceeded (%d)", MaxAliasDepth)
		}
		seen[name] = true

		next := make([]string, 0, len(expansion)+len(args)-1)
		next = append(next, expansion...)
		args = append(next, args[1:]...)
		if len(args) == 0 {
			return args, nil
		}
	}
}
