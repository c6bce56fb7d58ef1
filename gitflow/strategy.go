package gitflow

import (
	"errors"
	"fmt"
)

// ErrUnknownStrategy is returned when a sync or auto-resolve strategy value
// is not recognized. Unknown values always fail before any git command runs.
var ErrUnknownStrategy = errors.New("unknown strategy")

// SyncStrategy selects the git-level operation used to synchronize a branch
// with its upstream.
type SyncStrategy string

const (
	// StrategyFastForward advances the branch pointer only; divergent
	// history is a distinct failure, not a conflict.
	StrategyFastForward SyncStrategy = "fast-forward"

	// StrategyMerge performs a non-fast-forward merge with a generated
	// merge commit message.
	StrategyMerge SyncStrategy = "merge"

	// StrategyRebase rebases the branch onto the upstream ref.
	StrategyRebase SyncStrategy = "rebase"
)

// IsValid reports whether the strategy is recognized.
func (s SyncStrategy) IsValid() bool {
	switch s {
	case StrategyFastForward, StrategyMerge, StrategyRebase:
		return true
	default:
		return false
	}
}

func (s SyncStrategy) String() string {
	return string(s)
}

// ParseSyncStrategy converts a user-supplied string into a SyncStrategy.
func ParseSyncStrategy(s string) (SyncStrategy, error) {
	strategy := SyncStrategy(s)
	if !strategy.IsValid() {
		return "", fmt.Errorf("%w: %q (expected fast-forward, merge, or rebase)", ErrUnknownStrategy, s)
	}
	return strategy, nil
}

// AutoResolveStrategy is the policy for resolving conflicted files without
// human input. AutoResolveNone surfaces conflicts for manual resolution.
type AutoResolveStrategy string

const (
	AutoResolveNone   AutoResolveStrategy = "none"
	AutoResolveOurs   AutoResolveStrategy = "ours"
	AutoResolveTheirs AutoResolveStrategy = "theirs"
	AutoResolveSmart  AutoResolveStrategy = "smart"
)

// IsValid reports whether the strategy is recognized.
func (s AutoResolveStrategy) IsValid() bool {
	switch s {
	case AutoResolveNone, AutoResolveOurs, AutoResolveTheirs, AutoResolveSmart:
		return true
	default:
		return false
	}
}

func (s AutoResolveStrategy) String() string {
	return string(s)
}

// ParseAutoResolveStrategy converts a user-supplied string into an
// AutoResolveStrategy. The empty string means none.
func ParseAutoResolveStrategy(s string) (AutoResolveStrategy, error) {
	if s == "" {
		return AutoResolveNone, nil
	}
	strategy := AutoResolveStrategy(s)
	if !strategy.IsValid() {
		return "", fmt.Errorf("%w: %q (expected none, ours, theirs, or smart)", ErrUnknownStrategy, s)
	}
	return strategy, nil
}
