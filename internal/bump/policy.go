package bump

import (
	"errors"

	"github.com/cocogitto-go/cocogitto/internal/config"
)

// ErrNoCommitFound is returned when commits is empty (callers drop
// unparseable commits before building it), per §4.4 step 5 / §7.
var ErrNoCommitFound = errors.New("no commit found to compute a version bump from")

// CommitInfo is the slice of a parsed commit the policy needs: its
// conventional type and whether it is a breaking change.
type CommitInfo struct {
	Type     string
	Breaking bool
}

// VersionIncrementFromCommitHistory evaluates §4.4's priority order:
// Major (unless current major is 0, the "initial development" rule demotes
// breaking changes to Minor), then Minor (any bump_minor type), then Patch
// (any bump_patch type), then NoBump, else ErrNoCommitFound.
func VersionIncrementFromCommitHistory(currentMajorIsZero bool, commits []CommitInfo, types map[string]config.CommitTypeConfig) (Kind, error) {
	if len(commits) == 0 {
		return KindNone, ErrNoCommitFound
	}

	hasBreaking := false
	hasMinor := false
	hasPatch := false

	for _, c := range commits {
		if c.Breaking {
			hasBreaking = true
		}
		if cfg, ok := types[c.Type]; ok {
			if cfg.BumpMinor {
				hasMinor = true
			}
			if cfg.BumpPatch {
				hasPatch = true
			}
		}
	}

	switch {
	case hasBreaking && !currentMajorIsZero:
		return KindMajor, nil
	case hasBreaking && currentMajorIsZero:
		// initial development: breaking changes only bump minor.
		return KindMinor, nil
	case hasMinor:
		return KindMinor, nil
	case hasPatch:
		return KindPatch, nil
	default:
		return KindNone, nil
	}
}
