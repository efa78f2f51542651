package diff

import (
	"github.com/sdejongh/mergetree/pkg/models"
)

// pathClass is the top-level bucket a path lands in
type pathClass int

const (
	classUnchanged pathClass = iota
	classAutoMerge
	classConflict
)

// classification is the outcome of the three-way decision table for a
// single path
type classification struct {
	class    pathClass
	strategy models.Strategy
	kind     models.ConflictKind
	isBinary bool
}

// sameContent reports whether two snapshots carry identical content.
// Equality is decided by hash only; binary files are never compared
// textually.
func sameContent(a, b *models.FileSnapshot) bool {
	return a.Size == b.Size && a.Hash == b.Hash
}

// classify applies the three-way decision table to one path. A nil
// snapshot means the path does not exist in that tree. Every
// presence/content combination resolves to exactly one outcome; there
// is no "unknown" classification.
//
// Tie-break for convergent changes (local and remote byte-identical):
// prefer use-local. The choice is behaviorally irrelevant since content
// is equal, but the strategy must still be populated so the executor
// handles every auto-merge uniformly.
func classify(base, local, remote *models.FileSnapshot) classification {
	c := classification{isBinary: anyBinary(base, local, remote)}

	switch {
	case base != nil && local != nil && remote != nil:
		switch {
		case sameContent(base, local) && sameContent(base, remote):
			c.class = classUnchanged
		case sameContent(base, local):
			// Remote changed only
			c.class = classAutoMerge
			c.strategy = models.StrategyUseRemote
		case sameContent(base, remote):
			// Local changed only
			c.class = classAutoMerge
			c.strategy = models.StrategyUseLocal
		case sameContent(local, remote):
			// Identical convergent edit
			c.class = classAutoMerge
			c.strategy = models.StrategyUseLocal
		default:
			c.class = classConflict
			c.kind = models.KindContent
		}

	case base == nil && local != nil && remote == nil:
		// Net addition on the local side
		c.class = classAutoMerge
		c.strategy = models.StrategyUseLocal

	case base == nil && local == nil && remote != nil:
		// Net addition on the remote side
		c.class = classAutoMerge
		c.strategy = models.StrategyUseRemote

	case base == nil && local != nil && remote != nil:
		if sameContent(local, remote) {
			// Identical convergent add
			c.class = classAutoMerge
			c.strategy = models.StrategyUseLocal
		} else {
			c.class = classConflict
			c.kind = models.KindAddAdd
		}

	case base != nil && local == nil && remote == nil:
		// Deleted on both sides; local's absence wins
		c.class = classAutoMerge
		c.strategy = models.StrategyUseLocal

	case base != nil && local == nil && remote != nil:
		if sameContent(base, remote) {
			// Deleted locally, untouched remotely: deletion propagates
			c.class = classAutoMerge
			c.strategy = models.StrategyUseLocal
		} else {
			// Modified remotely, deleted locally
			c.class = classConflict
			c.kind = models.KindDeletion
		}

	default: // base != nil && local != nil && remote == nil
		if sameContent(base, local) {
			// Deleted remotely, untouched locally: deletion propagates
			c.class = classAutoMerge
			c.strategy = models.StrategyUseBase
		} else {
			// Modified locally, deleted remotely
			c.class = classConflict
			c.kind = models.KindDeletion
		}
	}

	return c
}

func anyBinary(snapshots ...*models.FileSnapshot) bool {
	for _, s := range snapshots {
		if s != nil && s.IsBinary {
			return true
		}
	}
	return false
}
