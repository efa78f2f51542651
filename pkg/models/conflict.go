package models

// ConflictKind categorizes different kinds of three-way conflicts
type ConflictKind string

const (
	// KindContent indicates both sides changed the file differently
	KindContent ConflictKind = "content"
	// KindDeletion indicates one side deleted while the other modified
	KindDeletion ConflictKind = "deletion"
	// KindBothModified is a synonym bucket for content conflicts, used
	// when distinguishing an edit-edit from an add-add matters to a caller
	KindBothModified ConflictKind = "both-modified"
	// KindAddAdd indicates both sides independently created the same path
	// with different content
	KindAddAdd ConflictKind = "add-add"
)

// Normalize folds synonym kinds into their canonical bucket
func (k ConflictKind) Normalize() ConflictKind {
	if k == KindBothModified {
		return KindContent
	}
	return k
}

// Strategy identifies which side's state resolves a path automatically.
// The merge executor matches this exhaustively at its single copy site,
// so a new strategy added here is immediately visible as an unhandled
// case there.
type Strategy int

const (
	// StrategyManual means no automatic resolution applies
	StrategyManual Strategy = iota
	// StrategyUseLocal materializes the local tree's state for the path
	StrategyUseLocal
	// StrategyUseRemote materializes the remote tree's state for the path
	StrategyUseRemote
	// StrategyUseBase is emitted only for deletion propagation: local kept
	// the base content untouched and remote deleted the file, so the
	// merged tree omits it
	StrategyUseBase
)

// String returns the strategy tag
func (s Strategy) String() string {
	switch s {
	case StrategyUseLocal:
		return "use-local"
	case StrategyUseRemote:
		return "use-remote"
	case StrategyUseBase:
		return "use-base"
	default:
		return "manual"
	}
}

// ConflictRecord describes a path that diverged between the three trees.
// Content fields are nil when the file does not exist at that point in
// time, which is distinct from an existing empty file.
type ConflictRecord struct {
	// Path is the relative path of the conflicting file
	Path string

	// Kind categorizes the conflict
	Kind ConflictKind

	// BaseContent is the common-ancestor content (nil = did not exist)
	BaseContent []byte

	// LocalContent is the working-copy content (nil = deleted/absent)
	LocalContent []byte

	// RemoteContent is the incoming content (nil = deleted/absent)
	RemoteContent []byte

	// AutoMergeable is true when the record resolves without human input.
	// Invariant: AutoMergeable == (Strategy != StrategyManual).
	AutoMergeable bool

	// Strategy is the resolution the executor applies when AutoMergeable
	Strategy Strategy

	// IsBinary means the content cannot carry textual conflict markers.
	// Binary records are never auto-mergeable unless the relevant sides
	// are hash-identical.
	IsBinary bool

	// MarkerWritten is set by the executor once a conflict marker file
	// has been materialized in the output tree
	MarkerWritten bool
}

// Validate checks the strategy invariant the merge executor depends on
func (r *ConflictRecord) Validate() error {
	if r.AutoMergeable && r.Strategy == StrategyManual {
		return &ValidationError{Field: "Strategy", Message: "auto-mergeable record must carry a strategy"}
	}
	if !r.AutoMergeable && r.Strategy != StrategyManual {
		return &ValidationError{Field: "Strategy", Message: "manual record must not carry a strategy"}
	}
	return nil
}
