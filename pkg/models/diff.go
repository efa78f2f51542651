package models

// AutoMerge is a path the differ resolved without human input
type AutoMerge struct {
	// Path is the relative path
	Path string

	// Strategy indicates which side's state wins
	Strategy Strategy

	// IsBinary is carried for statistics and logging
	IsBinary bool
}

// DiffStats holds tree comparison metrics
type DiffStats struct {
	// FilesCompared is the number of unique paths in the union of the
	// three trees after ignore filtering
	FilesCompared int

	// Unchanged is the number of paths identical across all trees
	Unchanged int

	// AutoMerged is the number of paths resolved automatically
	AutoMerged int

	// Conflicts is the number of paths requiring manual resolution
	Conflicts int

	// BinaryConflicts is the subset of Conflicts involving binary content
	BinaryConflicts int

	// BytesHashed is the total content hashed during the walk
	BytesHashed int64
}

// DiffResult is the outcome of classifying the union of three trees.
// Every path in the union appears in exactly one of Unchanged,
// AutoMerges or Conflicts; no path is silently dropped.
type DiffResult struct {
	// Unchanged lists paths identical in base, local and remote
	Unchanged []string

	// AutoMerges lists paths with a resolved strategy
	AutoMerges []AutoMerge

	// Conflicts lists paths requiring manual resolution
	Conflicts []ConflictRecord

	// Stats are the aggregate comparison metrics
	Stats DiffStats
}

// HasConflicts reports whether any path needs manual resolution
func (r *DiffResult) HasConflicts() bool {
	return len(r.Conflicts) > 0
}
