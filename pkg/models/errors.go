package models

import (
	"fmt"
)

// TreeAccessError reports an unreadable file encountered while walking or
// hashing one of the three trees. The differ aborts the whole invocation
// on it rather than risk classifying a permission failure as "unchanged".
type TreeAccessError struct {
	// Tree names which root failed: "base", "local" or "remote"
	Tree string

	// Path is the relative path that could not be read
	Path string

	// Err is the underlying filesystem error
	Err error
}

func (e *TreeAccessError) Error() string {
	return fmt.Sprintf("%s tree: cannot read %s: %v", e.Tree, e.Path, e.Err)
}

func (e *TreeAccessError) Unwrap() error {
	return e.Err
}
