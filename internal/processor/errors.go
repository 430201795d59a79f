package processor

import (
	"errors"
	"fmt"

	"github.com/jacoelho/yamlpath/internal/ypath"
)

var (
	// ErrStructureMismatch indicates a segment applied to a node of the wrong kind.
	ErrStructureMismatch = errors.New("structure mismatch")
	// ErrNotFound indicates a required path matched no nodes.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey indicates a rename or anchor collision.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrRecursion indicates adjacent deep traversals.
	ErrRecursion = errors.New("recursion")
)

// PathError attaches the expression and, when known, the offending segment
// to an evaluation failure.
type PathError struct {
	Path    string
	Segment string
	Err     error
}

func (e *PathError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("%v, segment %q, in YAML Path %q", e.Err, e.Segment, e.Path)
	}
	return fmt.Sprintf("%v, in YAML Path %q", e.Err, e.Path)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

func pathError(path ypath.Path, seg *ypath.Segment, kind error, format string, args ...any) error {
	e := &PathError{
		Path: path.Original(),
		Err:  fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...)),
	}
	if seg != nil {
		e.Segment = ypath.Stringify([]ypath.Segment{*seg}, path.Separator())
	}
	return e
}
