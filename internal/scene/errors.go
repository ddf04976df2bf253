package scene

import "fmt"

// QueryError reports a failed query against the host scene graph. The
// exporter skips the element that produced it and carries on.
type QueryError struct {
	Op   string
	Node string
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("scene query %s on %q: %v", e.Op, e.Node, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Query wraps err in a QueryError. It returns nil when err is nil.
func Query(op, node string, err error) error {
	if err == nil {
		return nil
	}
	return &QueryError{Op: op, Node: node, Err: err}
}
