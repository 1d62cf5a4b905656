package catalog

import "fmt"

// ResourceError reports a failure to open, read, or release a catalog
// resource. It wraps the underlying cause.
type ResourceError struct {
	Op  string
	Err error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("catalog: %s: %v", e.Op, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }
