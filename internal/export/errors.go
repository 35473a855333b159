package export

import (
	"errors"
	"fmt"
)

var (
	// ErrExportInProgress rejects a second export of a surface that is
	// still being exported.
	ErrExportInProgress = errors.New("export already in progress")
	ErrSurfaceNotFound  = errors.New("resume surface not found")
	// ErrInvalidName rejects a surface key or file name that is not a
	// single path segment.
	ErrInvalidName      = errors.New("invalid export name")
)

// Stages reported by ExportError.
const (
	StageRasterize = "rasterize"
	StageCompose   = "compose"
	StageStore     = "store"
)

// ExportError is a failed export. Nothing is written when one is returned.
type ExportError struct {
	Stage string
	Err   error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Stage, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
