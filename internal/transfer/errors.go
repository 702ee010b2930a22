package transfer

import (
	"errors"
)

var (
	// ErrPayloadInvalid is returned when an uploaded document is not a
	// parseable export payload.
	ErrPayloadInvalid = errors.New("import payload is not a valid export document")

	// ErrPayloadVersion is returned when the payload declares an unsupported
	// format version.
	ErrPayloadVersion = errors.New("unsupported export payload version")

	// ErrResolutionRequired is returned when execute runs against detected
	// conflicts without a resolution strategy.
	ErrResolutionRequired = errors.New("conflicts detected but no resolution selected")

	// ErrResolutionUnknown is returned for a resolution outside skip,
	// overwrite and merge.
	ErrResolutionUnknown = errors.New("unknown conflict resolution strategy")
)
