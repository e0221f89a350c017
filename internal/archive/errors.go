package archive

import "fmt"

// Reason categorizes archive failures.
type Reason string

const (
	ReasonCorrupt     Reason = "corrupt"
	ReasonUnsupported Reason = "unsupported format"
	ReasonMissingPart Reason = "missing part"
	ReasonNoSpace     Reason = "insufficient disk space"
	ReasonNoEntries   Reason = "no extractable entries"
)

// Error describes a failure to open or extract one archive.
type Error struct {
	Archive string
	Reason  Reason
	// MissingPart names the absent volume when Reason is ReasonMissingPart.
	MissingPart string
	Err         error
}

func (e *Error) Error() string {
	switch {
	case e.Reason == ReasonMissingPart:
		return fmt.Sprintf("%s: %s: %s", e.Archive, e.Reason, e.MissingPart)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Archive, e.Reason, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Archive, e.Reason)
	}
}

func (e *Error) Unwrap() error { return e.Err }
