package pack

import (
	"github.com/google/uuid"

	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/source"
)

// Pack is the small capability every pack kind's reader satisfies: enough
// to identify it, locate its check record, and verify its footer without
// the caller needing to know which kind-specific header follows.
type Pack interface {
	// Kind returns the pack's kind tag, as carried in its magic number.
	Kind() format.PackKind
	// UUID returns the pack's unique identifier.
	UUID() uuid.UUID
	// Size returns the total on-disk size of the pack, header through footer.
	Size() source.Size
	// Check verifies the pack's CheckInfo digest against src.
	Check(src source.Source) (bool, error)
}
