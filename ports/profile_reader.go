package ports

import (
	"godisso/domain/profile"
)

// ProfileReader loads dissolution profile groups from an external source
// (workbook, CSV export, ...), keyed by group name.
type ProfileReader interface {
	// Read loads all profile groups from the source
	Read() (map[string]*profile.Set, error)
}
