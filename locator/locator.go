// Package locator implements the pluggable pack-resolution strategies a
// Container consults to turn a Manifest pack's (uuid, location) hint into a
// readable Source, grounded on original_source/src/reader/locator.rs.
package locator

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/arloliu/jubako/source"
)

// Locator maps a catalogued pack's uuid and location hint to a Reader over
// its bytes, or returns a nil Reader (no error) when it has no opinion about
// that pack — the caller then falls through to the next locator in a chain.
type Locator interface {
	Locate(id uuid.UUID, location []byte) (*source.Reader, error)
}

// Filesystem resolves a pack's location hint as a path relative to a base
// directory, grounded on locator.rs's FsLocator.
type Filesystem struct {
	baseDir string
}

// NewFilesystem returns a Locator resolving location hints under baseDir.
func NewFilesystem(baseDir string) *Filesystem {
	return &Filesystem{baseDir: baseDir}
}

func (l *Filesystem) Locate(_ uuid.UUID, location []byte) (*source.Reader, error) {
	if len(location) == 0 {
		return nil, nil
	}

	path := filepath.Join(l.baseDir, string(location))
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, err
	}
	if info.IsDir() {
		return nil, nil
	}

	fs, err := source.NewFileSource(path)
	if err != nil {
		return nil, err
	}

	return source.NewReaderToEnd(fs, 0), nil
}

// Chain tries each locator in order, returning the first non-nil Reader,
// grounded on locator.rs's ChainedLocator.
type Chain struct {
	locators []Locator
}

// NewChain builds a Chain trying locators in the given order.
func NewChain(locators ...Locator) *Chain {
	return &Chain{locators: locators}
}

func (c *Chain) Locate(id uuid.UUID, location []byte) (*source.Reader, error) {
	for _, l := range c.locators {
		r, err := l.Locate(id, location)
		if err != nil {
			return nil, err
		}
		if r != nil {
			return r, nil
		}
	}

	return nil, nil
}
