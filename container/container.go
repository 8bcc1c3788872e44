// Package container implements the top-level Jubako entry point: opening
// either a bare Manifest pack or a Container-wrapped one, resolving every
// catalogued pack through a locator chain, and serving content bytes and
// the directory pack to a caller, grounded on
// original_source/src/reader/mod.rs's Container::open and §4.7/§6.2 of the
// format this engine implements.
package container

import (
	"github.com/arloliu/jubako/containerpack"
	"github.com/arloliu/jubako/content"
	"github.com/arloliu/jubako/directory"
	"github.com/arloliu/jubako/errs"
	"github.com/arloliu/jubako/format"
	"github.com/arloliu/jubako/locator"
	"github.com/arloliu/jubako/manifest"
	"github.com/arloliu/jubako/pack"
	"github.com/arloliu/jubako/source"
)

// regionSource presents a *source.Reader's region as a fresh source.Source
// addressed from 0, the shape every pack-level Open/Check expects. It lets
// Container treat a pack resolved from inside a Container pack (a
// sub-region of one shared file) identically to one that is its own whole
// file: both read Check/parse offsets relative to the pack's own start.
type regionSource struct {
	r *source.Reader
}

func (s *regionSource) Size() source.Size { return s.r.Size() }

func (s *regionSource) ReadAt(buf []byte, offset source.Offset) (int, error) {
	return s.r.Source().ReadAt(buf, s.r.Region().Begin+offset)
}

func (s *regionSource) ReadExact(buf []byte, offset source.Offset) error {
	return s.r.Source().ReadExact(buf, s.r.Region().Begin+offset)
}

func (s *regionSource) Close() error { return nil }

// Container is the top-level handle over a Jubako container: its Manifest,
// its one Directory pack, and every Content pack resolved lazily on first
// use through a locator chain.
type Container struct {
	loc locator.Locator

	manifest     *manifest.ManifestPack
	manifestSrc  source.Source
	directory    *directory.DirectoryPack
	directorySrc source.Source

	contentPacks map[format.PackId]*content.ContentPack
	contentSrcs  map[format.PackId]source.Source
}

// Open parses src's leading PackHeader to decide whether it holds a
// Container pack or a bare Manifest pack, resolves the Manifest and its
// Directory pack through extraLocators (tried after any locator embedded in
// a Container pack), and returns a ready-to-use Container.
func Open(src source.Source, extraLocators ...locator.Locator) (*Container, error) {
	r := source.NewReaderToEnd(src, 0)

	ph, err := pack.ParsePackHeaderAt(r, 0)
	if err != nil {
		return nil, err
	}

	switch ph.Magic {
	case format.PackKindContainer:
		cp, err := containerpack.Open(r)
		if err != nil {
			return nil, err
		}

		mr, err := cp.GetManifestPackReader()
		if err != nil {
			return nil, err
		}
		if mr == nil {
			return nil, errs.NewFormat(0, "container pack bundles no manifest pack")
		}

		chain := locator.NewChain(append([]locator.Locator{cp}, extraLocators...)...)

		return openFromManifestReader(mr, chain)
	case format.PackKindManifest:
		chain := locator.NewChain(extraLocators...)

		return openFromManifestReader(r, chain)
	default:
		return nil, errs.NewFormat(0, "pack magic is %s, want Manifest or Container", ph.Magic)
	}
}

func openFromManifestReader(mr *source.Reader, loc locator.Locator) (*Container, error) {
	mp, err := manifest.Open(mr)
	if err != nil {
		return nil, err
	}

	dirInfo := mp.DirectoryPackInfo()
	dirReader, err := loc.Locate(dirInfo.UUID, dirInfo.PackLocation)
	if err != nil {
		return nil, err
	}
	if dirReader == nil {
		return nil, errs.ErrUnknownPack
	}

	dirSrc := &regionSource{r: dirReader}
	dp, err := directory.Open(dirReader)
	if err != nil {
		return nil, err
	}

	return &Container{
		loc:          loc,
		manifest:     mp,
		manifestSrc:  &regionSource{r: mr},
		directory:    dp,
		directorySrc: dirSrc,
		contentPacks: make(map[format.PackId]*content.ContentPack),
		contentSrcs:  make(map[format.PackId]source.Source),
	}, nil
}

// GetDirectoryPack returns the container's one Directory pack.
func (c *Container) GetDirectoryPack() *directory.DirectoryPack { return c.directory }

// GetManifest returns the container's Manifest pack.
func (c *Container) GetManifest() *manifest.ManifestPack { return c.manifest }

// getContentPack resolves and lazily opens the Content pack identified by
// packID, caching it for subsequent calls. Returns nil, nil (no error) when
// the Manifest pack does not catalogue packID, or when no locator in the
// chain can resolve it — both cases "pack missing", matching
// get_bytes's documented Option-returning behavior.
func (c *Container) getContentPack(packID format.PackId) (*content.ContentPack, error) {
	if cp, ok := c.contentPacks[packID]; ok {
		return cp, nil
	}

	info, err := c.manifest.GetContentPackInfo(uint16(packID))
	if err != nil {
		return nil, nil
	}

	r, err := c.loc.Locate(info.UUID, info.PackLocation)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}

	cp, err := content.Open(r, packID)
	if err != nil {
		return nil, err
	}

	c.contentPacks[packID] = cp
	c.contentSrcs[packID] = &regionSource{r: r}

	return cp, nil
}

// GetBytes resolves addr through the Manifest and the owning Content pack
// and returns a Reader over the content's bytes, or nil, nil if the
// catalogued pack cannot be located.
func (c *Container) GetBytes(addr format.ContentAddress) (*source.Reader, error) {
	cp, err := c.getContentPack(addr.PackId)
	if err != nil {
		return nil, err
	}
	if cp == nil {
		return nil, nil
	}

	return cp.GetContent(addr.ContentId)
}

// Check verifies the Manifest pack, the Directory pack, and every Content
// pack resolved so far (i.e. touched by a prior GetBytes call). It does not
// eagerly resolve or check packs that have not been opened.
func (c *Container) Check() (bool, error) {
	ok, err := c.manifest.Check(c.manifestSrc)
	if err != nil || !ok {
		return false, err
	}

	ok, err = c.directory.Check(c.directorySrc)
	if err != nil || !ok {
		return false, err
	}

	for id, cp := range c.contentPacks {
		ok, err := cp.Check(c.contentSrcs[id])
		if err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}
