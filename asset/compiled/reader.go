package compiled

import (
	"archive/zip"
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/arbobendik/FlexLight-sub000/asset"
	"github.com/arbobendik/FlexLight-sub000/log"
)

type zipSceneReader struct {
	logger log.Logger
}

// Create a new zip scene reader
func newZipSceneReader() *zipSceneReader {
	return &zipSceneReader{
		logger: log.New("zip reader"),
	}
}

// Read a compiled scene archive from a local path or URL.
func ReadFile(filename string) (*Scene, error) {
	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	return Read(res)
}

// Read a compiled scene archive. The resource is closed.
func Read(res *asset.Resource) (*Scene, error) {
	return newZipSceneReader().Read(res)
}

func (p *zipSceneReader) Read(sceneRes *asset.Resource) (*Scene, error) {
	p.logger.Noticef(`parsing compiled scene from "%s"`, sceneRes.Path())
	start := time.Now()

	// zip package requires a reader implementing ReaderAt. To work around
	// this requirement we read the entire zip file into memory and create
	// a reader from the bytes package that implements ReaderAt
	data, err := sceneRes.ReadAll()
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var cs *Scene
	for _, f := range zr.File {
		switch f.Name {
		case dataFile:
		default:
			p.logger.Warningf("unknown file %s in scene zip file; skipping", f.Name)
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		cs = &Scene{}
		err = gob.NewDecoder(rc).Decode(cs)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("compiled: failed to load %s: %w", f.Name, err)
		}
	}

	if cs == nil {
		return nil, ErrMissingData
	}
	if err = checkFormat(cs.FormatVersion); err != nil {
		return nil, err
	}

	p.logger.Noticef("loaded scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return cs, nil
}

func checkFormat(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrVersion, version, err)
	}
	c, err := semver.NewConstraint(supportedFormats)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrVersion, v, supportedFormats)
	}
	return nil
}
