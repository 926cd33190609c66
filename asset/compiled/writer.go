package compiled

import (
	"archive/zip"
	"encoding/gob"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/arbobendik/FlexLight-sub000/log"
)

const (
	dataFile = "scene.bin"
)

type zipSceneWriter struct {
	logger log.Logger
}

// Create a new zip scene writer
func newZipSceneWriter() *zipSceneWriter {
	return &zipSceneWriter{
		logger: log.New("zip writer"),
	}
}

// Write a compiled scene archive to w.
func Write(cs *Scene, w io.Writer) error {
	return newZipSceneWriter().Write(cs, w)
}

// Write a compiled scene archive to filename. The file is replaced only once
// the archive has been fully written.
func WriteFile(cs *Scene, filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".flexgraph-*.zip")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err = Write(cs, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filename)
}

func (w *zipSceneWriter) Write(cs *Scene, out io.Writer) error {
	w.logger.Infof("writing compressed scene (%d slots, %d triangles)", cs.Buffers.TextureLength, cs.Buffers.BufferLength)
	start := time.Now()

	if cs.FormatVersion == "" {
		cs.FormatVersion = FormatVersion
	}

	zw := zip.NewWriter(out)
	cw, err := zw.Create(dataFile)
	if err != nil {
		return err
	}
	if err = gob.NewEncoder(cw).Encode(cs); err != nil {
		return err
	}
	if err = zw.Close(); err != nil {
		return err
	}

	w.logger.Infof("compressed scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return nil
}
