package exporter

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// Zip bundles split artifacts into a single archive, one file per
// artifact plus a manifest.json describing them.
func Zip(artifacts []Artifact) ([]byte, error) {
	if len(artifacts) == 0 {
		return nil, fmt.Errorf("nothing to package")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, art := range artifacts {
		w, err := zw.Create(art.Filename)
		if err != nil {
			return nil, fmt.Errorf("creating zip entry %s: %w", art.Filename, err)
		}
		if _, err := w.Write(art.Data); err != nil {
			return nil, fmt.Errorf("writing zip entry %s: %w", art.Filename, err)
		}
	}

	manifest, err := Manifest(artifacts)
	if err != nil {
		return nil, err
	}
	w, err := zw.Create("manifest.json")
	if err != nil {
		return nil, fmt.Errorf("creating manifest entry: %w", err)
	}
	if _, err := w.Write(manifest); err != nil {
		return nil, fmt.Errorf("writing manifest: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return buf.Bytes(), nil
}

// Manifest renders artifact metadata as indented JSON.
func Manifest(artifacts []Artifact) ([]byte, error) {
	out, err := json.MarshalIndent(artifacts, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return out, nil
}
