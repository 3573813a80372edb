package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestEntry describes one sheet to import.
type ManifestEntry struct {
	Name             string `yaml:"name"`
	Description      string `yaml:"description"`
	Image            string `yaml:"image"`
	File             string `yaml:"file"`
	PlatformFromLink bool   `yaml:"platform_from_link"`
	Replace          bool   `yaml:"replace"`
}

type Manifest struct {
	Sheets []ManifestEntry `yaml:"sheets"`
}

func ParseManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	for i, e := range m.Sheets {
		if e.Name == "" || e.File == "" {
			return nil, fmt.Errorf("manifest entry %d: name and file are required", i+1)
		}
	}
	return &m, nil
}

// ImportManifest imports every entry in order. Relative file paths resolve against baseDir.
// It stops at the first failing sheet; sheets imported before it stay committed.
func (im *Importer) ImportManifest(ctx context.Context, m *Manifest, baseDir string) ([]*Result, error) {
	results := make([]*Result, 0, len(m.Sheets))
	for _, e := range m.Sheets {
		path := e.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		rows, err := parseFile(path)
		if err != nil {
			return results, fmt.Errorf("sheet %q: %w", e.Name, err)
		}
		res, err := im.Import(ctx, rows, Options{
			SheetName:        e.Name,
			Description:      e.Description,
			Image:            e.Image,
			PlatformFromLink: e.PlatformFromLink,
			Replace:          e.Replace,
		})
		if err != nil {
			return results, fmt.Errorf("sheet %q: %w", e.Name, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func parseFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTSV(f)
}

// ImportFile parses a TSV file from disk and imports it.
func (im *Importer) ImportFile(ctx context.Context, path string, opts Options) (*Result, error) {
	rows, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	return im.Import(ctx, rows, opts)
}
