package catalog

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition describes one condition in a catalog file.
type Definition struct {
	ItemDependent bool `json:"itemDependent" yaml:"itemDependent"`
	Value         bool `json:"value" yaml:"value"`
}

type documentFile struct {
	Conditions map[string]Definition `json:"conditions" yaml:"conditions"`
}

// LoadFS walks the provided filesystem and defines every condition found in
// JSON/YAML catalog files. When fsys is nil or holds no catalog files, the
// returned catalog is empty.
//
// File layout:
//
//	conditions:
//	  player.hasmedia: {value: true}
//	  listitem.isfolder: {itemDependent: true}
func LoadFS(fsys fs.FS) (*Catalog, error) {
	c := New()
	if fsys == nil {
		return c, nil
	}

	origin := make(map[string]string)
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isCatalogFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("catalog: read %s: %w", path, err)
		}

		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		// map order is random; define in name order so ids are stable
		names := make([]string, 0, len(doc.Conditions))
		for name := range doc.Conditions {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			key := normalizeName(name)
			if key == "" {
				return fmt.Errorf("catalog: file %s defines an empty condition name", path)
			}
			if strings.ContainsAny(key, " \t\r\n!+&|[]") {
				return fmt.Errorf("catalog: file %s: condition %q contains operator characters", path, key)
			}
			if prev, exists := origin[key]; exists {
				return fmt.Errorf("catalog: duplicate condition %q (files %s and %s)", key, prev, path)
			}
			origin[key] = path

			def := doc.Conditions[name]
			c.Define(key, def.ItemDependent)
			if err := c.Set(key, def.Value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return c, nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("catalog: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return documentFile{}, fmt.Errorf("catalog: parse %s: invalid JSON or YAML", source)
}

func isCatalogFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
