package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DirSource reads documents from the files one level inside each
// subdirectory of Dir (<Dir>/*/*). Files directly in Dir and deeper
// nesting are ignored.
type DirSource struct {
	Dir string
}

func (s DirSource) String() string { return s.Dir }

// Documents implements [Source]. Files are read in lexical path order.
func (s DirSource) Documents(ctx context.Context) ([]Document, error) {
	if _, err := os.Stat(s.Dir); err != nil {
		return nil, err
	}
	paths, err := filepath.Glob(filepath.Join(s.Dir, "*", "*"))
	if err != nil {
		return nil, err
	}

	var docs []Document
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.IsDir() || strings.HasPrefix(info.Name(), ".") {
			continue
		}
		doc, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// ReadFile decodes a single metadata file, choosing the decoder by extension.
func ReadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Decode(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// Decode parses data in the format named by ext (".json", ".yaml", ".yml"
// or ".toml"). Unknown extensions are parsed as JSON.
func Decode(ext string, data []byte) (Document, error) {
	var m map[string]any
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
	case ".toml":
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&m); err != nil {
			return nil, err
		}
	}
	if m == nil {
		return nil, fmt.Errorf("document is empty")
	}
	return Document(m), nil
}
