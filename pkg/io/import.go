package io

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/canvaskit/pkg/diagram"
	"github.com/matzehuels/canvaskit/pkg/errors"
)

// Read decodes a document from r.
//
// Missing arrays decode as empty. Read does not validate references between
// shapes and connections; that happens when the document is parsed onto a
// canvas. Read does not close r.
func Read(r io.Reader, f Format) (*diagram.Document, error) {
	var doc diagram.Document
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported document format %q", f)
	}
	normalize(&doc)
	return &doc, nil
}

// Unmarshal decodes a document from data.
func Unmarshal(data []byte, f Format) (*diagram.Document, error) {
	return Read(bytes.NewReader(data), f)
}

// ImportFile reads the document at path, choosing the format from its
// extension.
func ImportFile(path string) (*diagram.Document, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
	}
	defer file.Close()
	return Read(file, f)
}

func normalize(doc *diagram.Document) {
	if doc.CustomShapes == nil {
		doc.CustomShapes = []diagram.ShapeState{}
	}
	if doc.RegularShapes == nil {
		doc.RegularShapes = []diagram.ShapeState{}
	}
	if doc.Connections == nil {
		doc.Connections = []diagram.ConnectionState{}
	}
}
