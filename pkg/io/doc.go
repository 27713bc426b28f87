// Package io reads and writes diagram documents as JSON or YAML.
//
// # Overview
//
// A [diagram.Document] is the serialized form of a canvas: custom shapes,
// regular shapes and connections. This package moves documents between
// memory, streams and files so they can be stored, exchanged with other
// tools and re-imported without loss.
//
// # Formats
//
// Two encodings are supported:
//
//   - [FormatJSON]: two-space indented JSON, the canonical form
//   - [FormatYAML]: YAML with the same field names, handy for hand-edited
//     fixtures
//
// A document looks like this in JSON:
//
//	{
//	  "customShapes": [
//	    {"id": "a", "type": "custom", "x": 0, "y": 0, "width": 100, "height": 100}
//	  ],
//	  "regularShapes": [],
//	  "connections": [
//	    {
//	      "id": "c1",
//	      "segmentStyle": "regular",
//	      "srcPort":  {"x": 97,  "y": 46, "parent": "a", "direction": "right"},
//	      "destPort": {"x": -5,  "y": 46, "parent": "b", "direction": "left"},
//	      "state": null
//	    }
//	  ]
//	}
//
// Port directions and shape kinds are written as names. The state array
// holds explicit waypoints only for connections with a user route.
//
// # Files
//
// [ImportFile] and [ExportFile] pick the format from the file extension
// (.json, .yaml, .yml). [Read] and [Write] work on any stream.
//
//	doc, err := io.ImportFile("flow.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = io.ExportFile(canvas.Stringify(), "flow.json")
//
// Decoding failures are reported with [errors.ErrCodeInvalidFormat].
package io
