// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

// Package shared contains the document type and path helpers used by both the
// es client and the probe. It has no dependency on either.
package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformedResponse marks a response that could not be decoded or does not
// have the shape a metric expects.
var ErrMalformedResponse = errors.New("malformed response")

// Document is a decoded JSON object returned by an Elasticsearch API.
// Numbers are kept as json.Number so they print exactly as the server sent them.
type Document map[string]interface{}

// DecodeDocument reads a single JSON object from r.
func DecodeDocument(r io.Reader) (Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("response is not a JSON object")
	}
	return doc, nil
}

// DecodeDocumentBytes is DecodeDocument over an in-memory body.
func DecodeDocumentBytes(b []byte) (Document, error) {
	return DecodeDocument(bytes.NewReader(b))
}

// === Nested Path Extraction Helpers ===

// GetNestedPath traverses a map by dot-separated path and returns the value.
// Returns (value, true) if found, (nil, false) otherwise.
func GetNestedPath(data map[string]interface{}, path string) (interface{}, bool) {
	if data == nil || path == "" {
		return nil, false
	}
	return getNestedParts(data, splitPath(path))
}

// GetNestedParts traverses a map by path parts and returns the value.
// Returns (value, true) if found, (nil, false) otherwise.
func GetNestedParts(data map[string]interface{}, parts ...string) (interface{}, bool) {
	return getNestedParts(data, parts)
}

// GetNestedObject is GetNestedParts restricted to JSON objects.
func GetNestedObject(data map[string]interface{}, parts ...string) (map[string]interface{}, bool) {
	val, ok := getNestedParts(data, parts)
	if !ok {
		return nil, false
	}
	m, ok := asObject(val)
	return m, ok
}

// MissingPart reports the first element of parts that cannot be resolved in data,
// as a dotted prefix. It returns "" when the full path resolves.
func MissingPart(data map[string]interface{}, parts ...string) string {
	current := interface{}(data)
	for i, part := range parts {
		m, ok := asObject(current)
		if !ok {
			return joinParts(parts[:i+1])
		}
		current, ok = m[part]
		if !ok {
			return joinParts(parts[:i+1])
		}
	}
	return ""
}

func getNestedParts(data map[string]interface{}, parts []string) (interface{}, bool) {
	if data == nil || len(parts) == 0 {
		return nil, false
	}

	current := interface{}(data)
	for _, part := range parts {
		m, ok := asObject(current)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// asObject accepts both plain maps and Document values.
func asObject(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case Document:
		return m, true
	default:
		return nil, false
	}
}

func joinParts(parts []string) string {
	var b bytes.Buffer
	for i, p := range parts {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(p)
	}
	return b.String()
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	// Simple dot split - for paths like "nodes.jvm.mem.heap_used_in_bytes"
	parts := []string{}
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			if i > start {
				parts = append(parts, path[start:i])
			}
			start = i + 1
		}
	}
	if start < len(path) {
		parts = append(parts, path[start:])
	}
	return parts
}
