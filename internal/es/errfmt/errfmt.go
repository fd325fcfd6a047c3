// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package errfmt

import (
	"encoding/json"
	"strings"
)

// maxBodyLen bounds how much of an error body ends up in a one-line diagnostic.
const maxBodyLen = 256

// ErrorReason extracts a short reason from an Elasticsearch error body.
// It understands {"error":{"type":..,"reason":..}} and {"error":"..."}; anything
// else is returned raw, collapsed onto one line and truncated.
func ErrorReason(body []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Error) > 0 {
		var detailed struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		}
		if err := json.Unmarshal(envelope.Error, &detailed); err == nil && detailed.Reason != "" {
			if detailed.Type != "" {
				return detailed.Type + ": " + detailed.Reason
			}
			return detailed.Reason
		}
		var plain string
		if err := json.Unmarshal(envelope.Error, &plain); err == nil && plain != "" {
			return plain
		}
	}
	return truncate(strings.Join(strings.Fields(string(body)), " "))
}

func truncate(s string) string {
	if len(s) <= maxBodyLen {
		return s
	}
	return s[:maxBodyLen] + "..."
}
