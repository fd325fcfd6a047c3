// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package es

import (
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"
)

// DefaultPort is the HTTP port of the administrative API. It is not configurable.
const DefaultPort = 9200

// Client wraps the official Elasticsearch client with the handful of read-only
// status requests esmetrics issues.
type Client struct {
	es      *elasticsearch.Client
	address string
	logger  *zap.Logger
}

// ConnectionError reports that the administrative endpoint could not be reached
// or refused the initial handshake.
type ConnectionError struct {
	Address string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to %s: %v", e.Address, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// RequestError reports a failed status request after the connection was
// established: either a transport failure or a non-2xx response.
type RequestError struct {
	Op         string // e.g. "GET /_cluster/health"
	StatusCode int    // 0 for transport failures
	Status     string
	Reason     string
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Status, e.Reason)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
