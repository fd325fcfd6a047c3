// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package es

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	"github.com/elastic/esmetrics/internal/config"
	"github.com/elastic/esmetrics/internal/es/errfmt"
	"github.com/elastic/esmetrics/internal/es/shared"
)

// Address returns the administrative endpoint URL for host.
func Address(host string) string {
	return "http://" + net.JoinHostPort(host, strconv.Itoa(DefaultPort))
}

// NewFromConfig creates a client for the configured host without touching the network.
// Transport level retries are disabled: a probe makes exactly one attempt.
func NewFromConfig(cfg config.ESConfig, logger *zap.Logger) (*Client, error) {
	return newClient(elasticsearch.Config{
		Addresses:            []string{Address(cfg.Host)},
		DisableRetry:         true,
		DiscoverNodesOnStart: cfg.Sniff,
	}, logger)
}

func newClient(cfg elasticsearch.Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}

	var address string
	if len(cfg.Addresses) > 0 {
		address = cfg.Addresses[0]
	}

	return &Client{
		es:      es,
		address: address,
		logger:  logger.With(zap.String("address", address)),
	}, nil
}

// Connect creates a client and pings the endpoint. Any failure is returned as
// a *ConnectionError.
func Connect(ctx context.Context, cfg config.ESConfig, logger *zap.Logger) (*Client, error) {
	c, err := NewFromConfig(cfg, logger)
	if err != nil {
		return nil, &ConnectionError{Address: Address(cfg.Host), Err: err}
	}
	if err := c.Ping(ctx); err != nil {
		return nil, &ConnectionError{Address: c.address, Err: err}
	}
	return c, nil
}

// Address returns the endpoint the client talks to.
func (c *Client) Address() string {
	return c.address
}

// Ping checks if Elasticsearch is reachable
func (c *Client) Ping(ctx context.Context) error {
	start := time.Now()
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		c.logger.Debug("ping failed", zap.Error(err))
		return fmt.Errorf("failed to ping ES: %w", err)
	}
	defer res.Body.Close()

	c.logger.Debug("ping", zap.Int("status", res.StatusCode), zap.Duration("took", time.Since(start)))
	if res.IsError() {
		return fmt.Errorf("ES ping failed: %s", res.Status())
	}

	return nil
}

// ClusterHealth returns the GET /_cluster/health document.
func (c *Client) ClusterHealth(ctx context.Context) (shared.Document, error) {
	start := time.Now()
	res, err := c.es.Cluster.Health(c.es.Cluster.Health.WithContext(ctx))
	return c.document("GET /_cluster/health", start, res, err)
}

// ClusterStats returns the GET /_cluster/stats document.
func (c *Client) ClusterStats(ctx context.Context) (shared.Document, error) {
	start := time.Now()
	res, err := c.es.Cluster.Stats(c.es.Cluster.Stats.WithContext(ctx))
	return c.document("GET /_cluster/stats", start, res, err)
}

// NodesStats returns GET /_nodes/<nodeID>/stats/<metric>.
func (c *Client) NodesStats(ctx context.Context, nodeID, metric string) (shared.Document, error) {
	start := time.Now()
	res, err := c.es.Nodes.Stats(
		c.es.Nodes.Stats.WithContext(ctx),
		c.es.Nodes.Stats.WithNodeID(nodeID),
		c.es.Nodes.Stats.WithMetric(metric),
	)
	return c.document(fmt.Sprintf("GET /_nodes/%s/stats/%s", nodeID, metric), start, res, err)
}

// document turns an API response into a decoded document, closing the body.
func (c *Client) document(op string, start time.Time, res *esapi.Response, err error) (shared.Document, error) {
	if err != nil {
		c.logger.Debug("request failed", zap.String("op", op), zap.Error(err))
		return nil, &RequestError{Op: op, Err: err}
	}
	defer res.Body.Close()

	c.logger.Debug("request",
		zap.String("op", op),
		zap.Int("status", res.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, &RequestError{
			Op:         op,
			StatusCode: res.StatusCode,
			Status:     res.Status(),
			Reason:     errfmt.ErrorReason(body),
		}
	}

	doc, err := shared.DecodeDocument(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrMalformedResponse, op, err)
	}
	return doc, nil
}
