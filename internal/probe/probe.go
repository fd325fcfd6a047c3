// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package probe reads a single catalog metric from a cluster: it picks the
// request for the metric's category, resolves the local node entry when
// needed and extracts the scalar at the metric's path.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/elastic/esmetrics/internal/catalog"
	"github.com/elastic/esmetrics/internal/es/shared"
)

var (
	// ErrUnknownMetric is returned when a name is not in the requested scope's table.
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrMalformedResponse is returned when a response lacks the expected shape.
	ErrMalformedResponse = shared.ErrMalformedResponse
)

// Querier issues the read-only status requests a probe needs.
// *es.Client implements it.
type Querier interface {
	ClusterHealth(ctx context.Context) (shared.Document, error)
	ClusterStats(ctx context.Context) (shared.Document, error)
	NodesStats(ctx context.Context, nodeID, metric string) (shared.Document, error)
}

// Mode is what the caller asked for.
type Mode int

const (
	ModeCluster Mode = iota + 1
	ModeNode
	ModeList
)

func (m Mode) scope() catalog.Scope {
	switch m {
	case ModeCluster:
		return catalog.ScopeCluster
	case ModeNode:
		return catalog.ScopeNode
	default:
		return 0
	}
}

// Request selects one metric. Metric is empty for ModeList.
type Request struct {
	Mode   Mode
	Metric string
}

// Resolve looks the requested metric up in the catalog without any network access.
func Resolve(req Request) (catalog.Metric, error) {
	scope := req.Mode.scope()
	if scope == 0 {
		return catalog.Metric{}, fmt.Errorf("%w: mode %d has no metric table", ErrUnknownMetric, int(req.Mode))
	}
	m, ok := catalog.Lookup(scope, req.Metric)
	if !ok {
		return catalog.Metric{}, fmt.Errorf("%w: %s metric %q", ErrUnknownMetric, scope, req.Metric)
	}
	return m, nil
}

// Probe reads metrics through a Querier.
type Probe struct {
	q      Querier
	logger *zap.Logger
}

// New creates a Probe. A nil logger disables logging.
func New(q Querier, logger *zap.Logger) *Probe {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Probe{q: q, logger: logger}
}

// Check resolves and reads the requested metric, returning its printable value.
func (p *Probe) Check(ctx context.Context, req Request) (string, error) {
	m, err := Resolve(req)
	if err != nil {
		return "", err
	}
	return p.Read(ctx, m)
}

// Read issues the request for m's category and extracts the value at m.Path.
func (p *Probe) Read(ctx context.Context, m catalog.Metric) (string, error) {
	logger := p.logger.With(zap.String("metric", m.Name), zap.Stringer("category", m.Category))

	var (
		root map[string]interface{}
		err  error
	)
	switch m.Category {
	case catalog.ClusterHealth:
		root, err = p.q.ClusterHealth(ctx)
	case catalog.ClusterJVMStats:
		root, err = p.q.ClusterStats(ctx)
	case catalog.NodeJVMStats, catalog.NodeIndexStats:
		var doc shared.Document
		doc, err = p.q.NodesStats(ctx, catalog.LocalNode, m.Category.NodeStatsGroup())
		if err != nil {
			break
		}
		var nodeID string
		root, nodeID, err = SingleNode(doc)
		if err == nil {
			logger.Debug("resolved local node", zap.String("node_id", nodeID))
		}
	default:
		return "", fmt.Errorf("metric %q has unsupported category %s", m.Name, m.Category)
	}
	if err != nil {
		return "", err
	}

	val, ok := shared.GetNestedParts(root, m.Path...)
	if !ok {
		return "", fmt.Errorf("%w: %s: field %q not found", ErrMalformedResponse, m.Name, shared.MissingPart(root, m.Path...))
	}

	out, err := FormatValue(val)
	if err != nil {
		return "", fmt.Errorf("%s at %s: %w", m.Name, m.PathString(), err)
	}
	logger.Debug("extracted value", zap.String("path", m.PathString()), zap.String("value", out))
	return out, nil
}

// SingleNode returns the only entry of a node stats response's "nodes" object
// together with its id. Zero or several entries are a malformed response: a
// request scoped to the local node answers for exactly one node.
func SingleNode(doc shared.Document) (map[string]interface{}, string, error) {
	nodes, ok := shared.GetNestedObject(doc, "nodes")
	if !ok {
		return nil, "", fmt.Errorf("%w: node stats response has no nodes object", ErrMalformedResponse)
	}
	if len(nodes) != 1 {
		return nil, "", fmt.Errorf("%w: node stats response has %d node entries, want 1", ErrMalformedResponse, len(nodes))
	}
	for id, v := range nodes {
		node, ok := v.(map[string]interface{})
		if !ok {
			return nil, "", fmt.Errorf("%w: node %q entry is %T, not an object", ErrMalformedResponse, id, v)
		}
		return node, id, nil
	}
	panic("unreachable")
}

// FormatValue renders a scalar in its native representation: strings as-is,
// numbers exactly as decoded. Objects, arrays and null are malformed values.
func FormatValue(v interface{}) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	case nil:
		return "", fmt.Errorf("%w: value is null", ErrMalformedResponse)
	default:
		return "", fmt.Errorf("%w: value is %T, not a scalar", ErrMalformedResponse, v)
	}
}
