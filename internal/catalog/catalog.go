// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package catalog holds the fixed set of metrics esmetrics knows how to read.
// Each metric maps to exactly one query category and one extraction path.
// The tables are built once at init and never mutated.
package catalog

import (
	"fmt"
	"slices"
	"strings"
)

// LocalNode is the node selector meaning "the node receiving the request".
// Node metrics are always read through it.
const LocalNode = "_local"

// Scope selects which dispatch table a metric name is looked up in.
type Scope int

const (
	ScopeCluster Scope = iota + 1
	ScopeNode
)

// String returns the scope name as shown in the metric listing.
func (s Scope) String() string {
	switch s {
	case ScopeCluster:
		return "Cluster"
	case ScopeNode:
		return "Node"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// Category identifies the API request needed to read a metric.
type Category int

const (
	// ClusterHealth reads a top-level field of GET /_cluster/health.
	ClusterHealth Category = iota + 1
	// ClusterJVMStats reads nodes.jvm.mem.* of GET /_cluster/stats.
	ClusterJVMStats
	// NodeJVMStats reads the jvm group of GET /_nodes/_local/stats/jvm.
	NodeJVMStats
	// NodeIndexStats reads the indices group of GET /_nodes/_local/stats/indices.
	NodeIndexStats
)

func (c Category) String() string {
	switch c {
	case ClusterHealth:
		return "cluster_health"
	case ClusterJVMStats:
		return "cluster_jvm_stats"
	case NodeJVMStats:
		return "node_jvm_stats"
	case NodeIndexStats:
		return "node_index_stats"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Scope returns the scope the category belongs to.
func (c Category) Scope() Scope {
	switch c {
	case ClusterHealth, ClusterJVMStats:
		return ScopeCluster
	case NodeJVMStats, NodeIndexStats:
		return ScopeNode
	default:
		return 0
	}
}

// NodeStatsGroup returns the node stats metric group the category queries,
// or "" for cluster categories.
func (c Category) NodeStatsGroup() string {
	switch c {
	case NodeJVMStats:
		return "jvm"
	case NodeIndexStats:
		return "indices"
	default:
		return ""
	}
}

// Metric describes how a single metric is read.
// For node metrics Path is relative to the node entry of the response.
type Metric struct {
	Name     string
	Category Category
	Path     []string
}

// PathString returns Path joined with dots.
func (m Metric) PathString() string {
	return strings.Join(m.Path, ".")
}

var clusterMetrics = []Metric{
	health("active_primary_shards"),
	health("active_shards"),
	health("number_of_pending_tasks"),
	health("relocating_shards"),
	health("status"),
	health("unassigned_shards"),
	health("number_of_nodes"),
	clusterJVM("heap_max_in_bytes"),
	clusterJVM("heap_used_in_bytes"),
}

var nodeMetrics = []Metric{
	{Name: "heap_pool_young_gen_mem", Category: NodeJVMStats, Path: []string{"jvm", "mem", "pools", "young", "used_in_bytes"}},
	{Name: "heap_pool_old_gen_mem", Category: NodeJVMStats, Path: []string{"jvm", "mem", "pools", "old", "used_in_bytes"}},
	{Name: "heap_pool_survivor_gen_mem", Category: NodeJVMStats, Path: []string{"jvm", "mem", "pools", "survivor", "used_in_bytes"}},
	nodeJVM("heap_max_in_bytes"),
	nodeJVM("heap_used_in_bytes"),
	nodeJVM("heap_used_percent"),
	{Name: "total_filter_cache_mem", Category: NodeIndexStats, Path: []string{"indices", "filter_cache", "memory_size_in_bytes"}},
	{Name: "total_field_data_mem", Category: NodeIndexStats, Path: []string{"indices", "fielddata", "memory_size_in_bytes"}},
	{Name: "total_merges_mem", Category: NodeIndexStats, Path: []string{"indices", "merges", "total_size_in_bytes"}},
}

func health(name string) Metric {
	return Metric{Name: name, Category: ClusterHealth, Path: []string{name}}
}

func clusterJVM(name string) Metric {
	return Metric{Name: name, Category: ClusterJVMStats, Path: []string{"nodes", "jvm", "mem", name}}
}

func nodeJVM(name string) Metric {
	return Metric{Name: name, Category: NodeJVMStats, Path: []string{"jvm", "mem", name}}
}

var (
	clusterIndex = mustIndex(ScopeCluster, clusterMetrics)
	nodeIndex    = mustIndex(ScopeNode, nodeMetrics)
)

// mustIndex builds the lookup table for a scope. Duplicate names or metrics
// filed under the wrong scope are programming errors.
func mustIndex(scope Scope, metrics []Metric) map[string]Metric {
	idx := make(map[string]Metric, len(metrics))
	for _, m := range metrics {
		if m.Category.Scope() != scope {
			panic(fmt.Sprintf("catalog: metric %q has category %s outside scope %s", m.Name, m.Category, scope))
		}
		if len(m.Path) == 0 {
			panic(fmt.Sprintf("catalog: metric %q has no extraction path", m.Name))
		}
		if _, dup := idx[m.Name]; dup {
			panic(fmt.Sprintf("catalog: duplicate %s metric %q", scope, m.Name))
		}
		idx[m.Name] = m
	}
	return idx
}

// Lookup returns the metric registered under name in the given scope.
func Lookup(scope Scope, name string) (Metric, bool) {
	var idx map[string]Metric
	switch scope {
	case ScopeCluster:
		idx = clusterIndex
	case ScopeNode:
		idx = nodeIndex
	default:
		return Metric{}, false
	}
	m, ok := idx[name]
	if !ok {
		return Metric{}, false
	}
	m.Path = slices.Clone(m.Path)
	return m, true
}

// Metrics returns the metrics of a scope in listing order.
func Metrics(scope Scope) []Metric {
	var src []Metric
	switch scope {
	case ScopeCluster:
		src = clusterMetrics
	case ScopeNode:
		src = nodeMetrics
	default:
		return nil
	}
	out := make([]Metric, len(src))
	for i, m := range src {
		m.Path = slices.Clone(m.Path)
		out[i] = m
	}
	return out
}

// Describe renders the human readable metric listing printed by --list.
func Describe() string {
	var b strings.Builder
	b.WriteString("Supported metrics by options:\n")
	for _, scope := range []Scope{ScopeCluster, ScopeNode} {
		fmt.Fprintf(&b, "    %s:\n", scope)
		for _, m := range Metrics(scope) {
			fmt.Fprintf(&b, "        - %s\n", m.Name)
		}
	}
	return b.String()
}
