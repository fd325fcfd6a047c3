// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elastic/esmetrics/internal/catalog"
	"github.com/elastic/esmetrics/internal/es/shared"
)

// fakeQuerier serves canned documents and records which requests were made.
type fakeQuerier struct {
	health     string
	stats      string
	nodesStats map[string]string // by metric group
	err        error

	calls []string
}

func (f *fakeQuerier) ClusterHealth(ctx context.Context) (shared.Document, error) {
	f.calls = append(f.calls, "health")
	return f.doc(f.health)
}

func (f *fakeQuerier) ClusterStats(ctx context.Context) (shared.Document, error) {
	f.calls = append(f.calls, "stats")
	return f.doc(f.stats)
}

func (f *fakeQuerier) NodesStats(ctx context.Context, nodeID, metric string) (shared.Document, error) {
	f.calls = append(f.calls, "nodes/"+nodeID+"/"+metric)
	return f.doc(f.nodesStats[metric])
}

func (f *fakeQuerier) doc(body string) (shared.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return shared.DecodeDocumentBytes([]byte(body))
}

const healthJSON = `{
  "cluster_name": "es", "status": "green", "timed_out": false,
  "number_of_nodes": 3, "number_of_data_nodes": 3,
  "active_primary_shards": 10, "active_shards": 20,
  "relocating_shards": 0, "initializing_shards": 0, "unassigned_shards": 1,
  "number_of_pending_tasks": 2, "active_shards_percent_as_number": 95.23809523809524
}`

const clusterStatsJSON = `{
  "cluster_name": "es",
  "nodes": {"jvm": {"mem": {"heap_used_in_bytes": 536870912, "heap_max_in_bytes": 3221225472}}}
}`

const jvmStatsJSON = `{
  "_nodes": {"total": 1, "successful": 1, "failed": 0},
  "nodes": {
    "abc123": {
      "name": "node-1",
      "jvm": {"mem": {
        "heap_used_in_bytes": 178956970, "heap_used_percent": 37, "heap_max_in_bytes": 1073741824,
        "pools": {
          "young": {"used_in_bytes": 41943040},
          "old": {"used_in_bytes": 130023424},
          "survivor": {"used_in_bytes": 6990506}
        }
      }}
    }
  }
}`

const indicesStatsJSON = `{
  "nodes": {
    "abc123": {
      "indices": {
        "merges": {"total_size_in_bytes": 1048576},
        "filter_cache": {"memory_size_in_bytes": 2048},
        "fielddata": {"memory_size_in_bytes": 4096}
      }
    }
  }
}`

func newFake() *fakeQuerier {
	return &fakeQuerier{
		health: healthJSON,
		stats:  clusterStatsJSON,
		nodesStats: map[string]string{
			"jvm":     jvmStatsJSON,
			"indices": indicesStatsJSON,
		},
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		mode   Mode
		metric string
		want   string
		call   string
	}{
		{ModeCluster, "status", "green", "health"},
		{ModeCluster, "active_primary_shards", "10", "health"},
		{ModeCluster, "active_shards", "20", "health"},
		{ModeCluster, "number_of_pending_tasks", "2", "health"},
		{ModeCluster, "relocating_shards", "0", "health"},
		{ModeCluster, "unassigned_shards", "1", "health"},
		{ModeCluster, "number_of_nodes", "3", "health"},
		{ModeCluster, "heap_max_in_bytes", "3221225472", "stats"},
		{ModeCluster, "heap_used_in_bytes", "536870912", "stats"},

		{ModeNode, "heap_used_percent", "37", "nodes/_local/jvm"},
		{ModeNode, "heap_max_in_bytes", "1073741824", "nodes/_local/jvm"},
		{ModeNode, "heap_used_in_bytes", "178956970", "nodes/_local/jvm"},
		{ModeNode, "heap_pool_young_gen_mem", "41943040", "nodes/_local/jvm"},
		{ModeNode, "heap_pool_old_gen_mem", "130023424", "nodes/_local/jvm"},
		{ModeNode, "heap_pool_survivor_gen_mem", "6990506", "nodes/_local/jvm"},
		{ModeNode, "total_merges_mem", "1048576", "nodes/_local/indices"},
		{ModeNode, "total_filter_cache_mem", "2048", "nodes/_local/indices"},
		{ModeNode, "total_field_data_mem", "4096", "nodes/_local/indices"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.metric, func(t *testing.T) {
			t.Parallel()
			q := newFake()
			got, err := New(q, nil).Check(context.Background(), Request{Mode: tt.mode, Metric: tt.metric})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []string{tt.call}, q.calls, "exactly one request expected")
		})
	}
}

func TestCheck_UnknownMetricMakesNoRequest(t *testing.T) {
	tests := []Request{
		{Mode: ModeCluster, Metric: "heap_used_percent"},
		{Mode: ModeCluster, Metric: "bogus"},
		{Mode: ModeNode, Metric: "status"},
		{Mode: ModeNode, Metric: ""},
		{Mode: ModeList, Metric: "status"},
	}
	for _, req := range tests {
		q := newFake()
		_, err := New(q, nil).Check(context.Background(), req)
		assert.ErrorIs(t, err, ErrUnknownMetric, "request %+v", req)
		assert.Empty(t, q.calls, "request %+v", req)
	}
}

func TestCheck_QuerierErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	q := newFake()
	q.err = boom

	_, err := New(q, nil).Check(context.Background(), Request{Mode: ModeNode, Metric: "heap_used_percent"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrMalformedResponse)
}

func TestCheck_MissingField(t *testing.T) {
	q := newFake()
	q.nodesStats["indices"] = `{"nodes": {"abc123": {"indices": {"merges": {}}}}}`

	_, err := New(q, nil).Check(context.Background(), Request{Mode: ModeNode, Metric: "total_filter_cache_mem"})
	require.ErrorIs(t, err, ErrMalformedResponse)
	assert.Contains(t, err.Error(), "indices.filter_cache")
}

func TestCheck_NonScalarValue(t *testing.T) {
	q := newFake()
	q.health = `{"status": {"color": "green"}}`

	_, err := New(q, nil).Check(context.Background(), Request{Mode: ModeCluster, Metric: "status"})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestSingleNode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantID  string
		wantErr bool
	}{
		{name: "one node", body: `{"nodes": {"abc123": {"name": "n"}}}`, wantID: "abc123"},
		{name: "zero nodes", body: `{"nodes": {}}`, wantErr: true},
		{name: "two nodes", body: `{"nodes": {"a": {}, "b": {}}}`, wantErr: true},
		{name: "no nodes key", body: `{"cluster_name": "es"}`, wantErr: true},
		{name: "nodes not object", body: `{"nodes": [1]}`, wantErr: true},
		{name: "entry not object", body: `{"nodes": {"a": 1}}`, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc, err := shared.DecodeDocumentBytes([]byte(tt.body))
			require.NoError(t, err)

			node, id, err := SingleNode(doc)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.NotNil(t, node)
		})
	}
}

func TestCheck_MultipleNodesIsMalformed(t *testing.T) {
	q := newFake()
	q.nodesStats["jvm"] = `{"nodes": {
	  "a": {"jvm": {"mem": {"heap_used_percent": 1}}},
	  "b": {"jvm": {"mem": {"heap_used_percent": 2}}}
	}}`

	_, err := New(q, nil).Check(context.Background(), Request{Mode: ModeNode, Metric: "heap_used_percent"})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in      interface{}
		want    string
		wantErr bool
	}{
		{in: "yellow", want: "yellow"},
		{in: json.Number("37"), want: "37"},
		{in: json.Number("12.5"), want: "12.5"},
		{in: 1048576.0, want: "1048576"},
		{in: true, want: "true"},
		{in: nil, wantErr: true},
		{in: map[string]interface{}{}, wantErr: true},
		{in: []interface{}{}, wantErr: true},
	}
	for _, tt := range tests {
		got, err := FormatValue(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrMalformedResponse, "FormatValue(%#v)", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestResolve(t *testing.T) {
	m, err := Resolve(Request{Mode: ModeNode, Metric: "total_merges_mem"})
	require.NoError(t, err)
	assert.Equal(t, catalog.NodeIndexStats, m.Category)

	_, err = Resolve(Request{Mode: ModeCluster, Metric: "total_merges_mem"})
	assert.ErrorIs(t, err, ErrUnknownMetric)
}
