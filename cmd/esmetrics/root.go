// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/elastic/esmetrics/internal/catalog"
	"github.com/elastic/esmetrics/internal/config"
	"github.com/elastic/esmetrics/internal/logging"
	"github.com/elastic/esmetrics/internal/probe"
)

// connectFunc opens a connection to the administrative endpoint.
type connectFunc func(ctx context.Context, cfg config.ESConfig, logger *zap.Logger) (probe.Querier, error)

// metricFlags holds the mutually exclusive metric selection.
type metricFlags struct {
	cluster string
	node    string
	list    bool
}

func newRootCmd(stdout, stderr io.Writer, connect connectFunc) *cobra.Command {
	var sel metricFlags

	cmd := &cobra.Command{
		Use:   "esmetrics -H <host> [-c <metric> | -n <metric> | -l]",
		Short: "Query Elasticsearch for a single cluster or node metric",
		Long: `esmetrics reads one health or memory metric from an Elasticsearch cluster
and prints its value on a single line, for use by monitoring checks.

Cluster metrics come from the cluster health and cluster stats APIs, node
metrics from the node stats API of the node at --host. Use -l to list them.

Examples:
  esmetrics -c status
  esmetrics -H 10.0.0.5 -n heap_used_percent
  esmetrics -l`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}
			cmd.SetContext(config.WithContext(cmd.Context(), cfg))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd, sel, stdout, stderr, connect)
		},
	}

	// Config flags (Viper precedence: flags > env > config file > defaults)
	cmd.PersistentFlags().String("config", "", "Config file (yaml, json or toml)")
	cmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "Diagnostic log level on stderr (env: ESMETRICS_LOG_LEVEL)")
	cmd.Flags().StringP("host", "H", config.DefaultHost, "Hostname or IP (env: ESMETRICS_ES_HOST)")
	cmd.Flags().Duration("timeout", config.DefaultTimeout, "Deadline for the whole check (env: ESMETRICS_ES_TIMEOUT)")
	cmd.Flags().Bool("sniff", false, "Discover cluster nodes on start (env: ESMETRICS_ES_SNIFF)")

	// Metric selection
	cmd.Flags().StringVarP(&sel.cluster, "cluster", "c", "", "Check cluster metric")
	cmd.Flags().StringVarP(&sel.node, "node", "n", "", "Check node metric")
	cmd.Flags().BoolVarP(&sel.list, "list", "l", false, "List all metrics")
	cmd.MarkFlagsMutuallyExclusive("cluster", "node", "list")
	cmd.MarkFlagsOneRequired("cluster", "node", "list")

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.AddCommand(newVersionCmd(stdout))
	return cmd
}

func runProbe(cmd *cobra.Command, sel metricFlags, stdout, stderr io.Writer, connect connectFunc) error {
	if sel.list {
		_, err := fmt.Fprint(stdout, catalog.Describe())
		return err
	}

	cfg, ok := config.FromContext(cmd.Context())
	if !ok {
		return fmt.Errorf("configuration not loaded")
	}

	logger, err := logging.New(stderr, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	req := probe.Request{Mode: probe.ModeCluster, Metric: sel.cluster}
	if cmd.Flags().Changed("node") {
		req = probe.Request{Mode: probe.ModeNode, Metric: sel.node}
	}

	// The metric name is checked before any network activity.
	metric, err := probe.Resolve(req)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ES.Timeout)
	defer cancel()

	q, err := connect(ctx, cfg.ES, logger)
	if err != nil {
		logger.Warn("connection failed", zap.String("host", cfg.ES.Host), zap.Error(err))
		return err
	}

	value, err := probe.New(q, logger).Read(ctx, metric)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdout, value)
	return err
}
