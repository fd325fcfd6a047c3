// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/elastic/esmetrics/internal/config"
	"github.com/elastic/esmetrics/internal/es"
	"github.com/elastic/esmetrics/internal/probe"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, connectES))
}

func connectES(ctx context.Context, cfg config.ESConfig, logger *zap.Logger) (probe.Querier, error) {
	c, err := es.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return c, nil
}
