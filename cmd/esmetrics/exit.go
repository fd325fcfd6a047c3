// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/elastic/esmetrics/internal/es"
	"github.com/elastic/esmetrics/internal/probe"
)

// Exit codes. Monitoring checks only distinguish zero from non-zero; usage
// errors get their own code so a broken check definition is easy to spot.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// Messages printed on stdout, where the monitoring system reads the result.
const (
	msgWrongArgument    = "Wrong argument!"
	msgConnectionFailed = "Connection to Elasticsearch failed!"
)

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer, connect connectFunc) int {
	root := newRootCmd(stdout, stderr, connect)
	root.SetArgs(args)

	cmd, err := root.ExecuteContextC(context.Background())
	if err == nil {
		return exitOK
	}
	return report(err, cmd, stdout, stderr)
}

// report prints the single diagnostic line for err and maps it to an exit code.
func report(err error, cmd *cobra.Command, stdout, stderr io.Writer) int {
	var (
		connErr *es.ConnectionError
		reqErr  *es.RequestError
	)
	switch {
	case errors.Is(err, probe.ErrUnknownMetric):
		fmt.Fprintln(stdout, msgWrongArgument)
	case errors.As(err, &connErr):
		fmt.Fprintln(stdout, msgConnectionFailed)
	case errors.Is(err, probe.ErrMalformedResponse):
		fmt.Fprintln(stdout, err)
	case errors.As(err, &reqErr):
		fmt.Fprintf(stdout, "Request failed: %v\n", err)
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if cmd != nil {
			fmt.Fprint(stderr, cmd.UsageString())
		}
		return exitUsage
	}
	return exitFailure
}
