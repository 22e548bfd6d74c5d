package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/parconn"
	"github.com/hupe1980/parconn/seedstore"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "parconn",
		Short:        "Distributed connected-component partitioning",
		Long: `parconn partitions the connected components of a graph whose edges
come from a synthetic R-MAT stream or from shared k-mers among the
reads of a FASTQ file. The distinct component representatives are
written as a seed file, one per line.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newRMATCmd(), newFastqCmd(), newCompareCmd())

	return cmd
}

func runLogger(cmd *cobra.Command) *parconn.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		return parconn.NewTextLogger(slog.LevelDebug)
	}
	return parconn.NewTextLogger(slog.LevelInfo)
}

// runCluster executes a partitioning run and writes the seed file
// <seedfile>.<method> to the local file system.
func runCluster(ctx context.Context, cmd *cobra.Command, src parconn.Source, methodName, seedfile, codecName string, procs int) error {
	method, err := parconn.ParseMethod(methodName)
	if err != nil {
		return err
	}

	codec, err := seedstore.CodecByName(codecName)
	if err != nil {
		return err
	}
	store := seedstore.WithCompression(seedstore.NewLocalStore(""), codec)
	name := seedfile + "." + method.String()

	opts := []parconn.Option{
		parconn.WithLogger(runLogger(cmd)),
		parconn.WithSeedStore(store, name),
	}
	if procs > 0 {
		opts = append(opts, parconn.WithProcs(procs))
	}

	res, err := parconn.Cluster(ctx, src, method, opts...)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d partitions in %d iterations (%s, P=%d)\n",
		name, len(res.Seeds), res.Iterations, res.Duration.Round(time.Millisecond), res.Procs)
	return nil
}
