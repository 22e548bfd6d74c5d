package main

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/parconn/gen"
)

func newRMATCmd() *cobra.Command {
	var (
		scale      int
		edgefactor int
		procs      int
		method     string
		seedfile   string
		compress   string
	)

	cmd := &cobra.Command{
		Use:   "rmat",
		Short: "Partition a synthetic R-MAT graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			src := gen.NewRMAT(scale, edgefactor)
			return runCluster(cmd.Context(), cmd, src, method, seedfile, compress, procs)
		},
	}

	cmd.Flags().IntVar(&scale, "scale", 0, "log2 of the vertex count")
	cmd.Flags().IntVar(&edgefactor, "edgefactor", 16, "edges per vertex")
	cmd.Flags().StringVar(&method, "method", "", "partitioning method (standard, inactive, loadbalance)")
	cmd.Flags().StringVar(&seedfile, "seedfile", "", "seed file base name")
	cmd.Flags().IntVar(&procs, "procs", 0, "number of ranks (default GOMAXPROCS)")
	cmd.Flags().StringVar(&compress, "compress", "none", "seed file compression (none, zstd, lz4)")

	_ = cmd.MarkFlagRequired("scale")
	_ = cmd.MarkFlagRequired("edgefactor")
	_ = cmd.MarkFlagRequired("method")
	_ = cmd.MarkFlagRequired("seedfile")

	return cmd
}
