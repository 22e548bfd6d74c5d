package main

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/parconn/gen"
)

func newFastqCmd() *cobra.Command {
	var (
		file     string
		method   string
		seedfile string
		k        int
		procs    int
		filter   bool
	)

	cmd := &cobra.Command{
		Use:   "fastq",
		Short: "Partition the reads of a FASTQ file by shared k-mers",
		RunE: func(cmd *cobra.Command, args []string) error {
			src := gen.NewFASTQ(file)
			src.K = k
			src.FilterHighFreq = filter
			return runCluster(cmd.Context(), cmd, src, method, seedfile, "none", procs)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "FASTQ input file")
	cmd.Flags().StringVar(&method, "method", "", "partitioning method (standard, inactive, loadbalance)")
	cmd.Flags().StringVar(&seedfile, "seedfile", "", "seed file base name")
	cmd.Flags().IntVar(&k, "k", gen.DefaultKmerLen, "k-mer length (at most 32)")
	cmd.Flags().IntVar(&procs, "procs", 0, "number of ranks (default GOMAXPROCS)")
	cmd.Flags().BoolVar(&filter, "filter", false, "drop reads with over-represented k-mers")

	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("method")
	_ = cmd.MarkFlagRequired("seedfile")

	return cmd
}
