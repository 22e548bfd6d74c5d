package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/parconn/seedcmp"
	"github.com/hupe1980/parconn/seedstore"
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <seedfileA> <seedfileB>",
		Short: "Compare the seed files of two runs",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := seedstore.NewLocalStore("")

			res, err := seedcmp.CompareFiles(cmd.Context(), store, args[0], args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s has %d partitions\n", args[0], res.PartitionsA)
			fmt.Fprintf(out, "%s has %d partitions\n", args[1], res.PartitionsB)
			if res.Equal {
				fmt.Fprintln(out, "SUCCESS: both files contain the same partitions")
			} else {
				fmt.Fprintln(out, "FAILURE: the files contain different partitions")
			}
			return nil
		},
	}
	return cmd
}
