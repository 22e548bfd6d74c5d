// Package parconn computes the connected components of very large implicit
// graphs by distributed label propagation.
//
// Parconn partitions graphs whose edges arise from shared k-mers among DNA
// reads (or from a synthetic R-MAT stream for benchmarking). Every vertex
// ends up labeled with the smallest vertex identifier reachable from it, and
// the distinct labels are the partition seeds. The engine is bulk-synchronous:
// goroutine ranks iterate over a globally sorted tuple array and converge in
// O(log d) super-steps, where d is the largest component diameter.
//
// # Quick Start
//
// Partition an explicit edge list:
//
//	res, _ := parconn.Cluster(ctx, gen.NewEdgeList(edges), parconn.Inactive)
//	fmt.Println(res.Seeds) // one label per connected component
//
// Partition the reads of a FASTQ file by shared k-mers:
//
//	src := gen.NewFASTQ("reads.fastq")
//	res, _ := parconn.Cluster(ctx, src, parconn.LoadBalance,
//		parconn.WithProcs(8),
//		parconn.WithSeedStore(seedstore.NewLocalStore("out"), "run.loadbalance"),
//	)
//
// # Methods
//
// Three super-step variants are provided:
//
//	// Standard keeps every tuple in the working set until global
//	// convergence.
//	parconn.Standard
//
//	// Inactive retires the tuples of fully converged partitions, shrinking
//	// the working set as components finish.
//	parconn.Inactive
//
//	// LoadBalance additionally re-decomposes the surviving working set
//	// across ranks after each super-step.
//	parconn.LoadBalance
//
// All three produce identical seed sets; they differ only in runtime on
// skewed inputs.
//
// # Seed Files
//
// Seeds are written one label per line through the seedstore package, which
// provides local, in-memory, S3 and MinIO backends plus optional zstd or lz4
// compression. The seedcmp package compares the seed files of two runs.
package parconn
