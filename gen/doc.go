// Package gen produces the initial tuple streams consumed by the
// partitioning engine.
//
// Three sources are provided: RMAT synthesizes a scale-free graph for
// benchmarking, FASTQ derives read-connectivity tuples from the k-mers of
// a sequencing file, and EdgeList lowers an explicit edge set for small
// inputs and tests. Each source implements the same contract: called once
// per rank, it returns that rank's share of the global tuple array.
package gen
