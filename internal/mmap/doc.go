// Package mmap provides read-only memory-mapped file access.
//
// Mapping an input file lets every rank slice its own byte range without
// per-rank read buffers or seek coordination. The kernel pages data in on
// demand, so a file much larger than memory can still be scanned in
// parallel.
//
// # Usage
//
//	m, err := mmap.Open(path)
//	if err != nil { ... }
//	defer m.Close()
//	chunk := m.Data[lo:hi]
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) via golang.org/x/sys/unix
//   - Windows: CreateFileMapping/MapViewOfFile
package mmap
