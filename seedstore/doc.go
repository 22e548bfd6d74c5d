// Package seedstore abstracts where seed files live. The engine produces one
// small artifact per run; backends exist for the local file system, process
// memory (tests), S3 and MinIO, plus a compression wrapper for any of them.
package seedstore
