// Package engine contains the core scanning logic for infogrep. It reads
// files in bounded chunks, applies the compiled pattern set to each chunk and
// reports match records. Matches straddling a chunk boundary are found exactly
// once. This package is internal; external consumers should use the stable
// facade in pkg/core.
package engine
