// Package patterns loads pattern files, filters definitions by confidence and
// compiles them into matchers shared by every scan worker.
//
// A pattern file is YAML:
//
//	version: 1.0.0
//	patterns:
//	  - pattern:
//	      name: AWS Access Key
//	      regex: AKIA[0-9A-Z]{16}
//	      confidence: high
//
// Compilation is fail-fast: the first malformed expression aborts the batch
// with a PatternCompileError and no partial set is returned.
package patterns
