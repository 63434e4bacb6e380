// Package core provides a small, stable facade over infogrep's internal
// engine for programs that want scan results without the CLI. It never
// reads the config directory or touches the network; without explicit
// patterns it uses the embedded secrets set.
//
// Example:
//
//	recs, res, err := core.Scan(ctx, core.Options{Input: ".", Recursive: true})
//	if err != nil { /* handle */ }
//	_ = core.MarshalRecords(os.Stdout, recs)
//	_ = res.Failures
package core
