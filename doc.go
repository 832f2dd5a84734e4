// Package otcheck validates operational-transformation operation logs.
//
// A client edits a document and sends the server a log of skip, delete and
// insert operations together with the text it started from, the text it
// ended with, and its own claim about whether the log reproduces that text.
// otcheck replays the log over a code point buffer and reports whether the
// claim holds.
//
// Features:
//
//   - **Lenient replay**: out of bounds operations mark a log invalid without
//     aborting, so the verdict is always a boolean.
//   - **Wire formats**: JSON, YAML and TOML logs and case documents.
//   - **Case suites**: directories of stored cases validated in bulk, with a
//     persistent verdict index and a watch mode.
//   - **Strict apply and diff**: commit a log onto server contents or derive
//     one from two texts.
//
// Usage:
//
//	ok, err := otcheck.Validate("abc", "abXc",
//		`[{"op": "skip", "count": 2}, {"op": "insert", "chars": "X"}]`, true)
//
//	// Or configure a service with functional options
//	svc, err := otcheck.New(
//		otcheck.WithFormat("yaml"),
//		otcheck.WithLogger(logger),
//	)
package otcheck
