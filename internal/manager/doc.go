// Package manager coordinates the single inference engine behind the HTTP
// API. It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, Load/Ready/Close.
//   - config.go: Config and the Dispatcher it drives.
//   - types.go: lifecycle State.
//   - errors.go: ErrorKind classification for logs and metrics.
//   - generate.go: the Generate pipeline (guardrails, option merge, cache, engine).
//   - cache.go: deterministic response cache backed by ttlcache.
//   - metrics.go: Prometheus collectors.
//   - status_report.go: Health and Status views.
//
// Guardrail checks always run before the engine is called; a rejected request
// never reaches the backend.
package manager
