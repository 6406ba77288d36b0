// Package http provides HTTP handlers and middleware for the roster API.
//
// The router exposes the following endpoints:
//   - POST /materializations: triggers a materialization run. Body:
//     {"horizon_days","timezone"}, both optional; omitted fields fall back to
//     the server defaults. Responds 200 with the run counters defined in
//     materialization_handler.go.
//   - GET /shifts/{id}/suggestions: returns the ranked candidate list for an
//     open shift as produced by the recommendation service. Unknown shift ids
//     map to 404.
//   - GET /work-items: lists pending work items with their urgency score and
//     derived urgency level. The optional status query parameter currently
//     accepts only "pending".
//   - GET /healthz: liveness plus a storage ping.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
