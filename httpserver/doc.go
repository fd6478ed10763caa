// Package httpserver exposes the mint, verify and registry workflows over
// HTTP.
//
// The API listener serves:
//
//   - POST /api/mint                        - mint and deliver one token
//   - POST /api/verify                      - verification report for one asset
//   - POST /api/verify-multiple             - reports for a list of assets
//   - GET  /api/certificate/{asset_id}      - certificate details of a minted asset
//   - POST /api/registry/register           - register a certificate hash
//   - GET  /api/registry/owner/{cert_hash}  - current owner of a certificate
//   - POST /api/registry/transfer           - transfer certificate ownership
//
// Health and lifecycle endpoints (livez, readyz, drain, undrain) and an
// optional pprof mount live next to the API. Prometheus metrics are served
// on a separate listener so scrapes keep working while the API drains.
//
// Recoverable failures never terminate the process: handlers map domain
// errors to status codes and report partial outcomes (token minted but not
// delivered, mail not sent) in the response body.
package httpserver
