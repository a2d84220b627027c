// Package preflight provides readiness checks for the external services and
// filesystem paths that Cadence depends on.
//
// These checks run in two contexts:
//   - The CLI "cadence preflight" command runs RunAll before a long run so a
//     misconfigured provider or an unwritable data directory surfaces up
//     front instead of hours in.
//   - The CLI "cadence status" command reuses individual check functions to
//     display service health alongside catalog counts.
//
// Each check is gated by its config toggle; disabled providers are skipped.
package preflight
