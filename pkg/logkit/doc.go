// Package logkit configures structured, multi-destination logging on top of
// zerolog.
//
// A single Config drives the whole setup:
//   - Console sink (plain or color-coded severity labels)
//   - Rotating file sink (size-bounded, bounded backup count)
//   - Optional JSON rendering for every sink
//   - Optional chat notification sink (min-level INFO, rate limited,
//     failure-isolated)
//   - Optional systemd journal sink
//   - Keyword filtering and static context field injection
//   - Optional process crash logging (deferred RecoverPanics)
//
// Configure builds a Handle that owns its sinks. Setup additionally installs
// the handle as the package default, replacing (and closing) any previous one,
// so repeated calls never accumulate sinks.
package logkit
