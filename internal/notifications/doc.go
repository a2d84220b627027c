// Package notifications delivers pipeline events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when no topic is set. Event
// categories map to the per-category toggles in the notifications config
// section, so a curator can keep error alerts while muting routine run
// summaries. All pipeline code depends only on the Service interface.
package notifications
