// Package wrapper holds per-command decorators that need the concrete input
// type, as opposed to the type-erased behaviors of package cqrs/behavior.
package wrapper
