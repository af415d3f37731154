// Package coordinator serializes adjustment commands onto the UI context and
// keeps the overlay visible for as long as any command is still within its
// hide delay. Bursts of commands coalesce into a single overlay that hides
// once the most recent command has settled.
package coordinator
