// Package theme handles CSS theme loading and hot-reload for the overlay.
// It loads themes from ~/.config/levelosd/themes/ and falls back to the
// embedded themes when no user theme matches.
package theme
