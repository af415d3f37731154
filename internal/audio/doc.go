// Package audio plays the short feedback sound volumed emits after a volume
// step. Sounds are decoded once with beep (WAV, OGG or MP3), cached in memory
// and re-read when the file on disk changes.
package audio
