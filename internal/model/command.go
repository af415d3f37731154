// Package model defines the core data structures for levelosd.
package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind is the action a command asks the daemon to perform.
type Kind int

const (
	KindIncrease Kind = iota
	KindDecrease
	KindToggleMute
)

// KindNames maps command kinds to their wire and log names.
var KindNames = map[Kind]string{
	KindIncrease:   "increase",
	KindDecrease:   "decrease",
	KindToggleMute: "toggle-mute",
}

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	if name, ok := KindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind parses a kind name, accepting the short aliases used by the CLI.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "increase", "inc", "i", "+":
		return KindIncrease, nil
	case "decrease", "dec", "d", "-":
		return KindDecrease, nil
	case "toggle-mute", "mute", "unmute", "m", "/":
		return KindToggleMute, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Validation errors.
var (
	ErrUnknownKind       = errors.New("unknown command kind")
	ErrNegativeMagnitude = errors.New("magnitude must not be negative")
)

// Command is a single adjustment request received from a client.
// It is an immutable value once constructed.
type Command struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Magnitude  int       `json:"magnitude"` // percentage points, unused for toggle-mute
	Source     string    `json:"source"`    // D-Bus sender or "internal"
	ReceivedAt time.Time `json:"received_at"`
}

// NewCommand creates a Command with a generated ULID.
func NewCommand(kind Kind, magnitude int, source string) (Command, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return Command{}, fmt.Errorf("failed to generate ULID: %w", err)
	}

	cmd := Command{
		ID:         id.String(),
		Kind:       kind,
		Magnitude:  magnitude,
		Source:     source,
		ReceivedAt: time.Now(),
	}
	if kind == KindToggleMute {
		cmd.Magnitude = 0
	}
	return cmd, cmd.Validate()
}

// Validate checks the command is well formed.
func (c Command) Validate() error {
	if _, ok := KindNames[c.Kind]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownKind, int(c.Kind))
	}
	if c.Kind != KindToggleMute && c.Magnitude < 0 {
		return ErrNegativeMagnitude
	}
	return nil
}

// String renders the command for logs, e.g. "increase(5)".
func (c Command) String() string {
	if c.Kind == KindToggleMute {
		return c.Kind.String()
	}
	return fmt.Sprintf("%s(%d)", c.Kind, c.Magnitude)
}
