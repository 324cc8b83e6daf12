// Package idgen provides the id strategies a graph can be constructed with.
// A strategy is a plain function so tests can inject deterministic ids.
package idgen

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
	nanoid "github.com/matoous/go-nanoid/v2"
)

// Generator returns a new unique id on every call.
type Generator func() (string, error)

// Strategy names accepted by FromStrategy.
const (
	StrategyUUID     = "uuid"
	StrategyNanoid   = "nanoid"
	StrategySequence = "sequence"
)

// Alphabet defines the character set used for the random portion of nanoid ids.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters in a nanoid id (excluding the prefix).
var Length = 10

// UUID returns a generator of random (version 4) UUID strings.
func UUID() Generator {
	return func() (string, error) {
		id, err := uuid.NewRandom()
		if err != nil {
			return "", fmt.Errorf("idgen: %w", err)
		}
		return id.String(), nil
	}
}

// Nanoid returns a generator of short, URL-safe ids with the given prefix.
func Nanoid(prefix string) Generator {
	return func() (string, error) {
		id, err := nanoid.Generate(Alphabet, Length)
		if err != nil {
			return "", fmt.Errorf("idgen: %w", err)
		}
		return prefix + id, nil
	}
}

// Sequence returns a generator of prefix1, prefix2, ... Each call to
// Sequence starts its own counter.
func Sequence(prefix string) Generator {
	var n atomic.Uint64
	return func() (string, error) {
		return prefix + strconv.FormatUint(n.Add(1), 10), nil
	}
}

// FromStrategy returns the generator for a strategy name. The prefix is
// ignored by the uuid strategy.
func FromStrategy(name, prefix string) (Generator, error) {
	switch name {
	case "", StrategyUUID:
		return UUID(), nil
	case StrategyNanoid:
		return Nanoid(prefix), nil
	case StrategySequence:
		return Sequence(prefix), nil
	}
	return nil, fmt.Errorf("idgen: unknown strategy %q (must be uuid, nanoid or sequence)", name)
}
