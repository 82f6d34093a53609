// Package slug derives unique, URL-safe identifiers from display names.
// Slugs are lowercase alphanumerics joined by hyphens; collisions against
// the persisted collection are resolved with a short random suffix.
package slug

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// EntityType selects which collection a slug must be unique within.
type EntityType string

const (
	EntityProduct  EntityType = "product"
	EntityCategory EntityType = "category"
	EntityTag      EntityType = "tag"
	EntityRole     EntityType = "role"
	EntityUser     EntityType = "user"
)

const (
	suffixLength      = 6
	maxSuffixAttempts = 3
)

// suffix space is 36^6 (~2.1 billion); a second collision after suffixing
// is effectively unreachable, but attempts are bounded so a pathological
// store can never make Generate loop forever.
var ErrExhausted = errors.New("slug: suffix attempts exhausted")

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Store is the persisted-collection lookup the generator checks
// candidates against. excludeID skips the entity being updated so an
// entity never collides with itself (0 means no exclusion).
type Store interface {
	SlugTaken(ctx context.Context, entity EntityType, slug string, excludeID uint) (bool, error)
}

// Existing identifies the entity being updated, if any. Supplying it
// keeps the slug stable when the display name has not changed.
type Existing struct {
	ID   uint
	Name string
	Slug string
}

type Generator struct {
	store Store
}

func NewGenerator(store Store) *Generator {
	return &Generator{store: store}
}

// Generate returns a unique slug for name within the entity's collection.
//
// When existing is supplied and its name equals the new name, the current
// slug is returned untouched: updating unrelated fields never perturbs a
// published URL. Otherwise the normalized candidate is checked against
// the store and suffixed on collision.
func (g *Generator) Generate(ctx context.Context, name string, entity EntityType, existing *Existing) (string, error) {
	if existing != nil && existing.Name == name {
		return existing.Slug, nil
	}

	var excludeID uint
	if existing != nil {
		excludeID = existing.ID
	}

	candidate := Make(name)
	if candidate == "" {
		// All-punctuation names normalize to nothing; fall back to a
		// fully random slug scoped by entity type.
		suffix, err := randomSuffix()
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%s", entity, suffix)
	}

	taken, err := g.store.SlugTaken(ctx, entity, candidate, excludeID)
	if err != nil {
		return "", err
	}
	if !taken {
		return candidate, nil
	}

	for attempt := 0; attempt < maxSuffixAttempts; attempt++ {
		suffix, err := randomSuffix()
		if err != nil {
			return "", err
		}
		suffixed := fmt.Sprintf("%s-%s", candidate, suffix)

		taken, err := g.store.SlugTaken(ctx, entity, suffixed, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return suffixed, nil
		}
	}

	return "", ErrExhausted
}

// Make normalizes a display name into a slug candidate: Unicode combining
// marks are stripped after NFD decomposition, letters are lowercased, and
// every run of non-alphanumerics collapses to a single hyphen. The result
// may be empty for names with no alphanumeric content.
func Make(name string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	normalized, _, err := transform.String(stripMarks, name)
	if err != nil {
		normalized = name
	}

	var b strings.Builder
	b.Grow(len(normalized))
	pendingHyphen := false
	for _, r := range strings.ToLower(normalized) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			if b.Len() > 0 {
				pendingHyphen = true
			}
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}

	return b.String()
}

func randomSuffix() (string, error) {
	buf := make([]byte, suffixLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = suffixAlphabet[int(b)%len(suffixAlphabet)]
	}
	return string(buf), nil
}
