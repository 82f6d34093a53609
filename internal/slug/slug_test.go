package slug

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore backs the generator with an in-memory slug set.
type fakeStore struct {
	taken map[string]uint // slug -> owning entity ID
	err   error
	calls int
}

func newFakeStore(taken map[string]uint) *fakeStore {
	if taken == nil {
		taken = map[string]uint{}
	}
	return &fakeStore{taken: taken}
}

func (s *fakeStore) SlugTaken(_ context.Context, _ EntityType, slug string, excludeID uint) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	owner, ok := s.taken[slug]
	if !ok {
		return false, nil
	}
	return owner != excludeID || excludeID == 0, nil
}

// allTakenStore reports every candidate as taken, to exercise exhaustion.
type allTakenStore struct{}

func (allTakenStore) SlugTaken(context.Context, EntityType, string, uint) (bool, error) {
	return true, nil
}

var suffixedPattern = regexp.MustCompile(`^red-t-shirt-[a-z0-9]{6}$`)

func TestMake_Normalization(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"punctuation stripped", "Red T-Shirt!!", "red-t-shirt"},
		{"whitespace collapsed", "  Red   Shirt  ", "red-shirt"},
		{"mixed separators", "Shoes & Socks / Kids", "shoes-socks-kids"},
		{"accents transliterated", "Café Crème", "cafe-creme"},
		{"digits kept", "iPhone 15 Pro", "iphone-15-pro"},
		{"already clean", "plain-slug", "plain-slug"},
		{"all punctuation", "!!! ???", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}

func TestGenerate_NoCollision(t *testing.T) {
	gen := NewGenerator(newFakeStore(nil))

	got, err := gen.Generate(context.Background(), "Red T-Shirt!!", EntityProduct, nil)
	require.NoError(t, err)
	assert.Equal(t, "red-t-shirt", got)
}

func TestGenerate_CollisionAppendsSuffix(t *testing.T) {
	store := newFakeStore(map[string]uint{"red-t-shirt": 7})
	gen := NewGenerator(store)

	got, err := gen.Generate(context.Background(), "Red T-Shirt", EntityProduct, nil)
	require.NoError(t, err)
	assert.Regexp(t, suffixedPattern, got)
}

func TestGenerate_DistinctSlugsForIdenticalNames(t *testing.T) {
	store := newFakeStore(nil)
	gen := NewGenerator(store)
	ctx := context.Background()

	first, err := gen.Generate(ctx, "Red Shirt", EntityProduct, nil)
	require.NoError(t, err)
	store.taken[first] = 1

	second, err := gen.Generate(ctx, "Red Shirt", EntityProduct, nil)
	require.NoError(t, err)
	store.taken[second] = 2

	assert.NotEqual(t, first, second)
}

func TestGenerate_UnchangedNameKeepsSlug(t *testing.T) {
	store := newFakeStore(map[string]uint{"red-t-shirt": 7})
	gen := NewGenerator(store)

	existing := &Existing{ID: 7, Name: "Red T-Shirt", Slug: "red-t-shirt"}
	got, err := gen.Generate(context.Background(), "Red T-Shirt", EntityProduct, existing)
	require.NoError(t, err)

	assert.Equal(t, "red-t-shirt", got)
	assert.Zero(t, store.calls, "unchanged name must not hit the store")
}

func TestGenerate_RenamedEntityExcludesItself(t *testing.T) {
	// The entity owns "blue-shirt" already; renaming to a name that
	// normalizes onto its own slug must not count as a collision.
	store := newFakeStore(map[string]uint{"blue-shirt": 7})
	gen := NewGenerator(store)

	existing := &Existing{ID: 7, Name: "Blue Shirt", Slug: "blue-shirt"}
	got, err := gen.Generate(context.Background(), "Blue  Shirt!", EntityProduct, existing)
	require.NoError(t, err)
	assert.Equal(t, "blue-shirt", got)
}

func TestGenerate_EmptyNormalizationFallsBack(t *testing.T) {
	gen := NewGenerator(newFakeStore(nil))

	got, err := gen.Generate(context.Background(), "!!!", EntityCategory, nil)
	require.NoError(t, err)
	assert.Regexp(t, `^category-[a-z0-9]{6}$`, got)
}

func TestGenerate_ExhaustionFailsLoudly(t *testing.T) {
	gen := NewGenerator(allTakenStore{})

	_, err := gen.Generate(context.Background(), "Red Shirt", EntityProduct, nil)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestGenerate_StoreErrorPropagates(t *testing.T) {
	store := newFakeStore(nil)
	store.err = errors.New("connection refused")
	gen := NewGenerator(store)

	_, err := gen.Generate(context.Background(), "Red Shirt", EntityProduct, nil)
	assert.Error(t, err)
}

func TestGenerate_OutputAlphabet(t *testing.T) {
	store := newFakeStore(map[string]uint{"cafe-creme": 3})
	gen := NewGenerator(store)

	got, err := gen.Generate(context.Background(), "Café Crème", EntityProduct, nil)
	require.NoError(t, err)
	assert.Regexp(t, `^[a-z0-9-]+$`, got)
	assert.NotEmpty(t, got)
}
