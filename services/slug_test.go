package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"My House":              "my-house",
		"  Casa Açaí  ":         "casa-acai",
		"Villa / Lake -- Side!": "villa-lake-side",
		"Ünïcödé Tower 2":       "unicode-tower-2",
		"***":                   "project",
		"":                      "project",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{"my-house": true, "my-house-1": true}
	exists := func(_ context.Context, s string) (bool, error) { return taken[s], nil }

	slug, err := UniqueSlug(context.Background(), "my-house", exists)
	require.NoError(t, err)
	assert.Equal(t, "my-house-2", slug)

	slug, err = UniqueSlug(context.Background(), "studio", exists)
	require.NoError(t, err)
	assert.Equal(t, "studio", slug)

	slug, err = UniqueSlug(context.Background(), "", exists)
	require.NoError(t, err)
	assert.Equal(t, "project", slug)
}

func TestUniqueSlug_LookupError(t *testing.T) {
	boom := errors.New("db down")
	_, err := UniqueSlug(context.Background(), "x", func(context.Context, string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}

func TestOrderGallery(t *testing.T) {
	gallery := []string{"a", "b", "c", "d"}

	got, err := OrderGallery(gallery, []string{"c", "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b", "d"}, got)

	got, err = OrderGallery(gallery, []string{"x", "d", "d"})
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "a", "b", "c"}, got)

	assert.Equal(t, []string{"a", "b", "c", "d"}, gallery)
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"wood", "lake"}, NormalizeTags([]string{" wood", "", "lake", "wood "}))
	assert.Empty(t, NormalizeTags(nil))
}
