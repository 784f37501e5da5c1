package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embed(t *testing.T, e *HashingEmbedder, text string) []float32 {
	t.Helper()
	vec, err := e.Embed(context.Background(), text)
	require.NoError(t, err)
	return vec
}

func TestHashingEmbedder_Deterministic(t *testing.T) {
	e := NewHashingEmbedder(0)

	a := embed(t, e, "list all go files recursively")
	b := embed(t, NewHashingEmbedder(0), "list all go files recursively")

	assert.Len(t, a, 256)
	assert.Equal(t, a, b)
	assert.Equal(t, "local:blake3-256", e.Name())
}

func TestHashingEmbedder_SelfDistanceIsZero(t *testing.T) {
	e := NewHashingEmbedder(128)
	vec := embed(t, e, "show disk usage of current directory")

	d, err := CosineDistance(vec, vec)
	require.NoError(t, err)
	assert.InDelta(t, 0, d, 1e-6)
}

func TestHashingEmbedder_RanksRelatedTextCloser(t *testing.T) {
	e := NewHashingEmbedder(256)
	query := embed(t, e, "find large files in home directory")
	related := embed(t, e, "find the largest files in my home directory")
	unrelated := embed(t, e, "restart the nginx service")

	near, err := CosineDistance(query, related)
	require.NoError(t, err)
	far, err := CosineDistance(query, unrelated)
	require.NoError(t, err)

	assert.Less(t, near, far)
}

func TestHashingEmbedder_CaseAndPunctuationInsensitive(t *testing.T) {
	e := NewHashingEmbedder(64)

	assert.Equal(t, embed(t, e, "List Files!"), embed(t, e, "list   files"))
}

func TestHashingEmbedder_EmptyTextIsUsable(t *testing.T) {
	e := NewHashingEmbedder(32)
	vec := embed(t, e, "   ")

	d, err := CosineDistance(vec, vec)
	require.NoError(t, err)
	assert.InDelta(t, 0, d, 1e-6)
}

func TestHashingEmbedder_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHashingEmbedder(8).Embed(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []float32
		want    float64
		wantErr bool
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 0},
		{name: "scaled", a: []float32{1, 0}, b: []float32{5, 0}, want: 0},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 1},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: 2},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 0}, want: 1},
		{name: "length mismatch", a: []float32{1}, b: []float32{1, 0}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineDistance(tt.a, tt.b)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
