package embedding

import (
	"context"
	"math"
	"reflect"
	"testing"
)

func TestHashEmbedderDeterministic(t *testing.T) {
	e := NewHashEmbedder(64, 6)
	ctx := context.Background()

	v1, err := e.Embed(ctx, "the quick brown fox")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	v2, err := e.Embed(ctx, "the quick brown fox")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if !reflect.DeepEqual(v1, v2) {
		t.Error("same text produced different vectors")
	}
	if len(v1) != 64 {
		t.Errorf("vector length = %d, want 64", len(v1))
	}
}

func TestHashEmbedderCaseInsensitive(t *testing.T) {
	e := NewHashEmbedder(64, 6)
	ctx := context.Background()
	v1, _ := e.Embed(ctx, "Quantum Search")
	v2, _ := e.Embed(ctx, "quantum search")
	if !reflect.DeepEqual(v1, v2) {
		t.Error("casing changed the embedding")
	}
}

func TestHashEmbedderEmptyText(t *testing.T) {
	e := NewHashEmbedder(32, 6)
	v, err := e.Embed(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if !IsZero(v) {
		t.Error("tokenless text should yield the zero vector")
	}
}

func TestHashEmbedderUnitNorm(t *testing.T) {
	e := NewHashEmbedder(128, 6)
	v, _ := e.Embed(context.Background(), "retrieval ranking citation explain")
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if math.Abs(math.Sqrt(sum)-1) > 1e-3 {
		t.Errorf("norm = %v, want about 1", math.Sqrt(sum))
	}
}

func TestContentHashChangesWithPosition(t *testing.T) {
	base := ContentHash("doc-1", 1, 0, "hello")
	tests := []struct {
		name string
		hash string
	}{
		{"different doc", ContentHash("doc-2", 1, 0, "hello")},
		{"different page", ContentHash("doc-1", 2, 0, "hello")},
		{"different index", ContentHash("doc-1", 1, 1, "hello")},
		{"different text", ContentHash("doc-1", 1, 0, "bye")},
	}
	for _, tt := range tests {
		if tt.hash == base {
			t.Errorf("%s: hash collided with base", tt.name)
		}
	}
	if again := ContentHash("doc-1", 1, 0, "hello"); again != base {
		t.Error("same inputs produced different hashes")
	}
}

func TestModelID(t *testing.T) {
	m := ModelSpec{Provider: "hash", Model: "token-hash", Version: "v1"}
	if got := m.ModelID(); got != "hash/token-hash@v1" {
		t.Errorf("ModelID = %q", got)
	}
}

func TestCacheLRUEviction(t *testing.T) {
	c := NewCache(2)
	c.Put("m", "h1", []float64{1})
	c.Put("m", "h2", []float64{2})
	c.Get("m", "h1") // h2 is now least recently used
	c.Put("m", "h3", []float64{3})

	if _, ok := c.Get("m", "h2"); ok {
		t.Error("h2 should have been evicted")
	}
	if _, ok := c.Get("m", "h1"); !ok {
		t.Error("h1 should still be cached")
	}
	if _, ok := c.Get("m", "h3"); !ok {
		t.Error("h3 should be cached")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}
