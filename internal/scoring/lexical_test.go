package scoring

import (
	"testing"

	"github.com/hyperjump/erabu/internal/models"
)

func TestLexicalScoresBatchNormalization(t *testing.T) {
	chunks := []models.Chunk{
		{DocumentID: "u1", ChunkIndex: 0, Keywords: []string{"alpha", "beta", "gamma"}},
		{DocumentID: "u2", ChunkIndex: 0, Keywords: []string{"alpha", "delta"}},
		{DocumentID: "u3", ChunkIndex: 0, Keywords: []string{"epsilon"}},
	}
	scores, overlaps := LexicalScores([]string{"alpha", "beta"}, chunks)

	if overlaps["u1:0"] != 2 || overlaps["u2:0"] != 1 || overlaps["u3:0"] != 0 {
		t.Fatalf("overlaps = %v", overlaps)
	}
	if scores["u1:0"] != 1.0 {
		t.Errorf("u1:0 score = %v, want 1.0", scores["u1:0"])
	}
	if scores["u2:0"] != 0.5 {
		t.Errorf("u2:0 score = %v, want 0.5", scores["u2:0"])
	}
	if scores["u3:0"] != 0 {
		t.Errorf("u3:0 score = %v, want 0", scores["u3:0"])
	}
}

func TestLexicalScoresNoOverlapAnywhere(t *testing.T) {
	chunks := []models.Chunk{
		{DocumentID: "d", ChunkIndex: 0, Keywords: []string{"x"}},
		{DocumentID: "d", ChunkIndex: 1, Keywords: []string{"y"}},
	}
	scores, _ := LexicalScores([]string{"alpha"}, chunks)
	for id, s := range scores {
		if s != 0 {
			t.Errorf("%s score = %v, want 0 when nothing overlaps", id, s)
		}
	}
}

func TestLexicalScoresCaseInsensitive(t *testing.T) {
	chunks := []models.Chunk{
		{DocumentID: "d", ChunkIndex: 0, Keywords: []string{"Alpha"}},
	}
	scores, _ := LexicalScores([]string{"ALPHA"}, chunks)
	if scores["d:0"] != 1.0 {
		t.Errorf("score = %v, matching should ignore case", scores["d:0"])
	}
}

func TestLexicalScoresBounds(t *testing.T) {
	chunks := []models.Chunk{
		{DocumentID: "d", ChunkIndex: 0, Keywords: []string{"a", "b", "c"}},
		{DocumentID: "d", ChunkIndex: 1, Keywords: []string{"a"}},
	}
	scores, _ := LexicalScores([]string{"a", "b", "c"}, chunks)
	for id, s := range scores {
		if s < 0 || s > 1 {
			t.Errorf("%s score %v outside [0,1]", id, s)
		}
	}
}
