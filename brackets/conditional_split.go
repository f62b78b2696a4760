package brackets

import (
	"context"

	"github.com/Dosada05/tournament-generator/models"
)

// ConditionalSplitGenerator splits groups larger than MaxSize into round robin chunks
// whose games are interleaved.
type ConditionalSplitGenerator struct {
	rnd Randomizer
}

func NewConditionalSplitGenerator(rnd Randomizer) Generator {
	return &ConditionalSplitGenerator{rnd: rnd}
}

func (g *ConditionalSplitGenerator) Name() string {
	return "ConditionalSplit"
}

func (g *ConditionalSplitGenerator) GenerateGames(ctx context.Context, group *models.Group) ([]*models.Game, error) {
	ids, err := prepare(ctx, group, g.rnd)
	if err != nil || ids == nil {
		return nil, err
	}
	if len(ids) <= group.MaxSize() {
		return addGames(group, roundRobin(ids, group.InGame()))
	}

	var perChunk [][][]string
	for _, chunk := range split(ids, group.MaxSize()) {
		perChunk = append(perChunk, roundRobin(chunk, group.InGame()))
	}
	return addGames(group, interleave(perChunk))
}

// split cuts ids into the fewest chunks of at most maxSize, as even as possible.
func split(ids []string, maxSize int) [][]string {
	n := len(ids)
	count := (n + maxSize - 1) / maxSize
	size, extra := n/count, n%count

	chunks := make([][]string, 0, count)
	start := 0
	for i := 0; i < count; i++ {
		end := start + size
		if i < extra {
			end++
		}
		chunks = append(chunks, ids[start:end])
		start = end
	}
	return chunks
}

// interleave takes one game from each chunk in turn.
func interleave(chunks [][][]string) [][]string {
	var out [][]string
	for i := 0; ; i++ {
		took := false
		for _, games := range chunks {
			if i < len(games) {
				out = append(out, games[i])
				took = true
			}
		}
		if !took {
			return out
		}
	}
}
