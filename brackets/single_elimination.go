package brackets

import (
	"fmt"
	"math/bits"

	"github.com/Dosada05/tournament-generator/models"
)

type SingleEliminationGenerator struct {
	rnd Randomizer
}

func NewSingleElimination(rnd Randomizer) Preset {
	if rnd == nil {
		rnd = DefaultRandomizer
	}
	return &SingleEliminationGenerator{rnd: rnd}
}

func (g *SingleEliminationGenerator) Name() string {
	return "SingleElimination"
}

// Build creates log2(size) knockout rounds. Teams without an opponent in the first round
// sit alone in a group and move on unplayed.
func (g *SingleEliminationGenerator) Build(t *models.Tournament, teams []*models.Team) error {
	if len(teams) < 2 {
		return fmt.Errorf("%w: single elimination needs at least 2 teams, %d given", models.ErrInsufficientData, len(teams))
	}
	t.AddTeam(teams...)

	size := NextPowerOfTwo(len(teams))
	rounds := bits.Len(uint(size)) - 1

	prev, err := firstKnockoutRound(t.Round("Round 1"), "Round 1 -", seed(teams, g.rnd))
	if err != nil {
		return err
	}
	for r := 2; r <= rounds; r++ {
		round := t.Round(fmt.Sprintf("Round %d", r))
		cur := make([]*models.Group, 0, len(prev)/2)
		for i := 0; i < len(prev)/2; i++ {
			group, err := knockoutGroup(round, fmt.Sprintf("Round %d - %d", r, i+1))
			if err != nil {
				return err
			}
			prev[2*i].Progression(group, 0, length(1))
			prev[2*i+1].Progression(group, 0, length(1))
			cur = append(cur, group)
		}
		prev = cur
	}
	return nil
}
