package brackets

import (
	"fmt"
	"math/bits"

	"github.com/Dosada05/tournament-generator/models"
)

type DoubleEliminationGenerator struct {
	rnd Randomizer
}

func NewDoubleElimination(rnd Randomizer) Preset {
	if rnd == nil {
		rnd = DefaultRandomizer
	}
	return &DoubleEliminationGenerator{rnd: rnd}
}

func (g *DoubleEliminationGenerator) Name() string {
	return "DoubleElimination"
}

// Build lays out a winners bracket, a losers bracket and a grand final over 2*log2(size)
// rounds. Round r holds winners round r and losers round r-1.
//
// Losers rounds come in pairs: an odd one pairs up the survivors of the losers bracket (or,
// at the start, the first round's losers), the even one that follows matches each survivor
// with a team just dropped from the winners bracket. Groups left with one team or none act
// as byes, so every team still needs two defeats to leave the tournament.
func (g *DoubleEliminationGenerator) Build(t *models.Tournament, teams []*models.Team) error {
	if len(teams) < 3 {
		return fmt.Errorf("%w: double elimination needs at least 3 teams, %d given", models.ErrInsufficientData, len(teams))
	}
	t.AddTeam(teams...)

	size := NextPowerOfTwo(len(teams))
	depth := bits.Len(uint(size)) - 1

	rounds := make([]*models.Round, 2*depth)
	for i := range rounds {
		rounds[i] = t.Round(fmt.Sprintf("Round %d", i+1))
	}

	first, err := firstKnockoutRound(rounds[0], "Winners 1 -", seed(teams, g.rnd))
	if err != nil {
		return err
	}
	winners := [][]*models.Group{first}
	for r := 2; r <= depth; r++ {
		prev := winners[len(winners)-1]
		cur := make([]*models.Group, 0, len(prev)/2)
		for i := 0; i < len(prev)/2; i++ {
			group, err := knockoutGroup(rounds[r-1], fmt.Sprintf("Winners %d - %d", r, i+1))
			if err != nil {
				return err
			}
			prev[2*i].Progression(group, 0, length(1))
			prev[2*i+1].Progression(group, 0, length(1))
			cur = append(cur, group)
		}
		winners = append(winners, cur)
	}

	var survivors []*models.Group
	for j := 1; j < depth; j++ {
		count := size >> (j + 1)
		odd := make([]*models.Group, count)
		even := make([]*models.Group, count)
		for i := 0; i < count; i++ {
			if odd[i], err = knockoutGroup(rounds[2*j-1], fmt.Sprintf("Losers %d - %d", 2*j-1, i+1)); err != nil {
				return err
			}
			if even[i], err = knockoutGroup(rounds[2*j], fmt.Sprintf("Losers %d - %d", 2*j, i+1)); err != nil {
				return err
			}
		}

		feeders, offset := survivors, 0
		if j == 1 {
			feeders, offset = winners[0], 1
		}
		for i, group := range odd {
			feeders[2*i].Progression(group, offset, length(1))
			feeders[2*i+1].Progression(group, offset, length(1))
			group.Progression(even[i], 0, length(1))
			winners[j][i].Progression(even[i], 1, length(1))
		}
		survivors = even
	}

	final, err := knockoutGroup(rounds[len(rounds)-1], "Grand final")
	if err != nil {
		return err
	}
	winners[depth-1][0].Progression(final, 0, length(1))
	survivors[0].Progression(final, 0, length(1))
	return nil
}
