package brackets

import (
	"context"

	"github.com/Dosada05/tournament-generator/models"
)

// PairOnceGenerator puts every team in exactly one game.
type PairOnceGenerator struct {
	rnd Randomizer
}

func NewPairOnceGenerator(rnd Randomizer) Generator {
	return &PairOnceGenerator{rnd: rnd}
}

func (g *PairOnceGenerator) Name() string {
	return "PairOnce"
}

func (g *PairOnceGenerator) GenerateGames(ctx context.Context, group *models.Group) ([]*models.Game, error) {
	ids, err := prepare(ctx, group, g.rnd)
	if err != nil || ids == nil {
		return nil, err
	}

	inGame := group.InGame()
	if extra := len(ids) % inGame; extra > 0 {
		discarded := ids[len(ids)-extra:]
		if !group.AllowSkip {
			names := make([]string, len(discarded))
			for i, id := range discarded {
				names[i] = group.Team(id).Name
			}
			return nil, &models.SchedulingConflictError{
				Group:     group.Name,
				InGame:    inGame,
				TeamCount: len(ids),
				Discarded: names,
			}
		}
		ids = ids[:len(ids)-extra]
	}

	schedule := make([][]string, 0, len(ids)/inGame)
	for i := 0; i+inGame <= len(ids); i += inGame {
		schedule = append(schedule, append([]string(nil), ids[i:i+inGame]...))
	}
	return addGames(group, schedule)
}
