package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-generator/models"
)

// Generator produces the games a group has to play and appends them to the group.
type Generator interface {
	GenerateGames(ctx context.Context, group *models.Group) ([]*models.Game, error)

	Name() string
}

// ForGroup picks the generator matching the group's scheduling type.
func ForGroup(group *models.Group, rnd Randomizer) (Generator, error) {
	if rnd == nil {
		rnd = DefaultRandomizer
	}
	switch group.Type() {
	case models.RoundRobin:
		return NewRoundRobinGenerator(rnd), nil
	case models.PairOnce:
		return NewPairOnceGenerator(rnd), nil
	case models.ConditionalSplit:
		return NewConditionalSplitGenerator(rnd), nil
	default:
		return nil, fmt.Errorf("%w: unknown group type %q", models.ErrConfiguration, group.Type())
	}
}

// GenerateGames replaces the group's games with a freshly generated set.
func GenerateGames(ctx context.Context, group *models.Group, rnd Randomizer) ([]*models.Game, error) {
	gen, err := ForGroup(group, rnd)
	if err != nil {
		return nil, err
	}
	return gen.GenerateGames(ctx, group)
}

// GenerateRound generates games for every group of the round that has teams.
func GenerateRound(ctx context.Context, round *models.Round, rnd Randomizer) ([]*models.Game, error) {
	var out []*models.Game
	for _, group := range round.Groups() {
		if len(group.Teams()) == 0 {
			continue
		}
		games, err := GenerateGames(ctx, group, rnd)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", group.Name, err)
		}
		out = append(out, games...)
	}
	return out, nil
}

// prepare validates the group and returns its team ids shuffled by rnd. A nil slice with
// a nil error means the group is a bye and gets no games.
func prepare(ctx context.Context, group *models.Group, rnd Randomizer) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	teams := group.Teams()
	if len(teams) == 0 {
		return nil, fmt.Errorf("%w: no teams in group %q", models.ErrInsufficientData, group.Name)
	}
	group.ClearGames()
	if len(teams) == 1 {
		return nil, nil
	}

	ids := make([]string, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	if rnd == nil {
		rnd = DefaultRandomizer
	}
	rnd.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return ids, nil
}

func addGames(group *models.Group, schedule [][]string) ([]*models.Game, error) {
	games := make([]*models.Game, 0, len(schedule))
	for _, teamIDs := range schedule {
		game, err := group.Game(teamIDs...)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, nil
}
