package brackets

import (
	"context"

	"github.com/Dosada05/tournament-generator/models"
)

type RoundRobinGenerator struct {
	rnd Randomizer
}

func NewRoundRobinGenerator(rnd Randomizer) Generator {
	return &RoundRobinGenerator{rnd: rnd}
}

func (g *RoundRobinGenerator) Name() string {
	return "RoundRobin"
}

// GenerateGames makes every combination of InGame teams meet once.
func (g *RoundRobinGenerator) GenerateGames(ctx context.Context, group *models.Group) ([]*models.Game, error) {
	ids, err := prepare(ctx, group, g.rnd)
	if err != nil || ids == nil {
		return nil, err
	}
	return addGames(group, roundRobin(ids, group.InGame()))
}

func roundRobin(ids []string, inGame int) [][]string {
	if len(ids) < 2 {
		return nil
	}
	// too few teams for a full game: everybody plays together once
	if len(ids) < inGame {
		return [][]string{append([]string(nil), ids...)}
	}
	switch inGame {
	case 3:
		return lockedRoundRobin(ids, 3, circle)
	case 4:
		return lockedRoundRobin(ids, 4, func(rest []string) [][]string {
			return lockedRoundRobin(rest, 3, circle)
		})
	default:
		return circle(ids)
	}
}

// circle is the circle method for pairs. An odd team count gets a bye slot whose
// pairings are skipped.
func circle(ids []string) [][]string {
	const bye = ""
	list := append([]string(nil), ids...)
	if len(list)%2 == 1 {
		list = append(list, bye)
	}
	n := len(list)

	games := make([][]string, 0, n*(n-1)/2)
	for round := 0; round < n-1; round++ {
		for i := 0; i < n/2; i++ {
			home, away := list[i], list[n-1-i]
			if home == bye || away == bye {
				continue
			}
			games = append(games, []string{home, away})
		}
		// first stays, second moves to the end
		rotated := make([]string, 0, n)
		rotated = append(rotated, list[0])
		rotated = append(rotated, list[2:]...)
		list = append(rotated, list[1])
	}
	return games
}

// lockedRoundRobin locks the first remaining team, schedules the rest with smaller and adds
// the locked team to each of those games, until fewer than size teams are left.
func lockedRoundRobin(ids []string, size int, smaller func([]string) [][]string) [][]string {
	var games [][]string
	rest := append([]string(nil), ids...)
	for len(rest) >= size {
		locked := rest[0]
		rest = rest[1:]
		for _, game := range smaller(rest) {
			games = append(games, append([]string{locked}, game...))
		}
	}
	return games
}
