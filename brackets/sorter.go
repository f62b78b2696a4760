package brackets

import (
	"github.com/Dosada05/tournament-generator/models"
)

// Rest buckets. A team's freshness is 4 for playing the last placed game, 2 for the one
// before and 1 for the one before that, so every value 1..7 names one combination.
var (
	playedLast      = []int{4, 5, 6, 7}
	playedLastTwo   = []int{6, 7}
	playedLastThree = []int{7}
)

// The game placed back-1 games before the newest loses its freshness in these steps.
var decays = []struct{ back, by int }{{2, 2}, {3, 1}, {4, 1}}

type sortCycle struct {
	exclude []int
	overdue bool
}

// Tried in order; the first game passing a cycle is placed next.
var sortCycles = []sortCycle{
	{exclude: playedLast},
	{exclude: playedLastTwo},
	{exclude: playedLastThree, overdue: true},
	{exclude: playedLastThree},
	{overdue: true},
}

// OrderGames reorders the group's games so teams rarely play twice in a row, then
// renumbers them in the new order. Groups with four games or fewer are left as they are.
func OrderGames(group *models.Group) ([]*models.Game, error) {
	games := group.Games()
	if len(games) <= 4 {
		return games, nil
	}
	if err := group.ReorderGames(orderByRest(games)); err != nil {
		return nil, err
	}
	return group.Games(), nil
}

// OrderRound orders the games of every group in the round.
func OrderRound(round *models.Round) error {
	for _, group := range round.Groups() {
		if _, err := OrderGames(group); err != nil {
			return err
		}
	}
	return nil
}

type restSorter struct {
	freshness map[string]int
	placed    []*models.Game
}

func orderByRest(games []*models.Game) []*models.Game {
	s := &restSorter{freshness: make(map[string]int), placed: make([]*models.Game, 0, len(games))}
	remaining := append([]*models.Game(nil), games...)
	for len(remaining) > 0 {
		i := s.pick(remaining)
		s.place(remaining[i])
		remaining = append(remaining[:i], remaining[i+1:]...)
	}
	return s.placed
}

func (s *restSorter) pick(remaining []*models.Game) int {
	for _, cycle := range sortCycles {
		for i, game := range remaining {
			if s.fits(game, cycle) {
				return i
			}
		}
	}
	return 0
}

func (s *restSorter) fits(game *models.Game, cycle sortCycle) bool {
	overdue := false
	for _, id := range game.TeamIDs {
		v := s.freshness[id]
		for _, x := range cycle.exclude {
			if v == x {
				return false
			}
		}
		if v >= 1 && v <= 3 {
			overdue = true
		}
	}
	return !cycle.overdue || overdue
}

func (s *restSorter) place(game *models.Game) {
	s.placed = append(s.placed, game)
	for _, id := range game.TeamIDs {
		s.freshness[id] += 4
	}
	for _, d := range decays {
		if len(s.placed) >= d.back {
			for _, id := range s.placed[len(s.placed)-d.back].TeamIDs {
				s.freshness[id] -= d.by
			}
		}
	}
}
