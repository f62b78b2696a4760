package models

import (
	"fmt"
	"sort"
)

// Ordering is the key teams are ranked by.
type Ordering string

const (
	OrderByPoints Ordering = "points"
	OrderByScore  Ordering = "score"
)

func ParseOrdering(s string) (Ordering, error) {
	switch o := Ordering(s); o {
	case OrderByPoints, OrderByScore:
		return o, nil
	case "":
		return OrderByPoints, nil
	default:
		return "", fmt.Errorf("%w: unknown ordering %q", ErrConfiguration, s)
	}
}

// RankTeams returns teams sorted best first. Statistics are summed over groupIDs; with no
// groups the tournament-wide running sums are used. Ties keep the input order.
func RankTeams(teams []*Team, groupIDs []string, ordering Ordering) ([]*Team, error) {
	if ordering != OrderByPoints && ordering != OrderByScore {
		return nil, fmt.Errorf("%w: unknown ordering %q", ErrConfiguration, ordering)
	}

	type key struct{ points, score int }
	keys := make(map[*Team]key, len(teams))
	for _, t := range teams {
		if len(groupIDs) == 0 {
			keys[t] = key{t.SumPoints, t.SumScore}
			continue
		}
		var k key
		for _, id := range groupIDs {
			s := t.Stats(id)
			k.points += s.Points
			k.score += s.Score
		}
		keys[t] = k
	}

	out := make([]*Team, len(teams))
	copy(out, teams)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := keys[out[i]], keys[out[j]]
		if ordering == OrderByScore {
			if a.score != b.score {
				return a.score > b.score
			}
			return a.points > b.points
		}
		if a.points != b.points {
			return a.points > b.points
		}
		return a.score > b.score
	})
	return out, nil
}
