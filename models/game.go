package models

import (
	"sort"
)

type ResultType string

const (
	ResultWin    ResultType = "win"
	ResultLoss   ResultType = "loss"
	ResultDraw   ResultType = "draw"
	ResultSecond ResultType = "second"
	ResultThird  ResultType = "third"
)

type Result struct {
	Score  int        `json:"score"`
	Points int        `json:"points"`
	Type   ResultType `json:"type"`
}

// Game is one fixture of a group. Its id is only meaningful inside the id stream of the
// hierarchy the group belongs to.
type Game struct {
	ID      int               `json:"id"`
	GroupID string            `json:"group_id"`
	TeamIDs []string          `json:"team_ids"`
	Results map[string]Result `json:"results,omitempty"`
}

func (g *Game) IsPlayed() bool {
	return len(g.Results) > 0
}

func (g *Game) HasTeam(teamID string) bool {
	for _, id := range g.TeamIDs {
		if id == teamID {
			return true
		}
	}
	return false
}

func (g *Game) teamWith(result ResultType) string {
	for _, id := range g.TeamIDs {
		if r, ok := g.Results[id]; ok && r.Type == result {
			return id
		}
	}
	return ""
}

func (g *Game) Winner() string { return g.teamWith(ResultWin) }
func (g *Game) Loser() string  { return g.teamWith(ResultLoss) }
func (g *Game) Second() string { return g.teamWith(ResultSecond) }
func (g *Game) Third() string  { return g.teamWith(ResultThird) }

func (g *Game) IsDraw() bool {
	return g.teamWith(ResultDraw) != ""
}

// placements ranks the scored teams (highest score first, participant order on ties)
// and names the placement each one earns.
func (g *Game) placements(scores map[string]int) []placement {
	ranked := make([]string, 0, len(scores))
	for _, id := range g.TeamIDs {
		if _, ok := scores[id]; ok {
			ranked = append(ranked, id)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i]] > scores[ranked[j]]
	})

	out := make([]placement, len(ranked))
	if len(ranked) == 2 && scores[ranked[0]] == scores[ranked[1]] {
		for i, id := range ranked {
			out[i] = placement{teamID: id, score: scores[id], result: ResultDraw}
		}
		return out
	}

	var ladder []ResultType
	switch len(ranked) {
	case 1:
		ladder = []ResultType{ResultWin}
	case 2:
		ladder = []ResultType{ResultWin, ResultLoss}
	case 3:
		ladder = []ResultType{ResultWin, ResultSecond, ResultLoss}
	default:
		ladder = []ResultType{ResultWin, ResultSecond, ResultThird, ResultLoss}
	}
	for i, id := range ranked {
		result := ResultLoss
		if i < len(ladder) {
			result = ladder[i]
		}
		out[i] = placement{teamID: id, score: scores[id], result: result}
	}
	return out
}

type placement struct {
	teamID string
	score  int
	result ResultType
}
