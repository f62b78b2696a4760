package brackets

import (
	"fmt"

	"github.com/Dosada05/tournament-generator/models"
)

// R2GGenerator builds the three-round "round two groups" format. Groups are named by the
// wins/losses record of the teams they hold: everybody starts in 0/0, unbeaten teams move
// up, beaten ones move down.
type R2GGenerator struct{}

func NewR2G() Preset {
	return &R2GGenerator{}
}

func (g *R2GGenerator) Name() string {
	return "R2G"
}

func (g *R2GGenerator) Build(t *models.Tournament, teams []*models.Team) error {
	if len(teams) < 3 {
		return fmt.Errorf("%w: R2G needs at least 3 teams, %d given", models.ErrInsufficientData, len(teams))
	}
	t.AddTeam(teams...)

	layout := [][]string{{"0/0"}, {"1/0", "0/1"}, {"2/0", "1/1", "0/2"}}
	groups := make(map[string]*models.Group)
	for i, names := range layout {
		round := t.Round(fmt.Sprintf("Round %d", i+1))
		for _, name := range names {
			group, err := round.Group(name,
				models.WithType(models.PairOnce),
				models.WithInGame(2),
				models.WithAllowSkip(true),
			)
			if err != nil {
				return err
			}
			groups[name] = group
		}
	}
	groups["0/0"].AddTeam(teams...)

	unbeaten, err := models.NewTeamFilter(models.FilterLosses, models.CmpEQ, 0)
	if err != nil {
		return err
	}
	beaten, err := models.NewTeamFilter(models.FilterLosses, models.CmpGTE, 1)
	if err != nil {
		return err
	}

	links := []struct {
		from, to string
		filter   *models.TeamFilter
	}{
		{"0/0", "1/0", unbeaten},
		{"0/0", "0/1", beaten},
		{"1/0", "2/0", unbeaten},
		{"1/0", "1/1", beaten},
		{"0/1", "1/1", unbeaten},
		{"0/1", "0/2", beaten},
	}
	for _, l := range links {
		groups[l.from].Progression(groups[l.to], 0, nil).AddFilter(models.Leaf(l.filter))
	}
	return nil
}
