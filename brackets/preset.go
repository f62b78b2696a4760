package brackets

import (
	"fmt"
	"math/bits"

	"github.com/Dosada05/tournament-generator/models"
)

// Preset lays out rounds, groups and progressions of a common tournament format.
type Preset interface {
	Build(t *models.Tournament, teams []*models.Team) error

	Name() string
}

// PresetByName resolves the preset names accepted by the API and the CLI.
func PresetByName(name string, rnd Randomizer) (Preset, error) {
	if rnd == nil {
		rnd = DefaultRandomizer
	}
	switch name {
	case "single_elimination":
		return NewSingleElimination(rnd), nil
	case "double_elimination":
		return NewDoubleElimination(rnd), nil
	case "r2g":
		return NewR2G(), nil
	default:
		return nil, fmt.Errorf("%w: unknown preset %q", models.ErrConfiguration, name)
	}
}

// NextPowerOfTwo returns the bracket size able to hold n teams.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// Byes is the number of empty slots in a knockout bracket for n teams.
func Byes(n int) int {
	return NextPowerOfTwo(n) - n
}

func length(n int) *int {
	return &n
}

func seed(teams []*models.Team, rnd Randomizer) []*models.Team {
	out := append([]*models.Team(nil), teams...)
	rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// firstKnockoutRound fills size/2 groups: the first n-size/2 get two teams, the rest one
// team each and pass it on without playing.
func firstKnockoutRound(round *models.Round, label string, teams []*models.Team) ([]*models.Group, error) {
	size := NextPowerOfTwo(len(teams))
	paired := len(teams) - size/2

	groups := make([]*models.Group, 0, size/2)
	next := 0
	for i := 0; i < size/2; i++ {
		g, err := round.Group(fmt.Sprintf("%s %d", label, i+1), models.WithInGame(2), models.WithType(models.RoundRobin))
		if err != nil {
			return nil, err
		}
		take := 1
		if i < paired {
			take = 2
		}
		g.AddTeam(teams[next : next+take]...)
		next += take
		groups = append(groups, g)
	}
	return groups, nil
}

func knockoutGroup(round *models.Round, name string) (*models.Group, error) {
	return round.Group(name, models.WithInGame(2), models.WithType(models.RoundRobin))
}
