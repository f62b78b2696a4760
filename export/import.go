package export

import (
	"fmt"
	"time"

	"github.com/Dosada05/tournament-generator/models"
)

type importer struct {
	t      *models.Tournament
	teams  map[string]*models.Team
	groups map[string]*models.Group

	// groups paired with their documents, in creation order
	pending []pendingGroup
}

type pendingGroup struct {
	group *models.Group
	doc   GroupDoc
}

// Import rebuilds a tournament from doc. Games are replayed from their scores so team
// statistics come out exactly as they were when the document was exported.
func Import(doc *Document) (*models.Tournament, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: empty document", models.ErrConfiguration)
	}
	if doc.Version > DocumentVersion {
		return nil, fmt.Errorf("%w: unsupported document version %d", models.ErrConfiguration, doc.Version)
	}

	t := models.NewTournament(doc.Name,
		models.WithTournamentID(doc.ID),
		models.WithTiming(time.Duration(doc.Timing.Play), time.Duration(doc.Timing.GameWait),
			time.Duration(doc.Timing.RoundWait), time.Duration(doc.Timing.CategoryWait)),
	)
	if doc.FirstGameID > 0 {
		t.SetAutoIncrement(doc.FirstGameID)
	}

	imp := &importer{t: t, teams: make(map[string]*models.Team), groups: make(map[string]*models.Group)}
	for _, td := range doc.Teams {
		if td.ID == "" {
			return nil, fmt.Errorf("%w: team %q has no id", models.ErrConfiguration, td.Name)
		}
		if _, dup := imp.teams[td.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate team id %q", models.ErrConfiguration, td.ID)
		}
		team := models.NewTeam(td.Name, models.WithTeamID(td.ID))
		team.OriginID = td.OriginID
		imp.teams[td.ID] = team
		if !team.IsBlank() {
			t.AddTeam(team)
		}
	}

	for _, cd := range doc.Categories {
		c := t.Category(cd.Name, models.WithCategoryID(cd.ID))
		for _, rd := range cd.Rounds {
			if err := imp.round(c.Round(rd.Name, models.WithRoundID(rd.ID)), rd); err != nil {
				return nil, err
			}
		}
	}
	for _, rd := range doc.Rounds {
		if err := imp.round(t.Round(rd.Name, models.WithRoundID(rd.ID)), rd); err != nil {
			return nil, err
		}
	}

	// Progressions and filters may point at any group, so they are wired once all exist.
	for _, p := range imp.pending {
		if err := imp.progressions(p.group, p.doc); err != nil {
			return nil, err
		}
	}
	for _, p := range imp.pending {
		if err := imp.games(p.group, p.doc); err != nil {
			return nil, err
		}
	}
	for _, p := range imp.pending {
		if err := imp.progressedState(p.group, p.doc); err != nil {
			return nil, err
		}
	}

	if doc.NextGameID > 0 {
		t.AdvanceAutoIncrement(doc.NextGameID)
	}
	return t, nil
}

func (imp *importer) round(r *models.Round, rd RoundDoc) error {
	if rd.Order > 0 {
		r.Order = rd.Order
	}
	for _, gd := range rd.Groups {
		opts := []models.GroupOption{
			models.WithGroupID(gd.ID),
			models.WithAllowSkip(gd.AllowSkip),
		}
		if gd.Type != "" {
			opts = append(opts, models.WithType(models.GroupType(gd.Type)))
		}
		if gd.InGame != 0 {
			opts = append(opts, models.WithInGame(gd.InGame))
		}
		if gd.MaxSize != 0 {
			opts = append(opts, models.WithMaxSize(gd.MaxSize))
		}
		if gd.Order != 0 {
			opts = append(opts, models.WithOrder(gd.Order))
		}
		if p := gd.Points; p != nil {
			opts = append(opts,
				models.WithPoints(p.Win, p.Draw, p.Loss, p.Second, p.Third),
				models.WithProgressPoints(p.Progress))
		}

		g, err := r.Group(gd.Name, opts...)
		if err != nil {
			return fmt.Errorf("round %q: %w", rd.Name, err)
		}
		if _, dup := imp.groups[g.ID]; dup {
			return fmt.Errorf("%w: duplicate group id %q", models.ErrConfiguration, g.ID)
		}
		imp.groups[g.ID] = g

		for _, id := range gd.Teams {
			team, err := imp.team(id)
			if err != nil {
				return fmt.Errorf("group %q: %w", gd.Name, err)
			}
			g.AddTeam(team)
		}
		imp.pending = append(imp.pending, pendingGroup{group: g, doc: gd})
	}
	return nil
}

func (imp *importer) team(id string) (*models.Team, error) {
	team, ok := imp.teams[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown team %q", models.ErrReference, id)
	}
	return team, nil
}

func (imp *importer) group(id string) (*models.Group, error) {
	g, ok := imp.groups[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown group %q", models.ErrReference, id)
	}
	return g, nil
}

func (imp *importer) progressions(g *models.Group, gd GroupDoc) error {
	for _, pd := range gd.Progressions {
		to, err := imp.group(pd.To)
		if err != nil {
			return fmt.Errorf("progression from %q: %w", g.Name, err)
		}
		p := g.Progression(to, pd.Offset, pd.Length)
		if pd.Points != nil {
			p.SetPoints(*pd.Points)
		}
		for _, fd := range pd.Filters {
			f, err := imp.filter(fd)
			if err != nil {
				return fmt.Errorf("progression from %q: %w", g.Name, err)
			}
			p.AddFilter(f)
		}
	}
	return nil
}

func (imp *importer) filter(fd FilterDoc) (models.Filter, error) {
	if fd.What == "" {
		if fd.Op != "" && fd.Op != string(models.OpAnd) && fd.Op != string(models.OpOr) {
			return models.Filter{}, fmt.Errorf("%w: %q", models.ErrUnknownOperator, fd.Op)
		}
		f := models.Filter{Op: models.LogicOp(fd.Op)}
		for _, child := range fd.Children {
			cf, err := imp.filter(child)
			if err != nil {
				return models.Filter{}, err
			}
			f.Children = append(f.Children, cf)
		}
		return f, nil
	}

	var opts []models.TeamFilterOption
	if fd.Aggregate != "" {
		opts = append(opts, models.WithAggregate(models.Aggregate(fd.Aggregate)))
	}
	if fd.Team != "" {
		opts = append(opts, models.ForTeam(fd.Team))
	}
	for _, id := range fd.Groups {
		g, err := imp.group(id)
		if err != nil {
			return models.Filter{}, err
		}
		opts = append(opts, models.OverGroups(g))
	}
	tf, err := models.NewTeamFilter(models.FilterWhat(fd.What), models.Comparator(fd.How), fd.Value, opts...)
	if err != nil {
		return models.Filter{}, err
	}
	return models.Leaf(tf), nil
}

func (imp *importer) games(g *models.Group, gd GroupDoc) error {
	for _, d := range gd.Games {
		var (
			game *models.Game
			err  error
		)
		if d.ID > 0 {
			game, err = g.RestoreGame(d.ID, d.Teams, nil)
		} else {
			game, err = g.Game(d.Teams...)
		}
		if err != nil {
			return fmt.Errorf("group %q: %w", g.Name, err)
		}
		if len(d.Scores) > 0 {
			if _, err := g.SetResults(game.ID, d.Scores); err != nil {
				return fmt.Errorf("group %q: %w", g.Name, err)
			}
		}
	}
	return nil
}

func (imp *importer) progressedState(g *models.Group, gd GroupDoc) error {
	for _, id := range gd.Progressed {
		team, err := imp.team(id)
		if err != nil {
			return fmt.Errorf("group %q: %w", g.Name, err)
		}
		g.AddProgressed(team)
	}

	progressions := g.Progressions()
	for i, pd := range gd.Progressions {
		if !pd.Progressed {
			continue
		}
		p := progressions[i]
		moved := make([]*models.Team, 0, len(pd.Teams))
		for _, id := range pd.Teams {
			team, err := imp.team(id)
			if err != nil {
				return fmt.Errorf("progression from %q: %w", g.Name, err)
			}
			moved = append(moved, team)
			if team.IsBlank() {
				continue
			}
			points := g.ProgressPoints
			if p.Points != nil {
				points = *p.Points
			}
			team.AddPoints(points)
		}
		p.MarkProgressed(moved)
	}
	return nil
}
