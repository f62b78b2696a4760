package models

import (
	"fmt"
	"sort"

	"github.com/Dosada05/tournament-generator/containers"
	"github.com/google/uuid"
)

// GroupType selects the scheduling strategy of a group.
type GroupType string

const (
	RoundRobin       GroupType = "round_robin"
	PairOnce         GroupType = "pair_once"
	ConditionalSplit GroupType = "conditional_split"
)

func (t GroupType) Valid() bool {
	switch t {
	case RoundRobin, PairOnce, ConditionalSplit:
		return true
	}
	return false
}

const (
	DefaultWinPoints      = 3
	DefaultDrawPoints     = 1
	DefaultLossPoints     = 0
	DefaultSecondPoints   = 2
	DefaultThirdPoints    = 1
	DefaultProgressPoints = 50
	DefaultMaxSize        = 4
)

type Group struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`

	WinPoints      int `json:"win_points"`
	DrawPoints     int `json:"draw_points"`
	LossPoints     int `json:"loss_points"`
	SecondPoints   int `json:"second_points"`
	ThirdPoints    int `json:"third_points"`
	ProgressPoints int `json:"progress_points"`

	// Lets pair-once scheduling drop the teams that don't fit into full games.
	AllowSkip bool `json:"allow_skip"`

	groupType GroupType
	inGame    int
	maxSize   int

	teams        []*Team
	games        []*Game
	progressions []*Progression
	progressed   map[string]bool

	tree *containers.Tree
	node containers.NodeID
}

type GroupOption func(*Group) error

func WithGroupID(id string) GroupOption {
	return func(g *Group) error {
		if id != "" {
			g.ID = id
		}
		return nil
	}
}

func WithType(t GroupType) GroupOption {
	return func(g *Group) error { return g.SetType(t) }
}

func WithInGame(n int) GroupOption {
	return func(g *Group) error { return g.SetInGame(n) }
}

func WithMaxSize(n int) GroupOption {
	return func(g *Group) error { return g.SetMaxSize(n) }
}

func WithAllowSkip(allow bool) GroupOption {
	return func(g *Group) error {
		g.AllowSkip = allow
		return nil
	}
}

func WithOrder(order int) GroupOption {
	return func(g *Group) error {
		g.Order = order
		return nil
	}
}

// WithPoints overrides the win/draw/loss/second/third point values.
func WithPoints(win, draw, loss, second, third int) GroupOption {
	return func(g *Group) error {
		g.WinPoints, g.DrawPoints, g.LossPoints, g.SecondPoints, g.ThirdPoints = win, draw, loss, second, third
		return nil
	}
}

func WithProgressPoints(points int) GroupOption {
	return func(g *Group) error {
		g.ProgressPoints = points
		return nil
	}
}

// NewGroup creates a group outside any round, with its own id counter.
func NewGroup(name string, opts ...GroupOption) (*Group, error) {
	tree := containers.NewTree()
	return newGroup(name, tree, tree.MustAdd(0), opts...)
}

func newGroup(name string, tree *containers.Tree, node containers.NodeID, opts ...GroupOption) (*Group, error) {
	g := &Group{
		ID:             uuid.NewString(),
		Name:           name,
		WinPoints:      DefaultWinPoints,
		DrawPoints:     DefaultDrawPoints,
		LossPoints:     DefaultLossPoints,
		SecondPoints:   DefaultSecondPoints,
		ThirdPoints:    DefaultThirdPoints,
		ProgressPoints: DefaultProgressPoints,
		groupType:      RoundRobin,
		inGame:         2,
		maxSize:        DefaultMaxSize,
		progressed:     make(map[string]bool),
		tree:           tree,
		node:           node,
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, fmt.Errorf("group %q: %w", name, err)
		}
	}
	return g, nil
}

func (g *Group) String() string {
	return g.Name
}

func (g *Group) Type() GroupType { return g.groupType }
func (g *Group) InGame() int     { return g.inGame }
func (g *Group) MaxSize() int    { return g.maxSize }

func (g *Group) SetType(t GroupType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: unknown group type %q", ErrConfiguration, t)
	}
	g.groupType = t
	return nil
}

func (g *Group) SetInGame(n int) error {
	if n < 2 || n > 4 {
		return fmt.Errorf("%w: teams in one game must be between 2 and 4, got %d", ErrConfiguration, n)
	}
	g.inGame = n
	return nil
}

func (g *Group) SetMaxSize(n int) error {
	if n < 2 {
		return fmt.Errorf("%w: max group size must be at least 2, got %d", ErrConfiguration, n)
	}
	g.maxSize = n
	return nil
}

// AddTeam appends teams that aren't members yet.
func (g *Group) AddTeam(teams ...*Team) {
	for _, t := range teams {
		if t == nil || g.Team(t.ID) != nil {
			continue
		}
		g.teams = append(g.teams, t)
	}
}

func (g *Group) Teams() []*Team {
	out := make([]*Team, len(g.teams))
	copy(out, g.teams)
	return out
}

func (g *Group) Team(id string) *Team {
	for _, t := range g.teams {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Game creates a game between member teams and gives it the next id of the hierarchy.
func (g *Group) Game(teamIDs ...string) (*Game, error) {
	if len(teamIDs) < 2 || len(teamIDs) > 4 {
		return nil, fmt.Errorf("%w: a game needs 2 to 4 teams, got %d", ErrConfiguration, len(teamIDs))
	}
	seen := make(map[string]bool, len(teamIDs))
	for _, id := range teamIDs {
		if g.Team(id) == nil {
			return nil, fmt.Errorf("%w: team %q is not a member of group %q", ErrReference, id, g.Name)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: team %q appears twice in one game", ErrConfiguration, id)
		}
		seen[id] = true
	}
	game := &Game{
		ID:      g.tree.Increment(g.node),
		GroupID: g.ID,
		TeamIDs: append([]string(nil), teamIDs...),
	}
	g.games = append(g.games, game)
	return game, nil
}

// RestoreGame re-attaches a previously exported game with its original id. The counter
// is moved past the id when needed so new games never collide with restored ones.
func (g *Group) RestoreGame(id int, teamIDs []string, results map[string]Result) (*Game, error) {
	for _, tid := range teamIDs {
		if g.Team(tid) == nil {
			return nil, fmt.Errorf("%w: team %q is not a member of group %q", ErrReference, tid, g.Name)
		}
	}
	for tid := range results {
		if !contains(teamIDs, tid) {
			return nil, fmt.Errorf("%w: result for team %q which doesn't play game %d", ErrReference, tid, id)
		}
	}
	for g.tree.AutoIncrement(g.node) <= id {
		g.tree.Increment(g.node)
	}
	game := &Game{ID: id, GroupID: g.ID, TeamIDs: append([]string(nil), teamIDs...)}
	if len(results) > 0 {
		game.Results = make(map[string]Result, len(results))
		for k, v := range results {
			game.Results[k] = v
		}
	}
	g.games = append(g.games, game)
	return game, nil
}

func (g *Group) Games() []*Game {
	out := make([]*Game, len(g.games))
	copy(out, g.games)
	return out
}

func (g *Group) GameByID(id int) *Game {
	for _, game := range g.games {
		if game.ID == id {
			return game
		}
	}
	return nil
}

// ReorderGames replaces the game order with order, which must hold exactly the group's
// games, and renumbers them in the new order. Numbering starts at the group's first
// counter value when it lies above the ids the group owns; otherwise the owned ids are
// reused from the lowest up so sibling groups keep theirs. The counter ends past the
// highest id handed out.
func (g *Group) ReorderGames(order []*Game) error {
	if len(order) != len(g.games) {
		return fmt.Errorf("%w: reordering %d games of group %q with %d games", ErrReference, len(order), g.Name, len(g.games))
	}
	owned := make(map[*Game]bool, len(g.games))
	ids := make([]int, 0, len(g.games))
	for _, game := range g.games {
		owned[game] = true
		ids = append(ids, game.ID)
	}
	for _, game := range order {
		if !owned[game] {
			return fmt.Errorf("%w: game %d doesn't belong to group %q", ErrReference, game.ID, g.Name)
		}
		delete(owned, game)
	}
	if len(ids) == 0 {
		return nil
	}
	sort.Ints(ids)
	if first := g.FirstIncrement(); first > ids[0] {
		for i := range ids {
			ids[i] = first + i
		}
	}
	for i, game := range order {
		game.ID = ids[i]
	}
	g.games = append(g.games[:0], order...)
	for g.tree.AutoIncrement(g.node) <= ids[len(ids)-1] {
		g.tree.Increment(g.node)
	}
	return nil
}

// SetResults records the scores of a game, replacing any earlier result.
func (g *Group) SetResults(gameID int, scores map[string]int) (*Game, error) {
	game := g.GameByID(gameID)
	if game == nil {
		return nil, fmt.Errorf("%w: game %d not found in group %q", ErrReference, gameID, g.Name)
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("%w: no scores given for game %d", ErrInsufficientData, gameID)
	}
	for id := range scores {
		if !game.HasTeam(id) {
			return nil, fmt.Errorf("%w: team %q doesn't play game %d", ErrReference, id, gameID)
		}
	}
	placements := game.placements(scores)
	teams := make([]*Team, len(placements))
	for i, p := range placements {
		if teams[i] = g.Team(p.teamID); teams[i] == nil {
			return nil, fmt.Errorf("%w: team %q is no longer in group %q", ErrReference, p.teamID, g.Name)
		}
	}
	if game.IsPlayed() {
		g.resetResults(game)
	}

	game.Results = make(map[string]Result, len(scores))
	for i, p := range placements {
		team := teams[i]
		points := g.pointsFor(p.result)
		team.record(g.ID, p.result, points, 1)
		team.AddScore(g.ID, p.score)
		game.Results[p.teamID] = Result{Score: p.score, Points: points, Type: p.result}
	}
	return game, nil
}

// ResetResults reverts a played game and the statistics it produced.
func (g *Group) ResetResults(gameID int) (*Game, error) {
	game := g.GameByID(gameID)
	if game == nil {
		return nil, fmt.Errorf("%w: game %d not found in group %q", ErrReference, gameID, g.Name)
	}
	g.resetResults(game)
	return game, nil
}

func (g *Group) resetResults(game *Game) {
	for teamID, r := range game.Results {
		if team := g.Team(teamID); team != nil {
			team.record(g.ID, r.Type, r.Points, -1)
			team.RemoveScore(g.ID, r.Score)
		}
	}
	game.Results = nil
}

func (g *Group) ResetGames() {
	for _, game := range g.games {
		g.resetResults(game)
	}
}

// ClearGames drops every game (and its results). The id counter is not rewound.
func (g *Group) ClearGames() {
	g.ResetGames()
	g.games = nil
}

func (g *Group) pointsFor(result ResultType) int {
	switch result {
	case ResultWin:
		return g.WinPoints
	case ResultDraw:
		return g.DrawPoints
	case ResultSecond:
		return g.SecondPoints
	case ResultThird:
		return g.ThirdPoints
	default:
		return g.LossPoints
	}
}

// IsPlayed reports whether the group has games and all of them have results.
func (g *Group) IsPlayed() bool {
	if len(g.games) == 0 {
		return false
	}
	for _, game := range g.games {
		if !game.IsPlayed() {
			return false
		}
	}
	return true
}

// Progression wires this group to `to`. A nil length takes every team from offset on.
func (g *Group) Progression(to *Group, offset int, length *int) *Progression {
	p := &Progression{from: g, to: to, Offset: offset, Length: length}
	g.progressions = append(g.progressions, p)
	return p
}

func (g *Group) Progressions() []*Progression {
	out := make([]*Progression, len(g.progressions))
	copy(out, g.progressions)
	return out
}

// Progress runs every outgoing progression of the group.
func (g *Group) Progress(blank bool) error {
	for _, p := range g.progressions {
		if err := p.Progress(blank); err != nil {
			return err
		}
	}
	return nil
}

func (g *Group) AddProgressed(teams ...*Team) {
	for _, t := range teams {
		g.progressed[t.ID] = true
	}
}

func (g *Group) RemoveProgressed(teams ...*Team) {
	for _, t := range teams {
		delete(g.progressed, t.ID)
	}
}

func (g *Group) IsProgressed(team *Team) bool {
	return g.progressed[team.ID]
}

// SortTeams ranks members by ordering and narrows the ranking through filters.
func (g *Group) SortTeams(ordering Ordering, filters ...Filter) ([]*Team, error) {
	ranked, err := RankTeams(g.teams, []string{g.ID}, ordering)
	if err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return ranked, nil
	}
	return FilterTeams(ranked, filters, []*Group{g})
}

func (g *Group) AutoIncrement() int {
	return g.tree.AutoIncrement(g.node)
}

// FirstIncrement is the value the counter was last set to.
func (g *Group) FirstIncrement() int {
	return g.tree.FirstIncrement(g.node)
}

func (g *Group) SetAutoIncrement(n int) {
	g.tree.SetAutoIncrement(g.node, n)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
