package models

// Progression moves a ranked, filtered window of a group's teams into another group.
type Progression struct {
	Offset  int
	Length  *int
	Filters []Filter

	// Overrides the source group's ProgressPoints when set.
	Points *int

	from       *Group
	to         *Group
	progressed bool
	teams      []*Team
}

func (p *Progression) From() *Group { return p.from }
func (p *Progression) To() *Group   { return p.to }

// AddFilter appends filters, applied in order after ranking.
func (p *Progression) AddFilter(filters ...Filter) *Progression {
	p.Filters = append(p.Filters, filters...)
	return p
}

func (p *Progression) SetPoints(points int) *Progression {
	p.Points = &points
	return p
}

func (p *Progression) IsProgressed() bool {
	return p.progressed
}

// ProgressedTeams returns the teams moved by the last Progress call.
func (p *Progression) ProgressedTeams() []*Team {
	out := make([]*Team, len(p.teams))
	copy(out, p.teams)
	return out
}

// Candidates returns the teams Progress would move right now.
func (p *Progression) Candidates() ([]*Team, error) {
	filtered, err := p.from.SortTeams(OrderByPoints, p.Filters...)
	if err != nil {
		return nil, err
	}
	return window(filtered, p.Offset, p.Length), nil
}

// Progress moves the selected teams into the destination once. Later calls are no-ops
// until Reset. In blank mode placeholder teams standing in for the selection are moved
// instead; the source is left untouched and no points are awarded.
func (p *Progression) Progress(blank bool) error {
	if p.progressed {
		return nil
	}
	next, err := p.Candidates()
	if err != nil {
		return err
	}

	moved := make([]*Team, 0, len(next))
	for _, team := range next {
		if blank {
			placeholder := NewBlankTeam(team)
			p.to.AddTeam(placeholder)
			moved = append(moved, placeholder)
			continue
		}
		points := p.from.ProgressPoints
		if p.Points != nil {
			points = *p.Points
		}
		team.AddPoints(points)
		p.from.AddProgressed(team)
		p.to.AddTeam(team)
		moved = append(moved, team)
	}
	p.teams = moved
	p.progressed = true
	return nil
}

// MarkProgressed records teams as already moved without touching either group.
// It is used when rebuilding a bracket from a saved state.
func (p *Progression) MarkProgressed(teams []*Team) {
	p.teams = append([]*Team(nil), teams...)
	p.progressed = true
}

// Reset allows the progression to run again. Teams already added to the destination stay there.
func (p *Progression) Reset() {
	p.progressed = false
}

// window returns teams[offset:offset+length]. A negative offset counts from the end, a nil
// length runs to the end, a negative length stops that many teams before the end.
func window(teams []*Team, offset int, length *int) []*Team {
	n := len(teams)
	start := offset
	if start < 0 {
		start += n
	}
	start = clamp(start, 0, n)

	end := n
	if length != nil {
		if *length < 0 {
			end = n + *length
		} else {
			end = start + *length
		}
	}
	end = clamp(end, start, n)

	out := make([]*Team, end-start)
	copy(out, teams[start:end])
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
