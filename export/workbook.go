package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Dosada05/tournament-generator/models"
)

const (
	scheduleSheet  = "Schedule"
	standingsSheet = "Standings"
)

// ScheduleWorkbook renders the games of t, in play order with estimated start times,
// and the current standings as an XLSX file.
func ScheduleWorkbook(t *models.Tournament) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", scheduleSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(standingsSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	if err := writeSchedule(f, t, bold); err != nil {
		return nil, err
	}
	if err := writeStandings(f, t, bold); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

func writeSchedule(f *excelize.File, t *models.Tournament, style int) error {
	header := []any{"Game", "Start", "Round", "Group", "Teams", "Scores"}
	if err := f.SetSheetRow(scheduleSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetRowStyle(scheduleSheet, 1, 1, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	row := 2
	var cursor time.Duration
	for ri, round := range t.Rounds() {
		if ri > 0 {
			cursor += t.RoundWait
		}
		for _, group := range round.Groups() {
			for _, game := range group.Games() {
				values := []any{game.ID, formatClock(cursor), round.Name, group.Name, teamNames(group, game), scoreLine(game)}
				cell, err := excelize.CoordinatesToCellName(1, row)
				if err != nil {
					return err
				}
				if err := f.SetSheetRow(scheduleSheet, cell, &values); err != nil {
					return fmt.Errorf("failed to write game %d: %w", game.ID, err)
				}
				cursor += t.Play + t.GameWait
				row++
			}
		}
	}
	return f.SetColWidth(scheduleSheet, "E", "E", 48)
}

func writeStandings(f *excelize.File, t *models.Tournament, style int) error {
	header := []any{"Rank", "Team", "Points", "Score"}
	if err := f.SetSheetRow(standingsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetRowStyle(standingsSheet, 1, 1, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	standings, err := t.SortTeams(models.OrderByPoints)
	if err != nil {
		return err
	}
	for i, team := range standings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{i + 1, team.Name, team.SumPoints, team.SumScore}
		if err := f.SetSheetRow(standingsSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write standings: %w", err)
		}
	}
	return f.SetColWidth(standingsSheet, "B", "B", 32)
}

func teamNames(g *models.Group, game *models.Game) string {
	names := make([]string, 0, len(game.TeamIDs))
	for _, id := range game.TeamIDs {
		if team := g.Team(id); team != nil {
			names = append(names, team.Name)
		} else {
			names = append(names, id)
		}
	}
	return strings.Join(names, " vs ")
}

func scoreLine(game *models.Game) string {
	if !game.IsPlayed() {
		return ""
	}
	scores := make([]string, 0, len(game.TeamIDs))
	for _, id := range game.TeamIDs {
		scores = append(scores, fmt.Sprint(game.Results[id].Score))
	}
	return strings.Join(scores, ":")
}

func formatClock(d time.Duration) string {
	d = d.Round(time.Minute)
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}
