package schedule

import "time"

// RawGame is a single game record as delivered by the Tulospalvelu results
// service (or re-posted by the dashboard). Field names follow the upstream
// JSON keys verbatim; all values are strings on the wire.
type RawGame struct {
	TeamID        string `json:"Team ID"`
	TeamName      string `json:"Team Name"`
	GameID        string `json:"Game ID"`
	Date          string `json:"Date"`
	SortableDate  string `json:"SortableDate"`
	Time          string `json:"Time"`
	HomeTeam      string `json:"Home Team"`
	AwayTeam      string `json:"Away Team"`
	HomeGoals     string `json:"Home Goals"`
	AwayGoals     string `json:"Away Goals"`
	Location      string `json:"Location"`
	LevelName     string `json:"Level Name"`
	StatGroup     string `json:"Stat Group"`
	StatGroupName string `json:"Stat Group Name"`
	SmallAreaGame string `json:"Small Area Game"`
}

// Game is the canonical, typed form of a results-service record. It is
// produced once by Normalize and never mutated afterwards; reconciliation
// attaches derived data in its own result type instead.
type Game struct {
	GameID        string    `json:"game_id"`
	TeamID        string    `json:"team_id"`
	TeamName      string    `json:"team_name"`
	Date          string    `json:"date"` // display form, zero-padded DD.MM.YYYY
	SortableDate  time.Time `json:"sortable_date"`
	HasValidDate  bool      `json:"has_valid_date"`
	Time          string    `json:"time"` // HH:MM
	HomeTeam      string    `json:"home_team"`
	AwayTeam      string    `json:"away_team"`
	HomeGoals     string    `json:"home_goals"`
	AwayGoals     string    `json:"away_goals"`
	Location      string    `json:"location"`
	LevelName     string    `json:"level_name"`
	StatGroup     string    `json:"stat_group"`
	StatGroupName string    `json:"stat_group_name"`
	SmallAreaGame bool      `json:"small_area_game"`
}

// Raw converts a canonical game back to the wire representation. Used when
// re-posting games to the compare endpoint and in tests.
func (g Game) Raw() RawGame {
	small := ""
	if g.SmallAreaGame {
		small = "1"
	}
	return RawGame{
		TeamID:        g.TeamID,
		TeamName:      g.TeamName,
		GameID:        g.GameID,
		Date:          g.Date,
		SortableDate:  formatSortable(g),
		Time:          g.Time,
		HomeTeam:      g.HomeTeam,
		AwayTeam:      g.AwayTeam,
		HomeGoals:     g.HomeGoals,
		AwayGoals:     g.AwayGoals,
		Location:      g.Location,
		LevelName:     g.LevelName,
		StatGroup:     g.StatGroup,
		StatGroupName: g.StatGroupName,
		SmallAreaGame: small,
	}
}

func formatSortable(g Game) string {
	if !g.HasValidDate {
		return g.Date
	}
	return g.SortableDate.Format(sortableLayout)
}
