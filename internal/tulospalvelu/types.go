package tulospalvelu

// Level is one competition level (age group/series tier) for a season.
type Level struct {
	LevelID   string `json:"LevelID"`
	LevelName string `json:"LevelName"`
}

// StatGroup is one series/pool within a level.
type StatGroup struct {
	StatGroupID   string `json:"StatGroupID"`
	StatGroupName string `json:"StatGroupName"`
}

// Team is one team inside a stat group.
type Team struct {
	TeamID          string `json:"TeamID"`
	TeamAbbrv       string `json:"TeamAbbrv"`
	TeamAssociation string `json:"TeamAssociation"`
	TeamImg         string `json:"TeamImg"`
}

// teamsResponse wraps the team listing endpoint's envelope.
type teamsResponse struct {
	Teams []Team `json:"Teams"`
}

// gameRecord is one game as the results service sends it.
type gameRecord struct {
	GameID        string `json:"GameID"`
	GameDate      string `json:"GameDate"` // DD.MM.YYYY
	GameTime      string `json:"GameTime"` // HH:MM
	HomeTeamAbbrv string `json:"HomeTeamAbbrv"`
	AwayTeamAbbrv string `json:"AwayTeamAbbrv"`
	HomeGoals     string `json:"HomeGoals"`
	AwayGoals     string `json:"AwayGoals"`
	RinkName      string `json:"RinkName"`
	LevelName     string `json:"LevelName"`
	StatGroupName string `json:"StatGroupName"`
	SmallAreaGame string `json:"SmallAreaGame"`
}

// levelGames is one level block in the games response: the service groups
// games per level even when queried for a single team.
type levelGames struct {
	Games []gameRecord `json:"Games"`
}
