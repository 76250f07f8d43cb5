package jopox

import (
	"encoding/json"
	"strings"
)

// Entry is one calendar item from Jopox. The feed is loosely structured:
// any field other than UID may be missing, and older exports use
// capitalized Finnish keys (Uid, Tapahtuma, Pvm, Aika, Paikka, Lisätiedot)
// where newer ones use lowercase (uid, joukkueet, pvm, aika, paikka).
// Both are accepted at the decode boundary.
type Entry struct {
	UID            string `json:"uid"`
	EventName      string `json:"joukkueet"` // composite "teams" text, e.g. "Sarja: EJK - HC Lions"
	Date           string `json:"pvm"`       // YYYY-MM-DD
	Time           string `json:"aika"`      // "18:00" or "18:00 - 19:30"
	Location       string `json:"paikka"`
	AdditionalInfo string `json:"lisatiedot"`
}

// UnmarshalJSON accepts both field-name revisions of the feed.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	e.UID = pickString(fields, "uid", "Uid", "UID")
	e.EventName = pickString(fields, "joukkueet", "Joukkueet", "Tapahtuma", "tapahtuma")
	e.Date = pickString(fields, "pvm", "Pvm")
	e.Time = pickString(fields, "aika", "Aika")
	e.Location = pickString(fields, "paikka", "Paikka")
	e.AdditionalInfo = pickString(fields, "lisatiedot", "Lisatiedot", "Lisätiedot")
	return nil
}

func pickString(fields map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}

// StartTime returns the start half of the Aika field ("18:00 - 19:30" → "18:00").
func (e Entry) StartTime() string {
	t, _, _ := strings.Cut(e.Time, " - ")
	return strings.TrimSpace(t)
}

// FormData mirrors the editable fields of the Jopox game form, as scraped
// from Game.aspx. Field names follow the form element ids the way the
// dashboard has always seen them.
type FormData struct {
	LeagueSelected string   `json:"league_selected"`
	LeagueOptions  []string `json:"league_options"`
	EventSelected  string   `json:"event_selected"`
	EventOptions   []string `json:"event_options"`
	SiteName       string   `json:"SiteNameLabel"`
	HomeTeam       string   `json:"HomeTeamTextbox"` // managed team label/alias, e.g. "Punainen"
	GuestTeam      string   `json:"guest_team"`      // opponent
	IsAway         bool     `json:"AwayCheckbox"`
	Location       string   `json:"game_location"`
	Date           string   `json:"game_date"`
	StartTime      string   `json:"game_start_time"`
	Duration       string   `json:"game_duration"`
	PublicInfo     string   `json:"game_public_info"`
}

// WritePayload carries the field values posted back into the Jopox admin
// form on create/update.
type WritePayload struct {
	LeagueID     string
	EventID      string
	HomeTeam     string
	GuestTeam    string
	IsAway       bool
	Location     string
	Date         string // DD.MM.YYYY
	StartTime    string // HH:MM
	Duration     string // minutes, defaults to "120"
	PublicInfo   string
	MaxPlayers   string
	Deadline     string
	Notification string
}
