// Package correction computes the field-level diff between an authoritative
// game and the Jopox form currently stored for it, producing the values that
// should be written back. Pure computation: a CorrectionSet is built fresh
// every time the update form opens and never persisted.
package correction

import (
	"fmt"
	"strings"

	"github.com/atg247/iGM/internal/jopox"
	"github.com/atg247/iGM/internal/reconcile"
	"github.com/atg247/iGM/internal/schedule"
)

// Field identifies one correctable form field.
type Field string

const (
	FieldOrientation Field = "is_away"
	FieldOpponent    Field = "opponent"
	FieldStartTime   Field = "start_time"
	FieldDate        Field = "date"
	FieldLocation    Field = "location"
	FieldAlias       Field = "alias"
)

// aliasMinLen is the minimum normalized length before an alias is validated
// against the team name; shorter labels carry too little signal to judge.
const aliasMinLen = 3

// Diff is one field's old/new pair.
type Diff struct {
	Old     string `json:"old"`
	New     string `json:"new"`
	Changed bool   `json:"changed"`
}

// CorrectionSet is the full diff for one game's update form. Changes is
// empty exactly when every field already agrees (the entry is in sync).
type CorrectionSet struct {
	Fields  map[Field]Diff `json:"fields"`
	Changes []string       `json:"changes"`
	IsAway  bool           `json:"is_away"`
}

// InSync reports whether nothing needs to be written.
func (c CorrectionSet) InSync() bool {
	return len(c.Changes) == 0
}

// Build derives the authoritative values for one game against the current
// Jopox form. Orientation and opponent compare in normalized form; start
// time, date and location compare literally, since Jopox stores them as the
// user typed them and any literal drift should be corrected.
func Build(game schedule.Game, form jopox.FormData) CorrectionSet {
	set := CorrectionSet{Fields: make(map[Field]Diff)}

	set.IsAway = reconcile.IsAwayGame(game)
	set.add(FieldOrientation, orientation(form.IsAway), orientation(set.IsAway),
		form.IsAway != set.IsAway, "Orientation")

	opponent := game.AwayTeam
	sideName := game.HomeTeam
	if set.IsAway {
		opponent = game.HomeTeam
		sideName = game.AwayTeam
	}
	set.add(FieldOpponent, form.GuestTeam, opponent,
		!reconcile.NormalizeEqual(form.GuestTeam, opponent), "Opponent")

	set.add(FieldStartTime, form.StartTime, game.Time, form.StartTime != game.Time, "Start time")
	set.add(FieldDate, form.Date, game.Date, form.Date != game.Date, "Date")
	set.add(FieldLocation, form.Location, game.Location, form.Location != game.Location, "Location")

	set.checkAlias(form.HomeTeam, sideName)

	return set
}

// add records a field diff and, when changed, a human-readable line.
func (c *CorrectionSet) add(f Field, oldVal, newVal string, changed bool, label string) {
	c.Fields[f] = Diff{Old: oldVal, New: newVal, Changed: changed}
	if changed {
		c.Changes = append(c.Changes, fmt.Sprintf("%s: %s → %s", label, oldVal, newVal))
	}
}

// checkAlias validates the free-text sub-team label against the managed
// side's team name. A failing alias is flagged but never overwritten: the
// correct replacement cannot be inferred, so it is surfaced for manual
// correction instead.
func (c *CorrectionSet) checkAlias(alias, sideName string) {
	normalized := reconcile.NormalizeText(alias)
	if len([]rune(normalized)) < aliasMinLen {
		c.Fields[FieldAlias] = Diff{Old: alias, New: alias, Changed: false}
		return
	}
	if reconcile.ContainsWord(sideName, alias) {
		c.Fields[FieldAlias] = Diff{Old: alias, New: alias, Changed: false}
		return
	}
	c.Fields[FieldAlias] = Diff{Old: alias, New: alias, Changed: true}
	c.Changes = append(c.Changes, fmt.Sprintf("Alias %q does not appear in team name %q, check manually", alias, sideName))
}

func orientation(isAway bool) string {
	if isAway {
		return "away"
	}
	return "home"
}

// Payload packages a correction set into the write payload posted back to
// Jopox. User edits are applied by the caller before submitting.
func Payload(game schedule.Game, set CorrectionSet, form jopox.FormData) jopox.WritePayload {
	return jopox.WritePayload{
		HomeTeam:   form.HomeTeam,
		GuestTeam:  set.Fields[FieldOpponent].New,
		IsAway:     set.IsAway,
		Location:   set.Fields[FieldLocation].New,
		Date:       set.Fields[FieldDate].New,
		StartTime:  set.Fields[FieldStartTime].New,
		Duration:   durationOrDefault(form.Duration),
		PublicInfo: form.PublicInfo,
	}
}

// CreatePayload builds the write payload for a game with no Jopox entry
// yet. The alias label is the managed side's sub-team text shown in the
// form; the series name goes into the public info so the calendar shows
// which competition the game belongs to.
func CreatePayload(game schedule.Game, aliasLabel string) jopox.WritePayload {
	isAway := reconcile.IsAwayGame(game)
	opponent := game.AwayTeam
	if isAway {
		opponent = game.HomeTeam
	}

	return jopox.WritePayload{
		HomeTeam:   aliasLabel,
		GuestTeam:  opponent,
		IsAway:     isAway,
		Location:   game.Location,
		Date:       game.Date,
		StartTime:  game.Time,
		Duration:   durationOrDefault(""),
		PublicInfo: strings.TrimSpace(game.LevelName + " " + game.StatGroupName),
	}
}

func durationOrDefault(d string) string {
	if d == "" {
		return "120"
	}
	return d
}
