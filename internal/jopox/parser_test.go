package jopox

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

func TestFormTokens(t *testing.T) {
	d := doc(t, `
		<form>
			<input name="__VIEWSTATE" value="vs-123" />
			<input name="__VIEWSTATEGENERATOR" value="gen-456" />
			<input name="__EVENTVALIDATION" value="ev-789" />
		</form>`)

	form := formTokens(d)

	assert.Equal(t, "vs-123", form.Get("__VIEWSTATE"))
	assert.Equal(t, "gen-456", form.Get("__VIEWSTATEGENERATOR"))
	assert.Equal(t, "ev-789", form.Get("__EVENTVALIDATION"))
	assert.Equal(t, "", form.Get("__EVENTTARGET"))
}

func TestParseGamesList(t *testing.T) {
	d := doc(t, `
		<table class="games-list">
			<tr>
				<td>14.09.2025</td>
				<td>12:00 - 13:30</td>
				<td>Sarja: EJK - HC Lions</td>
				<td>Espoonlahti 1</td>
				<td><a href="/Admin/HockeyPox2020/Games/Game.aspx?gId=5501">Muokkaa</a></td>
			</tr>
			<tr>
				<td>No link here</td>
			</tr>
			<tr>
				<td>21.09.2025</td>
				<td>09:15</td>
				<td>Harjoitusottelu</td>
				<td>Tapiola</td>
				<td><a href="Game.aspx?gId=5502">Muokkaa</a></td>
			</tr>
		</table>`)

	entries := parseGamesList(d)

	require.Len(t, entries, 2)
	assert.Equal(t, "5501", entries[0].UID)
	assert.Equal(t, "14.09.2025", entries[0].Date)
	assert.Equal(t, "12:00 - 13:30", entries[0].Time)
	assert.Equal(t, "Sarja: EJK - HC Lions", entries[0].EventName)
	assert.Equal(t, "Espoonlahti 1", entries[0].Location)
	assert.Equal(t, "5502", entries[1].UID)
}

func TestUIDFromHref(t *testing.T) {
	assert.Equal(t, "5501", uidFromHref("/Games/Game.aspx?gId=5501"))
	assert.Equal(t, "5501", uidFromHref("Game.aspx?foo=1&gId=5501"))
	assert.Equal(t, "", uidFromHref("Game.aspx"))
}

func TestParseCalendar(t *testing.T) {
	d := doc(t, `
		<div data-uid="5501"><span class="description">Pienpeli, kaksi kenttää</span></div>
		<div data-uid="5502"><span class="description"></span></div>
		<div data-uid=""><span class="description">orphan</span></div>`)

	descriptions := parseCalendar(d)

	assert.Equal(t, "Pienpeli, kaksi kenttää", descriptions["5501"])
	assert.Equal(t, "", descriptions["5502"])
	assert.Len(t, descriptions, 2)
}

func TestParseGameForm(t *testing.T) {
	d := doc(t, `
		<form>
			<span id="MainContentPlaceHolder_GamesBasicForm_SitenameLabel">HC Lions</span>
			<select id="LeagueDropdownList">
				<option value="1">Sarja A</option>
				<option value="2" selected>Sarja B</option>
			</select>
			<select id="EventDropDownList">
				<option value="10" selected>Ottelu</option>
				<option value="11">Turnaus</option>
			</select>
			<input id="HomeTeamTextBox" value="Punainen" />
			<input id="GuestTeamTextBox" value="EJK" />
			<input id="AwayCheckbox" type="checkbox" checked="checked" />
			<input id="GameLocationTextBox" value="Espoonlahti 1" />
			<input id="GameDateTextBox" value="14.09.2025" />
			<input id="GameStartTimeTextBox" value="12:00" />
			<input id="GameDurationTextBox" value="90" />
			<textarea id="GamePublicInfoTextBox">Kokoontuminen 45 min ennen</textarea>
		</form>`)

	form := parseGameForm(d)

	assert.Equal(t, "HC Lions", form.SiteName)
	assert.Equal(t, "Punainen", form.HomeTeam)
	assert.Equal(t, "EJK", form.GuestTeam)
	assert.True(t, form.IsAway)
	assert.Equal(t, "Espoonlahti 1", form.Location)
	assert.Equal(t, "14.09.2025", form.Date)
	assert.Equal(t, "12:00", form.StartTime)
	assert.Equal(t, "90", form.Duration)
	assert.Equal(t, "Kokoontuminen 45 min ennen", form.PublicInfo)
	assert.Equal(t, "Sarja B", form.LeagueSelected)
	assert.Equal(t, []string{"Sarja A"}, form.LeagueOptions)
	assert.Equal(t, "Ottelu", form.EventSelected)
	assert.Equal(t, []string{"Turnaus"}, form.EventOptions)
}

func TestParseGameFormUncheckedAway(t *testing.T) {
	d := doc(t, `<input id="AwayCheckbox" type="checkbox" />`)
	form := parseGameForm(d)
	assert.False(t, form.IsAway)
}

func TestFillGamePayload(t *testing.T) {
	form := url.Values{}
	fillGamePayload(form, WritePayload{
		LeagueID:   "2",
		EventID:    "10",
		HomeTeam:   "Punainen",
		GuestTeam:  "EJK",
		IsAway:     true,
		Location:   "Espoonlahti 1",
		Date:       "14.09.2025",
		StartTime:  "12:00",
		Duration:   "120",
		PublicInfo: "info",
	})

	const prefix = "ctl00$MainContentPlaceHolder$GamesBasicForm$"
	assert.Equal(t, "2", form.Get(prefix+"LeagueDropdownList"))
	assert.Equal(t, "Punainen", form.Get(prefix+"HomeTeamTextBox"))
	assert.Equal(t, "EJK", form.Get(prefix+"GuestTeamTextBox"))
	assert.Equal(t, "on", form.Get(prefix+"AwayCheckbox"))
	assert.Equal(t, "14.09.2025", form.Get(prefix+"GameDateTextBox"))
	assert.Equal(t, "12:00", form.Get(prefix+"GameStartTimeTextBox"))
	assert.Equal(t, "120", form.Get(prefix+"GameDurationTextBox"))
	assert.Equal(t, "Tallenna", form.Get(prefix+"SaveGameButton"))

	form = url.Values{}
	fillGamePayload(form, WritePayload{IsAway: false})
	assert.Equal(t, "", form.Get(prefix+"AwayCheckbox"))
}
