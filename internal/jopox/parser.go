package jopox

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// formTokens collects the hidden ASP.NET state fields every WebForms post
// must echo back.
func formTokens(doc *goquery.Document) url.Values {
	form := url.Values{}
	form.Set("__EVENTTARGET", "")
	form.Set("__EVENTARGUMENT", "")
	form.Set("__LASTFOCUS", "")
	for _, name := range []string{"__VIEWSTATE", "__VIEWSTATEGENERATOR", "__EVENTVALIDATION"} {
		form.Set(name, doc.Find("input[name='"+name+"']").AttrOr("value", ""))
	}
	return form
}

// parseGamesList extracts calendar entries from the admin games table. Each
// row links to Game.aspx?gId=<uid> and carries the event text, date, time
// and rink in its cells.
func parseGamesList(doc *goquery.Document) []Entry {
	var entries []Entry
	doc.Find("table.games-list tr, table#GamesList tr, div.game-row").Each(func(i int, row *goquery.Selection) {
		href, ok := row.Find("a[href*='gId=']").Attr("href")
		if !ok {
			return
		}
		entry := Entry{UID: uidFromHref(href)}
		row.Find("td").Each(func(j int, cell *goquery.Selection) {
			text := strings.TrimSpace(cell.Text())
			switch j {
			case 0:
				entry.Date = text
			case 1:
				entry.Time = text
			case 2:
				entry.EventName = text
			case 3:
				entry.Location = text
			}
		})
		if entry.UID != "" {
			entries = append(entries, entry)
		}
	})
	return entries
}

func uidFromHref(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Query().Get("gId")
}

// parseCalendar extracts event description texts from the public calendar
// feed, keyed by event UID. Descriptions hold the free-form "Lisätiedot"
// text the admin list does not expose.
func parseCalendar(doc *goquery.Document) map[string]string {
	descriptions := make(map[string]string)
	doc.Find("[data-uid]").Each(func(i int, s *goquery.Selection) {
		uid := s.AttrOr("data-uid", "")
		if uid == "" {
			return
		}
		descriptions[uid] = strings.TrimSpace(s.Find(".description").Text())
	})
	// RSS-style feeds carry the uid in each item's guid element instead.
	doc.Find("item").Each(func(i int, s *goquery.Selection) {
		uid := strings.TrimSpace(s.Find("guid").Text())
		if uid == "" {
			return
		}
		descriptions[uid] = strings.TrimSpace(s.Find("description").Text())
	})
	return descriptions
}

// parseGameForm reads the editable game form fields.
func parseGameForm(doc *goquery.Document) FormData {
	form := FormData{
		SiteName:   strings.TrimSpace(doc.Find("span#MainContentPlaceHolder_GamesBasicForm_SitenameLabel").Text()),
		HomeTeam:   inputValue(doc, "HomeTeamTextBox"),
		GuestTeam:  inputValue(doc, "GuestTeamTextBox"),
		Location:   inputValue(doc, "GameLocationTextBox"),
		Date:       inputValue(doc, "GameDateTextBox"),
		StartTime:  inputValue(doc, "GameStartTimeTextBox"),
		Duration:   inputValue(doc, "GameDurationTextBox"),
		PublicInfo: strings.TrimSpace(doc.Find("textarea#GamePublicInfoTextBox").Text()),
	}

	_, form.IsAway = doc.Find("input#AwayCheckbox").Attr("checked")

	form.LeagueSelected, form.LeagueOptions = dropdownValues(doc, "LeagueDropdownList")
	form.EventSelected, form.EventOptions = dropdownValues(doc, "EventDropDownList")

	return form
}

func inputValue(doc *goquery.Document, id string) string {
	return strings.TrimSpace(doc.Find("input#" + id).AttrOr("value", ""))
}

func dropdownValues(doc *goquery.Document, id string) (selected string, options []string) {
	doc.Find("select#" + id + " option").Each(func(i int, opt *goquery.Selection) {
		text := strings.TrimSpace(opt.Text())
		if _, ok := opt.Attr("selected"); ok {
			selected = text
			return
		}
		options = append(options, text)
	})
	return selected, options
}

// fillGamePayload writes the payload into the WebForms field names. The
// control-name prefixes are fixed by the admin page markup.
func fillGamePayload(form url.Values, p WritePayload) {
	const prefix = "ctl00$MainContentPlaceHolder$GamesBasicForm$"

	away := ""
	if p.IsAway {
		away = "on"
	}

	form.Set(prefix+"LeagueDropdownList", p.LeagueID)
	form.Set(prefix+"EventDropDownList", p.EventID)
	form.Set(prefix+"HomeTeamTextBox", p.HomeTeam)
	form.Set(prefix+"GuestTeamTextBox", p.GuestTeam)
	form.Set(prefix+"AwayCheckbox", away)
	form.Set(prefix+"GameLocationTextBox", p.Location)
	form.Set(prefix+"GameDateTextBox", p.Date)
	form.Set(prefix+"GameStartTimeTextBox", p.StartTime)
	form.Set(prefix+"GameDurationTextBox", p.Duration)
	form.Set(prefix+"GameDeadlineTextBox", p.Deadline)
	form.Set(prefix+"GameMaxParticipatesTextBox", p.MaxPlayers)
	form.Set(prefix+"GamePublicInfoTextBox", p.PublicInfo)
	form.Set(prefix+"GameInfoTextBox", p.PublicInfo)
	form.Set(prefix+"GameNotificationTextBox", p.Notification)
	form.Set(prefix+"FeedGameDropdown", "0")
	form.Set(prefix+"SaveGameButton", "Tallenna")
}
