// Package tulospalvelu fetches seasons, series and game schedules from the
// Finnish ice hockey results service (tulospalvelu.leijonat.fi). The service
// exposes PHP helper endpoints that answer form-encoded POSTs with JSON.
package tulospalvelu

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/atg247/iGM/internal/schedule"
)

const (
	// DefaultBaseURL is the production results service.
	DefaultBaseURL = "https://tulospalvelu.leijonat.fi"

	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	requestTimeout = 20 * time.Second
)

// Client talks to the results service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a results-service client. An empty baseURL selects the
// production service; tests point it at a local server.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Levels lists competition levels for a season.
func (c *Client) Levels(ctx context.Context, season string) ([]Level, error) {
	var levels []Level
	err := c.post(ctx, "/helpers/getLevels.php", url.Values{"season": {season}}, &levels)
	return levels, err
}

// StatGroups lists the series/pools for a level.
func (c *Client) StatGroups(ctx context.Context, season, levelID, districtID string) ([]StatGroup, error) {
	if districtID == "" {
		districtID = "0"
	}
	form := url.Values{
		"season":     {season},
		"levelid":    {levelID},
		"districtid": {districtID},
	}
	var groups []StatGroup
	err := c.post(ctx, "/serie/helpers/getStatGroups.php", form, &groups)
	return groups, err
}

// Teams lists the teams of a stat group.
func (c *Client) Teams(ctx context.Context, season, statGroupID string) ([]Team, error) {
	form := url.Values{
		"season": {season},
		"stgid":  {statGroupID},
	}
	var resp teamsResponse
	if err := c.post(ctx, "/serie/helpers/getStatGroup.php", form, &resp); err != nil {
		return nil, err
	}
	return resp.Teams, nil
}

// Games fetches the schedule for one team in one stat group and returns raw
// games ready for schedule.Normalize. TeamID and team name are stamped onto
// every record so downstream processing knows which managed team the fetch
// belonged to.
func (c *Client) Games(ctx context.Context, season, statGroupID, teamID, teamName string) ([]schedule.RawGame, error) {
	form := url.Values{
		"dwl":        {"0"},
		"season":     {season},
		"stgid":      {statGroupID},
		"teamid":     {teamID},
		"districtid": {"0"},
		"gamedays":   {"3"},
		"dog":        {""},
	}

	body, err := c.postRaw(ctx, "/helpers/getGames.php", form)
	if err != nil {
		return nil, err
	}

	return decodeGames(body, teamID, teamName), nil
}

// decodeGames tolerates both response shapes the service has used: a list
// of per-level blocks, or a bare list of games. A shape that matches
// neither degrades to an empty schedule instead of failing the fetch.
func decodeGames(body []byte, teamID, teamName string) []schedule.RawGame {
	var levels []levelGames
	if err := json.Unmarshal(body, &levels); err == nil && len(levels) > 0 && levels[0].Games != nil {
		var raw []schedule.RawGame
		for _, level := range levels {
			for _, g := range level.Games {
				raw = append(raw, toRawGame(g, teamID, teamName))
			}
		}
		return raw
	}

	var flat []gameRecord
	if err := json.Unmarshal(body, &flat); err == nil {
		var raw []schedule.RawGame
		for _, g := range flat {
			raw = append(raw, toRawGame(g, teamID, teamName))
		}
		return raw
	}

	log.Printf("[tulospalvelu] unrecognized games response shape, treating as empty")
	return nil
}

func toRawGame(g gameRecord, teamID, teamName string) schedule.RawGame {
	return schedule.RawGame{
		TeamID:        teamID,
		TeamName:      teamName,
		GameID:        g.GameID,
		Date:          g.GameDate,
		SortableDate:  g.GameDate,
		Time:          g.GameTime,
		HomeTeam:      g.HomeTeamAbbrv,
		AwayTeam:      g.AwayTeamAbbrv,
		HomeGoals:     g.HomeGoals,
		AwayGoals:     g.AwayGoals,
		Location:      g.RinkName,
		LevelName:     g.LevelName,
		StatGroupName: g.StatGroupName,
		SmallAreaGame: g.SmallAreaGame,
	}
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out interface{}) error {
	body, err := c.postRaw(ctx, path, form)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func (c *Client) postRaw(ctx context.Context, path string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("POST %s: status %d", path, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 8<<20))
}
