// Package jopox talks to the Jopox team-management system. Jopox has no API:
// everything goes through the ASP.NET WebForms admin UI, so this client logs
// in with a cookie session, scrapes the games list and game form with
// goquery, and writes games back by replaying the form post (hidden
// __VIEWSTATE tokens included).
package jopox

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// DefaultLoginURL is the club-site login endpoint.
	DefaultLoginURL = "https://login.jopox.fi/login"

	// DefaultAdminBase is the HockeyPox admin root used for game management.
	DefaultAdminBase = "https://hallinta3.jopox.fi/Admin/HockeyPox2020/Games"

	// userAgent mirrors a desktop browser; the admin UI rejects obvious bots.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	requestTimeout = 30 * time.Second
)

// Client is a logged-in Jopox admin session for one user.
type Client struct {
	httpClient *http.Client
	loginURL   string
	adminBase  string
	username   string
	password   string
	loggedIn   bool
}

// NewClient creates a client with its own cookie jar. Credentials are not
// used until Login (or the first operation that needs a session).
func NewClient(loginURL, adminBase, username, password string) *Client {
	if loginURL == "" {
		loginURL = DefaultLoginURL
	}
	if adminBase == "" {
		adminBase = DefaultAdminBase
	}
	jar, _ := cookiejar.New(nil)
	return &Client{
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: requestTimeout,
		},
		loginURL:  loginURL,
		adminBase: adminBase,
		username:  username,
		password:  password,
	}
}

// Login authenticates the session. The login page is a WebForms post: the
// hidden state tokens are scraped from the form first, then replayed with
// the credentials. If the plain post is rejected (the login front
// occasionally sits behind script redirects), a headless-browser bootstrap
// is attempted before giving up.
func (c *Client) Login(ctx context.Context) error {
	doc, err := c.getDocument(ctx, c.loginURL)
	if err != nil {
		return fmt.Errorf("fetching login page: %w", err)
	}

	form := formTokens(doc)
	form.Set("UsernameTextBox", c.username)
	form.Set("PasswordTextBox", c.password)
	form.Set("LoginButton", "Kirjaudu")

	resp, err := c.postForm(ctx, c.loginURL, form)
	if err != nil {
		return fmt.Errorf("posting login form: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode == http.StatusOK && !strings.Contains(string(body), "PasswordTextBox") {
		c.loggedIn = true
		return nil
	}

	log.Printf("[jopox] form login rejected (status %d), trying browser login", resp.StatusCode)
	if err := c.browserLogin(ctx); err != nil {
		return fmt.Errorf("jopox login failed: %w", err)
	}
	c.loggedIn = true
	return nil
}

// ensureLoggedIn logs in lazily before the first admin operation.
func (c *Client) ensureLoggedIn(ctx context.Context) error {
	if c.loggedIn {
		return nil
	}
	return c.Login(ctx)
}

// ListGames scrapes the admin games list.
func (c *Client) ListGames(ctx context.Context) ([]Entry, error) {
	if err := c.ensureLoggedIn(ctx); err != nil {
		return nil, err
	}
	doc, err := c.getDocument(ctx, c.adminBase+"/Games.aspx")
	if err != nil {
		return nil, fmt.Errorf("fetching games list: %w", err)
	}
	return parseGamesList(doc), nil
}

// Calendar fetches the public calendar feed and returns per-event
// description texts keyed by event UID. The feed needs no login.
func (c *Client) Calendar(ctx context.Context, calendarURL string) (map[string]string, error) {
	doc, err := c.getDocument(ctx, calendarURL)
	if err != nil {
		return nil, fmt.Errorf("fetching calendar: %w", err)
	}
	return parseCalendar(doc), nil
}

// GameDetails scrapes the editable form for one game.
func (c *Client) GameDetails(ctx context.Context, uid string) (FormData, error) {
	if err := c.ensureLoggedIn(ctx); err != nil {
		return FormData{}, err
	}
	doc, err := c.getDocument(ctx, c.gameFormURL(uid))
	if err != nil {
		return FormData{}, fmt.Errorf("fetching game form: %w", err)
	}
	return parseGameForm(doc), nil
}

// AddGame creates a new game in Jopox.
func (c *Client) AddGame(ctx context.Context, payload WritePayload) error {
	return c.saveGame(ctx, payload, "")
}

// ModifyGame updates an existing game identified by uid.
func (c *Client) ModifyGame(ctx context.Context, payload WritePayload, uid string) error {
	if uid == "" {
		return fmt.Errorf("modify requires a game uid")
	}
	return c.saveGame(ctx, payload, uid)
}

// saveGame loads the game form (fresh state tokens are mandatory, they are
// per-request), fills it and posts it back. A server-side validation
// failure surfaces in an ErrorTextBox textarea; its text is returned
// verbatim so the user sees what Jopox rejected.
func (c *Client) saveGame(ctx context.Context, payload WritePayload, uid string) error {
	if err := c.ensureLoggedIn(ctx); err != nil {
		return err
	}

	formURL := c.gameFormURL(uid)
	doc, err := c.getDocument(ctx, formURL)
	if err != nil {
		return fmt.Errorf("loading game form: %w", err)
	}

	form := formTokens(doc)
	fillGamePayload(form, payload)

	resp, err := c.postForm(ctx, formURL, form)
	if err != nil {
		return fmt.Errorf("posting game form: %w", err)
	}
	defer resp.Body.Close()

	respDoc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("reading save response: %w", err)
	}
	if msg := strings.TrimSpace(respDoc.Find("textarea#ErrorTextBox").Text()); msg != "" {
		return fmt.Errorf("jopox rejected the game: %s", msg)
	}
	return nil
}

func (c *Client) gameFormURL(uid string) string {
	if uid == "" {
		return c.adminBase + "/Game.aspx"
	}
	return c.adminBase + "/Game.aspx?gId=" + url.QueryEscape(uid)
}

// getDocument GETs a page and parses it.
func (c *Client) getDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", pageURL, resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

func (c *Client) postForm(ctx context.Context, pageURL string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pageURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", pageURL)
	return c.httpClient.Do(req)
}
