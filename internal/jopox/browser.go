package jopox

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

// browserLoginTimeout bounds the whole headless login attempt.
const browserLoginTimeout = 45 * time.Second

// browserLogin performs the login in a headless browser and copies the
// resulting session cookies into the HTTP client's jar. Used only when the
// plain form post is rejected: the login front occasionally runs through
// script-driven redirects a bare HTTP client cannot follow.
func (c *Client) browserLogin(ctx context.Context) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, browserLoginTimeout)
	defer cancelTimeout()

	var cookies []*network.Cookie
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(c.loginURL),
		chromedp.WaitVisible(`input[name="UsernameTextBox"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="UsernameTextBox"]`, c.username, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="PasswordTextBox"]`, c.password, chromedp.ByQuery),
		chromedp.Click(`input[name="LoginButton"], button[name="LoginButton"]`, chromedp.ByQuery),
		chromedp.WaitNotPresent(`input[name="PasswordTextBox"]`, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			cookies, err = storage.GetCookies().Do(ctx)
			return err
		}),
	)
	if err != nil {
		return fmt.Errorf("headless login: %w", err)
	}

	c.adoptCookies(cookies)
	log.Printf("[jopox] browser login succeeded, %d cookies adopted", len(cookies))
	return nil
}

// adoptCookies copies browser cookies into the client's jar so subsequent
// plain HTTP requests ride the authenticated session.
func (c *Client) adoptCookies(cookies []*network.Cookie) {
	byHost := make(map[string][]*http.Cookie)
	for _, ck := range cookies {
		byHost[ck.Domain] = append(byHost[ck.Domain], &http.Cookie{
			Name:   ck.Name,
			Value:  ck.Value,
			Path:   ck.Path,
			Domain: ck.Domain,
			Secure: ck.Secure,
		})
	}
	for host, list := range byHost {
		u := &url.URL{Scheme: "https", Host: strings.TrimPrefix(host, ".")}
		c.httpClient.Jar.SetCookies(u, list)
	}
}
