package browser

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

// launchArgs mirror what job boards tolerate best: no sandbox surprises, no
// GPU compositing to fingerprint.
var launchArgs = []string{
	"--no-sandbox",
	"--disable-dev-shm-usage",
	"--disable-gpu",
	"--disable-blink-features=AutomationControlled",
}

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Options struct {
	Headless    bool
	MaxContexts int

	// SlowMo pads every driver operation; some boards flag anything faster
	// than a human.
	SlowMo time.Duration
}

// PlaywrightPool runs one shared Chromium and rents out isolated contexts.
type PlaywrightPool struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	slots   chan struct{}
}

func NewPlaywrightPool(opts Options) (*PlaywrightPool, error) {
	if opts.MaxContexts <= 0 {
		opts.MaxContexts = 3
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     launchArgs,
	}
	if opts.SlowMo > 0 {
		launch.SlowMo = playwright.Float(float64(opts.SlowMo.Milliseconds()))
	}

	br, err := pw.Chromium.Launch(launch)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	return &PlaywrightPool{
		pw:      pw,
		browser: br,
		slots:   make(chan struct{}, opts.MaxContexts),
	}, nil
}

func (p *PlaywrightPool) WithSession(ctx context.Context, fn func(Session) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.slots <- struct{}{}:
	}
	defer func() { <-p.slots }()

	bctx, err := p.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:  playwright.String(userAgent),
		Viewport:   &playwright.Size{Width: 1920, Height: 1080},
		Locale:     playwright.String("en-US"),
		TimezoneId: playwright.String("America/Chicago"),
	})
	if err != nil {
		return fmt.Errorf("new browser context: %w", err)
	}
	defer func() { _ = bctx.Close() }()

	page, err := bctx.NewPage()
	if err != nil {
		return fmt.Errorf("new page: %w", err)
	}

	if err := page.SetExtraHTTPHeaders(map[string]string{
		"Accept-Language":           "en-US,en;q=0.9",
		"Upgrade-Insecure-Requests": "1",
	}); err != nil {
		return fmt.Errorf("set headers: %w", err)
	}

	return fn(&playwrightSession{page: page})
}

func (p *PlaywrightPool) Close() error {
	if err := p.browser.Close(); err != nil {
		_ = p.pw.Stop()
		return err
	}
	return p.pw.Stop()
}

type playwrightSession struct {
	page playwright.Page
}

func (s *playwrightSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(30000),
	})
	if err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	// Brief human-ish pause after load.
	return Pause(ctx, time.Duration(500+rand.Intn(1000))*time.Millisecond)
}

func (s *playwrightSession) ExtractText(selector string) (string, bool) {
	loc := s.page.Locator(selector).First()
	n, err := loc.Count()
	if err != nil || n == 0 {
		return "", false
	}
	txt, err := loc.TextContent()
	if err != nil {
		return "", false
	}
	return txt, true
}

func (s *playwrightSession) ExtractAttribute(selector, attr string) (string, bool) {
	loc := s.page.Locator(selector).First()
	n, err := loc.Count()
	if err != nil || n == 0 {
		return "", false
	}
	v, err := loc.GetAttribute(attr)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

func (s *playwrightSession) Content() (string, error) {
	return s.page.Content()
}

func (s *playwrightSession) Title() string {
	t, err := s.page.Title()
	if err != nil {
		return ""
	}
	return t
}

func (s *playwrightSession) Count(selector string) int {
	n, err := s.page.Locator(selector).Count()
	if err != nil {
		return 0
	}
	return n
}
