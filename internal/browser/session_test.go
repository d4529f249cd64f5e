// internal/browser/session_test.go
package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/semaphore"

	"github.com/xkilldash9x/storefront-e2e/internal/config"
)

const (
	defaultBrowserTestTimeout = 2 * time.Minute
	maxTestBrowsers           = 2
)

// browserSlots caps the number of Chrome processes the integration tests run at once.
var browserSlots = semaphore.NewWeighted(maxTestBrowsers)

const fixturePage = `<!DOCTYPE html>
<html><body>
<input id="user-name">
<button id="echo" onclick="document.getElementById('out').innerText = document.getElementById('user-name').value">Echo</button>
<div id="out"></div>
<button id="disabled-btn" disabled>Disabled</button>
<div style="position:relative; width:220px; height:60px">
  <button id="covered" onclick="document.getElementById('out').innerText = 'covered clicked'">Covered</button>
  <div id="overlay" style="position:absolute; top:0; left:0; width:220px; height:60px; background:rgba(0,0,0,0.1)"></div>
</div>
<select class="product_sort_container" onchange="document.getElementById('out').innerText = 'sorted ' + this.value">
  <option value="az">Name (A to Z)</option>
  <option value="lohi">Price (low to high)</option>
</select>
<ul><li class="inventory_item_price">$9.99</li><li class="inventory_item_price">$29.99</li></ul>
<div id="hidden" style="display:none">hidden</div>
<button class="dup" style="display:none" onclick="document.getElementById('out').innerText = 'hidden dup'">Hidden</button>
<button class="dup" disabled onclick="document.getElementById('out').innerText = 'disabled dup'">Disabled</button>
<button class="dup" onclick="document.getElementById('out').innerText = 'usable dup'">Usable</button>
</body></html>`

func chromeAvailable() bool {
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell", "chrome"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

type sessionFixture struct {
	Manager *Manager
	Session *Session
	Ctx     context.Context
}

func newSessionFixture(t *testing.T, strategy string) *sessionFixture {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser integration test in short mode")
	}
	if !chromeAvailable() {
		t.Skip("no Chrome or Chromium binary on PATH")
	}

	deadline, ok := t.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultBrowserTestTimeout)
	}
	ctx, cancel := context.WithDeadline(context.Background(), deadline.Add(-time.Second))
	t.Cleanup(cancel)

	require.NoError(t, browserSlots.Acquire(ctx, 1))
	t.Cleanup(func() { browserSlots.Release(1) })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(fixturePage))
	}))
	t.Cleanup(srv.Close)

	cfg := config.NewDefaultConfig()
	cfg.SetSuiteBaseURL(srv.URL + "/")
	cfg.SetSuiteTimeout(2 * time.Second)
	cfg.SetSuiteClickStrategy(strategy)
	cfg.BrowserCfg.ImplicitWait = 2 * time.Second

	m := NewManager(cfg, zaptest.NewLogger(t))
	s, err := m.Start(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer stopCancel()
		_ = m.Stop(stopCtx, s)
		assert.NoError(t, m.Shutdown(stopCtx))
	})

	require.NoError(t, s.Navigate(ctx, "index.html"))
	return &sessionFixture{Manager: m, Session: s, Ctx: ctx}
}

func TestSessionInteractions(t *testing.T) {
	f := newSessionFixture(t, config.ClickForced)
	s, ctx := f.Session, f.Ctx

	t.Run("type and click", func(t *testing.T) {
		require.NoError(t, s.Type(ctx, ByID("user-name"), "standard_user"))
		require.NoError(t, s.Click(ctx, ByID("echo")))
		text, err := s.Text(ctx, ByID("out"))
		require.NoError(t, err)
		assert.Equal(t, "standard_user", text)
	})

	t.Run("select fires change", func(t *testing.T) {
		require.NoError(t, s.Select(ctx, ByClass("product_sort_container"), "lohi"))
		text, err := s.Text(ctx, ByID("out"))
		require.NoError(t, err)
		assert.Equal(t, "sorted lohi", text)

		assert.Error(t, s.Select(ctx, ByClass("product_sort_container"), "nope"))
	})

	t.Run("texts and count", func(t *testing.T) {
		texts, err := s.Texts(ctx, ByClass("inventory_item_price"))
		require.NoError(t, err)
		assert.Equal(t, []string{"$9.99", "$29.99"}, texts)

		n, err := s.Count(ctx, ByClass("inventory_item_price"))
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = s.Count(ctx, ByClass("shopping_cart_badge"))
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("visibility", func(t *testing.T) {
		visible, err := s.Visible(ctx, ByID("echo"))
		require.NoError(t, err)
		assert.True(t, visible)

		visible, err = s.Visible(ctx, ByID("hidden"))
		require.NoError(t, err)
		assert.False(t, visible)
	})

	t.Run("location", func(t *testing.T) {
		loc, err := s.Location(ctx)
		require.NoError(t, err)
		assert.Contains(t, loc, "index.html")
	})

	t.Run("clickable skips hidden and disabled duplicates", func(t *testing.T) {
		el, err := s.WaitFor(ctx, ByClass("dup"), Clickable, time.Second)
		require.NoError(t, err)
		require.NotNil(t, el.Node)
		_, disabled := el.Node.Attribute("disabled")
		assert.False(t, disabled)

		require.NoError(t, s.Click(ctx, ByClass("dup"), WithTimeout(time.Second)))
		text, err := s.Text(ctx, ByID("out"))
		require.NoError(t, err)
		assert.Equal(t, "usable dup", text)
	})

	t.Run("timeouts distinguish absent from unclickable", func(t *testing.T) {
		err := s.Click(ctx, ByID("does-not-exist"), WithTimeout(300*time.Millisecond))
		var terr *TimeoutError
		require.ErrorAs(t, err, &terr)
		assert.False(t, terr.Present)

		err = s.Click(ctx, ByID("disabled-btn"), WithTimeout(300*time.Millisecond))
		require.ErrorAs(t, err, &terr)
		assert.True(t, terr.Present)
	})
}

func TestClickStrategiesAgainstOverlay(t *testing.T) {
	f := newSessionFixture(t, config.ClickNative)
	s, ctx := f.Session, f.Ctx
	assert.Equal(t, config.ClickNative, s.ClickStrategy())

	// A real mouse click lands on the overlay.
	require.NoError(t, s.Click(ctx, ByID("covered")))
	text, err := s.Text(ctx, ByID("out"))
	require.NoError(t, err)
	assert.Empty(t, text)

	require.NoError(t, s.Click(ctx, ByID("covered"), WithStrategy(ForcedClick{})))
	text, err = s.Text(ctx, ByID("out"))
	require.NoError(t, err)
	assert.Equal(t, "covered clicked", text)
}

func TestManagerStartFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser launch test in short mode")
	}
	cfg := config.NewDefaultConfig()
	cfg.BrowserCfg.ExecPath = "/nonexistent/chrome"
	cfg.BrowserCfg.LaunchTimeout = 5 * time.Second

	m := NewManager(cfg, zaptest.NewLogger(t))
	_, err := m.Start(context.Background())
	var serr *StartupError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 0, m.Active())
}
