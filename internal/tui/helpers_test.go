package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/mark3labs/taskdeck/internal/mutation"
	"github.com/mark3labs/taskdeck/internal/session"
	"github.com/mark3labs/taskdeck/internal/taskcache"
	"github.com/mark3labs/taskdeck/internal/tui/testfixtures"
)

// key builds a key press from its string form.
func key(s string) tea.KeyPressMsg {
	switch s {
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	}
	if rest, ok := strings.CutPrefix(s, "ctrl+"); ok {
		return tea.KeyPressMsg{Code: rune(rest[0]), Mod: tea.ModCtrl}
	}
	return tea.KeyPressMsg{Code: rune(s[0]), Text: s}
}

// collect runs cmd and any batched commands, returning the messages that
// arrive within a short wait. Commands that block on channels are
// abandoned.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(300 * time.Millisecond):
		return nil
	}
}

// send delivers msg and feeds the resulting messages back into the app
// until it settles. Animation ticks are dropped.
func send(t *testing.T, a *App, msg tea.Msg) {
	t.Helper()
	queue := []tea.Msg{msg}
	for i := 0; len(queue) > 0; i++ {
		if i > 50 {
			t.Fatal("app did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		switch next.(type) {
		case spinner.TickMsg, ToastDismissMsg:
			continue
		}
		_, cmd := a.Update(next)
		queue = append(queue, collect(cmd)...)
	}
}

type testApp struct {
	*App
	remote  *testfixtures.FakeRemote
	session *session.Cache
	cache   *taskcache.Collection
	notices *NoticeQueue
	dataDir string
}

// newTestApp builds the full client stack over a fake server and brings
// the app past session resolution.
func newTestApp(t *testing.T, loggedIn bool) *testApp {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	remote := testfixtures.NewFakeRemote(loggedIn)
	cache := taskcache.NewCollection(remote)
	sess := session.New(remote, cache)
	notices := NewNoticeQueue(16)
	pipeline := mutation.New(remote, cache, mutation.WithNotifier(notices))

	dataDir := t.TempDir()
	a := NewApp(ctx, Deps{
		Session:  sess,
		Cache:    cache,
		Pipeline: pipeline,
		Notices:  notices,
		Host:     "localhost:8080",
		DataDir:  dataDir,
		ToastTTL: time.Minute,
	})

	sess.Start(ctx)
	select {
	case <-sess.Ready():
	case <-time.After(testfixtures.DefaultWaitDuration):
		t.Fatal("session never resolved")
	}
	send(t, a, tea.WindowSizeMsg{Width: testfixtures.TestTermWidth, Height: testfixtures.TestTermHeight})
	send(t, a, SessionReadyMsg{})

	return &testApp{App: a, remote: remote, session: sess, cache: cache, notices: notices, dataDir: dataDir}
}

// nextNotice waits for the pipeline's next notice.
func (ta *testApp) nextNotice(t *testing.T) mutation.Notice {
	t.Helper()
	select {
	case n := <-ta.notices.ch:
		return n
	case <-time.After(testfixtures.DefaultWaitDuration):
		t.Fatal("no notice")
		return mutation.Notice{}
	}
}

// render draws the app and returns its plain text.
func (ta *testApp) render() string {
	return testfixtures.Render(ta.Draw)
}
