package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/mark3labs/taskdeck/internal/logger"
	"github.com/mark3labs/taskdeck/internal/mutation"
)

// NoticeQueue hands pipeline notices to the UI loop. It implements
// mutation.Notifier and never blocks the pipeline.
type NoticeQueue struct {
	ch chan mutation.Notice
}

// NewNoticeQueue creates a queue holding up to size pending notices.
func NewNoticeQueue(size int) *NoticeQueue {
	if size <= 0 {
		size = 64
	}
	return &NoticeQueue{ch: make(chan mutation.Notice, size)}
}

// Notify enqueues n, dropping it if the UI has fallen behind.
func (q *NoticeQueue) Notify(n mutation.Notice) {
	select {
	case q.ch <- n:
	default:
		logger.Warn("Notice dropped: %s %s", n.Title, n.Message)
	}
}

// wait blocks for the next notice.
func (q *NoticeQueue) wait() tea.Cmd {
	return func() tea.Msg {
		n, ok := <-q.ch
		if !ok {
			return nil
		}
		return NoticeMsg{Notice: n}
	}
}
