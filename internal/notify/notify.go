// Package notify holds the user-visible notifications raised by the refresh
// and rug-check flows. Notices live only in memory and the center keeps a
// bounded history of the most recent ones.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level classifies a notice for rendering.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is one user-visible notification.
type Notice struct {
	ID      string    `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Center retains a bounded collection of the most recent notices. It is safe
// for concurrent use.
type Center struct {
	mu    sync.RWMutex
	items []Notice
	limit int
}

func NewCenter(limit int) *Center {
	if limit <= 0 {
		limit = 50
	}
	return &Center{limit: limit}
}

// Push appends a notice and returns it with its assigned identifier.
func (c *Center) Push(level Level, message string) Notice {
	notice := Notice{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
		Time:    time.Now(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = append(c.items, notice)
	if len(c.items) > c.limit {
		// keep the most recent entries only
		c.items = append([]Notice(nil), c.items[len(c.items)-c.limit:]...)
	}
	return notice
}

func (c *Center) Success(message string) Notice {
	return c.Push(LevelSuccess, message)
}

func (c *Center) Error(message string) Notice {
	return c.Push(LevelError, message)
}

// Snapshot returns a copy of the retained notices, oldest first.
func (c *Center) Snapshot() []Notice {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Notice, len(c.items))
	copy(out, c.items)
	return out
}

// Latest returns the most recent notice and whether one exists.
func (c *Center) Latest() (Notice, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.items) == 0 {
		return Notice{}, false
	}
	return c.items[len(c.items)-1], true
}
