package app

import (
	"time"

	"github.com/dori/roadme/internal/model"
	"github.com/dori/roadme/internal/notify"
)

// DueOn returns the tasks due on day, completed or not
func (a *App) DueOn(day time.Time) []*model.Task {
	return a.Forest().DueOn(day)
}

// Pending returns open tasks due today or earlier, in tree order
func (a *App) Pending(now time.Time) []*model.Task {
	var out []*model.Task
	a.Forest().Walk(func(t *model.Task) {
		if t.IsCompleted || t.DueDate == nil {
			return
		}
		if notify.DaysLate(*t.DueDate, now) >= 0 {
			out = append(out, t)
		}
	})
	return out
}

// Remind sends a desktop notification for each pending task and returns
// how many were sent. Failures are logged and counted out.
func (a *App) Remind(now time.Time) int {
	if !a.Notifier.IsEnabled() {
		return 0
	}
	sent := 0
	for _, t := range a.Pending(now) {
		if err := a.Notifier.SendDueReminder(t, now); err != nil {
			a.Logger.Warn("reminder failed", "task", t.ID, "err", err)
			continue
		}
		sent++
	}
	return sent
}
