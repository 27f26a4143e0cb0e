package notify

import (
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/dori/roadme/internal/model"
)

// Urgency levels for notifications
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	Timeout time.Duration
	Icon    string // Optional icon name
}

// Runner executes the notification command
type Runner func(name string, args ...string) error

func execRunner(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// Notifier handles sending desktop notifications
type Notifier struct {
	enabled bool
	run     Runner
}

// NewNotifier creates a notifier that shells out to notify-send
func NewNotifier() *Notifier {
	return &Notifier{
		enabled: true,
		run:     execRunner,
	}
}

// NewWithRunner creates a notifier that hands commands to run
func NewWithRunner(run Runner) *Notifier {
	return &Notifier{enabled: true, run: run}
}

// SetEnabled enables or disables notifications
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}

// Args builds the notify-send arguments for notification
func Args(notification Notification) []string {
	args := []string{}

	switch notification.Urgency {
	case UrgencyLow:
		args = append(args, "-u", "low")
	case UrgencyCritical:
		args = append(args, "-u", "critical")
	default:
		args = append(args, "-u", "normal")
	}

	// Timeout in milliseconds
	if notification.Timeout > 0 {
		args = append(args, "-t", strconv.Itoa(int(notification.Timeout.Milliseconds())))
	}

	if notification.Icon != "" {
		args = append(args, "-i", notification.Icon)
	}

	args = append(args, "-a", "roadme")

	args = append(args, notification.Title)
	if notification.Body != "" {
		args = append(args, notification.Body)
	}
	return args
}

// Send sends a desktop notification using notify-send
func (n *Notifier) Send(notification Notification) error {
	if !n.enabled {
		return nil
	}
	return n.run("notify-send", Args(notification)...)
}

// DueReminder builds the reminder for a task due on or before now's day
func DueReminder(task *model.Task, now time.Time) Notification {
	body := "Due today"
	urgency := UrgencyNormal
	if task.DueDate != nil {
		switch days := DaysLate(*task.DueDate, now); {
		case days == 1:
			body = "Overdue since yesterday"
			urgency = UrgencyCritical
		case days > 1:
			body = fmt.Sprintf("Overdue by %d days", days)
			urgency = UrgencyCritical
		}
	}

	title := task.Name
	if icon := task.Icon(); icon != "" {
		title = icon + " " + title
	}
	return Notification{
		Title:   title,
		Body:    body,
		Urgency: urgency,
		Timeout: 15 * time.Second,
		Icon:    "emblem-important-symbolic",
	}
}

// DaysLate counts calendar days from due to now in now's location; zero or
// negative means not yet overdue
func DaysLate(due, now time.Time) int {
	ny, nm, nd := now.Date()
	dy, dm, dd := due.In(now.Location()).Date()
	a := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	b := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b).Hours() / 24)
}

// SendDueReminder sends a task due reminder
func (n *Notifier) SendDueReminder(task *model.Task, now time.Time) error {
	return n.Send(DueReminder(task, now))
}

// SendProjectComplete announces a project reaching full progress
func (n *Notifier) SendProjectComplete(name string) error {
	return n.Send(Notification{
		Title:   "Project complete",
		Body:    name,
		Urgency: UrgencyLow,
		Timeout: 10 * time.Second,
		Icon:    "emblem-ok-symbolic",
	})
}
