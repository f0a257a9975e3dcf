// Package workflow tracks whether the signatures for a generated sheet's
// roster have actually been collected.
package workflow

import (
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

type NotificationType string

const (
	NotificationReminder   NotificationType = "reminder"
	NotificationCompletion NotificationType = "completion"
	NotificationUpload     NotificationType = "upload"
)

// Notification is one append-only log entry. Only the acknowledged flag is
// ever mutated; entries are never deleted from a workflow's history.
type Notification struct {
	ID           string           `json:"id"`
	Type         NotificationType `json:"type"`
	Message      string           `json:"message"`
	Timestamp    time.Time        `json:"timestamp"`
	Acknowledged bool             `json:"acknowledged"`
}

// Workflow is bound 1:1 to a generated sheet. TotalSignatures is frozen at
// creation; ReceivedSignatures never decreases.
type Workflow struct {
	ID                 string         `json:"id"`
	SheetID            string         `json:"sheetId"`
	Status             Status         `json:"status"`
	TotalSignatures    int            `json:"totalSignatures"`
	ReceivedSignatures int            `json:"receivedSignatures"`
	GeneratedAt        time.Time      `json:"generatedAt"`
	CompletedAt        *time.Time     `json:"completedAt,omitempty"`
	Notifications      []Notification `json:"notifications"`
}

func New(id, sheetID string, rosterSize int, now time.Time) Workflow {
	return Workflow{
		ID:              id,
		SheetID:         sheetID,
		Status:          StatusPending,
		TotalSignatures: rosterSize,
		GeneratedAt:     now.UTC(),
		Notifications:   []Notification{},
	}
}

func (w Workflow) Clone() Workflow {
	out := w
	if w.CompletedAt != nil {
		at := *w.CompletedAt
		out.CompletedAt = &at
	}
	out.Notifications = make([]Notification, len(w.Notifications))
	copy(out.Notifications, w.Notifications)
	return out
}

// uploadCoverage is the policy deciding how many roster signatures a single
// uploaded document stands for. Today one document is read as evidence for
// the whole roster; a stricter per-attendee model would replace only this
// function, not the state machine.
func uploadCoverage(w Workflow) int {
	return w.TotalSignatures
}

// Ingest advances the workflow for one uploaded signed document. Completed is
// terminal: a second upload logs a notification but changes nothing else.
func (w Workflow) Ingest(now time.Time, notificationID, completionID, message string) Workflow {
	out := w.Clone()
	at := now.UTC()
	out.Notifications = append(out.Notifications, Notification{
		ID:        notificationID,
		Type:      NotificationUpload,
		Message:   message,
		Timestamp: at,
	})
	if out.Status == StatusCompleted {
		return out
	}
	received := uploadCoverage(out)
	if received > out.ReceivedSignatures {
		out.ReceivedSignatures = received
	}
	if out.ReceivedSignatures < out.TotalSignatures {
		out.Status = StatusInProgress
		return out
	}
	out.Status = StatusCompleted
	out.CompletedAt = &at
	out.Notifications = append(out.Notifications, Notification{
		ID:        completionID,
		Type:      NotificationCompletion,
		Message:   "All roster signatures accounted for",
		Timestamp: at,
	})
	return out
}

// Remind appends a reminder entry for a workflow still waiting on signatures.
func (w Workflow) Remind(now time.Time, notificationID, message string) Workflow {
	out := w.Clone()
	out.Notifications = append(out.Notifications, Notification{
		ID:        notificationID,
		Type:      NotificationReminder,
		Message:   message,
		Timestamp: now.UTC(),
	})
	return out
}

// Acknowledge flips the acknowledged flag on one entry. Returns false when
// the id is unknown to this workflow.
func (w Workflow) Acknowledge(notificationID string) (Workflow, bool) {
	for i := range w.Notifications {
		if w.Notifications[i].ID == notificationID {
			out := w.Clone()
			out.Notifications[i].Acknowledged = true
			return out, true
		}
	}
	return w, false
}

// LastReminderAt reports when the most recent reminder was logged, falling
// back to the workflow's generation time.
func (w Workflow) LastReminderAt() time.Time {
	last := w.GeneratedAt
	for _, n := range w.Notifications {
		if n.Type == NotificationReminder && n.Timestamp.After(last) {
			last = n.Timestamp
		}
	}
	return last
}
