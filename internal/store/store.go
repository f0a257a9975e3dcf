package store

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"compliancehub/training/internal/registry"
	"compliancehub/training/internal/sheet"
	"compliancehub/training/internal/workflow"
)

// Persister saves and restores the whole sheet collection. A nil persister
// keeps the store memory-only.
type Persister interface {
	Save(ctx context.Context, st State) error
	Load(ctx context.Context) (State, bool, error)
}

type Store struct {
	mu        sync.Mutex
	state     State
	persister Persister
	now       func() time.Time
	newID     func() string

	// notificationsClearedAt backs the bulk-clear display projection; it
	// hides entries from the inbox view without touching workflow history.
	notificationsClearedAt time.Time
}

func New(persister Persister) *Store {
	return &Store{
		persister: persister,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// SetClock pins the store's clock; tests use it to freeze timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Restore loads the persisted collection, replacing in-memory state.
func (s *Store) Restore(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	st, found, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore sheet collection: %w", err)
	}
	if !found {
		return nil
	}
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	return nil
}

// commit persists the candidate state and only then replaces the committed
// one, so a persistence failure leaves prior state intact.
func (s *Store) commit(ctx context.Context, next State, events []Event) error {
	if s.persister != nil {
		if err := s.persister.Save(ctx, next); err != nil {
			return fmt.Errorf("persist sheet collection: %w", err)
		}
	}
	s.state = next
	for _, event := range events {
		log.Printf("store event %s sheet=%s workflow=%s document=%s", event.Type, event.SheetID, event.WorkflowID, event.DocumentID)
	}
	return nil
}

// Sheets

type SheetInput struct {
	ClassTitle      string           `json:"classTitle"`
	TrainingType    string           `json:"trainingType"`
	CustomReference string           `json:"customReference"`
	Date            string           `json:"date"`
	StartTime       string           `json:"startTime"`
	EndTime         string           `json:"endTime"`
	Location        string           `json:"location"`
	Instructor      sheet.Instructor `json:"instructor"`
}

func (s *Store) CreateSheet(ctx context.Context, input SheetInput) (sheet.Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	created := sheet.Sheet{
		ID:              s.newID(),
		CreatedAt:       s.now().UTC(),
		ClassTitle:      strings.TrimSpace(input.ClassTitle),
		TrainingType:    strings.TrimSpace(input.TrainingType),
		CustomReference: strings.TrimSpace(input.CustomReference),
		Date:            strings.TrimSpace(input.Date),
		StartTime:       strings.TrimSpace(input.StartTime),
		EndTime:         strings.TrimSpace(input.EndTime),
		Location:        strings.TrimSpace(input.Location),
		Instructor:      input.Instructor,
		Attendees:       []sheet.Attendee{},
		Status:          sheet.StatusDraft,
	}
	next.Entries = append(next.Entries, Entry{Sheet: created})
	if err := s.commit(ctx, next, nil); err != nil {
		return sheet.Sheet{}, err
	}
	return created.Clone(), nil
}

func (s *Store) UpdateSheet(ctx context.Context, id string, input SheetInput) (sheet.Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	i := next.indexOf(id)
	if i < 0 {
		return sheet.Sheet{}, ErrNotFound
	}
	if next.Entries[i].Sheet.Status != sheet.StatusDraft {
		return sheet.Sheet{}, ErrSheetFrozen
	}
	record := &next.Entries[i].Sheet
	record.ClassTitle = strings.TrimSpace(input.ClassTitle)
	record.TrainingType = strings.TrimSpace(input.TrainingType)
	record.CustomReference = strings.TrimSpace(input.CustomReference)
	record.Date = strings.TrimSpace(input.Date)
	record.StartTime = strings.TrimSpace(input.StartTime)
	record.EndTime = strings.TrimSpace(input.EndTime)
	record.Location = strings.TrimSpace(input.Location)
	record.Instructor = input.Instructor
	if err := s.commit(ctx, next, nil); err != nil {
		return sheet.Sheet{}, err
	}
	return record.Clone(), nil
}

func (s *Store) AddAttendee(ctx context.Context, sheetID string, a sheet.Attendee) (sheet.Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	i := next.indexOf(sheetID)
	if i < 0 {
		return sheet.Sheet{}, ErrNotFound
	}
	if next.Entries[i].Sheet.Status != sheet.StatusDraft {
		return sheet.Sheet{}, ErrSheetFrozen
	}
	next.Entries[i].Sheet.Attendees = sheet.AddAttendee(next.Entries[i].Sheet.Attendees, a)
	if err := s.commit(ctx, next, nil); err != nil {
		return sheet.Sheet{}, err
	}
	return next.Entries[i].Sheet.Clone(), nil
}

func (s *Store) RemoveAttendee(ctx context.Context, sheetID string, id sheet.AttendeeID) (sheet.Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	i := next.indexOf(sheetID)
	if i < 0 {
		return sheet.Sheet{}, ErrNotFound
	}
	if next.Entries[i].Sheet.Status != sheet.StatusDraft {
		return sheet.Sheet{}, ErrSheetFrozen
	}
	next.Entries[i].Sheet.Attendees = sheet.RemoveAttendee(next.Entries[i].Sheet.Attendees, id)
	if err := s.commit(ctx, next, nil); err != nil {
		return sheet.Sheet{}, err
	}
	return next.Entries[i].Sheet.Clone(), nil
}

// Generate validates the draft, freezes it, and initializes its signature
// workflow in the pending state.
func (s *Store) Generate(ctx context.Context, sheetID string) (Entry, []Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	i := next.indexOf(sheetID)
	if i < 0 {
		return Entry{}, nil, ErrNotFound
	}
	entry := &next.Entries[i]
	if entry.Sheet.Status != sheet.StatusDraft {
		return Entry{}, nil, ErrSheetFrozen
	}
	now := s.now().UTC()
	generated, err := sheet.Generate(entry.Sheet, now)
	if err != nil {
		return Entry{}, nil, err
	}
	entry.Sheet = generated
	created := workflow.New(s.newID(), generated.ID, len(generated.Attendees), now)
	entry.SignatureWorkflow = &created

	events := []Event{{Type: EventSheetGenerated, SheetID: generated.ID, WorkflowID: created.ID, At: now}}
	if err := s.commit(ctx, next, events); err != nil {
		return Entry{}, nil, err
	}
	return entry.clone(), events, nil
}

func (s *Store) Sheets() []sheet.Sheet {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sheet.Sheet, len(s.state.Entries))
	for i, e := range s.state.Entries {
		out[i] = e.Sheet.Clone()
	}
	return out
}

func (s *Store) Entry(sheetID string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.state.indexOf(sheetID)
	if i < 0 {
		return Entry{}, ErrNotFound
	}
	return s.state.Entries[i].clone(), nil
}

// Documents

// UploadDocument registers a signed document and drives the workflow: the
// first upload completes the roster in full via the workflow's coverage
// policy. A failed persist leaves no partial transition behind.
func (s *Store) UploadDocument(ctx context.Context, sheetID string, fd registry.FileDescriptor, content []byte, uploadedBy string) (registry.SignedDocument, []Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	i := next.indexOf(sheetID)
	if i < 0 {
		return registry.SignedDocument{}, nil, ErrNotFound
	}
	entry := &next.Entries[i]
	if entry.SignatureWorkflow == nil {
		return registry.SignedDocument{}, nil, ErrNotGenerated
	}

	now := s.now().UTC()
	doc := registry.New(s.newID(), entry.SignatureWorkflow.ID, sheetID, fd, content, uploadedBy, len(entry.Sheet.Attendees), now)
	entry.SignedDocuments = append(entry.SignedDocuments, doc)

	wasCompleted := entry.SignatureWorkflow.Status == workflow.StatusCompleted
	message := fmt.Sprintf("Signed sign-in sheet %q uploaded for %s", fd.Name, entry.Sheet.ClassTitle)
	advanced := entry.SignatureWorkflow.Ingest(now, s.newID(), s.newID(), message)
	entry.SignatureWorkflow = &advanced
	entry.Sheet.Status = sheet.StatusUploaded

	events := []Event{{Type: EventDocumentUploaded, SheetID: sheetID, WorkflowID: advanced.ID, DocumentID: doc.ID, At: now}}
	if !wasCompleted && advanced.Status == workflow.StatusCompleted {
		events = append(events, Event{Type: EventWorkflowCompleted, SheetID: sheetID, WorkflowID: advanced.ID, At: now})
	}
	if err := s.commit(ctx, next, events); err != nil {
		return registry.SignedDocument{}, nil, err
	}
	return doc, events, nil
}

func (s *Store) findDocument(st State, documentID string) (int, int) {
	for i := range st.Entries {
		for j := range st.Entries[i].SignedDocuments {
			if st.Entries[i].SignedDocuments[j].ID == documentID {
				return i, j
			}
		}
	}
	return -1, -1
}

func (s *Store) Document(documentID string) (registry.SignedDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, j := s.findDocument(s.state, documentID)
	if i < 0 {
		return registry.SignedDocument{}, ErrNotFound
	}
	return s.state.Entries[i].SignedDocuments[j], nil
}

// VerifyDocument marks the evidence as operator-verified. Idempotent.
func (s *Store) VerifyDocument(ctx context.Context, documentID string) (registry.SignedDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	i, j := s.findDocument(next, documentID)
	if i < 0 {
		return registry.SignedDocument{}, ErrNotFound
	}
	next.Entries[i].SignedDocuments[j] = registry.Verify(next.Entries[i].SignedDocuments[j])
	doc := next.Entries[i].SignedDocuments[j]
	events := []Event{{Type: EventDocumentVerified, SheetID: doc.SheetID, WorkflowID: doc.WorkflowID, DocumentID: doc.ID, At: s.now().UTC()}}
	if err := s.commit(ctx, next, events); err != nil {
		return registry.SignedDocument{}, err
	}
	return doc, nil
}

// DeleteDocument removes the evidence file. Signatures already attributed to
// the workflow are history and are not rolled back; a completed workflow
// stays completed.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	i, j := s.findDocument(next, documentID)
	if i < 0 {
		return ErrNotFound
	}
	doc := next.Entries[i].SignedDocuments[j]
	next.Entries[i].SignedDocuments = append(next.Entries[i].SignedDocuments[:j], next.Entries[i].SignedDocuments[j+1:]...)
	events := []Event{{Type: EventDocumentDeleted, SheetID: doc.SheetID, WorkflowID: doc.WorkflowID, DocumentID: doc.ID, At: s.now().UTC()}}
	return s.commit(ctx, next, events)
}

// Bulk operations

// Archive marks each matching sheet completed. The transition is terminal
// and idempotent; unknown ids are skipped.
func (s *Store) Archive(ctx context.Context, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	now := s.now().UTC()
	var events []Event
	archived := 0
	for _, id := range ids {
		i := next.indexOf(id)
		if i < 0 {
			continue
		}
		if next.Entries[i].Sheet.Status == sheet.StatusCompleted {
			continue
		}
		next.Entries[i].Sheet.Status = sheet.StatusCompleted
		events = append(events, Event{Type: EventSheetArchived, SheetID: id, At: now})
		archived++
	}
	if err := s.commit(ctx, next, events); err != nil {
		return 0, err
	}
	return archived, nil
}

// Delete removes sheets outright; there is no tombstoning.
func (s *Store) Delete(ctx context.Context, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	next := s.state.clone()
	now := s.now().UTC()
	var events []Event
	kept := next.Entries[:0]
	deleted := 0
	for _, entry := range next.Entries {
		if drop[entry.Sheet.ID] {
			events = append(events, Event{Type: EventSheetDeleted, SheetID: entry.Sheet.ID, At: now})
			deleted++
			continue
		}
		kept = append(kept, entry)
	}
	next.Entries = kept
	if err := s.commit(ctx, next, events); err != nil {
		return 0, err
	}
	return deleted, nil
}

// Notifications

func (s *Store) Notifications(workflowID string) ([]workflow.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.state.Entries {
		if entry.SignatureWorkflow != nil && entry.SignatureWorkflow.ID == workflowID {
			w := entry.SignatureWorkflow.Clone()
			return w.Notifications, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Store) Acknowledge(ctx context.Context, notificationID string) (workflow.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	for i := range next.Entries {
		w := next.Entries[i].SignatureWorkflow
		if w == nil {
			continue
		}
		updated, ok := w.Acknowledge(notificationID)
		if !ok {
			continue
		}
		next.Entries[i].SignatureWorkflow = &updated
		if err := s.commit(ctx, next, nil); err != nil {
			return workflow.Notification{}, err
		}
		for _, n := range updated.Notifications {
			if n.ID == notificationID {
				return n, nil
			}
		}
	}
	return workflow.Notification{}, ErrNotFound
}

// Inbox lists unacknowledged notifications newer than the last bulk clear.
// It is a display projection over workflow history, not the history itself.
func (s *Store) Inbox() []workflow.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []workflow.Notification
	for _, entry := range s.state.Entries {
		if entry.SignatureWorkflow == nil {
			continue
		}
		for _, n := range entry.SignatureWorkflow.Notifications {
			if n.Acknowledged || !n.Timestamp.After(s.notificationsClearedAt) {
				continue
			}
			out = append(out, n)
		}
	}
	return out
}

// ClearInbox hides current notifications from the inbox view. Workflow
// histories keep every entry.
func (s *Store) ClearInbox() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notificationsClearedAt = s.now().UTC()
}

// RemindPending appends one reminder to each workflow still waiting on
// signatures whose last reminder (or generation) is older than age.
func (s *Store) RemindPending(ctx context.Context, age time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	now := s.now().UTC()
	var events []Event
	reminded := 0
	for i := range next.Entries {
		w := next.Entries[i].SignatureWorkflow
		if w == nil || w.Status == workflow.StatusCompleted {
			continue
		}
		if now.Sub(w.LastReminderAt()) < age {
			continue
		}
		message := fmt.Sprintf("Signatures still outstanding for %s", next.Entries[i].Sheet.ClassTitle)
		updated := w.Remind(now, s.newID(), message)
		next.Entries[i].SignatureWorkflow = &updated
		events = append(events, Event{Type: EventReminderLogged, SheetID: next.Entries[i].Sheet.ID, WorkflowID: updated.ID, At: now})
		reminded++
	}
	if reminded == 0 {
		return 0, nil
	}
	if err := s.commit(ctx, next, events); err != nil {
		return 0, err
	}
	return reminded, nil
}
