// Package store keeps the sheet collection behind an explicit, injected
// store. Every mutation is expressed as a pure transition over an immutable
// snapshot: old state in, new state plus emitted events out. The committed
// state only advances after the transition and its persistence both succeed.
package store

import (
	"errors"
	"time"

	"compliancehub/training/internal/registry"
	"compliancehub/training/internal/sheet"
	"compliancehub/training/internal/workflow"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrSheetFrozen guards generated sheets: the roster and fields were
	// snapshotted at generation time and stay byte-stable afterwards.
	ErrSheetFrozen = errors.New("sheet is no longer editable")
	// ErrNotGenerated rejects uploads against sheets that never left draft;
	// a workflow exists only for generated sheets.
	ErrNotGenerated = errors.New("sheet has not been generated")
)

// Entry is the persisted shape: the sheet plus its denormalized workflow and
// signed documents, exactly as serialized under the collection key.
type Entry struct {
	sheet.Sheet
	SignatureWorkflow *workflow.Workflow        `json:"signatureWorkflow,omitempty"`
	SignedDocuments   []registry.SignedDocument `json:"signedDocuments,omitempty"`
}

func (e Entry) clone() Entry {
	out := e
	out.Sheet = e.Sheet.Clone()
	if e.SignatureWorkflow != nil {
		w := e.SignatureWorkflow.Clone()
		out.SignatureWorkflow = &w
	}
	if e.SignedDocuments != nil {
		out.SignedDocuments = make([]registry.SignedDocument, len(e.SignedDocuments))
		copy(out.SignedDocuments, e.SignedDocuments)
	}
	return out
}

type State struct {
	Entries []Entry
}

func (st State) clone() State {
	out := State{Entries: make([]Entry, len(st.Entries))}
	for i, e := range st.Entries {
		out.Entries[i] = e.clone()
	}
	return out
}

func (st State) indexOf(sheetID string) int {
	for i := range st.Entries {
		if st.Entries[i].Sheet.ID == sheetID {
			return i
		}
	}
	return -1
}

type EventType string

const (
	EventSheetGenerated    EventType = "sheet.generated"
	EventDocumentUploaded  EventType = "document.uploaded"
	EventWorkflowCompleted EventType = "workflow.completed"
	EventDocumentVerified  EventType = "document.verified"
	EventDocumentDeleted   EventType = "document.deleted"
	EventSheetArchived     EventType = "sheet.archived"
	EventSheetDeleted      EventType = "sheet.deleted"
	EventReminderLogged    EventType = "workflow.reminder"
)

// Event describes one workflow-relevant mutation, emitted alongside the new
// state for observers such as the activity log.
type Event struct {
	Type       EventType `json:"type"`
	SheetID    string    `json:"sheetId,omitempty"`
	WorkflowID string    `json:"workflowId,omitempty"`
	DocumentID string    `json:"documentId,omitempty"`
	At         time.Time `json:"at"`
}
