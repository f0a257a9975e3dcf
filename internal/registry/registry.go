// Package registry holds the evidence files uploaded against a signature
// workflow. The registry trusts the declared descriptor; it performs no
// content validation and no cryptographic checks.
package registry

import "time"

type FileDescriptor struct {
	Name      string
	Size      int64
	MediaType string
}

// SignedDocument is one uploaded artifact offered as evidence that
// signatures were collected. Verified is a manual operator acknowledgment,
// not a trust proof, and never flips back to false.
type SignedDocument struct {
	ID             string    `json:"id"`
	WorkflowID     string    `json:"workflowId"`
	SheetID        string    `json:"sheetId"`
	Name           string    `json:"name"`
	Size           int64     `json:"size"`
	MediaType      string    `json:"mediaType"`
	UploadedAt     time.Time `json:"uploadedAt"`
	UploadedBy     string    `json:"uploadedBy,omitempty"`
	SignatureCount int       `json:"signatureCount"`
	Verified       bool      `json:"verified"`
	Content        []byte    `json:"content,omitempty"`
}

// New snapshots the declared descriptor into a document record. The
// signature count defaults to the roster size unless overridden later.
func New(id, workflowID, sheetID string, fd FileDescriptor, content []byte, uploadedBy string, rosterSize int, now time.Time) SignedDocument {
	return SignedDocument{
		ID:             id,
		WorkflowID:     workflowID,
		SheetID:        sheetID,
		Name:           fd.Name,
		Size:           fd.Size,
		MediaType:      fd.MediaType,
		UploadedAt:     now.UTC(),
		UploadedBy:     uploadedBy,
		SignatureCount: rosterSize,
		Content:        content,
	}
}

// Verify is idempotent: a verified document stays verified.
func Verify(d SignedDocument) SignedDocument {
	d.Verified = true
	return d
}
