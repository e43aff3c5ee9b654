package domain

import "time"

// ReviewDocument is one document in an unlocked verification bundle along
// with the reviewer's finding for it.
type ReviewDocument struct {
	ID          string
	Type        string
	Number      string
	URL         string
	Description string
	Evidence    *Media
}

// Review is a document-verification bundle unlocked by an access code in one
// browser session. Once stored it stays unlocked for that session.
type Review struct {
	SessionID       string
	VerificationID  string
	AccessCode      string
	BuyerName       string
	PropertyAddress string
	Documents       []ReviewDocument
	Submitted       bool
	UnlockedAt      time.Time
}

// Document returns a pointer to the document with id, or nil.
func (r *Review) Document(id string) *ReviewDocument {
	for i := range r.Documents {
		if r.Documents[i].ID == id {
			return &r.Documents[i]
		}
	}
	return nil
}

// Uploading reports whether any evidence file is still being uploaded.
func (r *Review) Uploading() bool {
	for _, d := range r.Documents {
		if d.Evidence != nil && d.Evidence.IsUploading {
			return true
		}
	}
	return false
}
