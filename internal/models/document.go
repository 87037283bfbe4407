package models

import "time"

// DocumentUpload describes a stored admission document. The Path is what
// applicants submit in their application's document list; downloads go
// through signed URLs minted for reviewing admins.
type DocumentUpload struct {
	Path        string    `json:"path"`
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// SignedDocumentURL pairs a stored document path with a signed download URL.
type SignedDocumentURL struct {
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
