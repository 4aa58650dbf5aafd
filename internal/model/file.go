package model

import "time"

// File is an uploaded note: the raw bytes plus enough metadata to hand the
// content to the AI generator later (Gemini needs the MIME type to know how
// to read the payload — PDF, image, plain text...).
//
// Files are immutable after upload except for deletion. UserID is the owner
// and never changes; every query that touches a file filters on it.
type File struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	ContentType string    `json:"contentType"`
	Data        []byte    `json:"data,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FileInfo is a File without its payload, used for listings so that
// GET /files doesn't ship every blob the user ever uploaded.
type FileInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"contentType"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Info returns the metadata-only view of the file.
func (f *File) Info() FileInfo {
	return FileInfo{ID: f.ID, Name: f.Name, ContentType: f.ContentType, CreatedAt: f.CreatedAt}
}
