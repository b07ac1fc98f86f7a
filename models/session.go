package models

import "time"

// UploadResponse is returned after a PDF has been processed into a session.
type UploadResponse struct {
	Status     string `json:"status"`
	SessionID  string `json:"session_id"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
	Reused     bool   `json:"reused,omitempty"`
	Message    string `json:"message"`
}

// SessionInfo describes a session without its chunks or vectors.
type SessionInfo struct {
	SessionID  string     `json:"session_id"`
	State      string     `json:"state"`
	Filename   string     `json:"filename,omitempty"`
	ChunkCount int        `json:"chunk_count"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

type MessagesResponse struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
}
