package model

import "time"

// Version is an immutable snapshot of a project's code. Versions are only
// ever appended; correcting history means appending another version.
type Version struct {
	ID          int64
	ProjectID   int64
	Code        string
	Description string
	Timestamp   time.Time
}

// VersionRequest is one version in a bulk import or replacement payload.
type VersionRequest struct {
	Code        string     `json:"code"`
	Description string     `json:"description"`
	Timestamp   *time.Time `json:"timestamp"`
}

// VersionResponse is a version as rendered in API responses.
type VersionResponse struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}
