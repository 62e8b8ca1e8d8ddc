package model

import "time"

// Project represents a user-owned website document under iterative revision.
// CurrentVersionID, when set, must reference a version of this project whose
// code equals CurrentCode.
type Project struct {
	ID               int64
	PublicID         string
	UserID           int64
	Name             string
	InitialPrompt    string
	CurrentCode      string
	CurrentVersionID *int64
	IsPublished      bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CreateProjectRequest creates a project. When CurrentCode is empty the
// code is generated from InitialPrompt; otherwise it is stored as-is with
// no generation and no credit debit. Conversation and Versions allow
// importing pre-existing history.
type CreateProjectRequest struct {
	Name          string                       `json:"name"`
	InitialPrompt string                       `json:"initial_prompt"`
	CurrentCode   string                       `json:"current_code"`
	Conversation  []ConversationEntryRequest   `json:"conversation"`
	Versions      []VersionRequest             `json:"versions"`
}

// UpdateProjectRequest updates a project. ModificationRequest triggers an
// AI edit; otherwise the fields are applied manually. Conversation and
// Versions replace the stored history wholesale and are only honored on
// manual (non-AI) updates.
type UpdateProjectRequest struct {
	Name                *string                    `json:"name"`
	InitialPrompt       *string                    `json:"initial_prompt"`
	CurrentCode         *string                    `json:"current_code"`
	CurrentVersionID    *int64                     `json:"current_version_id"`
	ModificationRequest string                     `json:"modification_request"`
	Conversation        []ConversationEntryRequest `json:"conversation"`
	Versions            []VersionRequest           `json:"versions"`
}

// RollbackRequest points the project back at an existing version.
type RollbackRequest struct {
	VersionID int64 `json:"version_id"`
}

// ProjectResponse is the full project form returned for owner reads,
// including interaction history and version snapshots.
type ProjectResponse struct {
	ID               string                      `json:"id"`
	Name             string                      `json:"name"`
	InitialPrompt    string                      `json:"initial_prompt"`
	CurrentCode      string                      `json:"current_code"`
	CurrentVersionID *int64                      `json:"current_version_id"`
	IsPublished      bool                        `json:"is_published"`
	User             UserSummary                 `json:"user"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
	Conversation     []ConversationEntryResponse `json:"conversation"`
	Versions         []VersionResponse           `json:"versions"`
}

// ProjectSummary is the reduced form used for community listings; it omits
// the conversation and version collections.
type ProjectSummary struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	InitialPrompt    string      `json:"initial_prompt"`
	CurrentCode      string      `json:"current_code"`
	CurrentVersionID *int64      `json:"current_version_id"`
	IsPublished      bool        `json:"is_published"`
	User             UserSummary `json:"user"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// PublishResponse reports the publish flag after a toggle.
type PublishResponse struct {
	ID          string `json:"id"`
	IsPublished bool   `json:"is_published"`
}

// Timeline item kinds.
const (
	TimelineKindMessage = "message"
	TimelineKindVersion = "version"
)

// TimelineItem is one element of the derived chronological view merging
// conversation entries and versions. Exactly one of Message and Version is
// set, according to Kind.
type TimelineItem struct {
	Kind      string                     `json:"kind"`
	Timestamp time.Time                  `json:"timestamp"`
	Message   *ConversationEntryResponse `json:"message,omitempty"`
	Version   *VersionResponse           `json:"version,omitempty"`
}
