package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sitesmith/sitesmith-go/internal/ai"
	"github.com/sitesmith/sitesmith-go/internal/model"
	"github.com/sitesmith/sitesmith-go/internal/repository"
)

var (
	ErrPromptRequired      = errors.New("initial prompt is required")
	ErrProjectNameRequired = errors.New("project name is required")
	ErrProjectNotFound     = errors.New("project not found")
	ErrVersionNotFound     = errors.New("version not found")
	ErrUnauthenticated     = errors.New("not authorized to access this project")
	ErrNotOwner            = errors.New("no permission to access this project")
	ErrNoCode              = errors.New("project has no code to modify")
	ErrGenerationFailed    = errors.New("generation failed")
)

// versionDescriptionLimit caps the modification request text carried into
// a version description.
const versionDescriptionLimit = 50

// projectStore is the persistence contract of the project aggregate. The
// Apply*/Create* methods commit all of their writes in one transaction.
type projectStore interface {
	GetProjectByPublicID(ctx context.Context, publicID string) (*model.Project, error)
	ListProjectsByUser(ctx context.Context, userID int64) ([]model.Project, error)
	ListPublishedProjects(ctx context.Context) ([]model.Project, error)
	CreateGeneratedProject(ctx context.Context, p *model.Project, conv []model.ConversationEntry, initial *model.Version, cost int) error
	CreateImportedProject(ctx context.Context, p *model.Project, conv []model.ConversationEntry, extra []model.Version, initial *model.Version) error
	ApplyGeneratedModification(ctx context.Context, projectID int64, code string, conv []model.ConversationEntry, ver *model.Version) error
	ApplyManualUpdate(ctx context.Context, p *model.Project, newVersion *model.Version, conv []model.ConversationEntry, importVers []model.Version) error
	SetCurrentVersion(ctx context.Context, projectID, versionID int64, code string) error
	SetPublished(ctx context.Context, projectID int64, published bool) error
	DeleteProject(ctx context.Context, projectID int64) error
	GetVersion(ctx context.Context, id int64) (*model.Version, error)
	ListVersions(ctx context.Context, projectID int64, ascending bool) ([]model.Version, error)
	ListConversation(ctx context.Context, projectID int64) ([]model.ConversationEntry, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
}

// ProjectService is the project aggregate: it composes generation, the
// version store, the conversation log and the credit ledger into one
// consistent mutation per request, and gates reads through the publish
// policy. Mutations on the same project are serialized by a per-project
// lock so the code/version-pointer invariant holds under concurrency.
type ProjectService struct {
	store      projectStore
	gateway    ai.Gateway
	genCost    int
	genTimeout time.Duration
	locks      *projectLocks
}

// NewProjectService creates a new ProjectService. genCost is the credit
// price of one generation; genTimeout bounds a single gateway call.
func NewProjectService(store projectStore, gateway ai.Gateway, genCost int, genTimeout time.Duration) *ProjectService {
	return &ProjectService{
		store:      store,
		gateway:    gateway,
		genCost:    genCost,
		genTimeout: genTimeout,
		locks:      newProjectLocks(),
	}
}

// CreateProject creates a project. With pre-supplied code the AI is
// skipped and no credits move; otherwise the document is generated from
// the initial prompt, which debits the generation cost. Nothing persists
// when generation fails.
func (s *ProjectService) CreateProject(ctx context.Context, userID int64, req model.CreateProjectRequest) (model.ProjectResponse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return model.ProjectResponse{}, ErrProjectNameRequired
	}
	if strings.TrimSpace(req.InitialPrompt) == "" {
		return model.ProjectResponse{}, ErrPromptRequired
	}

	project := &model.Project{
		PublicID:      uuid.NewString(),
		UserID:        userID,
		Name:          strings.TrimSpace(req.Name),
		InitialPrompt: req.InitialPrompt,
		CurrentCode:   req.CurrentCode,
	}

	if req.CurrentCode == "" {
		user, err := s.store.GetUser(ctx, userID)
		if err != nil {
			return model.ProjectResponse{}, mapUserErr(err)
		}
		if user.Credits < s.genCost {
			return model.ProjectResponse{}, ErrInsufficientCredits
		}

		gctx, cancel := context.WithTimeout(ctx, s.genTimeout)
		defer cancel()
		result, err := s.gateway.GenerateSite(gctx, req.InitialPrompt)
		if err != nil {
			return model.ProjectResponse{}, fmt.Errorf("%w: %s", ErrGenerationFailed, err)
		}

		project.CurrentCode = result.Code
		conv := []model.ConversationEntry{
			{Role: model.RoleUser, Content: req.InitialPrompt},
			{Role: model.RoleAssistant, Content: result.Summary},
		}
		initial := &model.Version{Code: result.Code, Description: "Initial version"}

		if err := s.store.CreateGeneratedProject(ctx, project, conv, initial, s.genCost); err != nil {
			return model.ProjectResponse{}, mapUserErr(err)
		}
		return s.format(ctx, project)
	}

	// Pre-supplied code: import as-is. An initial version is recorded
	// whenever the resulting code is non-empty, AI or not.
	conv := conversationFromRequests(req.Conversation)
	extra := versionsFromRequests(req.Versions)
	initial := &model.Version{Code: project.CurrentCode, Description: "Initial version"}

	if err := s.store.CreateImportedProject(ctx, project, conv, extra, initial); err != nil {
		return model.ProjectResponse{}, err
	}
	return s.format(ctx, project)
}

// GetProject retrieves one project through the read policy: published
// projects are readable by anyone, private ones only by their owner.
// actorID zero means anonymous.
func (s *ProjectService) GetProject(ctx context.Context, publicID string, actorID int64) (model.ProjectResponse, error) {
	project, err := s.loadProject(ctx, publicID)
	if err != nil {
		return model.ProjectResponse{}, err
	}
	if err := authorizeRead(project, actorID); err != nil {
		return model.ProjectResponse{}, err
	}
	return s.format(ctx, project)
}

// ListUserProjects returns the caller's projects in full form, most
// recently updated first.
func (s *ProjectService) ListUserProjects(ctx context.Context, userID int64) ([]model.ProjectResponse, error) {
	projects, err := s.store.ListProjectsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]model.ProjectResponse, 0, len(projects))
	for i := range projects {
		resp, err := s.format(ctx, &projects[i])
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// ListCommunityProjects returns all published projects in reduced form
// (no conversation or version collections).
func (s *ProjectService) ListCommunityProjects(ctx context.Context) ([]model.ProjectSummary, error) {
	projects, err := s.store.ListPublishedProjects(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.ProjectSummary, 0, len(projects))
	for i := range projects {
		sum, err := s.summary(ctx, &projects[i])
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

// GetTimeline returns the derived chronological view merging the
// conversation log and the version history. Computed on read, never
// stored.
func (s *ProjectService) GetTimeline(ctx context.Context, publicID string, actorID int64) ([]model.TimelineItem, error) {
	project, err := s.loadProject(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if err := authorizeRead(project, actorID); err != nil {
		return nil, err
	}

	conv, err := s.store.ListConversation(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	versions, err := s.store.ListVersions(ctx, project.ID, true)
	if err != nil {
		return nil, err
	}

	return mergeTimeline(conv, versions), nil
}

// UpdateProject applies either an AI modification (ModificationRequest
// set) or a manual update to a project owned by userID.
func (s *ProjectService) UpdateProject(ctx context.Context, publicID string, userID int64, req model.UpdateProjectRequest) (model.ProjectResponse, error) {
	s.locks.lock(publicID)
	defer s.locks.unlock(publicID)

	project, err := s.loadProject(ctx, publicID)
	if err != nil {
		return model.ProjectResponse{}, err
	}
	if err := authorizeWrite(project, userID); err != nil {
		return model.ProjectResponse{}, err
	}

	if req.ModificationRequest != "" {
		if err := s.modifyWithAI(ctx, project, req.ModificationRequest); err != nil {
			return model.ProjectResponse{}, err
		}
		return s.reload(ctx, publicID)
	}

	if err := s.applyManualUpdate(ctx, project, req); err != nil {
		return model.ProjectResponse{}, err
	}
	return s.reload(ctx, publicID)
}

// modifyWithAI runs the generation gateway against the current document
// and commits the new version, conversation turns and pointer update
// atomically. Generation happens before any write, so a gateway failure
// leaves no trace and debits nothing.
func (s *ProjectService) modifyWithAI(ctx context.Context, project *model.Project, request string) error {
	if project.CurrentCode == "" {
		return ErrNoCode
	}

	gctx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()
	result, err := s.gateway.ModifySite(gctx, project.CurrentCode, request)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrGenerationFailed, err)
	}

	conv := []model.ConversationEntry{
		{Role: model.RoleUser, Content: request},
		{Role: model.RoleAssistant, Content: result.Summary},
	}
	version := &model.Version{
		Code:        result.Code,
		Description: "Modified: " + truncate(request, versionDescriptionLimit),
	}

	return s.store.ApplyGeneratedModification(ctx, project.ID, result.Code, conv, version)
}

// applyManualUpdate applies field changes without the AI. A "Manual save"
// version is appended whenever the submitted code differs from the code
// the pointer will rest on, so the pointer always resolves to a version
// holding the current document. Pointing at an existing version without
// new code (the rollback shape) never appends.
func (s *ProjectService) applyManualUpdate(ctx context.Context, project *model.Project, req model.UpdateProjectRequest) error {
	priorCode := project.CurrentCode

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return ErrProjectNameRequired
		}
		project.Name = name
	}
	if req.InitialPrompt != nil {
		project.InitialPrompt = *req.InitialPrompt
	}

	var newVersion *model.Version
	switch {
	case req.CurrentVersionID != nil:
		// Pointer assignments are validated: the version must exist and
		// belong to this project.
		version, err := s.ownedVersion(ctx, project, *req.CurrentVersionID)
		if err != nil {
			return err
		}
		project.CurrentVersionID = &version.ID
		project.CurrentCode = version.Code
		if req.CurrentCode != nil && *req.CurrentCode != version.Code {
			// Code conflicting with the named version becomes its own
			// snapshot; the pointer moves there instead of dangling.
			project.CurrentCode = *req.CurrentCode
			newVersion = &model.Version{Code: *req.CurrentCode, Description: "Manual save"}
		}
	case req.CurrentCode != nil:
		project.CurrentCode = *req.CurrentCode
		if *req.CurrentCode != priorCode {
			newVersion = &model.Version{Code: *req.CurrentCode, Description: "Manual save"}
		}
	}

	var conv []model.ConversationEntry
	if req.Conversation != nil {
		conv = conversationFromRequests(req.Conversation)
	}
	importVers := versionsFromRequests(req.Versions)

	return s.store.ApplyManualUpdate(ctx, project, newVersion, conv, importVers)
}

// Rollback points the project back at an existing version of its own
// history, adopting that version's code. No new version is created;
// rolling back to the active version is a no-op.
func (s *ProjectService) Rollback(ctx context.Context, publicID string, userID, versionID int64) (model.ProjectResponse, error) {
	s.locks.lock(publicID)
	defer s.locks.unlock(publicID)

	project, err := s.loadProject(ctx, publicID)
	if err != nil {
		return model.ProjectResponse{}, err
	}
	if err := authorizeWrite(project, userID); err != nil {
		return model.ProjectResponse{}, err
	}

	version, err := s.ownedVersion(ctx, project, versionID)
	if err != nil {
		return model.ProjectResponse{}, err
	}

	alreadyActive := project.CurrentVersionID != nil &&
		*project.CurrentVersionID == version.ID &&
		project.CurrentCode == version.Code
	if !alreadyActive {
		if err := s.store.SetCurrentVersion(ctx, project.ID, version.ID, version.Code); err != nil {
			return model.ProjectResponse{}, err
		}
	}

	return s.reload(ctx, publicID)
}

// TogglePublish flips the publish flag and reports the new state. Each
// call flips again; publishing relaxes read access only, never write
// access.
func (s *ProjectService) TogglePublish(ctx context.Context, publicID string, userID int64) (model.PublishResponse, error) {
	s.locks.lock(publicID)
	defer s.locks.unlock(publicID)

	project, err := s.loadProject(ctx, publicID)
	if err != nil {
		return model.PublishResponse{}, err
	}
	if err := authorizeWrite(project, userID); err != nil {
		return model.PublishResponse{}, err
	}

	published := !project.IsPublished
	if err := s.store.SetPublished(ctx, project.ID, published); err != nil {
		return model.PublishResponse{}, err
	}

	return model.PublishResponse{ID: project.PublicID, IsPublished: published}, nil
}

// DeleteProject removes a project and cascades to its versions and
// conversation log.
func (s *ProjectService) DeleteProject(ctx context.Context, publicID string, userID int64) error {
	s.locks.lock(publicID)
	defer s.locks.unlock(publicID)

	project, err := s.loadProject(ctx, publicID)
	if err != nil {
		return err
	}
	if err := authorizeWrite(project, userID); err != nil {
		return err
	}

	if err := s.store.DeleteProject(ctx, project.ID); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return ErrProjectNotFound
		}
		return err
	}
	return nil
}

// authorizeRead grants anonymous access to published projects and owner
// access otherwise. actorID zero means no resolved user.
func authorizeRead(project *model.Project, actorID int64) error {
	if project.IsPublished {
		return nil
	}
	return authorizeWrite(project, actorID)
}

// authorizeWrite always demands a resolved owner, publish state
// notwithstanding.
func authorizeWrite(project *model.Project, actorID int64) error {
	if actorID == 0 {
		return ErrUnauthenticated
	}
	if project.UserID != actorID {
		return ErrNotOwner
	}
	return nil
}

func (s *ProjectService) loadProject(ctx context.Context, publicID string) (*model.Project, error) {
	project, err := s.store.GetProjectByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

// ownedVersion resolves a version and checks it belongs to the project.
// A version of another project is reported as not found, not forbidden.
func (s *ProjectService) ownedVersion(ctx context.Context, project *model.Project, versionID int64) (*model.Version, error) {
	version, err := s.store.GetVersion(ctx, versionID)
	if err != nil {
		if errors.Is(err, repository.ErrVersionNotFound) {
			return nil, ErrVersionNotFound
		}
		return nil, err
	}
	if version.ProjectID != project.ID {
		return nil, ErrVersionNotFound
	}
	return version, nil
}

func (s *ProjectService) reload(ctx context.Context, publicID string) (model.ProjectResponse, error) {
	project, err := s.loadProject(ctx, publicID)
	if err != nil {
		return model.ProjectResponse{}, err
	}
	return s.format(ctx, project)
}

// format builds the full owner-read form: project fields, owner summary,
// conversation ascending and versions descending.
func (s *ProjectService) format(ctx context.Context, project *model.Project) (model.ProjectResponse, error) {
	owner, err := s.store.GetUser(ctx, project.UserID)
	if err != nil {
		return model.ProjectResponse{}, mapUserErr(err)
	}

	conv, err := s.store.ListConversation(ctx, project.ID)
	if err != nil {
		return model.ProjectResponse{}, err
	}
	versions, err := s.store.ListVersions(ctx, project.ID, false)
	if err != nil {
		return model.ProjectResponse{}, err
	}

	return model.ProjectResponse{
		ID:               project.PublicID,
		Name:             project.Name,
		InitialPrompt:    project.InitialPrompt,
		CurrentCode:      project.CurrentCode,
		CurrentVersionID: project.CurrentVersionID,
		IsPublished:      project.IsPublished,
		User:             model.UserSummary{ID: owner.ID, Name: owner.Name, Email: owner.Email},
		CreatedAt:        project.CreatedAt,
		UpdatedAt:        project.UpdatedAt,
		Conversation:     conversationToResponses(conv),
		Versions:         versionsToResponses(versions),
	}, nil
}

func (s *ProjectService) summary(ctx context.Context, project *model.Project) (model.ProjectSummary, error) {
	owner, err := s.store.GetUser(ctx, project.UserID)
	if err != nil {
		return model.ProjectSummary{}, mapUserErr(err)
	}

	return model.ProjectSummary{
		ID:               project.PublicID,
		Name:             project.Name,
		InitialPrompt:    project.InitialPrompt,
		CurrentCode:      project.CurrentCode,
		CurrentVersionID: project.CurrentVersionID,
		IsPublished:      project.IsPublished,
		User:             model.UserSummary{ID: owner.ID, Name: owner.Name, Email: owner.Email},
		CreatedAt:        project.CreatedAt,
		UpdatedAt:        project.UpdatedAt,
	}, nil
}

// mergeTimeline interleaves two timestamp-sorted sequences, tagging each
// item with its source kind. Messages win ties so a request precedes the
// version it produced.
func mergeTimeline(conv []model.ConversationEntry, versions []model.Version) []model.TimelineItem {
	items := make([]model.TimelineItem, 0, len(conv)+len(versions))

	i, j := 0, 0
	for i < len(conv) || j < len(versions) {
		takeMessage := j >= len(versions) ||
			(i < len(conv) && !conv[i].Timestamp.After(versions[j].Timestamp))
		if takeMessage {
			resp := conversationToResponse(conv[i])
			items = append(items, model.TimelineItem{
				Kind:      model.TimelineKindMessage,
				Timestamp: conv[i].Timestamp,
				Message:   &resp,
			})
			i++
		} else {
			resp := versionToResponse(versions[j])
			items = append(items, model.TimelineItem{
				Kind:      model.TimelineKindVersion,
				Timestamp: versions[j].Timestamp,
				Version:   &resp,
			})
			j++
		}
	}
	return items
}

// truncate caps s at limit runes, appending an ellipsis marker when text
// was cut.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func conversationFromRequests(reqs []model.ConversationEntryRequest) []model.ConversationEntry {
	entries := make([]model.ConversationEntry, 0, len(reqs))
	for _, r := range reqs {
		e := model.ConversationEntry{Role: r.Role, Content: r.Content}
		if r.Timestamp != nil {
			e.Timestamp = *r.Timestamp
		}
		entries = append(entries, e)
	}
	return entries
}

func versionsFromRequests(reqs []model.VersionRequest) []model.Version {
	if len(reqs) == 0 {
		return nil
	}
	versions := make([]model.Version, 0, len(reqs))
	for _, r := range reqs {
		v := model.Version{Code: r.Code, Description: r.Description}
		if r.Timestamp != nil {
			v.Timestamp = *r.Timestamp
		}
		versions = append(versions, v)
	}
	return versions
}

func conversationToResponses(entries []model.ConversationEntry) []model.ConversationEntryResponse {
	result := make([]model.ConversationEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = conversationToResponse(e)
	}
	return result
}

func conversationToResponse(e model.ConversationEntry) model.ConversationEntryResponse {
	return model.ConversationEntryResponse{
		ID:        e.ID,
		Role:      e.Role,
		Content:   e.Content,
		Timestamp: e.Timestamp,
	}
}

func versionsToResponses(versions []model.Version) []model.VersionResponse {
	result := make([]model.VersionResponse, len(versions))
	for i, v := range versions {
		result[i] = versionToResponse(v)
	}
	return result
}

func versionToResponse(v model.Version) model.VersionResponse {
	return model.VersionResponse{
		ID:          v.ID,
		Code:        v.Code,
		Description: v.Description,
		Timestamp:   v.Timestamp,
	}
}
