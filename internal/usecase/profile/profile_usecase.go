package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lisiobuddy/lisiobuddy-backend/internal/domain"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/infrastructure/events"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/infrastructure/metrics"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/repository"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/usecase/directory"
	"github.com/prometheus/client_golang/prometheus"
)

// DescriptionGenerator drafts profile descriptions. The bool reports whether
// the drafts came from the model rather than the fallback.
type DescriptionGenerator interface {
	GenerateDescriptions(ctx context.Context, name, course string, interests []string) ([]string, bool)
}

type ProfileUseCase struct {
	profileRepo repository.ProfileRepository
	publisher   events.Publisher
	generator   DescriptionGenerator
	pageSize    int
	now         func() time.Time
}

func NewProfileUseCase(
	profileRepo repository.ProfileRepository,
	publisher events.Publisher,
	generator DescriptionGenerator,
	pageSize int,
) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: profileRepo,
		publisher:   publisher,
		generator:   generator,
		pageSize:    pageSize,
		now:         time.Now,
	}
}

// BrowseQuery carries the directory filters of one request. Empty values
// and "all" match everything.
type BrowseQuery struct {
	Query  string
	Course string
	Status string
	Page   int
}

// UpdateProfileRequest is the full replacement of a profile's editable
// fields. Interests are comma-delimited, as in the edit form.
type UpdateProfileRequest struct {
	FullName    string `json:"full_name" binding:"max=200"`
	Course      string `json:"course" binding:"max=100"`
	Year        string `json:"year" binding:"max=50"`
	Description string `json:"description" binding:"max=2000"`
	Interests   string `json:"interests" binding:"max=1000"`
	Status      string `json:"status" binding:"required,profile_status"`
	GroupNumber *int   `json:"group_number" binding:"omitempty,min=1"`
}

// DescriptionSuggestions are drafts for the description field.
type DescriptionSuggestions struct {
	ProfileID   string   `json:"profile_id"`
	Suggestions []string `json:"suggestions"`
	Generated   bool     `json:"generated"`
}

// OpenView builds a directory view for one session. The caller closes it.
func (uc *ProfileUseCase) OpenView(session directory.SessionProvider, notifier directory.Notifier) *directory.View {
	return directory.NewView(
		&instrumentedStore{repo: uc.profileRepo},
		notifier,
		session,
		directory.WithPageSize(uc.pageSize),
		directory.WithClock(uc.now),
		directory.WithUpdateHook(uc.publishUpdate),
	)
}

// Browse loads the directory and returns the requested page.
func (uc *ProfileUseCase) Browse(ctx context.Context, session directory.SessionProvider, notifier directory.Notifier, q BrowseQuery) (directory.PageResult, error) {
	status, err := parseStatusFilter(q.Status)
	if err != nil {
		return directory.PageResult{}, err
	}

	view := uc.OpenView(session, notifier)
	defer view.Close()

	if err := view.Load(ctx); err != nil {
		return directory.PageResult{}, err
	}

	view.SetSearchQuery(q.Query)
	view.SetCourseFilter(normalizeFacet(q.Course))
	view.SetStatusFilter(status)
	if q.Page > 1 {
		view.GoToPage(q.Page)
	}
	return view.Page(), nil
}

// Detail returns the read-only presentation of one profile.
func (uc *ProfileUseCase) Detail(ctx context.Context, session directory.SessionProvider, notifier directory.Notifier, id string) (*directory.Detail, error) {
	view := uc.OpenView(session, notifier)
	defer view.Close()

	if err := view.Load(ctx); err != nil {
		return nil, err
	}
	return view.ViewDetail(id)
}

// Mine returns the signed-in viewer's own profile. Owners always see their
// own email.
func (uc *ProfileUseCase) Mine(ctx context.Context, session directory.SessionProvider, notifier directory.Notifier) (*directory.Detail, error) {
	view := uc.OpenView(session, notifier)
	defer view.Close()

	viewer := view.Viewer()
	if viewer.IsAnonymous() {
		return nil, domain.ErrAccessDenied
	}

	own, err := uc.profileRepo.GetByUserID(ctx, viewer.AccountID)
	if err != nil {
		return nil, err
	}

	if err := view.Load(ctx); err != nil {
		return nil, err
	}
	return view.ViewDetail(own.ID)
}

// Update opens the edit form for id, submits req through it and returns the
// reloaded detail.
func (uc *ProfileUseCase) Update(ctx context.Context, session directory.SessionProvider, notifier directory.Notifier, id string, req *UpdateProfileRequest) (*directory.Detail, error) {
	view := uc.OpenView(session, notifier)
	defer view.Close()

	if err := view.Load(ctx); err != nil {
		return nil, err
	}

	if _, err := view.EditProfile(id); err != nil {
		if errors.Is(err, domain.ErrAccessDenied) {
			metrics.ProfileEdits.WithLabelValues(metrics.StatusDenied).Inc()
		}
		return nil, err
	}

	form := directory.EditForm{
		ProfileID:   id,
		FullName:    strings.TrimSpace(req.FullName),
		Course:      strings.TrimSpace(req.Course),
		Year:        strings.TrimSpace(req.Year),
		Description: req.Description,
		Interests:   req.Interests,
		Status:      req.Status,
		GroupNumber: req.GroupNumber,
	}

	if err := view.SaveEdit(ctx, form); err != nil {
		metrics.ProfileEdits.WithLabelValues(editOutcome(err)).Inc()
		return nil, err
	}
	metrics.ProfileEdits.WithLabelValues(metrics.StatusSuccess).Inc()

	return view.ViewDetail(id)
}

// SuggestDescriptions drafts descriptions for a profile the viewer may edit.
func (uc *ProfileUseCase) SuggestDescriptions(ctx context.Context, session directory.SessionProvider, notifier directory.Notifier, id string) (*DescriptionSuggestions, error) {
	view := uc.OpenView(session, notifier)
	defer view.Close()

	if err := view.Load(ctx); err != nil {
		return nil, err
	}

	form, err := view.EditProfile(id)
	if err != nil {
		return nil, err
	}
	view.CancelEdit()

	name, course, interests := form.FullName, form.Course, domain.ParseInterests(form.Interests)

	var (
		drafts    []string
		generated bool
	)
	if uc.generator != nil {
		drafts, generated = uc.generator.GenerateDescriptions(ctx, name, course, interests)
	}
	if len(drafts) == 0 {
		return nil, fmt.Errorf("no description suggestions available")
	}

	source := "fallback"
	if generated {
		source = "model"
	}
	metrics.DescriptionSuggestions.WithLabelValues(source).Inc()

	return &DescriptionSuggestions{
		ProfileID:   id,
		Suggestions: drafts,
		Generated:   generated,
	}, nil
}

// publishUpdate announces a stored edit. It prefers the stored row and falls
// back to the submitted copy when the re-read fails.
func (uc *ProfileUseCase) publishUpdate(ctx context.Context, updated *domain.Profile, editor domain.Viewer) {
	if uc.publisher == nil {
		return
	}

	stored, err := uc.profileRepo.GetByID(ctx, updated.ID)
	if err != nil {
		fmt.Printf("[Profile] failed to re-read profile %s for event: %v\n", updated.ID, err)
		stored = updated
	}

	event := events.NewProfileUpdated(stored, editor, uc.now())
	if err := uc.publisher.PublishProfileUpdated(ctx, event); err != nil {
		fmt.Printf("[Profile] failed to publish update for %s: %v\n", updated.ID, err)
	}
}

func parseStatusFilter(raw string) (domain.Status, error) {
	raw = normalizeFacet(raw)
	if raw == directory.MatchAll {
		return directory.MatchAll, nil
	}
	return domain.ParseStatus(raw)
}

func normalizeFacet(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "all") {
		return directory.MatchAll
	}
	return raw
}

func editOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrAccessDenied):
		return metrics.StatusDenied
	case errors.Is(err, domain.ErrInvalidStatus), errors.Is(err, domain.ErrInvalidGroup):
		return metrics.StatusInvalid
	default:
		return metrics.StatusFailure
	}
}

// instrumentedStore records directory load metrics around the repository.
type instrumentedStore struct {
	repo repository.ProfileRepository
}

func (s *instrumentedStore) ListProfiles(ctx context.Context) ([]*domain.Profile, error) {
	timer := prometheus.NewTimer(metrics.DirectoryLoadDuration)
	defer timer.ObserveDuration()

	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		metrics.DirectoryLoads.WithLabelValues(metrics.StatusFailure).Inc()
		return nil, err
	}
	metrics.DirectoryLoads.WithLabelValues(metrics.StatusSuccess).Inc()
	return profiles, nil
}

func (s *instrumentedStore) UpdateProfile(ctx context.Context, id string, fields domain.ProfileFields) error {
	return s.repo.UpdateProfile(ctx, id, fields)
}
