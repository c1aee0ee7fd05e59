package directory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lisiobuddy/lisiobuddy-backend/internal/domain"
)

// RedactedEmail replaces the contact email for viewers who may not see it.
const RedactedEmail = "Contact admin for email"

const interestPreviewSize = 2

// Row is the role-sensitive projection of one profile in the directory table.
type Row struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Initials        string   `json:"initials"`
	AvatarURL       string   `json:"avatar_url,omitempty"`
	Email           string   `json:"email"`
	EmailVisible    bool     `json:"email_visible"`
	Course          string   `json:"course"`
	Year            string   `json:"year"`
	Interests       []string `json:"interests"`
	InterestPreview []string `json:"interest_preview"`
	MoreInterests   int      `json:"more_interests"`
	Status          string   `json:"status"`
	StatusText      string   `json:"status_text"`
	StatusClass     string   `json:"status_class"`
	GroupNumber     *int     `json:"group_number,omitempty"`
	LastActive      string   `json:"last_active"`
	CanEdit         bool     `json:"can_edit"`
}

type Detail struct {
	Row
	Description string `json:"description"`
}

type PageResult struct {
	Rows       []Row    `json:"profiles"`
	Page       int      `json:"page"`
	TotalPages int      `json:"total_pages"`
	Total      int      `json:"total"`
	Courses    []string `json:"courses"`
	Loading    bool     `json:"loading"`
	Filtered   bool     `json:"filtered"`
}

type Option func(*View)

func WithPageSize(size int) Option {
	return func(v *View) {
		if size > 0 {
			v.pageSize = size
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(v *View) { v.now = now }
}

func WithUpdateHook(hook UpdateHook) Option {
	return func(v *View) { v.onUpdate = hook }
}

// View is the profile directory: it owns the loaded collection, the filter
// inputs, the current page and the open detail or edit presentation.
type View struct {
	store    ProfileStore
	notifier Notifier
	pageSize int
	now      func() time.Time
	onUpdate UpdateHook

	mu          sync.Mutex
	profiles    []*domain.Profile
	courses     []string
	query       string
	course      string
	status      domain.Status
	page        int
	viewer      domain.Viewer
	inflight    int
	loadSeq     uint64
	detail      *Detail
	edit        *EditForm
	closed      bool
	unsubscribe func()
}

func NewView(store ProfileStore, notifier Notifier, session SessionProvider, opts ...Option) *View {
	v := &View{
		store:    store,
		notifier: notifier,
		pageSize: DefaultPageSize,
		now:      time.Now,
		profiles: []*domain.Profile{},
		courses:  []string{},
		page:     1,
		viewer:   domain.AnonymousViewer(),
	}
	for _, opt := range opts {
		opt(v)
	}

	if session != nil {
		v.viewer = session.Viewer()
		v.unsubscribe = session.OnSessionChange(v.setViewer)
	}
	return v
}

func (v *View) setViewer(viewer domain.Viewer) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.viewer = viewer
}

func (v *View) Viewer() domain.Viewer {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.viewer
}

// Load replaces the collection with the store's current contents. When loads
// overlap, only the most recently issued one is applied.
func (v *View) Load(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return domain.ErrViewClosed
	}
	v.loadSeq++
	seq := v.loadSeq
	v.inflight++
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.inflight--
		v.mu.Unlock()
	}()

	profiles, err := v.store.ListProfiles(ctx)

	v.mu.Lock()
	closed := v.closed
	current := seq == v.loadSeq
	if err == nil && !closed && current {
		v.profiles = profiles
		v.courses = DistinctCourses(profiles)
	}
	v.mu.Unlock()

	if err != nil {
		// A superseded load has already been replaced by newer data.
		if !closed && current {
			v.notify("Error", "Failed to load profiles. Please try again.", SeverityDestructive)
		}
		return fmt.Errorf("failed to load profiles: %w", err)
	}
	return nil
}

func (v *View) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.inflight > 0
}

func (v *View) Profiles() []*domain.Profile {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]*domain.Profile(nil), v.profiles...)
}

func (v *View) Courses() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.courses...)
}

func (v *View) SetSearchQuery(query string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query = query
	v.page = 1
}

func (v *View) SetCourseFilter(course string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.course = course
	v.page = 1
}

func (v *View) SetStatusFilter(status domain.Status) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.status = status
	v.page = 1
}

func (v *View) CurrentPage() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page
}

func (v *View) filteredLocked() []*domain.Profile {
	return Filter(v.profiles, v.query, v.course, v.status)
}

func (v *View) Filtered() []*domain.Profile {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filteredLocked()
}

func (v *View) TotalPages() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return TotalPages(len(v.filteredLocked()), v.pageSize)
}

func (v *View) NextPage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.page < TotalPages(len(v.filteredLocked()), v.pageSize) {
		v.page++
	}
}

func (v *View) PrevPage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.page > 1 {
		v.page--
	}
}

// GoToPage accepts any page in [1, totalPages] and reports whether it moved.
func (v *View) GoToPage(page int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if page < 1 || page > TotalPages(len(v.filteredLocked()), v.pageSize) {
		return false
	}
	v.page = page
	return true
}

func (v *View) Page() PageResult {
	v.mu.Lock()
	defer v.mu.Unlock()

	filtered := v.filteredLocked()
	slice, totalPages := Paginate(filtered, v.page, v.pageSize)
	now := v.now()

	rows := make([]Row, 0, len(slice))
	for _, p := range slice {
		rows = append(rows, project(p, v.viewer, now))
	}
	return PageResult{
		Rows:       rows,
		Page:       v.page,
		TotalPages: totalPages,
		Total:      len(filtered),
		Courses:    append([]string{}, v.courses...),
		Loading:    v.inflight > 0,
		Filtered:   v.query != "" || v.course != MatchAll || v.status != MatchAll,
	}
}

func project(p *domain.Profile, viewer domain.Viewer, now time.Time) Row {
	interests := append([]string{}, p.Interests...)
	preview := interests
	if len(preview) > interestPreviewSize {
		preview = preview[:interestPreviewSize]
	}

	row := Row{
		ID:              p.ID,
		Name:            p.FullName,
		Initials:        p.Initials(),
		AvatarURL:       p.AvatarURL,
		Email:           RedactedEmail,
		Course:          p.Course,
		Year:            p.Year,
		Interests:       interests,
		InterestPreview: preview,
		MoreInterests:   len(interests) - len(preview),
		Status:          string(p.EffectiveStatus()),
		StatusText:      p.StatusText(),
		StatusClass:     p.StatusClass(),
		GroupNumber:     p.GroupNumber,
		LastActive:      p.LastActiveText(now),
		CanEdit:         viewer.CanEdit(p),
	}
	if viewer.CanSeeContact(p) {
		row.Email = p.Email
		row.EmailVisible = true
	}
	return row
}

func (v *View) findLocked(id string) *domain.Profile {
	for _, p := range v.profiles {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ViewDetail opens the read-only presentation of one loaded profile.
func (v *View) ViewDetail(id string) (*Detail, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	p := v.findLocked(id)
	if p == nil {
		return nil, domain.ErrProfileNotFound
	}
	v.detail = &Detail{
		Row:         project(p, v.viewer, v.now()),
		Description: p.Description,
	}
	d := *v.detail
	return &d, nil
}

func (v *View) CloseDetail() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.detail = nil
}

func (v *View) OpenDetail() *Detail {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.detail == nil {
		return nil
	}
	d := *v.detail
	return &d
}

// EditProfile opens the edit form when the viewer is an admin or owns the
// profile. A denial is reported through the notifier only.
func (v *View) EditProfile(id string) (*EditForm, error) {
	v.mu.Lock()
	p := v.findLocked(id)
	if p == nil {
		v.mu.Unlock()
		return nil, domain.ErrProfileNotFound
	}
	if !v.viewer.CanEdit(p) {
		v.mu.Unlock()
		v.notify("Access denied", "You can only edit your own profile.", SeverityDestructive)
		return nil, domain.ErrAccessDenied
	}
	form := NewEditForm(p)
	v.edit = &form
	v.mu.Unlock()

	out := form
	return &out, nil
}

func (v *View) EditForm() *EditForm {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.edit == nil {
		return nil
	}
	form := *v.edit
	return &form
}

func (v *View) CancelEdit() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.edit = nil
}

// SaveEdit stores the form as a full replacement of the editable fields. On
// success the form closes and the collection reloads; on failure the form
// stays open with the submitted values.
func (v *View) SaveEdit(ctx context.Context, form EditForm) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return domain.ErrViewClosed
	}
	if v.edit == nil || v.edit.ProfileID != form.ProfileID {
		v.mu.Unlock()
		return domain.ErrNoEditOpen
	}
	p := v.findLocked(form.ProfileID)
	if p == nil || !v.viewer.CanEdit(p) {
		v.mu.Unlock()
		v.notify("Access denied", "You can only edit your own profile.", SeverityDestructive)
		return domain.ErrAccessDenied
	}
	v.edit = &form
	viewer := v.viewer
	fields, err := form.Fields(v.now())
	v.mu.Unlock()

	if err != nil {
		v.notify("Error", fmt.Sprintf("Invalid profile: %v.", err), SeverityDestructive)
		return err
	}

	if err := v.store.UpdateProfile(ctx, form.ProfileID, fields); err != nil {
		if !v.isClosed() {
			v.notify("Error", "Failed to update profile. Please try again.", SeverityDestructive)
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.edit = nil
	v.mu.Unlock()

	// A failed reload is already reported by Load; the save itself succeeded.
	_ = v.Load(ctx)
	if v.isClosed() {
		return nil
	}
	v.notify("Success", "Profile updated successfully!", SeverityDefault)

	if v.onUpdate != nil {
		updated := *p
		applyFields(&updated, fields)
		v.onUpdate(ctx, &updated, viewer)
	}
	return nil
}

func applyFields(p *domain.Profile, fields domain.ProfileFields) {
	p.FullName = fields.FullName
	p.Course = fields.Course
	p.Year = fields.Year
	p.Description = fields.Description
	p.Interests = fields.Interests
	p.Status = string(fields.Status)
	p.GroupNumber = fields.GroupNumber
	lastActive := fields.LastActive
	p.LastActive = &lastActive
}

func (v *View) isClosed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// Close detaches the view from the session; results arriving later are
// dropped.
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.detail = nil
	v.edit = nil
	unsubscribe := v.unsubscribe
	v.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (v *View) notify(title, body string, severity Severity) {
	if v.notifier != nil {
		v.notifier.Notify(title, body, severity)
	}
}
