package directory

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/lisiobuddy/lisiobuddy-backend/internal/domain"
)

type fakeStore struct {
	mu       sync.Mutex
	profiles []*domain.Profile
	listErr  error
	saveErr  error
	listHook func(call int)
	callErrs map[int]error
	calls    int
	updates  map[string]domain.ProfileFields
}

func (s *fakeStore) ListProfiles(ctx context.Context) ([]*domain.Profile, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	hook := s.listHook
	out := make([]*domain.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		cp := *p
		out = append(out, &cp)
	}
	s.mu.Unlock()

	if hook != nil {
		hook(call)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.callErrs[call]; err != nil {
		return nil, err
	}
	if s.listErr != nil {
		return nil, s.listErr
	}
	return out, nil
}

func (s *fakeStore) UpdateProfile(ctx context.Context, id string, fields domain.ProfileFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	if s.updates == nil {
		s.updates = map[string]domain.ProfileFields{}
	}
	s.updates[id] = fields
	for _, p := range s.profiles {
		if p.ID == id {
			applyFields(p, fields)
		}
	}
	return nil
}

type notification struct {
	title    string
	body     string
	severity Severity
}

type recorder struct {
	mu    sync.Mutex
	items []notification
}

func (r *recorder) Notify(title, body string, severity Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, notification{title, body, severity})
}

func (r *recorder) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []string{}
	for _, n := range r.items {
		out = append(out, n.title)
	}
	return out
}

type fakeSession struct {
	mu        sync.Mutex
	viewer    domain.Viewer
	listeners map[int]func(domain.Viewer)
	next      int
}

func newFakeSession(viewer domain.Viewer) *fakeSession {
	return &fakeSession{viewer: viewer, listeners: map[int]func(domain.Viewer){}}
}

func (s *fakeSession) Viewer() domain.Viewer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewer
}

func (s *fakeSession) OnSessionChange(fn func(domain.Viewer)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *fakeSession) set(viewer domain.Viewer) {
	s.mu.Lock()
	s.viewer = viewer
	fns := make([]func(domain.Viewer), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(viewer)
	}
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func directoryProfiles() []*domain.Profile {
	return []*domain.Profile{
		{ID: "p-alice", UserID: "u-alice", FullName: "Alice Johnson", Email: "alice@uni.edu", Course: "GenAI", Interests: []string{"React", "ML", "Go"}, Status: "available"},
		{ID: "p-marcus", UserID: "u-marcus", FullName: "Marcus Chen", Email: "marcus@uni.edu", Course: "FGD", Interests: []string{"Python"}, Status: "busy"},
		{ID: "p-sarah", UserID: "u-sarah", FullName: "Sarah Williams", Email: "sarah@uni.edu", Course: "GenAI", Status: "pending"},
	}
}

func newTestView(t *testing.T, store *fakeStore, viewer domain.Viewer, opts ...Option) (*View, *recorder, *fakeSession) {
	t.Helper()
	notes := &recorder{}
	session := newFakeSession(viewer)
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	view := NewView(store, notes, session, opts...)
	t.Cleanup(view.Close)
	return view, notes, session
}

func member(id string) domain.Viewer {
	return domain.Viewer{AccountID: id, Role: domain.RoleMember}
}

func TestLoadDerivesCourses(t *testing.T) {
	view, _, _ := newTestView(t, &fakeStore{profiles: directoryProfiles()}, member("u-alice"))
	if err := view.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(view.Courses(), []string{"GenAI", "FGD"}) {
		t.Fatalf("unexpected courses %v", view.Courses())
	}
	if view.Loading() {
		t.Fatalf("loading flag must be cleared")
	}
	page := view.Page()
	if page.Total != 3 || page.TotalPages != 1 || len(page.Rows) != 3 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestLoadFailureKeepsPriorState(t *testing.T) {
	store := &fakeStore{profiles: directoryProfiles()}
	view, notes, _ := newTestView(t, store, member("u-alice"))
	if err := view.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	store.listErr = errors.New("network error")
	if err := view.Load(context.Background()); err == nil {
		t.Fatalf("expected load error")
	}
	if len(view.Profiles()) != 3 {
		t.Fatalf("expected prior profiles to be kept, got %d", len(view.Profiles()))
	}
	if view.Loading() {
		t.Fatalf("loading flag must be cleared after failure")
	}
	if !reflect.DeepEqual(notes.titles(), []string{"Error"}) {
		t.Fatalf("expected one error notification, got %v", notes.titles())
	}

	view.SetSearchQuery("marcus")
	if got := view.Page(); got.Total != 1 || got.Rows[0].ID != "p-marcus" {
		t.Fatalf("view should remain interactive, got %+v", got)
	}
}

func TestFirstLoadFailureLeavesEmptyCollection(t *testing.T) {
	view, _, _ := newTestView(t, &fakeStore{listErr: errors.New("down")}, domain.AnonymousViewer())
	_ = view.Load(context.Background())
	page := view.Page()
	if page.Total != 0 || page.TotalPages != 0 || len(page.Rows) != 0 {
		t.Fatalf("expected empty no-results page, got %+v", page)
	}
}

func TestFilterChangesResetPage(t *testing.T) {
	store := &fakeStore{}
	for i := 0; i < 25; i++ {
		store.profiles = append(store.profiles, &domain.Profile{ID: string(rune('a' + i)), FullName: "Student", Course: "GenAI"})
	}
	view, _, _ := newTestView(t, store, member("x"))
	_ = view.Load(context.Background())

	steps := []func(){
		func() { view.SetSearchQuery("student") },
		func() { view.SetCourseFilter("GenAI") },
		func() { view.SetStatusFilter(domain.StatusOffline) },
	}
	for i, change := range steps {
		if !view.GoToPage(3) {
			t.Fatalf("step %d: expected page 3 to be selectable", i)
		}
		change()
		if view.CurrentPage() != 1 {
			t.Fatalf("step %d: expected page reset to 1, got %d", i, view.CurrentPage())
		}
	}
}

func TestPageNavigationBounds(t *testing.T) {
	store := &fakeStore{}
	for i := 0; i < 23; i++ {
		store.profiles = append(store.profiles, &domain.Profile{ID: string(rune('A' + i))})
	}
	view, _, _ := newTestView(t, store, member("x"))
	_ = view.Load(context.Background())

	view.PrevPage()
	if view.CurrentPage() != 1 {
		t.Fatalf("previous must be a no-op at page 1")
	}
	view.NextPage()
	view.NextPage()
	view.NextPage()
	if view.CurrentPage() != 3 {
		t.Fatalf("next must stop at the last page, got %d", view.CurrentPage())
	}
	if len(view.Page().Rows) != 3 {
		t.Fatalf("expected 3 rows on the last page")
	}
	if view.GoToPage(0) || view.GoToPage(4) {
		t.Fatalf("pages outside [1,3] must be rejected")
	}
	if !view.GoToPage(2) || view.CurrentPage() != 2 {
		t.Fatalf("expected direct selection of page 2")
	}
}

func TestRowsRedactEmail(t *testing.T) {
	view, _, _ := newTestView(t, &fakeStore{profiles: directoryProfiles()}, member("u-alice"))
	_ = view.Load(context.Background())

	rows := view.Page().Rows
	if rows[0].Email != "alice@uni.edu" || !rows[0].EmailVisible || !rows[0].CanEdit {
		t.Fatalf("owner should see own email and edit, got %+v", rows[0])
	}
	if rows[1].Email != RedactedEmail || rows[1].EmailVisible || rows[1].CanEdit {
		t.Fatalf("other profiles must be redacted, got %+v", rows[1])
	}
	if rows[0].MoreInterests != 1 || len(rows[0].InterestPreview) != 2 {
		t.Fatalf("expected two-interest preview, got %+v", rows[0])
	}
	if rows[2].StatusText != "Offline" || rows[2].StatusClass != "status-offline" {
		t.Fatalf("unknown status must render offline, got %+v", rows[2])
	}
	if rows[2].LastActive != "Never" {
		t.Fatalf("expected Never, got %s", rows[2].LastActive)
	}
}

func TestViewDetail(t *testing.T) {
	admin := domain.Viewer{AccountID: "u-admin", Role: domain.RoleAdmin}
	view, _, session := newTestView(t, &fakeStore{profiles: directoryProfiles()}, admin)
	_ = view.Load(context.Background())

	detail, err := view.ViewDetail("p-marcus")
	if err != nil {
		t.Fatalf("view detail: %v", err)
	}
	if detail.Email != "marcus@uni.edu" {
		t.Fatalf("admin should see email, got %s", detail.Email)
	}
	if view.OpenDetail() == nil {
		t.Fatalf("expected detail to be open")
	}
	view.CloseDetail()
	if view.OpenDetail() != nil {
		t.Fatalf("expected detail to be closed")
	}

	session.set(domain.AnonymousViewer())
	detail, _ = view.ViewDetail("p-marcus")
	if detail.Email != RedactedEmail {
		t.Fatalf("anonymous viewer must see placeholder, got %s", detail.Email)
	}

	if _, err := view.ViewDetail("missing"); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestEditProfileDenied(t *testing.T) {
	view, notes, _ := newTestView(t, &fakeStore{profiles: directoryProfiles()}, member("u-alice"))
	_ = view.Load(context.Background())

	form, err := view.EditProfile("p-marcus")
	if !errors.Is(err, domain.ErrAccessDenied) || form != nil {
		t.Fatalf("expected denial, got form=%v err=%v", form, err)
	}
	if view.EditForm() != nil {
		t.Fatalf("no form may open on denial")
	}
	if !reflect.DeepEqual(notes.titles(), []string{"Access denied"}) {
		t.Fatalf("expected access denied notification, got %v", notes.titles())
	}
}

func TestEditAndSave(t *testing.T) {
	store := &fakeStore{profiles: directoryProfiles()}
	var hooked *domain.Profile
	hook := func(ctx context.Context, p *domain.Profile, viewer domain.Viewer) { hooked = p }
	view, notes, _ := newTestView(t, store, member("u-alice"), WithUpdateHook(hook))
	_ = view.Load(context.Background())

	form, err := view.EditProfile("p-alice")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if form.Interests != "React, ML, Go" || form.Status != "available" {
		t.Fatalf("unexpected prefilled form %+v", form)
	}

	form.Interests = "math, , algebra,math"
	form.Status = "busy"
	group := 2
	form.GroupNumber = &group
	if err := view.SaveEdit(context.Background(), *form); err != nil {
		t.Fatalf("save: %v", err)
	}

	saved := store.updates["p-alice"]
	if !reflect.DeepEqual(saved.Interests, []string{"math", "algebra", "math"}) {
		t.Fatalf("expected interests without dedup, got %v", saved.Interests)
	}
	if saved.Status != domain.StatusBusy || saved.GroupNumber == nil || *saved.GroupNumber != 2 {
		t.Fatalf("unexpected saved fields %+v", saved)
	}
	if !saved.LastActive.Equal(fixedNow) {
		t.Fatalf("expected last_active stamp")
	}
	if view.EditForm() != nil {
		t.Fatalf("form must close after save")
	}
	if store.calls != 2 {
		t.Fatalf("expected reload after save, got %d list calls", store.calls)
	}
	if got := view.Page().Rows[0].Status; got != "busy" {
		t.Fatalf("expected reloaded status busy, got %s", got)
	}
	if !reflect.DeepEqual(notes.titles(), []string{"Success"}) {
		t.Fatalf("expected success notification, got %v", notes.titles())
	}
	if hooked == nil || hooked.ID != "p-alice" || hooked.Status != "busy" {
		t.Fatalf("expected update hook with edited profile, got %+v", hooked)
	}
}

func TestSaveFailureKeepsForm(t *testing.T) {
	store := &fakeStore{profiles: directoryProfiles()}
	admin := domain.Viewer{AccountID: "u-admin", Role: domain.RoleAdmin}
	view, notes, _ := newTestView(t, store, admin)
	_ = view.Load(context.Background())

	form, err := view.EditProfile("p-sarah")
	if err != nil {
		t.Fatalf("admin edit: %v", err)
	}
	form.FullName = "Sarah W."
	store.saveErr = errors.New("rls rejected")

	if err := view.SaveEdit(context.Background(), *form); err == nil {
		t.Fatalf("expected save error")
	}
	open := view.EditForm()
	if open == nil || open.FullName != "Sarah W." {
		t.Fatalf("form must stay open with entered values, got %+v", open)
	}
	if store.calls != 1 {
		t.Fatalf("no reload expected on failure")
	}
	if !reflect.DeepEqual(notes.titles(), []string{"Error"}) {
		t.Fatalf("expected error notification, got %v", notes.titles())
	}

	view.CancelEdit()
	if view.EditForm() != nil {
		t.Fatalf("cancel must close the form")
	}
}

func TestSaveRejectsInvalidStatus(t *testing.T) {
	store := &fakeStore{profiles: directoryProfiles()}
	view, _, _ := newTestView(t, store, member("u-alice"))
	_ = view.Load(context.Background())

	form, _ := view.EditProfile("p-alice")
	form.Status = "pending"
	if err := view.SaveEdit(context.Background(), *form); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if len(store.updates) != 0 {
		t.Fatalf("invalid form must not reach the store")
	}
	if view.EditForm() == nil {
		t.Fatalf("form must stay open")
	}
}

func TestSaveWithoutOpenForm(t *testing.T) {
	view, _, _ := newTestView(t, &fakeStore{profiles: directoryProfiles()}, member("u-alice"))
	_ = view.Load(context.Background())
	if err := view.SaveEdit(context.Background(), EditForm{ProfileID: "p-alice"}); !errors.Is(err, domain.ErrNoEditOpen) {
		t.Fatalf("expected ErrNoEditOpen, got %v", err)
	}
}

func TestSaveAfterSignOutIsDenied(t *testing.T) {
	store := &fakeStore{profiles: directoryProfiles()}
	view, _, session := newTestView(t, store, member("u-alice"))
	_ = view.Load(context.Background())

	form, _ := view.EditProfile("p-alice")
	session.set(domain.AnonymousViewer())
	if err := view.SaveEdit(context.Background(), *form); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestLatestLoadWins(t *testing.T) {
	store := &fakeStore{profiles: directoryProfiles()}
	release := make(chan struct{})
	started := make(chan struct{})
	store.listHook = func(call int) {
		if call == 1 {
			close(started)
			<-release
		}
	}
	view, _, _ := newTestView(t, store, member("u-alice"))

	done := make(chan error)
	go func() { done <- view.Load(context.Background()) }()
	<-started

	if !view.Loading() {
		t.Fatalf("expected loading while a request is outstanding")
	}

	store.mu.Lock()
	store.profiles = store.profiles[:1]
	store.mu.Unlock()
	if err := view.Load(context.Background()); err != nil {
		t.Fatalf("second load: %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first load: %v", err)
	}
	if n := len(view.Profiles()); n != 1 {
		t.Fatalf("stale response overwrote newer data: %d profiles", n)
	}
	if view.Loading() {
		t.Fatalf("loading must clear once all requests finished")
	}
}

func TestSupersededLoadFailureIsSilent(t *testing.T) {
	store := &fakeStore{
		profiles: directoryProfiles(),
		callErrs: map[int]error{1: errors.New("connection reset")},
	}
	release := make(chan struct{})
	started := make(chan struct{})
	store.listHook = func(call int) {
		if call == 1 {
			close(started)
			<-release
		}
	}
	view, notes, _ := newTestView(t, store, member("u-alice"))

	done := make(chan error)
	go func() { done <- view.Load(context.Background()) }()
	<-started

	if err := view.Load(context.Background()); err != nil {
		t.Fatalf("second load: %v", err)
	}

	close(release)
	if err := <-done; err == nil {
		t.Fatalf("first load must still report its own failure")
	}
	if n := len(view.Profiles()); n != 3 {
		t.Fatalf("newer data must survive an older failure, got %d profiles", n)
	}
	if titles := notes.titles(); len(titles) != 0 {
		t.Fatalf("superseded failure must not notify, got %v", titles)
	}
}

func TestCloseDuringSaveReloadSkipsSuccess(t *testing.T) {
	store := &fakeStore{profiles: directoryProfiles()}
	hooked := false
	hook := func(ctx context.Context, p *domain.Profile, viewer domain.Viewer) { hooked = true }
	view, notes, _ := newTestView(t, store, member("u-alice"), WithUpdateHook(hook))
	_ = view.Load(context.Background())

	store.listHook = func(call int) {
		if call == 2 {
			view.Close()
		}
	}

	form, err := view.EditProfile("p-alice")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	form.Status = "busy"
	if err := view.SaveEdit(context.Background(), *form); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, ok := store.updates["p-alice"]; !ok {
		t.Fatalf("the write itself must still go through")
	}
	if titles := notes.titles(); len(titles) != 0 {
		t.Fatalf("no notifications after close, got %v", titles)
	}
	if hooked {
		t.Fatalf("update hook must not run after close")
	}
}

func TestCloseDiscardsLateResults(t *testing.T) {
	store := &fakeStore{profiles: directoryProfiles(), listErr: nil}
	release := make(chan struct{})
	started := make(chan struct{})
	store.listHook = func(call int) {
		close(started)
		<-release
	}
	view, notes, session := newTestView(t, store, member("u-alice"))

	done := make(chan error)
	go func() { done <- view.Load(context.Background()) }()
	<-started
	view.Close()

	store.mu.Lock()
	store.listErr = errors.New("late failure")
	store.mu.Unlock()
	close(release)
	<-done

	if len(view.Profiles()) != 0 {
		t.Fatalf("no state may change after close")
	}
	if len(notes.titles()) != 0 {
		t.Fatalf("no notifications after close, got %v", notes.titles())
	}

	session.set(domain.Viewer{AccountID: "u-admin", Role: domain.RoleAdmin})
	if view.Viewer().IsAdmin() {
		t.Fatalf("closed view must not follow session changes")
	}
	if err := view.Load(context.Background()); !errors.Is(err, domain.ErrViewClosed) {
		t.Fatalf("expected ErrViewClosed, got %v", err)
	}
}

func TestEditFormInteractiveAdd(t *testing.T) {
	form := EditForm{Interests: "math, algebra"}
	if form.AddInterest("math") {
		t.Fatalf("duplicate must be rejected")
	}
	if !form.AddInterest(" physics ") {
		t.Fatalf("expected physics to be added")
	}
	if form.Interests != "math, algebra, physics" {
		t.Fatalf("unexpected interests %q", form.Interests)
	}
	form.RemoveInterest("algebra")
	if form.Interests != "math, physics" {
		t.Fatalf("unexpected interests after remove %q", form.Interests)
	}
}

func TestEditFormRejectsNonPositiveGroup(t *testing.T) {
	zero := 0
	form := EditForm{Status: "available", GroupNumber: &zero}
	if _, err := form.Fields(fixedNow); !errors.Is(err, domain.ErrInvalidGroup) {
		t.Fatalf("expected ErrInvalidGroup, got %v", err)
	}
}
