package directory

import (
	"strings"
	"time"

	"github.com/lisiobuddy/lisiobuddy-backend/internal/domain"
)

// EditForm holds the editable fields of one profile, with interests flattened
// to a comma-delimited string.
type EditForm struct {
	ProfileID   string `json:"profile_id"`
	FullName    string `json:"full_name"`
	Course      string `json:"course"`
	Year        string `json:"year"`
	Description string `json:"description"`
	Interests   string `json:"interests"`
	Status      string `json:"status"`
	GroupNumber *int   `json:"group_number"`
}

func NewEditForm(p *domain.Profile) EditForm {
	form := EditForm{
		ProfileID:   p.ID,
		FullName:    p.FullName,
		Course:      p.Course,
		Year:        p.Year,
		Description: p.Description,
		Interests:   domain.FormatInterests(p.Interests),
		Status:      string(p.EffectiveStatus()),
	}
	if p.GroupNumber != nil {
		n := *p.GroupNumber
		form.GroupNumber = &n
	}
	return form
}

// AddInterest is the interactive add: it refuses blank tags and exact
// duplicates of tags already in the form.
func (f *EditForm) AddInterest(tag string) bool {
	p := domain.Profile{Interests: domain.ParseInterests(f.Interests)}
	if !p.AddInterest(tag) {
		return false
	}
	f.Interests = domain.FormatInterests(p.Interests)
	return true
}

func (f *EditForm) RemoveInterest(tag string) {
	p := domain.Profile{Interests: domain.ParseInterests(f.Interests)}
	p.RemoveInterest(strings.TrimSpace(tag))
	f.Interests = domain.FormatInterests(p.Interests)
}

// Fields converts the form into a full field replacement stamped with now.
func (f EditForm) Fields(now time.Time) (domain.ProfileFields, error) {
	status, err := domain.ParseStatus(f.Status)
	if err != nil {
		return domain.ProfileFields{}, err
	}

	var group *int
	if f.GroupNumber != nil {
		if *f.GroupNumber < 1 {
			return domain.ProfileFields{}, domain.ErrInvalidGroup
		}
		n := *f.GroupNumber
		group = &n
	}

	return domain.ProfileFields{
		FullName:    f.FullName,
		Course:      f.Course,
		Year:        f.Year,
		Description: f.Description,
		Interests:   domain.ParseInterests(f.Interests),
		Status:      status,
		GroupNumber: group,
		LastActive:  now,
	}, nil
}
