package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusBusy      Status = "busy"
	StatusOffline   Status = "offline"
)

// ParseStatus accepts only the three stored status values.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusAvailable, StatusBusy, StatusOffline:
		return Status(s), nil
	}
	return "", ErrInvalidStatus
}

type Profile struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	Course      string     `json:"course"`
	Year        string     `json:"year"`
	Description string     `json:"description"`
	Interests   []string   `json:"interests"`
	Status      string     `json:"status"`
	GroupNumber *int       `json:"group_number"`
	LastActive  *time.Time `json:"last_active"`
	AvatarURL   string     `json:"avatar_url"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// EffectiveStatus maps absent or unrecognized stored values to offline.
func (p *Profile) EffectiveStatus() Status {
	switch Status(p.Status) {
	case StatusAvailable:
		return StatusAvailable
	case StatusBusy:
		return StatusBusy
	default:
		return StatusOffline
	}
}

func (p *Profile) StatusText() string {
	switch p.EffectiveStatus() {
	case StatusAvailable:
		return "Available"
	case StatusBusy:
		return "Busy"
	default:
		return "Offline"
	}
}

func (p *Profile) StatusClass() string {
	return "status-" + string(p.EffectiveStatus())
}

// LastActiveText renders last_active relative to now, or "Never".
func (p *Profile) LastActiveText(now time.Time) string {
	if p.LastActive == nil {
		return "Never"
	}
	d := now.Sub(*p.LastActive)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	default:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// Initials is the avatar fallback: first letter of every word of the name.
func (p *Profile) Initials() string {
	var sb strings.Builder
	for _, word := range strings.Fields(p.FullName) {
		r, _ := utf8.DecodeRuneInString(word)
		sb.WriteRune(r)
	}
	return strings.ToUpper(sb.String())
}

// AddInterest appends a trimmed tag unless it is empty or already present
// (exact, case-sensitive match).
func (p *Profile) AddInterest(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	for _, existing := range p.Interests {
		if existing == tag {
			return false
		}
	}
	p.Interests = append(p.Interests, tag)
	return true
}

func (p *Profile) RemoveInterest(tag string) {
	kept := p.Interests[:0]
	for _, existing := range p.Interests {
		if existing != tag {
			kept = append(kept, existing)
		}
	}
	p.Interests = kept
}

// ParseInterests splits a comma-delimited list, trimming tokens and dropping
// empty ones. Duplicates are kept.
func ParseInterests(s string) []string {
	interests := []string{}
	for _, token := range strings.Split(s, ",") {
		if token = strings.TrimSpace(token); token != "" {
			interests = append(interests, token)
		}
	}
	return interests
}

func FormatInterests(interests []string) string {
	return strings.Join(interests, ", ")
}

// ProfileFields is the full set of fields replaced by an edit.
type ProfileFields struct {
	FullName    string
	Course      string
	Year        string
	Description string
	Interests   []string
	Status      Status
	GroupNumber *int
	LastActive  time.Time
}
