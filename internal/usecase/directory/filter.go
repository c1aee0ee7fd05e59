package directory

import (
	"strings"

	"github.com/lisiobuddy/lisiobuddy-backend/internal/domain"
)

const DefaultPageSize = 10

// MatchAll is the sentinel for the course and status filters.
const MatchAll = ""

// Filter keeps profiles matching the search query, course and status, in
// input order. The query is a case-insensitive substring of the name, the
// course or any interest; an empty query matches everything.
func Filter(profiles []*domain.Profile, query, course string, status domain.Status) []*domain.Profile {
	needle := strings.ToLower(query)
	filtered := make([]*domain.Profile, 0, len(profiles))
	for _, p := range profiles {
		if !matchesQuery(p, needle) {
			continue
		}
		if course != MatchAll && p.Course != course {
			continue
		}
		if status != MatchAll && p.EffectiveStatus() != status {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

func matchesQuery(p *domain.Profile, needle string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.FullName), needle) ||
		strings.Contains(strings.ToLower(p.Course), needle) {
		return true
	}
	for _, interest := range p.Interests {
		if strings.Contains(strings.ToLower(interest), needle) {
			return true
		}
	}
	return false
}

func TotalPages(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	return (n + size - 1) / size
}

// Paginate returns the 1-based page and the page count. Pages outside
// [1, totalPages] yield an empty slice.
func Paginate(filtered []*domain.Profile, page, size int) ([]*domain.Profile, int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := TotalPages(len(filtered), size)
	if page < 1 || page > total {
		return []*domain.Profile{}, total
	}
	start := (page - 1) * size
	end := min(start+size, len(filtered))
	return filtered[start:end:end], total
}

// DistinctCourses lists non-empty course values in first-seen order.
func DistinctCourses(profiles []*domain.Profile) []string {
	seen := make(map[string]struct{})
	courses := []string{}
	for _, p := range profiles {
		if p.Course == "" {
			continue
		}
		if _, ok := seen[p.Course]; ok {
			continue
		}
		seen[p.Course] = struct{}{}
		courses = append(courses, p.Course)
	}
	return courses
}
