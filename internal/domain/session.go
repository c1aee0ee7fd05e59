package domain

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleMember    Role = "member"
	RoleAnonymous Role = "anonymous"
)

// Viewer is the identity the directory renders for. A signed-in viewer whose
// role has not been resolved yet carries RoleAnonymous.
type Viewer struct {
	AccountID string `json:"account_id,omitempty"`
	Role      Role   `json:"role"`
}

func AnonymousViewer() Viewer {
	return Viewer{Role: RoleAnonymous}
}

func (v Viewer) IsAnonymous() bool {
	return v.AccountID == ""
}

func (v Viewer) IsAdmin() bool {
	return v.Role == RoleAdmin
}

func (v Viewer) Owns(p *Profile) bool {
	return v.AccountID != "" && p.UserID == v.AccountID
}

// CanEdit and CanSeeContact share one rule: admins or the owning account.
func (v Viewer) CanEdit(p *Profile) bool {
	return v.IsAdmin() || v.Owns(p)
}

func (v Viewer) CanSeeContact(p *Profile) bool {
	return v.IsAdmin() || v.Owns(p)
}
