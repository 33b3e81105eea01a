package record

import (
	"fmt"
	"strings"
	"time"
)

// Placeholder is the organization shown when a record has none.
const Placeholder = "—"

// Origin tags where a record came from.
type Origin string

const (
	// Remote records come from the directory fetch.
	Remote Origin = "remote"

	// Local records were created on this client.
	Local Origin = "local"
)

// ParseOrigin converts a textual origin into an Origin.
func ParseOrigin(s string) (Origin, error) {
	switch Origin(strings.ToLower(strings.TrimSpace(s))) {
	case Remote:
		return Remote, nil
	case Local:
		return Local, nil
	default:
		return "", fmt.Errorf("unknown origin %q", s)
	}
}

// Record is the canonical user entity.
type Record struct {
	ID           int64      `json:"id" yaml:"id"`
	Name         string     `json:"name" yaml:"name"`
	Email        string     `json:"email" yaml:"email"`
	Organization string     `json:"organization" yaml:"organization"`
	Origin       Origin     `json:"origin" yaml:"origin"`
	CreatedAt    *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// IsLocal reports whether the record was created on this client.
func (r Record) IsLocal() bool {
	return r.Origin == Local
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	if r.CreatedAt != nil {
		t := *r.CreatedAt
		r.CreatedAt = &t
	}
	return r
}

// NewRemote builds a Remote record. A blank organization becomes Placeholder.
func NewRemote(id int64, name, email, organization string) Record {
	return Record{
		ID:           id,
		Name:         name,
		Email:        email,
		Organization: OrPlaceholder(organization),
		Origin:       Remote,
	}
}

// OrPlaceholder returns org, or Placeholder when org is blank.
func OrPlaceholder(org string) string {
	if strings.TrimSpace(org) == "" {
		return Placeholder
	}
	return org
}

// Input is the caller-supplied data for a new Local record.
type Input struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Organization string `json:"organization,omitempty"`
}

// Trimmed returns a copy of in with surrounding whitespace removed from every field.
func (in Input) Trimmed() Input {
	return Input{
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.TrimSpace(in.Email),
		Organization: strings.TrimSpace(in.Organization),
	}
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Name         *string `json:"name,omitempty"`
	Email        *string `json:"email,omitempty"`
	Organization *string `json:"organization,omitempty"`
}

// IsEmpty reports whether the patch carries no keys.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Organization == nil
}

// Trimmed returns a copy of p with surrounding whitespace removed from present keys.
func (p Patch) Trimmed() Patch {
	return Patch{
		Name:         trimPtr(p.Name),
		Email:        trimPtr(p.Email),
		Organization: trimPtr(p.Organization),
	}
}

// Apply merges the present keys of p into r. ID, Origin and CreatedAt are never touched.
func (p Patch) Apply(r Record) Record {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Email != nil {
		r.Email = *p.Email
	}
	if p.Organization != nil {
		r.Organization = *p.Organization
	}
	return r
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
