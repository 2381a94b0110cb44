package models

import "strings"

// Visibility is the publication state of a post.
type Visibility string

// Visibility states.
const (
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private"
	VisibilityDraft    Visibility = "draft"
	VisibilityArchived Visibility = "archived"
)

// Visibilities lists every state in declaration order.
var Visibilities = []Visibility{
	VisibilityPublic,
	VisibilityUnlisted,
	VisibilityPrivate,
	VisibilityDraft,
	VisibilityArchived,
}

// ParseVisibility returns the state named by s. The second result is false
// for empty or unknown values.
func ParseVisibility(s string) (Visibility, bool) {
	v := Visibility(strings.TrimSpace(s))
	if v.Valid() {
		return v, true
	}
	return "", false
}

// Valid reports whether v is one of the declared states.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityUnlisted, VisibilityPrivate, VisibilityDraft, VisibilityArchived:
		return true
	}
	return false
}

// Listed reports whether v appears on the main listing page.
func (v Visibility) Listed(development bool) bool {
	return v == VisibilityPublic || (v == VisibilityDraft && development)
}

// InFeed reports whether v is syndicated.
func (v Visibility) InFeed() bool {
	return v == VisibilityPublic || v == VisibilityUnlisted
}

// Linkable reports whether a post with this state can be opened directly.
func (v Visibility) Linkable(development bool) bool {
	if v == VisibilityDraft {
		return development
	}
	return v.Valid()
}

func (v Visibility) String() string { return string(v) }
