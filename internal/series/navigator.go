package series

import "path"

// Link is the rendering of a reference to one part.
type Link struct {
	ID         int    `json:"id"`
	Text       string `json:"text"`
	Href       string `json:"href,omitempty"`
	Navigable  bool   `json:"navigable"`
	ComingSoon bool   `json:"coming_soon,omitempty"`
}

// Label is the display text, annotated for the next announced part.
func (l Link) Label() string {
	if l.ComingSoon {
		return l.Text + " (coming soon)"
	}
	return l.Text
}

// TOCEntry is one row of a series table of contents.
type TOCEntry struct {
	Link
	Current bool `json:"current,omitempty"`
	New     bool `json:"new,omitempty"`
}

// Navigator answers link and table-of-contents queries for one series.
// Parts with an id up to the boundary are published; later parts are only
// announced.
type Navigator struct {
	dir      string
	title    string
	desc     string
	boundary int
	baseURL  string
	parts    []Part
	checksum string
}

// Dir is the series directory relative to the content root.
func (n *Navigator) Dir() string { return n.dir }

// Checksum is the digest of the series definition file, empty when the
// navigator was not loaded from one.
func (n *Navigator) Checksum() string { return n.checksum }

// Title is the series title.
func (n *Navigator) Title() string { return n.title }

// Description is the optional series blurb.
func (n *Navigator) Description() string { return n.desc }

// Boundary is the id of the last published part.
func (n *Navigator) Boundary() int { return n.boundary }

// BaseURL is the URL prefix of every part.
func (n *Navigator) BaseURL() string { return n.baseURL }

// Parts returns every part in id order.
func (n *Navigator) Parts() []Part {
	out := make([]Part, len(n.parts))
	copy(out, n.parts)
	return out
}

// Part returns the part with the given id.
func (n *Navigator) Part(id int) (Part, bool) {
	if id < 0 || id >= len(n.parts) {
		return Part{}, false
	}
	return n.parts[id], true
}

// Contains reports whether postID is one of the series parts.
func (n *Navigator) Contains(postID string) (Part, bool) {
	for _, p := range n.parts {
		if p.PostID == postID {
			return p, true
		}
	}
	return Part{}, false
}

// Link returns the reference to part id. Unknown ids report false and render
// nothing.
func (n *Navigator) Link(id int) (Link, bool) {
	part, ok := n.Part(id)
	if !ok {
		return Link{}, false
	}
	l := Link{ID: id, Text: part.Meta.Subtitle}
	if id <= n.boundary {
		l.Navigable = true
		l.Href = path.Join(n.baseURL, part.Path)
		return l, true
	}
	l.ComingSoon = id == n.boundary+1
	return l, true
}

// LinkWithHash is Link with a fragment appended to navigable hrefs.
func (n *Navigator) LinkWithHash(id int, hash string) (Link, bool) {
	l, ok := n.Link(id)
	if ok && l.Navigable && hash != "" {
		l.Href += "#" + hash
	}
	return l, ok
}

// IsNew reports whether part id is the most recently published one.
func (n *Navigator) IsNew(id int) bool {
	_, ok := n.Part(id)
	return ok && id == n.boundary
}

// TOC lists every part. The current part is marked and not linked.
func (n *Navigator) TOC(current int) []TOCEntry {
	out := make([]TOCEntry, 0, len(n.parts))
	for _, p := range n.parts {
		l, _ := n.Link(p.ID)
		e := TOCEntry{Link: l, New: n.IsNew(p.ID)}
		if p.ID == current {
			e.Current = true
			e.Href = ""
		}
		out = append(out, e)
	}
	return out
}
