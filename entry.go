package pkgcat

import (
	"net/url"
	"sort"
	"strings"
)

// ValidationState is the reachability classification of an entry's link.
type ValidationState string

// Validation states.
const (
	StateUnchecked   ValidationState = "UNCHECKED"
	StateReachable   ValidationState = "REACHABLE"
	StateUnreachable ValidationState = "UNREACHABLE"
	StateRedirected  ValidationState = "REDIRECTED"
	StateAmbiguous   ValidationState = "AMBIGUOUS"
)

// NeedsAttention reports whether the state calls for maintainer triage.
func (s ValidationState) NeedsAttention() bool {
	return s == StateUnreachable || s == StateAmbiguous
}

// RelationKind describes how two entries are related.
type RelationKind string

// Relation kinds, strongest first.
const (
	RelationDuplicate RelationKind = "DUPLICATE"
	RelationFork      RelationKind = "FORK"
	RelationCompanion RelationKind = "COMPANION"
)

// Rank orders relation kinds from strongest (0) to weakest.
func (k RelationKind) Rank() int {
	switch k {
	case RelationDuplicate:
		return 0
	case RelationFork:
		return 1
	case RelationCompanion:
		return 2
	}
	return 3
}

// Relation is one edge from an entry to another entry.
type Relation struct {
	ID   string       `json:"id"`
	Kind RelationKind `json:"kind"`
}

// Entry represents one catalog record describing a single project.
type Entry struct {
	ID             string          `json:"id"`
	Position       int             `json:"position"`
	Name           string          `json:"name"`
	PrimaryURL     string          `json:"primaryUrl"`
	SecondaryURLs  []string        `json:"secondaryUrls,omitempty"`
	Description    string          `json:"description,omitempty"`
	Authors        []string        `json:"authors,omitempty"`
	Category       string          `json:"category"`
	SourceCategory string          `json:"sourceCategory,omitempty"`
	Tags           []string        `json:"tags,omitempty"`
	State          ValidationState `json:"validationState"`
	RedirectURL    string          `json:"redirectUrl,omitempty"`
	Related        []Relation      `json:"relatedIds,omitempty"`

	// Key is the normalized host+path used for identity and duplicate detection.
	Key string `json:"key"`

	// Ref points back at the raw record (e.g. "README.md:42").
	Ref string `json:"ref,omitempty"`
}

// Validate returns an error if the entry contains invalid fields.
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return Errorf(EINVALID, "entry name required")
	}
	if e.PrimaryURL == "" {
		return Errorf(EINVALID, "entry primary URL required")
	}
	u, err := url.Parse(e.PrimaryURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return Errorf(EINVALID, "entry primary URL %q must be absolute", e.PrimaryURL)
	}
	for _, r := range e.Related {
		if r.ID == e.ID {
			return Errorf(EINVALID, "entry %s relates to itself", e.ID)
		}
	}
	return nil
}

// RelationTo returns the relation kind to id, if any.
func (e *Entry) RelationTo(id string) (RelationKind, bool) {
	for _, r := range e.Related {
		if r.ID == id {
			return r.Kind, true
		}
	}
	return "", false
}

// HasTag reports whether the entry carries tag.
func (e *Entry) HasTag(tag string) bool {
	i := sort.SearchStrings(e.Tags, tag)
	return i < len(e.Tags) && e.Tags[i] == tag
}

// AddTag inserts tag keeping Tags sorted and free of duplicates.
func (e *Entry) AddTag(tag string) {
	i := sort.SearchStrings(e.Tags, tag)
	if i < len(e.Tags) && e.Tags[i] == tag {
		return
	}
	e.Tags = append(e.Tags, "")
	copy(e.Tags[i+1:], e.Tags[i:])
	e.Tags[i] = tag
}

// RawRecord is one unparsed entry line together with its category heading.
type RawRecord struct {
	Category string
	Text     string
	Ref      string
}

// RawSection is a category heading and its ordered raw records.
type RawSection struct {
	Heading string
	Records []RawRecord
}

// TOCEntry is a table-of-contents line pointing at a category section.
type TOCEntry struct {
	Title  string
	Anchor string
}
