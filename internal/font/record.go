package font

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies the type of content item held by the record store.
type Kind string

const KindFont Kind = "font"

// Status is the publishing state of a record.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusPublish Status = "publish"
	StatusPrivate Status = "private"
	StatusTrash   Status = "trash"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublish, StatusPrivate, StatusTrash:
		return true
	}
	return false
}

// SourceType tells where the font is loaded from.
type SourceType string

const (
	SourceFontService SourceType = "font_service"
	SourceSelfHosted  SourceType = "self_hosted"
)

// NamingScheme tells how the font's weights and styles are named.
type NamingScheme string

const (
	// NamingGrouped uses one family name; weights and styles are selected via CSS.
	NamingGrouped NamingScheme = "grouped"
	// NamingIndividual uses a distinct family name per weight/style.
	NamingIndividual NamingScheme = "individual"
)

// Record is one administrator-defined font.
type Record struct {
	ID        int       `json:"id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Status    Status    `json:"status"`
	MenuOrder int       `json:"menu_order"`
	AuthorID  int       `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Content is a Markdown description shown on the font's preview page.
	Content string `json:"content"`

	Source               SourceType `json:"source_type"`
	EmbedCodeFontService string     `json:"embed_code_font_service"`
	EmbedCodeSelfHosted  string     `json:"embed_code_self_hosted"`
	URLPath              string     `json:"url_path"`
	FontFiles            []string   `json:"font_files"`

	Naming         NamingScheme `json:"naming_scheme"`
	FontFamilyName string       `json:"font_family_name"`
	Variations     []string     `json:"variations"`
	// Individual holds per-variation family names keyed by variation token.
	Individual map[string]string `json:"individual"`
}

// SourceType returns the record's source, defaulting to SourceFontService.
// Unknown values are returned as is.
func (r *Record) SourceType() SourceType {
	if r.Source == "" {
		return SourceFontService
	}
	return r.Source
}

// NamingScheme returns the record's naming scheme, defaulting to NamingGrouped.
// Unknown values are returned as is.
func (r *Record) NamingScheme() NamingScheme {
	if r.Naming == "" {
		return NamingGrouped
	}
	return r.Naming
}

// Published reports whether the record takes part in front-end output.
func (r *Record) Published() bool {
	return r.Status == StatusPublish
}

// IndividualName returns the trimmed family name stored for v.
func (r *Record) IndividualName(v Variation) string {
	if r.Individual == nil {
		return ""
	}
	return strings.TrimSpace(r.Individual[v.Token()])
}

// Validate checks the fields an administrator controls.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if r.Status != "" && !r.Status.Valid() {
		return fmt.Errorf("unknown status %q", r.Status)
	}
	switch r.Source {
	case "", SourceFontService, SourceSelfHosted:
	default:
		return fmt.Errorf("unknown source type %q", r.Source)
	}
	switch r.Naming {
	case "", NamingGrouped, NamingIndividual:
	default:
		return fmt.Errorf("unknown naming scheme %q", r.Naming)
	}
	for _, token := range r.Variations {
		if _, ok := LookupVariation(token); !ok {
			return fmt.Errorf("unknown variation %q", token)
		}
	}
	for token := range r.Individual {
		if _, ok := LookupVariation(token); !ok {
			return fmt.Errorf("unknown variation %q", token)
		}
	}
	return nil
}
