package font

import (
	"context"
	"io"
	"strings"

	"go.uber.org/zap"
)

// Store is the read side of the record store.
type Store interface {
	// Find returns the records matching q in q's order.
	Find(ctx context.Context, q Query) ([]*Record, error)
	// Get returns a single record of any status.
	Get(ctx context.Context, id int) (*Record, error)
}

// Order fields understood by stores.
const (
	OrderMenuOrder = "menu_order"
	OrderDate      = "created_at"
	OrderTitle     = "title"
	OrderID        = "id"
)

// Order is one sort key.
type Order struct {
	Field string
	Desc  bool
}

// Query selects records from a Store. Zero fields mean "no constraint",
// except Limit where any value <= 0 means unlimited.
type Query struct {
	Kind     Kind
	Statuses []Status
	AuthorID int
	OrderBy  []Order
	Limit    int
}

// DefaultQuery lists every published font, manual order first, newest first.
func DefaultQuery() Query {
	return Query{
		Kind:     KindFont,
		Statuses: []Status{StatusPublish},
		OrderBy: []Order{
			{Field: OrderMenuOrder, Desc: true},
			{Field: OrderDate, Desc: true},
		},
		Limit: -1,
	}
}

// Merge returns q with every non-zero field of over applied.
func (q Query) Merge(over Query) Query {
	if over.Kind != "" {
		q.Kind = over.Kind
	}
	if len(over.Statuses) > 0 {
		q.Statuses = over.Statuses
	}
	if over.AuthorID != 0 {
		q.AuthorID = over.AuthorID
	}
	if len(over.OrderBy) > 0 {
		q.OrderBy = over.OrderBy
	}
	if over.Limit != 0 {
		q.Limit = over.Limit
	}
	return q
}

// Resolved pairs a record with its descriptor.
type Resolved struct {
	Record     *Record
	Descriptor Descriptor
}

// Service lists published fonts and derives the outputs built on them.
// It keeps no state between calls; every method reads the store afresh.
type Service struct {
	store Store
	hooks *Hooks
	log   *zap.Logger
}

// NewService wires a Service. hooks and log may be nil.
func NewService(store Store, hooks *Hooks, log *zap.Logger) *Service {
	if hooks == nil {
		hooks = &Hooks{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, hooks: hooks, log: log}
}

// Hooks exposes the service's extension points.
func (s *Service) Hooks() *Hooks {
	return s.hooks
}

// PublishedFonts returns published fonts in store order. args is merged over
// DefaultQuery before the QueryArgs hook runs. A failing store yields nil.
func (s *Service) PublishedFonts(ctx context.Context, args Query) []*Record {
	q := s.hooks.QueryArgs.Apply(DefaultQuery().Merge(args))

	records, err := s.store.Find(ctx, q)
	if err != nil {
		s.log.Warn("Failed to query fonts", zap.Error(err))
		records = nil
	}
	return s.hooks.Fonts.Apply(records)
}

// AllEmbedCode concatenates the embed code of every published font.
func (s *Service) AllEmbedCode(ctx context.Context) string {
	var b strings.Builder
	for _, r := range s.PublishedFonts(ctx, Query{}) {
		b.WriteString(EmbedCode(r))
	}
	return b.String()
}

// FrontEmbedCode is AllEmbedCode for public page heads, or "" when the
// FrontEmbed hook turns injection off.
func (s *Service) FrontEmbedCode(ctx context.Context) string {
	if !s.hooks.FrontEmbed.Apply(true) {
		return ""
	}
	return s.AllEmbedCode(ctx)
}

// AdminEmbedCode is AllEmbedCode for the admin edit screen, or "" when the
// AdminEmbed hook turns injection off.
func (s *Service) AdminEmbedCode(ctx context.Context) string {
	if !s.hooks.AdminEmbed.Apply(true) {
		return ""
	}
	return s.AllEmbedCode(ctx)
}

// Resolve fetches the record with the given id and resolves it. Records that
// are missing or unpublished resolve to nothing.
func (s *Service) Resolve(ctx context.Context, id int) (Descriptor, bool) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		s.log.Debug("Failed to load font", zap.Int("id", id), zap.Error(err))
		return Descriptor{}, false
	}
	if !r.Published() {
		return Descriptor{}, false
	}
	return Resolve(r)
}

// ResolvedFonts resolves every published font, dropping those without a
// usable descriptor.
func (s *Service) ResolvedFonts(ctx context.Context) []Resolved {
	var out []Resolved
	for _, r := range s.PublishedFonts(ctx, Query{}) {
		d, ok := Resolve(r)
		if !ok {
			continue
		}
		out = append(out, Resolved{Record: r, Descriptor: d})
	}
	return out
}

// FontOptions fires BeforeFontOptions on behalf of a typography picker whose
// current family is active.
func (s *Service) FontOptions(ctx context.Context, w io.Writer, active string) {
	s.hooks.BeforeFontOptions.Do(OptionsRequest{Ctx: ctx, W: w, Active: active})
}

// ThirdPartyFonts collects the fonts contributed through the ThirdPartyFonts
// hook together with the label they are grouped under.
func (s *Service) ThirdPartyFonts(ctx context.Context) (string, FontMap) {
	req := s.hooks.ThirdPartyFonts.Apply(FontMapRequest{Ctx: ctx, Fonts: FontMap{}})
	return s.hooks.ThirdPartyFontsLabel.Apply(""), req.Fonts
}
