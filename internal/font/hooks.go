package font

import (
	"context"
	"io"

	"fonto/internal/hook"
)

// OptionsRequest is passed to BeforeFontOptions when a typography picker is
// rendering its font <select>.
type OptionsRequest struct {
	Ctx context.Context
	// W receives additional <option>/<optgroup> markup.
	W io.Writer
	// Active is the family currently selected in the picker.
	Active string
}

// FontMap maps a font family to its descriptor.
type FontMap map[string]Descriptor

// FontMapRequest carries the map of third-party fonts being collected.
type FontMapRequest struct {
	Ctx   context.Context
	Fonts FontMap
}

// Hooks are the extension points other components can register on.
type Hooks struct {
	// QueryArgs can rewrite the query used to list published fonts.
	QueryArgs hook.Filter[Query]
	// Fonts can rewrite the list returned by the query.
	Fonts hook.Filter[[]*Record]

	// FrontEmbed, AdminEmbed and EditorCSS gate their injection sites.
	// Each starts from true.
	FrontEmbed hook.Filter[bool]
	AdminEmbed hook.Filter[bool]
	EditorCSS  hook.Filter[bool]

	// BeforeFontOptions fires while a typography picker renders its options.
	BeforeFontOptions hook.Action[OptionsRequest]
	// ThirdPartyFonts collects fonts contributed by other components.
	ThirdPartyFonts hook.Filter[FontMapRequest]
	// ThirdPartyFontsLabel names the group ThirdPartyFonts are shown under.
	ThirdPartyFontsLabel hook.Filter[string]
}
