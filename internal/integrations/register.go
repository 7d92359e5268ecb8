package integrations

import (
	"fonto/internal/font"

	"go.uber.org/zap"
)

// Register attaches the custom font adapters to svc's typography hooks:
// option rendering for pickers, the third-party font map and its label.
func Register(svc *font.Service, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	hooks := svc.Hooks()

	hooks.BeforeFontOptions.Add(func(req font.OptionsRequest) {
		if err := WriteOptions(req.W, req.Active, svc.ResolvedFonts(req.Ctx)); err != nil {
			log.Warn("Failed to render custom font options", zap.Error(err))
		}
	})

	hooks.ThirdPartyFonts.Add(func(req font.FontMapRequest) font.FontMapRequest {
		req.Fonts = MergeFontMap(req.Fonts, svc.ResolvedFonts(req.Ctx))
		return req
	})

	hooks.ThirdPartyFontsLabel.Add(func(string) string {
		return GroupLabel
	})
}
