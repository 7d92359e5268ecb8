package integrations

import "fonto/internal/font"

// MergeFontMap inserts fonts into m keyed by font family. When two fonts
// share a family the one processed later replaces the earlier entry.
// A nil m is allocated.
func MergeFontMap(m font.FontMap, fonts []font.Resolved) font.FontMap {
	if m == nil {
		m = make(font.FontMap, len(fonts))
	}
	for _, rf := range fonts {
		m[rf.Descriptor.FontFamily] = rf.Descriptor
	}
	return m
}
