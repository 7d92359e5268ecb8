package font

import "strings"

// lineEnd terminates every record's embed code in the aggregate.
const lineEnd = "\n"

// EmbedCode returns the markup r contributes to a page head, or "" when the
// active embed field is empty. Bare code is wrapped in a tag matching the
// source: script for font services, style for self-hosted fonts.
//
// The tag check runs on a copy with spaces removed, while the wrap uses the
// original text.
func EmbedCode(r *Record) string {
	if r == nil {
		return ""
	}

	var embed, openTag, closeTag string
	switch r.SourceType() {
	case SourceFontService:
		embed = strings.TrimSpace(r.EmbedCodeFontService)
		openTag, closeTag = "<script>", "</script>"
	case SourceSelfHosted:
		embed = strings.TrimSpace(r.EmbedCodeSelfHosted)
		openTag, closeTag = `<style type="text/css">`, "</style>"
	default:
		return ""
	}
	if embed == "" {
		return ""
	}

	if !hasTags(embed) {
		embed = openTag + embed + closeTag
	}
	return embed + lineEnd
}

func hasTags(code string) bool {
	compact := strings.ReplaceAll(code, " ", "")
	return strings.Contains(compact, "</script>") ||
		strings.Contains(compact, "</style>") ||
		strings.Contains(compact, "<link")
}
