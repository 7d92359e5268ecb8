package font

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MetaPrefix namespaces every metadata key written by this package.
const MetaPrefix = "fonto_"

// Metadata keys of a font record.
const (
	MetaSource               = MetaPrefix + "font_source"
	MetaEmbedCodeFontService = MetaPrefix + "embed_code_font_service"
	MetaEmbedCodeSelfHosted  = MetaPrefix + "embed_code_self_hosted"
	MetaURLPath              = MetaPrefix + "url_path"
	MetaFontFiles            = MetaPrefix + "font_files"
	MetaNamingScheme         = MetaPrefix + "font_name_style"
	MetaFontFamilyName       = MetaPrefix + "font_family_name"
	MetaVariations           = MetaPrefix + "font_variations"

	individualSuffix = "_individual"
)

// IndividualMetaKey returns the metadata key holding the family name for v.
func IndividualMetaKey(v Variation) string {
	return MetaPrefix + v.Token() + individualSuffix
}

// KindSpec describes how records of a kind map onto metadata.
type KindSpec struct {
	// MetaKeys lists every key the kind reads and writes.
	MetaKeys []string
}

// Allows reports whether key belongs to the kind.
func (s KindSpec) Allows(key string) bool {
	for _, k := range s.MetaKeys {
		if k == key {
			return true
		}
	}
	return false
}

var kinds = map[Kind]KindSpec{
	KindFont: {MetaKeys: fontMetaKeys()},
}

// LookupKind returns the KindSpec registered for k.
func LookupKind(k Kind) (KindSpec, bool) {
	ks, ok := kinds[k]
	return ks, ok
}

func fontMetaKeys() []string {
	keys := []string{
		MetaSource,
		MetaEmbedCodeFontService,
		MetaEmbedCodeSelfHosted,
		MetaURLPath,
		MetaFontFiles,
		MetaNamingScheme,
		MetaFontFamilyName,
		MetaVariations,
	}
	for _, v := range Variations {
		keys = append(keys, IndividualMetaKey(v))
	}
	return keys
}

// Meta flattens the record's typed fields into key/value pairs. Empty values
// are omitted. List values are newline separated.
func (r *Record) Meta() map[string]string {
	m := make(map[string]string)
	put := func(key, value string) {
		if value != "" {
			m[key] = value
		}
	}
	put(MetaSource, string(r.Source))
	put(MetaEmbedCodeFontService, r.EmbedCodeFontService)
	put(MetaEmbedCodeSelfHosted, r.EmbedCodeSelfHosted)
	put(MetaURLPath, r.URLPath)
	put(MetaFontFiles, strings.Join(r.FontFiles, "\n"))
	put(MetaNamingScheme, string(r.Naming))
	put(MetaFontFamilyName, r.FontFamilyName)
	put(MetaVariations, strings.Join(r.Variations, "\n"))
	for _, v := range Variations {
		if r.Individual != nil {
			put(IndividualMetaKey(v), r.Individual[v.Token()])
		}
	}
	return m
}

// MetaKeysSorted returns the keys of m in a stable order.
func MetaKeysSorted(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetMeta assigns one stored key/value pair to the matching typed field.
func (r *Record) SetMeta(key, value string) error {
	switch key {
	case MetaSource:
		r.Source = SourceType(value)
	case MetaEmbedCodeFontService:
		r.EmbedCodeFontService = value
	case MetaEmbedCodeSelfHosted:
		r.EmbedCodeSelfHosted = value
	case MetaURLPath:
		r.URLPath = value
	case MetaFontFiles:
		r.FontFiles = splitList(value)
	case MetaNamingScheme:
		r.Naming = NamingScheme(value)
	case MetaFontFamilyName:
		r.FontFamilyName = value
	case MetaVariations:
		r.Variations = splitList(value)
	default:
		token, ok := individualToken(key)
		if !ok {
			return fmt.Errorf("unknown meta key %q", key)
		}
		if r.Individual == nil {
			r.Individual = make(map[string]string)
		}
		r.Individual[token] = value
	}
	return nil
}

func individualToken(key string) (string, bool) {
	if !strings.HasPrefix(key, MetaPrefix) || !strings.HasSuffix(key, individualSuffix) {
		return "", false
	}
	token := strings.TrimSuffix(strings.TrimPrefix(key, MetaPrefix), individualSuffix)
	if _, ok := LookupVariation(token); !ok {
		return "", false
	}
	return token, true
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, "\n") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ParseID parses a record identifier from a URL parameter.
func ParseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid font id %q", s)
	}
	return id, nil
}
