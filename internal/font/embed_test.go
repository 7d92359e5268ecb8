package font

import "testing"

func TestEmbedCode(t *testing.T) {
	tests := []struct {
		name string
		r    *Record
		want string
	}{
		{
			name: "self-hosted bare css is wrapped",
			r:    &Record{Source: SourceSelfHosted, EmbedCodeSelfHosted: "body{color:red}"},
			want: `<style type="text/css">body{color:red}</style>` + "\n",
		},
		{
			name: "self-hosted with style tag passes through",
			r:    &Record{Source: SourceSelfHosted, EmbedCodeSelfHosted: "<style>a{}</style>"},
			want: "<style>a{}</style>\n",
		},
		{
			name: "font service bare js is wrapped",
			r:    &Record{EmbedCodeFontService: "  try{Typekit.load();}catch(e){}  "},
			want: "<script>try{Typekit.load();}catch(e){}</script>\n",
		},
		{
			name: "font service link passes through",
			r:    &Record{Source: SourceFontService, EmbedCodeFontService: `<link rel="stylesheet" href="https://use.typekit.net/x.css">`},
			want: `<link rel="stylesheet" href="https://use.typekit.net/x.css">` + "\n",
		},
		{
			name: "closing tag with spaces still counts",
			r:    &Record{EmbedCodeFontService: "<script>load()</ script>"},
			want: "<script>load()</ script>\n",
		},
		{
			name: "wrap keeps inner spaces",
			r:    &Record{Source: SourceSelfHosted, EmbedCodeSelfHosted: "a { b: c }"},
			want: `<style type="text/css">a { b: c }</style>` + "\n",
		},
		{
			name: "inactive field is ignored",
			r:    &Record{Source: SourceSelfHosted, EmbedCodeFontService: "<script>x</script>"},
			want: "",
		},
		{
			name: "blank embed",
			r:    &Record{EmbedCodeFontService: " \n\t "},
			want: "",
		},
		{
			name: "unknown source",
			r:    &Record{Source: "cdn", EmbedCodeFontService: "x"},
			want: "",
		},
		{
			name: "nil record",
			r:    nil,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EmbedCode(tt.r); got != tt.want {
				t.Errorf("EmbedCode() = %q, want %q", got, tt.want)
			}
		})
	}
}
