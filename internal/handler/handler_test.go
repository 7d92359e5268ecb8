package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"fonto/internal/font"
	"fonto/internal/integrations"
	authmw "fonto/internal/middleware"
	"fonto/internal/storage"
	"fonto/internal/store"

	"github.com/google/go-cmp/cmp"
	"github.com/labstack/echo/v4"
)

const (
	testSecret   = "handler-test-secret"
	testUser     = "admin"
	testPassword = "correct horse"
)

type testServer struct {
	e     *echo.Echo
	store *store.Store
	files *storage.FileSystem
	fonts *font.Service
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open("file:" + name + "?mode=memory&cache=shared&_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	hash, err := HashPassword(testPassword)
	if err != nil {
		t.Fatal(err)
	}

	files := storage.NewMemoryFileSystem()
	svc := font.NewService(st, nil, nil)
	integrations.Register(svc, nil)

	h := NewHandler(st, svc, files, AuthSettings{
		AdminUser:         testUser,
		AdminPasswordHash: hash,
		JWTSecret:         testSecret,
		TokenTTL:          time.Hour,
		NonceTTL:          time.Hour,
	}, nil)

	e := echo.New()
	h.Routes(e)

	token, err := authmw.IssueToken(testSecret, testUser, authmw.RoleAdmin, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return &testServer{e: e, store: st, files: files, fonts: svc, token: token}
}

func (s *testServer) do(t *testing.T, method, target string, body io.Reader, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) admin(t *testing.T, method, target string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	header := http.Header{"Authorization": {"Bearer " + s.token}}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(b)
		header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return s.do(t, method, target, body, header)
}

func (s *testServer) create(t *testing.T, r *font.Record) *font.Record {
	t.Helper()
	if err := s.store.Create(context.Background(), r); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return r
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("hash = %q", hash)
	}
	if ok, err := verifyPassword("s3cret", hash); err != nil || !ok {
		t.Errorf("verifyPassword(correct) = %v, %v", ok, err)
	}
	if ok, _ := verifyPassword("wrong", hash); ok {
		t.Error("verifyPassword(wrong) = true")
	}
	if _, err := verifyPassword("x", "$bcrypt$abc"); err == nil {
		t.Error("expected error for foreign hash format")
	}
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	jsonHeader := http.Header{echo.HeaderContentType: {echo.MIMEApplicationJSON}}

	rec := s.do(t, http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"username":"admin","password":"nope"}`), jsonHeader)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d", rec.Code)
	}

	rec = s.do(t, http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"username":"admin","password":"correct horse"}`), jsonHeader)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[struct {
		Token string `json:"token"`
	}](t, rec)

	rec = s.do(t, http.MethodGet, "/api/auth/me", nil, http.Header{"Authorization": {"Bearer " + resp.Token}})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"username":"admin"`) {
		t.Fatalf("me = %d %s", rec.Code, rec.Body.String())
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	for _, target := range []string{"/api/fonts", "/api/fonts/1", "/api/editor/head", "/api/nonce?action=sample_font_url_path"} {
		if rec := s.do(t, http.MethodGet, target, nil, nil); rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s status = %d, want 401", target, rec.Code)
		}
	}
}

func TestFontCRUD(t *testing.T) {
	s := newTestServer(t)

	rec := s.admin(t, http.MethodPost, "/api/fonts", map[string]interface{}{
		"title":            "Proxima Nova",
		"status":           "publish",
		"font_family_name": "proxima-nova",
		"variations":       []string{"400_normal", "700_italic"},
		"font_files":       []string{"fonts/smuggled.ttf"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[font.Record](t, rec)
	if created.ID == 0 || created.AuthorID != adminAuthorID || created.Kind != font.KindFont {
		t.Fatalf("created = %+v", created)
	}
	if len(created.FontFiles) != 0 {
		t.Errorf("font_files accepted from request body: %v", created.FontFiles)
	}

	target := "/api/fonts/" + strconv.Itoa(created.ID)
	rec = s.admin(t, http.MethodPut, target, map[string]interface{}{"menu_order": 3})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = s.admin(t, http.MethodGet, target, nil)
	got := decode[font.Record](t, rec)
	if got.MenuOrder != 3 || got.FontFamilyName != "proxima-nova" {
		t.Errorf("after partial update = %+v", got)
	}
	if diff := cmp.Diff([]string{"400_normal", "700_italic"}, got.Variations); diff != "" {
		t.Errorf("variations mismatch (-want +got):\n%s", diff)
	}

	rec = s.admin(t, http.MethodDelete, target, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec = s.admin(t, http.MethodGet, target, nil); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", rec.Code)
	}
}

func TestUpdateFontKeepsStatusWhenEmpty(t *testing.T) {
	s := newTestServer(t)
	r := s.create(t, &font.Record{Kind: font.KindFont, Title: "Inter", Status: font.StatusPublish})
	target := "/api/fonts/" + strconv.Itoa(r.ID)

	rec := s.admin(t, http.MethodPut, target, map[string]interface{}{"status": "", "title": "Inter Tight"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}

	got, err := s.store.Get(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != font.StatusPublish || got.Title != "Inter Tight" {
		t.Errorf("after update status = %q title = %q, want %q %q", got.Status, got.Title, font.StatusPublish, "Inter Tight")
	}
}

func TestCreateFontValidation(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"missing title", map[string]interface{}{"status": "publish"}},
		{"unknown status", map[string]interface{}{"title": "x", "status": "pending"}},
		{"unknown variation", map[string]interface{}{"title": "x", "variations": []string{"450_normal"}}},
		{"unknown source", map[string]interface{}{"title": "x", "source_type": "cdn"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := s.admin(t, http.MethodPost, "/api/fonts", tt.payload); rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestListFontsFilters(t *testing.T) {
	s := newTestServer(t)
	s.create(t, &font.Record{Title: "A", Status: font.StatusPublish, AuthorID: 1})
	s.create(t, &font.Record{Title: "B", Status: font.StatusDraft, AuthorID: 2})
	s.create(t, &font.Record{Title: "C", Status: font.StatusPublish, AuthorID: 2})

	titles := func(target string) []string {
		rec := s.admin(t, http.MethodGet, target, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s = %d", target, rec.Code)
		}
		var out []string
		for _, r := range decode[[]font.Record](t, rec) {
			out = append(out, r.Title)
		}
		return out
	}

	if diff := cmp.Diff([]string{"C", "B", "A"}, titles("/api/fonts")); diff != "" {
		t.Errorf("all (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"C", "B"}, titles("/api/fonts?author=2")); diff != "" {
		t.Errorf("author (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"C"}, titles("/api/fonts?author=2&status=publish")); diff != "" {
		t.Errorf("author+status (-want +got):\n%s", diff)
	}
	if rec := s.admin(t, http.MethodGet, "/api/fonts?status=pending", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown status = %d", rec.Code)
	}
}

func upload(t *testing.T, s *testServer, id int, filename string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("wOF2 font bytes"))
	w.Close()

	return s.do(t, http.MethodPost, "/api/fonts/"+strconv.Itoa(id)+"/files", &body, http.Header{
		"Authorization":        {"Bearer " + s.token},
		echo.HeaderContentType: {w.FormDataContentType()},
	})
}

func TestUploadAndDeleteFontFile(t *testing.T) {
	s := newTestServer(t)
	r := s.create(t, &font.Record{Title: "Hosted", Status: font.StatusPublish, Source: font.SourceSelfHosted})

	if rec := upload(t, s, r.ID, "evil.exe"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad extension status = %d", rec.Code)
	}

	rec := upload(t, s, r.ID, "Hosted-Regular.WOFF2")
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[struct {
		Key  string      `json:"key"`
		Name string      `json:"name"`
		Font font.Record `json:"font"`
	}](t, rec)

	dir := storage.FontDir(r.ID)
	if !strings.HasPrefix(resp.Key, dir+"/") || !strings.HasSuffix(resp.Key, ".woff2") {
		t.Errorf("key = %q, want under %s with .woff2", resp.Key, dir)
	}
	if ok, _ := s.files.Exists(resp.Key); !ok {
		t.Error("uploaded file missing from storage")
	}
	if resp.Font.URLPath != "/uploads/"+dir+"/" {
		t.Errorf("url_path = %q", resp.Font.URLPath)
	}

	stored, err := s.store.Get(context.Background(), r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{resp.Key}, stored.FontFiles); diff != "" {
		t.Errorf("font_files mismatch (-want +got):\n%s", diff)
	}

	target := "/api/fonts/" + strconv.Itoa(r.ID) + "/files/"
	if rec := s.admin(t, http.MethodDelete, target+"missing.woff2", nil); rec.Code != http.StatusNotFound {
		t.Errorf("delete missing status = %d", rec.Code)
	}
	if rec := s.admin(t, http.MethodDelete, target+resp.Name, nil); rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d: %s", rec.Code, rec.Body.String())
	}
	if ok, _ := s.files.Exists(resp.Key); ok {
		t.Error("file still in storage after delete")
	}
	stored, _ = s.store.Get(context.Background(), r.ID)
	if len(stored.FontFiles) != 0 {
		t.Errorf("font_files after delete = %v", stored.FontFiles)
	}
}

func TestDeleteFontRemovesFiles(t *testing.T) {
	s := newTestServer(t)
	r := s.create(t, &font.Record{Title: "Hosted"})
	resp := decode[struct {
		Key string `json:"key"`
	}](t, upload(t, s, r.ID, "a.ttf"))

	if rec := s.admin(t, http.MethodDelete, "/api/fonts/"+strconv.Itoa(r.ID), nil); rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if ok, _ := s.files.Exists(resp.Key); ok {
		t.Error("file left behind")
	}
}

func TestSampleURLPathNonce(t *testing.T) {
	s := newTestServer(t)
	r := s.create(t, &font.Record{Title: "Hosted"})
	target := "/api/fonts/" + strconv.Itoa(r.ID) + "/url-path"

	if rec := s.admin(t, http.MethodPost, target, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("without nonce status = %d, want 403", rec.Code)
	}
	if rec := s.admin(t, http.MethodGet, "/api/nonce?action=delete_everything", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown action status = %d", rec.Code)
	}

	rec := s.admin(t, http.MethodGet, "/api/nonce?action="+ActionURLPath, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("nonce status = %d", rec.Code)
	}
	nonce := decode[map[string]string](t, rec)["nonce"]

	rec = s.do(t, http.MethodPost, target, nil, http.Header{
		"Authorization":    {"Bearer " + s.token},
		authmw.NonceHeader: {nonce},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("url-path status = %d: %s", rec.Code, rec.Body.String())
	}
	want := "/uploads/" + storage.FontDir(r.ID) + "/"
	if got := decode[map[string]string](t, rec)["url_path"]; got != want {
		t.Errorf("url_path = %q, want %q", got, want)
	}
}

func TestDescriptor(t *testing.T) {
	s := newTestServer(t)
	pub := s.create(t, &font.Record{
		Title: "Bundled", Status: font.StatusPublish, Naming: font.NamingIndividual,
		Individual: map[string]string{"700_normal": "B-Bold"},
	})
	draft := s.create(t, &font.Record{Title: "Draft", FontFamilyName: "d", Variations: []string{"400_normal"}})

	rec := s.do(t, http.MethodGet, "/api/fonts/"+strconv.Itoa(pub.ID)+"/descriptor", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	want := `{"font_family":"Bundled","font_family_display":"Bundled","variants":[{"font-family":"B-Bold","font-weight":"700","font-style":"normal"}]}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Errorf("descriptor = %s\nwant %s", got, want)
	}

	if rec := s.do(t, http.MethodGet, "/api/fonts/"+strconv.Itoa(draft.ID)+"/descriptor", nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("draft status = %d, want 404", rec.Code)
	}
}

func TestEditorHeadCode(t *testing.T) {
	s := newTestServer(t)
	s.create(t, &font.Record{Title: "Kit", Status: font.StatusPublish, EmbedCodeFontService: "Typekit.load();"})
	s.create(t, &font.Record{Title: "Hidden", EmbedCodeFontService: "hidden();"})

	rec := s.admin(t, http.MethodGet, "/api/editor/head", nil)
	if diff := cmp.Diff(map[string]string{"code": "<script>Typekit.load();</script>\n"}, decode[map[string]string](t, rec)); diff != "" {
		t.Errorf("head mismatch (-want +got):\n%s", diff)
	}

	s.fonts.Hooks().AdminEmbed.Add(func(bool) bool { return false })
	rec = s.admin(t, http.MethodGet, "/api/editor/head", nil)
	if got := decode[map[string]string](t, rec)["code"]; got != "" {
		t.Errorf("code with admin injection off = %q", got)
	}
}

func TestEditorFontFormatsAndCSS(t *testing.T) {
	s := newTestServer(t)
	s.create(t, &font.Record{
		Title: "My Font", Status: font.StatusPublish, Naming: font.NamingIndividual,
		Individual: map[string]string{"400_italic": "MyFont-Italic"},
	})

	rec := s.admin(t, http.MethodGet, "/api/editor/font-formats", nil)
	formats := decode[map[string]string](t, rec)["font_formats"]
	if !strings.HasPrefix(formats, "MyFont-Italic=MyFont-Italic;Andale Mono=") {
		t.Errorf("font_formats = %q", formats)
	}

	rec = s.do(t, http.MethodGet, "/editor/fonts.css", nil, nil)
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/css") {
		t.Fatalf("css status = %d type = %q", rec.Code, rec.Header().Get(echo.HeaderContentType))
	}
	if !strings.Contains(rec.Body.String(), `.fonto-my-font-400-italic { font-family: "MyFont-Italic"; font-weight: 400; font-style: italic; }`) {
		t.Errorf("css = %s", rec.Body.String())
	}

	s.fonts.Hooks().EditorCSS.Add(func(bool) bool { return false })
	if rec := s.do(t, http.MethodGet, "/editor/fonts.css", nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("css with filter off status = %d", rec.Code)
	}
}

func TestTypography(t *testing.T) {
	s := newTestServer(t)
	s.create(t, &font.Record{Title: "Proxima", Status: font.StatusPublish, FontFamilyName: "proxima-nova", Variations: []string{"400_normal"}})

	rec := s.do(t, http.MethodGet, "/api/typography/options?active=proxima-nova", nil, nil)
	if !strings.Contains(rec.Body.String(), `<option value="proxima-nova" data-type="custom_grouped" data-variants="[&#34;400&#34;]" selected>Proxima</option>`) {
		t.Errorf("options = %s", rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/api/typography/fonts", nil, nil)
	resp := decode[struct {
		Label string                     `json:"label"`
		Fonts map[string]json.RawMessage `json:"fonts"`
	}](t, rec)
	if resp.Label != integrations.GroupLabel {
		t.Errorf("label = %q", resp.Label)
	}
	if _, ok := resp.Fonts["proxima-nova"]; !ok || len(resp.Fonts) != 1 {
		t.Errorf("fonts = %v", resp.Fonts)
	}
}

func TestPages(t *testing.T) {
	s := newTestServer(t)
	r := s.create(t, &font.Record{
		Title:                "Proxima",
		Content:              "A **geometric** sans.",
		Status:               font.StatusPublish,
		EmbedCodeFontService: `<link rel="stylesheet" href="https://fonts.example.com/proxima.css">`,
		FontFamilyName:       "proxima-nova",
		Variations:           []string{"400_normal", "700_italic"},
	})
	draft := s.create(t, &font.Record{Title: "Secret", FontFamilyName: "secret", Variations: []string{"400_normal"}})

	rec := s.do(t, http.MethodGet, "/", nil, nil)
	body := rec.Body.String()
	if rec.Code != http.StatusOK {
		t.Fatalf("index status = %d", rec.Code)
	}
	for _, want := range []string{
		`<link rel="stylesheet" href="https://fonts.example.com/proxima.css">`,
		`<a href="/fonts/` + strconv.Itoa(r.ID) + `">Proxima</a>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q", want)
		}
	}
	if strings.Contains(body, "Secret") {
		t.Error("index lists a draft font")
	}

	rec = s.do(t, http.MethodGet, "/fonts/"+strconv.Itoa(r.ID), nil, nil)
	body = rec.Body.String()
	if rec.Code != http.StatusOK {
		t.Fatalf("font page status = %d", rec.Code)
	}
	for _, want := range []string{"<strong>geometric</strong>", "Regular 400", "Bold Italic"} {
		if !strings.Contains(body, want) {
			t.Errorf("font page missing %q", want)
		}
	}

	if rec := s.do(t, http.MethodGet, "/fonts/"+strconv.Itoa(draft.ID), nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("draft page status = %d", rec.Code)
	}

	s.fonts.Hooks().FrontEmbed.Add(func(bool) bool { return false })
	rec = s.do(t, http.MethodGet, "/", nil, nil)
	if strings.Contains(rec.Body.String(), "fonts.example.com") {
		t.Error("embed code injected with front injection off")
	}
}
