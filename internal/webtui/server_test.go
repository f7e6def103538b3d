package webtui

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_RequiresAddr(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	require.Error(t, err)
}

func TestHandler_TerminalPage(t *testing.T) {
	srv, err := NewServer(ServerConfig{Addr: "127.0.0.1:0", APIURL: "http://api.test/api", ConfigDir: "/tmp/mbkm", NoAuth: true})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/terminal", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "api: http://api.test/api")
	assert.Contains(t, body, "/static/app.js")
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestHandler_RootRedirectsAndServesStatic(t *testing.T) {
	srv, err := NewServer(ServerConfig{Addr: ":0", NoAuth: true})
	require.NoError(t, err)
	h := srv.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/terminal", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "resize")
}

func TestCommand_PassesConsoleEnvironment(t *testing.T) {
	srv, err := NewServer(ServerConfig{
		Addr:       ":0",
		APIURL:     "http://api.test/api",
		APIToken:   "secret",
		ConfigDir:  "/var/lib/mbkm",
		Executable: "/usr/local/bin/mbkm",
		NoAuth:     true,
	})
	require.NoError(t, err)

	cmd, err := srv.command()
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/mbkm", cmd.Path)
	assert.Equal(t, []string{"/usr/local/bin/mbkm"}, cmd.Args)
	for _, want := range []string{
		"MBKM_API_URL=http://api.test/api",
		"MBKM_API_TOKEN=secret",
		"MBKM_CONFIG_DIR=/var/lib/mbkm",
		"TERM=xterm-256color",
	} {
		assert.True(t, slices.Contains(cmd.Env, want), "missing %s", want)
	}
}

func TestSameOrigin(t *testing.T) {
	cases := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://console.test:3334", true},
		{"https://evil.test", false},
		{"http://console.test:3334.evil.test", false},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		r.Host = "console.test:3334"
		if tc.origin != "" {
			r.Header.Set("Origin", tc.origin)
		}
		assert.Equal(t, tc.want, sameOrigin(r), tc.origin)
	}
}

type fakeTerm struct {
	written strings.Builder
	sizes   [][2]int
}

func (f *fakeTerm) Write(p []byte) (int, error) { return f.written.Write(p) }

func (f *fakeTerm) Resize(cols, rows int) error {
	f.sizes = append(f.sizes, [2]int{cols, rows})
	return nil
}

func TestHandleFrame_ResizeAndKeystrokes(t *testing.T) {
	term := &fakeTerm{}

	require.NoError(t, handleFrame(term, websocket.TextMessage, []byte(`{"type":"resize","cols":100,"rows":30}`)))
	require.NoError(t, handleFrame(term, websocket.TextMessage, []byte(`{"type":"resize","cols":0,"rows":30}`)))
	require.NoError(t, handleFrame(term, websocket.TextMessage, []byte(`{broken`)))
	require.NoError(t, handleFrame(term, websocket.TextMessage, []byte("/budi")))
	require.NoError(t, handleFrame(term, websocket.BinaryMessage, []byte{'\r'}))
	require.NoError(t, handleFrame(term, websocket.BinaryMessage, nil))

	assert.Equal(t, [][2]int{{100, 30}}, term.sizes)
	assert.Equal(t, "/budi\r", term.written.String())
}

func TestHandler_Docs(t *testing.T) {
	srv, err := NewServer(ServerConfig{Addr: ":0", Secret: []byte("k")})
	require.NoError(t, err)
	h := srv.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/docs/periods">Academic periods</a>`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/periods", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<a href="#resolution-order">Resolution order</a>`)
	assert.Contains(t, rec.Body.String(), `<h2 id="other-periods">Other periods</h2>`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/keys", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<h1 id="console-keys">Console keys</h1>`)
	assert.Contains(t, rec.Body.String(), "<title>Console keys · MBKM Console docs</title>")
	assert.Contains(t, rec.Body.String(), "<table>")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRenderDoc_DropsRawHTML(t *testing.T) {
	out, outline := renderDoc("**bold** <script>alert(1)</script>")
	assert.Contains(t, string(out), "<strong>bold</strong>")
	assert.NotContains(t, string(out), "<script>")
	assert.Empty(t, outline)

	out, outline = renderDoc("   ")
	assert.Empty(t, out)
	assert.Empty(t, outline)
}

func TestRenderDoc_OutlinesSecondLevelHeadings(t *testing.T) {
	_, outline := renderDoc("# Title\n\n## First part\n\ntext\n\n### Detail\n\n## The `second` part\n")
	assert.Equal(t, []section{
		{ID: "first-part", Title: "First part"},
		{ID: "the-second-part", Title: "The second part"},
	}, outline)
}
