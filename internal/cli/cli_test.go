package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mbkm-console/internal/mockapi"
)

type cliEnv struct {
	apiURL    string
	configDir string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	srv := httptest.NewServer(mockapi.New(mockapi.Options{Seed: true}).Handler())
	t.Cleanup(srv.Close)
	return cliEnv{apiURL: srv.URL + "/api", configDir: t.TempDir()}
}

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func (e cliEnv) args(args ...string) []string {
	return append([]string{"--api-url", e.apiURL, "--config-dir", e.configDir}, args...)
}

func (e cliEnv) mustRun(t *testing.T, args ...string) map[string]any {
	t.Helper()
	stdout, stderr, err := runCLI(t, e.args(args...))
	if err != nil {
		t.Fatalf("command failed: mbkm %v\nerr: %v\nstderr:\n%s\nstdout:\n%s", args, err, stderr, stdout)
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal stdout as json envelope: %v\nstdout:\n%s\nargs: %v", err, stdout, args)
	}
	if _, ok := env["data"]; !ok {
		t.Fatalf("expected JSON envelope to contain data key; got: %v", env)
	}
	return env
}

func (e cliEnv) mustFail(t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, err := runCLI(t, e.args(args...))
	if err == nil {
		t.Fatalf("expected mbkm %v to fail; stdout:\n%s", args, stdout)
	}
	return string(stderr)
}

func dataMap(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	m, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %T", env["data"])
	}
	return m
}

func TestList_RegistrantsDefaultToActivePeriod(t *testing.T) {
	e := newCLIEnv(t)
	env := e.mustRun(t, "list", "registrants")

	items, _ := env["data"].([]any)
	if len(items) != 15 {
		t.Fatalf("expected 15 registrants, got %d", len(items))
	}
	meta := env["meta"].(map[string]any)
	pag := meta["pagination"].(map[string]any)
	if pag["total"].(float64) != 42 || pag["last_page"].(float64) != 3 {
		t.Fatalf("unexpected pagination: %v", pag)
	}
	params := meta["params"].(map[string]any)
	if params["academic_year"] != "2025/2026" || params["semester"] != "Ganjil" {
		t.Fatalf("expected seeded period, got %v", params)
	}
	if hints, _ := env["_hints"].([]any); len(hints) == 0 {
		t.Fatalf("expected a next-page hint")
	}
}

func TestList_FiltersAndPage(t *testing.T) {
	e := newCLIEnv(t)
	env := e.mustRun(t, "list", "registrants", "--status", "pending", "--per-page", "10", "--page", "2")

	items, _ := env["data"].([]any)
	if len(items) != 4 {
		t.Fatalf("expected 4 pending registrants on page 2, got %d", len(items))
	}
	for _, it := range items {
		if s := it.(map[string]any)["status"]; s != "pending" {
			t.Fatalf("unexpected status %v", s)
		}
	}
}

func TestList_OtherPeriodAndPlacesFilter(t *testing.T) {
	e := newCLIEnv(t)

	env := e.mustRun(t, "list", "registrants", "--year", "2024/2025", "--semester", "Genap")
	if items, _ := env["data"].([]any); len(items) != 6 {
		t.Fatalf("expected 6 alumni registrants, got %d", len(items))
	}

	env = e.mustRun(t, "list", "places", "--filter", "city=Jakarta")
	if items, _ := env["data"].([]any); len(items) != 3 {
		t.Fatalf("expected 3 places in Jakarta, got %d", len(items))
	}
}

func TestList_RejectsBadInput(t *testing.T) {
	e := newCLIEnv(t)

	if stderr := e.mustFail(t, "list", "students"); !strings.Contains(stderr, "unknown resource") {
		t.Fatalf("unexpected stderr: %s", stderr)
	}
	if stderr := e.mustFail(t, "list", "places", "--filter", "city"); !strings.Contains(stderr, "key=value") {
		t.Fatalf("unexpected stderr: %s", stderr)
	}
	if stderr := e.mustFail(t, "list", "places", "--status", "pending"); !strings.Contains(stderr, "all, active, inactive") {
		t.Fatalf("expected status choices, got: %s", stderr)
	}
	if stderr := e.mustFail(t, "list", "programs", "--year", "2025-2026"); !strings.Contains(stderr, "academic_year") {
		t.Fatalf("expected academic_year validation, got: %s", stderr)
	}
}

func TestList_TableFormat(t *testing.T) {
	e := newCLIEnv(t)
	stdout, stderr, err := runCLI(t, e.args("--format", "table", "list", "places"))
	if err != nil {
		t.Fatalf("list places: %v\n%s", err, stderr)
	}
	out := string(stdout)
	for _, want := range []string{"Name", "City", "PT Telkom Indonesia", "Bandung"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table:\n%s", want, out)
		}
	}
}

func TestShowAndToggle(t *testing.T) {
	e := newCLIEnv(t)

	place := dataMap(t, e.mustRun(t, "show", "places", "1"))
	if place["name"] != "PT Telkom Indonesia" || place["is_active"] != true {
		t.Fatalf("unexpected place: %v", place)
	}

	change := dataMap(t, e.mustRun(t, "toggle", "places", "1"))
	if change["is_active"] != false {
		t.Fatalf("expected place to become inactive, got %v", change)
	}

	if stderr := e.mustFail(t, "toggle", "registrants", "1"); !strings.Contains(stderr, "review") {
		t.Fatalf("unexpected stderr: %s", stderr)
	}
	if stderr := e.mustFail(t, "show", "places", "abc"); !strings.Contains(stderr, "invalid id") {
		t.Fatalf("unexpected stderr: %s", stderr)
	}
}

func TestCreate_DefaultsPeriodAndValidates(t *testing.T) {
	e := newCLIEnv(t)

	prog := dataMap(t, e.mustRun(t, "create", "programs", "--data", `{"name":"Magang Riset","category":"Magang","quota":10}`))
	if prog["academic_year"] != "2025/2026" || prog["semester"] != "Ganjil" {
		t.Fatalf("expected program in the active period, got %v", prog)
	}

	if stderr := e.mustFail(t, "create", "programs", "--data", `{"name":"X","category":"Magang"}`); !strings.Contains(stderr, "name") {
		t.Fatalf("expected name validation, got: %s", stderr)
	}
	if stderr := e.mustFail(t, "create", "places", "--data", `{"name":"Kantor","address":"Jl. A","colour":"red"}`); !strings.Contains(stderr, "invalid --data") {
		t.Fatalf("expected unknown field rejection, got: %s", stderr)
	}
	if stderr := e.mustFail(t, "create", "registrants", "--data", `{}`); !strings.Contains(stderr, "cannot be written") {
		t.Fatalf("unexpected stderr: %s", stderr)
	}
}

func TestCreate_ReadsDataFile(t *testing.T) {
	e := newCLIEnv(t)
	path := filepath.Join(t.TempDir(), "place.json")
	if err := os.WriteFile(path, []byte(`{"name":"Kantor Pos","address":"Jl. Asia Afrika 49","city":"Bandung","quota":3}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	place := dataMap(t, e.mustRun(t, "create", "places", "--data", "@"+path))
	if place["city"] != "Bandung" {
		t.Fatalf("unexpected place: %v", place)
	}
}

func TestReview(t *testing.T) {
	e := newCLIEnv(t)

	change := dataMap(t, e.mustRun(t, "review", "1", "--status", "Approved"))
	if change["status"] != "approved" {
		t.Fatalf("expected approved, got %v", change)
	}
	change = dataMap(t, e.mustRun(t, "review", "1", "--status", "tolak", "--note", "berkas belum lengkap"))
	if change["status"] != "rejected" {
		t.Fatalf("expected rejected, got %v", change)
	}
	if stderr := e.mustFail(t, "review", "1", "--status", "maybe"); !strings.Contains(stderr, "status") {
		t.Fatalf("expected status validation, got: %s", stderr)
	}
}

func TestDelete_RequiresExactName(t *testing.T) {
	e := newCLIEnv(t)

	if stderr := e.mustFail(t, "delete", "places", "3", "--confirm", "gojek"); !strings.Contains(stderr, `"Gojek"`) {
		t.Fatalf("expected confirmation hint, got: %s", stderr)
	}
	e.mustRun(t, "delete", "places", "3", "--confirm", "Gojek")

	env := e.mustRun(t, "list", "places")
	for _, it := range env["data"].([]any) {
		if it.(map[string]any)["name"] == "Gojek" {
			t.Fatalf("deleted place still listed")
		}
	}

	if stderr := e.mustFail(t, "delete", "settings", "2", "--confirm", "2025/2026 Ganjil"); !strings.Contains(stderr, "active setting") {
		t.Fatalf("expected active setting guard, got: %s", stderr)
	}

	if stderr := e.mustFail(t, "delete", "registrants", "1", "--confirm", "x"); !strings.Contains(stderr, "use review") {
		t.Fatalf("expected registrants delete to be refused, got: %s", stderr)
	}
}

func TestExportAndHistory(t *testing.T) {
	e := newCLIEnv(t)
	dir := t.TempDir()

	out := dataMap(t, e.mustRun(t, "export", "registrants", "--status", "approved", "--dir", dir))
	if out["rows"].(float64) != 14 {
		t.Fatalf("expected 14 exported rows, got %v", out["rows"])
	}
	path, _ := out["path"].(string)
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(b), "NIM,Name,Email") {
		t.Fatalf("unexpected csv header: %q", strings.SplitN(string(b), "\n", 2)[0])
	}

	env := e.mustRun(t, "exports")
	entries, _ := env["data"].([]any)
	if len(entries) != 1 || entries[0].(map[string]any)["path"] != path {
		t.Fatalf("expected export history entry for %s, got %v", path, entries)
	}
}

func TestPeriod(t *testing.T) {
	e := newCLIEnv(t)
	env := e.mustRun(t, "period")
	p := dataMap(t, env)
	if p["academic_year"] != "2025/2026" || p["semester"] != "Ganjil" {
		t.Fatalf("unexpected period: %v", p)
	}
	if env["meta"].(map[string]any)["source"] != "setting" {
		t.Fatalf("expected period from the current setting, got %v", env["meta"])
	}
}

func TestUploadLogo(t *testing.T) {
	e := newCLIEnv(t)
	path := filepath.Join(t.TempDir(), "telkom.png")
	if err := os.WriteFile(path, []byte("\x89PNG fake"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	place := dataMap(t, e.mustRun(t, "upload-logo", "1", path))
	if place["logo_url"] != "/uploads/places/1/telkom.png" {
		t.Fatalf("unexpected logo url: %v", place["logo_url"])
	}
}

func TestDocs(t *testing.T) {
	e := newCLIEnv(t)

	topics := dataMap(t, e.mustRun(t, "docs"))["topics"].([]any)
	if len(topics) == 0 {
		t.Fatalf("expected docs topics")
	}
	if first := topics[0].(map[string]any); first["name"] != "export" || first["title"] != "Export" {
		t.Fatalf("unexpected first topic: %v", first)
	}

	stdout, stderr, err := runCLI(t, e.args("docs", "periods", "--raw"))
	if err != nil {
		t.Fatalf("docs periods: %v\n%s", err, stderr)
	}
	if !strings.HasPrefix(string(stdout), "# Academic periods") {
		t.Fatalf("unexpected raw docs:\n%s", stdout)
	}

	if stderr := e.mustFail(t, "docs", "nope"); !strings.Contains(stderr, "unknown docs topic") {
		t.Fatalf("unexpected stderr: %s", stderr)
	}
}
