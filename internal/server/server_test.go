package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/dgallion1/scholarsite/internal/markup"
	"github.com/dgallion1/scholarsite/internal/site"
	"golang.org/x/net/html"
)

var quietLog = slog.New(slog.NewTextHandler(io.Discard, nil))

func testTree() fstest.MapFS {
	return fstest.MapFS{
		"site.yaml": {Data: []byte("name: Jane Doe\nowner: Jane Doe\n")},
		"about.md":  {Data: []byte("Hello from the about page.\n")},
		"publications.yaml": {Data: []byte(`- title: Proactive Agents
  authors: [Jane Doe]
  year: 2025
  tags: [agents]
- title: Search Engines
  authors: [Jane Doe]
  year: 2023
  tags: [ir]
`)},
		"posts/first.md": {Data: []byte("---\ntitle: First Post\ndate: 2025-01-02\n---\n## Intro {#intro}\n\nSee {@sec intro}.\n\n### Setup\n\n```go\nfunc main() {}\n```\n\n## Intro\n\nAgain.\n")},
		"images/me.jpg":  {Data: []byte("jpeg")},
	}
}

func newTestServer(t *testing.T, tree fstest.MapFS, build bool) (*Server, *site.Holder, *site.Builder) {
	t.Helper()
	b, err := site.NewBuilder(tree, site.Options{Render: markup.DefaultOptions(), LoadAttempts: 1}, nil, nil, quietLog)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	h := &site.Holder{}
	if build {
		if _, err := h.Rebuild(context.Background(), b); err != nil {
			t.Fatalf("Rebuild: %v", err)
		}
	}
	return NewServer(h, b, quietLog), h, b
}

func get(t *testing.T, srv http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPages(t *testing.T) {
	srv, _, _ := newTestServer(t, testTree(), true)
	tests := []struct {
		path string
		want string
	}{
		{"/", "Hello from the about page."},
		{"/publications", "Proactive Agents"},
		{"/publications/", "Search Engines"},
		{"/news/", "<h1>News</h1>"},
		{"/blog", "First Post"},
		{"/blog/first/", `<span class="section-number">1</span> Intro`},
		{"/blog/first", `<a class="xref" href="#intro">Section 1</a>`},
	}
	for _, tt := range tests {
		rec := get(t, srv, tt.path)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status %d", tt.path, rec.Code)
			continue
		}
		if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
			t.Errorf("%s: content type %q", tt.path, ct)
		}
		if !strings.Contains(rec.Body.String(), tt.want) {
			t.Errorf("%s: expected %q in body", tt.path, tt.want)
		}
	}
}

func TestPublicationsFilter(t *testing.T) {
	srv, _, _ := newTestServer(t, testTree(), true)
	body := get(t, srv, "/publications?year=2023").Body.String()
	if strings.Contains(body, "Proactive Agents") || !strings.Contains(body, "Search Engines") {
		t.Errorf("year filter not applied:\n%s", body)
	}
	body = get(t, srv, "/publications?tag=agents&q=proactive").Body.String()
	if !strings.Contains(body, "Proactive Agents") || strings.Contains(body, "Search Engines") {
		t.Errorf("tag/query filter not applied:\n%s", body)
	}
	body = get(t, srv, "/publications?q=nothing-matches").Body.String()
	if !strings.Contains(body, "No publications match.") {
		t.Errorf("expected empty message:\n%s", body)
	}
}

func TestNotFound(t *testing.T) {
	srv, _, _ := newTestServer(t, testTree(), true)
	for _, path := range []string{"/blog/missing", "/nope", "/site.yaml"} {
		rec := get(t, srv, path)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "<h1>Not found</h1>") {
			t.Errorf("%s: expected the 404 page", path)
		}
	}
}

func TestAssetsAndStatic(t *testing.T) {
	srv, _, _ := newTestServer(t, testTree(), true)

	rec := get(t, srv, "/images/me.jpg")
	if rec.Code != http.StatusOK || rec.Body.String() != "jpeg" {
		t.Errorf("asset: status %d body %q", rec.Code, rec.Body.String())
	}

	rec = get(t, srv, "/static/site.css")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), ".site-header") {
		t.Errorf("static css: status %d", rec.Code)
	}

	rec = get(t, srv, "/static/chroma.css")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), ".chroma") {
		t.Errorf("chroma css: status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/css; charset=utf-8" {
		t.Errorf("chroma css content type %q", ct)
	}
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t, testTree(), false)
	var resp map[string]any
	rec := get(t, srv, "/health")
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp["status"] != "ok" || resp["ready"] != false {
		t.Errorf("unexpected health before build: %v", resp)
	}

	if rec := get(t, srv, "/"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before first build, got %d", rec.Code)
	}

	srv, _, _ = newTestServer(t, testTree(), true)
	resp = nil
	if err := json.NewDecoder(get(t, srv, "/health").Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp["ready"] != true || resp["posts"] != float64(1) {
		t.Errorf("unexpected health after build: %v", resp)
	}
}

func TestBuildsAPI(t *testing.T) {
	srv, h, _ := newTestServer(t, testTree(), true)

	var list struct {
		Builds  []site.BuildSnapshot `json:"builds"`
		Current string               `json:"current"`
	}
	if err := json.NewDecoder(get(t, srv, "/api/builds").Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list.Builds) != 1 || list.Current != h.Load().BuildID {
		t.Fatalf("unexpected build list: %+v", list)
	}

	rec := get(t, srv, "/api/builds/"+list.Current)
	var snap site.BuildSnapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Status != site.StatusCompleted || snap.Progress.PostsRendered != 1 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	rec = get(t, srv, "/api/builds/does-not-exist")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "build not found") {
		t.Errorf("expected json 404, got %d %s", rec.Code, rec.Body.String())
	}

	post := httptest.NewRecorder()
	srv.ServeHTTP(post, httptest.NewRequest(http.MethodPost, "/api/builds", nil))
	if post.Code != http.StatusCreated {
		t.Fatalf("rebuild: status %d %s", post.Code, post.Body.String())
	}
	if err := json.NewDecoder(post.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.ID != h.Load().BuildID || snap.ID == list.Current {
		t.Errorf("rebuild should swap in a new build, got %s", snap.ID)
	}
}

func TestRebuildInvalidContent(t *testing.T) {
	tree := testTree()
	srv, h, _ := newTestServer(t, tree, true)
	before := h.Load()

	tree["site.yaml"] = &fstest.MapFile{Data: []byte("tagline: missing name\n")}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/builds", nil))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
	if h.Load() != before {
		t.Error("failed rebuild must keep serving the previous site")
	}
}

func TestRenderStats(t *testing.T) {
	srv, _, _ := newTestServer(t, testTree(), true)
	var resp struct {
		Stats site.StatsSnapshot `json:"stats"`
	}
	if err := json.NewDecoder(get(t, srv, "/api/stats/render").Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Stats.Renders != 1 || resp.Stats.Slowest != "first" || resp.Stats.AvgPasses < 1 {
		t.Errorf("expected one render of the first post, got %+v", resp.Stats)
	}
}

func TestRecoverer(t *testing.T) {
	srv, _, _ := newTestServer(t, testTree(), true)
	srv.router.Get("/panic", func(http.ResponseWriter, *http.Request) { panic("boom") })
	if rec := get(t, srv, "/panic"); rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 from recovered panic, got %d", rec.Code)
	}
}

// tocTargets returns the fragment of every table-of-contents link and the
// ids of the h2/h3 headings in the post body.
func tocTargets(t *testing.T, page string) (links []string, headings map[string]bool) {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	headings = map[string]bool{}
	var walk func(n *html.Node, inTOC, inProse bool)
	walk = func(n *html.Node, inTOC, inProse bool) {
		if n.Type == html.ElementNode {
			class, id, href := "", "", ""
			for _, a := range n.Attr {
				switch a.Key {
				case "class":
					class = a.Val
				case "id":
					id = a.Val
				case "href":
					href = a.Val
				}
			}
			inTOC = inTOC || (n.Data == "nav" && class == "toc")
			inProse = inProse || class == "prose"
			switch {
			case inTOC && n.Data == "a":
				links = append(links, strings.TrimPrefix(href, "#"))
			case inProse && (n.Data == "h2" || n.Data == "h3") && id != "":
				headings[id] = true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inTOC, inProse)
		}
	}
	walk(doc, false, false)
	return links, headings
}

func TestPostTOCTargetsHeadings(t *testing.T) {
	srv, _, _ := newTestServer(t, testTree(), true)
	body := get(t, srv, "/blog/first").Body.String()

	links, headings := tocTargets(t, body)
	want := []string{"intro", "setup", "intro-1"}
	if len(links) != len(want) {
		t.Fatalf("expected toc links %v, got %v", want, links)
	}
	for i, id := range want {
		if links[i] != id {
			t.Errorf("toc link %d = %q, want %q", i, links[i], id)
		}
		if !headings[id] {
			t.Errorf("toc link #%s has no h2/h3 with that id in the post body", id)
		}
	}
	if len(headings) != len(want) {
		t.Errorf("every h2/h3 should be listed in the toc, headings: %v", headings)
	}
	if !strings.Contains(body, `data-copy="url"`) {
		t.Error("expected the copy URL button")
	}
	if !strings.Contains(body, `src="/static/site.js"`) {
		t.Error("expected the page script that drives the toc")
	}
}
