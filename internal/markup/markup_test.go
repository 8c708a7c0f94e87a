package markup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/dgallion1/scholarsite/internal/numbering"
	"github.com/google/go-cmp/cmp"
)

func render(t *testing.T, opts Options, src string) *Result {
	t.Helper()
	res, err := NewRenderer(opts, nil).Render(context.Background(), "test.md", []byte(src))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return res
}

func TestRender_EndToEndNumbering(t *testing.T) {
	src := `::: figure {#fig-a}
A
:::

## Intro {#intro}

### Background {#background}

## Method {#method}

::: figure {#fig-b}
B
:::
`
	res := render(t, DefaultOptions(), src)

	wantSections := []numbering.SectionEntry{
		{ID: "intro", Level: 2, Number: "1"},
		{ID: "background", Level: 3, Number: "1.1"},
		{ID: "method", Level: 2, Number: "2"},
	}
	if diff := cmp.Diff(wantSections, res.Sections); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
	wantFigures := []numbering.FigureEntry{{ID: "fig-a", Number: 1}, {ID: "fig-b", Number: 2}}
	if diff := cmp.Diff(wantFigures, res.Figures); diff != "" {
		t.Errorf("figures mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(res.HTML, `<h3 id="background"><span class="section-number">1.1</span> Background</h3>`) {
		t.Errorf("expected numbered h3, got:\n%s", res.HTML)
	}
}

func TestRender_FigureMarkup(t *testing.T) {
	src := `See {@fig loss}.

::: figure {#loss caption="Training loss"}
![curve](loss.png)
:::
`
	res := render(t, DefaultOptions(), src)
	for _, want := range []string{
		`<figure id="fig:loss" class="figure">`,
		`<figcaption><span class="figure-label">Figure 1</span>: Training loss</figcaption>`,
		`<a class="xref" href="#fig:loss">Figure 1</a>`,
		`<img src="loss.png" alt="curve">`,
	} {
		if !strings.Contains(res.HTML, want) {
			t.Errorf("expected %q in output:\n%s", want, res.HTML)
		}
	}
	if res.Passes != 1 {
		t.Errorf("pre-scanned figure should resolve on the first pass, got %d passes", res.Passes)
	}
}

func TestRender_FigureWithoutID(t *testing.T) {
	src := "::: figure\none\n:::\n\n::: figure {caption=\"Second\"}\ntwo\n:::\n"
	res := render(t, DefaultOptions(), src)
	if !strings.Contains(res.HTML, `<figure id="fig:figure-1" class="figure">`) {
		t.Errorf("expected generated id for first figure:\n%s", res.HTML)
	}
	if !strings.Contains(res.HTML, `Figure 2</span>: Second`) {
		t.Errorf("expected second figure numbered 2:\n%s", res.HTML)
	}
}

func TestRender_ForwardFigureWithoutPreScan(t *testing.T) {
	opts := DefaultOptions()
	opts.PreScan = false
	src := "See {@fig later}.\n\n::: figure {#later}\nx\n:::\n"
	res := render(t, opts, src)
	if !strings.Contains(res.HTML, `<a class="xref" href="#fig:later">Figure 1</a>`) {
		t.Errorf("expected forward reference resolved after re-render:\n%s", res.HTML)
	}
	if res.Passes != 2 {
		t.Errorf("expected 2 passes, got %d", res.Passes)
	}
	if len(res.Broken) != 0 {
		t.Errorf("expected no broken refs, got %v", res.Broken)
	}
}

func TestRender_ForwardSectionReference(t *testing.T) {
	src := "As shown in {@sec method}.\n\n## Intro {#intro}\n\n## Method {#method}\n"
	res := render(t, DefaultOptions(), src)
	if !strings.Contains(res.HTML, `<a class="xref" href="#method">Section 2</a>`) {
		t.Errorf("expected resolved section link:\n%s", res.HTML)
	}
	if res.Passes != 2 {
		t.Errorf("expected 2 passes, got %d", res.Passes)
	}
}

func TestRender_MissingReferences(t *testing.T) {
	src := "Refs: {@fig nope} {@sec gone} {@foo bar}.\n\n## Later\n"
	res := render(t, DefaultOptions(), src)
	for _, want := range []string{
		`<span class="xref-missing">[Figure nope not found]</span>`,
		`<span class="xref-missing">[Section gone not found]</span>`,
		`<span class="xref-missing">[Invalid ref]</span>`,
	} {
		if !strings.Contains(res.HTML, want) {
			t.Errorf("expected %q in output:\n%s", want, res.HTML)
		}
	}
	want := []BrokenRef{
		{Kind: RefFigure, Target: "nope"},
		{Kind: RefSection, Target: "gone"},
		{Kind: "foo", Target: "bar"},
	}
	if diff := cmp.Diff(want, res.Broken); diff != "" {
		t.Errorf("broken refs mismatch (-want +got):\n%s", diff)
	}
	if res.Passes > DefaultOptions().MaxPasses {
		t.Errorf("passes %d exceed the limit", res.Passes)
	}
}

func TestRender_MaxPassesBound(t *testing.T) {
	opts := DefaultOptions()
	opts.PreScan = false
	opts.MaxPasses = 1
	res := render(t, opts, "See {@fig later}.\n\n::: figure {#later}\nx\n:::\n")
	if res.Passes != 1 {
		t.Errorf("expected a single pass, got %d", res.Passes)
	}
	if !strings.Contains(res.HTML, "[Figure later not found]") {
		t.Errorf("expected placeholder when re-rendering is disabled:\n%s", res.HTML)
	}
}

func TestRender_UnnumberedHeadingLevels(t *testing.T) {
	res := render(t, DefaultOptions(), "# Top\n\n## Body\n\n##### Deep\n")
	if !strings.Contains(res.HTML, `<h1 id="top">Top</h1>`) {
		t.Errorf("expected unnumbered h1:\n%s", res.HTML)
	}
	if !strings.Contains(res.HTML, `<h5 id="deep">Deep</h5>`) {
		t.Errorf("expected unnumbered h5:\n%s", res.HTML)
	}
	if len(res.Sections) != 1 {
		t.Errorf("expected only the h2 to be registered, got %v", res.Sections)
	}
}

func TestRender_HeadingIDs(t *testing.T) {
	res := render(t, DefaultOptions(), "## Results\n\n## Results\n\n## Hello, *World*!\n\n## Custom {#mine}\n")
	got := make([]string, len(res.Sections))
	for i, s := range res.Sections {
		got[i] = s.ID
	}
	want := []string{"results", "results-1", "hello-world", "mine"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("heading ids mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_AuthorIDTakesPrecedence(t *testing.T) {
	src := "## Intro\n\n## Other {#intro}\n\n## Third\n\n## Again {#intro}\n\nSee {@sec intro}.\n"
	res := render(t, DefaultOptions(), src)
	want := []numbering.SectionEntry{
		{ID: "intro-1", Level: 2, Number: "1"},
		{ID: "intro", Level: 2, Number: "2"},
		{ID: "third", Level: 2, Number: "3"},
		{ID: "intro-2", Level: 2, Number: "4"},
	}
	if diff := cmp.Diff(want, res.Sections); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
	if got := strings.Count(res.HTML, `id="intro"`); got != 1 {
		t.Errorf("expected one element with id intro, got %d:\n%s", got, res.HTML)
	}
	if !strings.Contains(res.HTML, `<a class="xref" href="#intro">Section 2</a>`) {
		t.Errorf("reference should point at the heading that declared the id:\n%s", res.HTML)
	}
	wantWarnings := []string{
		`duplicate heading id "intro" renamed to "intro-1"`,
		`duplicate heading id "intro" renamed to "intro-2"`,
	}
	if diff := cmp.Diff(wantWarnings, res.Warnings); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_FigureContainingFence(t *testing.T) {
	src := "::: figure {#a}\n```\n:::\n```\n:::\n\nafter\n"
	res := render(t, DefaultOptions(), src)
	end := strings.Index(res.HTML, "</figure>")
	if end < 0 {
		t.Fatalf("expected a figure:\n%s", res.HTML)
	}
	inside, outside := res.HTML[:end], res.HTML[end:]
	if !strings.Contains(inside, ":::") || !strings.Contains(inside, "<pre") {
		t.Errorf("fenced block with ::: should stay inside the figure:\n%s", res.HTML)
	}
	if !strings.Contains(outside, "<p>after</p>") || strings.Contains(outside, "<pre") {
		t.Errorf("text after the figure should be a plain paragraph:\n%s", res.HTML)
	}
}

func TestRender_NestedFigures(t *testing.T) {
	src := "::: figure {#outer caption=\"Outer\"}\n::: figure {#inner caption=\"Inner\"}\nx\n:::\n:::\n\n{@fig outer} and {@fig inner}\n"
	res := render(t, DefaultOptions(), src)
	want := []numbering.FigureEntry{{ID: "outer", Number: 1}, {ID: "inner", Number: 2}}
	if diff := cmp.Diff(want, res.Figures); diff != "" {
		t.Errorf("figures mismatch (-want +got):\n%s", diff)
	}
	if got := strings.Count(res.HTML, "</figure>"); got != 2 {
		t.Errorf("expected two closed figures, got %d:\n%s", got, res.HTML)
	}
	if strings.Contains(res.HTML, "<p>:::</p>") {
		t.Errorf("stray fence leaked into the output:\n%s", res.HTML)
	}
	inner := strings.Index(res.HTML, "Figure 2</span>: Inner")
	outer := strings.Index(res.HTML, "Figure 1</span>: Outer")
	if inner < 0 || outer < 0 || inner > outer {
		t.Errorf("inner caption should close before the outer one:\n%s", res.HTML)
	}
}

func TestRender_Citations(t *testing.T) {
	src := `---
title: Cited
references:
  smith: "Smith et al. A study."
  jones: "Jones. Another study."
---
First{@cite jones} then{@cite smith} again{@cite jones} and {@cite nobody}.
`
	res := render(t, DefaultOptions(), src)
	if got := strings.Count(res.HTML, `class="sidenote"`); got != 2 {
		t.Errorf("expected one sidenote per key, got %d:\n%s", got, res.HTML)
	}
	if got := strings.Count(res.HTML, `href="#cite-1"`); got != 2 {
		t.Errorf("expected two links to the first citation, got %d", got)
	}
	if !strings.Contains(res.HTML, "[Citation nobody not found]") {
		t.Errorf("expected missing citation placeholder:\n%s", res.HTML)
	}
	want := []CitationRef{
		{Key: "jones", Number: 1, Text: "Jones. Another study.", Anchor: "cite-1"},
		{Key: "smith", Number: 2, Text: "Smith et al. A study.", Anchor: "cite-2"},
	}
	if diff := cmp.Diff(want, res.Citations); diff != "" {
		t.Errorf("citations mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_Charts(t *testing.T) {
	src := "```chart\nkind: bar\ncategories: [a, b]\nseries:\n  - name: s\n    values: [1, 2]\n```\n\n```chart\nkind: pie\n```\n"
	res := render(t, DefaultOptions(), src)
	if !strings.Contains(res.HTML, `<div class="chart chart-bar"><svg`) {
		t.Errorf("expected inline svg chart:\n%s", res.HTML)
	}
	if got := strings.Count(res.HTML, `class="bar"`); got != 2 {
		t.Errorf("expected 2 bars, got %d", got)
	}
	if !strings.Contains(res.HTML, `class="chart-error"`) {
		t.Errorf("expected chart error box:\n%s", res.HTML)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", res.Warnings)
	}
}

func TestRender_ChartData(t *testing.T) {
	opts := DefaultOptions()
	opts.Data = fstest.MapFS{"data/cost.csv": {Data: []byte("model,Cost\nA,1\nB,2\nC,3\n")}}
	res := render(t, opts, "```chart\nkind: bar\ndata: data/cost.csv\n```\n")
	if got := strings.Count(res.HTML, `class="bar"`); got != 3 {
		t.Errorf("expected 3 bars from csv, got %d", got)
	}
}

func TestRender_CodeHighlighting(t *testing.T) {
	res := render(t, DefaultOptions(), "```go\nfunc main() {}\n```\n")
	if !strings.Contains(res.HTML, `class="chroma"`) {
		t.Errorf("expected highlighted code block:\n%s", res.HTML)
	}
}

func TestRender_TOCAndSummary(t *testing.T) {
	src := `---
title: Outline
---
Opening paragraph with several words in it.

## Alpha {#alpha}

### Beta {#beta}

#### Gamma

## Delta {#delta}
`
	res := render(t, DefaultOptions(), src)
	if res.TOC.Title != "Outline" {
		t.Errorf("expected title from front matter, got %q", res.TOC.Title)
	}
	if len(res.TOC.Entries) != 2 {
		t.Fatalf("expected 2 top-level entries, got %d", len(res.TOC.Entries))
	}
	alpha := res.TOC.Entries[0]
	if alpha.Title != "Alpha" || alpha.Number != "1" || alpha.Anchor != "alpha" {
		t.Errorf("unexpected first entry: %+v", alpha)
	}
	if len(alpha.Children) != 1 || alpha.Children[0].Number != "1.1" {
		t.Errorf("expected Beta nested as 1.1, got %+v", alpha.Children)
	}
	if res.TOC.Len() != 3 {
		t.Errorf("h4 should not be listed, got %d entries", res.TOC.Len())
	}
	if res.Summary != "Opening paragraph with several words in it." {
		t.Errorf("unexpected summary %q", res.Summary)
	}
	if res.ReadingMinutes != 1 {
		t.Errorf("expected 1 minute, got %d", res.ReadingMinutes)
	}
}

func TestRender_SeparateDocumentsConcurrently(t *testing.T) {
	r := NewRenderer(DefaultOptions(), nil)
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("only-%d", i)
			src := fmt.Sprintf("## Head\n\n::: figure {#%s}\nx\n:::\n\nSee {@fig %s}.\n", id, id)
			res, err := r.Render(context.Background(), "doc", []byte(src))
			if err != nil {
				errs <- err
				return
			}
			if len(res.Figures) != 1 || res.Figures[0].Number != 1 {
				errs <- fmt.Errorf("doc %d: figures %v", i, res.Figures)
			}
			if len(res.Sections) != 1 || res.Sections[0].Number != "1" {
				errs <- fmt.Errorf("doc %d: sections %v", i, res.Sections)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestRender_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRenderer(DefaultOptions(), nil).Render(ctx, "doc", []byte("# x\n"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRender_BadFrontMatter(t *testing.T) {
	_, err := NewRenderer(DefaultOptions(), nil).Render(context.Background(), "doc", []byte("---\ndate: someday\n---\nbody\n"))
	if err == nil {
		t.Fatal("expected error for bad date")
	}
}

func TestNewExtension_NilLedgerPanics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, numbering.ErrNoLedger) {
			t.Errorf("expected ErrNoLedger panic, got %v", r)
		}
	}()
	NewExtension(nil, nil, nil)
}

func TestResolve(t *testing.T) {
	src := `---
title: Doc
references:
  k: "Ref text."
---
## Intro {#intro}

See {@fig loss}, {@sec intro}, {@cite k} and {@fig nope}.

::: figure {#loss caption="Loss"}
body
:::
`
	out, err := NewRenderer(DefaultOptions(), nil).Resolve(context.Background(), "doc", []byte(src))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got := string(out)
	for _, want := range []string{
		"# Doc\n",
		"## 1 Intro",
		"See Figure 1, Section 1, [1] and [Figure nope not found].",
		"*Figure 1: Loss*",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in:\n%s", want, got)
		}
	}
	for _, unwanted := range []string{"{#intro}", ":::", "{@"} {
		if strings.Contains(got, unwanted) {
			t.Errorf("unexpected %q left in:\n%s", unwanted, got)
		}
	}
}

func TestApplyEdits(t *testing.T) {
	src := []byte("abcdef")
	got := applyEdits(src, []edit{
		{start: 0, stop: 0, text: ">"},
		{start: 2, stop: 4, text: "XY"},
		{start: 6, stop: 6, text: "!"},
	})
	if string(got) != ">abXYef!" {
		t.Errorf("got %q", got)
	}
	if string(src) != "abcdef" {
		t.Errorf("source modified: %q", src)
	}
}
