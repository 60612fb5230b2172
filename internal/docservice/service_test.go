package docservice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/markdown"
	"github.com/starford/folio/internal/testutil"
)

func testService(t *testing.T, files map[string]string) (*Service, string) {
	t.Helper()
	root, store := testutil.ContentTree(t, files)
	filter, err := index.NewFilter("Images", []string{".*"})
	if err != nil {
		t.Fatal(err)
	}
	md, err := markdown.New(markdown.Options{Unsafe: true})
	if err != nil {
		t.Fatal(err)
	}
	return NewService(store, filter, md, testutil.Logger()), root
}

func TestResolve_RendersHeadingAndTitle(t *testing.T) {
	svc, _ := testService(t, map[string]string{"NoSQL/my_topic.md": "# Hi"})

	doc, err := svc.Resolve(context.Background(), "NoSQL", "my_topic")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !strings.Contains(doc.HTML, "<h1>Hi</h1>") {
		t.Errorf("html = %q", doc.HTML)
	}
	if doc.Title != "my topic" {
		t.Errorf("title = %q, want %q", doc.Title, "my topic")
	}
	if doc.Checksum == "" || doc.ModTime.IsZero() {
		t.Errorf("missing validators: %+v", doc)
	}
}

func TestResolve_TitleOnlyReplacesUnderscores(t *testing.T) {
	svc, _ := testService(t, map[string]string{"Docs/_Mixed__Case .md": "x"})

	doc, err := svc.Resolve(context.Background(), "Docs", "_Mixed__Case ")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if doc.Title != " Mixed  Case " {
		t.Errorf("title = %q", doc.Title)
	}
}

func TestResolve_Missing(t *testing.T) {
	svc, _ := testService(t, map[string]string{"Docs/a.md": "a"})

	for _, tc := range [][2]string{
		{"nonexistent", "missing"},
		{"Docs", "missing"},
		{"Docs", "a.md"},
	} {
		_, err := svc.Resolve(context.Background(), tc[0], tc[1])
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("Resolve(%q, %q) err = %v, want ErrNotFound", tc[0], tc[1], err)
		}
	}
}

func TestResolve_DirectoryIsNotFound(t *testing.T) {
	svc, _ := testService(t, map[string]string{"Docs/folder.md/": ""})
	if _, err := svc.Resolve(context.Background(), "Docs", "folder"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestResolve_TraversalRejected(t *testing.T) {
	svc, root := testService(t, map[string]string{"Docs/a.md": "a"})
	// A readable file one level above the root must stay unreachable.
	testutil.WriteFile(t, filepath.Join(filepath.Dir(root), "passwd.md"), "secret")

	cases := [][2]string{
		{"../../etc", "passwd"},
		{"..", "passwd"},
		{"Docs", "../a"},
		{"Docs/..", "a"},
		{`..\..`, "passwd"},
		{"", "a"},
		{"Docs", ""},
		{".", "a"},
		{"Docs", "a\x00"},
	}
	for _, tc := range cases {
		doc, err := svc.Resolve(context.Background(), tc[0], tc[1])
		if doc != nil {
			t.Errorf("Resolve(%q, %q) returned a document", tc[0], tc[1])
		}
		if !errors.Is(err, apperr.ErrNotFound) || !errors.Is(err, apperr.ErrInvalidPath) {
			t.Errorf("Resolve(%q, %q) err = %v, want ErrNotFound+ErrInvalidPath", tc[0], tc[1], err)
		}
	}
}

func TestResolve_ExcludedCategory(t *testing.T) {
	svc, _ := testService(t, map[string]string{
		"Images/readme.md": "# assets",
		".hidden/a.md":     "# hidden",
	})
	for _, cat := range []string{"Images", ".hidden"} {
		if _, err := svc.Resolve(context.Background(), cat, "a"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("Resolve(%q) err = %v, want ErrNotFound", cat, err)
		}
	}
}

func TestResolve_Idempotent(t *testing.T) {
	svc, _ := testService(t, map[string]string{"Docs/same.md": "# Same\n\n- a\n- b\n"})

	first, err := svc.Resolve(context.Background(), "Docs", "same")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Resolve(context.Background(), "Docs", "same")
	if err != nil {
		t.Fatal(err)
	}
	if first.Title != second.Title || first.HTML != second.HTML || first.Checksum != second.Checksum {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
}

func TestResolve_SeesFreshContent(t *testing.T) {
	svc, root := testService(t, map[string]string{"Docs/live.md": "# One"})

	if doc, _ := svc.Resolve(context.Background(), "Docs", "live"); doc == nil || !strings.Contains(doc.HTML, "One") {
		t.Fatalf("unexpected first render: %+v", doc)
	}
	if err := os.WriteFile(filepath.Join(root, "Docs", "live.md"), []byte("# Two"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := svc.Resolve(context.Background(), "Docs", "live")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc.HTML, "Two") {
		t.Errorf("stale render: %q", doc.HTML)
	}
}

func TestResolve_CancelledContext(t *testing.T) {
	svc, _ := testService(t, map[string]string{"Docs/a.md": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Resolve(ctx, "Docs", "a"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestSource(t *testing.T) {
	svc, _ := testService(t, map[string]string{"Docs/a.md": "# Raw *md*"})
	src, err := svc.Source(context.Background(), "Docs", "a")
	if err != nil {
		t.Fatal(err)
	}
	if string(src) != "# Raw *md*" {
		t.Errorf("source = %q", src)
	}
}

func TestAsset(t *testing.T) {
	svc, _ := testService(t, map[string]string{"Images/er.png": "PNG"})

	data, info, err := svc.Asset(context.Background(), "er.png")
	if err != nil {
		t.Fatalf("Asset: %v", err)
	}
	if string(data) != "PNG" || info.Name() != "er.png" {
		t.Errorf("asset = %q, %s", data, info.Name())
	}
	for _, name := range []string{"../Docs/a.md", "..", "missing.png"} {
		if _, _, err := svc.Asset(context.Background(), name); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("Asset(%q) err = %v, want ErrNotFound", name, err)
		}
	}
}

func TestIndex(t *testing.T) {
	svc, _ := testService(t, map[string]string{
		"Docs/a.md":    "a",
		"Images/x.png": "x",
	})
	ix := svc.Index(context.Background())
	if got := ix.Categories(); len(got) != 1 || got[0] != "Docs" {
		t.Errorf("categories = %v", got)
	}
}
