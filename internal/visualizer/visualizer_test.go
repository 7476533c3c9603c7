package visualizer

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/lionweb-community/lionweb-dev-tools/internal/chunk"
	"github.com/lionweb-community/lionweb-dev-tools/internal/language"
)

func get(t *testing.T, srv *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(body)
}

func TestGraphPlaceholder(t *testing.T) {
	srv := httptest.NewServer(New(0).Handler())
	defer srv.Close()

	_, body := get(t, srv, "/graph")
	if body != placeholder {
		t.Errorf("Expected the placeholder, got %q", body)
	}
	_, body = get(t, srv, "/languages")
	if strings.TrimSpace(body) != "[]" {
		t.Errorf("Expected no languages, got %q", body)
	}
}

func TestGraphFollowsRegistryAndFocus(t *testing.T) {
	doc, err := chunk.ReadFile("../language/testdata/library.language.json")
	if err != nil {
		t.Fatal(err)
	}
	reg, err := language.DeserializeRegistry(doc.Chunk)
	if err != nil {
		t.Fatal(err)
	}
	reg.Register(language.LionCoreM3())

	v := New(0)
	v.SetRegistry(reg)
	srv := httptest.NewServer(v.Handler())
	defer srv.Close()

	_, body := get(t, srv, "/graph")
	if !strings.HasPrefix(body, "classDiagram\n") || !strings.Contains(body, "Library") {
		t.Errorf("Expected the library diagram, got:\n%s", body)
	}

	v.SetFocus(language.M3Key)
	_, body = get(t, srv, "/graph")
	if !strings.Contains(body, "Concept") || strings.Contains(body, "GuideBookWriter") {
		t.Errorf("Expected the M3 diagram, got:\n%s", body)
	}

	_, body = get(t, srv, "/languages")
	var infos []languageInfo
	if err := json.Unmarshal([]byte(body), &infos); err != nil {
		t.Fatal(err)
	}
	focused := 0
	for _, i := range infos {
		if i.Focused {
			focused++
			if i.Key != language.M3Key {
				t.Errorf("Unexpected focused language %q", i.Key)
			}
		}
	}
	if len(infos) != 2 || focused != 1 {
		t.Errorf("Unexpected languages %+v", infos)
	}
}

func TestIndex(t *testing.T) {
	srv := httptest.NewServer(New(0).Handler())
	defer srv.Close()

	status, body := get(t, srv, "/")
	if status != http.StatusOK || !strings.Contains(body, "LionWeb Language Inspector") {
		t.Errorf("Unexpected index page (%d)", status)
	}
	if status, _ := get(t, srv, "/missing"); status != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", status)
	}
}
