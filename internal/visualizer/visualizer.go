// Package visualizer serves a live class diagram of the loaded languages.
package visualizer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/lionweb-community/lionweb-dev-tools/internal/generator"
	"github.com/lionweb-community/lionweb-dev-tools/internal/language"
	"github.com/lionweb-community/lionweb-dev-tools/internal/logger"
)

const placeholder = "classDiagram\n  class NoLanguage\n  note \"Open or load a language chunk\""

type Visualizer struct {
	registry *language.Registry
	focus    string
	mu       sync.Mutex
	port     int
}

func New(port int) *Visualizer {
	return &Visualizer{port: port}
}

func (v *Visualizer) SetRegistry(reg *language.Registry) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.registry = reg
}

// SetFocus selects the language shown by /graph. An unknown key falls back
// to the first loaded language.
func (v *Visualizer) SetFocus(languageKey string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.focus = languageKey
}

func (v *Visualizer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", v.handleIndex)
	mux.HandleFunc("/graph", v.handleGraph)
	mux.HandleFunc("/languages", v.handleLanguages)
	return mux
}

// ListenAndServe blocks until ctx is cancelled or the listener fails.
func (v *Visualizer) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", v.port),
		Handler:           v.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()
	logger.Printf("Visualizer serving on http://localhost:%d", v.port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Start serves in the background; failures are only logged.
func (v *Visualizer) Start(ctx context.Context) {
	go func() {
		if err := v.ListenAndServe(ctx); err != nil {
			logger.Printf("Visualizer error: %v", err)
		}
	}()
}

func (v *Visualizer) current() (*language.Language, *language.Registry) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.registry == nil {
		return nil, nil
	}
	langs := v.registry.UserLanguages()
	if len(langs) == 0 {
		return nil, v.registry
	}
	for _, l := range langs {
		if l.Key == v.focus {
			return l, v.registry
		}
	}
	return langs[0], v.registry
}

func (v *Visualizer) handleGraph(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	l, reg := v.current()
	if l == nil {
		w.Write([]byte(placeholder))
		return
	}
	w.Write([]byte(generator.Mermaid(l, reg)))
}

type languageInfo struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Version string `json:"version"`
	Focused bool   `json:"focused"`
}

func (v *Visualizer) handleLanguages(w http.ResponseWriter, r *http.Request) {
	focused, reg := v.current()
	infos := []languageInfo{}
	if reg != nil {
		for _, l := range reg.UserLanguages() {
			infos = append(infos, languageInfo{Key: l.Key, Name: l.Name, Version: l.Version, Focused: l == focused})
		}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(infos); err != nil {
		logger.Printf("Visualizer error: %v", err)
	}
}

func (v *Visualizer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(indexHTML))
}

const indexHTML = `
<!DOCTYPE html>
<html>
<head>
    <title>LionWeb Language Inspector</title>
    <script src="https://cdn.jsdelivr.net/npm/mermaid/dist/mermaid.min.js"></script>
    <script>
        mermaid.initialize({ startOnLoad: true, theme: 'neutral' });
        function refresh() {
            fetch('/languages')
                .then(response => response.json())
                .then(langs => {
                    const focused = langs.find(l => l.focused);
                    document.getElementById('language-name').innerText =
                        focused ? focused.name + ' (' + focused.version + ')' : 'None';
                })
                .catch(err => console.error(err));
            fetch('/graph')
                .then(response => response.text())
                .then(text => {
                    const container = document.getElementById('graph-container');
                    if (container.getAttribute('data-last') === text) return;
                    container.setAttribute('data-last', text);
                    container.removeAttribute('data-processed');
                    container.innerHTML = text;
                    mermaid.run({ nodes: [container] });
                })
                .catch(err => console.error(err));
        }
        setInterval(refresh, 1000);
    </script>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background: #f4f7f6; margin: 0; color: #2c3e50; }
        header { background: #1d4e89; color: white; padding: 1rem 2.5rem; }
        h1 { margin: 0; font-size: 1.25rem; font-weight: 600; }
        main { padding: 2rem; max-width: 1200px; margin: 0 auto; }
        #graph-container { background: white; padding: 2.5rem; border-radius: 12px; min-height: 500px; border: 1px solid #e2e8f0; }
        .controls { margin-bottom: 1.5rem; color: #64748b; text-align: center; }
        code { background: #f1f5f9; padding: 0.2rem 0.4rem; border-radius: 4px; }
    </style>
</head>
<body>
    <header><h1>LionWeb Language Inspector</h1></header>
    <main>
        <div class="controls">Live preview of <code id="language-name">None</code>.</div>
        <div id="graph-container" class="mermaid">
            classDiagram
            class Loading
        </div>
    </main>
</body>
</html>
`
