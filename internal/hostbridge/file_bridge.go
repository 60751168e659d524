package hostbridge

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/fsnotify/fsnotify"

	"slipinterp/internal/logging"
	"slipinterp/internal/value"
)

// FileBridge implements the file:// scheme over a local filesystem
// root, with string-interpolation rendering via text/template
// (grounded on the teacher's autopoiesis/toolgen.go use of
// text/template for generated source) and fsnotify-driven invalidation
// of its import cache. It is an opt-in convenience default for tests
// and local embedding, not a production Bridge (§4.4, §4.12).
type FileBridge struct {
	Root string

	mu        sync.Mutex
	importCache map[string]*value.Scope
	watcher   *fsnotify.Watcher
}

// NewFileBridge roots a FileBridge at dir and starts an fsnotify
// watcher that drops cached imports when their source file changes.
func NewFileBridge(dir string) (*FileBridge, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("file bridge: %w", err)
	}
	fb := &FileBridge{
		Root:        dir,
		importCache: make(map[string]*value.Scope),
		watcher:     w,
	}
	go fb.watchLoop()
	return fb, nil
}

func (fb *FileBridge) watchLoop() {
	log := logging.Get(logging.CategoryHostBridge)
	for {
		select {
		case ev, ok := <-fb.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				fb.invalidate(ev.Name)
			}
		case err, ok := <-fb.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("fsnotify error: %v", err)
		}
	}
}

func (fb *FileBridge) invalidate(path string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	delete(fb.importCache, path)
}

// Close stops the background watcher. Callers that construct a
// FileBridge should defer Close at interpreter shutdown.
func (fb *FileBridge) Close() error {
	return fb.watcher.Close()
}

func (fb *FileBridge) resolvePath(path value.PathLiteral) string {
	rel := path.Name
	for _, s := range path.Segments {
		if s.Kind == value.SegName {
			rel = filepath.Join(rel, s.Name)
		}
	}
	return filepath.Join(fb.Root, rel)
}

func (fb *FileBridge) HostObject(id string) (value.HostObject, bool) { return nil, false }

func (fb *FileBridge) Resolve(ctx context.Context, scheme string, op Op, path value.PathLiteral, cfg *value.Dict, payload value.Value) (value.Value, error) {
	if scheme != "file" {
		return nil, &HostBridgeError{Scheme: scheme, Err: ErrNoHostBridge}
	}
	full := fb.resolvePath(path)

	switch op {
	case OpGet:
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, fmt.Errorf("file get %s: %w", full, err)
		}
		return value.Str{Text: string(data)}, nil
	case OpSet:
		text := value.Inspect(payload)
		if s, ok := payload.(value.Str); ok {
			text = s.Text
		}
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return nil, fmt.Errorf("file set %s: %w", full, err)
		}
		if err := os.WriteFile(full, []byte(text), 0644); err != nil {
			return nil, fmt.Errorf("file set %s: %w", full, err)
		}
		return value.Nil, nil
	case OpDel:
		if err := os.Remove(full); err != nil {
			return nil, fmt.Errorf("file del %s: %w", full, err)
		}
		return value.Nil, nil
	case OpPost:
		f, err := os.OpenFile(full, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("file post %s: %w", full, err)
		}
		defer f.Close()
		text := value.Inspect(payload)
		if s, ok := payload.(value.Str); ok {
			text = s.Text
		}
		if _, err := f.WriteString(text); err != nil {
			return nil, fmt.Errorf("file post %s: %w", full, err)
		}
		return value.Nil, nil
	default:
		return nil, fmt.Errorf("file: unsupported op %v", op)
	}
}

// Render renders an interpolated-string template against sc, exposing
// the Scope's own bindings as the template's dot context (§4.4's
// "Scope exposes a key-lookup protocol" realized here as a flattened
// map snapshot, since text/template needs a concrete data value rather
// than a live lookup chain).
func (fb *FileBridge) Render(tmpl string, sc *value.Scope) (string, error) {
	t, err := template.New("interp").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	data := flattenScope(sc)
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return buf.String(), nil
}

func flattenScope(sc *value.Scope) map[string]string {
	out := make(map[string]string)
	for cur := sc; cur != nil; cur = cur.LexicalParent {
		for _, k := range cur.Order {
			if _, exists := out[k]; !exists {
				out[k] = value.Inspect(cur.Data[k])
			}
		}
	}
	return out
}

// Import returns the cached Scope for a file:// module by canonical
// path, and no Scope on a cache miss. It does not read or evaluate the
// source: the caller (package eval) loads and runs the module and then
// stores the resulting Scope with CacheImport, where it stays until
// fsnotify reports the source file changed.
func (fb *FileBridge) Import(ctx context.Context, canonical string) (*value.Scope, error) {
	full := filepath.Join(fb.Root, strings.TrimPrefix(canonical, "file://"))

	fb.mu.Lock()
	if cached, ok := fb.importCache[full]; ok {
		fb.mu.Unlock()
		return cached, nil
	}
	fb.mu.Unlock()

	if _, err := os.Stat(full); err != nil {
		return nil, fmt.Errorf("import %s: %w", full, err)
	}
	_ = fb.watcher.Add(full)
	return nil, nil
}

// CacheImport installs sc as the cached result of canonical, called by
// package eval after it parses+evaluates an imported module the first
// time Import reported a cache miss.
func (fb *FileBridge) CacheImport(canonical string, sc *value.Scope) {
	full := filepath.Join(fb.Root, strings.TrimPrefix(canonical, "file://"))
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.importCache[full] = sc
}

// Now returns the real wall-clock time.
func (fb *FileBridge) Now() time.Time { return time.Now() }
