package serve

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	prom "github.com/prometheus/client_golang/prometheus"

	"mdblog/internal/build"
	buildfp "mdblog/internal/domain/build"
	"mdblog/internal/domain/config"
	"mdblog/internal/logfields"
	"mdblog/internal/metrics"
)

const (
	debounceDelay  = 200 * time.Millisecond
	rebuildTimeout = 30 * time.Second
)

const reloadSnippet = `<script>new EventSource("/dev/events").onmessage=function(e){if(e.data==="reload")location.reload()}</script>`

// Server rebuilds the site on source changes and serves the public directory.
type Server struct {
	cfg     config.Config
	log     *slog.Logger
	reg     *prom.Registry
	builder *build.Builder

	// buildMu serializes rebuilds.
	buildMu sync.Mutex
	last    *build.Result
	// inputs fingerprints the sources of last.
	inputs string

	sseMu     sync.Mutex
	sseConns  map[chan string]struct{}
	watcher   *fsnotify.Watcher
	watchOnce sync.Once
}

func New(cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	reg := prom.NewRegistry()
	return &Server{
		cfg: cfg,
		log: logger,
		reg: reg,
		builder: &build.Builder{
			Cfg:     cfg,
			Logger:  logger,
			Metrics: metrics.NewPrometheusRecorder(reg),
		},
		sseConns: make(map[chan string]struct{}),
	}
}

func (s *Server) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if err := s.Rebuild(ctx); err != nil {
		return err
	}
	if err := s.startWatch(ctx); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	s.log.Info("listening", logfields.URL("http://"+displayAddr(addr)+s.prefix()+"/"))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler serves the public directory under the configured URL prefix, plus
// the /dev/events reload stream and /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/dev/events", s.handleSSE)
	mux.Handle("/metrics", metrics.HTTPHandler(s.reg))

	files := noCache(s.liveReload(http.Dir(s.cfg.Build.PublicDir)))
	if p := s.prefix(); p != "" {
		mux.Handle(p+"/", http.StripPrefix(p, files))
	} else {
		mux.Handle("/", files)
	}
	return mux
}

// Rebuild runs one build and tells connected browsers to reload.
func (s *Server) Rebuild(ctx context.Context) error {
	_, err := s.rebuild(ctx, true)
	return err
}

// rebuild skips the build when force is false and no input changed since the
// last successful build. It reports whether a build ran.
func (s *Server) rebuild(ctx context.Context, force bool) (bool, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	fp, err := buildfp.Compute(s.cfg)
	if err != nil {
		s.log.Warn("fingerprint failed", logfields.Error(err))
	}
	if !force && err == nil && s.last != nil && fp.Sum == s.inputs {
		s.log.Debug("inputs unchanged, rebuild skipped")
		return false, nil
	}

	res, err := s.builder.Run(ctx)
	if err != nil {
		return true, fmt.Errorf("build: %w", err)
	}
	s.last = res
	s.inputs = fp.Sum
	s.broadcastSSE("reload")
	return true, nil
}

// Last returns the result of the most recent successful build.
func (s *Server) Last() *build.Result {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	return s.last
}

func (s *Server) prefix() string {
	return strings.TrimRight(strings.TrimSpace(s.cfg.Build.BaseURLPrefix), "/")
}

func (s *Server) watchDirs() []string {
	b := s.cfg.Build
	return []string{b.SourceDir, b.TemplatesDir, b.StaticDir}
}

func (s *Server) startWatch(ctx context.Context) error {
	var err error
	s.watchOnce.Do(func() {
		w, e := fsnotify.NewWatcher()
		if e != nil {
			err = e
			return
		}
		s.watcher = w

		for _, dir := range s.watchDirs() {
			if e := addTree(w, dir); e != nil {
				err = e
				return
			}
		}
		go s.watchLoop(ctx)
	})
	return err
}

// addTree watches dir and its subdirectories. A missing dir is skipped.
func addTree(w *fsnotify.Watcher, dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}

func (s *Server) watchLoop(ctx context.Context) {
	s.log.Info("watching for file changes", slog.Any("dirs", s.watchDirs()))
	debounce := time.NewTimer(time.Hour)
	debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = addTree(s.watcher, ev.Name)
				}
			}
			debounce.Reset(debounceDelay)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("watcher error", logfields.Error(err))
		case <-debounce.C:
			rctx, cancel := context.WithTimeout(ctx, rebuildTimeout)
			if _, err := s.rebuild(rctx, false); err != nil {
				s.log.Error("rebuild failed", logfields.Error(err))
			}
			cancel()
		}
	}
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan string, 8)

	s.sseMu.Lock()
	s.sseConns[ch] = struct{}{}
	s.sseMu.Unlock()

	defer func() {
		s.sseMu.Lock()
		delete(s.sseConns, ch)
		s.sseMu.Unlock()
	}()
	fmt.Fprintf(w, "data: %s\n\n", "hello")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-ch:
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) broadcastSSE(msg string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()
	for ch := range s.sseConns {
		select {
		case ch <- msg:
		default:
		}
	}
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

// liveReload serves root, adding the reload snippet to HTML pages.
func (s *Server) liveReload(root http.FileSystem) http.Handler {
	files := http.FileServer(root)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path
		if strings.HasSuffix(name, "/") {
			name += "index.html"
		}
		if path.Ext(name) != ".html" {
			files.ServeHTTP(w, r)
			return
		}
		f, err := root.Open(path.Clean("/" + name))
		if err != nil {
			files.ServeHTTP(w, r)
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeHTML(w, injectReload(data))
	})
}

func injectReload(page []byte) []byte {
	i := bytes.LastIndex(page, []byte("</body>"))
	if i < 0 {
		return append(page, reloadSnippet...)
	}
	out := make([]byte, 0, len(page)+len(reloadSnippet))
	out = append(out, page[:i]...)
	out = append(out, reloadSnippet...)
	return append(out, page[i:]...)
}

func writeHTML(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}
