package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/recera/vango-zoom/cmd/vango-zoom/internal/config"
	"github.com/recera/vango-zoom/internal/cache"
	"github.com/recera/vango-zoom/internal/imageinfo"
	"github.com/recera/vango-zoom/pkg/zoom"
)

// devServer represents the development server
type devServer struct {
	host string
	port int

	cfgMu sync.RWMutex
	cfg   *config.Config

	watcher    *fsnotify.Watcher
	buildCache *cache.Cache
	images     *imageinfo.Cache
	noBuild    bool
	debug      bool

	wsClients map[*websocket.Conn]bool
	wsMutex   sync.RWMutex
	upgrader  websocket.Upgrader

	buildMutex sync.Mutex
}

func newServeCommand() *cobra.Command {
	var port int
	var host string
	var cwd string
	var noBuild bool
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the zoom demo gallery with live reload",
		Long: `Serves a server-rendered gallery of the images listed in vango-zoom.yaml,
builds the WASM client that brings the widgets to life, and reloads the
browser when sources, images or the config change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cwd != "" {
				if err := os.Chdir(cwd); err != nil {
					return fmt.Errorf("failed to change directory to %s: %w", cwd, err)
				}
			}
			return runServe(host, port, noBuild, debug)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run the dev server on (default from config, 5173)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind the dev server to (default from config, localhost)")
	cmd.Flags().StringVar(&cwd, "cwd", "", "Working directory of the project (defaults to current)")
	cmd.Flags().BoolVar(&noBuild, "no-build", false, "Serve an existing main.wasm instead of compiling the client")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable the client's console debug log")

	return cmd
}

func newDevServer(cfg *config.Config) *devServer {
	return &devServer{
		host:      cfg.Dev.Host,
		port:      cfg.Dev.Port,
		cfg:       cfg,
		images:    imageinfo.NewCache(),
		wsClients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow all origins in dev mode
				return true
			},
		},
	}
}

func runServe(host string, port int, noBuild, debug bool) error {
	cfg, err := config.Load(".")
	if err != nil {
		log.Printf("⚠️  Failed to load config: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}

	// CLI flags take precedence
	if port != 0 {
		cfg.Dev.Port = port
	}
	if host != "" {
		cfg.Dev.Host = host
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	server := newDevServer(cfg)
	server.noBuild = noBuild
	server.debug = debug

	cacheCfg := cache.DefaultConfig()
	if cfg.Build.CacheDir != "" {
		cacheCfg.Dir = cfg.Build.CacheDir
	}
	server.buildCache, err = cache.New(cacheCfg)
	if err != nil {
		log.Printf("⚠️  Failed to initialize build cache: %v", err)
		// Continue without cache
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()
	server.watcher = watcher

	if err := server.setupWatcher(); err != nil {
		return fmt.Errorf("failed to setup watcher: %w", err)
	}

	log.Println("🚀 Starting vango-zoom dev server...")
	if !noBuild {
		if err := server.buildWASM(); err != nil {
			// the gallery still renders; the triggers just stay static
			log.Printf("❌ Initial build failed: %v\n", err)
		}
	}

	go server.watchFiles()

	addr := fmt.Sprintf("%s:%d", server.host, server.port)
	log.Printf("✨ Dev server running at http://%s\n", addr)

	srv := &http.Server{
		Addr:    addr,
		Handler: server.routes(),
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("\n🛑 Shutting down dev server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *devServer) config() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

func (s *devServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(reloadPath, s.handleWebSocket)
	mux.HandleFunc("/main.wasm", s.serveWASM)
	mux.HandleFunc("/wasm_exec.js", s.serveWasmExec)
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/", s.serveStatic)
	return mux
}

func (s *devServer) servePage(w http.ResponseWriter, r *http.Request) {
	cfg := s.config()
	page, err := renderPage(cfg, publicProber(cfg.Dev.PublicDir, s.probe), s.debug)
	if err != nil {
		log.Printf("❌ Render failed: %v\n", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write([]byte(page))
}

func (s *devServer) probe(path string) (zoom.Size, error) {
	info, err := s.images.Probe(path)
	if err != nil {
		return zoom.Size{}, err
	}
	return info.Size, nil
}

func (s *devServer) serveStatic(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/" || path == "/index.html" {
		s.servePage(w, r)
		return
	}

	// Security: prevent directory traversal
	if strings.Contains(path, "..") {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	filePath := filepath.Join(s.config().Dev.PublicDir, filepath.FromSlash(strings.TrimPrefix(path, "/")))
	if info, err := os.Stat(filePath); err != nil || info.IsDir() {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, filePath)
}

func (s *devServer) serveWASM(w http.ResponseWriter, r *http.Request) {
	out := s.config().Build.Output
	if _, err := os.Stat(out); err != nil {
		http.Error(w, "main.wasm has not been built", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/wasm")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, out)
}

func (s *devServer) serveWasmExec(w http.ResponseWriter, r *http.Request) {
	content, err := readWasmExec(s.config().Build.Compiler)
	if err != nil {
		http.Error(w, "Failed to load wasm_exec.js", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(content)
}

func (s *devServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	s.wsMutex.Lock()
	s.wsClients[conn] = true
	s.wsMutex.Unlock()

	defer func() {
		s.wsMutex.Lock()
		delete(s.wsClients, conn)
		s.wsMutex.Unlock()
	}()

	for {
		var msg map[string]interface{}
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		switch msg["type"] {
		case "HELLO":
			s.wsMutex.Lock()
			conn.WriteJSON(map[string]interface{}{"type": "ACK"})
			s.wsMutex.Unlock()
		default:
			log.Printf("Unknown WebSocket message type: %v", msg["type"])
		}
	}
}

// notifyClients broadcasts a message to every connected browser. The
// write lock serialises writers, which gorilla/websocket requires.
func (s *devServer) notifyClients(msgType string, data map[string]interface{}) {
	s.wsMutex.Lock()
	defer s.wsMutex.Unlock()

	message := map[string]interface{}{
		"type": strings.ToUpper(msgType),
	}
	for k, v := range data {
		message[k] = v
	}

	for client := range s.wsClients {
		if err := client.WriteJSON(message); err != nil {
			log.Printf("Failed to send message to client: %v", err)
		}
	}
}

func (s *devServer) clientCount() int {
	s.wsMutex.RLock()
	defer s.wsMutex.RUnlock()
	return len(s.wsClients)
}

func (s *devServer) setupWatcher() error {
	return filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		name := info.Name()
		if path != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "node_modules") {
			return filepath.SkipDir
		}
		return s.watcher.Add(path)
	})
}

func (s *devServer) watchFiles() {
	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer

	var pendingEvents []fsnotify.Event

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if classify(event.Name) == changeIgnored {
				continue
			}
			// new directories have to be watched too
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					s.watcher.Add(event.Name)
				}
			}
			pendingEvents = append(pendingEvents, event)
			debounce.Reset(100 * time.Millisecond)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Println("Watcher error:", err)

		case <-debounce.C:
			events := pendingEvents
			pendingEvents = nil
			if len(events) > 0 {
				s.handleFileChanges(events)
			}
		}
	}
}

type changeKind int

const (
	changeIgnored changeKind = iota
	changeGo
	changeConfig
	changeImage
	changeStatic
)

func classify(path string) changeKind {
	base := filepath.Base(path)
	for _, name := range config.FileNames {
		if base == name {
			return changeConfig
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return changeGo
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff":
		return changeImage
	case ".css", ".html", ".js":
		return changeStatic
	}
	return changeIgnored
}

func (s *devServer) handleFileChanges(events []fsnotify.Event) {
	var changedGoFiles []string
	var configChanged, imagesChanged, staticChanged bool

	for _, event := range events {
		switch classify(event.Name) {
		case changeGo:
			if strings.HasSuffix(event.Name, "_test.go") {
				continue
			}
			changedGoFiles = append(changedGoFiles, event.Name)
		case changeConfig:
			configChanged = true
		case changeImage:
			s.images.Evict(event.Name)
			imagesChanged = true
		case changeStatic:
			staticChanged = true
		}
	}

	if configChanged {
		s.reloadConfig()
	}

	if len(changedGoFiles) > 0 && !s.noBuild {
		if s.buildCache != nil {
			for _, file := range changedGoFiles {
				if count := s.buildCache.InvalidateByDependency(filepath.Clean(file)); count > 0 {
					log.Printf("🗑️  Invalidated %d cached builds due to %s", count, filepath.Base(file))
				}
			}
		}

		log.Println("🔄 Go files changed, rebuilding WASM...")
		if err := s.buildWASM(); err != nil {
			log.Printf("❌ Build failed: %v\n", err)
			s.notifyClients("error", map[string]interface{}{
				"message": fmt.Sprintf("Build failed: %v", err),
			})
			return
		}
		log.Println("✅ Build succeeded, reloading...")
		s.notifyClients("reload", map[string]interface{}{"target": "wasm"})
		return
	}

	switch {
	case configChanged:
		s.notifyClients("reload", map[string]interface{}{"target": "config"})
	case imagesChanged:
		log.Println("🖼️  Images changed, reloading...")
		s.notifyClients("reload", map[string]interface{}{"target": "images"})
	case staticChanged:
		s.notifyClients("reload", map[string]interface{}{"target": "static"})
	}
}

func (s *devServer) reloadConfig() {
	cfg, err := config.Load(".")
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		log.Printf("❌ Config reload failed: %v (keeping previous)\n", err)
		s.notifyClients("error", map[string]interface{}{
			"message": fmt.Sprintf("Config invalid: %v", err),
		})
		return
	}

	s.cfgMu.Lock()
	// the listener is already bound
	cfg.Dev.Host, cfg.Dev.Port = s.cfg.Dev.Host, s.cfg.Dev.Port
	s.cfg = cfg
	s.cfgMu.Unlock()
	log.Printf("⚙️  Config reloaded (%d images)\n", len(cfg.Images))
}
