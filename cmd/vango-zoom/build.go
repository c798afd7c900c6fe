package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/recera/vango-zoom/cmd/vango-zoom/internal/config"
	"github.com/recera/vango-zoom/internal/cache"
)

// buildWASM compiles the browser client, reusing a cached build when no
// source file changed.
func (s *devServer) buildWASM() error {
	s.buildMutex.Lock()
	defer s.buildMutex.Unlock()

	b := s.config().Build
	if err := os.MkdirAll(filepath.Dir(b.Output), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files := clientSources()
	key, err := wasmCacheKey(b, files)
	if err != nil {
		log.Printf("⚠️  Cache key generation failed: %v", err)
	}

	if s.buildCache != nil && key != "" {
		if data, found := s.buildCache.Get(key); found {
			if err := os.WriteFile(b.Output, data, 0644); err == nil {
				log.Println("⚡ Using cached WASM build")
				return nil
			}
		}
	}

	log.Printf("🔨 Building WASM with %s...\n", b.Compiler)
	cmd := compileCommand(b)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s build failed: %w\nOutput: %s", b.Compiler, err, output)
	}

	if s.buildCache != nil && key != "" {
		if data, err := os.ReadFile(b.Output); err == nil {
			if err := s.buildCache.PutWithDeps(key, data, files); err != nil {
				log.Printf("⚠️  Failed to cache build: %v", err)
			} else {
				log.Println("💾 Cached WASM build")
			}
		}
	}
	return nil
}

func compileCommand(b *config.BuildConfig) *exec.Cmd {
	if b.Compiler == "tinygo" {
		return exec.Command("tinygo", "build",
			"-o", b.Output,
			"-target", "wasm",
			"-no-debug",
			"-opt", "2",
			b.Package,
		)
	}
	cmd := exec.Command("go", "build", "-o", b.Output, "-ldflags=-s -w", b.Package)
	cmd.Env = append(os.Environ(), "GOOS=js", "GOARCH=wasm")
	return cmd
}

// wasmCacheKey hashes the compiler, its version, the client package and
// every source the client may import.
func wasmCacheKey(b *config.BuildConfig, files []string) (string, error) {
	inputs := []string{b.Compiler, compilerVersion(b.Compiler), b.Package}
	fileKey, err := cache.KeyFromFiles(files...)
	if err != nil {
		return "", err
	}
	return cache.Key(append(inputs, fileKey)...), nil
}

// clientSources lists the module files a client build depends on, in walk
// order so the cache key is stable.
func clientSources() []string {
	var files []string
	for _, f := range []string{"go.mod", "go.sum"} {
		if _, err := os.Stat(f); err == nil {
			files = append(files, f)
		}
	}
	for _, dir := range []string{"app", "pkg", "internal"} {
		files = append(files, collectGoFiles(dir)...)
	}
	return files
}

func collectGoFiles(dir string) []string {
	var files []string

	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}

		// Skip vendor and hidden directories
		if info.IsDir() && path != dir && (strings.HasPrefix(info.Name(), ".") || strings.HasPrefix(info.Name(), "_") || info.Name() == "vendor") {
			return filepath.SkipDir
		}

		if strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, "_test.go") {
			files = append(files, filepath.Clean(path))
		}
		return nil
	})

	return files
}

func compilerVersion(compiler string) string {
	var out []byte
	var err error
	if compiler == "tinygo" {
		out, err = exec.Command("tinygo", "version").Output()
	} else {
		out, err = exec.Command("go", "env", "GOVERSION").Output()
	}
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

// readWasmExec loads the JS glue shipped with the compiler.
func readWasmExec(compiler string) ([]byte, error) {
	var candidates []string
	if compiler == "tinygo" {
		out, err := exec.Command("tinygo", "env", "TINYGOROOT").Output()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve TINYGOROOT: %w", err)
		}
		candidates = append(candidates, filepath.Join(strings.TrimSpace(string(out)), "targets", "wasm_exec.js"))
	} else {
		out, err := exec.Command("go", "env", "GOROOT").Output()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve GOROOT: %w", err)
		}
		root := strings.TrimSpace(string(out))
		candidates = append(candidates,
			filepath.Join(root, "lib", "wasm", "wasm_exec.js"),
			filepath.Join(root, "misc", "wasm", "wasm_exec.js"),
		)
	}

	for _, path := range candidates {
		if content, err := os.ReadFile(path); err == nil {
			return content, nil
		}
	}
	return nil, fmt.Errorf("wasm_exec.js not found in %s", strings.Join(candidates, ", "))
}
