// Package fileset enumerates scan candidates inside a repository snapshot
// and bounds their number for very large repositories.
package fileset

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/rs/zerolog/log"
)

// FileCandidate is one file eligible for scanning.
type FileCandidate struct {
	Path string
	Ext  string
	Size int64
}

// BuilderOptions control candidate selection.
type BuilderOptions struct {
	// MaxFileSize is the byte ceiling; larger files are skipped unread
	MaxFileSize int64
	// AllowedExtensions restricts candidates to these extensions when set
	AllowedExtensions []string
}

// DefaultBuilderOptions returns the standard candidate selection settings.
func DefaultBuilderOptions() BuilderOptions {
	return BuilderOptions{
		MaxFileSize: 5 * 1000 * 1000,
	}
}

// excludedDirFragments are matched by substring against each directory name,
// which also catches variants like .git, .github-cache or node_modules.bak.
var excludedDirFragments = []string{
	".git",
	".hg",
	".svn",
	"node_modules",
	"vendor",
	"venv",
	".venv",
	"__pycache__",
	".mypy_cache",
	".pytest_cache",
	"dist",
	"build",
	"target",
	".idea",
	".vscode",
	".terraform",
	"coverage",
}

var excludedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".ico": true, ".svg": true, ".webp": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true, ".wav": true,
	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".xz": true,
	".7z": true, ".rar": true, ".jar": true, ".war": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".bin": true,
	".o": true, ".a": true, ".class": true, ".pyc": true, ".wasm": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true, ".otf": true,
	".map": true, ".lock": true,
}

var excludedFileNames = map[string]bool{
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"go.sum":            true,
	"Cargo.lock":        true,
	"composer.lock":     true,
	"Gemfile.lock":      true,
}

// sniffBytes is how much of a file is read to detect disguised binaries.
const sniffBytes = 262

// Build walks the snapshot and returns scan candidates plus the total number
// of files discovered. Excluded directories are pruned and not counted;
// binary, oversized and denylisted files count toward the total but are not
// candidates. Output order follows the walk and is not significant.
func Build(root string, opts BuilderOptions) ([]FileCandidate, int, error) {
	candidates := []FileCandidate{}
	totalFiles := 0

	allowed := map[string]bool{}
	for _, ext := range opts.AllowedExtensions {
		allowed[strings.ToLower(ext)] = true
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			log.Debug().Err(walkErr).Str("path", path).Msg("Skipping unreadable entry")
			return nil
		}

		if d.IsDir() {
			if path != root && excludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		totalFiles++

		name := d.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if excludedFileNames[name] || excludedExt(name, ext) {
			return nil
		}
		if len(allowed) > 0 && !allowed[ext] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if opts.MaxFileSize > 0 && info.Size() > opts.MaxFileSize {
			log.Debug().Str("path", path).Int64("bytes", info.Size()).Msg("Skipping oversized file")
			return nil
		}

		if isBinaryContent(path) {
			return nil
		}

		candidates = append(candidates, FileCandidate{Path: path, Ext: ext, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return candidates, totalFiles, nil
}

func excludedDir(name string) bool {
	lower := strings.ToLower(name)
	for _, fragment := range excludedDirFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

func excludedExt(name string, ext string) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".min.js") || strings.HasSuffix(lower, ".min.css") {
		return true
	}
	return excludedExtensions[ext]
}

// isBinaryContent sniffs the first bytes of a file to catch binaries whose
// extension lies. Unreadable files are treated as binary and skipped.
func isBinaryContent(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	head := make([]byte, sniffBytes)
	n, err := f.Read(head)
	if err != nil && n == 0 {
		return false
	}
	head = head[:n]

	if kind, _ := filetype.Match(head); kind != filetype.Unknown {
		return true
	}
	for _, b := range head {
		if b == 0 {
			return true
		}
	}
	return false
}
