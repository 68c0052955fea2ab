// Package repo acquires a remote repository into an ephemeral local snapshot.
package repo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/complyscan/complyscan/pkg/format"
	"github.com/complyscan/complyscan/pkg/httpclient"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	gitclient "github.com/go-git/go-git/v5/plumbing/transport/client"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/rs/zerolog/log"
)

// ErrClone marks unrecoverable acquisition failures: invalid URL, failed
// authentication, or a clone that still fails after the default-branch
// fallback. Matched with errors.Is.
var ErrClone = errors.New("repository clone failed")

// Options configure repository acquisition.
type Options struct {
	// Token is an optional access credential embedded into the clone URL
	Token string
	// LargeRepoSize is the snapshot byte size above which Large is flagged
	LargeRepoSize int64
	// CloneTimeout bounds the clone; zero means no extra deadline
	CloneTimeout time.Duration
}

// Snapshot is a local, read-only copy of a repository owned by exactly one
// scan invocation. Callers must invoke Cleanup on every exit path.
type Snapshot struct {
	Path      string
	Branch    string
	Commit    string
	Languages []string
	SizeBytes int64
	Large     bool
}

var installTransportOnce sync.Once

// installTransport routes go-git's smart-HTTP transport through the shared
// retryable client so transient host errors do not fail a scan.
func installTransport() {
	installTransportOnce.Do(func() {
		httpClient := httpclient.GetHTTPClient(map[string]string{"User-Agent": "complyscan"}).StandardClient()
		gitclient.InstallProtocol("https", githttp.NewClient(httpClient))
		gitclient.InstallProtocol("http", githttp.NewClient(httpClient))
	})
}

// Acquire performs a shallow single-branch clone of repoURL into a temporary
// directory. A nonexistent branch falls back to the default branch; any other
// clone failure is fatal and wrapped in ErrClone.
func Acquire(ctx context.Context, repoURL string, branch string, opts Options) (*Snapshot, error) {
	installTransport()

	cloneURL, err := buildCloneURL(repoURL, opts.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClone, err)
	}

	if opts.CloneTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.CloneTimeout)
		defer cancel()
	}

	dir, err := os.MkdirTemp("", "complyscan-*")
	if err != nil {
		return nil, fmt.Errorf("%w: failed creating workspace: %v", ErrClone, err)
	}

	cloneOpts := &git.CloneOptions{
		URL:          cloneURL,
		Depth:        1,
		SingleBranch: true,
		Tags:         git.NoTags,
	}
	if branch != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(branch)
	}

	repository, err := git.PlainCloneContext(ctx, dir, false, cloneOpts)
	if err != nil && branch != "" && isMissingBranch(err) {
		log.Warn().Str("branch", branch).Msg("Branch not found, falling back to default branch")
		removeAll(dir)
		dir, err = os.MkdirTemp("", "complyscan-*")
		if err != nil {
			return nil, fmt.Errorf("%w: failed creating workspace: %v", ErrClone, err)
		}
		cloneOpts.ReferenceName = ""
		repository, err = git.PlainCloneContext(ctx, dir, false, cloneOpts)
	}
	if err != nil {
		removeAll(dir)
		return nil, fmt.Errorf("%w: %v", ErrClone, err)
	}

	snapshot := &Snapshot{Path: dir}
	if head, err := repository.Head(); err == nil {
		snapshot.Commit = head.Hash().String()
		snapshot.Branch = head.Name().Short()
	} else {
		log.Debug().Err(err).Msg("Failed resolving HEAD of cloned repository")
	}

	measure(snapshot)
	snapshot.Large = opts.LargeRepoSize > 0 && snapshot.SizeBytes > opts.LargeRepoSize

	log.Info().
		Str("branch", snapshot.Branch).
		Str("commit", snapshot.Commit).
		Str("size", format.HumanSize(snapshot.SizeBytes)).
		Bool("large", snapshot.Large).
		Msg("Repository acquired")

	return snapshot, nil
}

// Cleanup removes the snapshot workspace. Read-only files (git object packs)
// are made writable first so removal never leaves residue behind.
func (s *Snapshot) Cleanup() {
	if s == nil || s.Path == "" {
		return
	}
	removeAll(s.Path)
	s.Path = ""
}

func removeAll(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			_ = os.Chmod(path, 0700)
		} else {
			_ = os.Chmod(path, 0600)
		}
		return nil
	})

	if err := os.RemoveAll(dir); err != nil {
		log.Error().Err(err).Str("dir", dir).Msg("Failed removing snapshot workspace")
	}
}

// buildCloneURL embeds the credential into the clone URL following the
// hosting provider's convention.
func buildCloneURL(repoURL string, token string) (string, error) {
	if token == "" {
		return repoURL, nil
	}

	parsed, err := url.Parse(repoURL)
	if err != nil {
		return "", err
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("repository URL %q has no host", repoURL)
	}

	switch {
	case strings.Contains(parsed.Host, "github"):
		parsed.User = url.UserPassword("x-access-token", token)
	case strings.Contains(parsed.Host, "gitlab"):
		parsed.User = url.UserPassword("oauth2", token)
	default:
		parsed.User = url.UserPassword("git", token)
	}

	return parsed.String(), nil
}

func isMissingBranch(err error) bool {
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return true
	}
	var noMatch git.NoMatchingRefSpecError
	if errors.As(err, &noMatch) {
		return true
	}
	return strings.Contains(err.Error(), "couldn't find remote ref")
}

var extLanguages = map[string]string{
	".go":    "Go",
	".py":    "Python",
	".js":    "JavaScript",
	".jsx":   "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".java":  "Java",
	".cs":    "C#",
	".rb":    "Ruby",
	".php":   "PHP",
	".rs":    "Rust",
	".c":     "C",
	".cpp":   "C++",
	".swift": "Swift",
	".kt":    "Kotlin",
	".sh":    "Shell",
	".sql":   "SQL",
	".html":  "HTML",
	".css":   "CSS",
}

// measure fills in the snapshot byte size and detected languages. The .git
// directory does not count toward the size estimate.
func measure(s *Snapshot) {
	counts := map[string]int{}

	_ = filepath.WalkDir(s.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == git.GitDirName {
				return filepath.SkipDir
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		s.SizeBytes += info.Size()
		if lang, ok := extLanguages[strings.ToLower(filepath.Ext(path))]; ok {
			counts[lang]++
		}
		return nil
	})

	languages := make([]string, 0, len(counts))
	for lang := range counts {
		languages = append(languages, lang)
	}
	sort.Slice(languages, func(i, j int) bool {
		if counts[languages[i]] != counts[languages[j]] {
			return counts[languages[i]] > counts[languages[j]]
		}
		return languages[i] < languages[j]
	})
	if len(languages) > 5 {
		languages = languages[:5]
	}
	s.Languages = languages
}
