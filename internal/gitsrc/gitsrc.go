// Package gitsrc resolves install sources that live in git repositories.
//
// A git URL passed to --source is cloned into a per-URL directory under
// the XDG cache home. Later installs from the same URL fast-forward the
// existing clone instead of recloning.
package gitsrc

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/swbuilder/swb/internal/paths"
)

// IsURL returns true if s looks like a git repository URL rather than a
// local directory. It checks for:
//   - URLs containing "://" (e.g., https://, git://)
//   - URLs ending with ".git"
//   - SSH-style URLs starting with "git@"
func IsURL(s string) bool {
	if strings.Contains(s, "://") {
		return true
	}
	if strings.HasSuffix(s, ".git") {
		return true
	}
	if strings.HasPrefix(s, "git@") {
		return true
	}
	return false
}

// allowedSchemes lists the URL schemes accepted for git sources.
var allowedSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ssh":   true,
	"git":   true,
	"file":  true,
}

// scpLikeRe matches scp-style remotes such as git@github.com:user/repo.git.
var scpLikeRe = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9._-]+:[A-Za-z0-9._/~-]+\.git$`)

// ValidateURL rejects strings that are not well-formed git remotes.
// Accepted forms are scheme URLs (http, https, ssh, git, file) and
// scp-style remotes ending in .git. Strings starting with "-" are
// rejected so a crafted source can never be parsed as a git option.
func ValidateURL(raw string) error {
	if raw == "" {
		return errors.New("empty git URL")
	}
	if strings.HasPrefix(raw, "-") {
		return errors.Newf("invalid git URL %q: leading dash", raw)
	}
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
		if !allowedSchemes[u.Scheme] {
			return errors.Newf("unsupported git URL scheme %q", u.Scheme)
		}
		return nil
	}
	if scpLikeRe.MatchString(raw) {
		return nil
	}
	return errors.Newf("invalid git URL: %s", raw)
}

// Clone clones a git repository from url to dest with the specified depth.
// Stdin, stdout, and stderr are connected to the process so interactive
// authentication (SSH passphrase, HTTPS credentials) reaches the user.
func Clone(url, dest string, depth int) error {
	depthArg := fmt.Sprintf("--depth=%d", depth)
	cmd := exec.Command("git", "clone", depthArg, "--", url, dest)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrap(err, "git clone failed")
	}
	return nil
}

// Pull performs a fast-forward-only pull in the specified checkout.
// Stdio is connected the same way as Clone.
func Pull(repoPath string) error {
	cmd := exec.Command("git", "-C", repoPath, "pull", "--ff-only")
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrap(err, "git pull failed")
	}
	return nil
}

// ValidateCheckout checks that dir holds a git checkout by verifying the
// existence of a .git directory.
func ValidateCheckout(dir string) error {
	gitDir := filepath.Join(dir, ".git")
	info, err := os.Stat(gitDir)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Newf("not a git checkout: %s", dir)
		}
		return errors.Wrap(err, "checking git directory")
	}
	if !info.IsDir() {
		return errors.Newf(".git is not a directory: %s", gitDir)
	}
	return nil
}

// Cache manages local clones of git install sources.
type Cache struct {
	root   string
	depth  int
	logger *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithRoot overrides the cache root directory.
func WithRoot(dir string) Option {
	return func(c *Cache) {
		c.root = dir
	}
}

// WithDepth sets the clone depth. Installs only need the tip of the
// source repository, so the default is 1.
func WithDepth(depth int) Option {
	return func(c *Cache) {
		c.depth = depth
	}
}

// WithLogger sets the logger used for fetch progress.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// NewCache creates a Cache rooted at the XDG source cache directory
// unless overridden with WithRoot.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		root:   paths.SourceCacheDir(),
		depth:  1,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dir returns the cache directory a URL maps to. The name combines the
// repository basename with a short hash of the full URL, so distinct
// remotes sharing a repository name do not collide.
func (c *Cache) Dir(url string) string {
	return filepath.Join(c.root, cacheKey(url))
}

// Fetch ensures a current local checkout of url and returns it as a
// filesystem rooted at the repository top level.
func (c *Cache) Fetch(url string) (fs.FS, error) {
	dir, err := c.Sync(url)
	if err != nil {
		return nil, err
	}
	return os.DirFS(dir), nil
}

// Sync clones url into the cache on first use and fast-forwards the
// existing clone afterwards. It returns the checkout directory.
func (c *Cache) Sync(url string) (string, error) {
	if err := ValidateURL(url); err != nil {
		return "", err
	}
	dir := c.Dir(url)

	if err := ValidateCheckout(dir); err == nil {
		c.logger.Info("updating cached source", "url", RedactURL(url), "dir", dir)
		if err := Pull(dir); err != nil {
			return "", errors.Wrapf(err, "updating cache entry %s", dir)
		}
		return dir, nil
	}

	// A cache entry that exists but is not a git checkout is stale.
	if _, err := os.Stat(dir); err == nil {
		c.logger.Warn("removing stale source cache entry", "dir", dir)
		if err := os.RemoveAll(dir); err != nil {
			return "", errors.Wrap(err, "removing stale cache entry")
		}
	}

	if err := paths.EnsureDir(c.root, 0); err != nil {
		return "", errors.Wrap(err, "creating source cache directory")
	}
	c.logger.Info("cloning source", "url", RedactURL(url), "dir", dir)
	if err := Clone(url, dir, c.depth); err != nil {
		return "", err
	}
	return dir, nil
}

// RedactURL masks a password embedded in a URL's userinfo section so
// credentials never reach logs or terminal output. Strings that do not
// parse as URLs pass through unchanged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, has := u.User.Password(); !has {
		return raw
	}
	return u.Redacted()
}

// sanitizeRe collapses characters that cannot appear in a cache
// directory name.
var sanitizeRe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// cacheKey derives a stable, filesystem-safe directory name for a URL.
func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%s-%s", repoName(url), hex.EncodeToString(sum[:6]))
}

// repoName extracts the repository basename from a git URL, without any
// trailing .git suffix.
func repoName(url string) string {
	name := strings.TrimSuffix(url, "/")
	name = strings.TrimSuffix(name, ".git")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	name = sanitizeRe.ReplaceAllString(name, "-")
	if name == "" {
		return "source"
	}
	return name
}
