package github

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	gh "github.com/google/go-github/v57/github"
	"golang.org/x/time/rate"

	"github.com/vinay9977/CodeCritic/internal/domain/analyses"
)

const (
	// Sampling budget (cost control).
	defaultMaxFiles     = 10
	defaultMaxFileLines = 5000
	// Bound on GetContents calls per fetch so deep trees cannot exhaust the
	// API before the file cap is reached.
	defaultMaxAPICalls = 200
)

// Directories never worth descending into: dependencies, build output,
// tests, docs, VCS internals.
var skipDirs = []string{
	"node_modules", "venv", "env", "__pycache__", ".git",
	"dist", "build", "target", "vendor", "public",
	"test", "tests", "__tests__", "spec", "docs",
	".next", ".nuxt", "coverage", ".pytest_cache",
}

// Non-source extensions rejected outright.
var skipExtensions = []string{
	".md", ".txt", ".json", ".xml", ".yml", ".yaml",
	".lock", ".svg", ".png", ".jpg", ".gif", ".ico",
	".css", ".scss", ".sass", ".html",
}

// languageExtensions is an ordered table so detection ties resolve
// deterministically (first entry wins).
var languageExtensions = []struct {
	Language   string
	Extensions []string
}{
	{"python", []string{".py"}},
	{"javascript", []string{".js", ".jsx", ".ts", ".tsx"}},
	{"java", []string{".java"}},
	{"c", []string{".c", ".h"}},
	{"cpp", []string{".cpp", ".hpp", ".cc"}},
	{"go", []string{".go"}},
	{"rust", []string{".rs"}},
	{"php", []string{".php"}},
	{"ruby", []string{".rb"}},
	{"swift", []string{".swift"}},
	{"kotlin", []string{".kt"}},
}

var errBudgetExhausted = errors.New("api call budget exhausted")

// CodeFetcher pulls a prioritized, cost-bounded sample of source files from a
// repository via the GitHub contents API.
type CodeFetcher struct {
	baseURL      string
	limiter      *rate.Limiter
	maxFiles     int
	maxFileLines int
	maxAPICalls  int
}

func NewCodeFetcher() *CodeFetcher {
	return &CodeFetcher{
		// GitHub allows 5,000 requests/hour; stay well under it per run.
		limiter:      rate.NewLimiter(rate.Limit(5), 1),
		maxFiles:     defaultMaxFiles,
		maxFileLines: defaultMaxFileLines,
		maxAPICalls:  defaultMaxAPICalls,
	}
}

// FetchCode walks the repository tree from the root, admitting files per the
// extension policy until the budgets run out. A failure listing the root is
// fatal; failures on individual files or subdirectories are skipped.
func (f *CodeFetcher) FetchCode(ctx context.Context, accessToken, owner, repo, languageHint string) (*analyses.CodeSample, error) {
	w := &walker{
		fetcher: f,
		client:  newClient(accessToken, f.baseURL),
		owner:   owner,
		repo:    repo,
		hint:    strings.ToLower(languageHint),
	}

	root, err := w.listDir(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list repository contents for %s/%s: %w", owner, repo, err)
	}
	w.walk(ctx, root)

	files := sortByPriority(w.files)
	if len(files) > f.maxFiles {
		files = files[:f.maxFiles]
	}

	language := languageHint
	if language == "" {
		language = detectLanguage(files)
	}

	totalLines := 0
	for _, sf := range files {
		totalLines += sf.Lines
	}

	return &analyses.CodeSample{
		Files:      files,
		Language:   language,
		TotalFiles: len(files),
		TotalLines: totalLines,
	}, nil
}

// walker carries the per-fetch state: admitted files and the API call budget.
type walker struct {
	fetcher *CodeFetcher
	client  *gh.Client
	owner   string
	repo    string
	hint    string

	files     []analyses.SourceFile
	apiCalls  int
	exhausted bool
}

func (w *walker) full() bool {
	return len(w.files) >= w.fetcher.maxFiles
}

// call accounts one API request against the budget and the rate limiter.
func (w *walker) call(ctx context.Context) error {
	if w.apiCalls >= w.fetcher.maxAPICalls {
		w.exhausted = true
		return errBudgetExhausted
	}
	w.apiCalls++
	return w.fetcher.limiter.Wait(ctx)
}

func (w *walker) listDir(ctx context.Context, path string) ([]*gh.RepositoryContent, error) {
	if err := w.call(ctx); err != nil {
		return nil, err
	}
	_, entries, _, err := w.client.Repositories.GetContents(ctx, w.owner, w.repo, path, nil)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (w *walker) fileContent(ctx context.Context, path string) (string, error) {
	if err := w.call(ctx); err != nil {
		return "", err
	}
	fc, _, _, err := w.client.Repositories.GetContents(ctx, w.owner, w.repo, path, nil)
	if err != nil {
		return "", err
	}
	if fc == nil {
		return "", fmt.Errorf("no file content at %s", path)
	}
	return fc.GetContent()
}

// walk scans one directory listing, recursing into admissible subdirectories.
// Per-item failures are logged and skipped; the walk stops once the file cap
// or the API budget is reached.
func (w *walker) walk(ctx context.Context, entries []*gh.RepositoryContent) {
	for _, item := range entries {
		if w.full() || w.exhausted {
			return
		}

		if item.GetType() == "dir" {
			if shouldSkipDir(item.GetName()) {
				continue
			}
			sub, err := w.listDir(ctx, item.GetPath())
			if err != nil {
				if !errors.Is(err, errBudgetExhausted) {
					log.Printf("skip directory %s: %v", item.GetPath(), err)
				}
				continue
			}
			w.walk(ctx, sub)
			continue
		}

		if item.GetType() != "file" || !shouldAnalyzeFile(item.GetName(), w.hint) {
			continue
		}

		content, err := w.fileContent(ctx, item.GetPath())
		if err != nil {
			if !errors.Is(err, errBudgetExhausted) {
				log.Printf("skip file %s: %v", item.GetPath(), err)
			}
			continue
		}
		if content == "" {
			continue
		}

		lines := strings.Count(content, "\n") + 1
		if lines > w.fetcher.maxFileLines {
			continue
		}

		w.files = append(w.files, analyses.SourceFile{
			Path:    item.GetPath(),
			Content: content,
			Lines:   lines,
			Size:    item.GetSize(),
		})
	}
}

func shouldSkipDir(name string) bool {
	for _, s := range skipDirs {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

// shouldAnalyzeFile applies the admission policy: never a known non-source
// extension; with a language hint only that language's extensions (a hint
// missing from the table admits nothing); without a hint any extension from
// the table.
func shouldAnalyzeFile(name, languageHint string) bool {
	for _, ext := range skipExtensions {
		if strings.HasSuffix(name, ext) {
			return false
		}
	}

	if languageHint != "" {
		return hasAnyExtension(name, extensionsFor(languageHint))
	}

	for _, entry := range languageExtensions {
		if hasAnyExtension(name, entry.Extensions) {
			return true
		}
	}
	return false
}

func extensionsFor(language string) []string {
	for _, entry := range languageExtensions {
		if entry.Language == language {
			return entry.Extensions
		}
	}
	return nil
}

func hasAnyExtension(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// sortByPriority orders main/index files first, then larger files first, and
// returns the same slice.
func sortByPriority(files []analyses.SourceFile) []analyses.SourceFile {
	sort.SliceStable(files, func(i, j int) bool {
		pi, pj := isPriorityPath(files[i].Path), isPriorityPath(files[j].Path)
		if pi != pj {
			return pi
		}
		return files[i].Lines > files[j].Lines
	})
	return files
}

func isPriorityPath(path string) bool {
	lower := strings.ToLower(path)
	return strings.Contains(lower, "main") || strings.Contains(lower, "index")
}

// detectLanguage picks the language whose extensions appear most often among
// the admitted files. Ties resolve to the earlier table entry.
func detectLanguage(files []analyses.SourceFile) string {
	best, bestCount := "unknown", 0
	for _, entry := range languageExtensions {
		count := 0
		for _, f := range files {
			if hasAnyExtension(f.Path, entry.Extensions) {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = entry.Language, count
		}
	}
	return best
}
