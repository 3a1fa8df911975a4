package wiki

import (
	"context"
	"strings"
	"time"

	"github.com/BenDol/GithubWiki-sub000/pkg/cache"
	"github.com/BenDol/GithubWiki-sub000/pkg/errors"
	"github.com/BenDol/GithubWiki-sub000/pkg/github"
)

// Page is wiki page content at a specific revision.
type Page struct {
	Path      string    `json:"path"`
	Ref       string    `json:"ref"`
	SHA       string    `json:"sha"`
	Body      string    `json:"body"`
	FetchedAt time.Time `json:"fetched_at"`
}

// PageContent retrieves a page, serving from the content tier when fresh.
// ref selects the revision; empty means the default branch. A missing page
// is a PAGE_NOT_FOUND error, distinct from transport failures.
func (s *Service) PageContent(ctx context.Context, owner, repo, path, ref string) (*Page, error) {
	if err := errors.ValidateRepoCoords(owner, repo); err != nil {
		return nil, err
	}
	if err := errors.ValidatePagePath(path); err != nil {
		return nil, err
	}

	var page Page
	key := cache.PageKey(owner, repo, path, ref)
	err := s.cached(ctx, s.content, key, &page, func(ctx context.Context) (any, error) {
		file, err := s.remote.GetFile(ctx, owner, repo, path, ref)
		if err != nil {
			if errors.Is(err, errors.ErrCodeNotFound) {
				return nil, errors.New(errors.ErrCodePageNotFound, "page %s not found in %s/%s", path, owner, repo)
			}
			return nil, err
		}
		return &Page{
			Path:      file.Path,
			Ref:       ref,
			SHA:       file.SHA,
			Body:      normalizeBody(file.Content),
			FetchedAt: time.Now().UTC(),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// SavePage writes a page conditioned on prevSHA, the revision token from
// the read the edit was based on. If the page changed since that revision
// the write fails with a conflict that is never retried; the caller must
// re-read and reconcile. Empty prevSHA creates a new page.
//
// A successful save invalidates the cached page and stores the new
// revision, so the next read reflects the write without a refetch.
func (s *Service) SavePage(ctx context.Context, owner, repo, path, ref, prevSHA, body, message string) (*Page, error) {
	if err := errors.ValidateRepoCoords(owner, repo); err != nil {
		return nil, err
	}
	if err := errors.ValidatePagePath(path); err != nil {
		return nil, err
	}
	if message == "" {
		message = "Update " + path
	}

	opts := github.PutFileOptions{
		Message: message,
		Content: body,
		SHA:     prevSHA,
		Branch:  ref,
	}
	// A SHA-conditioned update is safe to repeat: a duplicate delivery of
	// the same write is rejected as a conflict, not applied twice. Creates
	// have no such guard and run exactly once.
	if prevSHA != "" {
		opts.IdempotencyKey = github.NewIdempotencyKey()
	}

	file, err := s.remote.PutFile(ctx, owner, repo, path, opts)
	if err != nil {
		return nil, err
	}

	key := cache.PageKey(owner, repo, path, ref)
	s.dedup.Forget(s.content.Name() + ":" + key)

	page := &Page{
		Path:      path,
		Ref:       ref,
		SHA:       file.SHA,
		Body:      normalizeBody(body),
		FetchedAt: time.Now().UTC(),
	}
	if err := s.content.Set(ctx, key, page); err != nil {
		return nil, err
	}
	return page, nil
}

// DeletePage removes a page, conditioned on prevSHA like SavePage, and
// drops it from the content tier.
func (s *Service) DeletePage(ctx context.Context, owner, repo, path, ref, prevSHA, message string) error {
	if err := errors.ValidateRepoCoords(owner, repo); err != nil {
		return err
	}
	if err := errors.ValidatePagePath(path); err != nil {
		return err
	}
	if message == "" {
		message = "Delete " + path
	}

	err := s.remote.DeleteFile(ctx, owner, repo, path, github.DeleteFileOptions{
		Message:        message,
		SHA:            prevSHA,
		Branch:         ref,
		IdempotencyKey: github.NewIdempotencyKey(),
	})
	if err != nil {
		return err
	}

	key := cache.PageKey(owner, repo, path, ref)
	s.dedup.Forget(s.content.Name() + ":" + key)
	return s.content.Delete(ctx, key)
}

// normalizeBody canonicalizes line endings so cached content is
// byte-identical regardless of how the file was committed.
func normalizeBody(body string) string {
	return strings.ReplaceAll(body, "\r\n", "\n")
}
