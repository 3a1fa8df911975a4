package wiki

import (
	"context"
	"strings"

	"github.com/BenDol/GithubWiki-sub000/pkg/cache"
	"github.com/BenDol/GithubWiki-sub000/pkg/errors"
	"github.com/BenDol/GithubWiki-sub000/pkg/github"
)

// remotePageSize is the page size used against the API when filling a
// filtered page. The list endpoint cannot filter by author, so we pull
// full-size remote pages and filter client-side.
const remotePageSize = 100

// PullPage is one page of a user's pull requests.
type PullPage struct {
	Items []github.PullRequest `json:"items"`

	// HasMore reports whether at least one more filtered item exists
	// beyond this page, established by a one-item lookahead rather than a
	// total count.
	HasMore bool `json:"has_more"`
}

// UserPullRequests retrieves page (1-based) of the pull requests authored
// by login on owner/repo, perPage items per page.
//
// The API cannot filter by author, so the producer over-fetches: it walks
// remote pages, keeps only login's pull requests, and stops once it has
// page*perPage+1 filtered items (the +1 decides HasMore) or the source is
// exhausted. The filtered page is cached as a unit.
func (s *Service) UserPullRequests(ctx context.Context, owner, repo, login string, page, perPage int) (*PullPage, error) {
	if err := errors.ValidateRepoCoords(owner, repo); err != nil {
		return nil, err
	}
	if err := errors.ValidateLogin(login); err != nil {
		return nil, err
	}
	if page < 1 || perPage < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "page and perPage must be >= 1, got %d/%d", page, perPage)
	}

	var result PullPage
	key := cache.PullsKey(owner, repo, login, page, perPage)
	err := s.cached(ctx, s.pulls, key, &result, func(ctx context.Context) (any, error) {
		return s.fetchFilteredPage(ctx, owner, repo, login, page, perPage)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Service) fetchFilteredPage(ctx context.Context, owner, repo, login string, page, perPage int) (*PullPage, error) {
	needed := page*perPage + 1
	var filtered []github.PullRequest

	for remotePage := 1; len(filtered) < needed; remotePage++ {
		batch, err := s.remote.ListPulls(ctx, owner, repo, remotePage, remotePageSize)
		if err != nil {
			return nil, err
		}
		for _, pr := range batch {
			if strings.EqualFold(pr.User.Login, login) {
				filtered = append(filtered, pr)
			}
		}
		if len(batch) < remotePageSize {
			break // source exhausted
		}
	}

	start := (page - 1) * perPage
	if start >= len(filtered) {
		return &PullPage{Items: []github.PullRequest{}}, nil
	}
	end := start + perPage
	if end > len(filtered) {
		end = len(filtered)
	}
	return &PullPage{
		Items:   filtered[start:end],
		HasMore: len(filtered) > page*perPage,
	}, nil
}

// InvalidateUserPulls drops every cached pull request page for login on
// owner/repo, for use after login opens or closes a pull request.
func (s *Service) InvalidateUserPulls(ctx context.Context, owner, repo, login string) error {
	return s.pulls.InvalidatePrefix(ctx, cache.PullsPrefix(owner, repo, login))
}
