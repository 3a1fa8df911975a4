package wiki

import (
	"context"

	"github.com/BenDol/GithubWiki-sub000/pkg/cache"
	"github.com/BenDol/GithubWiki-sub000/pkg/errors"
)

// ForkStatus describes whether a user has a fork of a repository.
type ForkStatus struct {
	Exists        bool   `json:"exists"`
	FullName      string `json:"full_name,omitempty"`
	DefaultBranch string `json:"default_branch,omitempty"`
}

// ForkStatus reports whether login has a fork of owner/repo (30 minute
// tier). A repository under login with the same name that is not a fork of
// owner/repo does not count.
func (s *Service) ForkStatus(ctx context.Context, owner, repo, login string) (ForkStatus, error) {
	if err := errors.ValidateRepoCoords(owner, repo); err != nil {
		return ForkStatus{}, err
	}
	if err := errors.ValidateLogin(login); err != nil {
		return ForkStatus{}, err
	}

	var status ForkStatus
	key := cache.ForkKey(owner, repo, login)
	err := s.cached(ctx, s.forks, key, &status, func(ctx context.Context) (any, error) {
		candidate, err := s.remote.GetRepo(ctx, login, repo)
		if err != nil {
			if errors.Is(err, errors.ErrCodeNotFound) {
				return ForkStatus{}, nil
			}
			return nil, err
		}
		if !candidate.Fork || candidate.Parent == nil || candidate.Parent.FullName != owner+"/"+repo {
			return ForkStatus{}, nil
		}
		return ForkStatus{
			Exists:        true,
			FullName:      candidate.FullName,
			DefaultBranch: candidate.DefaultBranch,
		}, nil
	})
	if err != nil {
		return ForkStatus{}, err
	}
	return status, nil
}

// InvalidateForkStatus drops the cached fork status, for use right after
// login creates or deletes a fork.
func (s *Service) InvalidateForkStatus(ctx context.Context, owner, repo, login string) error {
	key := cache.ForkKey(owner, repo, login)
	s.dedup.Forget(s.forks.Name() + ":" + key)
	return s.forks.Delete(ctx, key)
}
