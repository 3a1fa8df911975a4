package wiki

import (
	"context"

	"github.com/BenDol/GithubWiki-sub000/pkg/cache"
	"github.com/BenDol/GithubWiki-sub000/pkg/errors"
	"github.com/BenDol/GithubWiki-sub000/pkg/github"
)

// UserProfile retrieves a user's profile through the 24h profile tier.
// Fetches feed the identity index: if the user ID was last seen under a
// different login, entries keyed by that old login are superseded.
func (s *Service) UserProfile(ctx context.Context, login string) (*github.User, error) {
	if err := errors.ValidateLogin(login); err != nil {
		return nil, err
	}

	var user github.User
	err := s.cached(ctx, s.profiles, cache.ProfileKey(login), &user, func(ctx context.Context) (any, error) {
		u, err := s.remote.GetUser(ctx, login)
		if err != nil {
			return nil, err
		}
		s.observeIdentity(ctx, u)
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Collaborators retrieves a repository's collaborator list (24h tier).
func (s *Service) Collaborators(ctx context.Context, owner, repo string) ([]github.User, error) {
	if err := errors.ValidateRepoCoords(owner, repo); err != nil {
		return nil, err
	}

	var users []github.User
	err := s.cached(ctx, s.collaborators, cache.CollaboratorsKey(owner, repo), &users, func(ctx context.Context) (any, error) {
		return s.remote.ListCollaborators(ctx, owner, repo)
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// RepoMeta retrieves repository metadata (6h tier).
func (s *Service) RepoMeta(ctx context.Context, owner, repo string) (*github.Repo, error) {
	if err := errors.ValidateRepoCoords(owner, repo); err != nil {
		return nil, err
	}

	var meta github.Repo
	err := s.cached(ctx, s.repoMeta, cache.RepoMetaKey(owner, repo), &meta, func(ctx context.Context) (any, error) {
		return s.remote.GetRepo(ctx, owner, repo)
	})
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// Permission is a user's access level on a repository.
//
// Determined distinguishes a confirmed answer from a degraded one: when the
// lookup fails for transport reasons after retries, the result is read-only
// with Determined false, never a silent upgrade and never confused with a
// confirmed "none".
type Permission struct {
	Level      string `json:"level"` // "admin", "write", "read", "none"
	Determined bool   `json:"determined"`
}

// Permission retrieves a user's permission level (10 minute tier, explicit
// invalidation on role change). Indeterminate results are not cached.
func (s *Service) Permission(ctx context.Context, owner, repo, login string) (Permission, error) {
	if err := errors.ValidateRepoCoords(owner, repo); err != nil {
		return Permission{}, err
	}
	if err := errors.ValidateLogin(login); err != nil {
		return Permission{}, err
	}

	var perm Permission
	key := cache.PermissionKey(owner, repo, login)
	err := s.cached(ctx, s.permissions, key, &perm, func(ctx context.Context) (any, error) {
		level, user, err := s.remote.GetPermission(ctx, owner, repo, login)
		if err != nil {
			if errors.Is(err, errors.ErrCodeNotFound) {
				// Not a collaborator: a confirmed answer, cached like
				// any other.
				return Permission{Level: "none", Determined: true}, nil
			}
			return nil, err
		}
		s.observeIdentity(ctx, user)
		return Permission{Level: level, Determined: true}, nil
	})
	if err != nil {
		if errors.Is(err, errors.ErrCodeInvalidInput) || errors.Is(err, errors.ErrCodeInvalidConfig) {
			return Permission{}, err
		}
		// Cannot determine: degrade to read-only rather than failing the
		// page view or guessing a higher level.
		return Permission{Level: "read", Determined: false}, nil
	}
	return perm, nil
}

// InvalidatePermission drops the cached permission for one user, for use
// when a role change is known to have happened.
func (s *Service) InvalidatePermission(ctx context.Context, owner, repo, login string) error {
	key := cache.PermissionKey(owner, repo, login)
	s.dedup.Forget(s.permissions.Name() + ":" + key)
	return s.permissions.Delete(ctx, key)
}

// InvalidateRepoPermissions drops every cached permission on a repository,
// for bulk role changes like a team update.
func (s *Service) InvalidateRepoPermissions(ctx context.Context, owner, repo string) error {
	return s.permissions.InvalidatePrefix(ctx, cache.PermissionPrefix(owner, repo))
}
