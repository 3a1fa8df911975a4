package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BenDol/GithubWiki-sub000/pkg/cache"
	"github.com/BenDol/GithubWiki-sub000/pkg/errors"
	"github.com/BenDol/GithubWiki-sub000/pkg/github"
)

// Custom avatars live as JSON records in the central data repository:
// avatars/<login>.json per user plus avatars/index.json, the registry the
// picker UI lists.

// Avatar is a user's custom avatar record. An empty URL means the user has
// no custom avatar; callers fall back to their own default.
type Avatar struct {
	Login     string    `json:"login"`
	URL       string    `json:"url"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

func avatarPath(login string) string {
	return "avatars/" + login + ".json"
}

const avatarIndexPath = "avatars/index.json"

// Avatar retrieves login's custom avatar URL (24h durable tier). A user
// without a custom avatar yields defaultURL; absence is an expected state,
// not an error, and is cached so repeat lookups stay local.
func (s *Service) Avatar(ctx context.Context, login, defaultURL string) (string, error) {
	if err := errors.ValidateLogin(login); err != nil {
		return "", err
	}

	var record Avatar
	err := s.cached(ctx, s.avatars, cache.AvatarKey(login), &record, func(ctx context.Context) (any, error) {
		file, err := s.remote.GetFile(ctx, s.dataOwner, s.dataRepo, avatarPath(login), "")
		if err != nil {
			if errors.Is(err, errors.ErrCodeNotFound) {
				return Avatar{Login: login}, nil
			}
			return nil, err
		}
		var a Avatar
		if err := json.Unmarshal([]byte(file.Content), &a); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "corrupt avatar record for %s", login)
		}
		return a, nil
	})
	if err != nil {
		return "", err
	}
	if record.URL == "" {
		return defaultURL, nil
	}
	return record.URL, nil
}

// AvatarRegistry retrieves the full login-to-URL avatar map (1 minute
// tier; the registry backs a live picker and must track uploads quickly).
func (s *Service) AvatarRegistry(ctx context.Context) (map[string]string, error) {
	var registry map[string]string
	err := s.cached(ctx, s.avatarRegistry, "registry", &registry, func(ctx context.Context) (any, error) {
		file, err := s.remote.GetFile(ctx, s.dataOwner, s.dataRepo, avatarIndexPath, "")
		if err != nil {
			if errors.Is(err, errors.ErrCodeNotFound) {
				return map[string]string{}, nil
			}
			return nil, err
		}
		var m map[string]string
		if err := json.Unmarshal([]byte(file.Content), &m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "corrupt avatar registry")
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return registry, nil
}

// UploadAvatar stores a custom avatar URL for login and updates the
// registry, then invalidates both cached forms so the change is visible
// immediately.
func (s *Service) UploadAvatar(ctx context.Context, login, url string) error {
	if err := errors.ValidateLogin(login); err != nil {
		return err
	}
	if url == "" {
		return errors.New(errors.ErrCodeInvalidInput, "avatar url cannot be empty")
	}

	record := Avatar{Login: login, URL: url, UpdatedAt: time.Now().UTC()}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err := s.writeDataFile(ctx, avatarPath(login), string(data), fmt.Sprintf("Set avatar for %s", login)); err != nil {
		return err
	}

	if err := s.updateAvatarIndex(ctx, login, url); err != nil {
		return err
	}

	s.dedup.Forget(s.avatars.Name() + ":" + cache.AvatarKey(login))
	s.dedup.Forget(s.avatarRegistry.Name() + ":registry")
	if err := s.avatars.Set(ctx, cache.AvatarKey(login), record); err != nil {
		return err
	}
	return s.avatarRegistry.Delete(ctx, "registry")
}

func (s *Service) updateAvatarIndex(ctx context.Context, login, url string) error {
	var index map[string]string
	var sha string

	file, err := s.remote.GetFile(ctx, s.dataOwner, s.dataRepo, avatarIndexPath, "")
	switch {
	case err == nil:
		sha = file.SHA
		if err := json.Unmarshal([]byte(file.Content), &index); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "corrupt avatar registry")
		}
	case errors.Is(err, errors.ErrCodeNotFound):
		index = make(map[string]string)
	default:
		return err
	}

	index[login] = url
	data, err := json.Marshal(index)
	if err != nil {
		return err
	}

	opts := github.PutFileOptions{
		Message: fmt.Sprintf("Register avatar for %s", login),
		Content: string(data),
		SHA:     sha,
	}
	if sha != "" {
		opts.IdempotencyKey = github.NewIdempotencyKey()
	}
	_, err = s.remote.PutFile(ctx, s.dataOwner, s.dataRepo, avatarIndexPath, opts)
	return err
}

// writeDataFile creates or updates a file in the data repository,
// conditioning on the current revision when the file already exists.
func (s *Service) writeDataFile(ctx context.Context, path, content, message string) error {
	var sha string
	if existing, err := s.remote.GetFile(ctx, s.dataOwner, s.dataRepo, path, ""); err == nil {
		sha = existing.SHA
	} else if !errors.Is(err, errors.ErrCodeNotFound) {
		return err
	}

	opts := github.PutFileOptions{
		Message: message,
		Content: content,
		SHA:     sha,
	}
	if sha != "" {
		opts.IdempotencyKey = github.NewIdempotencyKey()
	}
	_, err := s.remote.PutFile(ctx, s.dataOwner, s.dataRepo, path, opts)
	return err
}
