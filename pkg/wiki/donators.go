package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/BenDol/GithubWiki-sub000/pkg/cache"
	"github.com/BenDol/GithubWiki-sub000/pkg/errors"
	"github.com/BenDol/GithubWiki-sub000/pkg/github"
)

// Donator flags live in one file in the data repository. The per-login tier
// has no TTL: it is invalidated only by a write, so a flag read once stays
// local for the rest of the session.
const donatorsPath = "donators.json"

// DonatorStatus reports whether login is a donator.
func (s *Service) DonatorStatus(ctx context.Context, login string) (bool, error) {
	if err := errors.ValidateLogin(login); err != nil {
		return false, err
	}

	var isDonator bool
	err := s.cached(ctx, s.donators, cache.DonatorKey(login), &isDonator, func(ctx context.Context) (any, error) {
		logins, _, err := s.fetchDonators(ctx)
		if err != nil {
			return nil, err
		}
		for _, l := range logins {
			if l == login {
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return false, err
	}
	return isDonator, nil
}

// SetDonatorStatus adds or removes login's donator flag and invalidates
// every cached flag, since the backing file changed for all of them.
func (s *Service) SetDonatorStatus(ctx context.Context, login string, isDonator bool) error {
	if err := errors.ValidateLogin(login); err != nil {
		return err
	}

	logins, sha, err := s.fetchDonators(ctx)
	if err != nil {
		return err
	}

	updated := make([]string, 0, len(logins)+1)
	for _, l := range logins {
		if l != login {
			updated = append(updated, l)
		}
	}
	if isDonator {
		updated = append(updated, login)
	}
	sort.Strings(updated)

	data, err := json.Marshal(updated)
	if err != nil {
		return err
	}
	if err := s.putDonators(ctx, string(data), sha, fmt.Sprintf("Update donator status for %s", login)); err != nil {
		return err
	}

	return s.donators.Clear(ctx)
}

// fetchDonators reads the donator file, returning its logins and revision
// token. A missing file is an empty list.
func (s *Service) fetchDonators(ctx context.Context) ([]string, string, error) {
	file, err := s.remote.GetFile(ctx, s.dataOwner, s.dataRepo, donatorsPath, "")
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return nil, "", nil
		}
		return nil, "", err
	}
	var logins []string
	if err := json.Unmarshal([]byte(file.Content), &logins); err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInternal, err, "corrupt donator file")
	}
	return logins, file.SHA, nil
}

func (s *Service) putDonators(ctx context.Context, content, sha, message string) error {
	opts := github.PutFileOptions{
		Message: message,
		Content: content,
		SHA:     sha,
	}
	if sha != "" {
		opts.IdempotencyKey = github.NewIdempotencyKey()
	}
	_, err := s.remote.PutFile(ctx, s.dataOwner, s.dataRepo, donatorsPath, opts)
	return err
}
