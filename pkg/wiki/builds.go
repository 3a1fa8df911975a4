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

// Shared builds live under builds/ in the data repository: builds/index.json
// lists them and builds/<id>.json holds each one. A build never changes
// after it is shared, so build records cache forever; only the index is
// ever busted.

// Build is one shared build record. Data is the opaque build payload.
type Build struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Author    string          `json:"author"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
}

// BuildSummary is one index row.
type BuildSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

const buildIndexPath = "builds/index.json"

func buildPath(id string) string {
	return "builds/" + id + ".json"
}

// BuildIndex retrieves the shared build index. The index is cached until
// BustBuildIndex is called, typically after a publish.
func (s *Service) BuildIndex(ctx context.Context) ([]BuildSummary, error) {
	var index []BuildSummary
	err := s.cached(ctx, s.buildIndex, "index", &index, func(ctx context.Context) (any, error) {
		file, err := s.remote.GetFile(ctx, s.dataOwner, s.dataRepo, buildIndexPath, "")
		if err != nil {
			if errors.Is(err, errors.ErrCodeNotFound) {
				return []BuildSummary{}, nil
			}
			return nil, err
		}
		var idx []BuildSummary
		if err := json.Unmarshal([]byte(file.Content), &idx); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "corrupt build index")
		}
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return index, nil
}

// BustBuildIndex drops the cached index so the next BuildIndex call
// refetches.
func (s *Service) BustBuildIndex(ctx context.Context) error {
	s.dedup.Forget(s.buildIndex.Name() + ":index")
	return s.buildIndex.Clear(ctx)
}

// Build retrieves one shared build. Builds are immutable: a cached build is
// served forever without revalidation.
func (s *Service) Build(ctx context.Context, id string) (*Build, error) {
	if id == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "build id cannot be empty")
	}

	var build Build
	err := s.cached(ctx, s.builds, cache.BuildKey(id), &build, func(ctx context.Context) (any, error) {
		file, err := s.remote.GetFile(ctx, s.dataOwner, s.dataRepo, buildPath(id), "")
		if err != nil {
			return nil, err
		}
		var b Build
		if err := json.Unmarshal([]byte(file.Content), &b); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "corrupt build %s", id)
		}
		return &b, nil
	})
	if err != nil {
		return nil, err
	}
	return &build, nil
}

// ShareBuild publishes a new build, appends it to the index, and busts the
// cached index. The build file itself is a create, executed exactly once.
func (s *Service) ShareBuild(ctx context.Context, build Build) error {
	if build.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "build id cannot be empty")
	}
	if build.CreatedAt.IsZero() {
		build.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(build)
	if err != nil {
		return err
	}
	_, err = s.remote.PutFile(ctx, s.dataOwner, s.dataRepo, buildPath(build.ID), github.PutFileOptions{
		Message: fmt.Sprintf("Share build %s", build.ID),
		Content: string(data),
	})
	if err != nil {
		return err
	}

	if err := s.appendToBuildIndex(ctx, BuildSummary{
		ID:        build.ID,
		Title:     build.Title,
		Author:    build.Author,
		CreatedAt: build.CreatedAt,
	}); err != nil {
		return err
	}

	if err := s.builds.Set(ctx, cache.BuildKey(build.ID), build); err != nil {
		return err
	}
	return s.BustBuildIndex(ctx)
}

func (s *Service) appendToBuildIndex(ctx context.Context, summary BuildSummary) error {
	var index []BuildSummary
	var sha string

	file, err := s.remote.GetFile(ctx, s.dataOwner, s.dataRepo, buildIndexPath, "")
	switch {
	case err == nil:
		sha = file.SHA
		if err := json.Unmarshal([]byte(file.Content), &index); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "corrupt build index")
		}
	case errors.Is(err, errors.ErrCodeNotFound):
	default:
		return err
	}

	index = append(index, summary)
	data, err := json.Marshal(index)
	if err != nil {
		return err
	}

	opts := github.PutFileOptions{
		Message: fmt.Sprintf("Index build %s", summary.ID),
		Content: string(data),
		SHA:     sha,
	}
	if sha != "" {
		opts.IdempotencyKey = github.NewIdempotencyKey()
	}
	_, err = s.remote.PutFile(ctx, s.dataOwner, s.dataRepo, buildIndexPath, opts)
	return err
}
