package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Cache keys are composed deterministically from resource coordinates: two
// logically-identical requests always produce byte-identical keys, and any
// differing coordinate changes the key. Keys stay human-readable inside
// tiers; hashing happens only at the durable-store layer (see Hash), where
// filesystem-safe names are needed.

// PageKey identifies file content at a path and revision reference.
func PageKey(owner, repo, path, ref string) string {
	if ref == "" {
		ref = "HEAD"
	}
	return fmt.Sprintf("%s/%s/%s@%s", owner, repo, path, ref)
}

// ProfileKey identifies a user profile.
func ProfileKey(login string) string {
	return "profile/" + login
}

// PermissionKey identifies a user's permission level on a repository.
func PermissionKey(owner, repo, login string) string {
	return fmt.Sprintf("%s/%s/permission/%s", owner, repo, login)
}

// CollaboratorsKey identifies a repository's collaborator list.
func CollaboratorsKey(owner, repo string) string {
	return fmt.Sprintf("%s/%s/collaborators", owner, repo)
}

// RepoMetaKey identifies repository metadata.
func RepoMetaKey(owner, repo string) string {
	return fmt.Sprintf("%s/%s/meta", owner, repo)
}

// PullsKey identifies one page of a user's pull requests on a repository.
func PullsKey(owner, repo, login string, page, perPage int) string {
	return fmt.Sprintf("%s/%s/pulls/%s/page/%d/%d", owner, repo, login, page, perPage)
}

// ForkKey identifies the existence/status of a user's fork of a repository.
func ForkKey(owner, repo, login string) string {
	return fmt.Sprintf("%s/%s/fork/%s", owner, repo, login)
}

// AvatarKey identifies a user's custom avatar data.
func AvatarKey(login string) string {
	return "avatar/" + login
}

// DonatorKey identifies a user's donator status.
func DonatorKey(login string) string {
	return "donator/" + login
}

// BuildKey identifies an immutable shared build by ID.
func BuildKey(id string) string {
	return "build/" + id
}

// PermissionPrefix is the invalidation prefix covering every permission
// entry for one login across a repository.
func PermissionPrefix(owner, repo string) string {
	return fmt.Sprintf("%s/%s/permission/", owner, repo)
}

// PullsPrefix is the invalidation prefix covering every cached pull
// request page for one login on a repository.
func PullsPrefix(owner, repo, login string) string {
	return fmt.Sprintf("%s/%s/pulls/%s/", owner, repo, login)
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string. Used by durable stores to
// derive filesystem- and backend-safe names from cache keys.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
