package github

import "time"

// User represents a GitHub user account.
// ID is the stable identifier; Login can change over the account's lifetime.
type User struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Type      string `json:"type,omitempty"`
}

// Repo represents a GitHub repository.
type Repo struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	FullName      string     `json:"full_name"`
	Owner         User       `json:"owner"`
	Description   string     `json:"description,omitempty"`
	DefaultBranch string     `json:"default_branch"`
	Private       bool       `json:"private"`
	Fork          bool       `json:"fork"`
	Parent        *Repo      `json:"parent,omitempty"`
	PushedAt      *time.Time `json:"pushed_at,omitempty"`
}

// FileContent is a file fetched from the contents API, with its content
// already base64-decoded. SHA is the revision token conditioning writes.
type FileContent struct {
	Path    string `json:"path"`
	SHA     string `json:"sha"`
	Size    int    `json:"size"`
	Content string `json:"content"`
}

// PullRequest represents a pull request as returned by the list endpoint.
type PullRequest struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	User      User      `json:"user"`
	HTMLURL   string    `json:"html_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DirEntry is one file or directory in a repository listing.
type DirEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // "file" or "dir"
	Size int    `json:"size"`
}

// apiContentResponse is the raw contents API shape: Content is base64 with
// embedded newlines.
type apiContentResponse struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	SHA     string `json:"sha"`
	Size    int    `json:"size"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// apiCommitResponse is the contents API write response; Content is nil for
// deletes.
type apiCommitResponse struct {
	Content *apiContentResponse `json:"content"`
	Commit  struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// apiPermissionResponse is the collaborator permission endpoint shape.
type apiPermissionResponse struct {
	Permission string `json:"permission"`
	User       User   `json:"user"`
}
