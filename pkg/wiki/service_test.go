package wiki

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/BenDol/GithubWiki-sub000/pkg/errors"
	"github.com/BenDol/GithubWiki-sub000/pkg/github"
)

// fakeRemote is a programmable Remote. Unset methods fail loudly so a test
// only exercises the calls it configured. Call counts are per method.
type fakeRemote struct {
	mu    sync.Mutex
	calls map[string]int

	getFile           func(owner, repo, path, ref string) (*github.FileContent, error)
	putFile           func(owner, repo, path string, opts github.PutFileOptions) (*github.FileContent, error)
	deleteFile        func(owner, repo, path string, opts github.DeleteFileOptions) error
	getUser           func(login string) (*github.User, error)
	getRepo           func(owner, repo string) (*github.Repo, error)
	listCollaborators func(owner, repo string) ([]github.User, error)
	getPermission     func(owner, repo, login string) (string, *github.User, error)
	listPulls         func(owner, repo string, page, perPage int) ([]github.PullRequest, error)
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{calls: make(map[string]int)}
}

func (f *fakeRemote) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeRemote) record(method string) {
	f.mu.Lock()
	f.calls[method]++
	f.mu.Unlock()
}

func (f *fakeRemote) GetFile(_ context.Context, owner, repo, path, ref string) (*github.FileContent, error) {
	f.record("GetFile")
	if f.getFile == nil {
		return nil, errors.New(errors.ErrCodeInternal, "GetFile not configured")
	}
	return f.getFile(owner, repo, path, ref)
}

func (f *fakeRemote) PutFile(_ context.Context, owner, repo, path string, opts github.PutFileOptions) (*github.FileContent, error) {
	f.record("PutFile")
	if f.putFile == nil {
		return nil, errors.New(errors.ErrCodeInternal, "PutFile not configured")
	}
	return f.putFile(owner, repo, path, opts)
}

func (f *fakeRemote) DeleteFile(_ context.Context, owner, repo, path string, opts github.DeleteFileOptions) error {
	f.record("DeleteFile")
	if f.deleteFile == nil {
		return errors.New(errors.ErrCodeInternal, "DeleteFile not configured")
	}
	return f.deleteFile(owner, repo, path, opts)
}

func (f *fakeRemote) GetUser(_ context.Context, login string) (*github.User, error) {
	f.record("GetUser")
	if f.getUser == nil {
		return nil, errors.New(errors.ErrCodeInternal, "GetUser not configured")
	}
	return f.getUser(login)
}

func (f *fakeRemote) GetRepo(_ context.Context, owner, repo string) (*github.Repo, error) {
	f.record("GetRepo")
	if f.getRepo == nil {
		return nil, errors.New(errors.ErrCodeInternal, "GetRepo not configured")
	}
	return f.getRepo(owner, repo)
}

func (f *fakeRemote) ListCollaborators(_ context.Context, owner, repo string) ([]github.User, error) {
	f.record("ListCollaborators")
	if f.listCollaborators == nil {
		return nil, errors.New(errors.ErrCodeInternal, "ListCollaborators not configured")
	}
	return f.listCollaborators(owner, repo)
}

func (f *fakeRemote) GetPermission(_ context.Context, owner, repo, login string) (string, *github.User, error) {
	f.record("GetPermission")
	if f.getPermission == nil {
		return "", nil, errors.New(errors.ErrCodeInternal, "GetPermission not configured")
	}
	return f.getPermission(owner, repo, login)
}

func (f *fakeRemote) ListPulls(_ context.Context, owner, repo string, page, perPage int) ([]github.PullRequest, error) {
	f.record("ListPulls")
	if f.listPulls == nil {
		return nil, errors.New(errors.ErrCodeInternal, "ListPulls not configured")
	}
	return f.listPulls(owner, repo, page, perPage)
}

func newTestService(t *testing.T, remote Remote) *Service {
	t.Helper()
	svc, err := New(context.Background(), remote, Options{
		DataOwner: "acme",
		DataRepo:  "wiki-data",
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func notFound() error {
	return errors.New(errors.ErrCodeNotFound, "not found")
}

func TestPageContent_RepeatReadServedFromCache(t *testing.T) {
	remote := newFakeRemote()
	remote.getFile = func(owner, repo, path, ref string) (*github.FileContent, error) {
		if remote.count("GetFile") > 1 {
			return nil, errors.New(errors.ErrCodeNetwork, "remote must not be called twice")
		}
		return &github.FileContent{Path: path, SHA: "sha1", Content: "# Home\r\nline"}, nil
	}
	svc := newTestService(t, remote)
	ctx := context.Background()

	first, err := svc.PageContent(ctx, "acme", "wiki", "home.md", "")
	if err != nil {
		t.Fatalf("PageContent() failed: %v", err)
	}
	if first.Body != "# Home\nline" {
		t.Errorf("Body = %q; line endings not normalized", first.Body)
	}

	second, err := svc.PageContent(ctx, "acme", "wiki", "home.md", "")
	if err != nil {
		t.Fatalf("second PageContent() failed: %v", err)
	}
	if second.Body != first.Body || second.SHA != "sha1" {
		t.Errorf("cached read differs: %+v", second)
	}
	if remote.count("GetFile") != 1 {
		t.Errorf("remote saw %d calls, want 1", remote.count("GetFile"))
	}
}

func TestPageContent_NotFound(t *testing.T) {
	remote := newFakeRemote()
	remote.getFile = func(owner, repo, path, ref string) (*github.FileContent, error) {
		return nil, notFound()
	}
	svc := newTestService(t, remote)

	_, err := svc.PageContent(context.Background(), "acme", "wiki", "missing.md", "")
	if !errors.Is(err, errors.ErrCodePageNotFound) {
		t.Errorf("error code = %v, want PAGE_NOT_FOUND", errors.GetCode(err))
	}
}

func TestPageContent_ValidatesInput(t *testing.T) {
	svc := newTestService(t, newFakeRemote())
	ctx := context.Background()

	if _, err := svc.PageContent(ctx, "acme", "wiki", "../escape.md", ""); err == nil {
		t.Error("path traversal accepted")
	}
	if _, err := svc.PageContent(ctx, "", "wiki", "home.md", ""); err == nil {
		t.Error("empty owner accepted")
	}
}

func TestPageContent_ConcurrentMissesCoalesce(t *testing.T) {
	remote := newFakeRemote()
	release := make(chan struct{})
	remote.getFile = func(owner, repo, path, ref string) (*github.FileContent, error) {
		<-release
		return &github.FileContent{Path: path, SHA: "s", Content: "body"}, nil
	}
	svc := newTestService(t, remote)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.PageContent(context.Background(), "acme", "wiki", "home.md", "")
		}(i)
	}
	// Hold the producer long enough for every caller to join the flight.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d failed: %v", i, err)
		}
	}
	if got := remote.count("GetFile"); got != 1 {
		t.Errorf("remote saw %d calls, want 1", got)
	}
}

func TestSavePage_ConflictSurfaces(t *testing.T) {
	remote := newFakeRemote()
	remote.putFile = func(owner, repo, path string, opts github.PutFileOptions) (*github.FileContent, error) {
		return nil, &errors.ConflictError{Path: path, KnownSHA: opts.SHA}
	}
	svc := newTestService(t, remote)

	_, err := svc.SavePage(context.Background(), "acme", "wiki", "home.md", "", "stale-sha", "new body", "")
	var conflict *errors.ConflictError
	if !stderrors.As(err, &conflict) {
		t.Fatalf("error = %v, want ConflictError", err)
	}
	if remote.count("PutFile") != 1 {
		t.Errorf("conflicted write hit remote %d times, want 1", remote.count("PutFile"))
	}
}

func TestSavePage_UpdatesCache(t *testing.T) {
	remote := newFakeRemote()
	remote.getFile = func(owner, repo, path, ref string) (*github.FileContent, error) {
		return &github.FileContent{Path: path, SHA: "sha1", Content: "old body"}, nil
	}
	remote.putFile = func(owner, repo, path string, opts github.PutFileOptions) (*github.FileContent, error) {
		if opts.SHA != "sha1" {
			t.Errorf("write conditioned on %q, want sha1", opts.SHA)
		}
		if opts.IdempotencyKey == "" {
			t.Error("conditioned update carried no idempotency key")
		}
		return &github.FileContent{Path: path, SHA: "sha2"}, nil
	}
	svc := newTestService(t, remote)
	ctx := context.Background()

	if _, err := svc.PageContent(ctx, "acme", "wiki", "home.md", ""); err != nil {
		t.Fatal(err)
	}
	saved, err := svc.SavePage(ctx, "acme", "wiki", "home.md", "", "sha1", "new body", "edit")
	if err != nil {
		t.Fatalf("SavePage() failed: %v", err)
	}
	if saved.SHA != "sha2" {
		t.Errorf("saved SHA = %q, want sha2", saved.SHA)
	}

	// The next read reflects the write without refetching.
	page, err := svc.PageContent(ctx, "acme", "wiki", "home.md", "")
	if err != nil {
		t.Fatal(err)
	}
	if page.Body != "new body" || page.SHA != "sha2" {
		t.Errorf("post-save read = %+v", page)
	}
	if remote.count("GetFile") != 1 {
		t.Errorf("remote GetFile called %d times, want 1", remote.count("GetFile"))
	}
}

func TestPermission_Confirmed(t *testing.T) {
	remote := newFakeRemote()
	remote.getPermission = func(owner, repo, login string) (string, *github.User, error) {
		return "write", &github.User{ID: 42, Login: login}, nil
	}
	svc := newTestService(t, remote)
	ctx := context.Background()

	perm, err := svc.Permission(ctx, "acme", "wiki", "alice")
	if err != nil {
		t.Fatalf("Permission() failed: %v", err)
	}
	if perm.Level != "write" || !perm.Determined {
		t.Errorf("perm = %+v", perm)
	}

	// Second lookup is a cache hit.
	if _, err := svc.Permission(ctx, "acme", "wiki", "alice"); err != nil {
		t.Fatal(err)
	}
	if remote.count("GetPermission") != 1 {
		t.Errorf("remote saw %d permission calls, want 1", remote.count("GetPermission"))
	}
}

func TestPermission_NotCollaboratorIsConfirmedNone(t *testing.T) {
	remote := newFakeRemote()
	remote.getPermission = func(owner, repo, login string) (string, *github.User, error) {
		return "", nil, notFound()
	}
	svc := newTestService(t, remote)

	perm, err := svc.Permission(context.Background(), "acme", "wiki", "bob")
	if err != nil {
		t.Fatalf("Permission() failed: %v", err)
	}
	if perm.Level != "none" || !perm.Determined {
		t.Errorf("perm = %+v, want confirmed none", perm)
	}
}

func TestPermission_DegradesToReadOnlyOnFailure(t *testing.T) {
	remote := newFakeRemote()
	remote.getPermission = func(owner, repo, login string) (string, *github.User, error) {
		return "", nil, errors.New(errors.ErrCodeNetwork, "connection reset")
	}
	svc := newTestService(t, remote)
	ctx := context.Background()

	perm, err := svc.Permission(ctx, "acme", "wiki", "alice")
	if err != nil {
		t.Fatalf("Permission() failed: %v", err)
	}
	if perm.Level != "read" || perm.Determined {
		t.Errorf("perm = %+v, want undetermined read-only", perm)
	}

	// Indeterminate results are not cached: the next lookup tries again.
	if _, err := svc.Permission(ctx, "acme", "wiki", "alice"); err != nil {
		t.Fatal(err)
	}
	if remote.count("GetPermission") != 2 {
		t.Errorf("remote saw %d permission calls, want 2", remote.count("GetPermission"))
	}
}

func TestPermission_InvalidateForcesRefetch(t *testing.T) {
	remote := newFakeRemote()
	level := "write"
	remote.getPermission = func(owner, repo, login string) (string, *github.User, error) {
		return level, &github.User{ID: 42, Login: login}, nil
	}
	svc := newTestService(t, remote)
	ctx := context.Background()

	if _, err := svc.Permission(ctx, "acme", "wiki", "alice"); err != nil {
		t.Fatal(err)
	}

	level = "read"
	if err := svc.InvalidatePermission(ctx, "acme", "wiki", "alice"); err != nil {
		t.Fatal(err)
	}
	perm, err := svc.Permission(ctx, "acme", "wiki", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if perm.Level != "read" {
		t.Errorf("post-invalidation level = %q, want read", perm.Level)
	}
}

func TestUsernameChange_SupersedesOldLogin(t *testing.T) {
	remote := newFakeRemote()
	remote.getPermission = func(owner, repo, login string) (string, *github.User, error) {
		if login == "alice" {
			return "admin", &github.User{ID: 42, Login: "alice"}, nil
		}
		return "", nil, notFound()
	}
	remote.getUser = func(login string) (*github.User, error) {
		// User 42 renamed themselves to alice-new.
		return &github.User{ID: 42, Login: "alice-new"}, nil
	}
	svc := newTestService(t, remote)
	ctx := context.Background()

	if _, err := svc.Permission(ctx, "acme", "wiki", "alice"); err != nil {
		t.Fatal(err)
	}
	if remote.count("GetPermission") != 1 {
		t.Fatal("permission not primed")
	}

	// Fetching the renamed profile must supersede everything keyed by the
	// old login.
	if _, err := svc.UserProfile(ctx, "alice-new"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Permission(ctx, "acme", "wiki", "alice"); err != nil {
		t.Fatal(err)
	}
	if got := remote.count("GetPermission"); got != 2 {
		t.Errorf("stale old-login permission survived rename; remote calls = %d, want 2", got)
	}
}

func TestUserPullRequests_OverFetchAndFilter(t *testing.T) {
	// 150 PRs: alice authored every third one (50 total).
	all := make([]github.PullRequest, 150)
	for i := range all {
		login := "bob"
		if i%3 == 0 {
			login = "alice"
		}
		all[i] = github.PullRequest{Number: i + 1, User: github.User{Login: login}}
	}

	remote := newFakeRemote()
	remote.listPulls = func(owner, repo string, page, perPage int) ([]github.PullRequest, error) {
		start := (page - 1) * perPage
		if start >= len(all) {
			return nil, nil
		}
		end := start + perPage
		if end > len(all) {
			end = len(all)
		}
		return all[start:end], nil
	}
	svc := newTestService(t, remote)
	ctx := context.Background()

	page1, err := svc.UserPullRequests(ctx, "acme", "wiki", "alice", 1, 10)
	if err != nil {
		t.Fatalf("UserPullRequests() failed: %v", err)
	}
	if len(page1.Items) != 10 {
		t.Fatalf("page 1 has %d items, want 10", len(page1.Items))
	}
	for _, pr := range page1.Items {
		if pr.User.Login != "alice" {
			t.Errorf("foreign author %q leaked into filtered page", pr.User.Login)
		}
	}
	if !page1.HasMore {
		t.Error("HasMore = false with 50 authored PRs and page size 10")
	}

	// Last page: 50 authored PRs -> page 5 of 10 is full but final.
	page5, err := svc.UserPullRequests(ctx, "acme", "wiki", "alice", 5, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(page5.Items) != 10 || page5.HasMore {
		t.Errorf("page 5: %d items, HasMore=%v; want 10, false", len(page5.Items), page5.HasMore)
	}

	// Beyond the end: empty page, no more.
	page6, err := svc.UserPullRequests(ctx, "acme", "wiki", "alice", 6, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(page6.Items) != 0 || page6.HasMore {
		t.Errorf("page 6: %d items, HasMore=%v; want 0, false", len(page6.Items), page6.HasMore)
	}
}

func TestUserPullRequests_CachesPage(t *testing.T) {
	remote := newFakeRemote()
	remote.listPulls = func(owner, repo string, page, perPage int) ([]github.PullRequest, error) {
		return []github.PullRequest{{Number: 1, User: github.User{Login: "alice"}}}, nil
	}
	svc := newTestService(t, remote)
	ctx := context.Background()

	if _, err := svc.UserPullRequests(ctx, "acme", "wiki", "alice", 1, 10); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UserPullRequests(ctx, "acme", "wiki", "alice", 1, 10); err != nil {
		t.Fatal(err)
	}
	if got := remote.count("ListPulls"); got != 1 {
		t.Errorf("remote saw %d list calls, want 1", got)
	}
}

func TestForkStatus(t *testing.T) {
	tests := []struct {
		name string
		repo *github.Repo
		err  error
		want ForkStatus
	}{
		{
			name: "noRepo",
			err:  notFound(),
			want: ForkStatus{},
		},
		{
			name: "sameNameNotAFork",
			repo: &github.Repo{FullName: "alice/wiki", Fork: false},
			want: ForkStatus{},
		},
		{
			name: "forkOfSomethingElse",
			repo: &github.Repo{FullName: "alice/wiki", Fork: true, Parent: &github.Repo{FullName: "other/wiki"}},
			want: ForkStatus{},
		},
		{
			name: "realFork",
			repo: &github.Repo{FullName: "alice/wiki", Fork: true, DefaultBranch: "main", Parent: &github.Repo{FullName: "acme/wiki"}},
			want: ForkStatus{Exists: true, FullName: "alice/wiki", DefaultBranch: "main"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := newFakeRemote()
			remote.getRepo = func(owner, repo string) (*github.Repo, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return tt.repo, nil
			}
			svc := newTestService(t, remote)

			status, err := svc.ForkStatus(context.Background(), "acme", "wiki", "alice")
			if err != nil {
				t.Fatalf("ForkStatus() failed: %v", err)
			}
			if status != tt.want {
				t.Errorf("status = %+v, want %+v", status, tt.want)
			}
		})
	}
}

func TestAvatar_DefaultFallbackIsCached(t *testing.T) {
	remote := newFakeRemote()
	remote.getFile = func(owner, repo, path, ref string) (*github.FileContent, error) {
		return nil, notFound()
	}
	svc := newTestService(t, remote)
	ctx := context.Background()

	url, err := svc.Avatar(ctx, "alice", "https://example.com/default.png")
	if err != nil {
		t.Fatalf("Avatar() failed: %v", err)
	}
	if url != "https://example.com/default.png" {
		t.Errorf("url = %q, want default", url)
	}

	// The miss is cached: a repeat lookup stays local.
	if _, err := svc.Avatar(ctx, "alice", "x"); err != nil {
		t.Fatal(err)
	}
	if got := remote.count("GetFile"); got != 1 {
		t.Errorf("remote saw %d calls, want 1", got)
	}
}

func TestUploadAvatar_InvalidatesCaches(t *testing.T) {
	remote := newFakeRemote()
	files := map[string]string{}
	remote.getFile = func(owner, repo, path, ref string) (*github.FileContent, error) {
		content, ok := files[path]
		if !ok {
			return nil, notFound()
		}
		return &github.FileContent{Path: path, SHA: "sha-" + path, Content: content}, nil
	}
	remote.putFile = func(owner, repo, path string, opts github.PutFileOptions) (*github.FileContent, error) {
		files[path] = opts.Content
		return &github.FileContent{Path: path, SHA: "new-" + path}, nil
	}
	svc := newTestService(t, remote)
	ctx := context.Background()

	// Prime the negative entry, then upload.
	if _, err := svc.Avatar(ctx, "alice", "default"); err != nil {
		t.Fatal(err)
	}
	if err := svc.UploadAvatar(ctx, "alice", "https://img.example.com/alice.png"); err != nil {
		t.Fatalf("UploadAvatar() failed: %v", err)
	}

	url, err := svc.Avatar(ctx, "alice", "default")
	if err != nil {
		t.Fatal(err)
	}
	if url != "https://img.example.com/alice.png" {
		t.Errorf("post-upload url = %q", url)
	}

	registry, err := svc.AvatarRegistry(ctx)
	if err != nil {
		t.Fatalf("AvatarRegistry() failed: %v", err)
	}
	if registry["alice"] != "https://img.example.com/alice.png" {
		t.Errorf("registry = %v", registry)
	}
}

func TestDonatorStatus(t *testing.T) {
	remote := newFakeRemote()
	donators := `["alice"]`
	remote.getFile = func(owner, repo, path, ref string) (*github.FileContent, error) {
		return &github.FileContent{Path: path, SHA: "dsha", Content: donators}, nil
	}
	remote.putFile = func(owner, repo, path string, opts github.PutFileOptions) (*github.FileContent, error) {
		donators = opts.Content
		return &github.FileContent{Path: path, SHA: "dsha2"}, nil
	}
	svc := newTestService(t, remote)
	ctx := context.Background()

	if got, _ := svc.DonatorStatus(ctx, "alice"); !got {
		t.Error("alice should be a donator")
	}
	if got, _ := svc.DonatorStatus(ctx, "bob"); got {
		t.Error("bob should not be a donator")
	}

	if err := svc.SetDonatorStatus(ctx, "bob", true); err != nil {
		t.Fatalf("SetDonatorStatus() failed: %v", err)
	}
	if got, _ := svc.DonatorStatus(ctx, "bob"); !got {
		t.Error("bob's new donator flag not visible after write")
	}
}

func TestBuild_CachedForever(t *testing.T) {
	remote := newFakeRemote()
	remote.getFile = func(owner, repo, path, ref string) (*github.FileContent, error) {
		if remote.count("GetFile") > 1 {
			return nil, errors.New(errors.ErrCodeNetwork, "immutable build refetched")
		}
		return &github.FileContent{Path: path, SHA: "b", Content: `{"id":"b1","title":"Tower","author":"alice","data":{}}`}, nil
	}
	svc := newTestService(t, remote)
	ctx := context.Background()

	first, err := svc.Build(ctx, "b1")
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	second, err := svc.Build(ctx, "b1")
	if err != nil {
		t.Fatalf("second Build() failed: %v", err)
	}
	if first.Title != "Tower" || second.Title != "Tower" {
		t.Errorf("builds = %+v, %+v", first, second)
	}
}

func TestBuildIndex_BustForcesRefetch(t *testing.T) {
	remote := newFakeRemote()
	index := `[{"id":"b1","title":"Tower","author":"alice"}]`
	remote.getFile = func(owner, repo, path, ref string) (*github.FileContent, error) {
		return &github.FileContent{Path: path, SHA: "i", Content: index}, nil
	}
	svc := newTestService(t, remote)
	ctx := context.Background()

	first, err := svc.BuildIndex(ctx)
	if err != nil {
		t.Fatalf("BuildIndex() failed: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("index has %d entries, want 1", len(first))
	}

	index = `[{"id":"b1","title":"Tower","author":"alice"},{"id":"b2","title":"Spire","author":"bob"}]`

	// Still cached until busted.
	cached, _ := svc.BuildIndex(ctx)
	if len(cached) != 1 {
		t.Errorf("index refetched without a bust: %d entries", len(cached))
	}

	if err := svc.BustBuildIndex(ctx); err != nil {
		t.Fatal(err)
	}
	fresh, err := svc.BuildIndex(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(fresh) != 2 {
		t.Errorf("post-bust index has %d entries, want 2", len(fresh))
	}
}

func TestStats(t *testing.T) {
	remote := newFakeRemote()
	remote.getFile = func(owner, repo, path, ref string) (*github.FileContent, error) {
		return &github.FileContent{Path: path, SHA: "s", Content: "body"}, nil
	}
	svc := newTestService(t, remote)
	ctx := context.Background()

	if _, err := svc.PageContent(ctx, "acme", "wiki", "home.md", ""); err != nil {
		t.Fatal(err)
	}

	stats := svc.Stats()
	if stats["content"] != 1 {
		t.Errorf("content tier size = %d, want 1", stats["content"])
	}
	if _, ok := stats["permission"]; !ok {
		t.Error("permission tier missing from stats")
	}
}
