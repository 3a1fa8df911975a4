package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{
			name: "structured error",
			err:  New(ErrCodeNotFound, "missing"),
			want: ErrCodeNotFound,
		},
		{
			name: "wrapped structured error",
			err:  fmt.Errorf("fetch: %w", New(ErrCodeInvalidPath, "bad path")),
			want: ErrCodeInvalidPath,
		},
		{
			name: "rate limit error reports its own code",
			err:  &RateLimitedError{RetryAfter: 30},
			want: ErrCodeRateLimited,
		},
		{
			name: "conflict error reports its own code",
			err:  &ConflictError{Path: "home.md"},
			want: ErrCodeConflict,
		},
		{
			name: "wrapped rate limit error",
			err:  fmt.Errorf("read page: %w", &RateLimitedError{Remaining: 0}),
			want: ErrCodeRateLimited,
		},
		{
			name: "outer structured error wins over inner coded error",
			err:  Wrap(ErrCodeNetwork, &RateLimitedError{}, "request failed"),
			want: ErrCodeNetwork,
		},
		{
			name: "plain error has no code",
			err:  fmt.Errorf("boom"),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	if !Is(New(ErrCodeConflict, "edit raced"), ErrCodeConflict) {
		t.Error("Is() should match a structured error's code")
	}
	if !Is(&RateLimitedError{RetryAfter: 10}, ErrCodeRateLimited) {
		t.Error("Is() should match a rate limit error")
	}
	if !Is(&ConflictError{}, ErrCodeConflict) {
		t.Error("Is() should match a conflict error")
	}
	if Is(fmt.Errorf("boom"), ErrCodeInternal) {
		t.Error("Is() should not match a plain error")
	}
	if Is(fmt.Errorf("boom"), "") {
		t.Error("Is() with an empty code should never match")
	}
}

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		login   string
		wantErr bool
	}{
		{login: "alice", wantErr: false},
		{login: "a", wantErr: false},
		{login: "alice-smith", wantErr: false},
		{login: "a-b-c-d", wantErr: false},
		{login: "Alice42", wantErr: false},
		{login: strings.Repeat("a", 39), wantErr: false},
		{login: "", wantErr: true},
		{login: "-alice", wantErr: true},
		{login: "alice-", wantErr: true},
		{login: "alice--smith", wantErr: true},
		{login: "alice smith", wantErr: true},
		{login: "alice/smith", wantErr: true},
		{login: strings.Repeat("a", 40), wantErr: true},
	}

	for _, tt := range tests {
		name := tt.login
		if name == "" {
			name = "(empty)"
		}
		t.Run(name, func(t *testing.T) {
			err := ValidateLogin(tt.login)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ValidateLogin(%q) should fail", tt.login)
				}
				if !Is(err, ErrCodeInvalidLogin) {
					t.Errorf("error code = %q, want %q", GetCode(err), ErrCodeInvalidLogin)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateLogin(%q) failed: %v", tt.login, err)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeNotFound, "page not found")); got != "page not found" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(fmt.Errorf("boom")); got != "boom" {
		t.Errorf("UserMessage() = %q", got)
	}
}
