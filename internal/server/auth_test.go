package server

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/open-wander/samplerate/internal/config"
)

func TestParseHtpasswd(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantUsers   int
		wantErr     bool
		errContains string
	}{
		{
			name:      "valid bcrypt user",
			content:   `testuser:$2y$05$abcdefghijklmnopqrstuv1234567890123456789012345678`,
			wantUsers: 1,
		},
		{
			name: "multiple valid users",
			content: `user1:$2y$05$abcdefghijklmnopqrstuv1234567890123456789012345678
user2:$2a$10$abcdefghijklmnopqrstuv1234567890123456789012345678`,
			wantUsers: 2,
		},
		{
			name: "skip empty lines and comments",
			content: `# This is a comment
user1:$2y$05$abcdefghijklmnopqrstuv1234567890123456789012345678

user2:$2a$10$abcdefghijklmnopqrstuv1234567890123456789012345678`,
			wantUsers: 2,
		},
		{
			name: "skip apr1 hash",
			content: `user1:$apr1$abcdefgh$1234567890123456789012
user2:$2y$05$abcdefghijklmnopqrstuv1234567890123456789012345678`,
			wantUsers: 1,
		},
		{
			name: "skip line without colon",
			content: `justauser
user2:$2y$05$abcdefghijklmnopqrstuv1234567890123456789012345678`,
			wantUsers: 1,
		},
		{
			name:        "no valid users",
			content:     `user1:invalidhash`,
			wantErr:     true,
			errContains: "no valid users",
		},
		{
			name:        "empty file",
			content:     "",
			wantErr:     true,
			errContains: "no valid users",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "htpasswd")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			users, err := parseHtpasswd(path)

			if tt.wantErr {
				if err == nil {
					t.Fatal("parseHtpasswd() expected error but got none")
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("parseHtpasswd() error = %v, want error containing %q", err, tt.errContains)
				}
				return
			}

			if err != nil {
				t.Fatalf("parseHtpasswd() unexpected error = %v", err)
			}
			if len(users) != tt.wantUsers {
				t.Errorf("parseHtpasswd() got %d users, want %d", len(users), tt.wantUsers)
			}
		})
	}
}

func TestParseHtpasswdFileNotFound(t *testing.T) {
	_, err := parseHtpasswd(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Error("parseHtpasswd() expected error for missing file")
	}
}

func TestVerifyPassword(t *testing.T) {
	password := "testpassword"
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		plaintext string
		hashed    string
		want      bool
	}{
		{"correct password", password, string(hash), true},
		{"wrong password", "wrongpassword", string(hash), false},
		{"empty password", "", string(hash), false},
		{"non-bcrypt hash", password, "$apr1$abcdefgh$1234567890123456789012", false},
		{"plaintext stored", password, password, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := verifyPassword(tt.plaintext, tt.hashed); got != tt.want {
				t.Errorf("verifyPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	htpasswd := filepath.Join(t.TempDir(), "htpasswd")
	if err := os.WriteFile(htpasswd, []byte("alice:"+string(hash)+"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		cfg        config.Config
		path       string
		user, pass string
		wantStatus int
	}{
		{"no auth configured", config.Config{}, "/api/patterns", "", "", 200},
		{"plain credentials accepted", config.Config{AuthUser: "bob", AuthPass: "pw"}, "/api/patterns", "bob", "pw", 200},
		{"plain credentials rejected", config.Config{AuthUser: "bob", AuthPass: "pw"}, "/api/patterns", "bob", "bad", 401},
		{"missing credentials", config.Config{AuthUser: "bob", AuthPass: "pw"}, "/api/patterns", "", "", 401},
		{"htpasswd accepted", config.Config{HtpasswdFile: htpasswd}, "/api/patterns", "alice", "s3cret", 200},
		{"htpasswd rejected", config.Config{HtpasswdFile: htpasswd}, "/api/patterns", "alice", "nope", 401},
		{"health skips auth", config.Config{AuthUser: "bob", AuthPass: "pw"}, "/healthz", "", "", 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			srv := New(&cfg, nil)

			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.user != "" {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			resp, err := srv.app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("GET %s status = %d, want %d", tt.path, resp.StatusCode, tt.wantStatus)
			}
		})
	}
}
