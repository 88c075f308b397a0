package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestGitLabChecker(t *testing.T, handler http.HandlerFunc) *GitLabAPIChecker {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewGitLabAPIChecker(srv.Client())
	c.baseURL = srv.URL
	return c
}

func TestGitLabAPIChecker_CheckLicense(t *testing.T) {
	tests := []struct {
		name         string
		statusCode   int
		responseBody string
		want         string
		wantErr      bool
	}{
		{"MIT key", http.StatusOK, `{"license": {"key": "mit", "name": "MIT License"}}`, "mit", false},
		{"other falls back to name", http.StatusOK, `{"license": {"key": "other", "name": "Custom Corp License"}}`, "Custom Corp License", false},
		{"no license", http.StatusOK, `{"license": null}`, "", false},
		{"not found", http.StatusNotFound, `{"message": "404 Project Not Found"}`, "", false},
		{"unauthorized", http.StatusUnauthorized, `{}`, "", true},
		{"invalid JSON", http.StatusOK, `nope`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestGitLabChecker(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.responseBody))
			})
			got, err := c.CheckLicense(context.Background(), "gitlab.com", "group/project")
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckLicense() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CheckLicense() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGitLabAPIChecker_RequestShape(t *testing.T) {
	t.Setenv(EnvGitLabToken, "glpat-test")

	var gotURI, gotToken string
	c := newTestGitLabChecker(t, func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		gotToken = r.Header.Get("PRIVATE-TOKEN")
		_, _ = w.Write([]byte(`{"license": {"key": "apache-2.0"}}`))
	})

	if _, err := c.CheckLicense(context.Background(), "gitlab.com", "/group/sub/project/"); err != nil {
		t.Fatal(err)
	}
	if gotURI != "/api/v4/projects/group%2Fsub%2Fproject?license=true" {
		t.Errorf("request URI = %q", gotURI)
	}
	if gotToken != "glpat-test" {
		t.Errorf("PRIVATE-TOKEN = %q", gotToken)
	}
}
