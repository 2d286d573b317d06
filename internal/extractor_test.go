package internal_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/internal"
)

func newRequest(r *http.Request) *internal.Request {
	return internal.NewRequest(r, "/")
}

func TestExtractor(t *testing.T) {
	t.Parallel()

	t.Run("empty sources returns false", func(t *testing.T) {
		t.Parallel()

		ext := internal.NewExtractor()
		v, ok := ext.Extract(newRequest(httptest.NewRequest(http.MethodGet, "/", nil)))
		require.False(t, ok)
		require.Empty(t, v)
	})

	t.Run("nil request", func(t *testing.T) {
		t.Parallel()

		_, ok := internal.NewExtractor(internal.FromQuery("q")).Extract(nil)
		require.False(t, ok)
	})

	t.Run("first source wins", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/?token=from-query", nil)
		req.Header.Set("X-Token", "from-header")

		ext := internal.NewExtractor(
			internal.FromHeader("X-Token"),
			internal.FromQuery("token"),
		)
		v, ok := ext.Extract(newRequest(req))
		require.True(t, ok)
		require.Equal(t, "from-header", v)
	})

	t.Run("falls through empty sources", func(t *testing.T) {
		t.Parallel()

		form := url.Values{"csrf_token": {"from-body"}}
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		ext := internal.NewExtractor(
			internal.FromHeader("X-XSRF-Token"),
			internal.FromHeader("X-CSRF-Token"),
			internal.FromData("csrf_token"),
		)
		v, ok := ext.Extract(newRequest(req))
		require.True(t, ok)
		require.Equal(t, "from-body", v)
	})
}

func TestExtractorSources(t *testing.T) {
	t.Parallel()

	t.Run("cookie", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "tok", Value: "abc"})

		v, ok := internal.FromCookie("tok")(newRequest(req))
		require.True(t, ok)
		require.Equal(t, "abc", v)

		_, ok = internal.FromCookie("missing")(newRequest(req))
		require.False(t, ok)
	})

	t.Run("bearer token", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			header string
			want   string
			ok     bool
		}{
			{"Bearer abc", "abc", true},
			{"bearer abc", "abc", true},
			{"Bearer ", "", false},
			{"Basic abc", "", false},
			{"", "", false},
		}
		for _, tt := range tests {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			v, ok := internal.FromBearerToken()(newRequest(req))
			require.Equal(t, tt.ok, ok, tt.header)
			require.Equal(t, tt.want, v, tt.header)
		}
	})
}
