package provider

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const testClientID = "identity-client"

// fakeIdP answers the token endpoint with an RS256 id_token when the
// expected code and PKCE verifier are presented.
type fakeIdP struct {
	srv      *httptest.Server
	key      *rsa.PrivateKey
	claims   jwt.MapClaims
	verifier string
}

func newFakeIdP(t *testing.T) *fakeIdP {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	f := &fakeIdP{key: key, verifier: "the-verifier"}
	f.srv = httptest.NewServer(http.HandlerFunc(f.token))
	t.Cleanup(f.srv.Close)

	f.claims = jwt.MapClaims{
		"iss":            f.srv.URL,
		"aud":            testClientID,
		"sub":            "8842",
		"email":          "grace@example.com",
		"email_verified": true,
		"given_name":     "Grace",
		"exp":            time.Now().Add(time.Hour).Unix(),
		"iat":            time.Now().Unix(),
	}
	return f
}

func (f *fakeIdP) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("code") != "good-code" || r.PostForm.Get("code_verifier") != f.verifier {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
		return
	}

	idToken, err := jwt.NewWithClaims(jwt.SigningMethodRS256, f.claims).SignedString(f.key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token": "at",
		"token_type":   "Bearer",
		"expires_in":   300,
		"id_token":     idToken,
	})
}

func (f *fakeIdP) client() *OIDCClient {
	cfg := &oauth2.Config{
		ClientID:    testClientID,
		RedirectURL: "http://localhost/oauth/callback/fake",
		Endpoint: oauth2.Endpoint{
			AuthURL:  f.srv.URL + "/auth",
			TokenURL: f.srv.URL + "/token",
		},
		Scopes: DefaultScopes,
	}
	keys := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&f.key.PublicKey}}
	verifier := oidc.NewVerifier(f.srv.URL, keys, &oidc.Config{ClientID: testClientID})
	return NewOIDCClient("fake", cfg, verifier)
}

func TestOIDCClient_AuthCodeURL(t *testing.T) {
	f := newFakeIdP(t)

	raw := f.client().AuthCodeURL("st4te", "ch4llenge")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "st4te", q.Get("state"))
	assert.Equal(t, "ch4llenge", q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, testClientID, q.Get("client_id"))
	assert.Contains(t, q.Get("scope"), oidc.ScopeOpenID)
}

func TestOIDCClient_ExchangeCode(t *testing.T) {
	f := newFakeIdP(t)

	p, err := f.client().ExchangeCode(context.Background(), "good-code", f.verifier)
	require.NoError(t, err)

	assert.Equal(t, "fake", p.Provider)
	assert.Equal(t, "fake|8842", p.ExternalID)
	assert.Equal(t, "grace@example.com", p.Email)
	assert.True(t, p.EmailVerified)
	assert.Equal(t, "Grace", p.GivenName)
}

func TestOIDCClient_ExchangeCode_Rejects(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong verifier", func(t *testing.T) {
		f := newFakeIdP(t)
		_, err := f.client().ExchangeCode(ctx, "good-code", "other")
		assert.Error(t, err)
	})

	t.Run("foreign audience", func(t *testing.T) {
		f := newFakeIdP(t)
		f.claims["aud"] = "someone-else"
		_, err := f.client().ExchangeCode(ctx, "good-code", f.verifier)
		assert.ErrorContains(t, err, "verification failed")
	})

	t.Run("expired id_token", func(t *testing.T) {
		f := newFakeIdP(t)
		f.claims["exp"] = time.Now().Add(-time.Hour).Unix()
		_, err := f.client().ExchangeCode(ctx, "good-code", f.verifier)
		assert.ErrorContains(t, err, "verification failed")
	})

	t.Run("missing email", func(t *testing.T) {
		f := newFakeIdP(t)
		delete(f.claims, "email")
		_, err := f.client().ExchangeCode(ctx, "good-code", f.verifier)
		assert.ErrorContains(t, err, "missing required claims")
	})
}
