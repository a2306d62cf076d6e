package token

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"identity-service/internal/auth"
	"identity-service/internal/auth/authtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefresh_RotatesAndRejectsReplay(t *testing.T) {
	store := authtest.NewStore()
	u := seedUser(store, auth.RoleUser)
	issuer := testIssuer(t, store)
	refresher := NewRefresher(issuer, store)
	ctx := context.Background()

	original, err := issuer.Issue(ctx, u)
	require.NoError(t, err)

	rotated, err := refresher.Refresh(ctx, original.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, original.RefreshToken, rotated.RefreshToken)

	_, err = refresher.Refresh(ctx, original.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	// the successor stays usable exactly once
	next, err := refresher.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)
	_, err = refresher.Refresh(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = issuer.ParseAccess(next.AccessToken)
	assert.NoError(t, err)
}

func TestRefresh_Expired(t *testing.T) {
	store := authtest.NewStore()
	u := seedUser(store, auth.RoleUser)
	issuer := testIssuer(t, store)
	refresher := NewRefresher(issuer, store)

	issuer.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	pair, err := issuer.Issue(context.Background(), u)
	require.NoError(t, err)
	issuer.now = time.Now

	_, err = refresher.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRefresh_DeletedIdentity(t *testing.T) {
	store := authtest.NewStore()
	u := seedUser(store, auth.RoleUser)
	issuer := testIssuer(t, store)
	refresher := NewRefresher(issuer, store)
	ctx := context.Background()

	pair, err := issuer.Issue(ctx, u)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, u.ID))

	_, err = refresher.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	store := authtest.NewStore()
	u := seedUser(store, auth.RoleUser)
	issuer := testIssuer(t, store)
	refresher := NewRefresher(issuer, store)

	pair, err := issuer.Issue(context.Background(), u)
	require.NoError(t, err)

	_, err = refresher.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRevoke(t *testing.T) {
	store := authtest.NewStore()
	u := seedUser(store, auth.RoleUser)
	issuer := testIssuer(t, store)
	refresher := NewRefresher(issuer, store)
	ctx := context.Background()

	pair, err := issuer.Issue(ctx, u)
	require.NoError(t, err)
	require.NoError(t, refresher.Revoke(ctx, u.ID))

	_, err = refresher.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

// racedStore rotates the slot right after a lookup, as a concurrent
// refresh landing between the check and the write would.
type racedStore struct {
	*authtest.Store
}

func (s racedStore) FindByID(ctx context.Context, id string) (*auth.User, error) {
	u, err := s.Store.FindByID(ctx, id)
	if u != nil {
		_ = s.Store.UpdateRefreshToken(ctx, id, "rotated-elsewhere")
	}
	return u, err
}

func TestRefresh_LosesRaceWithConcurrentRotation(t *testing.T) {
	store := authtest.NewStore()
	u := seedUser(store, auth.RoleUser)
	issuer := testIssuer(t, store)
	ctx := context.Background()

	pair, err := issuer.Issue(ctx, u)
	require.NoError(t, err)

	_, err = NewRefresher(issuer, racedStore{store}).Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	stored, err := store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "rotated-elsewhere", stored.RefreshToken)
}

func TestRefresh_ConcurrentSingleWinner(t *testing.T) {
	store := authtest.NewStore()
	u := seedUser(store, auth.RoleUser)
	issuer := testIssuer(t, store)
	refresher := NewRefresher(issuer, store)
	ctx := context.Background()

	pair, err := issuer.Issue(ctx, u)
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := refresher.Refresh(ctx, pair.RefreshToken); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}
