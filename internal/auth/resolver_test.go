package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Omarhersan/todoApp/internal/domain"
)

type fakeUserRepo struct {
	byID    map[uint]*domain.User
	byPhone map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{byID: map[uint]*domain.User{}, byPhone: map[string]*domain.User{}}
	for _, u := range users {
		repo.byID[u.ID] = u
		repo.byPhone[u.Phone] = u
	}
	return repo
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = uint(len(f.byID) + 1)
	f.byID[user.ID] = user
	f.byPhone[user.Phone] = user
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uint) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByPhone(_ context.Context, phone string) (*domain.User, error) {
	if u, ok := f.byPhone[phone]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func TestCookieResolver(t *testing.T) {
	resolver := CookieResolver{}

	r := httptest.NewRequest(http.MethodGet, "/todos", nil)
	_, err := resolver.ResolveUserID(r)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	r = httptest.NewRequest(http.MethodGet, "/todos", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "17"})
	id, err := resolver.ResolveUserID(r)
	require.NoError(t, err)
	assert.Equal(t, uint(17), id)

	r = httptest.NewRequest(http.MethodGet, "/todos", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not-a-number"})
	_, err = resolver.ResolveUserID(r)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestHeaderResolverPhone(t *testing.T) {
	resolver := HeaderResolver{Users: newFakeUserRepo(&domain.User{ID: 3, Name: "Ana", Phone: "5551234"})}

	r := httptest.NewRequest(http.MethodGet, "/external/todos", nil)
	_, err := resolver.ResolveUserID(r)
	assert.ErrorIs(t, err, ErrMissingIdentity)

	r = httptest.NewRequest(http.MethodGet, "/external/todos", nil)
	r.Header.Set("x-user-phone", "5551234")
	id, err := resolver.ResolveUserID(r)
	require.NoError(t, err)
	assert.Equal(t, uint(3), id)

	r = httptest.NewRequest(http.MethodGet, "/external/todos", nil)
	r.Header.Set("x-user-phone", "0000000")
	_, err = resolver.ResolveUserID(r)
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestHeaderResolverID(t *testing.T) {
	resolver := HeaderResolver{Users: newFakeUserRepo(&domain.User{ID: 3, Name: "Ana", Phone: "5551234"})}

	r := httptest.NewRequest(http.MethodGet, "/external/todos", nil)
	r.Header.Set("x-user-id", "3")
	id, err := resolver.ResolveUserID(r)
	require.NoError(t, err)
	assert.Equal(t, uint(3), id)

	r = httptest.NewRequest(http.MethodGet, "/external/todos", nil)
	r.Header.Set("x-user-id", "99")
	_, err = resolver.ResolveUserID(r)
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestSessionCookieRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, 42, false)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, SessionCookieName, cookie.Name)
	assert.Equal(t, "42", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, 7*24*60*60, cookie.MaxAge)
	assert.False(t, cookie.Secure)

	rec = httptest.NewRecorder()
	ClearSessionCookie(rec)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)
}
