package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nattapon/inkwell/internal/models"
	"github.com/nattapon/inkwell/internal/store"
)

// ---------------------------------------------------------------------------
// in-memory fakes
// ---------------------------------------------------------------------------

type fakeUserStore struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeUserStore) CreateUser(_ context.Context, name, email, hashedPw string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return nil, store.ErrConflict
		}
	}
	u := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Password:  hashedPw,
		Posts:     []primitive.ObjectID{},
		CreatedAt: time.Now(),
	}
	f.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetUserByResetToken(_ context.Context, token string) (*models.User, error) {
	for _, u := range f.users {
		if u.ResetToken != "" && u.ResetToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) SetResetToken(_ context.Context, userID primitive.ObjectID, token string, expiresAt time.Time) error {
	u, ok := f.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.ResetToken = token
	u.ResetTokenExpiresAt = expiresAt
	return nil
}

func (f *fakeUserStore) ResetPassword(_ context.Context, userID primitive.ObjectID, newHash string) error {
	u, ok := f.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.Password = newHash
	u.ResetToken = ""
	u.ResetTokenExpiresAt = time.Time{}
	return nil
}

type fakeNotifier struct {
	sent []string // recipient addresses
	body string   // last body
	fail bool
}

func (f *fakeNotifier) Send(to, subject, htmlBody string) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.sent = append(f.sent, to)
	f.body = htmlBody
	return nil
}

func newTestService() (*Service, *fakeUserStore, *fakeNotifier) {
	us := newFakeUserStore()
	nf := &fakeNotifier{}
	return NewService(us, nf, "http://localhost:8080"), us, nf
}

// ---------------------------------------------------------------------------
// tests
// ---------------------------------------------------------------------------

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	svc, us, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ann", "ann@x.com", "pw123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other Ann", "ann@x.com", "different")
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.Len(t, us.users, 1, "no duplicate record may be created")
}

func TestRegister_StoresHashNotPlaintext(t *testing.T) {
	svc, us, _ := newTestService()

	u, err := svc.Register(context.Background(), "Ann", "ann@x.com", "pw123")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", us.users[u.ID].Password)
	assert.NotEmpty(t, us.users[u.ID].Password)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ann", "ann@x.com", "pw123")
	require.NoError(t, err)

	u, err := svc.Login(ctx, "ann@x.com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)

	_, err = svc.Login(ctx, "ann@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@x.com", "pw123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRequestReset_UnknownEmail(t *testing.T) {
	svc, _, nf := newTestService()

	err := svc.RequestReset(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, nf.sent)
}

func TestRequestReset_IssuesStrongTokenAndMailsLink(t *testing.T) {
	svc, us, nf := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "Ann", "ann@x.com", "pw123")
	require.NoError(t, err)
	require.NoError(t, svc.RequestReset(ctx, "ann@x.com"))

	token := us.users[u.ID].ResetToken
	assert.Len(t, token, 64, "32 random bytes, hex encoded")
	assert.WithinDuration(t, time.Now().Add(ResetTokenTTL), us.users[u.ID].ResetTokenExpiresAt, time.Minute)

	require.Equal(t, []string{"ann@x.com"}, nf.sent)
	assert.Contains(t, nf.body, "/reset-password/"+token)
}

func TestRequestReset_NotifierFailureKeepsToken(t *testing.T) {
	svc, us, nf := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "Ann", "ann@x.com", "pw123")
	require.NoError(t, err)

	nf.fail = true
	err = svc.RequestReset(ctx, "ann@x.com")
	assert.ErrorIs(t, err, ErrNotificationFailed)

	first := us.users[u.ID].ResetToken
	assert.NotEmpty(t, first, "token stays persisted even when the mail never left")

	// a retried request overwrites the token
	nf.fail = false
	require.NoError(t, svc.RequestReset(ctx, "ann@x.com"))
	assert.NotEqual(t, first, us.users[u.ID].ResetToken)
}

func TestCompleteReset_MismatchBeforeTokenCheck(t *testing.T) {
	svc, us, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "Ann", "ann@x.com", "pw123")
	require.NoError(t, err)
	before := us.users[u.ID].Password

	// even a garbage token reports the mismatch, not the bad token
	err = svc.CompleteReset(ctx, "no-such-token", "new1", "new2")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Equal(t, before, us.users[u.ID].Password, "password must not change")
}

func TestCompleteReset_InvalidToken(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.CompleteReset(context.Background(), "no-such-token", "new1", "new1")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCompleteReset_TokenIsSingleUse(t *testing.T) {
	svc, us, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "Ann", "ann@x.com", "pw123")
	require.NoError(t, err)
	require.NoError(t, svc.RequestReset(ctx, "ann@x.com"))
	token := us.users[u.ID].ResetToken

	require.NoError(t, svc.CompleteReset(ctx, token, "new1", "new1"))
	assert.Empty(t, us.users[u.ID].ResetToken, "consumed token must be cleared")

	err = svc.CompleteReset(ctx, token, "again", "again")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateResetToken_Expired(t *testing.T) {
	svc, us, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "Ann", "ann@x.com", "pw123")
	require.NoError(t, err)
	require.NoError(t, us.SetResetToken(ctx, u.ID, "stale-token", time.Now().Add(-time.Minute)))

	_, err = svc.ValidateResetToken(ctx, "stale-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateResetToken_Empty(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.ValidateResetToken(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// Full credential-recovery walk: register, login, conflict, reset,
// old password dead, new password live.
func TestResetFlow_EndToEnd(t *testing.T) {
	svc, us, nf := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "Ann", "ann@x.com", "pw123")
	require.NoError(t, err)

	got, err := svc.Login(ctx, "ann@x.com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Register(ctx, "Ann Again", "ann@x.com", "other")
	assert.ErrorIs(t, err, store.ErrConflict)

	require.NoError(t, svc.RequestReset(ctx, "ann@x.com"))
	require.Len(t, nf.sent, 1)
	token := us.users[u.ID].ResetToken

	require.NoError(t, svc.CompleteReset(ctx, token, "new1", "new1"))

	_, err = svc.Login(ctx, "ann@x.com", "pw123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	got, err = svc.Login(ctx, "ann@x.com", "new1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Name)
}

func TestNewResetToken_Unique(t *testing.T) {
	a, err := newResetToken()
	require.NoError(t, err)
	b, err := newResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 64)
}
