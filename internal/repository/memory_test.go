package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/astrochat/astrochat-backend/internal/domain"
	"github.com/astrochat/astrochat-backend/internal/repository"
)

func TestMemoryUserStoreUniqueness(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryUserStore()

	created, err := store.Create(ctx, domain.User{Email: "a@x.com"})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	_, err = store.Create(ctx, domain.User{Email: "a@x.com"})
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = store.Create(ctx, domain.User{Phone: "9999999999"})
	require.NoError(t, err)
	_, err = store.Create(ctx, domain.User{Phone: "9999999999"})
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = store.Create(ctx, domain.User{GoogleSubject: "sub-1"})
	require.NoError(t, err)
	_, err = store.Create(ctx, domain.User{GoogleSubject: "sub-1"})
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestMemoryUserStoreLookups(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryUserStore()

	created, err := store.Create(ctx, domain.User{Email: "a@x.com", Phone: "9999999999"})
	require.NoError(t, err)

	byEmail, err := store.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)

	byPhone, err := store.FindByPhone(ctx, "9999999999")
	require.NoError(t, err)
	require.Equal(t, created.ID, byPhone.ID)

	_, err = store.FindByEmail(ctx, "missing@x.com")
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.FindByGoogleSubject(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryUserStoreVerifyAndProfile(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryUserStore()

	created, err := store.Create(ctx, domain.User{Email: "a@x.com"})
	require.NoError(t, err)
	require.False(t, created.Verified)

	require.NoError(t, store.MarkVerified(ctx, created.ID))
	reloaded, err := store.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, reloaded.Verified)

	require.NoError(t, store.UpdateProfile(ctx, created.ID, domain.Profile{Name: "Aditi", BirthDate: "1995-04-12"}))
	require.NoError(t, store.UpdateProfile(ctx, created.ID, domain.Profile{BirthTime: "06:45", BirthPlace: "Pune"}))

	reloaded, err = store.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "Aditi", reloaded.Profile.Name)
	require.True(t, reloaded.Profile.Complete())

	require.ErrorIs(t, store.MarkVerified(ctx, uuid.New()), domain.ErrNotFound)
	require.ErrorIs(t, store.UpdateProfile(ctx, uuid.New(), domain.Profile{Name: "x"}), domain.ErrNotFound)
}

func TestMemoryChallengeStore(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryChallengeStore()

	_, err := store.Get(ctx, domain.IdentifierEmail, "a@x.com")
	require.ErrorIs(t, err, domain.ErrNotFound)

	challenge := domain.Challenge{Kind: domain.IdentifierEmail, Identifier: "a@x.com", Code: "123456"}
	require.NoError(t, store.Save(ctx, challenge))

	got, err := store.Get(ctx, domain.IdentifierEmail, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "123456", got.Code)

	// Same identifier under a different kind is a separate challenge.
	_, err = store.Get(ctx, domain.IdentifierPhone, "a@x.com")
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Delete(ctx, domain.IdentifierEmail, "a@x.com"))
	_, err = store.Get(ctx, domain.IdentifierEmail, "a@x.com")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryChatStoreOrdering(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryChatStore()
	userID := uuid.New()

	for _, msg := range []string{"one", "two", "three"} {
		_, err := store.Append(ctx, domain.ChatEntry{UserID: userID, Message: msg})
		require.NoError(t, err)
	}

	entries, err := store.ListFor(ctx, userID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "one", entries[0].Message)
	require.Equal(t, "three", entries[2].Message)

	other, err := store.ListFor(ctx, uuid.New())
	require.NoError(t, err)
	require.Empty(t, other)
}
