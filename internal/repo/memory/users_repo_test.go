package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/blogapi/internal/domain/user"
	"github.com/geocoder89/blogapi/internal/repo/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	r := memory.NewUsersRepo()

	u, err := r.Create(ctx, user.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	byID, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", byID.Email)

	byEmail, err := r.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = r.Create(ctx, user.User{Name: "Other", Email: "ada@example.com"})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	_, err = r.GetByID(ctx, 999)
	assert.ErrorIs(t, err, user.ErrNotFound)
	_, err = r.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestUsersUpdateSwapsEmailIndex(t *testing.T) {
	ctx := context.Background()
	r := memory.NewUsersRepo()

	u, err := r.Create(ctx, user.User{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	updated, err := r.Update(ctx, u.ID, func(cur *user.User) error {
		cur.Email = "lovelace@example.com"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "lovelace@example.com", updated.Email)

	_, err = r.GetByEmail(ctx, "ada@example.com")
	assert.ErrorIs(t, err, user.ErrNotFound)

	// the old address is free again
	_, err = r.Create(ctx, user.User{Name: "New", Email: "ada@example.com"})
	assert.NoError(t, err)
}

func TestUsersUpdateFailureLeavesUserUntouched(t *testing.T) {
	ctx := context.Background()
	r := memory.NewUsersRepo()

	ada, err := r.Create(ctx, user.User{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	_, err = r.Create(ctx, user.User{Name: "Grace", Email: "grace@example.com"})
	require.NoError(t, err)

	_, err = r.Update(ctx, ada.ID, func(cur *user.User) error {
		cur.Name = "Changed"
		cur.Email = "grace@example.com"
		return nil
	})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	boom := errors.New("boom")
	_, err = r.Update(ctx, ada.ID, func(cur *user.User) error {
		cur.Name = "Changed"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := r.GetByID(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "ada@example.com", got.Email)

	_, err = r.Update(ctx, 404, func(*user.User) error { return nil })
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestUsersUpdateDoesNotBlockReadersDuringMutate(t *testing.T) {
	ctx := context.Background()
	r := memory.NewUsersRepo()

	u, err := r.Create(ctx, user.User{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	inMutate := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		_, err := r.Update(ctx, u.ID, func(cur *user.User) error {
			close(inMutate)
			<-release
			cur.Name = "Ada Lovelace"
			return nil
		})
		done <- err
	}()

	<-inMutate

	read := make(chan error, 1)
	go func() {
		_, err := r.GetByEmail(ctx, "ada@example.com")
		read <- err
	}()

	select {
	case err := <-read:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("GetByEmail blocked while mutate was running")
	}

	close(release)
	require.NoError(t, <-done)

	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.Name)
}

func TestUsersUpdateRerunsMutateAfterConcurrentChange(t *testing.T) {
	ctx := context.Background()
	r := memory.NewUsersRepo()

	u, err := r.Create(ctx, user.User{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	calls := 0
	updated, err := r.Update(ctx, u.ID, func(cur *user.User) error {
		calls++
		if calls == 1 {
			// another writer lands between the read and the swap
			_, err := r.Update(ctx, u.ID, func(other *user.User) error {
				other.Email = "lovelace@example.com"
				return nil
			})
			require.NoError(t, err)
		}
		cur.Name = "Ada L."
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, "Ada L.", updated.Name)
	assert.Equal(t, "lovelace@example.com", updated.Email)
}
