package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
)

func newUser(email string) services.UserInput {
	return services.UserInput{Name: "Dana", Email: email, Password: "hunter22", Phone: "+351900000000"}
}

func TestRegisterNeverGrantsAdmin(t *testing.T) {
	svc := services.NewUserService(repositories.NewMemoryStore())
	in := newUser("dana@example.com")
	in.IsAdmin = true

	u, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, u.IsAdmin)
	assert.NotEqual(t, in.Password, u.PasswordHash)

	admin, err := svc.Create(context.Background(), func() services.UserInput {
		a := newUser("ops@example.com")
		a.IsAdmin = true
		return a
	}())
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
}

func TestDuplicateEmail(t *testing.T) {
	svc := services.NewUserService(repositories.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Register(ctx, newUser("dana@example.com"))
	require.NoError(t, err)
	_, err = svc.Register(ctx, newUser("Dana@Example.com"))

	var se *services.Error
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, services.ErrValidation)
	assert.Contains(t, se.Fields, "email")
}

func TestLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "user-service-test")
	svc := services.NewUserService(repositories.NewMemoryStore())
	ctx := context.Background()

	u, err := svc.Register(ctx, newUser("dana@example.com"))
	require.NoError(t, err)

	res, err := svc.Login(ctx, services.LoginInput{Email: "dana@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", res.Email)

	claims, err := auth.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), claims.UserID)
	assert.False(t, claims.IsAdmin)

	_, err = svc.Login(ctx, services.LoginInput{Email: "dana@example.com", Password: "wrong-one"})
	require.ErrorIs(t, err, services.ErrNotFound)
	assert.EqualError(t, err, "Invalid Password")

	_, err = svc.Login(ctx, services.LoginInput{Email: "nobody@example.com", Password: "hunter22"})
	require.ErrorIs(t, err, services.ErrNotFound)
	assert.EqualError(t, err, "User not found")
}

func TestUserReadsAndDelete(t *testing.T) {
	svc := services.NewUserService(repositories.NewMemoryStore())
	ctx := context.Background()

	u, err := svc.Register(ctx, newUser("dana@example.com"))
	require.NoError(t, err)
	_, err = svc.Register(ctx, newUser("eli@example.com"))
	require.NoError(t, err)

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err := svc.Get(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", got.Email)

	require.NoError(t, svc.Delete(ctx, u.ID.Hex()))
	assert.ErrorIs(t, svc.Delete(ctx, u.ID.Hex()), services.ErrNotFound)
	_, err = svc.Get(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = svc.Register(ctx, services.UserInput{Email: "bad"})
	assert.ErrorIs(t, err, services.ErrValidation)
}
