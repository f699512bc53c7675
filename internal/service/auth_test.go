package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"recipeshare/internal/auth"
	"recipeshare/internal/models"
	"recipeshare/internal/store"
)

type authFixture struct {
	users   *store.MemoryCollection
	recipes *store.MemoryCollection
	auth    AuthService
	recipe  RecipeService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	users := store.NewMemoryCollection("username")
	recipes := store.NewMemoryCollection()

	tokens, err := auth.NewTokenService([]byte("test-secret"), "HS256", time.Hour)
	require.NoError(t, err)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	logger := zap.NewNop()

	return &authFixture{
		users:   users,
		recipes: recipes,
		auth:    NewAuthService(users, recipes, hasher, tokens, logger),
		recipe:  NewRecipeService(recipes, logger),
	}
}

// userID digs the generated id out of the store; registration responses
// deliberately do not expose it.
func (f *authFixture) userID(t *testing.T, username string) string {
	t.Helper()
	raw, err := f.users.FindOne(context.Background(), store.Filter{Eq: map[string]string{"username": username}})
	require.NoError(t, err)
	var user models.User
	require.NoError(t, json.Unmarshal(raw, &user))
	return user.ID
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newAuthFixture(t)

	identity, err := f.auth.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)

	token, err := f.auth.Login(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)
	require.NotEmpty(t, token.AccessToken)

	resolved, err := f.auth.Resolve(ctx, token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", resolved.Username)
}

func TestAuthService_RegisterStoresHashOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newAuthFixture(t)

	_, err := f.auth.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	raw, err := f.users.FindOne(ctx, store.Filter{Eq: map[string]string{"username": "alice"}})
	require.NoError(t, err)
	var user models.User
	require.NoError(t, json.Unmarshal(raw, &user))
	assert.NotEqual(t, "pw1", user.Password)
	assert.NotEmpty(t, user.Password)
}

func TestAuthService_DuplicateUsername(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newAuthFixture(t)

	_, err := f.auth.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, err = f.auth.Register(ctx, "alice", "other")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	// No partial record left behind.
	docs, err := f.users.FindMany(ctx, store.Filter{Eq: map[string]string{"username": "alice"}})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newAuthFixture(t)

	_, err := f.auth.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, wrongPassword := f.auth.Login(ctx, "alice", "wrong")
	_, unknownUser := f.auth.Login(ctx, "nobody", "pw1")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
}

func TestAuthService_ResolveFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newAuthFixture(t)

	_, err := f.auth.Resolve(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Token for an identity that no longer exists.
	_, err = f.auth.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	token, err := f.auth.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, err = f.users.DeleteConditional(ctx, store.Filter{Eq: map[string]string{"username": "alice"}})
	require.NoError(t, err)

	_, err = f.auth.Resolve(ctx, token.AccessToken)
	assert.ErrorIs(t, err, ErrUnknownIdentity)
}

func TestAuthService_DeleteAccountRejectsMalformedID(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	err := f.auth.DeleteAccount(context.Background(), &models.Identity{Username: "alice"}, "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestAuthService_DeleteAccountIsSelfOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newAuthFixture(t)

	_, err := f.auth.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	_, err = f.auth.Register(ctx, "bob", "pw2")
	require.NoError(t, err)

	// Bob presenting Alice's id matches nothing.
	err = f.auth.DeleteAccount(ctx, &models.Identity{Username: "bob"}, f.userID(t, "alice"))
	assert.ErrorIs(t, err, ErrNotFound)

	// A random id matches nothing either, with the same error.
	err = f.auth.DeleteAccount(ctx, &models.Identity{Username: "bob"}, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthService_DeleteAccountCascades(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newAuthFixture(t)

	_, err := f.auth.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	_, err = f.auth.Register(ctx, "bob", "pw2")
	require.NoError(t, err)

	alice := &models.Identity{Username: "alice"}
	bob := &models.Identity{Username: "bob"}

	aliceRecipe, err := f.recipe.Create(ctx, alice, &models.Recipe{Title: "Soup"})
	require.NoError(t, err)
	bobRecipe, err := f.recipe.Create(ctx, bob, &models.Recipe{Title: "Pie"})
	require.NoError(t, err)

	_, err = f.recipe.AddComment(ctx, alice, bobRecipe.ID, "looks great")
	require.NoError(t, err)
	_, err = f.recipe.AddComment(ctx, bob, bobRecipe.ID, "thanks")
	require.NoError(t, err)

	// The cascade below is three separate store operations, not a
	// transaction; a crash in between can leave orphans. The assertions
	// only cover the happy path.
	err = f.auth.DeleteAccount(ctx, alice, f.userID(t, "alice"))
	require.NoError(t, err)

	// Alice's credential record and recipe are gone.
	_, err = f.users.FindOne(ctx, store.Filter{Eq: map[string]string{"username": "alice"}})
	assert.ErrorIs(t, err, store.ErrNoDocuments)
	_, err = f.recipe.Get(ctx, aliceRecipe.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Bob's recipe survives, with Alice's comment stripped.
	remaining, err := f.recipe.Get(ctx, bobRecipe.ID)
	require.NoError(t, err)
	require.Len(t, remaining.Comments, 1)
	assert.Equal(t, "bob", remaining.Comments[0].Author)
}
