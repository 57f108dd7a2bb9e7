package session

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/go-go-golems/pickem/pkg/domains/auth"
	"github.com/go-go-golems/pickem/pkg/models"
	"github.com/go-go-golems/pickem/pkg/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestSaveLoadRemove(t *testing.T) {
	dir := t.TempDir()

	s, err := Load(dir)
	require.NoError(t, err)
	require.Nil(t, s)

	require.NoError(t, Save(dir, &Session{Token: "abc", User: &models.User{ID: "u1"}}))
	s, err = Load(dir)
	require.NoError(t, err)
	require.Equal(t, "abc", s.Token)
	require.Equal(t, "u1", s.User.ID)

	fi, err := os.Stat(Path(dir))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	require.NoError(t, Remove(dir))
	require.NoError(t, Remove(dir))
}

func TestLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(dir, &Session{Token: "x"}))
	require.NoError(t, os.WriteFile(Path(dir), []byte("{"), 0o600))
	_, err := Load(dir)
	require.Error(t, err)
}

func TestCurrentUser(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	c, err := CurrentUser(signed(t, jwt.MapClaims{"sub": "u1", "username": "ann", "exp": exp.Unix()}))
	require.NoError(t, err)
	require.Equal(t, "u1", c.UserID)
	require.Equal(t, "ann", c.Username)
	require.True(t, exp.Equal(c.ExpiresAt))
	require.False(t, c.Expired(time.Now()))
	require.True(t, c.Expired(exp.Add(time.Second)))

	c, err = CurrentUser(signed(t, jwt.MapClaims{"user_id": "u2"}))
	require.NoError(t, err)
	require.Equal(t, "u2", c.UserID)
	require.False(t, c.Expired(time.Now()))

	_, err = CurrentUser("not-a-jwt")
	require.Error(t, err)
	_, err = CurrentUser(signed(t, jwt.MapClaims{"role": "admin"}))
	require.Error(t, err)
}

func TestProviderSyncsWithAuthSlice(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(auth.Slice().Domain())
	require.NoError(t, err)

	p, err := NewProvider(dir, zerolog.Nop())
	require.NoError(t, err)
	require.Empty(t, p.Token())
	unsub := p.Sync(s)
	defer unsub()

	body, _ := json.Marshal(map[string]any{"data": map[string]any{"token": "jwt-1", "user": map[string]any{"id": "u1"}}})
	s.Dispatch(auth.Login.Success(body))
	require.Equal(t, "jwt-1", p.Token())

	saved, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "jwt-1", saved.Token)

	// a fresh provider restores the identity into a fresh store
	p2, err := NewProvider(dir, zerolog.Nop())
	require.NoError(t, err)
	s2, err := store.New(auth.Slice().Domain())
	require.NoError(t, err)
	p2.Restore(s2)
	st, _ := store.Select[auth.State](s2, auth.Name)
	require.Equal(t, "jwt-1", st.Token)
	require.Equal(t, "u1", st.User.ID)

	s.Dispatch(auth.Logout())
	require.Empty(t, p.Token())
	saved, err = Load(dir)
	require.NoError(t, err)
	require.Nil(t, saved)
}
