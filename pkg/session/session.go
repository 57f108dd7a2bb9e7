// Package session persists the signed-in identity between CLI invocations
// and supplies the bearer token to the transport.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-go-golems/pickem/pkg/action"
	"github.com/go-go-golems/pickem/pkg/domains/auth"
	"github.com/go-go-golems/pickem/pkg/models"
	"github.com/go-go-golems/pickem/pkg/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DirName  = ".pickem"
	FileName = "session.json"
)

type Session struct {
	Token   string       `json:"token"`
	User    *models.User `json:"user,omitempty"`
	SavedAt time.Time    `json:"saved_at"`
}

func Path(dir string) string {
	return filepath.Join(dir, DirName, FileName)
}

// Load reads the session file. A missing file is not an error: it returns nil.
func Load(dir string) (*Session, error) {
	b, err := os.ReadFile(Path(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read session")
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, errors.Wrap(err, "parse session json")
	}
	return &s, nil
}

func Save(dir string, s *Session) error {
	if s == nil {
		return errors.New("nil session")
	}
	if err := os.MkdirAll(filepath.Dir(Path(dir)), 0o700); err != nil {
		return errors.Wrap(err, "mkdir session dir")
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal session")
	}
	if err := os.WriteFile(Path(dir), b, 0o600); err != nil {
		return errors.Wrap(err, "write session")
	}
	return nil
}

func Remove(dir string) error {
	if err := os.Remove(Path(dir)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "remove session")
	}
	return nil
}

// Claims is what the client reads out of a token. Signatures are not checked
// here; the backend verifies every request.
type Claims struct {
	UserID    string
	Username  string
	ExpiresAt time.Time
}

func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

func CurrentUser(token string) (*Claims, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return nil, errors.Wrap(err, "parse token")
	}
	c := &Claims{}
	if sub, err := mc.GetSubject(); err == nil && sub != "" {
		c.UserID = sub
	}
	for _, k := range []string{"user_id", "id"} {
		if c.UserID != "" {
			break
		}
		if v, ok := mc[k].(string); ok {
			c.UserID = v
		}
	}
	if v, ok := mc["username"].(string); ok {
		c.Username = v
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if c.UserID == "" {
		return nil, errors.New("token carries no user id")
	}
	return c, nil
}

// Provider is the transport's token source, backed by the session file.
type Provider struct {
	Dir    string
	Logger zerolog.Logger

	mu    sync.Mutex
	token string
	user  *models.User
}

// NewProvider loads any saved session from dir.
func NewProvider(dir string, logger zerolog.Logger) (*Provider, error) {
	p := &Provider{Dir: dir, Logger: logger}
	s, err := Load(dir)
	if err != nil {
		return nil, err
	}
	if s != nil {
		p.token = s.Token
		p.user = s.User
	}
	return p, nil
}

func (p *Provider) Token() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token
}

// Restore seeds the auth slice with the saved identity, if any.
func (p *Provider) Restore(s *store.Store) {
	p.mu.Lock()
	tok, user := p.token, p.user
	p.mu.Unlock()
	if tok == "" {
		return
	}
	s.Dispatch(auth.Restore(auth.RestoreParams{Token: tok, User: user}))
}

// Sync keeps the session file in step with the auth slice: a new token is
// saved, a cleared one removes the file. It returns the unsubscribe func.
func (p *Provider) Sync(s *store.Store) func() {
	return s.Subscribe(func(a action.Action, _ uint64) {
		st, ok := store.Select[auth.State](s, auth.Name)
		if !ok {
			return
		}
		p.apply(st)
	})
}

func (p *Provider) apply(st auth.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if st.Token == p.token {
		if st.User != nil && st.Token != "" && p.user != st.User {
			p.user = st.User
			p.save()
		}
		return
	}
	p.token = st.Token
	p.user = st.User
	if st.Token == "" {
		if err := Remove(p.Dir); err != nil {
			p.Logger.Warn().Err(err).Msg("could not remove session")
		}
		return
	}
	p.save()
}

func (p *Provider) save() {
	err := Save(p.Dir, &Session{Token: p.token, User: p.user, SavedAt: time.Now()})
	if err != nil {
		p.Logger.Warn().Err(err).Msg("could not save session")
	}
}
