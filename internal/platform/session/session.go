package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the persisted login state: the bearer token plus display
// details about the signed-in user. Earlier browser clients kept the same
// shape in localStorage.
type Session struct {
	User User `json:"user"`
}

type User struct {
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Token    string `json:"token"`
}

// FileStore persists the session as a JSON file. It also serves as the
// remote client's token source.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns the stored session. A missing file means "not signed in" and
// returns an empty session without error.
func (s *FileStore) Load() (Session, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, nil
		}
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return sess, nil
}

func (s *FileStore) Save(sess Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Token implements the remote client's TokenSource. ok=false means no
// session is stored.
func (s *FileStore) Token() (string, bool) {
	sess, err := s.Load()
	if err != nil || sess.User.Token == "" {
		return "", false
	}
	return sess.User.Token, true
}

// TokenExpired reports whether the token carries an exp claim in the past.
// The console cannot verify signatures; this only decides whether to prompt
// for a fresh login instead of sending a request doomed to 401. Tokens
// without a parseable exp claim are assumed live.
func TokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
