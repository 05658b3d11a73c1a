package mockserver

import (
	"errors"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	errEmailTaken      = errors.New("email taken")
	errUsernameTaken   = errors.New("username taken")
	errInvalidPassword = errors.New("invalid credentials")
)

const (
	roleUser  = "user"
	roleAdmin = "admin"
)

type account struct {
	ID           int
	Username     string
	Email        string
	Role         string
	PasswordHash []byte
}

// userStore keeps registered accounts in memory, keyed by normalized email
type userStore struct {
	byEmail   map[string]*account
	usernames map[string]struct{}
	nextID    int
	cost      int
	mu        sync.Mutex
}

func newUserStore(cost int) *userStore {
	return &userStore{
		byEmail:   make(map[string]*account),
		usernames: make(map[string]struct{}),
		nextID:    1,
		cost:      cost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// create registers an account. Email conflicts are reported before username
// conflicts.
func (s *userStore) create(username, email, password, role string) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}

	key := normalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[key]; ok {
		return nil, errEmailTaken
	}
	if _, ok := s.usernames[username]; ok {
		return nil, errUsernameTaken
	}

	acc := &account{
		ID:           s.nextID,
		Username:     username,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	}
	s.nextID++
	s.byEmail[key] = acc
	s.usernames[username] = struct{}{}

	copied := *acc
	return &copied, nil
}

// authenticate checks a password. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *userStore) authenticate(email, password string) (*account, error) {
	s.mu.Lock()
	acc, ok := s.byEmail[normalizeEmail(email)]
	var copied account
	if ok {
		copied = *acc
	}
	s.mu.Unlock()

	if !ok {
		return nil, errInvalidPassword
	}
	if bcrypt.CompareHashAndPassword(copied.PasswordHash, []byte(password)) != nil {
		return nil, errInvalidPassword
	}
	return &copied, nil
}

func (s *userStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.byEmail)
}
