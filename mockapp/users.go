package mockapp

import (
	"sync"

	"golang.org/x/exp/maps"

	"github.com/syubbanul/uitest-harness/framework/helpers"
)

type user struct {
	name     string
	email    string
	password string
}

// userStore is the application's user table. It is shared by concurrent requests.
type userStore struct {
	users map[string]user
	lock  sync.RWMutex
}

func newUserStore() *userStore {
	return &userStore{users: make(map[string]user)}
}

// add stores a new user, returning false if the username is already taken.
func (s *userStore) add(username string, u user) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, exists := s.users[username]; exists {
		return false
	}
	s.users[username] = u
	return true
}

func (s *userStore) exists(username string) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	_, ok := s.users[username]
	return ok
}

func (s *userStore) checkPassword(username, password string) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	u, ok := s.users[username]
	return ok && u.password == password
}

func (s *userStore) usernames() []string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return helpers.Sorted(maps.Keys(s.users))
}
