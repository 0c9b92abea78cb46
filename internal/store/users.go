package store

import (
	"strings"
	"time"

	"github.com/phytolab/orderport/internal/domain"
	"github.com/phytolab/orderport/internal/localcache"
	"github.com/phytolab/orderport/internal/remote"
	"github.com/phytolab/orderport/pkg/common"
)

// Users returns a copy of the customer directory.
func (s *StateStore) Users() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.User(nil), s.users...)
}

// FindUser looks a directory entry up by e-mail or tax ID.
func (s *StateStore) FindUser(email, taxID string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if (email != "" && strings.EqualFold(u.Email, email)) ||
			(taxID != "" && u.TaxID == taxID) {
			return u, true
		}
	}
	return domain.User{}, false
}

// AddUserToList appends a user to the directory unless an entry with the same
// tax ID or e-mail already exists. First write wins; the duplicate is
// silently skipped, not treated as an error.
func (s *StateStore) AddUserToList(user domain.User) domain.User {
	s.mu.Lock()
	for _, u := range s.users {
		if u.TaxID == user.TaxID || strings.EqualFold(u.Email, user.Email) {
			s.mu.Unlock()
			return u
		}
	}
	if user.ID == 0 {
		user.ID = common.UUIDint64()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	s.users = append(s.users, user)
	data, _ := json.Marshal(s.users)
	s.mu.Unlock()

	s.persist(localcache.KeyUsers, remote.CollectionUsers, remote.OpReplace, data)
	return user
}

// DeleteUserFromList removes a directory entry by identifier.
func (s *StateStore) DeleteUserFromList(userID int64) {
	s.mu.Lock()
	kept := s.users[:0]
	for _, u := range s.users {
		if u.ID != userID {
			kept = append(kept, u)
		}
	}
	s.users = kept
	data, _ := json.Marshal(s.users)
	s.mu.Unlock()

	s.persist(localcache.KeyUsers, remote.CollectionUsers, remote.OpReplace, data)
}

// User returns the session's current user, if logged in.
func (s *StateStore) User(sid string) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getSession(sid)
	if sess.user == nil {
		return domain.User{}, false
	}
	return *sess.user, true
}

// SaveUser binds a user to the session and registers it in the directory.
func (s *StateStore) SaveUser(sid string, user domain.User) domain.User {
	registered := s.AddUserToList(user)
	s.mu.Lock()
	sess := s.getSession(sid)
	sess.user = &registered
	data, _ := json.Marshal(registered)
	s.mu.Unlock()
	s.cache.Write(localcache.SessionKey(localcache.KeyPrefixUser, sid), data)
	return registered
}

// Logout clears the session's current user. The directory entry remains.
func (s *StateStore) Logout(sid string) {
	s.mu.Lock()
	sess := s.getSession(sid)
	sess.user = nil
	s.mu.Unlock()
	s.cache.Remove(localcache.SessionKey(localcache.KeyPrefixUser, sid))
}
