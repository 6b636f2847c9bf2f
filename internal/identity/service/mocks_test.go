package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/tigabum/christian-platform/internal/common/db"
	"github.com/tigabum/christian-platform/internal/identity/repository"
)

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*repository.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[int64]*repository.User)}
}

func (m *memUserRepo) add(user repository.User) *repository.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == 0 {
		user.ID = m.nextID
	}
	if user.ID >= m.nextID {
		m.nextID = user.ID + 1
	}
	m.users[user.ID] = &user
	return &user
}

func (m *memUserRepo) Create(ctx context.Context, tx db.Transaction, user *repository.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return 0, repository.ErrEmailExists
		}
	}
	id := m.nextID
	m.nextID++
	stored := *user
	stored.ID = id
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.users[id] = &stored
	user.ID = id
	return id, nil
}

func (m *memUserRepo) GetByID(ctx context.Context, tx db.Transaction, id int64) (*repository.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, tx db.Transaction, email string) (*repository.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUserRepo) ExistsByEmail(ctx context.Context, tx db.Transaction, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, tx, email)
	if err == repository.ErrUserNotFound {
		return false, nil
	}
	return err == nil, err
}

func (m *memUserRepo) Update(ctx context.Context, tx db.Transaction, user *repository.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.users[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	for id, other := range m.users {
		if id != user.ID && other.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	existing.Name = user.Name
	existing.Email = user.Email
	existing.Expertise = user.Expertise
	existing.Active = user.Active
	existing.UpdatedAt = time.Now()
	return nil
}

func (m *memUserRepo) UpdatePassword(ctx context.Context, tx db.Transaction, userID int64, newHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.PasswordHash = newHash
	user.UpdatedAt = time.Now()
	return nil
}

func (m *memUserRepo) ListResponders(ctx context.Context, filter repository.ResponderFilter) ([]*repository.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*repository.User
	for _, user := range m.users {
		if user.Role != repository.UserRoleResponder {
			continue
		}
		if filter.Status == "active" && !user.Active {
			continue
		}
		if filter.Status == "inactive" && user.Active {
			continue
		}
		if filter.Expertise != "" && !containsTag(user.Expertise, filter.Expertise) {
			continue
		}
		copied := *user
		result = append(result, &copied)
	}
	return result, nil
}

func (m *memUserRepo) CountResponders(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, user := range m.users {
		if user.Role == repository.UserRoleResponder {
			n++
		}
	}
	return n, nil
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
