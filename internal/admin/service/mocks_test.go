package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/tigabum/christian-platform/internal/common/db"
	identityrepo "github.com/tigabum/christian-platform/internal/identity/repository"
	questionrepo "github.com/tigabum/christian-platform/internal/question/repository"
)

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*identityrepo.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[int64]*identityrepo.User)}
}

func (m *memUserRepo) add(user identityrepo.User) *identityrepo.User {
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

func (m *memUserRepo) Create(ctx context.Context, tx db.Transaction, user *identityrepo.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return 0, identityrepo.ErrEmailExists
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

func (m *memUserRepo) GetByID(ctx context.Context, tx db.Transaction, id int64) (*identityrepo.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, identityrepo.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, tx db.Transaction, email string) (*identityrepo.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, identityrepo.ErrUserNotFound
}

func (m *memUserRepo) ExistsByEmail(ctx context.Context, tx db.Transaction, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, tx, email)
	if err == identityrepo.ErrUserNotFound {
		return false, nil
	}
	return err == nil, err
}

func (m *memUserRepo) Update(ctx context.Context, tx db.Transaction, user *identityrepo.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.users[user.ID]
	if !ok {
		return identityrepo.ErrUserNotFound
	}
	for id, other := range m.users {
		if id != user.ID && other.Email == user.Email {
			return identityrepo.ErrEmailExists
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
		return identityrepo.ErrUserNotFound
	}
	user.PasswordHash = newHash
	user.UpdatedAt = time.Now()
	return nil
}

func (m *memUserRepo) ListResponders(ctx context.Context, filter identityrepo.ResponderFilter) ([]*identityrepo.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*identityrepo.User
	for _, user := range m.users {
		if user.Role != identityrepo.UserRoleResponder {
			continue
		}
		if filter.Status == "active" && !user.Active {
			continue
		}
		if filter.Status == "inactive" && user.Active {
			continue
		}
		if filter.Expertise != "" && !hasTag(user.Expertise, filter.Expertise) {
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
		if user.Role == identityrepo.UserRoleResponder {
			n++
		}
	}
	return n, nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// stubQuestionRepo serves the aggregate queries the dashboard reads and
// rejects everything else.
type stubQuestionRepo struct {
	counts     questionrepo.StatusCounts
	avgHours   float64
	avgOK      bool
	statCalls  int
	countCalls int
}

func (s *stubQuestionRepo) Create(ctx context.Context, tx db.Transaction, question *questionrepo.Question) (int64, error) {
	panic("not used")
}

func (s *stubQuestionRepo) GetByID(ctx context.Context, tx db.Transaction, id int64) (*questionrepo.Question, error) {
	panic("not used")
}

func (s *stubQuestionRepo) ListPublic(ctx context.Context, limit, offset int) ([]*questionrepo.Question, error) {
	panic("not used")
}

func (s *stubQuestionRepo) ListByAsker(ctx context.Context, askerID int64) ([]*questionrepo.Question, error) {
	panic("not used")
}

func (s *stubQuestionRepo) ListWorklist(ctx context.Context, responderID int64, statuses []questionrepo.QuestionStatus) ([]*questionrepo.Question, error) {
	panic("not used")
}

func (s *stubQuestionRepo) Assign(ctx context.Context, tx db.Transaction, id, responderID int64) (bool, error) {
	panic("not used")
}

func (s *stubQuestionRepo) Begin(ctx context.Context, tx db.Transaction, id, responderID int64) (bool, error) {
	panic("not used")
}

func (s *stubQuestionRepo) Answer(ctx context.Context, tx db.Transaction, id, responderID int64, content string) (bool, error) {
	panic("not used")
}

func (s *stubQuestionRepo) Close(ctx context.Context, tx db.Transaction, id int64) (bool, error) {
	panic("not used")
}

func (s *stubQuestionRepo) CountByStatus(ctx context.Context) (questionrepo.StatusCounts, error) {
	s.countCalls++
	return s.counts, nil
}

func (s *stubQuestionRepo) AvgResolutionHours(ctx context.Context, since time.Time) (float64, bool, error) {
	s.statCalls++
	return s.avgHours, s.avgOK, nil
}

type memActivityRepo struct {
	mu         sync.Mutex
	activities []*questionrepo.Activity
}

func (m *memActivityRepo) Append(ctx context.Context, tx db.Transaction, activity *questionrepo.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *activity
	copied.ID = int64(len(m.activities) + 1)
	m.activities = append(m.activities, &copied)
	return nil
}

func (m *memActivityRepo) Recent(ctx context.Context, limit int) ([]*questionrepo.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*questionrepo.Activity, 0, limit)
	for i := len(m.activities) - 1; i >= 0 && len(result) < limit; i-- {
		copied := *m.activities[i]
		result = append(result, &copied)
	}
	return result, nil
}
