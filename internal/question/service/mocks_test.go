package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/tigabum/christian-platform/internal/common/db"
	"github.com/tigabum/christian-platform/internal/common/mq"
	identityrepo "github.com/tigabum/christian-platform/internal/identity/repository"
	"github.com/tigabum/christian-platform/internal/question/repository"
)

type memQuestionRepo struct {
	mu        sync.Mutex
	nextID    int64
	questions map[int64]*repository.Question
}

func newMemQuestionRepo() *memQuestionRepo {
	return &memQuestionRepo{nextID: 1, questions: make(map[int64]*repository.Question)}
}

func (m *memQuestionRepo) clone(q *repository.Question) *repository.Question {
	copied := *q
	return &copied
}

func (m *memQuestionRepo) Create(ctx context.Context, tx db.Transaction, question *repository.Question) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	stored := *question
	stored.ID = id
	if stored.Status == "" {
		stored.Status = repository.StatusPending
	}
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.questions[id] = &stored
	return id, nil
}

func (m *memQuestionRepo) GetByID(ctx context.Context, tx db.Transaction, id int64) (*repository.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	question, ok := m.questions[id]
	if !ok {
		return nil, repository.ErrQuestionNotFound
	}
	return m.clone(question), nil
}

func (m *memQuestionRepo) ListPublic(ctx context.Context, limit, offset int) ([]*repository.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*repository.Question
	for _, question := range m.questions {
		if question.IsPublic {
			result = append(result, m.clone(question))
		}
	}
	return result, nil
}

func (m *memQuestionRepo) ListByAsker(ctx context.Context, askerID int64) ([]*repository.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*repository.Question
	for _, question := range m.questions {
		if question.AskerID == askerID {
			result = append(result, m.clone(question))
		}
	}
	return result, nil
}

func (m *memQuestionRepo) ListWorklist(ctx context.Context, responderID int64, statuses []repository.QuestionStatus) ([]*repository.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	allowed := func(status repository.QuestionStatus) bool {
		if len(statuses) == 0 {
			return true
		}
		for _, s := range statuses {
			if s == status {
				return true
			}
		}
		return false
	}
	var result []*repository.Question
	for _, question := range m.questions {
		unclaimed := question.Status == repository.StatusPending && question.ResponderID == nil
		mine := question.ResponderID != nil && *question.ResponderID == responderID
		if !unclaimed && !mine {
			continue
		}
		if !allowed(question.Status) {
			continue
		}
		result = append(result, m.clone(question))
	}
	return result, nil
}

func (m *memQuestionRepo) Assign(ctx context.Context, tx db.Transaction, id, responderID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	question, ok := m.questions[id]
	if !ok {
		return false, nil
	}
	if question.Status != repository.StatusPending || question.ResponderID != nil {
		return false, nil
	}
	now := time.Now()
	question.ResponderID = &responderID
	question.Status = repository.StatusAssigned
	question.AssignedAt = &now
	question.UpdatedAt = now
	return true, nil
}

func (m *memQuestionRepo) Begin(ctx context.Context, tx db.Transaction, id, responderID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	question, ok := m.questions[id]
	if !ok {
		return false, nil
	}
	if question.Status != repository.StatusAssigned || question.ResponderID == nil || *question.ResponderID != responderID {
		return false, nil
	}
	question.Status = repository.StatusInProgress
	question.UpdatedAt = time.Now()
	return true, nil
}

func (m *memQuestionRepo) Answer(ctx context.Context, tx db.Transaction, id, responderID int64, content string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	question, ok := m.questions[id]
	if !ok {
		return false, nil
	}
	inAnswerable := question.Status == repository.StatusAssigned || question.Status == repository.StatusInProgress
	if !inAnswerable || question.ResponderID == nil || *question.ResponderID != responderID || question.AnswerContent != nil {
		return false, nil
	}
	now := time.Now()
	question.Status = repository.StatusAnswered
	question.AnswerContent = &content
	question.AnsweredAt = &now
	question.UpdatedAt = now
	return true, nil
}

func (m *memQuestionRepo) Close(ctx context.Context, tx db.Transaction, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	question, ok := m.questions[id]
	if !ok {
		return false, nil
	}
	if question.Status != repository.StatusAnswered {
		return false, nil
	}
	now := time.Now()
	question.Status = repository.StatusClosed
	question.ClosedAt = &now
	question.UpdatedAt = now
	return true, nil
}

func (m *memQuestionRepo) CountByStatus(ctx context.Context) (repository.StatusCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var counts repository.StatusCounts
	for _, question := range m.questions {
		counts.Total++
		switch question.Status {
		case repository.StatusPending:
			counts.Pending++
		case repository.StatusAssigned, repository.StatusInProgress:
			counts.Assigned++
		case repository.StatusAnswered:
			counts.Answered++
		case repository.StatusClosed:
			counts.Closed++
		}
	}
	return counts, nil
}

func (m *memQuestionRepo) AvgResolutionHours(ctx context.Context, since time.Time) (float64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total float64
	var n int
	for _, question := range m.questions {
		if question.AnsweredAt == nil || question.AnsweredAt.Before(since) {
			continue
		}
		total += question.AnsweredAt.Sub(question.CreatedAt).Hours()
		n++
	}
	if n == 0 {
		return 0, false, nil
	}
	return total / float64(n), true, nil
}

type memActivityRepo struct {
	mu         sync.Mutex
	activities []*repository.Activity
}

func newMemActivityRepo() *memActivityRepo {
	return &memActivityRepo{}
}

func (m *memActivityRepo) Append(ctx context.Context, tx db.Transaction, activity *repository.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *activity
	copied.ID = int64(len(m.activities) + 1)
	copied.CreatedAt = time.Now()
	m.activities = append(m.activities, &copied)
	return nil
}

func (m *memActivityRepo) Recent(ctx context.Context, limit int) ([]*repository.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*repository.Activity, 0, limit)
	for i := len(m.activities) - 1; i >= 0 && len(result) < limit; i-- {
		copied := *m.activities[i]
		result = append(result, &copied)
	}
	return result, nil
}

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
		if user.Role == identityrepo.UserRoleResponder {
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

type memProducer struct {
	mu       sync.Mutex
	messages []*mq.Message
	topics   []string
}

func newMemProducer() *memProducer {
	return &memProducer{}
}

func (m *memProducer) Publish(ctx context.Context, topic string, message *mq.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
	m.topics = append(m.topics, topic)
	return nil
}

func (m *memProducer) Ping(ctx context.Context) error { return nil }

func (m *memProducer) Close() error { return nil }

func (m *memProducer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}
