package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tigabum/christian-platform/internal/common/cache"
	"github.com/tigabum/christian-platform/internal/common/db"
)

const (
	defaultQuestionCacheTTL      = 10 * time.Minute
	defaultQuestionCacheEmptyTTL = 2 * time.Minute
	questionCacheKeyPrefix       = "question:"
)

var ErrQuestionNotFound = errors.New("question not found")

// StatusCounts aggregates question totals for the dashboard.
type StatusCounts struct {
	Total    int64
	Pending  int64
	Assigned int64
	Answered int64
	Closed   int64
}

// QuestionRepository defines question persistence. The transition
// methods issue a single conditional UPDATE and report whether the row
// was actually moved; zero rows affected means the caller lost a race
// or the precondition never held, and the caller re-fetches to decide
// which.
type QuestionRepository interface {
	Create(ctx context.Context, tx db.Transaction, question *Question) (int64, error)
	GetByID(ctx context.Context, tx db.Transaction, id int64) (*Question, error)
	ListPublic(ctx context.Context, limit, offset int) ([]*Question, error)
	ListByAsker(ctx context.Context, askerID int64) ([]*Question, error)
	ListWorklist(ctx context.Context, responderID int64, statuses []QuestionStatus) ([]*Question, error)

	Assign(ctx context.Context, tx db.Transaction, id, responderID int64) (bool, error)
	Begin(ctx context.Context, tx db.Transaction, id, responderID int64) (bool, error)
	Answer(ctx context.Context, tx db.Transaction, id, responderID int64, content string) (bool, error)
	Close(ctx context.Context, tx db.Transaction, id int64) (bool, error)

	CountByStatus(ctx context.Context) (StatusCounts, error)
	AvgResolutionHours(ctx context.Context, since time.Time) (float64, bool, error)
}

// MySQLQuestionRepository implements QuestionRepository with MySQL.
type MySQLQuestionRepository struct {
	dbProvider db.Provider
	cache      cache.Cache
	ttl        time.Duration
	emptyTTL   time.Duration
}

func NewQuestionRepository(provider db.Provider, cacheClient cache.Cache) QuestionRepository {
	return NewQuestionRepositoryWithTTL(provider, cacheClient, defaultQuestionCacheTTL, defaultQuestionCacheEmptyTTL)
}

func NewQuestionRepositoryWithTTL(provider db.Provider, cacheClient cache.Cache, ttl, emptyTTL time.Duration) QuestionRepository {
	if ttl <= 0 {
		ttl = defaultQuestionCacheTTL
	}
	if emptyTTL <= 0 {
		emptyTTL = defaultQuestionCacheEmptyTTL
	}
	return &MySQLQuestionRepository{
		dbProvider: provider,
		cache:      cacheClient,
		ttl:        ttl,
		emptyTTL:   emptyTTL,
	}
}

const questionColumns = "id, title, content, asker_id, responder_id, status, is_public, is_anonymous, answer_content, answered_at, assigned_at, closed_at, created_at, updated_at"

func (r *MySQLQuestionRepository) Create(ctx context.Context, tx db.Transaction, question *Question) (int64, error) {
	if question == nil {
		return 0, errors.New("question is nil")
	}

	status := question.Status
	if status == "" {
		status = StatusPending
	}

	query := "INSERT INTO questions (title, content, asker_id, status, is_public, is_anonymous) VALUES (?, ?, ?, ?, ?, ?)"
	querier, err := db.GetProviderQuerier(r.dbProvider, tx)
	if err != nil {
		return 0, err
	}
	result, err := querier.Exec(ctx, query,
		question.Title,
		question.Content,
		question.AskerID,
		status,
		question.IsPublic,
		question.IsAnonymous,
	)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	question.ID = id
	question.Status = status
	return id, nil
}

func (r *MySQLQuestionRepository) GetByID(ctx context.Context, tx db.Transaction, id int64) (*Question, error) {
	if r.cache != nil && tx == nil {
		question, err := cache.GetWithCached[*Question](
			ctx,
			r.cache,
			questionCacheKey(id),
			cache.JitterTTL(r.ttl),
			cache.JitterTTL(r.emptyTTL),
			func(question *Question) bool { return question == nil },
			marshalQuestion,
			unmarshalQuestion,
			func(ctx context.Context) (*Question, error) {
				question, err := r.getByIDFromDB(ctx, nil, id)
				if err != nil {
					if errors.Is(err, ErrQuestionNotFound) {
						return nil, nil
					}
					return nil, err
				}
				return question, nil
			},
		)
		if err != nil {
			return nil, err
		}
		if question == nil {
			return nil, ErrQuestionNotFound
		}
		return question, nil
	}
	return r.getByIDFromDB(ctx, tx, id)
}

func (r *MySQLQuestionRepository) ListPublic(ctx context.Context, limit, offset int) ([]*Question, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := "SELECT " + questionColumns + " FROM questions WHERE is_public = 1 ORDER BY created_at DESC LIMIT ? OFFSET ?"
	return r.list(ctx, query, limit, offset)
}

func (r *MySQLQuestionRepository) ListByAsker(ctx context.Context, askerID int64) ([]*Question, error) {
	query := "SELECT " + questionColumns + " FROM questions WHERE asker_id = ? ORDER BY created_at DESC"
	return r.list(ctx, query, askerID)
}

// ListWorklist returns the responder's queue: unclaimed pending
// questions plus the responder's own, optionally narrowed by status.
func (r *MySQLQuestionRepository) ListWorklist(ctx context.Context, responderID int64, statuses []QuestionStatus) ([]*Question, error) {
	query := "SELECT " + questionColumns + " FROM questions WHERE ((status = 'pending' AND responder_id IS NULL) OR responder_id = ?)"
	args := []interface{}{responderID}

	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += " AND status IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY created_at DESC"

	return r.list(ctx, query, args...)
}

// Assign moves a pending unclaimed question to assigned. Used for both
// admin-directed assignment and responder self-claim.
func (r *MySQLQuestionRepository) Assign(ctx context.Context, tx db.Transaction, id, responderID int64) (bool, error) {
	query := "UPDATE questions SET responder_id = ?, status = ?, assigned_at = NOW(), updated_at = NOW() WHERE id = ? AND status = ? AND responder_id IS NULL"
	return r.transition(ctx, tx, id, query, responderID, StatusAssigned, id, StatusPending)
}

// Begin moves the responder's own assigned question to inProgress.
func (r *MySQLQuestionRepository) Begin(ctx context.Context, tx db.Transaction, id, responderID int64) (bool, error) {
	query := "UPDATE questions SET status = ?, updated_at = NOW() WHERE id = ? AND status = ? AND responder_id = ?"
	return r.transition(ctx, tx, id, query, StatusInProgress, id, StatusAssigned, responderID)
}

// Answer records the answer exactly once, from assigned or inProgress,
// only for the recorded responder.
func (r *MySQLQuestionRepository) Answer(ctx context.Context, tx db.Transaction, id, responderID int64, content string) (bool, error) {
	query := "UPDATE questions SET status = ?, answer_content = ?, answered_at = NOW(), updated_at = NOW() WHERE id = ? AND status IN (?, ?) AND responder_id = ? AND answer_content IS NULL"
	return r.transition(ctx, tx, id, query, StatusAnswered, content, id, StatusAssigned, StatusInProgress, responderID)
}

// Close moves an answered question to the terminal closed state.
func (r *MySQLQuestionRepository) Close(ctx context.Context, tx db.Transaction, id int64) (bool, error) {
	query := "UPDATE questions SET status = ?, closed_at = NOW(), updated_at = NOW() WHERE id = ? AND status = ?"
	return r.transition(ctx, tx, id, query, StatusClosed, id, StatusAnswered)
}

func (r *MySQLQuestionRepository) CountByStatus(ctx context.Context) (StatusCounts, error) {
	query := "SELECT status, COUNT(*) FROM questions GROUP BY status"
	querier, err := db.GetProviderQuerier(r.dbProvider, nil)
	if err != nil {
		return StatusCounts{}, err
	}
	rows, err := querier.Query(ctx, query)
	if err != nil {
		return StatusCounts{}, err
	}
	defer rows.Close()

	var counts StatusCounts
	for rows.Next() {
		var status QuestionStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return StatusCounts{}, err
		}
		counts.Total += count
		switch status {
		case StatusPending:
			counts.Pending += count
		case StatusAssigned, StatusInProgress:
			counts.Assigned += count
		case StatusAnswered:
			counts.Answered += count
		case StatusClosed:
			counts.Closed += count
		}
	}
	if err := rows.Err(); err != nil {
		return StatusCounts{}, err
	}
	return counts, nil
}

// AvgResolutionHours averages creation-to-answer time over questions
// answered since the given cutoff. The second return is false when no
// question qualifies.
func (r *MySQLQuestionRepository) AvgResolutionHours(ctx context.Context, since time.Time) (float64, bool, error) {
	query := "SELECT AVG(TIMESTAMPDIFF(SECOND, created_at, answered_at)) FROM questions WHERE answered_at IS NOT NULL AND answered_at >= ?"
	querier, err := db.GetProviderQuerier(r.dbProvider, nil)
	if err != nil {
		return 0, false, err
	}
	row := querier.QueryRow(ctx, query, since)
	var avgSeconds sql.NullFloat64
	if err := row.Scan(&avgSeconds); err != nil {
		return 0, false, err
	}
	if !avgSeconds.Valid {
		return 0, false, nil
	}
	return avgSeconds.Float64 / 3600, true, nil
}

func (r *MySQLQuestionRepository) transition(ctx context.Context, tx db.Transaction, id int64, query string, args ...interface{}) (bool, error) {
	querier, err := db.GetProviderQuerier(r.dbProvider, tx)
	if err != nil {
		return false, err
	}
	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}
	r.invalidate(ctx, id)
	return true, nil
}

func (r *MySQLQuestionRepository) list(ctx context.Context, query string, args ...interface{}) ([]*Question, error) {
	querier, err := db.GetProviderQuerier(r.dbProvider, nil)
	if err != nil {
		return nil, err
	}
	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]*Question, 0)
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *MySQLQuestionRepository) getByIDFromDB(ctx context.Context, tx db.Transaction, id int64) (*Question, error) {
	query := "SELECT " + questionColumns + " FROM questions WHERE id = ? LIMIT 1"
	querier, err := db.GetProviderQuerier(r.dbProvider, tx)
	if err != nil {
		return nil, err
	}
	row := querier.QueryRow(ctx, query, id)
	question, err := scanQuestion(row)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return question, nil
}

func (r *MySQLQuestionRepository) invalidate(ctx context.Context, id int64) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Del(ctx, questionCacheKey(id))
}

func questionCacheKey(id int64) string {
	return fmt.Sprintf("%s%d", questionCacheKeyPrefix, id)
}

func marshalQuestion(question *Question) string {
	if question == nil {
		return ""
	}
	data, err := json.Marshal(question)
	if err != nil {
		return ""
	}
	return string(data)
}

func unmarshalQuestion(data string) (*Question, error) {
	if data == "" || data == cache.NullCacheValue {
		return nil, nil
	}
	var question Question
	if err := json.Unmarshal([]byte(data), &question); err != nil {
		return nil, err
	}
	return &question, nil
}

func scanQuestion(scanner db.Scanner) (*Question, error) {
	question := &Question{}
	var responderID sql.NullInt64
	var answerContent sql.NullString
	var answeredAt, assignedAt, closedAt sql.NullTime

	err := scanner.Scan(
		&question.ID,
		&question.Title,
		&question.Content,
		&question.AskerID,
		&responderID,
		&question.Status,
		&question.IsPublic,
		&question.IsAnonymous,
		&answerContent,
		&answeredAt,
		&assignedAt,
		&closedAt,
		&question.CreatedAt,
		&question.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if responderID.Valid {
		question.ResponderID = &responderID.Int64
	}
	if answerContent.Valid {
		question.AnswerContent = &answerContent.String
	}
	if answeredAt.Valid {
		question.AnsweredAt = &answeredAt.Time
	}
	if assignedAt.Valid {
		question.AssignedAt = &assignedAt.Time
	}
	if closedAt.Valid {
		question.ClosedAt = &closedAt.Time
	}
	return question, nil
}
