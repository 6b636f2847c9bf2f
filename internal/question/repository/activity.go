package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/tigabum/christian-platform/internal/common/db"
)

// Activity is an append-only record of a question status change, read
// back only by the admin dashboard feed.
type Activity struct {
	ID            int64
	Type          string
	Title         string
	AskerName     string
	ResponderID   *int64
	ResponderName *string
	Status        QuestionStatus
	CreatedAt     time.Time
}

const (
	ActivityQuestionCreated  = "question_created"
	ActivityQuestionAssigned = "question_assigned"
	ActivityQuestionStarted  = "question_started"
	ActivityQuestionAnswered = "question_answered"
	ActivityQuestionClosed   = "question_closed"
)

type ActivityRepository interface {
	Append(ctx context.Context, tx db.Transaction, activity *Activity) error
	Recent(ctx context.Context, limit int) ([]*Activity, error)
}

type MySQLActivityRepository struct {
	dbProvider db.Provider
}

func NewActivityRepository(provider db.Provider) ActivityRepository {
	return &MySQLActivityRepository{dbProvider: provider}
}

const activityColumns = "id, type, title, asker_name, responder_id, responder_name, status, created_at"

func (r *MySQLActivityRepository) Append(ctx context.Context, tx db.Transaction, activity *Activity) error {
	if activity == nil {
		return errors.New("activity is nil")
	}

	responderID := sql.NullInt64{}
	if activity.ResponderID != nil {
		responderID = sql.NullInt64{Int64: *activity.ResponderID, Valid: true}
	}
	responderName := sql.NullString{}
	if activity.ResponderName != nil {
		responderName = sql.NullString{String: *activity.ResponderName, Valid: true}
	}

	query := "INSERT INTO activities (type, title, asker_name, responder_id, responder_name, status) VALUES (?, ?, ?, ?, ?, ?)"
	querier, err := db.GetProviderQuerier(r.dbProvider, tx)
	if err != nil {
		return err
	}
	result, err := querier.Exec(ctx, query,
		activity.Type,
		activity.Title,
		activity.AskerName,
		responderID,
		responderName,
		activity.Status,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err == nil {
		activity.ID = id
	}
	return nil
}

func (r *MySQLActivityRepository) Recent(ctx context.Context, limit int) ([]*Activity, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	query := "SELECT " + activityColumns + " FROM activities ORDER BY created_at DESC, id DESC LIMIT ?"
	querier, err := db.GetProviderQuerier(r.dbProvider, nil)
	if err != nil {
		return nil, err
	}
	rows, err := querier.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]*Activity, 0, limit)
	for rows.Next() {
		activity := &Activity{}
		var responderID sql.NullInt64
		var responderName sql.NullString
		if err := rows.Scan(
			&activity.ID,
			&activity.Type,
			&activity.Title,
			&activity.AskerName,
			&responderID,
			&responderName,
			&activity.Status,
			&activity.CreatedAt,
		); err != nil {
			return nil, err
		}
		if responderID.Valid {
			activity.ResponderID = &responderID.Int64
		}
		if responderName.Valid {
			activity.ResponderName = &responderName.String
		}
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return activities, nil
}
