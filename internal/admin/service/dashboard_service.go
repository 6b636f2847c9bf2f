package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/tigabum/christian-platform/internal/common/cache"
	identityrepo "github.com/tigabum/christian-platform/internal/identity/repository"
	questionrepo "github.com/tigabum/christian-platform/internal/question/repository"
	pkgerrors "github.com/tigabum/christian-platform/pkg/errors"
)

const (
	dashboardStatsCacheKey = "dashboard:stats"
	dashboardStatsCacheTTL = time.Minute

	resolutionWindow = 30 * 24 * time.Hour
	activityFeedSize = 10
)

// DashboardStats is the admin overview snapshot.
type DashboardStats struct {
	TotalQuestions    int64   `json:"total_questions"`
	PendingQuestions  int64   `json:"pending_questions"`
	AssignedQuestions int64   `json:"assigned_questions"`
	AnsweredQuestions int64   `json:"answered_questions"`
	ClosedQuestions   int64   `json:"closed_questions"`
	TotalResponders   int64   `json:"total_responders"`
	ResponseRate      int     `json:"response_rate"`
	AvgResponseHours  float64 `json:"avg_response_hours"`
}

// DashboardService computes read-only admin aggregates. Failures are
// reported to the caller, never retried.
type DashboardService struct {
	questions  questionrepo.QuestionRepository
	activities questionrepo.ActivityRepository
	users      identityrepo.UserRepository
	cache      cache.Cache
}

func NewDashboardService(
	questions questionrepo.QuestionRepository,
	activities questionrepo.ActivityRepository,
	users identityrepo.UserRepository,
	cacheClient cache.Cache,
) *DashboardService {
	return &DashboardService{
		questions:  questions,
		activities: activities,
		users:      users,
		cache:      cacheClient,
	}
}

// Stats returns the dashboard snapshot, cached briefly to keep repeated
// admin polls off the database.
func (s *DashboardService) Stats(ctx context.Context) (DashboardStats, error) {
	if s.cache != nil {
		stats, err := cache.GetWithCached[*DashboardStats](
			ctx,
			s.cache,
			dashboardStatsCacheKey,
			dashboardStatsCacheTTL,
			dashboardStatsCacheTTL,
			func(stats *DashboardStats) bool { return stats == nil },
			marshalStats,
			unmarshalStats,
			func(ctx context.Context) (*DashboardStats, error) {
				stats, err := s.computeStats(ctx)
				if err != nil {
					return nil, err
				}
				return &stats, nil
			},
		)
		if err != nil {
			return DashboardStats{}, err
		}
		if stats != nil {
			return *stats, nil
		}
		return DashboardStats{}, pkgerrors.New(pkgerrors.StatsQueryFailed)
	}
	return s.computeStats(ctx)
}

// Activities returns the most recent status-change records, newest
// first, bounded at ten.
func (s *DashboardService) Activities(ctx context.Context) ([]*questionrepo.Activity, error) {
	activities, err := s.activities.Recent(ctx, activityFeedSize)
	if err != nil {
		return nil, pkgerrors.Wrap(fmt.Errorf("fetch activities failed: %w", err), pkgerrors.ActivityQueryFailed)
	}
	return activities, nil
}

func (s *DashboardService) computeStats(ctx context.Context) (DashboardStats, error) {
	counts, err := s.questions.CountByStatus(ctx)
	if err != nil {
		return DashboardStats{}, pkgerrors.Wrap(fmt.Errorf("count questions failed: %w", err), pkgerrors.StatsQueryFailed)
	}
	responders, err := s.users.CountResponders(ctx)
	if err != nil {
		return DashboardStats{}, pkgerrors.Wrap(fmt.Errorf("count responders failed: %w", err), pkgerrors.StatsQueryFailed)
	}

	stats := DashboardStats{
		TotalQuestions:    counts.Total,
		PendingQuestions:  counts.Pending,
		AssignedQuestions: counts.Assigned,
		AnsweredQuestions: counts.Answered,
		ClosedQuestions:   counts.Closed,
		TotalResponders:   responders,
	}

	// A closed question was necessarily answered first.
	answered := counts.Answered + counts.Closed
	if counts.Total > 0 {
		stats.ResponseRate = int(math.Round(float64(answered) / float64(counts.Total) * 100))
	}

	avgHours, ok, err := s.questions.AvgResolutionHours(ctx, time.Now().Add(-resolutionWindow))
	if err != nil {
		return DashboardStats{}, pkgerrors.Wrap(fmt.Errorf("average resolution failed: %w", err), pkgerrors.StatsQueryFailed)
	}
	if ok {
		stats.AvgResponseHours = math.Round(avgHours*10) / 10
	}
	return stats, nil
}

func marshalStats(stats *DashboardStats) string {
	if stats == nil {
		return ""
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return ""
	}
	return string(data)
}

func unmarshalStats(data string) (*DashboardStats, error) {
	if data == "" || data == cache.NullCacheValue {
		return nil, nil
	}
	var stats DashboardStats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
