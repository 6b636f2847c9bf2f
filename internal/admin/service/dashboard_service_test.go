package service_test

import (
	"context"
	"testing"

	adminservice "github.com/tigabum/christian-platform/internal/admin/service"
	"github.com/tigabum/christian-platform/internal/common/cache"
	identityrepo "github.com/tigabum/christian-platform/internal/identity/repository"
	questionrepo "github.com/tigabum/christian-platform/internal/question/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestStatsEmptyPlatform(t *testing.T) {
	questions := &stubQuestionRepo{}
	users := newMemUserRepo()
	dashboard := adminservice.NewDashboardService(questions, &memActivityRepo{}, users, nil)

	stats, err := dashboard.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalQuestions != 0 || stats.ResponseRate != 0 || stats.AvgResponseHours != 0 {
		t.Fatalf("expected zeroed stats, got %+v", stats)
	}
}

func TestStatsResponseRateCountsClosedAsAnswered(t *testing.T) {
	questions := &stubQuestionRepo{
		counts: questionrepo.StatusCounts{
			Total:    8,
			Pending:  2,
			Assigned: 2,
			Answered: 3,
			Closed:   1,
		},
		avgHours: 5.2501,
		avgOK:    true,
	}
	users := newMemUserRepo()
	users.add(identityrepo.User{Name: "Ruth", Email: "r@example.com", Role: identityrepo.UserRoleResponder, Active: true})
	users.add(identityrepo.User{Name: "Dan", Email: "d@example.com", Role: identityrepo.UserRoleResponder, Active: true})
	dashboard := adminservice.NewDashboardService(questions, &memActivityRepo{}, users, nil)

	stats, err := dashboard.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	// (3 answered + 1 closed) / 8 = 50%.
	if stats.ResponseRate != 50 {
		t.Fatalf("expected response rate 50, got %d", stats.ResponseRate)
	}
	if stats.TotalResponders != 2 {
		t.Fatalf("expected 2 responders, got %d", stats.TotalResponders)
	}
	if stats.AvgResponseHours != 5.3 {
		t.Fatalf("expected rounded 5.3, got %v", stats.AvgResponseHours)
	}
	if stats.AnsweredQuestions != 3 || stats.ClosedQuestions != 1 {
		t.Fatalf("status buckets distorted: %+v", stats)
	}
}

func TestStatsCachedBetweenCalls(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	statsCache, err := cache.NewRedisCacheWithClient(client)
	if err != nil {
		t.Fatalf("create cache failed: %v", err)
	}

	questions := &stubQuestionRepo{counts: questionrepo.StatusCounts{Total: 4, Answered: 2}}
	dashboard := adminservice.NewDashboardService(questions, &memActivityRepo{}, newMemUserRepo(), statsCache)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		stats, err := dashboard.Stats(ctx)
		if err != nil {
			t.Fatalf("stats call %d failed: %v", i, err)
		}
		if stats.ResponseRate != 50 {
			t.Fatalf("unexpected rate on call %d: %d", i, stats.ResponseRate)
		}
	}
	if questions.countCalls != 1 {
		t.Fatalf("expected one aggregate query, got %d", questions.countCalls)
	}
}

func TestActivitiesBoundedFeed(t *testing.T) {
	activities := &memActivityRepo{}
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		if err := activities.Append(ctx, nil, &questionrepo.Activity{
			Type:      questionrepo.ActivityQuestionCreated,
			Title:     "q",
			AskerName: "ana",
			Status:    questionrepo.StatusPending,
		}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}
	dashboard := adminservice.NewDashboardService(&stubQuestionRepo{}, activities, newMemUserRepo(), nil)

	feed, err := dashboard.Activities(ctx)
	if err != nil {
		t.Fatalf("activities failed: %v", err)
	}
	if len(feed) != 10 {
		t.Fatalf("expected feed capped at 10, got %d", len(feed))
	}
	if feed[0].ID != 15 {
		t.Fatalf("expected newest first, got id %d", feed[0].ID)
	}
}
