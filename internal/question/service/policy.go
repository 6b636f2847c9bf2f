package service

import (
	"strings"

	"github.com/tigabum/christian-platform/internal/question/repository"
	pkgerrors "github.com/tigabum/christian-platform/pkg/errors"
)

// WorklistStatuses maps the caller-facing worklist filter vocabulary to
// the storage statuses it covers. The queue itself is always unclaimed
// pending questions plus the caller's own; the filter only narrows by
// status within that set.
func WorklistStatuses(filter string) ([]repository.QuestionStatus, error) {
	switch strings.TrimSpace(filter) {
	case "", "all":
		return nil, nil
	case "pending":
		return []repository.QuestionStatus{
			repository.StatusPending,
			repository.StatusAssigned,
			repository.StatusInProgress,
		}, nil
	case "assigned":
		return []repository.QuestionStatus{
			repository.StatusAssigned,
			repository.StatusInProgress,
		}, nil
	case "answered":
		return []repository.QuestionStatus{
			repository.StatusAnswered,
			repository.StatusClosed,
		}, nil
	default:
		return nil, pkgerrors.ValidationError("status", "must be one of all, pending, assigned, answered")
	}
}
