package handler

import (
	"github.com/rsandoval/tasks-api/internal/core/domain"
	"github.com/rsandoval/tasks-api/internal/core/ports"
)

// --- Request → Service input ---

func toTaskInput(req taskRequest) ports.TaskInput {
	return ports.TaskInput{
		Description: req.Description,
		Completed:   req.Completed,
	}
}

// --- Service result → HTTP response ---

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Description: t.Description,
		Completed:   t.Completed,
	}
}

func toTaskListResponse(tasks []*domain.Task) []taskResponse {
	out := make([]taskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = toTaskResponse(t)
	}
	return out
}
