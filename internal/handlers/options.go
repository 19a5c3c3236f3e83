package handlers

import (
	"fmt"
	"strings"

	"github.com/llalegg/rd-tasks-sub000/internal/deadline"
	"github.com/llalegg/rd-tasks-sub000/internal/handlers/dto"
	"github.com/llalegg/rd-tasks-sub000/internal/models/task"
	"github.com/llalegg/rd-tasks-sub000/internal/service"
)

func createOptions(req dto.CreateTaskRequest) ([]task.TaskOption, error) {
	opts := []task.TaskOption{
		task.WithName(req.Name),
		task.WithDescription(req.Description),
		task.WithType(task.NormalizeType(req.Type)),
		task.WithStatus(task.NormalizeStatus(req.Status)),
		task.WithPriority(task.NormalizePriority(req.Priority)),
	}

	if req.Deadline != nil {
		opt, err := deadlineOption(*req.Deadline)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	if req.AssigneeID != nil {
		opts = append(opts, task.WithAssignee(req.AssigneeID))
	}
	if req.CreatorID != nil {
		opts = append(opts, task.WithCreator(req.CreatorID))
	}
	if req.RelatedAthleteIDs != nil {
		opts = append(opts, task.WithRelatedAthletes(req.RelatedAthleteIDs))
	}
	return opts, nil
}

// updateOptions turns a sparse request into options. Fields that were not
// sent produce no option at all.
func updateOptions(req dto.UpdateTaskRequest) ([]task.TaskOption, error) {
	var opts []task.TaskOption

	if req.Name.Set {
		if req.Name.Null {
			return nil, service.NewValidationError("name", "must not be null")
		}
		opts = append(opts, task.WithName(req.Name.Value))
	}
	if req.Description.Set {
		opts = append(opts, task.WithDescription(req.Description.Value))
	}
	if req.Type.Set {
		v, err := requiredEnum("type", req.Type)
		if err != nil {
			return nil, err
		}
		opts = append(opts, task.WithType(task.NormalizeType(v)))
	}
	if req.Status.Set {
		v, err := requiredEnum("status", req.Status)
		if err != nil {
			return nil, err
		}
		opts = append(opts, task.WithStatus(task.NormalizeStatus(v)))
	}
	if req.Priority.Set {
		v, err := requiredEnum("priority", req.Priority)
		if err != nil {
			return nil, err
		}
		opts = append(opts, task.WithPriority(task.NormalizePriority(v)))
	}
	if req.Deadline.Set {
		if req.Deadline.Null {
			opts = append(opts, task.WithDeadline(nil))
		} else {
			opt, err := deadlineOption(req.Deadline.Value)
			if err != nil {
				return nil, err
			}
			opts = append(opts, opt)
		}
	}
	if req.AssigneeID.Set {
		opts = append(opts, task.WithAssignee(req.AssigneeID.Ptr()))
	}
	if req.RelatedAthleteIDs.Set {
		opts = append(opts, task.WithRelatedAthletes(req.RelatedAthleteIDs.Value))
	}
	return opts, nil
}

func requiredEnum(field string, v dto.Nullable[string]) (string, error) {
	if v.Null || strings.TrimSpace(v.Value) == "" {
		return "", service.NewValidationError(field, "must not be empty")
	}
	return v.Value, nil
}

// deadlineOption accepts an empty string as "no deadline".
func deadlineOption(raw string) (task.TaskOption, error) {
	if strings.TrimSpace(raw) == "" {
		return task.WithDeadline(nil), nil
	}
	parsed := deadline.ParseLenient(raw)
	if parsed == nil {
		return nil, service.NewValidationError("deadline", fmt.Sprintf("unrecognised date %q", raw))
	}
	return task.WithDeadline(parsed), nil
}
