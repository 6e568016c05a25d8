package web

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/model"
	"tasktracker/internal/service"
)

// TaskController exposes the task board and its mutations. Every request
// captures the clock once and threads that instant through the whole cycle.
type TaskController struct {
	Tasks    *service.TaskService
	Notifier service.Notifier
	Clock    service.Clock
}

type taskRequest struct {
	Title         string           `json:"title" binding:"required"`
	Description   string           `json:"description"`
	StartTime     time.Time        `json:"start_time" binding:"required"`
	EndTime       time.Time        `json:"end_time" binding:"required"`
	Repeat        model.RepeatKind `json:"repeat"`
	RepeatDay     string           `json:"repeat_day"`
	RepeatUntil   *time.Time       `json:"repeat_until"`
	Priority      int              `json:"priority"`
	NotifyEnabled bool             `json:"notify_enabled"`
}

func (r taskRequest) toInput() service.TaskInput {
	return service.TaskInput{
		Title:         r.Title,
		Description:   r.Description,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		Repeat:        r.Repeat,
		RepeatDay:     r.RepeatDay,
		RepeatUntil:   r.RepeatUntil,
		Priority:      r.Priority,
		NotifyEnabled: r.NotifyEnabled,
	}
}

type subtaskResponse struct {
	ID          model.ID `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Completed   bool     `json:"completed"`
	Priority    int      `json:"priority"`
}

type taskResponse struct {
	ID             model.ID          `json:"id"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	StartTime      time.Time         `json:"start_time"`
	EndTime        time.Time         `json:"end_time"`
	TimeRange      string            `json:"time_range"`
	Completed      bool              `json:"completed"`
	Repeat         model.RepeatKind  `json:"repeat"`
	RepeatDay      string            `json:"repeat_day,omitempty"`
	Priority       int               `json:"priority"`
	NotifyEnabled  bool              `json:"notify_enabled"`
	Status         service.Status    `json:"status"`
	IsActive       bool              `json:"is_active"`
	NextOccurrence *time.Time        `json:"next_occurrence,omitempty"`
	Subtasks       []subtaskResponse `json:"subtasks"`
}

func toTaskResponse(view service.TaskView) taskResponse {
	task := view.Task
	subtasks := make([]subtaskResponse, 0, len(task.Subtasks))
	for _, st := range task.Subtasks {
		subtasks = append(subtasks, subtaskResponse{
			ID:          st.ID,
			Title:       st.Title,
			Description: st.Description,
			Completed:   st.Completed,
			Priority:    st.Priority,
		})
	}
	return taskResponse{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		StartTime:      task.StartTime,
		EndTime:        task.EndTime,
		TimeRange:      service.FormatTimeRange(task.StartTime, task.EndTime),
		Completed:      task.Completed,
		Repeat:         task.Repeat,
		RepeatDay:      task.RepeatDay,
		Priority:       task.Priority,
		NotifyEnabled:  task.NotifyEnabled,
		Status:         view.Status.Status,
		IsActive:       view.Status.IsActive,
		NextOccurrence: view.Status.NextOccurrence,
		Subtasks:       subtasks,
	}
}

// Board returns today's reconciled, classified and ordered task list.
func (tc *TaskController) Board(c *gin.Context) {
	now := tc.Clock.Now()
	views, err := tc.Tasks.Board(c.Request.Context(), now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]taskResponse, 0, len(views))
	for _, view := range views {
		out = append(out, toTaskResponse(view))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": out})
}

func (tc *TaskController) CreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := tc.Tasks.CreateTask(c.Request.Context(), req.toInput(), tc.Clock.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if task.NotifyEnabled {
		notify(tc.Notifier, service.TaskAddedMessage(task))
	}
	c.JSON(http.StatusCreated, task)
}

func (tc *TaskController) UpdateTask(c *gin.Context) {
	var req taskRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := tc.Tasks.UpdateTask(c.Request.Context(), model.ID(c.Param("id")), req.toInput(), tc.Clock.Now())
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (tc *TaskController) DeleteTask(c *gin.Context) {
	if err := tc.Tasks.DeleteTask(c.Request.Context(), model.ID(c.Param("id"))); err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// CompleteTask runs the completion transition. Retrying a completed task is
// a rejected no-op, reported as a conflict.
func (tc *TaskController) CompleteTask(c *gin.Context) {
	now := tc.Clock.Now()
	task, err := tc.Tasks.Complete(c.Request.Context(), model.ID(c.Param("id")), now)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	notify(tc.Notifier, service.TaskCompletedMessage(task, now))
	c.JSON(http.StatusOK, task)
}

func (tc *TaskController) History(c *gin.Context) {
	records, err := tc.Tasks.History(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": records})
}

type subtaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
}

func (tc *TaskController) AddSubtask(c *gin.Context) {
	var req subtaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subtask, err := tc.Tasks.AddSubtask(c.Request.Context(), model.ID(c.Param("id")), req.Title, req.Description)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, subtask)
}

func (tc *TaskController) UpdateSubtask(c *gin.Context) {
	var req subtaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subtask, err := tc.Tasks.UpdateSubtask(c.Request.Context(),
		model.ID(c.Param("id")), model.ID(c.Param("subtaskID")),
		req.Title, req.Description, req.Priority)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, subtask)
}

func (tc *TaskController) ToggleSubtask(c *gin.Context) {
	parent, subtask, allCompleted, err := tc.Tasks.ToggleSubtask(c.Request.Context(),
		model.ID(c.Param("id")), model.ID(c.Param("subtaskID")))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	if subtask.Completed {
		notify(tc.Notifier, service.SubtaskCompletedMessage(subtask, parent, tc.Clock.Now()))
	}
	c.JSON(http.StatusOK, gin.H{"subtask": subtask, "all_completed": allCompleted})
}

func (tc *TaskController) DeleteSubtask(c *gin.Context) {
	err := tc.Tasks.DeleteSubtask(c.Request.Context(), model.ID(c.Param("id")), model.ID(c.Param("subtaskID")))
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound), errors.Is(err, service.ErrSubtaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTaskAlreadyCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidRepeatKind):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// notify is fire and forget: failures are logged, never surfaced.
func notify(n service.Notifier, text string) {
	if err := n.Send(text); err != nil {
		log.Printf("[warn] notify: %v", err)
	}
}
