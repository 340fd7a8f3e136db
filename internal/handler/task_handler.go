package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskdesk/internal/service"
)

type TaskHandler struct {
	tasks  *service.TaskService
	logger *zap.Logger
}

func NewTaskHandler(tasks *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

func (h *TaskHandler) List(c *gin.Context) {
	actor := currentActor(c)

	tasks, err := h.tasks.List(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

type createTaskRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    json.RawMessage `json:"priority"`
	DueDate     *string         `json:"due_date"`
	CategoryID  *int            `json:"category_id"`
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	actor := currentActor(c)
	t, err := h.tasks.Create(c.Request.Context(), actor.ID, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, t)
}

func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	t, err := h.tasks.Get(c.Request.Context(), id, currentActor(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

// Update decodes the body into raw fields first so an explicit null can be
// told apart from an absent key for due_date and category_id.
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	patch, err := buildTaskPatch(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	t, err := h.tasks.Update(c.Request.Context(), id, currentActor(c), patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), id, currentActor(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func buildTaskPatch(raw map[string]json.RawMessage) (service.TaskPatch, error) {
	var patch service.TaskPatch

	if v, ok := raw["title"]; ok {
		if err := json.Unmarshal(v, &patch.Title); err != nil {
			return patch, err
		}
	}
	if v, ok := raw["description"]; ok {
		if err := json.Unmarshal(v, &patch.Description); err != nil {
			return patch, err
		}
	}
	if v, ok := raw["notes"]; ok {
		if err := json.Unmarshal(v, &patch.Notes); err != nil {
			return patch, err
		}
	}
	if v, ok := raw["completed"]; ok {
		if err := json.Unmarshal(v, &patch.Completed); err != nil {
			return patch, err
		}
	}
	if v, ok := raw["priority"]; ok {
		patch.Priority = v
	}
	if v, ok := raw["due_date"]; ok {
		patch.DueDateSet = true
		if err := json.Unmarshal(v, &patch.DueDate); err != nil {
			return patch, err
		}
	}
	if v, ok := raw["category_id"]; ok {
		patch.CategorySet = true
		if err := json.Unmarshal(v, &patch.CategoryID); err != nil {
			return patch, err
		}
	}

	return patch, nil
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return 0, false
	}
	return id, true
}
