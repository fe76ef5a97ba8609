package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/taskboard/task-api/internal/core/domain"
	"github.com/taskboard/task-api/internal/core/ports"
)

// TaskHandler handles the owner-scoped task routes. Identity comes from the
// Auth middleware; a task id alone never selects a row.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// List handles GET /api/tasks.
//
// @Summary      List the caller's tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status         query     string  false  "Filter by status (PENDING or COMPLETED)"
// @Param        sortByDueDate  query     bool    false  "Sort by due date, tasks without one last"
// @Success      200            {array}   taskResponse
// @Failure      401            {object}  messageResponse
// @Failure      500            {object}  messageResponse
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	userID, err := ctxUser(c)
	if err != nil {
		return err
	}

	// The status filter is passed through verbatim; an unknown value matches
	// no rows and the result is an empty list, as in the legacy backend.
	tasks, err := h.service.List(c.Request().Context(), ports.ListTasksInput{
		OwnerID:       userID,
		Status:        domain.TaskStatus(c.QueryParam("status")),
		SortByDueDate: c.QueryParam("sortByDueDate") == "true",
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Database error"})
	}

	return c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// Get handles GET /api/tasks/:id.
//
// @Summary      Get one task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Task id"
// @Success      200  {object}  taskResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	userID, err := ctxUser(c)
	if err != nil {
		return err
	}
	id, ok := taskID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, messageResponse{Message: "Task not found"})
	}

	task, err := h.service.Get(c.Request().Context(), id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, messageResponse{Message: "Task not found"})
		}
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Database error"})
	}

	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Create handles POST /api/tasks.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task details"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	userID, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}

	task, err := h.service.Create(c.Request().Context(), ports.CreateTaskInput{
		OwnerID:     userID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Error creating task"})
	}

	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Update handles PUT /api/tasks/:id — a full replace of title, description,
// status, and due date.
//
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Task id"
// @Param        body  body      updateTaskRequest  true  "New field values"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	userID, err := ctxUser(c)
	if err != nil {
		return err
	}
	id, ok := taskID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, messageResponse{Message: "Task not found"})
	}

	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}

	task, err := h.service.Update(c.Request().Context(), ports.UpdateTaskInput{
		ID:          id,
		OwnerID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		DueDate:     dueDate,
	})
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, messageResponse{Message: "Task not found"})
		}
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Error updating task"})
	}

	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Complete handles PUT /api/tasks/:id/complete. Completing an already
// completed task succeeds.
//
// @Summary      Mark a task completed
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Task id"
// @Success      200  {object}  taskResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/tasks/{id}/complete [put]
func (h *TaskHandler) Complete(c echo.Context) error {
	userID, err := ctxUser(c)
	if err != nil {
		return err
	}
	id, ok := taskID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, messageResponse{Message: "Task not found"})
	}

	task, err := h.service.Complete(c.Request().Context(), id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, messageResponse{Message: "Task not found"})
		}
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Error updating task"})
	}

	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete handles DELETE /api/tasks/:id.
//
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Task id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	userID, err := ctxUser(c)
	if err != nil {
		return err
	}
	id, ok := taskID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, messageResponse{Message: "Task not found"})
	}

	if err := h.service.Delete(c.Request().Context(), id, userID); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, messageResponse{Message: "Task not found"})
		}
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Error deleting task"})
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Task deleted successfully!"})
}

// taskID parses the :id path parameter. A non-numeric id matches no row in
// the legacy backend, so it reads as not found rather than a bad request.
func taskID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
