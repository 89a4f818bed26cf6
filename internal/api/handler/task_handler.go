package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rsandoval/tasks-api/internal/api/metrics"
	"github.com/rsandoval/tasks-api/internal/core/ports"
)

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// List handles GET /api/tasks.
//
// @Summary      List the caller's tasks
// @Description  Incomplete tasks first, then by id.
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   taskResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	tasks, err := h.service.ListTasks(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskListResponse(tasks))
}

// Search handles GET /api/tasks/search?completed={bool}.
//
// @Summary      Filter the caller's tasks by completion
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        completed  query     bool  true  "Completion flag"
// @Success      200        {array}   taskResponse
// @Failure      400        {object}  errorResponse
// @Failure      401        {object}  errorResponse
// @Router       /api/tasks/search [get]
func (h *TaskHandler) Search(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var completed bool
	if err := echo.QueryParamsBinder(c).MustBool("completed", &completed).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "completed must be true or false")
	}

	tasks, err := h.service.SearchByCompletion(c.Request().Context(), id, completed)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskListResponse(tasks))
}

// Get handles GET /api/tasks/:id.
//
// @Summary      Get a task by id
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  taskResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	task, err := h.service.GetTask(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Create handles POST /api/tasks.
//
// @Summary      Create a task owned by the caller
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      taskRequest  true  "Task"
// @Success      201   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req taskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.service.CreateTask(c.Request().Context(), id, toTaskInput(req))
	if err != nil {
		return err
	}
	metrics.TasksCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, toTaskResponse(task))
}

// Update handles PUT /api/tasks/:id. Description and completed are both
// replaced.
//
// @Summary      Replace a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Task id"
// @Param        body  body      taskRequest  true  "Task"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req taskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.service.UpdateTask(c.Request().Context(), id, c.Param("id"), toTaskInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete handles DELETE /api/tasks/:id.
//
// @Summary      Delete a task
// @Tags         tasks
// @Security     BearerAuth
// @Param        id   path  string  true  "Task id"
// @Success      200
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteTask(c.Request().Context(), id, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}
