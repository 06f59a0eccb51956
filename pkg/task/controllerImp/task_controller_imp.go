package controllerImp

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"sprout/entities"
	plantrepo "sprout/pkg/plant/repository"
	"sprout/pkg/task/repository"
)

type TaskCtrl struct {
	repo   repository.TaskRepository
	plants plantrepo.PlantRepository
}

func New(repo repository.TaskRepository, plants plantrepo.PlantRepository) *TaskCtrl {
	return &TaskCtrl{repo: repo, plants: plants}
}

func (h *TaskCtrl) ListForPlant(c echo.Context) error {
	uid := c.Get("uid").(string)
	pid, _ := strconv.Atoi(c.Param("id"))
	if _, err := h.plants.FindByID(uint(pid), uid); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	out, err := h.repo.AllForPlant(uint(pid))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TaskCtrl) ListForUser(c echo.Context) error {
	uid := c.Get("uid").(string)
	out, err := h.repo.ListForUser(uid, c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		if errors.Is(err, repository.ErrBadDateRange) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, out)
}

// Patch marks a task completed (or back to pending). A completed task is
// never regenerated by later sync passes.
func (h *TaskCtrl) Patch(c echo.Context) error {
	tid := c.Param("task_id")
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	if body.Status == "" {
		body.Status = entities.StatusCompleted
	}
	if body.Status != entities.StatusPending && body.Status != entities.StatusCompleted {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "status must be pending or completed"})
	}
	if err := h.repo.PatchStatus(tid, body.Status); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
