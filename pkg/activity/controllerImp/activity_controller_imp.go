package controllerImp

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"sprout/entities"
	"sprout/pkg/activity/serviceImp"
	plantrepo "sprout/pkg/plant/repository"
)

type ActivityCtrl struct {
	svc    *serviceImp.ActivitySvc
	plants plantrepo.PlantRepository
}

func New(svc *serviceImp.ActivitySvc, plants plantrepo.PlantRepository) *ActivityCtrl {
	return &ActivityCtrl{svc: svc, plants: plants}
}

type activityReq struct {
	Type       string                  `json:"type"`
	OccurredAt string                  `json:"occurred_at"`
	Detail     entities.ActivityDetail `json:"detail"`
	Notes      string                  `json:"notes"`
}

func (req *activityReq) toEntity(plantID uint, uid string) (*entities.CareActivity, error) {
	a := &entities.CareActivity{
		PlantID: plantID, UserID: uid, Type: req.Type,
		Detail: req.Detail, Notes: req.Notes,
	}
	if req.OccurredAt != "" {
		d, err := time.Parse("2006-01-02", req.OccurredAt)
		if err != nil {
			return nil, err
		}
		a.OccurredAt = d
	}
	return a, nil
}

func (h *ActivityCtrl) Create(c echo.Context) error {
	uid := c.Get("uid").(string)
	pid, _ := strconv.Atoi(c.Param("id"))
	if _, err := h.plants.FindByID(uint(pid), uid); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	var req activityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	if req.Type == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "type required"})
	}
	a, err := req.toEntity(uint(pid), uid)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "occurred_at must be YYYY-MM-DD"})
	}
	if err := h.svc.Log(a); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *ActivityCtrl) Bulk(c echo.Context) error {
	uid := c.Get("uid").(string)
	pid, _ := strconv.Atoi(c.Param("id"))
	if _, err := h.plants.FindByID(uint(pid), uid); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	var body struct {
		Activities []activityReq `json:"activities"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	as := make([]entities.CareActivity, 0, len(body.Activities))
	for _, req := range body.Activities {
		if req.Type == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "type required on every activity"})
		}
		a, err := req.toEntity(uint(pid), uid)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "occurred_at must be YYYY-MM-DD"})
		}
		as = append(as, *a)
	}
	if err := h.svc.BulkLog(as); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, map[string]any{"logged": len(as)})
}

func (h *ActivityCtrl) List(c echo.Context) error {
	uid := c.Get("uid").(string)
	pid, _ := strconv.Atoi(c.Param("id"))
	out, err := h.svc.ListByPlant(uint(pid), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ActivityCtrl) Delete(c echo.Context) error {
	uid := c.Get("uid").(string)
	aid, _ := strconv.Atoi(c.Param("activity_id"))
	if err := h.svc.Delete(uint(aid), uid); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}
