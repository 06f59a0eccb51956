package controllerImp

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"sprout/entities"
	"sprout/pkg/plant/repository"
)

type PlantCtrl struct{ repo repository.PlantRepository }

func New(repo repository.PlantRepository) *PlantCtrl { return &PlantCtrl{repo} }

type createReq struct {
	VarietyID   uint   `json:"variety_id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Container   string `json:"container"`
	Count       int    `json:"count"`
	PlantedDate string `json:"planted_date"`
}

func (h *PlantCtrl) Create(c echo.Context) error {
	uid := c.Get("uid").(string)
	var req createReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	pd, err := time.Parse("2006-01-02", req.PlantedDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "planted_date must be YYYY-MM-DD"})
	}
	p := &entities.Plant{
		UserID: uid, VarietyID: req.VarietyID, Name: req.Name,
		Location: req.Location, Container: req.Container, Count: req.Count,
		PlantedDate: pd,
	}
	if err := h.repo.Create(p); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *PlantCtrl) Get(c echo.Context) error {
	uid := c.Get("uid").(string)
	id, _ := strconv.Atoi(c.Param("id"))
	p, err := h.repo.FindByID(uint(id), uid)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PlantCtrl) List(c echo.Context) error {
	uid := c.Get("uid").(string)
	out, err := h.repo.ListActiveByUser(uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, out)
}

// ConfirmStage pins stage progression to a user-asserted stage + date pair.
func (h *PlantCtrl) ConfirmStage(c echo.Context) error {
	uid := c.Get("uid").(string)
	id, _ := strconv.Atoi(c.Param("id"))
	var body struct {
		Stage       string `json:"stage"`
		ConfirmedAt string `json:"confirmed_at"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	if body.Stage == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "stage required"})
	}
	at := time.Now()
	if body.ConfirmedAt != "" {
		d, err := time.Parse("2006-01-02", body.ConfirmedAt)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "confirmed_at must be YYYY-MM-DD"})
		}
		at = d
	}
	conf := &entities.StageConfirmation{Stage: body.Stage, ConfirmedAt: at}
	if err := h.repo.ConfirmStage(uint(id), uid, conf); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	return c.JSON(http.StatusOK, map[string]any{"plant_id": id, "confirmed": conf})
}

func (h *PlantCtrl) Deactivate(c echo.Context) error {
	uid := c.Get("uid").(string)
	id, _ := strconv.Atoi(c.Param("id"))
	if err := h.repo.Deactivate(uint(id), uid); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deactivated"})
}
