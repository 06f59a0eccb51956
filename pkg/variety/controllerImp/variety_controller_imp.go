package controllerImp

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"sprout/entities"
	"sprout/pkg/variety/repository"
)

type VarietyCtrl struct{ repo repository.VarietyRepository }

func New(repo repository.VarietyRepository) *VarietyCtrl { return &VarietyCtrl{repo} }

func (h *VarietyCtrl) Create(c echo.Context) error {
	var v entities.Variety
	if err := c.Bind(&v); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	if v.Name == "" || len(v.Timeline) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name and timeline required"})
	}
	v.VarietyID = 0
	if err := h.repo.Create(&v); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *VarietyCtrl) Get(c echo.Context) error {
	id, _ := strconv.Atoi(c.Param("id"))
	v, err := h.repo.FindByID(uint(id))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if v == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	return c.JSON(http.StatusOK, v)
}

func (h *VarietyCtrl) List(c echo.Context) error {
	out, err := h.repo.List()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, out)
}
