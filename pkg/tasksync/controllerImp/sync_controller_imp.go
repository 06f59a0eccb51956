package controllerImp

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"sprout/entities"
	"sprout/pkg/defaults"
	plantrepo "sprout/pkg/plant/repository"
	"sprout/pkg/protocol"
	"sprout/pkg/stage"
	"sprout/pkg/tasksync"
	varietyrepo "sprout/pkg/variety/repository"
)

type guideSearcher interface {
	Search(query string, k int) ([]entities.GuideChunk, error)
	DocsMeta(ids []uint) (map[uint]entities.GuideDocument, error)
}

type SyncCtrl struct {
	coord     *tasksync.Coordinator
	plants    plantrepo.PlantRepository
	varieties varietyrepo.VarietyRepository
	resolver  *defaults.Resolver
	kb        guideSearcher
}

func New(coord *tasksync.Coordinator, p plantrepo.PlantRepository, v varietyrepo.VarietyRepository, r *defaults.Resolver, kb guideSearcher) *SyncCtrl {
	return &SyncCtrl{coord: coord, plants: p, varieties: v, resolver: r, kb: kb}
}

// Sync runs one coordinator pass and returns the diff actually applied.
func (h *SyncCtrl) Sync(c echo.Context) error {
	uid := c.Get("uid").(string)
	pid, _ := strconv.Atoi(c.Param("id"))
	if _, err := h.plants.FindByID(uint(pid), uid); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	diff, err := h.coord.SyncPlant(c.Request().Context(), uint(pid))
	if err != nil {
		if err == tasksync.ErrSuperseded {
			return c.JSON(http.StatusConflict, map[string]string{"error": "superseded by a newer sync"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"created":    diff.ToCreate,
		"superseded": diff.ToSupersede,
	})
}

// Defaults answers "what should I log right now" for watering/fertilizing.
func (h *SyncCtrl) Defaults(c echo.Context) error {
	uid := c.Get("uid").(string)
	pid, _ := strconv.Atoi(c.Param("id"))
	kind := protocol.Kind(c.QueryParam("kind"))
	if kind != protocol.Watering && kind != protocol.Fertilizing {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "kind must be watering or fertilizing"})
	}
	p, err := h.plants.FindByID(uint(pid), uid)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	v, err := h.varieties.FindByID(p.VarietyID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	cur := ""
	if v != nil {
		cur = stage.Current(p.PlantedDate, stage.Timeline(v.Timeline), time.Now(), p.Confirmed)
	}
	rec := h.resolver.Recommend(v, cur, kind)

	resp := map[string]any{
		"plant_id":       p.PlantID,
		"stage":          cur,
		"recommendation": rec,
	}
	if refs := h.suggestArticles(v, cur, kind); len(refs) > 0 {
		resp["suggested_articles"] = refs
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *SyncCtrl) suggestArticles(v *entities.Variety, cur string, kind protocol.Kind) []entities.ArticleRef {
	if h.kb == nil || v == nil {
		return nil
	}
	query := strings.Join([]string{v.Name, v.Category, cur, string(kind)}, " ")
	chunks, err := h.kb.Search(query, 6)
	if err != nil || len(chunks) == 0 {
		return nil
	}
	seen := map[uint]struct{}{}
	ids := make([]uint, 0, len(chunks))
	for _, ch := range chunks {
		if _, ok := seen[ch.DocID]; !ok {
			seen[ch.DocID] = struct{}{}
			ids = append(ids, ch.DocID)
		}
	}
	meta, err := h.kb.DocsMeta(ids)
	if err != nil {
		return nil
	}
	refs := make([]entities.ArticleRef, 0, len(ids))
	for _, id := range ids {
		if d, ok := meta[id]; ok {
			refs = append(refs, entities.ArticleRef{Title: d.Title, URL: d.SourceURL})
		}
	}
	if len(refs) > 3 {
		refs = refs[:3]
	}
	return refs
}
