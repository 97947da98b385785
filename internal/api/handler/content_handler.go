package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkwell/dashboard/internal/api/metrics"
	"github.com/inkwell/dashboard/internal/core/domain"
	"github.com/inkwell/dashboard/internal/core/ports"
)

type ContentHandler struct {
	content ports.ContentService
	session ports.SessionReader
}

func NewContentHandler(content ports.ContentService, session ports.SessionReader) *ContentHandler {
	return &ContentHandler{content: content, session: session}
}

type contentListResponse struct {
	Items       []domain.ContentItem `json:"items"`
	Permissions permissions          `json:"permissions"`
}

type contentResponse struct {
	Item        domain.ContentItem `json:"item"`
	Permissions permissions        `json:"permissions"`
}

// List returns every content item visible to the session.
//
// @Summary      List content
// @Tags         content
// @Produce      json
// @Success      200   {object}  contentListResponse
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /content [get]
func (h *ContentHandler) List(c echo.Context) error {
	items, err := h.content.List(c.Request().Context())
	if err != nil {
		return err
	}
	if items == nil {
		items = []domain.ContentItem{}
	}
	return c.JSON(http.StatusOK, contentListResponse{
		Items:       items,
		Permissions: permissionsFor(ctxSession(c, h.session)),
	})
}

// Get returns one content item.
//
// @Summary      Get content
// @Tags         content
// @Produce      json
// @Param        id    path      string  true  "Content ID"
// @Success      200   {object}  contentResponse
// @Failure      404   {object}  map[string]string
// @Router       /content/{id} [get]
func (h *ContentHandler) Get(c echo.Context) error {
	item, err := h.content.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contentResponse{Item: item, Permissions: permissionsFor(ctxSession(c, h.session))})
}

// NewForm serves the empty creation form.
//
// @Summary      Content creation form
// @Tags         content
// @Produce      json
// @Success      200   {object}  domain.ContentDraft
// @Success      302
// @Router       /content/create [get]
func (h *ContentHandler) NewForm(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.ContentDraft{})
}

// EditForm serves the edit form prefilled with the item's current fields.
//
// @Summary      Content edit form
// @Tags         content
// @Produce      json
// @Param        id    path      string  true  "Content ID"
// @Success      200   {object}  domain.ContentDraft
// @Success      302
// @Failure      404   {object}  map[string]string
// @Router       /content/edit/{id} [get]
func (h *ContentHandler) EditForm(c echo.Context) error {
	item, err := h.content.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, domain.ContentDraft{
		Title:       item.Title,
		Description: item.Description,
		Body:        item.Body,
	})
}

// Create stores a new draft.
//
// @Summary      Create content
// @Tags         content
// @Accept       json
// @Produce      json
// @Param        body  body      domain.ContentDraft  true  "Content fields"
// @Success      201   {object}  contentResponse
// @Failure      403   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /content/create [post]
func (h *ContentHandler) Create(c echo.Context) error {
	var draft domain.ContentDraft
	if err := c.Bind(&draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	item, err := h.content.Create(c.Request().Context(), draft)
	metrics.ContentActionsTotal.WithLabelValues("create", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, contentResponse{Item: item, Permissions: permissionsFor(ctxSession(c, h.session))})
}

// Update replaces the editable fields of an item.
//
// @Summary      Edit content
// @Tags         content
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Content ID"
// @Param        body  body      domain.ContentDraft  true  "Content fields"
// @Success      200   {object}  contentResponse
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /content/edit/{id} [put]
func (h *ContentHandler) Update(c echo.Context) error {
	var draft domain.ContentDraft
	if err := c.Bind(&draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	item, err := h.content.Update(c.Request().Context(), c.Param("id"), draft)
	metrics.ContentActionsTotal.WithLabelValues("update", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contentResponse{Item: item, Permissions: permissionsFor(ctxSession(c, h.session))})
}

// TogglePublish flips an item between draft and published.
//
// @Summary      Publish / unpublish content
// @Tags         content
// @Produce      json
// @Param        id    path      string  true  "Content ID"
// @Success      200   {object}  contentResponse
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /content/{id}/publish [post]
func (h *ContentHandler) TogglePublish(c echo.Context) error {
	item, err := h.content.TogglePublish(c.Request().Context(), c.Param("id"))
	metrics.ContentActionsTotal.WithLabelValues("toggle_publish", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contentResponse{Item: item, Permissions: permissionsFor(ctxSession(c, h.session))})
}

// Delete removes an item.
//
// @Summary      Delete content
// @Tags         content
// @Param        id    path      string  true  "Content ID"
// @Success      204
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /content/{id} [delete]
func (h *ContentHandler) Delete(c echo.Context) error {
	err := h.content.Delete(c.Request().Context(), c.Param("id"))
	metrics.ContentActionsTotal.WithLabelValues("delete", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
