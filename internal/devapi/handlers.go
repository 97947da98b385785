package devapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/inkwell/dashboard/internal/core/domain"
	"github.com/inkwell/dashboard/internal/core/service"
)

// Handler serves the auth, users and contents endpoints.
type Handler struct {
	auth      *AuthService
	store     *MemoryStore
	validator *service.FormValidator
	log       zerolog.Logger
}

func NewHandler(auth *AuthService, store *MemoryStore, log zerolog.Logger) *Handler {
	return &Handler{auth: auth, store: store, validator: service.NewFormValidator(), log: log}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string    `json:"token"`
	User  *userJSON `json:"user"`
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid payload"))
	}

	token, user, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, errorBody("invalid email or password"))
		}
		return err
	}

	u := toUserJSON(user)
	return c.JSON(http.StatusOK, authResponse{Token: token, User: &u})
}

// Register creates a new account with the User role and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register [post]
func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid payload"))
	}

	token, user, err := h.auth.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserExists):
			return c.JSON(http.StatusConflict, errorBody(err.Error()))
		case errors.Is(err, ErrInvalidSignup):
			return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		}
		return err
	}

	h.log.Info().Int("user_id", user.ID).Msg("account registered")
	u := toUserJSON(user)
	return c.JSON(http.StatusCreated, authResponse{Token: token, User: &u})
}

// Verify returns the user the bearer token belongs to.
func (h *Handler) Verify(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	user, err := h.auth.CurrentUser(c.Request().Context(), claims)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}
	return c.JSON(http.StatusOK, toUserJSON(user))
}

// Logout revokes the bearer token.
func (h *Handler) Logout(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	h.auth.Revoke(claims)
	return c.NoContent(http.StatusNoContent)
}

// Refresh swaps the bearer token for a new one.
func (h *Handler) Refresh(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	token, err := h.auth.Refresh(c.Request().Context(), claims)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

type roleRef struct {
	Name string `json:"name"`
}

type userWithRole struct {
	ID       int      `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Role     *roleRef `json:"role"`
}

// GetUser returns a user record. The role relation is included only with
// ?populate=role and is null for users without one.
func (h *Handler) GetUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, errorBody(ErrUserNotFound.Error()))
	}
	user, err := h.store.FindByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, errorBody(err.Error()))
		}
		return err
	}

	if !strings.Contains(c.QueryParam("populate"), "role") {
		return c.JSON(http.StatusOK, map[string]any{"id": user.ID, "username": user.Username, "email": user.Email})
	}
	out := userWithRole{ID: user.ID, Username: user.Username, Email: user.Email}
	if user.Role != domain.RoleNone {
		out.Role = &roleRef{Name: user.Role.String()}
	}
	return c.JSON(http.StatusOK, out)
}

type contentPayload struct {
	Title       *string               `json:"title"`
	Description *string               `json:"description"`
	Body        *string               `json:"body"`
	Status      *domain.ContentStatus `json:"status"`
}

func (p contentPayload) editsFields() bool {
	return p.Title != nil || p.Description != nil || p.Body != nil
}

type contentRequest struct {
	Data *contentPayload `json:"data"`
}

// ListContents returns every item, flat.
func (h *Handler) ListContents(c echo.Context) error {
	items := h.store.ListContents(c.Request().Context())
	out := make([]flatContent, 0, len(items))
	for _, it := range items {
		out = append(out, flatContent{ID: it.ID, contentAttributes: it.attributes()})
	}
	return c.JSON(http.StatusOK, map[string]any{"data": out})
}

// GetContent returns one item with its fields under attributes.
func (h *Handler) GetContent(c echo.Context) error {
	id, err := contentID(c)
	if err != nil {
		return err
	}
	item, err := h.store.GetContent(c.Request().Context(), id)
	if err != nil {
		return contentError(c, err)
	}
	return c.JSON(http.StatusOK, nested(item))
}

// CreateContent stores a new item. Only Admin and SuperAdmin may create;
// new items are drafts unless the payload says otherwise and the caller
// may publish.
func (h *Handler) CreateContent(c echo.Context) error {
	var req contentRequest
	if err := c.Bind(&req); err != nil || req.Data == nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid payload"))
	}
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	author, err := h.auth.CurrentUser(c.Request().Context(), claims)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}

	item := &Content{Status: domain.ContentStatusDraft, AuthorID: author.ID, AuthorName: author.Name}
	applyFields(item, *req.Data)
	if err := h.validator.Validate(draftOf(item)); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
	}
	if st := req.Data.Status; st != nil && *st != domain.ContentStatusDraft {
		if !st.Valid() {
			return c.JSON(http.StatusBadRequest, errorBody("unknown status"))
		}
		if !permitted(c, domain.PermPublishContent) {
			return c.JSON(http.StatusForbidden, errorBody("forbidden"))
		}
		item.Status = *st
	}

	created := h.store.CreateContent(c.Request().Context(), item)
	h.log.Info().Int("content_id", created.ID).Int("user_id", author.ID).Msg("content created")
	return c.JSON(http.StatusCreated, nested(created))
}

// UpdateContent applies a partial update. A status-only payload needs the
// publish permission, anything touching the fields needs edit.
func (h *Handler) UpdateContent(c echo.Context) error {
	id, err := contentID(c)
	if err != nil {
		return err
	}
	var req contentRequest
	if err := c.Bind(&req); err != nil || req.Data == nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid payload"))
	}
	p := *req.Data

	need := domain.PermPublishContent
	if p.editsFields() {
		need = domain.PermEditContent
	}
	if !permitted(c, need) || (p.Status != nil && !permitted(c, domain.PermPublishContent)) {
		return c.JSON(http.StatusForbidden, errorBody("forbidden"))
	}
	if p.Status != nil && !p.Status.Valid() {
		return c.JSON(http.StatusBadRequest, errorBody("unknown status"))
	}

	var invalid error
	updated, err := h.store.UpdateContent(c.Request().Context(), id, func(item *Content) error {
		applyFields(item, p)
		if p.Status != nil {
			item.Status = *p.Status
		}
		if err := h.validator.Validate(draftOf(item)); err != nil {
			invalid = err
			return err
		}
		return nil
	})
	if invalid != nil {
		return c.JSON(http.StatusBadRequest, errorBody(invalid.Error()))
	}
	if err != nil {
		return contentError(c, err)
	}
	return c.JSON(http.StatusOK, nested(updated))
}

// DeleteContent removes an item.
func (h *Handler) DeleteContent(c echo.Context) error {
	id, err := contentID(c)
	if err != nil {
		return err
	}
	if err := h.store.DeleteContent(c.Request().Context(), id); err != nil {
		return contentError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func contentID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, ErrInvalidContentID.Error())
	}
	return id, nil
}

func contentError(c echo.Context, err error) error {
	if errors.Is(err, ErrContentNotFound) {
		return c.JSON(http.StatusNotFound, errorBody(err.Error()))
	}
	return err
}

func nested(item *Content) map[string]any {
	return map[string]any{"data": nestedContent{ID: item.ID, Attributes: item.attributes()}}
}

func applyFields(item *Content, p contentPayload) {
	if p.Title != nil {
		item.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		item.Description = strings.TrimSpace(*p.Description)
	}
	if p.Body != nil {
		item.Body = *p.Body
	}
}

func draftOf(item *Content) domain.ContentDraft {
	return domain.ContentDraft{Title: item.Title, Description: item.Description, Body: item.Body}
}
