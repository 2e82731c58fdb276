package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"transit-admin/internal/domain"
	"transit-admin/internal/form"
	"transit-admin/internal/logger"
	"transit-admin/internal/metrics"
	"transit-admin/internal/middleware"
	"transit-admin/internal/session"
	"transit-admin/internal/tmsapi"
	"transit-admin/internal/validator"
)

// listPageSize is how many users the directory shows per page.
const listPageSize = 25

// Banner text for upstream failures. The form keeps whatever the admin
// entered so the submission can be corrected and retried.
const (
	bannerListFailed   = "The user directory is unavailable right now."
	bannerLoadFailed   = "Could not load the user record. Reload to try again."
	bannerUpdateFailed = "Something went wrong and the changes were not saved."
)

// fieldMessages maps validation codes, ours and the API's, to the text
// shown under a field.
var fieldMessages = map[string]string{
	"name_required":        "Name is required.",
	"email_required":       "Email is required.",
	"invalid_email_format": "Enter a valid email address.",
	"role_required":        "Select a role.",
	"invalid_role":         "Select one of the listed roles.",
	"department_required":  "Department is required for customer service agents.",
	"company_required":     "Company is required for company administrators.",
	"email_already_in_use": "Another account already uses this email.",
}

// UserHandler handles the user directory and edit pages.
type UserHandler struct {
	api       tmsapi.Client
	sessions  *session.Manager
	validator *validator.Validator
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(api tmsapi.Client, sessions *session.Manager, v *validator.Validator) *UserHandler {
	return &UserHandler{
		api:       api,
		sessions:  sessions,
		validator: v,
	}
}

// usersData feeds the user list template.
type usersData struct {
	page
	Search   string
	Users    []domain.User
	Page     int
	PrevPage int
	NextPage int
	HasPrev  bool
	HasNext  bool
	Total    int
	Banner   string
}

// editData feeds the edit form template.
type editData struct {
	page
	Form        *form.EditUserForm
	Roles       []domain.Role
	Permissions []domain.Permission
	FieldErrors map[string]string
	Banner      string
	Notice      string
}

// notFoundData feeds the not-found page.
type notFoundData struct {
	page
	UserID string
}

// NotFound renders the fallback page for unknown routes.
func NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "not_found", notFoundData{page: page{Title: "Not found"}})
}

// List handles GET /admin/users
func (h *UserHandler) List(c *gin.Context) {
	sess := middleware.GetSession(c)
	if sess == nil {
		middleware.RedirectToLogin(c, "session_expired")
		return
	}

	search := strings.TrimSpace(c.Query("q"))
	pageNum, _ := strconv.Atoi(c.Query("page"))
	if pageNum < 1 {
		pageNum = 1
	}

	data := usersData{
		page:   page{Title: "Users", AdminName: sess.Name},
		Search: search,
		Page:   pageNum,
	}

	result, err := h.api.ListUsers(c.Request.Context(), sess.Token, tmsapi.ListOptions{
		Search:   search,
		Page:     pageNum,
		PageSize: listPageSize,
	})
	if errors.Is(err, tmsapi.ErrUnauthorized) {
		h.expireSession(c)
		return
	}
	if err != nil {
		logger.ErrorContext(c.Request.Context(), "User listing failed", slog.String("error", err.Error()))
		data.Banner = bannerListFailed
		c.HTML(http.StatusBadGateway, "users", data)
		return
	}

	size := result.PageSize
	if size <= 0 {
		size = listPageSize
	}

	data.Users = result.Users
	data.Total = result.Total
	data.HasPrev = pageNum > 1
	data.PrevPage = pageNum - 1
	data.HasNext = pageNum*size < result.Total
	data.NextPage = pageNum + 1
	c.HTML(http.StatusOK, "users", data)
}

// EditPage handles GET /admin/users/:id/edit
func (h *UserHandler) EditPage(c *gin.Context) {
	sess := middleware.GetSession(c)
	if sess == nil {
		middleware.RedirectToLogin(c, "session_expired")
		return
	}

	user, ok := h.loadUser(c, sess, c.Param("id"))
	if !ok {
		return
	}

	data := h.newEditData(sess, form.FromUser(user))
	if c.Query("saved") == "1" {
		data.Notice = "Changes saved."
	}
	c.HTML(http.StatusOK, "user_edit", data)
}

// Update handles POST /admin/users/:id/edit
func (h *UserHandler) Update(c *gin.Context) {
	sess := middleware.GetSession(c)
	if sess == nil {
		middleware.RedirectToLogin(c, "session_expired")
		return
	}

	id := c.Param("id")
	user, ok := h.loadUser(c, sess, id)
	if !ok {
		return
	}

	f := form.FromValues(user, form.Values{
		Name:        c.PostForm("name"),
		Email:       c.PostForm("email"),
		Phone:       c.PostForm("phone"),
		Role:        c.PostForm("role"),
		Department:  c.PostForm("department"),
		Company:     c.PostForm("company"),
		Permissions: c.PostFormArray("permissions"),
		Active:      c.PostForm("active") != "",
	})
	data := h.newEditData(sess, f)

	if err := h.validator.ValidateEditUserForm(f); err != nil {
		data.FieldErrors = presentFieldErrors(validator.FieldErrors(err))
		c.HTML(http.StatusBadRequest, "user_edit", data)
		return
	}

	if !f.Dirty() {
		data.Notice = "No changes to save."
		c.HTML(http.StatusOK, "user_edit", data)
		return
	}

	log := logger.WithUserID(id)
	_, err := h.api.UpdateUser(c.Request.Context(), sess.Token, id, f.Payload())
	if errors.Is(err, tmsapi.ErrUnauthorized) {
		h.expireSession(c)
		return
	}
	if errors.Is(err, tmsapi.ErrNotFound) {
		c.HTML(http.StatusNotFound, "not_found", notFoundData{
			page:   page{Title: "User not found", AdminName: sess.Name},
			UserID: id,
		})
		return
	}
	if err != nil {
		var apiErr *tmsapi.APIError
		if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
			data.FieldErrors = presentFieldErrors(apiErr.Fields)
			c.HTML(http.StatusBadRequest, "user_edit", data)
			return
		}
		log.ErrorContext(c.Request.Context(), "User update failed", slog.String("error", err.Error()))
		data.Banner = bannerUpdateFailed
		c.HTML(http.StatusBadGateway, "user_edit", data)
		return
	}

	log.InfoContext(c.Request.Context(), "User record updated",
		slog.String("admin", sess.Name),
		slog.Any("changed_fields", f.Changes()))
	c.Redirect(http.StatusFound, editPath(id)+"?saved=1")
}

func (h *UserHandler) newEditData(sess *session.Session, f *form.EditUserForm) editData {
	return editData{
		page:        page{Title: "Edit user", AdminName: sess.Name},
		Form:        f,
		Roles:       domain.Roles(),
		Permissions: domain.Permissions(),
	}
}

// loadUser fetches the record both edit routes start from, rendering
// the failure response when it cannot. The bool reports whether the
// caller may continue.
func (h *UserHandler) loadUser(c *gin.Context, sess *session.Session, id string) (*domain.User, bool) {
	user, err := h.api.GetUser(c.Request.Context(), sess.Token, id)
	switch {
	case errors.Is(err, tmsapi.ErrUnauthorized):
		h.expireSession(c)
		return nil, false
	case errors.Is(err, tmsapi.ErrNotFound):
		c.HTML(http.StatusNotFound, "not_found", notFoundData{
			page:   page{Title: "User not found", AdminName: sess.Name},
			UserID: id,
		})
		return nil, false
	case err != nil:
		logger.ErrorContext(c.Request.Context(), "Loading user failed",
			slog.String("user_id", id), slog.String("error", err.Error()))
		data := h.newEditData(sess, nil)
		data.Banner = bannerLoadFailed
		c.HTML(http.StatusBadGateway, "user_edit", data)
		return nil, false
	}
	return user, true
}

// expireSession clears the cookie and sends the admin back to login.
// Reached when the API rejects the stored bearer token mid-flow.
func (h *UserHandler) expireSession(c *gin.Context) {
	h.sessions.Clear(c)
	metrics.ObserveSessionExpiry()
	middleware.RedirectToLogin(c, "session_expired")
}

// editPath builds the edit page path for a user id.
func editPath(id string) string {
	return usersPath + "/" + url.PathEscape(id) + "/edit"
}

// presentFieldErrors converts field error codes to display text,
// passing through anything it does not recognize.
func presentFieldErrors(raw map[string]string) map[string]string {
	out := make(map[string]string, len(raw))
	for field, code := range raw {
		if msg, ok := fieldMessages[code]; ok {
			out[field] = msg
		} else {
			out[field] = code
		}
	}
	return out
}
