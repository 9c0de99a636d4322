package httpapi

import (
	"net/http"
	"net/url"
	"strings"

	"tilp-connect/internal/service"

	"go.uber.org/zap"
)

const adminPrefix = "/admin/api/v1/"

// AdminHandler admin tools: users, children, lookup lists and raw tables.
type AdminHandler struct {
	admin  *service.AdminService
	logger *zap.Logger
}

func NewAdminHandler(admin *service.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, logger: logger}
}

func (h *AdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.EscapedPath(), adminPrefix), "/")
	for i, p := range parts {
		v, err := url.PathUnescape(p)
		if err != nil || v == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		parts[i] = v
	}

	switch {
	case parts[0] == "users" && len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.ListUsers(w, r)
		case http.MethodPost:
			h.SaveUser(w, r)
		default:
			methodNotAllowed(w)
		}
	case parts[0] == "users" && len(parts) == 2:
		if r.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		h.DeleteUser(w, r, parts[1])
	case parts[0] == "children" && len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.ListChildren(w, r)
		case http.MethodPost:
			h.SaveChild(w, r)
		default:
			methodNotAllowed(w)
		}
	case parts[0] == "children" && len(parts) == 2:
		if r.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		h.DeleteChild(w, r, parts[1])
	case parts[0] == "lists" && len(parts) == 2:
		switch r.Method {
		case http.MethodGet:
			h.ListItems(w, r, parts[1])
		case http.MethodPost:
			h.AddItem(w, r, parts[1])
		default:
			methodNotAllowed(w)
		}
	case parts[0] == "lists" && len(parts) == 3:
		if r.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		h.DeleteItem(w, r, parts[1], parts[2])
	case parts[0] == "tables" && len(parts) == 2:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.ReadTable(w, r, parts[1])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListUsers(r.Context(), identityFrom(r))
	if err != nil {
		writeError(w, h.logger, "ListUsers", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": users, "total": len(users)}))
}

func (h *AdminHandler) SaveUser(w http.ResponseWriter, r *http.Request) {
	var req service.SaveUserRequest
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	user, err := h.admin.SaveUser(r.Context(), identityFrom(r), req)
	if err != nil {
		writeError(w, h.logger, "SaveUser", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(user))
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request, username string) {
	if err := h.admin.DeleteUser(r.Context(), identityFrom(r), username); err != nil {
		writeError(w, h.logger, "DeleteUser", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}

func (h *AdminHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	children, err := h.admin.ListChildren(r.Context(), identityFrom(r))
	if err != nil {
		writeError(w, h.logger, "ListChildren", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": children, "total": len(children)}))
}

func (h *AdminHandler) SaveChild(w http.ResponseWriter, r *http.Request) {
	var req service.SaveChildRequest
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	child, err := h.admin.SaveChild(r.Context(), identityFrom(r), req)
	if err != nil {
		writeError(w, h.logger, "SaveChild", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(child))
}

// DeleteChild result: {"unlinked": [usernames whose child_link was reset]}
func (h *AdminHandler) DeleteChild(w http.ResponseWriter, r *http.Request, childName string) {
	unlinked, err := h.admin.DeleteChild(r.Context(), identityFrom(r), childName)
	if err != nil {
		writeError(w, h.logger, "DeleteChild", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"unlinked": unlinked}))
}

func (h *AdminHandler) ListItems(w http.ResponseWriter, r *http.Request, list string) {
	items, err := h.admin.ListItems(r.Context(), identityFrom(r), list)
	if err != nil {
		writeError(w, h.logger, "ListItems", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": items, "total": len(items)}))
}

// AddItem body: {"name": "..."}
func (h *AdminHandler) AddItem(w http.ResponseWriter, r *http.Request, list string) {
	var body struct {
		Name string `json:"name"`
	}
	if err := readBodyJSON(r, maxJSONBody, &body); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	if err := h.admin.AddItem(r.Context(), identityFrom(r), list, body.Name); err != nil {
		writeError(w, h.logger, "AddItem", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}

func (h *AdminHandler) DeleteItem(w http.ResponseWriter, r *http.Request, list, name string) {
	if err := h.admin.DeleteItem(r.Context(), identityFrom(r), list, name); err != nil {
		writeError(w, h.logger, "DeleteItem", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}

func (h *AdminHandler) ReadTable(w http.ResponseWriter, r *http.Request, table string) {
	rows, err := h.admin.ReadTable(r.Context(), identityFrom(r), table)
	if err != nil {
		writeError(w, h.logger, "ReadTable", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": rows, "total": len(rows)}))
}
