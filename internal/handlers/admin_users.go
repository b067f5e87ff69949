package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"pricepoint-backend/internal/domain"
)

type userRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Role  *string `json:"role,omitempty"`
}

// apply переносит присланные поля в пользователя с проверкой
func (req userRequest) apply(u *domain.User) error {
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		u.Email = strings.TrimSpace(*req.Email)
	}
	if req.Role != nil {
		role, ok := domain.ParsePersona(*req.Role)
		if !ok || !role.IsInternal() {
			return fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, *req.Role)
		}
		u.Role = role
	}
	if u.Name == "" || u.Email == "" {
		return fmt.Errorf("%w: name and email are required", domain.ErrInvalidInput)
	}
	return nil
}

// HandleAdminUsers обслуживает /api/admin/users (только SALES_ADMIN).
//
// GET  -> справочник сотрудников.
// POST -> добавить сотрудника.
func (e *Env) HandleAdminUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := e.requireAdmin(w, r); !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		list, err := e.Store.ListUsers(r.Context())
		if err != nil {
			e.writeError(w, r, err)
			return
		}
		e.writeJSON(w, list)

	case http.MethodPost:
		var req userRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		u := &domain.User{Role: domain.PersonaPresales}
		if err := req.apply(u); err != nil {
			e.writeError(w, r, err)
			return
		}
		if err := e.Store.CreateUser(r.Context(), u); err != nil {
			e.writeError(w, r, err)
			return
		}
		e.writeJSONStatus(w, http.StatusCreated, u)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleAdminUserDetail обслуживает:
//
//	PUT    /api/admin/users/{id} — обновление
//	DELETE /api/admin/users/{id} — удаление
func (e *Env) HandleAdminUserDetail(w http.ResponseWriter, r *http.Request) {
	if _, ok := e.requireAdmin(w, r); !ok {
		return
	}

	user, err := e.Store.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		e.writeError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req userRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		wasAdmin := user.Role == domain.PersonaSalesAdmin
		if err := req.apply(user); err != nil {
			e.writeError(w, r, err)
			return
		}
		if wasAdmin && user.Role != domain.PersonaSalesAdmin {
			if last, err := e.isLastAdmin(r); err != nil {
				e.writeError(w, r, err)
				return
			} else if last {
				http.Error(w, "cannot demote the last SALES_ADMIN", http.StatusBadRequest)
				return
			}
		}
		if err := e.Store.UpdateUser(r.Context(), user); err != nil {
			e.writeError(w, r, err)
			return
		}
		e.writeJSON(w, user)

	case http.MethodDelete:
		// нельзя удалить последнего администратора
		if user.Role == domain.PersonaSalesAdmin {
			if last, err := e.isLastAdmin(r); err != nil {
				e.writeError(w, r, err)
				return
			} else if last {
				http.Error(w, "cannot delete the last SALES_ADMIN", http.StatusBadRequest)
				return
			}
		}
		if err := e.Store.DeleteUser(r.Context(), user.ID); err != nil {
			e.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (e *Env) isLastAdmin(r *http.Request) (bool, error) {
	users, err := e.Store.ListUsers(r.Context())
	if err != nil {
		return false, err
	}
	admins := 0
	for _, u := range users {
		if u.Role == domain.PersonaSalesAdmin {
			admins++
		}
	}
	return admins <= 1, nil
}

type changePasswordRequest struct {
	Password string `json:"password"`
}

// POST /api/admin/users/{id}/password — пароль хранится bcrypt-хешем
func (e *Env) HandleAdminUserPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := e.requireAdmin(w, r); !ok {
		return
	}

	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Password) == "" {
		http.Error(w, "password is required", http.StatusBadRequest)
		return
	}

	if err := e.Store.SetUserPassword(r.Context(), chi.URLParam(r, "id"), req.Password); err != nil {
		e.writeError(w, r, err)
		return
	}
	e.writeJSON(w, map[string]string{
		"status": "ok",
	})
}
