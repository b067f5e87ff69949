package domain

import (
	"strings"
	"time"
)

// Persona — роль, выбранная на клиенте. Никакой проверки пароля нет.
type Persona string

const (
	PersonaPublic       Persona = "PUBLIC"
	PersonaPresales     Persona = "PRESALES"
	PersonaSalesManager Persona = "SALES_MANAGER"
	PersonaSalesAdmin   Persona = "SALES_ADMIN"
)

// Разделы интерфейса, которые открываются в зависимости от роли.
const (
	SectionProducts  = "products"
	SectionDashboard = "dashboard"
	SectionAdmin     = "admin"
)

// ParsePersona разбирает роль без учёта регистра. Пустая строка — PUBLIC.
func ParsePersona(s string) (Persona, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return PersonaPublic, true
	}
	switch p := Persona(s); p {
	case PersonaPublic, PersonaPresales, PersonaSalesManager, PersonaSalesAdmin:
		return p, true
	}
	return PersonaPublic, false
}

// IsInternal — сотрудник (любая роль кроме PUBLIC).
func (p Persona) IsInternal() bool {
	switch p {
	case PersonaPresales, PersonaSalesManager, PersonaSalesAdmin:
		return true
	}
	return false
}

// CanAdmin — доступ к админке (правила, пользователи, настройки).
func (p Persona) CanAdmin() bool {
	return p == PersonaSalesAdmin
}

// CanApprove — может переводить КП в APPROVED / REJECTED.
func (p Persona) CanApprove() bool {
	return p == PersonaSalesManager || p == PersonaSalesAdmin
}

// Label — человекочитаемое имя роли ("SALES MANAGER").
func (p Persona) Label() string {
	return strings.Replace(string(p), "_", " ", 1)
}

// Sections возвращает разделы навигации, доступные роли.
func Sections(p Persona) []string {
	out := []string{SectionProducts}
	if p.IsInternal() {
		out = append(out, SectionDashboard)
	}
	if p.CanAdmin() {
		out = append(out, SectionAdmin)
	}
	return out
}

// User — сотрудник из справочника пользователей админки
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Persona   `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// MockUsers — демо-пользователи для пустой базы
func MockUsers() []*User {
	return []*User{
		{
			ID:        "u1",
			Name:      "Sarah Admin",
			Email:     "sarah@pricepoint.com",
			Role:      PersonaSalesAdmin,
			CreatedAt: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:        "u2",
			Name:      "Michael Manager",
			Email:     "michael@pricepoint.com",
			Role:      PersonaSalesManager,
			CreatedAt: time.Date(2024, 1, 5, 12, 30, 0, 0, time.UTC),
		},
		{
			ID:        "u3",
			Name:      "Alex Presales",
			Email:     "alex@pricepoint.com",
			Role:      PersonaPresales,
			CreatedAt: time.Date(2024, 2, 10, 9, 15, 0, 0, time.UTC),
		},
	}
}
