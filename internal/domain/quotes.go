package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mrand "math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

type QuoteStatus string

const (
	QuoteStatusDraft           QuoteStatus = "DRAFT"
	QuoteStatusFinal           QuoteStatus = "FINAL"
	QuoteStatusPendingApproval QuoteStatus = "PENDING_APPROVAL"
	QuoteStatusApproved        QuoteStatus = "APPROVED"
	QuoteStatusRejected        QuoteStatus = "REJECTED"
)

// Срок действия КП от даты создания
const QuoteValidity = 30 * 24 * time.Hour

// ParseQuoteStatus разбирает статус без учёта регистра
func ParseQuoteStatus(s string) (QuoteStatus, bool) {
	switch st := QuoteStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case QuoteStatusDraft, QuoteStatusFinal, QuoteStatusPendingApproval,
		QuoteStatusApproved, QuoteStatusRejected:
		return st, true
	}
	return "", false
}

// ручные переходы статусов (кнопки в интерфейсе)
var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusDraft:           {QuoteStatusFinal, QuoteStatusPendingApproval},
	QuoteStatusFinal:           {QuoteStatusPendingApproval},
	QuoteStatusPendingApproval: {QuoteStatusApproved, QuoteStatusRejected},
	QuoteStatusRejected:        {QuoteStatusDraft},
}

// CanTransition — разрешён ли ручной переход. Тот же статус — всегда ок.
func CanTransition(from, to QuoteStatus) bool {
	if from == to {
		return true
	}
	for _, s := range quoteTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Quote — КП: зафиксированная корзина с ценами и статусом
type Quote struct {
	ID            string         `json:"id"`
	Customer      ContactDetails `json:"customer"`
	Items         []CartItem     `json:"items"`
	TotalEstimate float64        `json:"totalEstimate"`
	Status        QuoteStatus    `json:"status"`
	CreatedAt     time.Time      `json:"createdAt"`
	CreatedBy     Persona        `json:"createdBy"`
	AssignedTo    string         `json:"assignedTo,omitempty"`
	DiscountValue float64        `json:"discountValue,omitempty"`

	// Публичная ссылка на печатную версию
	PublicToken string `json:"publicToken,omitempty"`
	PublicPath  string `json:"publicPath,omitempty"`
}

// ValidUntil — до какой даты действует КП
func (q *Quote) ValidUntil() time.Time {
	return q.CreatedAt.Add(QuoteValidity)
}

// NetTotal — итог с учётом скидки, не меньше нуля
func (q *Quote) NetTotal() float64 {
	t := q.TotalEstimate - q.DiscountValue
	if t < 0 {
		return 0
	}
	return t
}

// QuoteVisible — сотрудники видят все КП, PUBLIC — только созданные PUBLIC.
func QuoteVisible(p Persona, q *Quote) bool {
	return p.IsInternal() || q.CreatedBy == PersonaPublic
}

// CanEditQuote — сотрудники правят любые КП, остальные только черновики.
func CanEditQuote(p Persona, q *Quote) bool {
	return p.IsInternal() || q.Status == QuoteStatusDraft
}

// NewQuoteID — "QT-" + 5 hex-символов uuid
func NewQuoteID() string {
	return "QT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:5])
}

// NewLocalQuoteID — ID для КП, сохранённого локально без бэкенда
func NewLocalQuoteID() string {
	return fmt.Sprintf("QT-LOC-%d", mrand.Intn(9000)+1000)
}

// IsLocalQuoteID — КП создан в оффлайн-режиме
func IsLocalQuoteID(id string) bool {
	return strings.HasPrefix(id, "QT-LOC-")
}

// GeneratePublicToken — токен для публичной печатной ссылки
func GeneratePublicToken() string {
	const size = 16
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		// в крайнем случае — fallback, чтобы не паниковать
		return time.Now().Format("20060102150405")
	}
	return hex.EncodeToString(b)
}

// QuotePublicPath — путь печатной версии
func QuotePublicPath(id, token string) string {
	return "/p/" + id + "/" + token
}

// DemoQuotes — демо-КП для пустой базы
func DemoQuotes() []*Quote {
	return []*Quote{
		{
			ID: "QT-DEMO1",
			Customer: ContactDetails{
				FullName:     "John Doe",
				Organization: "Acme Corp",
				Email:        "john@acme.com",
				Mobile:       "1234567890",
			},
			Items:         []CartItem{},
			TotalEstimate: 1250.00,
			Status:        QuoteStatusApproved,
			CreatedAt:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
			CreatedBy:     PersonaPresales,
		},
	}
}

// QuoteStats — сводка для дашборда
type QuoteStats struct {
	Total      int     `json:"total"`
	TotalValue float64 `json:"totalValue"`
	Drafts     int     `json:"drafts"`
	Pending    int     `json:"pending"`
}

// ComputeStats считает сводку по списку КП
func ComputeStats(quotes []*Quote) QuoteStats {
	var s QuoteStats
	for _, q := range quotes {
		s.Total++
		s.TotalValue += q.TotalEstimate
		switch q.Status {
		case QuoteStatusDraft:
			s.Drafts++
		case QuoteStatusPendingApproval:
			s.Pending++
		}
	}
	return s
}
