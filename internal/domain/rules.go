package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Условия финансовых правил
const (
	ConditionItemValue   = "item_value"
	ConditionTotalValue  = "total_value"
	ConditionDiscountPct = "discount_pct"
)

// Действия продуктовых правил
const (
	RuleActionRequire  = "REQUIRE"
	RuleActionDisable  = "DISABLE"
	RuleActionSetValue = "SET_VALUE"
)

// WorkflowRule — правило согласования. Хранится и показывается, но не применяется.
type WorkflowRule struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Condition string  `json:"condition"` // item_value / total_value / discount_pct
	Threshold float64 `json:"threshold"`
	Approver  Persona `json:"approver"`
}

// Validate проверяет поля правила
func (w *WorkflowRule) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	switch w.Condition {
	case ConditionItemValue, ConditionTotalValue, ConditionDiscountPct:
	default:
		return fmt.Errorf("%w: unknown condition %q", ErrInvalidInput, w.Condition)
	}
	if w.Threshold < 0 {
		return fmt.Errorf("%w: threshold must be >= 0", ErrInvalidInput)
	}
	if !w.Approver.IsInternal() {
		return fmt.Errorf("%w: approver must be an internal persona", ErrInvalidInput)
	}
	return nil
}

// ConfigRule — продуктовое правило (зависимость параметров). Тоже не применяется.
type ConfigRule struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	ProductID        string `json:"productId"`
	TriggerConfig    string `json:"triggerConfig"`
	TriggerValue     string `json:"triggerValue"`
	RestrictedConfig string `json:"restrictedConfig"`
	Action           string `json:"action"` // REQUIRE / DISABLE / SET_VALUE
}

// Validate проверяет поля правила
func (c *ConfigRule) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(c.ProductID) == "" {
		return fmt.Errorf("%w: productId is required", ErrInvalidInput)
	}
	switch c.Action {
	case RuleActionRequire, RuleActionDisable, RuleActionSetValue:
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidInput, c.Action)
	}
	return nil
}

// DefaultWorkflowRules — стартовые правила согласования
func DefaultWorkflowRules() []WorkflowRule {
	return []WorkflowRule{
		{ID: "w1", Name: "Global High Value Approval", Condition: ConditionTotalValue, Threshold: 50000, Approver: PersonaSalesAdmin},
		{ID: "w2", Name: "Standard Discount Threshold", Condition: ConditionDiscountPct, Threshold: 15, Approver: PersonaSalesManager},
	}
}

// DefaultConfigRules — стартовые продуктовые правила
func DefaultConfigRules() []ConfigRule {
	return []ConfigRule{
		{
			ID:               "cr1",
			Name:             "Windows Monitoring Req",
			ProductID:        "vm-basic",
			TriggerConfig:    "Operating System",
			TriggerValue:     "windows",
			RestrictedConfig: "Advanced Monitoring",
			Action:           RuleActionRequire,
		},
	}
}

// NewShortID — короткий ID для правил и пользователей (8 символов uuid)
func NewShortID() string {
	return uuid.NewString()[:8]
}

// Settings — настройки уведомлений, доступные администратору
type Settings struct {
	TelegramBotToken string `json:"telegramBotToken"`
	TelegramChatID   string `json:"telegramChatId"`
}
