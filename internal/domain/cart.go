package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/mail"
	"strconv"
	"strings"
)

// ConfigValue — выбранное значение параметра: строка (select) или число (number/slider).
// В JSON выглядит как обычная строка или число.
type ConfigValue struct {
	Str   string
	Num   float64
	IsNum bool
}

// StringValue создаёт строковое значение
func StringValue(s string) ConfigValue { return ConfigValue{Str: s} }

// NumberValue создаёт числовое значение
func NumberValue(f float64) ConfigValue { return ConfigValue{Num: f, IsNum: true} }

// ParseConfigValue — значение из CLI/формы: конечное число, если парсится, иначе строка.
func ParseConfigValue(s string) ConfigValue {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil && finite(f) {
		return NumberValue(f)
	}
	return StringValue(s)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (v ConfigValue) MarshalJSON() ([]byte, error) {
	if v.IsNum {
		return json.Marshal(v.Num)
	}
	return json.Marshal(v.Str)
}

func (v *ConfigValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*v = ConfigValue{}
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = StringValue(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("config value must be string or number: %w", err)
	}
	*v = NumberValue(f)
	return nil
}

// String — значение для отображения
func (v ConfigValue) String() string {
	if v.IsNum {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Str
}

// Float — числовое значение; строка парсится, пустая даёт 0.
// NaN и бесконечность числом не считаются.
func (v ConfigValue) Float() (float64, bool) {
	if v.IsNum {
		return v.Num, finite(v.Num)
	}
	s := strings.TrimSpace(v.Str)
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(f) {
		return 0, false
	}
	return f, true
}

// Selections — выбранные значения по имени параметра
type Selections map[string]ConfigValue

// CartItem — сконфигурированная позиция корзины
type CartItem struct {
	ID              string     `json:"id"`
	ProductID       string     `json:"productId"`
	Name            string     `json:"name"`
	Quantity        int        `json:"quantity"`
	SelectedConfigs Selections `json:"selectedConfigs"`
	SelectedAddons  []string   `json:"selectedAddons"`
	UnitPrice       float64    `json:"unitPrice"`
	TotalPrice      float64    `json:"totalPrice"`
	Discount        float64    `json:"discount,omitempty"`
}

// ContactDetails — контакты клиента для КП
type ContactDetails struct {
	FullName     string `json:"fullName"`
	Organization string `json:"organization"`
	Mobile       string `json:"mobile"`
	Email        string `json:"email"`
}

// Validate проверяет, что все поля заполнены и email корректный.
func (c ContactDetails) Validate() error {
	if strings.TrimSpace(c.FullName) == "" {
		return fmt.Errorf("%w: fullName is required", ErrInvalidInput)
	}
	if strings.TrimSpace(c.Organization) == "" {
		return fmt.Errorf("%w: organization is required", ErrInvalidInput)
	}
	if strings.TrimSpace(c.Mobile) == "" {
		return fmt.Errorf("%w: mobile is required", ErrInvalidInput)
	}
	if strings.TrimSpace(c.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return fmt.Errorf("%w: bad email %q", ErrInvalidInput, c.Email)
	}
	return nil
}
