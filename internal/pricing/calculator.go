package pricing

import (
	"crypto/rand"
	"fmt"
	"math"
	"strings"

	"pricepoint-backend/internal/domain"
)

// Mode — как комбинируются коэффициенты select-параметров
type Mode string

const (
	// ModeProduct: база × произведение коэффициентов
	ModeProduct Mode = "product"
	// ModeSum: база × сумма коэффициентов
	ModeSum Mode = "sum"
)

// DefaultNumberRate — надбавка за единицу числового параметра
const DefaultNumberRate = 0.1

// ParseMode разбирает режим; пустая строка — ModeProduct
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeProduct, nil
	case ModeProduct, ModeSum:
		return m, nil
	}
	return "", fmt.Errorf("unknown pricing mode %q", s)
}

// Calculator считает цену позиции
type Calculator struct {
	Mode       Mode
	NumberRate float64
}

// New создаёт калькулятор; нулевые значения заменяются дефолтами
func New(mode Mode, numberRate float64) *Calculator {
	if mode == "" {
		mode = ModeProduct
	}
	if numberRate <= 0 {
		numberRate = DefaultNumberRate
	}
	return &Calculator{Mode: mode, NumberRate: numberRate}
}

// Draft — то, что пользователь выбрал в конфигураторе
type Draft struct {
	ItemID     string            `json:"itemId,omitempty"`
	Quantity   int               `json:"quantity"`
	Selections domain.Selections `json:"selectedConfigs"`
	Addons     []string          `json:"selectedAddons"`
}

// DefaultSelections — стартовые значения: первый вариант select, min для чисел
func DefaultSelections(p *domain.Product) domain.Selections {
	sel := make(domain.Selections, len(p.Configurations))
	for _, c := range p.Configurations {
		switch {
		case c.Type == domain.ConfigTypeSelect:
			if len(c.Options) > 0 {
				sel[c.Name] = domain.StringValue(c.Options[0].Value)
			}
		case c.IsNumeric():
			v := 0.0
			if c.Min != nil {
				v = *c.Min
			}
			sel[c.Name] = domain.NumberValue(v)
		}
	}
	return sel
}

// Validate проверяет выбранные значения и допопции
func (c *Calculator) Validate(p *domain.Product, sel domain.Selections, addons []string) error {
	for name, v := range sel {
		cfg := p.FindConfig(name)
		if cfg == nil {
			return fmt.Errorf("%w: %s has no parameter %q", domain.ErrInvalidInput, p.ID, name)
		}
		switch {
		case cfg.Type == domain.ConfigTypeSelect:
			if cfg.FindOption(v.String()) == nil {
				return fmt.Errorf("%w: %q is not an option of %q", domain.ErrInvalidInput, v.String(), name)
			}
		case cfg.IsNumeric():
			f, ok := v.Float()
			if !ok {
				return fmt.Errorf("%w: %q must be a number", domain.ErrInvalidInput, name)
			}
			if cfg.Min != nil && f < *cfg.Min {
				return fmt.Errorf("%w: %q below minimum %v", domain.ErrInvalidInput, name, *cfg.Min)
			}
			if cfg.Max != nil && f > *cfg.Max {
				return fmt.Errorf("%w: %q above maximum %v", domain.ErrInvalidInput, name, *cfg.Max)
			}
		}
	}
	for _, id := range addons {
		if p.FindAddon(id) == nil {
			return fmt.Errorf("%w: %s has no addon %q", domain.ErrInvalidInput, p.ID, id)
		}
	}
	return nil
}

// UnitPrice — цена одной единицы без округления.
// В режиме product параметры применяются по порядку: select умножает
// текущую цену, number прибавляет value × NumberRate. Slider на цену не влияет.
// В режиме sum: база × сумма коэффициентов, затем надбавки number.
func (c *Calculator) UnitPrice(p *domain.Product, sel domain.Selections, addons []string) float64 {
	price := p.BasePrice
	sum, matched, extra := 0.0, false, 0.0

	for _, cfg := range p.Configurations {
		v, ok := sel[cfg.Name]
		if !ok {
			continue
		}
		switch cfg.Type {
		case domain.ConfigTypeSelect:
			opt := cfg.FindOption(v.String())
			if opt == nil {
				continue
			}
			if c.Mode == ModeSum {
				sum += opt.PriceMultiplier
				matched = true
			} else {
				price *= opt.PriceMultiplier
			}
		case domain.ConfigTypeNumber:
			if f, ok := v.Float(); ok {
				if c.Mode == ModeSum {
					extra += f * c.NumberRate
				} else {
					price += f * c.NumberRate
				}
			}
		}
	}
	if c.Mode == ModeSum {
		if matched {
			price = p.BasePrice * sum
		}
		price += extra
	}

	for _, id := range addons {
		if a := p.FindAddon(id); a != nil {
			price += a.Price
		}
	}
	return price
}

// Configure собирает позицию корзины из черновика
func (c *Calculator) Configure(p *domain.Product, d Draft) (domain.CartItem, error) {
	sel := DefaultSelections(p)
	for k, v := range d.Selections {
		sel[k] = v
	}
	addons := dedupe(d.Addons)
	if err := c.Validate(p, sel, addons); err != nil {
		return domain.CartItem{}, err
	}

	qty := d.Quantity
	if qty < 1 {
		qty = 1
	}
	id := d.ItemID
	if id == "" {
		id = NewItemID()
	}

	unit := Round(c.UnitPrice(p, sel, addons))
	return domain.CartItem{
		ID:              id,
		ProductID:       p.ID,
		Name:            p.Name,
		Quantity:        qty,
		SelectedConfigs: sel,
		SelectedAddons:  addons,
		UnitPrice:       unit,
		TotalPrice:      Round(unit * float64(qty)),
	}, nil
}

// Reprice пересчитывает позиции по каталогу. Цены клиента не используются.
func (c *Calculator) Reprice(products []domain.Product, items []domain.CartItem) ([]domain.CartItem, error) {
	out := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		p := domain.FindProduct(products, it.ProductID)
		if p == nil {
			return nil, fmt.Errorf("%w: product %q", domain.ErrNotFound, it.ProductID)
		}
		priced, err := c.Configure(p, Draft{
			ItemID:     it.ID,
			Quantity:   it.Quantity,
			Selections: it.SelectedConfigs,
			Addons:     it.SelectedAddons,
		})
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", it.ID, err)
		}
		priced.Discount = it.Discount
		out = append(out, priced)
	}
	return out, nil
}

// Round — округление до копеек
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// NewItemID — 9 символов base36, как у позиций корзины на клиенте
func NewItemID() string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		panic("pricing: crypto/rand failed: " + err.Error())
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(buf)
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
