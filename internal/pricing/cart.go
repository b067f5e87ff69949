package pricing

import (
	"fmt"

	"pricepoint-backend/internal/domain"
)

// Cart — корзина позиций. Не потокобезопасна: принадлежит одной сессии.
type Cart struct {
	items []domain.CartItem
}

// NewCart создаёт корзину из сохранённых позиций
func NewCart(items []domain.CartItem) *Cart {
	c := &Cart{}
	c.items = append(c.items, items...)
	return c
}

// Items возвращает копию позиций
func (c *Cart) Items() []domain.CartItem {
	out := make([]domain.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int { return len(c.items) }

func (c *Cart) index(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Find ищет позицию по ID
func (c *Cart) Find(id string) (domain.CartItem, bool) {
	if i := c.index(id); i >= 0 {
		return c.items[i], true
	}
	return domain.CartItem{}, false
}

// Add добавляет новую позицию в конец
func (c *Cart) Add(item domain.CartItem) {
	c.items = append(c.items, item)
}

// Replace заменяет позицию с тем же ID (редактирование)
func (c *Cart) Replace(item domain.CartItem) error {
	i := c.index(item.ID)
	if i < 0 {
		return fmt.Errorf("cart item %s: %w", item.ID, domain.ErrNotFound)
	}
	c.items[i] = item
	return nil
}

// Save — Replace для существующей позиции, иначе Add
func (c *Cart) Save(item domain.CartItem) {
	if err := c.Replace(item); err != nil {
		c.Add(item)
	}
}

// Remove удаляет позицию; false если такой нет
func (c *Cart) Remove(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

// UpdateQuantity меняет количество на delta (не меньше 1) и пересчитывает сумму
func (c *Cart) UpdateQuantity(id string, delta int) (domain.CartItem, error) {
	i := c.index(id)
	if i < 0 {
		return domain.CartItem{}, fmt.Errorf("cart item %s: %w", id, domain.ErrNotFound)
	}
	it := &c.items[i]
	qty := it.Quantity + delta
	if qty < 1 {
		qty = 1
	}
	it.Quantity = qty
	it.TotalPrice = Round(it.UnitPrice * float64(qty))
	return *it, nil
}

// Clear очищает корзину
func (c *Cart) Clear() {
	c.items = nil
}

// Total — сумма по всем позициям
func (c *Cart) Total() float64 {
	return Total(c.items)
}

// Total — сумма totalPrice по позициям
func Total(items []domain.CartItem) float64 {
	var t float64
	for _, it := range items {
		t += it.TotalPrice
	}
	return Round(t)
}
