// Package session хранит текущую персону и корзину между запусками CLI.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"pricepoint-backend/internal/domain"
	"pricepoint-backend/internal/pricing"
	"pricepoint-backend/internal/store"
)

// Ключи в KV
const (
	KeyPersona = "pp_persona"
	KeyCart    = "pp_cart"
)

// Session — персона + корзина, синхронизируемые с KV
type Session struct {
	kv      store.KV
	log     *zap.Logger
	persona domain.Persona
	cart    *pricing.Cart
}

// Load восстанавливает сессию. Битые значения не ошибка: персона
// сбрасывается в PUBLIC, корзина в пустую.
func Load(ctx context.Context, kv store.KV, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{kv: kv, log: log, persona: domain.PersonaPublic, cart: pricing.NewCart(nil)}

	raw, ok, err := kv.Get(ctx, KeyPersona)
	if err != nil {
		return nil, fmt.Errorf("load persona: %w", err)
	}
	if ok {
		if p, valid := domain.ParsePersona(raw); valid {
			s.persona = p
		} else {
			log.Warn("unknown persona in session, using PUBLIC", zap.String("value", raw))
		}
	}

	raw, ok, err = kv.Get(ctx, KeyCart)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if ok && raw != "" {
		var items []domain.CartItem
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			log.Warn("broken cart in session, starting empty", zap.Error(err))
		} else {
			s.cart = pricing.NewCart(items)
		}
	}
	return s, nil
}

// Persona — текущая персона
func (s *Session) Persona() domain.Persona { return s.persona }

// Cart — корзина; после изменений нужно вызвать SaveCart
func (s *Session) Cart() *pricing.Cart { return s.cart }

// Login переключает на внутреннюю персону. Пароль не проверяется.
func (s *Session) Login(ctx context.Context, p domain.Persona) error {
	if !p.IsInternal() {
		return fmt.Errorf("%w: cannot log in as %s", domain.ErrInvalidInput, p)
	}
	if err := s.kv.Put(ctx, KeyPersona, string(p)); err != nil {
		return err
	}
	s.persona = p
	s.log.Info("logged in", zap.String("persona", string(p)))
	return nil
}

// Logout — персона PUBLIC, корзина очищается
func (s *Session) Logout(ctx context.Context) error {
	if err := s.kv.Put(ctx, KeyPersona, string(domain.PersonaPublic)); err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, KeyCart); err != nil {
		return err
	}
	s.persona = domain.PersonaPublic
	s.cart.Clear()
	s.log.Info("logged out")
	return nil
}

// SaveCart сохраняет корзину в KV
func (s *Session) SaveCart(ctx context.Context) error {
	b, err := json.Marshal(s.cart.Items())
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, KeyCart, string(b))
}

// ClearCart очищает корзину (после оформления КП)
func (s *Session) ClearCart(ctx context.Context) error {
	s.cart.Clear()
	return s.kv.Delete(ctx, KeyCart)
}
