// Package cart keeps the client-side view of the server cart: every
// server purchase line decorated with the checked/disabled UI flags.
// The server list is the source of truth for everything else; after
// each mutation the list is refetched and reconciled so that local
// selections survive the round trip.
package cart

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"shopfront/internal/models"
)

// API is the slice of the backend client the cart needs.
type API interface {
	GetPurchases(ctx context.Context, status models.PurchaseStatus) ([]models.Purchase, error)
	AddToCart(ctx context.Context, line models.PurchaseLine) (models.Purchase, error)
	UpdatePurchase(ctx context.Context, line models.PurchaseLine) (models.Purchase, error)
	DeletePurchases(ctx context.Context, ids []string) (int, error)
	BuyProducts(ctx context.Context, lines []models.PurchaseLine) ([]models.Purchase, string, error)
}

type Store struct {
	api    API
	logger *zap.Logger

	mu        sync.Mutex
	purchases []models.ExtendedPurchase
	// server mirrors the last fetched list; blur edits compare against
	// it to skip no-change updates.
	server []models.Purchase
}

func New(api API, logger *zap.Logger) *Store {
	return &Store{api: api, logger: logger}
}

// Reconcile rebuilds the extended list from a fresh server list. The
// checked flag is carried over by purchase ID; a line matching
// preselectID comes up checked; new lines come up unchecked. Disabled
// always resets. Server order is preserved.
func Reconcile(server []models.Purchase, prev []models.ExtendedPurchase, preselectID string) []models.ExtendedPurchase {
	prevByID := make(map[string]models.ExtendedPurchase, len(prev))
	for _, p := range prev {
		prevByID[p.ID] = p
	}

	extended := make([]models.ExtendedPurchase, 0, len(server))
	for _, purchase := range server {
		checked := purchase.ID == preselectID
		if old, ok := prevByID[purchase.ID]; ok {
			checked = checked || old.Checked
		}
		extended = append(extended, models.ExtendedPurchase{
			Purchase: purchase,
			Checked:  checked,
			Disabled: false,
		})
	}
	return extended
}

// Refresh fetches the in-cart purchases and reconciles them with the
// current extended list. preselectID marks a just-bought line (buy
// now) as checked; pass "" otherwise.
func (s *Store) Refresh(ctx context.Context, preselectID string) error {
	list, err := s.api.GetPurchases(ctx, models.StatusInCart)
	if err != nil {
		return fmt.Errorf("fetch cart: %w", err)
	}

	s.mu.Lock()
	s.server = list
	s.purchases = Reconcile(list, s.purchases, preselectID)
	s.mu.Unlock()
	return nil
}

// Purchases returns a copy of the extended list in server order.
func (s *Store) Purchases() []models.ExtendedPurchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ExtendedPurchase, len(s.purchases))
	copy(out, s.purchases)
	return out
}

// SetChecked sets one line's selection flag. Local only.
func (s *Store) SetChecked(index int, checked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndexLocked(index); err != nil {
		return err
	}
	s.purchases[index].Checked = checked
	return nil
}

// ToggleAll selects every line unless all are already selected, in
// which case it deselects every line.
func (s *Store) ToggleAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := !s.allCheckedLocked()
	for i := range s.purchases {
		s.purchases[i].Checked = next
	}
}

// Summary is the derived read-only view recomputed from the current
// list.
type Summary struct {
	AllChecked   bool  `json:"all_checked"`
	CheckedCount int   `json:"checked_count"`
	TotalPrice   int64 `json:"total_checked_price"`
	TotalSavings int64 `json:"total_checked_savings"`
}

func (s *Store) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := Summary{AllChecked: s.allCheckedLocked()}
	for _, p := range s.purchases {
		if !p.Checked {
			continue
		}
		sum.CheckedCount++
		sum.TotalPrice += p.Product.Price * int64(p.BuyCount)
		sum.TotalSavings += (p.Product.PriceBeforeDiscount - p.Product.Price) * int64(p.BuyCount)
	}
	return sum
}

// CheckedPurchases returns the selected subset in server order.
func (s *Store) CheckedPurchases() []models.ExtendedPurchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	var checked []models.ExtendedPurchase
	for _, p := range s.purchases {
		if p.Checked {
			checked = append(checked, p)
		}
	}
	return checked
}

func (s *Store) allCheckedLocked() bool {
	for _, p := range s.purchases {
		if !p.Checked {
			return false
		}
	}
	return true
}

func (s *Store) checkIndexLocked(index int) error {
	if index < 0 || index >= len(s.purchases) {
		return fmt.Errorf("purchase index %d out of range", index)
	}
	return nil
}

// TypeQuantity applies an in-progress manual edit to a line's buy
// count, clamped to [1, product quantity]. Local only; the edit is
// committed on blur via CommitQuantity.
func (s *Store) TypeQuantity(index, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndexLocked(index); err != nil {
		return err
	}
	s.purchases[index].BuyCount = clamp(value, s.purchases[index].Product.Quantity)
	return nil
}

// Increase bumps a line's quantity by one, capped at the available
// product quantity.
func (s *Store) Increase(ctx context.Context, index int) error {
	s.mu.Lock()
	if err := s.checkIndexLocked(index); err != nil {
		s.mu.Unlock()
		return err
	}
	value := clamp(s.purchases[index].BuyCount+1, s.purchases[index].Product.Quantity)
	s.mu.Unlock()
	return s.UpdateQuantity(ctx, index, value, true)
}

// Decrease lowers a line's quantity by one, floored at 1.
func (s *Store) Decrease(ctx context.Context, index int) error {
	s.mu.Lock()
	if err := s.checkIndexLocked(index); err != nil {
		s.mu.Unlock()
		return err
	}
	value := clamp(s.purchases[index].BuyCount-1, s.purchases[index].Product.Quantity)
	s.mu.Unlock()
	return s.UpdateQuantity(ctx, index, value, true)
}

// CommitQuantity commits a manual edit on blur. The value is clamped
// like any other edit, and the update is skipped when it matches the
// last known server value.
func (s *Store) CommitQuantity(ctx context.Context, index, value int) error {
	s.mu.Lock()
	if err := s.checkIndexLocked(index); err != nil {
		s.mu.Unlock()
		return err
	}
	value = clamp(value, s.purchases[index].Product.Quantity)
	allowed := index < len(s.server) && value != s.server[index].BuyCount
	s.mu.Unlock()
	return s.UpdateQuantity(ctx, index, value, allowed)
}

// UpdateQuantity pushes a new buy count for one line. When allowed is
// false nothing happens. Otherwise the line is disabled while the
// update is in flight and the cart is refetched afterwards, which
// reconciles and re-enables it. On failure the disabled flag is rolled
// back right away so the line does not stay dead until an eventual
// refetch.
func (s *Store) UpdateQuantity(ctx context.Context, index, value int, allowed bool) error {
	if !allowed {
		return nil
	}

	s.mu.Lock()
	if err := s.checkIndexLocked(index); err != nil {
		s.mu.Unlock()
		return err
	}
	s.purchases[index].Disabled = true
	purchaseID := s.purchases[index].ID
	productID := s.purchases[index].Product.ID
	s.mu.Unlock()

	if _, err := s.api.UpdatePurchase(ctx, models.PurchaseLine{ProductID: productID, BuyCount: value}); err != nil {
		s.enable(purchaseID)
		s.logger.Warn("update purchase failed",
			zap.String("purchase_id", purchaseID), zap.Int("buy_count", value), zap.Error(err))
		return fmt.Errorf("update purchase: %w", err)
	}
	return s.Refresh(ctx, "")
}

func (s *Store) enable(purchaseID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.purchases {
		if s.purchases[i].ID == purchaseID {
			s.purchases[i].Disabled = false
			return
		}
	}
}

// DeleteOne removes a single line by index.
func (s *Store) DeleteOne(ctx context.Context, index int) error {
	s.mu.Lock()
	if err := s.checkIndexLocked(index); err != nil {
		s.mu.Unlock()
		return err
	}
	id := s.purchases[index].ID
	s.mu.Unlock()

	if _, err := s.api.DeletePurchases(ctx, []string{id}); err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	return s.Refresh(ctx, "")
}

// DeleteChecked removes every selected line in one call.
func (s *Store) DeleteChecked(ctx context.Context) error {
	var ids []string
	for _, p := range s.CheckedPurchases() {
		ids = append(ids, p.ID)
	}
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.api.DeletePurchases(ctx, ids); err != nil {
		return fmt.Errorf("delete purchases: %w", err)
	}
	return s.Refresh(ctx, "")
}

// Checkout submits every checked line as one batch purchase. An empty
// selection is a silent no-op: no request, no state change.
func (s *Store) Checkout(ctx context.Context) (string, int, error) {
	checked := s.CheckedPurchases()
	if len(checked) == 0 {
		return "", 0, nil
	}

	lines := make([]models.PurchaseLine, 0, len(checked))
	for _, p := range checked {
		lines = append(lines, models.PurchaseLine{ProductID: p.Product.ID, BuyCount: p.BuyCount})
	}
	_, message, err := s.api.BuyProducts(ctx, lines)
	if err != nil {
		return "", 0, fmt.Errorf("buy products: %w", err)
	}
	if err := s.Refresh(ctx, ""); err != nil {
		return message, len(lines), err
	}
	return message, len(lines), nil
}

// AddToCart creates a purchase line and refetches the cart.
func (s *Store) AddToCart(ctx context.Context, line models.PurchaseLine) (models.Purchase, error) {
	purchase, err := s.api.AddToCart(ctx, line)
	if err != nil {
		return models.Purchase{}, fmt.Errorf("add to cart: %w", err)
	}
	return purchase, s.Refresh(ctx, "")
}

// BuyNow is the product-detail shortcut: the created line arrives in
// the cart already checked.
func (s *Store) BuyNow(ctx context.Context, line models.PurchaseLine) (models.Purchase, error) {
	purchase, err := s.api.AddToCart(ctx, line)
	if err != nil {
		return models.Purchase{}, fmt.Errorf("buy now: %w", err)
	}
	return purchase, s.Refresh(ctx, purchase.ID)
}

// History lists purchases outside the cart, filtered by status.
func (s *Store) History(ctx context.Context, status models.PurchaseStatus) ([]models.Purchase, error) {
	return s.api.GetPurchases(ctx, status)
}

// Reset drops all local cart state. Called on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	s.purchases = nil
	s.server = nil
	s.mu.Unlock()
}

func clamp(value, max int) int {
	if max > 0 && value > max {
		value = max
	}
	if value < 1 {
		value = 1
	}
	return value
}
