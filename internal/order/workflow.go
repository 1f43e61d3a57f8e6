package order

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storekeep/internal/api"
	"storekeep/internal/logger"
	"storekeep/internal/utils"

	"go.uber.org/zap"
)

// Backend is the slice of the REST API the workflow consumes.
type Backend interface {
	OrdersByStore(ctx context.Context, storeID string) ([]api.OrderRecord, error)
	ProductByID(ctx context.Context, productID string) (*api.Product, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) (*api.OrderRecord, error)
}

// Dialer hands a phone number to the platform's telephony launcher.
type Dialer interface {
	Dial(phone string) error
}

// Workflow fetches the store's orders, enriches every line item with
// product details, and drives the status progression. The visible
// snapshot is replaced atomically: a load either fully succeeds or
// leaves the previous snapshot in place.
type Workflow struct {
	backend Backend
	dialer  Dialer

	mu     sync.RWMutex
	orders []Order
}

func NewWorkflow(backend Backend, dialer Dialer) *Workflow {
	return &Workflow{backend: backend, dialer: dialer}
}

// Load fetches the order list and resolves product details for every
// line item of every order. The lookups run concurrently with no
// ordering between them; completion is the join of all of them, and a
// single failure fails the whole load.
func (w *Workflow) Load(ctx context.Context, storeID string) ([]Order, error) {
	log := logger.FromCtx(ctx).With(zap.String("store_id", storeID))

	start := time.Now()

	records, err := w.backend.OrdersByStore(ctx, storeID)
	if err != nil {
		log.Error("failed to fetch orders", zap.Error(err))
		return nil, err
	}

	enriched := make([]Order, len(records))

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)

	for i, rec := range records {
		enriched[i] = Order{
			ID:        rec.OrderID,
			Status:    Status(rec.Status),
			CreatedAt: rec.CreatedAt,
			StoreID:   rec.Store.ID,
			StoreName: rec.Store.Name,
			Customer:  rec.User,
			Items:     make([]LineItem, len(rec.Products)),
		}

		for j, line := range rec.Products {
			wg.Add(1)
			go func(i, j int, line api.OrderLine) {
				defer wg.Done()

				product, err := w.backend.ProductByID(ctx, line.Product.ID)
				if err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("product %s: %w", line.Product.ID, err)
					}
					errMu.Unlock()
					return
				}

				enriched[i].Items[j] = LineItem{
					ProductID: line.Product.ID,
					Quantity:  line.Quantity,
					Name:      product.Name,
					Price:     float64(product.Price),
				}
			}(i, j, line)
		}
	}

	wg.Wait()

	if firstErr != nil {
		log.Error("order enrichment failed, keeping previous snapshot",
			zap.Error(firstErr),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, firstErr
	}

	for i := range enriched {
		total := 0.0
		for _, item := range enriched[i].Items {
			total += item.Price * float64(item.Quantity)
		}
		enriched[i].Total = total
	}

	w.mu.Lock()
	w.orders = enriched
	w.mu.Unlock()

	log.Info("orders loaded",
		zap.Int("count", len(enriched)),
		zap.Duration("duration", time.Since(start)),
	)

	return w.Orders(), nil
}

// Orders returns a copy of the last fully-enriched snapshot.
func (w *Workflow) Orders() []Order {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]Order, len(w.orders))
	copy(out, w.orders)
	return out
}

func (w *Workflow) find(orderID string) (Order, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, o := range w.orders {
		if o.ID == orderID {
			return o, true
		}
	}
	return Order{}, false
}

// UpdateStatus validates the transition against the current snapshot,
// issues the status update, and only then reloads the whole list so
// the displayed state always reflects server truth.
func (w *Workflow) UpdateStatus(ctx context.Context, storeID, orderID string, target Status) ([]Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("order_id", orderID),
		zap.String("target_status", string(target)),
	)

	current, ok := w.find(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}

	if !CanTransition(current.Status, target) {
		log.Warn("transition rejected", zap.String("current_status", string(current.Status)))
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, target)
	}

	if _, err := w.backend.UpdateOrderStatus(ctx, orderID, string(target)); err != nil {
		log.Error("status update failed", zap.Error(err))
		return nil, err
	}

	// Full reload, strictly after the update response is observed.
	return w.Load(ctx, storeID)
}

// CallCustomer resolves the purchaser's phone number and hands off to
// the dialer. A missing number is an informational outcome, not an
// error, and no telephony action happens.
func (w *Workflow) CallCustomer(ctx context.Context, orderID string) (CallResult, error) {
	o, ok := w.find(orderID)
	if !ok {
		return CallResult{}, ErrOrderNotFound
	}

	phone := utils.NormalizePhone(o.Customer.Phone)
	if phone == "" {
		return CallResult{Message: "No phone number on file for this customer"}, nil
	}

	if err := w.dialer.Dial(phone); err != nil {
		logger.FromCtx(ctx).Error("failed to launch dialer",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return CallResult{}, err
	}

	return CallResult{Called: true, Phone: phone}, nil
}
