package checkout

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fjod/go_storefront/internal/domain"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrNoActiveCheckout = errors.New("no active checkout")
	ErrWrongStep        = errors.New("operation not valid for current step")
	ErrTermsNotAccepted = errors.New("terms must be accepted")
	ErrNoPaymentMethod  = errors.New("payment method is required")
)

// CartLedger is the slice of the cart the orchestrator touches: a read-only
// snapshot on entry and a single clear on completion. It never writes
// anything else, and it never touches catalog state.
type CartLedger interface {
	Snapshot() domain.Cart
	Clear()
}

// OrderPublisher receives the completed order. Publishing is best-effort;
// a failure never unwinds the confirmation.
type OrderPublisher interface {
	PublishOrderCompleted(ctx context.Context, order Order) error
}

// Orchestrator walks one checkout run through Shipping -> Payment ->
// Confirmation. The sequence is strictly linear; going back is purely
// presentational and triggers no effect. Reaching Confirmation clears the
// cart exactly once per run — a retried confirmation returns the already
// placed order instead of clearing again.
type Orchestrator struct {
	cart      CartLedger
	publisher OrderPublisher
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	active   bool
	step     Step
	snapshot domain.Cart
	address  Address
	shipping ShippingMethod
	payment  string
	order    *Order
}

type Option func(*Orchestrator)

func WithPublisher(p OrderPublisher) Option {
	return func(o *Orchestrator) { o.publisher = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

func New(cart CartLedger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cart:   cart,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Begin starts a new checkout run over a snapshot of the current cart.
// An empty cart cannot enter checkout.
func (o *Orchestrator) Begin() error {
	snapshot := o.cart.Snapshot()
	if snapshot.Empty() {
		return ErrEmptyCart
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.active = true
	o.step = StepShipping
	o.snapshot = snapshot
	o.address = Address{}
	o.shipping = ShippingMethod{}
	o.payment = ""
	o.order = nil
	return nil
}

// Current returns the step of the active run, or false when no run is
// active.
func (o *Orchestrator) Current() (Step, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.step, o.active
}

// Cart returns the snapshot the active run is checking out.
func (o *Orchestrator) Cart() domain.Cart {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshot
}

// SubmitShipping validates the address, records the flat shipping selection
// and advances to the Payment step.
func (o *Orchestrator) SubmitShipping(address Address, shippingMethodID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.active {
		return ErrNoActiveCheckout
	}
	if o.step != StepShipping {
		return ErrWrongStep
	}
	if err := address.Validate(); err != nil {
		return err
	}
	method, err := shippingMethodByID(shippingMethodID)
	if err != nil {
		return err
	}

	o.address = address
	o.shipping = method
	o.step = StepPayment
	return nil
}

// SelectPayment records the payment method at the Payment step. No capture
// happens anywhere; the method is carried into the order summary only.
func (o *Orchestrator) SelectPayment(method string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.active {
		return ErrNoActiveCheckout
	}
	if o.step != StepPayment {
		return ErrWrongStep
	}
	if method == "" {
		return ErrNoPaymentMethod
	}

	o.payment = method
	return nil
}

// Confirm executes the Payment -> Confirmation transition. It is gated on
// the agreement flag; without it the transition is rejected and nothing
// changes. The first successful confirmation places the order and clears the
// cart; invoking Confirm again returns the same order without clearing.
func (o *Orchestrator) Confirm(ctx context.Context, agreeTerms bool) (*Order, error) {
	o.mu.Lock()

	if !o.active {
		o.mu.Unlock()
		return nil, ErrNoActiveCheckout
	}
	if o.order != nil {
		order := o.order
		o.mu.Unlock()
		return order, nil
	}
	if o.step != StepPayment {
		o.mu.Unlock()
		return nil, ErrWrongStep
	}
	if !agreeTerms {
		o.mu.Unlock()
		return nil, ErrTermsNotAccepted
	}
	if o.payment == "" {
		o.mu.Unlock()
		return nil, ErrNoPaymentMethod
	}

	order := &Order{
		ID:             uuid.New(),
		Lines:          o.snapshot.Lines,
		TotalItems:     o.snapshot.TotalItems,
		Subtotal:       o.snapshot.TotalAmount,
		ShippingFee:    o.shipping.Fee,
		Total:          o.snapshot.TotalAmount.Add(o.shipping.Fee),
		ShippingMethod: o.shipping.ID,
		PaymentMethod:  o.payment,
		Address:        o.address,
		PlacedAt:       o.now(),
	}
	o.order = order
	o.step = StepConfirmation
	o.mu.Unlock()

	o.cart.Clear()
	o.logger.Info("order placed", "order_id", order.ID, "total", order.Total.String())

	if o.publisher != nil {
		if err := o.publisher.PublishOrderCompleted(ctx, *order); err != nil {
			o.logger.Warn("failed to publish order event", "order_id", order.ID, "error", err)
		}
	}

	return order, nil
}

// Back steps from Payment to Shipping. It is presentational only: nothing
// submitted so far is undone and no effect fires. From any other step it is
// a no-op.
func (o *Orchestrator) Back() Step {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.active && o.step == StepPayment {
		o.step = StepShipping
	}
	return o.step
}

// Order returns the placed order of the current run, nil before
// confirmation.
func (o *Orchestrator) Order() *Order {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.order
}
