package inventory

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrInvalidState is returned when an operation would break the tractor
// lifecycle, such as selling a tractor that is already sold.
var ErrInvalidState = errors.New("invalid tractor state")

// ErrValidation is returned when a draft is missing required data.
var ErrValidation = errors.New("validation failed")

// DefaultImageURLTemplate derives the placeholder image from the tractor sequence number.
const DefaultImageURLTemplate = "https://picsum.photos/seed/T%d/600/400"

// Service is the inventory and sales ledger. It is the only mutation path for
// tractors, customers and transactions.
type Service struct {
	mu       sync.RWMutex
	storage  Storage
	logger   *zap.Logger
	now      func() time.Time
	imageURL string
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the clock used to date sales.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithImageURLTemplate sets the fmt template used for new tractor images. It
// receives the tractor sequence number.
func WithImageURLTemplate(tmpl string) Option {
	return func(s *Service) {
		if tmpl != "" {
			s.imageURL = tmpl
		}
	}
}

// NewService creates a new ledger over storage.
func NewService(storage Storage, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		storage:  storage,
		logger:   logger,
		now:      time.Now,
		imageURL: DefaultImageURLTemplate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTractor creates an Available tractor from the draft and puts it first in
// the collection.
func (s *Service) AddTractor(draft TractorDraft) (Tractor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.storage.NextTractorSeq()
	t := draft.Apply(Tractor{
		ID:       fmt.Sprintf("T%03d", seq),
		Status:   StatusAvailable,
		ImageURL: fmt.Sprintf(s.imageURL, seq),
	})

	if err := s.storage.PrependTractor(t); err != nil {
		s.logger.Error("failed to save tractor", zap.String("tractor_id", t.ID), zap.Error(err))
		return Tractor{}, fmt.Errorf("failed to save tractor: %w", err)
	}

	s.logger.Info("tractor added", zap.String("tractor_id", t.ID), zap.String("name", t.Name))
	return t, nil
}

// UpdateTractor replaces the editable fields of the stored tractor with the
// same id. Status and image reference are kept from the stored entry; a status
// that differs from the stored one is rejected.
func (s *Service) UpdateTractor(t Tractor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.storage.Tractor(t.ID)
	if err != nil {
		return fmt.Errorf("%w: tractor %q", ErrNotFound, t.ID)
	}
	if t.Status != "" && t.Status != current.Status {
		return fmt.Errorf("%w: status of %s cannot change from %s to %s", ErrInvalidState, t.ID, current.Status, t.Status)
	}

	t.Status = current.Status
	t.ImageURL = current.ImageURL
	if err := s.storage.ReplaceTractor(t); err != nil {
		s.logger.Error("failed to update tractor", zap.String("tractor_id", t.ID), zap.Error(err))
		return fmt.Errorf("failed to update tractor: %w", err)
	}

	s.logger.Info("tractor updated", zap.String("tractor_id", t.ID))
	return nil
}

// RecordSale sells an Available tractor to a new customer, dated today.
func (s *Service) RecordSale(t Tractor, customer CustomerDraft, salePrice decimal.Decimal) (Transaction, error) {
	return s.RecordSaleOn(t, customer, salePrice, time.Time{})
}

// RecordSaleOn is RecordSale with an explicit sale date. A zero date means today.
//
// The customer, the transaction and the status flip are applied under one
// lock, so readers never see a transaction without its Sold tractor.
func (s *Service) RecordSaleOn(t Tractor, customer CustomerDraft, salePrice decimal.Decimal, date time.Time) (Transaction, error) {
	if err := customer.Validate(); err != nil {
		return Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.storage.Tractor(t.ID)
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: tractor %q", ErrNotFound, t.ID)
	}
	if current.Status != StatusAvailable {
		s.logger.Warn("sale rejected", zap.String("tractor_id", t.ID), zap.String("status", string(current.Status)))
		return Transaction{}, fmt.Errorf("%w: tractor %s is %s", ErrInvalidState, t.ID, current.Status)
	}

	if date.IsZero() {
		date = s.now()
	}

	c := Customer{
		ID:      fmt.Sprintf("C%03d", s.storage.NextCustomerSeq()),
		Name:    customer.Name,
		Address: customer.Address,
		Phone:   customer.Phone,
		Email:   customer.Email,
	}
	tx := Transaction{
		ID:        fmt.Sprintf("TRN%03d", s.storage.NextTransactionSeq()),
		Tractor:   current,
		Customer:  c,
		SalePrice: salePrice,
		Date:      date.Format(DateLayout),
	}

	sold := current
	sold.Status = StatusSold
	if err := s.storage.ReplaceTractor(sold); err != nil {
		s.logger.Error("failed to mark tractor sold", zap.String("tractor_id", t.ID), zap.Error(err))
		return Transaction{}, fmt.Errorf("failed to mark tractor sold: %w", err)
	}
	if err := s.storage.PrependTransaction(tx); err != nil {
		_ = s.storage.ReplaceTractor(current)
		s.logger.Error("failed to save transaction", zap.String("transaction_id", tx.ID), zap.Error(err))
		return Transaction{}, fmt.Errorf("failed to save transaction: %w", err)
	}

	s.logger.Info("sale recorded",
		zap.String("transaction_id", tx.ID),
		zap.String("tractor_id", current.ID),
		zap.String("customer_id", c.ID),
		zap.String("sale_price", salePrice.String()),
		zap.String("date", tx.Date),
	)
	return tx, nil
}

// Tractor returns the tractor with the given id.
func (s *Service) Tractor(id string) (Tractor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.storage.Tractor(id)
	if err != nil {
		return Tractor{}, fmt.Errorf("%w: tractor %q", ErrNotFound, id)
	}
	return t, nil
}

// Tractors returns all tractors, newest first.
func (s *Service) Tractors() []Tractor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.storage.Tractors()
}

// Transaction returns the transaction with the given id.
func (s *Service) Transaction(id string) (Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.storage.Transaction(id)
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: transaction %q", ErrNotFound, id)
	}
	return tx, nil
}

// Transactions returns all transactions, newest first.
func (s *Service) Transactions() []Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.storage.Transactions()
}

// Snapshot copies both collections under one read lock.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Tractors:     s.storage.Tractors(),
		Transactions: s.storage.Transactions(),
	}
}

// Now returns the ledger clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}
