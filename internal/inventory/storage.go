package inventory

import "errors"

// ErrNotFound is returned when a tractor or transaction id is not in the ledger.
var ErrNotFound = errors.New("not found")

// ErrEmptyID is returned when trying to store an entity with an empty ID.
var ErrEmptyID = errors.New("empty ID")

// ErrDuplicateID is returned when an id is already taken in its collection.
var ErrDuplicateID = errors.New("duplicate ID")

// Storage holds the ledger collections. Implementations are not safe for
// concurrent use; Service serializes access.
type Storage interface {
	PrependTractor(t Tractor) error
	ReplaceTractor(t Tractor) error
	Tractor(id string) (Tractor, error)
	Tractors() []Tractor

	PrependTransaction(tx Transaction) error
	Transaction(id string) (Transaction, error)
	Transactions() []Transaction

	NextTractorSeq() int
	NextCustomerSeq() int
	NextTransactionSeq() int
}

// LocalStorage keeps both collections in memory, newest first, with one
// monotonic counter per id space.
type LocalStorage struct {
	tractors     []Tractor
	tractorIdx   map[string]int
	transactions []Transaction
	txIdx        map[string]struct{}

	tractorSeq     int
	customerSeq    int
	transactionSeq int
}

// NewLocalStorage instantiates an empty LocalStorage.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		tractorIdx: map[string]int{},
		txIdx:      map[string]struct{}{},
	}
}

// PrependTractor puts t at the front of the tractor collection.
func (l *LocalStorage) PrependTractor(t Tractor) error {
	if t.ID == "" {
		return ErrEmptyID
	}
	if _, ok := l.tractorIdx[t.ID]; ok {
		return ErrDuplicateID
	}
	l.tractors = append([]Tractor{t}, l.tractors...)
	l.reindex()
	return nil
}

// ReplaceTractor swaps the stored tractor with the same id, keeping its position.
// Returns ErrNotFound if no tractor has that id.
func (l *LocalStorage) ReplaceTractor(t Tractor) error {
	i, ok := l.tractorIdx[t.ID]
	if !ok {
		return ErrNotFound
	}
	l.tractors[i] = t
	return nil
}

// Tractor retrieves a tractor by id.
func (l *LocalStorage) Tractor(id string) (Tractor, error) {
	i, ok := l.tractorIdx[id]
	if !ok {
		return Tractor{}, ErrNotFound
	}
	return l.tractors[i], nil
}

// Tractors returns a copy of the tractor collection.
func (l *LocalStorage) Tractors() []Tractor {
	out := make([]Tractor, len(l.tractors))
	copy(out, l.tractors)
	return out
}

// PrependTransaction puts tx at the front of the transaction collection.
func (l *LocalStorage) PrependTransaction(tx Transaction) error {
	if tx.ID == "" {
		return ErrEmptyID
	}
	if _, ok := l.txIdx[tx.ID]; ok {
		return ErrDuplicateID
	}
	l.transactions = append([]Transaction{tx}, l.transactions...)
	l.txIdx[tx.ID] = struct{}{}
	return nil
}

// Transaction retrieves a transaction by id.
func (l *LocalStorage) Transaction(id string) (Transaction, error) {
	if _, ok := l.txIdx[id]; !ok {
		return Transaction{}, ErrNotFound
	}
	for _, tx := range l.transactions {
		if tx.ID == id {
			return tx, nil
		}
	}
	return Transaction{}, ErrNotFound
}

// Transactions returns a copy of the transaction collection.
func (l *LocalStorage) Transactions() []Transaction {
	out := make([]Transaction, len(l.transactions))
	copy(out, l.transactions)
	return out
}

// NextTractorSeq advances and returns the tractor counter.
func (l *LocalStorage) NextTractorSeq() int {
	l.tractorSeq++
	return l.tractorSeq
}

// NextCustomerSeq advances and returns the customer counter.
func (l *LocalStorage) NextCustomerSeq() int {
	l.customerSeq++
	return l.customerSeq
}

// NextTransactionSeq advances and returns the transaction counter.
func (l *LocalStorage) NextTransactionSeq() int {
	l.transactionSeq++
	return l.transactionSeq
}

func (l *LocalStorage) reindex() {
	for i, t := range l.tractors {
		l.tractorIdx[t.ID] = i
	}
}
