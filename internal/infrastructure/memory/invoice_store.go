package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/estoque-faturamento/internal/domain"
	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
	"github.com/jhoicas/estoque-faturamento/internal/domain/repository"
)

var (
	_ repository.InvoiceRepository           = (*InvoiceStore)(nil)
	_ repository.InvoiceTransitionRepository = (*TransitionStore)(nil)
)

// InvoiceStore guarda facturas con sus líneas. Las líneas se copian al entrar y al salir.
type InvoiceStore struct {
	mu       sync.RWMutex
	invoices map[string]*entity.Invoice
	order    []string
	seq      int64
	now      func() time.Time
}

// NewInvoiceStore construye el store vacío.
func NewInvoiceStore() *InvoiceStore {
	return &InvoiceStore{invoices: make(map[string]*entity.Invoice), now: time.Now}
}

func (s *InvoiceStore) Create(ctx context.Context, invoice *entity.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[invoice.ID]; ok {
		return domain.ErrDuplicate
	}
	s.seq++
	invoice.Number = s.seq
	s.invoices[invoice.ID] = cloneInvoice(invoice)
	s.order = append(s.order, invoice.ID)
	return nil
}

func (s *InvoiceStore) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, nil
	}
	return cloneInvoice(inv), nil
}

// List devuelve las facturas de la más reciente a la más antigua.
func (s *InvoiceStore) List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*entity.Invoice, 0, limit)
	for i := len(s.order) - 1 - offset; i >= 0 && len(list) < limit; i-- {
		list = append(list, cloneInvoice(s.invoices[s.order[i]]))
	}
	return list, nil
}

func (s *InvoiceStore) ReplaceItems(ctx context.Context, id string, expectedVersion int, items []entity.InvoiceItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, err := s.checkVersion(id, expectedVersion)
	if err != nil {
		return err
	}
	inv.Items = append([]entity.InvoiceItem(nil), items...)
	inv.Version++
	inv.UpdatedAt = s.now()
	return nil
}

func (s *InvoiceStore) UpdateStatus(ctx context.Context, id string, expectedVersion int, status entity.InvoiceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, err := s.checkVersion(id, expectedVersion)
	if err != nil {
		return err
	}
	inv.Status = status
	inv.Version++
	inv.UpdatedAt = s.now()
	return nil
}

func (s *InvoiceStore) checkVersion(id string, expectedVersion int) (*entity.Invoice, error) {
	inv, ok := s.invoices[id]
	if !ok {
		return nil, domain.ErrInvoiceNotFound
	}
	if inv.Version != expectedVersion {
		return nil, domain.ErrConflict
	}
	return inv, nil
}

func cloneInvoice(inv *entity.Invoice) *entity.Invoice {
	cp := *inv
	cp.Items = append([]entity.InvoiceItem(nil), inv.Items...)
	return &cp
}

// TransitionStore log de la saga en memoria.
type TransitionStore struct {
	mu      sync.RWMutex
	entries map[string][]entity.InvoiceTransition
}

// NewTransitionStore construye el log vacío.
func NewTransitionStore() *TransitionStore {
	return &TransitionStore{entries: make(map[string][]entity.InvoiceTransition)}
}

func (s *TransitionStore) Create(ctx context.Context, t *entity.InvoiceTransition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[t.InvoiceID] = append(s.entries[t.InvoiceID], *t)
	return nil
}

// ListByInvoice devuelve las entradas en orden cronológico.
func (s *TransitionStore) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.InvoiceTransition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.entries[invoiceID]
	list := make([]*entity.InvoiceTransition, 0, len(entries))
	for i := range entries {
		cp := entries[i]
		list = append(list, &cp)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (s *TransitionStore) Last(ctx context.Context, invoiceID string) (*entity.InvoiceTransition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.entries[invoiceID]
	if len(entries) == 0 {
		return nil, nil
	}
	cp := entries[len(entries)-1]
	return &cp, nil
}
