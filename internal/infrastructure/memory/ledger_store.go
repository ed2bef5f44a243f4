// Package memory implementa los puertos de persistencia en memoria (STORAGE_DRIVER=memory y tests).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/estoque-faturamento/internal/application/inventory"
	"github.com/jhoicas/estoque-faturamento/internal/domain"
	"github.com/jhoicas/estoque-faturamento/internal/domain/entity"
	"github.com/jhoicas/estoque-faturamento/internal/domain/repository"
)

var (
	_ inventory.TxRunner                  = (*LedgerStore)(nil)
	_ repository.ProductRepository        = (*productRepo)(nil)
	_ repository.StockMovementRepository  = (*movementRepo)(nil)
	_ repository.StockOperationRepository = (*operationRepo)(nil)
)

// LedgerStore guarda productos, diario y tokens de operación del ledger.
// Un único mutex serializa las transacciones (un solo escritor), lo que equivale
// al bloqueo de fila por producto del adaptador PostgreSQL.
type LedgerStore struct {
	mu         sync.Mutex
	products   map[string]*entity.Product
	order      []string
	movements  []entity.StockMovement
	operations map[string]entity.StockOperation
}

// NewLedgerStore construye el store vacío.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		products:   make(map[string]*entity.Product),
		operations: make(map[string]entity.StockOperation),
	}
}

// Products repositorio de productos fuera de transacción.
func (s *LedgerStore) Products() repository.ProductRepository { return &productRepo{s: s} }

// Movements repositorio del diario fuera de transacción.
func (s *LedgerStore) Movements() repository.StockMovementRepository { return &movementRepo{s: s} }

// Run ejecuta fn con el store bloqueado; si fn devuelve error se deshacen sus escrituras.
func (s *LedgerStore) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	operationRepo repository.StockOperationRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &undoLog{}
	if err := fn(&productRepo{s: s, tx: tx}, &movementRepo{s: s, tx: tx}, &operationRepo{s: s, tx: tx}); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// undoLog acumula las funciones que revierten las escrituras de una transacción.
type undoLog struct {
	undo []func()
}

func (u *undoLog) push(fn func()) { u.undo = append(u.undo, fn) }

func (u *undoLog) rollback() {
	for i := len(u.undo) - 1; i >= 0; i-- {
		u.undo[i]()
	}
	u.undo = nil
}

// acquire toma el mutex solo fuera de transacción (dentro de Run ya está tomado).
func (s *LedgerStore) acquire(tx *undoLog) func() {
	if tx != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type productRepo struct {
	s  *LedgerStore
	tx *undoLog
}

func (r *productRepo) Create(ctx context.Context, product *entity.Product) error {
	defer r.s.acquire(r.tx)()
	if _, ok := r.s.products[product.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, p := range r.s.products {
		if p.Code == product.Code {
			return domain.ErrDuplicate
		}
	}
	cp := *product
	r.s.products[product.ID] = &cp
	r.s.order = append(r.s.order, product.ID)
	if r.tx != nil {
		id := product.ID
		r.tx.push(func() {
			delete(r.s.products, id)
			r.s.order = removeID(r.s.order, id)
		})
	}
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	defer r.s.acquire(r.tx)()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *productRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	defer r.s.acquire(r.tx)()
	list := make([]*entity.Product, 0, limit)
	for i := offset; i < len(r.s.order) && len(list) < limit; i++ {
		cp := *r.s.products[r.s.order[i]]
		list = append(list, &cp)
	}
	return list, nil
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	defer r.s.acquire(r.tx)()
	p, ok := r.s.products[id]
	if !ok {
		return nil
	}
	delete(r.s.products, id)
	prevOrder := append([]string(nil), r.s.order...)
	r.s.order = removeID(r.s.order, id)
	if r.tx != nil {
		r.tx.push(func() {
			r.s.products[id] = p
			r.s.order = prevOrder
		})
	}
	return nil
}

func (r *productRepo) GetForUpdate(ctx context.Context, ids []string) ([]*entity.Product, error) {
	defer r.s.acquire(r.tx)()
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	list := make([]*entity.Product, 0, len(sorted))
	for _, id := range sorted {
		if p, ok := r.s.products[id]; ok {
			cp := *p
			list = append(list, &cp)
		}
	}
	return list, nil
}

func (r *productRepo) UpdateBalance(ctx context.Context, id string, balance int) error {
	defer r.s.acquire(r.tx)()
	p, ok := r.s.products[id]
	if !ok {
		return &domain.ProductNotFoundError{ProductID: id}
	}
	if balance < 0 {
		return domain.ErrInvariantViolation
	}
	prev := *p
	p.Balance = balance
	if r.tx != nil {
		r.tx.push(func() { *p = prev })
	}
	return nil
}

type movementRepo struct {
	s  *LedgerStore
	tx *undoLog
}

func (r *movementRepo) Create(ctx context.Context, movement *entity.StockMovement) error {
	defer r.s.acquire(r.tx)()
	n := len(r.s.movements)
	r.s.movements = append(r.s.movements, *movement)
	if r.tx != nil {
		r.tx.push(func() { r.s.movements = r.s.movements[:n] })
	}
	return nil
}

func (r *movementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	defer r.s.acquire(r.tx)()
	var list []*entity.StockMovement
	skipped := 0
	// Más recientes primero, como el adaptador PostgreSQL
	for i := len(r.s.movements) - 1; i >= 0 && len(list) < limit; i-- {
		m := r.s.movements[i]
		if m.ProductID != productID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		cp := m
		list = append(list, &cp)
	}
	return list, nil
}

type operationRepo struct {
	s  *LedgerStore
	tx *undoLog
}

func (r *operationRepo) Get(ctx context.Context, id string) (*entity.StockOperation, error) {
	defer r.s.acquire(r.tx)()
	op, ok := r.s.operations[id]
	if !ok {
		return nil, nil
	}
	return &op, nil
}

func (r *operationRepo) Create(ctx context.Context, op *entity.StockOperation) error {
	defer r.s.acquire(r.tx)()
	if _, ok := r.s.operations[op.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.operations[op.ID] = *op
	if r.tx != nil {
		id := op.ID
		r.tx.push(func() { delete(r.s.operations, id) })
	}
	return nil
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
