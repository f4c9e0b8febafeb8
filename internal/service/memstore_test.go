package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"reimburse/internal/model"
	"reimburse/internal/repository"
)

// memStore is an in-memory InvoiceRepository, AttachmentRepository and Transactor
// with the same atomicity as the SQL implementation: every method is one critical section.
type memStore struct {
	mu       sync.Mutex
	invoices map[string]model.Invoice
	edges    []memEdge
}

type memEdge struct {
	from, to string
}

func newMemStore(invoices ...model.Invoice) *memStore {
	m := &memStore{invoices: make(map[string]model.Invoice)}
	for _, inv := range invoices {
		m.invoices[inv.ID] = inv
	}
	return m
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *memStore) ReadSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *memStore) Create(_ context.Context, inv *model.Invoice) (*model.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[inv.ID] = *inv
	out := *inv
	return &out, nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*model.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &inv, nil
}

func (m *memStore) FindByIDForUpdate(ctx context.Context, id string) (*model.Invoice, error) {
	return m.FindByID(ctx, id)
}

func (m *memStore) List(_ context.Context, f repository.ListFilter) ([]model.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]model.Invoice, 0)
	for _, inv := range m.invoices {
		if f.Status == nil || inv.Status == *f.Status {
			items = append(items, inv)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if f.Ascending {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (m *memStore) UpdateAnnotation(_ context.Context, id string, a model.Annotation) (*model.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	a.Apply(&inv)
	m.invoices[id] = inv
	return &inv, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.invoices[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.invoices, id)
	return nil
}

func (m *memStore) Add(_ context.Context, invoiceID, attachmentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if invoiceID == attachmentID {
		return repository.ErrSelfReference
	}
	_, okFrom := m.invoices[invoiceID]
	_, okTo := m.invoices[attachmentID]
	if !okFrom || !okTo {
		return repository.ErrReferenceNotFound
	}
	for _, e := range m.edges {
		if e.from == invoiceID && e.to == attachmentID {
			return nil
		}
	}
	m.edges = append(m.edges, memEdge{invoiceID, attachmentID})
	return nil
}

func (m *memStore) Remove(_ context.Context, invoiceID, attachmentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.edges[:0]
	for _, e := range m.edges {
		if e.from != invoiceID || e.to != attachmentID {
			kept = append(kept, e)
		}
	}
	m.edges = kept
	return nil
}

func (m *memStore) ListFor(_ context.Context, invoiceID string) ([]model.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]model.Invoice, 0)
	for _, e := range m.edges {
		if e.from == invoiceID {
			items = append(items, m.invoices[e.to])
		}
	}
	return items, nil
}

func (m *memStore) ListAttachmentIDs(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, e := range m.edges {
		if !seen[e.to] {
			seen[e.to] = true
			ids = append(ids, e.to)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memStore) AttachmentNames(_ context.Context) (map[string][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make(map[string][]string)
	for _, e := range m.edges {
		names[e.from] = append(names[e.from], m.invoices[e.to].OriginalFilename)
	}
	return names, nil
}

func (m *memStore) RemoveAllFor(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	kept := m.edges[:0]
	for _, e := range m.edges {
		if e.from == id || e.to == id {
			n++
			continue
		}
		kept = append(kept, e)
	}
	m.edges = kept
	return n, nil
}

var (
	_ repository.InvoiceRepository    = (*memStore)(nil)
	_ repository.AttachmentRepository = (*memStore)(nil)
	_ repository.Transactor           = (*memStore)(nil)
)
