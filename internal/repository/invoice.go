package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/cloudbasha/elmvoice/constants"
	"github.com/cloudbasha/elmvoice/internal/common"
	"github.com/cloudbasha/elmvoice/internal/entity"
	"github.com/cloudbasha/elmvoice/internal/kvstore"
	"github.com/cloudbasha/elmvoice/internal/metrics"
)

// invoicesKey is the single store entry holding the whole collection.
const invoicesKey = "elmvoice/invoices"

// InvoiceFilter narrows ListInvoices results for the dashboard.
type InvoiceFilter struct {
	Query  string // matches invoiceNumber, vendor or client, case-insensitive
	Status string // exact status, or "" / "all"
}

type InvoiceRepository interface {
	CreateInvoice(ctx context.Context, draft entity.InvoiceDraft) (*entity.Invoice, error)
	GetInvoice(ctx context.Context, id string) (*entity.Invoice, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]entity.Invoice, error)
	UpdateInvoice(ctx context.Context, id string, patch entity.InvoicePatch) error
	DeleteInvoice(ctx context.Context, id string) error
	Summary(ctx context.Context) entity.DashboardSummary
}

// invoiceRepository owns the canonical collection. All mutations go through
// the mutex, and the whole collection is written back to the store after
// every change. Store failures are logged and swallowed: the in-memory
// collection stays the source of truth for the session.
type invoiceRepository struct {
	store  kvstore.Store
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	invoices []entity.Invoice
	seq      int // last assigned invoice number
}

func NewInvoiceRepository(ctx context.Context, store kvstore.Store, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	r := &invoiceRepository{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	r.load(ctx)
	return r
}

// load reads the persisted collection, falling back to empty on absence or
// parse failure, and seeds the number sequence past anything already issued.
func (r *invoiceRepository) load(ctx context.Context) {
	raw, err := r.store.Get(ctx, invoicesKey)
	if err != nil {
		if err != kvstore.ErrKeyNotFound {
			r.logger.Warn("invoices.load_failed", "error", err)
		}
		r.invoices = []entity.Invoice{}
		return
	}
	var invoices []entity.Invoice
	if err := json.Unmarshal(raw, &invoices); err != nil {
		r.logger.Warn("invoices.decode_failed, starting empty", "error", err)
		r.invoices = []entity.Invoice{}
		return
	}
	r.invoices = invoices
	r.seq = len(invoices)
	for _, inv := range invoices {
		if n, ok := parseInvoiceNumber(inv.InvoiceNumber); ok && n > r.seq {
			r.seq = n
		}
	}
	r.logger.Info("invoices.loaded", "count", len(invoices), "seq", r.seq)
}

// persist writes the whole collection back. Never fatal.
func (r *invoiceRepository) persist(ctx context.Context) {
	raw, err := json.Marshal(r.invoices)
	if err != nil {
		r.logger.Error("invoices.encode_failed", "error", err)
		return
	}
	if err := r.store.Put(ctx, invoicesKey, raw); err != nil {
		r.logger.Warn("invoices.persist_failed", "error", err)
	}
}

func (r *invoiceRepository) CreateInvoice(ctx context.Context, draft entity.InvoiceDraft) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := sanitizeItems(draft.Items)
	subtotal, tax, total := deriveTotals(items)

	r.seq++
	now := r.now().UTC()
	inv := entity.Invoice{
		ID:            ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		InvoiceNumber: constants.InvoiceNumberPrefix + fmt.Sprintf("%04d", r.seq),
		Vendor:        draft.Vendor,
		VendorAddress: draft.VendorAddress,
		VendorTaxID:   draft.VendorTaxID,
		Client:        draft.Client,
		ClientAddress: draft.ClientAddress,
		ClientEmail:   draft.ClientEmail,
		Date:          draft.Date,
		DueDate:       draft.DueDate,
		Items:         items,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         total,
		Status:        constants.StatusGenerated,
		CreatedAt:     now.Format(time.RFC3339),
	}

	r.invoices = append(r.invoices, inv)
	r.persist(ctx)
	metrics.InvoicesCreated.Inc()

	r.logger.Info("invoice.created",
		"id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"items", len(inv.Items),
		"total", inv.Total,
	)
	out := inv
	return &out, nil
}

func (r *invoiceRepository) GetInvoice(_ context.Context, id string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.invoices {
		if r.invoices[i].ID == id {
			out := r.invoices[i]
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *invoiceRepository) ListInvoices(_ context.Context, filter InvoiceFilter) ([]entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(filter.Query))
	status := strings.TrimSpace(filter.Status)
	out := make([]entity.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		if q != "" &&
			!strings.Contains(strings.ToLower(inv.InvoiceNumber), q) &&
			!strings.Contains(strings.ToLower(inv.Vendor), q) &&
			!strings.Contains(strings.ToLower(inv.Client), q) {
			continue
		}
		if status != "" && status != "all" && string(inv.Status) != status {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

// UpdateInvoice merges the patch into the matching invoice. When the patch
// carries items, the items are re-sanitized and all derived totals are
// recomputed; patches without items leave totals untouched.
func (r *invoiceRepository) UpdateInvoice(ctx context.Context, id string, patch entity.InvoicePatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i := range r.invoices {
		if r.invoices[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return common.ErrNotFound
	}
	inv := &r.invoices[idx]

	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setStr(&inv.Vendor, patch.Vendor)
	setStr(&inv.VendorAddress, patch.VendorAddress)
	setStr(&inv.VendorTaxID, patch.VendorTaxID)
	setStr(&inv.Client, patch.Client)
	setStr(&inv.ClientAddress, patch.ClientAddress)
	setStr(&inv.ClientEmail, patch.ClientEmail)
	setStr(&inv.Date, patch.Date)
	setStr(&inv.DueDate, patch.DueDate)
	if patch.Status != nil {
		inv.Status = constants.InvoiceStatus(*patch.Status)
	}
	if patch.Items != nil {
		inv.Items = sanitizeItems(*patch.Items)
		inv.Subtotal, inv.Tax, inv.Total = deriveTotals(inv.Items)
	}

	r.persist(ctx)
	r.logger.Info("invoice.updated", "id", id, "status", inv.Status)
	return nil
}

// DeleteInvoice removes the matching invoice; deleting an unknown id is a
// no-op so the call is idempotent.
func (r *invoiceRepository) DeleteInvoice(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.invoices {
		if r.invoices[i].ID == id {
			r.invoices = append(r.invoices[:i], r.invoices[i+1:]...)
			r.persist(ctx)
			r.logger.Info("invoice.deleted", "id", id)
			return nil
		}
	}
	return nil
}

func (r *invoiceRepository) Summary(_ context.Context) entity.DashboardSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	var s entity.DashboardSummary
	s.TotalInvoices = len(r.invoices)
	for _, inv := range r.invoices {
		s.TotalRevenue = round2(s.TotalRevenue + inv.Total)
		switch inv.Status {
		case constants.StatusGenerated:
			s.Pending++
		case constants.StatusPaid:
			s.Paid++
		}
	}
	return s
}

// sanitizeItems coerces quantities and prices to numbers (quantity defaults
// to 1 and unitPrice to 0 when unparseable), assigns missing item ids, and
// recomputes each item total.
func sanitizeItems(items []entity.DraftItem) []entity.InvoiceItem {
	out := make([]entity.InvoiceItem, 0, len(items))
	for _, it := range items {
		id := it.ID
		if id == "" {
			id = uuid.New().String()
		}
		q := it.Quantity.Or(1)
		up := it.UnitPrice.Or(0)
		out = append(out, entity.InvoiceItem{
			ID:          id,
			Description: it.Description,
			Quantity:    q,
			UnitPrice:   up,
			Total:       round2(q * up),
		})
	}
	return out
}

// deriveTotals recomputes subtotal, tax and total from sanitized items,
// discarding whatever the draft claimed.
func deriveTotals(items []entity.InvoiceItem) (subtotal, tax, total float64) {
	for _, it := range items {
		subtotal += it.Total
	}
	subtotal = round2(subtotal)
	tax = round2(subtotal * constants.TaxRate)
	total = round2(subtotal + tax)
	return subtotal, tax, total
}

// round2 rounds to money precision (2 decimals).
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func parseInvoiceNumber(s string) (int, bool) {
	s = strings.TrimPrefix(s, constants.InvoiceNumberPrefix)
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
