package dashboard

import (
	"fmt"
	"sync"
)

// Page is an in-memory Sink. Only slots and tables declared at construction
// exist; writes to anything else behave like writes to a missing element.
type Page struct {
	mu     sync.RWMutex
	slots  map[string]string
	tables map[string][][]string
}

// NewPage creates a page with the given slots and table bodies.
func NewPage(slots, tables []string) *Page {
	p := &Page{
		slots:  make(map[string]string, len(slots)),
		tables: make(map[string][][]string, len(tables)),
	}
	for _, s := range slots {
		p.slots[s] = ""
	}
	for _, t := range tables {
		p.tables[t] = nil
	}
	return p
}

// NewDashboardPage creates a page with every standard dashboard slot.
func NewDashboardPage() *Page {
	return NewPage(Slots, []string{TablePredictions})
}

// SetText implements Sink.
func (p *Page) SetText(slot, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.slots[slot]; !ok {
		return
	}
	p.slots[slot] = value
}

// ReplaceRows implements Sink.
func (p *Page) ReplaceRows(table string, rows [][]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.tables[table]; !ok {
		return fmt.Errorf("%w: %s", ErrSlotNotFound, table)
	}
	copied := make([][]string, len(rows))
	for i, r := range rows {
		copied[i] = append([]string(nil), r...)
	}
	p.tables[table] = copied
	return nil
}

// Text returns the current text of a slot and whether the slot exists.
func (p *Page) Text(slot string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.slots[slot]
	return v, ok
}

// Rows returns a copy of the rows in a table body.
func (p *Page) Rows(table string) [][]string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	rows := p.tables[table]
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// Snapshot is a point-in-time copy of a dashboard page.
type Snapshot struct {
	Slots       map[string]string `json:"slots"`
	Predictions [][]string        `json:"predictions"`
}

// Snapshot copies the page's slots and prediction rows.
func (p *Page) Snapshot() Snapshot {
	p.mu.RLock()
	slots := make(map[string]string, len(p.slots))
	for k, v := range p.slots {
		slots[k] = v
	}
	p.mu.RUnlock()

	return Snapshot{
		Slots:       slots,
		Predictions: p.Rows(TablePredictions),
	}
}
