package home

import (
	"fmt"
	"log/slog"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/pipedash/internal/dashboard"
	"github.com/leapstack-labs/pipedash/internal/ui/pages"
)

// patchSink turns sink writes into element patches on an open SSE stream.
// It knows which ids the rendered page carries, so writes to anything else
// behave like writes to a missing element.
type patchSink struct {
	sse    *datastar.ServerSentEventGenerator
	slots  map[string]struct{}
	tables map[string]struct{}
	logger *slog.Logger
}

func newPatchSink(sse *datastar.ServerSentEventGenerator, logger *slog.Logger) *patchSink {
	s := &patchSink{
		sse:    sse,
		slots:  make(map[string]struct{}, len(dashboard.Slots)),
		tables: map[string]struct{}{dashboard.TablePredictions: {}},
		logger: logger,
	}
	for _, slot := range dashboard.Slots {
		s.slots[slot] = struct{}{}
	}
	return s
}

func (s *patchSink) SetText(slot, value string) {
	if _, ok := s.slots[slot]; !ok {
		return
	}
	if err := s.sse.PatchElementTempl(pages.SlotText(slot, value)); err != nil {
		s.logger.Debug("slot patch not delivered", "slot", slot, "error", err)
	}
}

func (s *patchSink) ReplaceRows(table string, rows [][]string) error {
	if _, ok := s.tables[table]; !ok {
		return fmt.Errorf("%w: %s", dashboard.ErrSlotNotFound, table)
	}
	if err := s.sse.PatchElementTempl(pages.TableBody(table, rows)); err != nil {
		return fmt.Errorf("patch %s: %w", table, err)
	}
	return nil
}
