//go:build js && wasm

package dashboard

import (
	"fmt"
	"syscall/js"
)

// DOMSink writes into the browser document through syscall/js.
type DOMSink struct {
	doc js.Value
}

// NewDOMSink returns a sink bound to the global document.
func NewDOMSink() *DOMSink {
	return &DOMSink{doc: js.Global().Get("document")}
}

func (s *DOMSink) element(id string) (js.Value, bool) {
	el := s.doc.Call("getElementById", id)
	if el.IsNull() || el.IsUndefined() {
		return js.Value{}, false
	}
	return el, true
}

// SetText implements Sink.
func (s *DOMSink) SetText(slot, value string) {
	el, ok := s.element(slot)
	if !ok {
		return
	}
	el.Set("textContent", value)
}

// ReplaceRows implements Sink.
func (s *DOMSink) ReplaceRows(table string, rows [][]string) error {
	body, ok := s.element(table)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSlotNotFound, table)
	}
	body.Set("innerHTML", "")

	for _, row := range rows {
		tr := s.doc.Call("createElement", "tr")
		for _, cell := range row {
			td := s.doc.Call("createElement", "td")
			td.Set("textContent", cell)
			tr.Call("appendChild", td)
		}
		body.Call("appendChild", tr)
	}
	return nil
}
