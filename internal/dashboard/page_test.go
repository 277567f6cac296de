package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPage_SetTextUnknownSlotIsNoop(t *testing.T) {
	p := NewPage([]string{"a"}, nil)
	p.SetText("b", "ignored")
	p.SetText("a", "kept")

	_, ok := p.Text("b")
	assert.False(t, ok)
	v, ok := p.Text("a")
	assert.True(t, ok)
	assert.Equal(t, "kept", v)
}

func TestPage_ReplaceRowsCopiesInput(t *testing.T) {
	p := NewDashboardPage()
	rows := [][]string{{"1", "2", "3", "4"}}
	require.NoError(t, p.ReplaceRows(TablePredictions, rows))

	rows[0][0] = "mutated"
	assert.Equal(t, "1", p.Rows(TablePredictions)[0][0])
}

func TestPage_ReplaceRowsMissingTable(t *testing.T) {
	p := NewPage(nil, nil)
	err := p.ReplaceRows(TablePredictions, nil)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestPage_Snapshot(t *testing.T) {
	p := NewDashboardPage()
	p.SetText(SlotModelVersion, "v1")
	require.NoError(t, p.ReplaceRows(TablePredictions, [][]string{{"1", "2", "3", "4"}}))

	snap := p.Snapshot()
	assert.Equal(t, "v1", snap.Slots[SlotModelVersion])
	assert.Len(t, snap.Slots, len(Slots))
	assert.Equal(t, [][]string{{"1", "2", "3", "4"}}, snap.Predictions)
}
