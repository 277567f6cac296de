package dashboard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Text
	}{
		{`"OK"`, "OK"},
		{`1200`, "1200"},
		{`0.84`, "0.84"},
		{`1e3`, "1e3"},
		{`-0.5`, "-0.5"},
		{`null`, ""},
		{`"with \"quotes\""`, `with "quotes"`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got Text
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPredictionsPayload_Rows(t *testing.T) {
	var p PredictionsPayload
	require.NoError(t, json.Unmarshal([]byte(`{"items":[{"actual":4,"prediction":3,"feature_x":2,"id":1}]}`), &p))
	assert.Equal(t, [][]string{{"1", "2", "3", "4"}}, p.Rows())
}

func TestPredictionsPayload_RowsEmpty(t *testing.T) {
	assert.Empty(t, PredictionsPayload{}.Rows())
}
