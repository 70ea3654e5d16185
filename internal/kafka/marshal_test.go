package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID  string `json:"id"`
	Qty int    `json:"qty"`
}

func TestUnwrapPayload(t *testing.T) {
	got, err := UnwrapPayload[sample](json.RawMessage(`{"id":"x","qty":3}`))
	require.NoError(t, err)
	assert.Equal(t, sample{ID: "x", Qty: 3}, got)

	_, err = UnwrapPayload[sample](json.RawMessage(`{"qty":"three"}`))
	assert.ErrorContains(t, err, "decode payload")
}
