package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestPublishAfterCloseIsDropped(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:9092"}, 4, zap.NewNop())
	p.Start()
	p.Close()
	p.WaitClosed()

	assert.NotPanics(t, func() { p.Publish("orders.created", []byte("k"), []byte(`{}`)) })
	assert.NotPanics(t, p.Close)
}

func TestPublishDropsWhenInboxFull(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:9092"}, 1, zap.NewNop())

	p.Publish("orders.created", nil, []byte(`1`))
	p.Publish("orders.created", nil, []byte(`2`))

	assert.Len(t, p.inbox, 1)
	m := <-p.inbox
	assert.Equal(t, []byte(`1`), m.Value)
}
