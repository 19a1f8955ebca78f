package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	assert.NoError(t, p.Publish(context.Background(), "1", map[string]string{"type": "booking.created"}))
	assert.NoError(t, p.Close())
}

func TestKafkaPublisherRejectsUnmarshalablePayload(t *testing.T) {
	p := NewKafkaPublisher([]string{"127.0.0.1:1"}, "booking.events", nil)
	defer p.Close()

	err := p.Publish(context.Background(), "1", make(chan int))
	assert.ErrorContains(t, err, "marshal event")
}
