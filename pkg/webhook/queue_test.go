package webhook

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRecordsEventMetadata(t *testing.T) {
	q := NewQueue(5)

	event := q.Record("orders/create", "demo.myshopify.com", "")

	assert.NotEmpty(t, event.ID)
	assert.False(t, event.ReceivedAt.IsZero())
	assert.Equal(t, "orders/create", event.Topic)
	assert.Equal(t, "demo.myshopify.com", event.ShopDomain)

	recent := q.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, event.ID, recent[0].ID)
}

func TestQueueDropsOldestAtCapacity(t *testing.T) {
	q := NewQueue(3)

	for i := 0; i < 5; i++ {
		q.Record(fmt.Sprintf("topic/%d", i), "demo.myshopify.com", "")
	}

	recent := q.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, "topic/2", recent[0].Topic)
	assert.Equal(t, "topic/4", recent[2].Topic)
}

func TestQueueDefaultCapacity(t *testing.T) {
	q := NewQueue(0)

	for i := 0; i < DefaultQueueCapacity+10; i++ {
		q.Record("customers/update", "demo.myshopify.com", "")
	}

	assert.Equal(t, DefaultQueueCapacity, q.Len())
}

func TestQueueDequeueFIFO(t *testing.T) {
	q := NewQueue(5)

	for i := 0; i < 3; i++ {
		q.Record(fmt.Sprintf("topic/%d", i), "demo.myshopify.com", "")
	}

	first, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "topic/0", first.Topic)
	assert.Equal(t, 2, q.Len())

	second, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "topic/1", second.Topic)

	third, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "topic/2", third.Topic)

	_, ok = q.Dequeue()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

func TestMetricTopicBucketsUnknownTopics(t *testing.T) {
	for _, topic := range []string{
		"customers/create", "customers/update",
		"products/create", "products/update",
		"orders/create", "orders/updated", "orders/paid",
	} {
		assert.Equal(t, topic, metricTopic(topic))
	}

	assert.Equal(t, "other", metricTopic("app/uninstalled"))
	assert.Equal(t, "other", metricTopic("totally-made-up-header-value"))
	assert.Equal(t, "other", metricTopic(""))
}

func TestQueueConcurrentRecord(t *testing.T) {
	q := NewQueue(10)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Record("products/update", "demo.myshopify.com", "")
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, q.Len())
}
