package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestPool_RaceCondition(t *testing.T) {
	sink := &MockSink{}
	p := NewPool(PoolConfig{
		WorkerCount:   2,
		QueueSize:     1000,
		BatchSize:     10,
		FlushInterval: 10 * time.Millisecond,
		Source:        &MockSource{},
		Sink:          sink,
		Logger:        zap.NewNop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	wg := sync.WaitGroup{}
	producers := 10
	perProducer := 100

	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				p.Enqueue(int64(base*perProducer + j))
				// Small sleep to spread out enqueues
				if j%10 == 0 {
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}

	// Stop concurrently with late producers; Enqueue must never panic
	wg.Wait()
	p.Stop()

	if got := int64(sink.Total()); got != p.Processed() {
		t.Errorf("sink has %d matches, pool reports %d", got, p.Processed())
	}
}
