package ledger

import (
	"context"
	"sync"
)

// job is one mutation waiting for a worker, with a channel to hand the
// result back to the blocked caller.
type job struct {
	run    func() error
	result chan error
}

// Processor runs ledger mutations on a fixed worker pool. Callers block
// until their mutation commits or fails, so the request/response cycle
// stays synchronous while total write concurrency is bounded.
type Processor struct {
	workers int
	queue   chan job
	stopCh  chan struct{}
	wg      sync.WaitGroup
	svc     *Service
}

func NewProcessor(svc *Service, workers int) *Processor {
	return &Processor{
		workers: workers,
		queue:   make(chan job, 100),
		stopCh:  make(chan struct{}),
		svc:     svc,
	}
}

func (p *Processor) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	log.WithField("workers", p.workers).Info("ledger workers started")
}

// Stop drains the workers. In-flight mutations finish; queued ones after
// the stop signal are abandoned by their callers' contexts.
func (p *Processor) Stop() {
	close(p.stopCh)
	p.wg.Wait()
	log.Info("ledger processor stopped")
}

func (p *Processor) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopCh:
			log.WithField("worker", id).Debug("worker stopping")
			return
		case j := <-p.queue:
			j.result <- j.run()
		}
	}
}

func (p *Processor) submit(fn func() error) error {
	j := job{run: fn, result: make(chan error, 1)}
	p.queue <- j
	return <-j.result
}

// Buy submits a buy to the pool and waits for it.
func (p *Processor) Buy(ctx context.Context, userID int64, symbol string, shares int64) error {
	return p.submit(func() error { return p.svc.Buy(ctx, userID, symbol, shares) })
}

// Sell submits a sell to the pool and waits for it.
func (p *Processor) Sell(ctx context.Context, userID int64, symbol string, shares int64) error {
	return p.submit(func() error { return p.svc.Sell(ctx, userID, symbol, shares) })
}

// Deposit submits a cash deposit to the pool and waits for it.
func (p *Processor) Deposit(ctx context.Context, userID int64, amount string) error {
	return p.submit(func() error { return p.svc.Deposit(ctx, userID, amount) })
}
