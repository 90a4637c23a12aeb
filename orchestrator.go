package unifiedauth

import (
	"context"
	"sync"
	"time"
)

// DefaultWalletPollInterval is how often the wallet source is read when no
// override is configured.
const DefaultWalletPollInterval = 2 * time.Second

// OrchestratorOption customizes orchestrator construction.
type OrchestratorOption func(*Orchestrator)

// WithWalletSource wires the polled wallet status source.
func WithWalletSource(source WalletSource) OrchestratorOption {
	return func(o *Orchestrator) {
		o.walletSource = source
	}
}

// WithSubscriptionSyncer wires the entitlement sync task launched at start.
func WithSubscriptionSyncer(syncer SubscriptionSyncer) OrchestratorOption {
	return func(o *Orchestrator) {
		o.syncer = syncer
	}
}

// WithWalletPollInterval overrides the wallet poll cadence.
func WithWalletPollInterval(interval time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if interval > 0 {
			o.pollInterval = interval
		}
	}
}

// WithOrchestratorLogger overrides the default logger.
func WithOrchestratorLogger(logger Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator bridges the external auth-state push source and the polled
// wallet source into the store, and kicks off a subscription sync whose
// lifetime is tied to the orchestrator (cancelled on Stop, never leaked).
//
// IsLoading is set true at start and flips false on the first auth event.
// If the upstream callback never fires it stays true; the upstream contract
// defines no recovery and no timeout is invented here.
type Orchestrator struct {
	store        *Store
	authSource   AuthStateSource
	walletSource WalletSource
	syncer       SubscriptionSyncer
	pollInterval time.Duration
	logger       Logger

	mu          sync.Mutex
	started     bool
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
}

// NewOrchestrator wires an orchestrator around the given store and auth source.
func NewOrchestrator(store *Store, authSource AuthStateSource, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		store:        store,
		authSource:   authSource,
		pollInterval: DefaultWalletPollInterval,
		logger:       defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	return o
}

// Start subscribes to the auth source, begins wallet polling, and launches
// the subscription sync. It is not re-entrant; call Stop first.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.started {
		return ErrOrchestratorStarted
	}
	if o.authSource == nil {
		return ErrMissingAuthSource
	}

	runCtx, cancel := context.WithCancel(ctx)

	o.store.SetLoading(true)

	var once sync.Once
	unsubscribe, err := o.authSource.Subscribe(runCtx, func(session *ProviderSession) {
		o.store.SetSession(session)
		once.Do(func() {
			o.store.SetLoading(false)
		})
	})
	if err != nil {
		cancel()
		return err
	}

	o.cancel = cancel
	o.unsubscribe = unsubscribe
	o.started = true

	if o.walletSource != nil {
		o.wg.Add(1)
		go o.pollWallet(runCtx)
	}

	if o.syncer != nil {
		o.wg.Add(1)
		go o.runSync(runCtx)
	}

	return nil
}

// Stop cancels the poll loop and the sync task, unsubscribes from the auth
// source, and waits for in-flight work to finish.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.started {
		o.mu.Unlock()
		return
	}

	cancel := o.cancel
	unsubscribe := o.unsubscribe
	o.cancel = nil
	o.unsubscribe = nil
	o.started = false
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if unsubscribe != nil {
		unsubscribe()
	}
	o.wg.Wait()
}

func (o *Orchestrator) pollWallet(ctx context.Context) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	o.readWallet(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.readWallet(ctx)
		}
	}
}

func (o *Orchestrator) readWallet(ctx context.Context) {
	status, err := o.walletSource.Status(ctx)
	if err != nil {
		o.logger.Warn("wallet status read failed: %v", err)
		return
	}
	// the store suppresses unchanged values, so every poll can write through
	o.store.SetWallet(status.Address, status.ChainID, status.IsConnected)
}

func (o *Orchestrator) runSync(ctx context.Context) {
	defer o.wg.Done()

	if err := o.syncer.Sync(ctx); err != nil {
		o.logger.Warn("subscription sync failed: %v", err)
	}
}
