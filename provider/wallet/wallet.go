// Package wallet provides WalletSource implementations for the
// orchestrator's polling loop.
package wallet

import (
	"context"
	"sync"

	unifiedauth "github.com/imperfectbreath/go-unifiedauth"
)

// StaticSource is a WalletSource updated explicitly by whatever bridges the
// wallet connector (frontend relay, RPC watcher). Reads never fail.
type StaticSource struct {
	mu    sync.RWMutex
	state unifiedauth.WalletState
}

// NewStaticSource starts disconnected.
func NewStaticSource() *StaticSource {
	return &StaticSource{}
}

// Set overwrites the reported wallet state.
func (s *StaticSource) Set(state unifiedauth.WalletState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// Connect reports a connected wallet.
func (s *StaticSource) Connect(address string, chainID int64) {
	s.Set(unifiedauth.WalletState{Address: address, ChainID: chainID, IsConnected: true})
}

// Disconnect reports a disconnected wallet.
func (s *StaticSource) Disconnect() {
	s.Set(unifiedauth.WalletState{})
}

// Status satisfies the WalletSource interface.
func (s *StaticSource) Status(context.Context) (unifiedauth.WalletState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, nil
}

var _ unifiedauth.WalletSource = (*StaticSource)(nil)
