package solana

import (
	"context"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"

	"github.com/ClipFinance/funding-lib/connectionmonitor"
)

// solanaConnectionManager implements the connectionmonitor.NodeClient interface.
type solanaConnectionManager struct {
	chain *solana
}

func (m *solanaConnectionManager) CheckConnection(ctx context.Context) error {
	m.chain.clientMutex.RLock()
	client := m.chain.client
	m.chain.clientMutex.RUnlock()

	if client == nil {
		return errors.New("client not initialized")
	}

	health, err := client.GetHealth(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get node health")
	}
	if health != rpc.HealthOk {
		return errors.Errorf("node reported health %s", health)
	}

	return nil
}

func (m *solanaConnectionManager) Reconnect(ctx context.Context) error {
	m.chain.clientMutex.Lock()
	defer m.chain.clientMutex.Unlock()

	m.chain.client = rpc.New(m.chain.config.RpcUrl)

	return nil
}

func (s *solana) initMonitor(ctx context.Context) error {
	s.monitorMutex.Lock()
	defer s.monitorMutex.Unlock()

	connectionManager := &solanaConnectionManager{chain: s}
	s.monitor = connectionmonitor.NewConnectionMonitor(connectionManager, s.logger, s.config.Name)
	return s.monitor.Start(ctx)
}
