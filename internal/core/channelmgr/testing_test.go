package channelmgr

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-devclient/pkg/lib/log"
	"github.com/dep2p/go-devclient/pkg/types"
)

// fakeChannel 可释放的测试通道
type fakeChannel struct {
	handle      uuid.UUID
	protocol    types.ProtocolID
	protocolErr error
	services    []types.ServiceType
	servicesErr error
	releaseErr  error
	released    int
}

func newFakeChannel(protocolID uint32, services ...types.ServiceType) *fakeChannel {
	return &fakeChannel{
		handle:   uuid.New(),
		protocol: types.ProtocolID{ID: protocolID, Version: 1},
		services: services,
	}
}

func (c *fakeChannel) Handle() uuid.UUID { return c.handle }

func (c *fakeChannel) ProtocolID() (types.ProtocolID, error) {
	return c.protocol, c.protocolErr
}

func (c *fakeChannel) SupportedServices() ([]types.ServiceType, error) {
	if c.servicesErr != nil {
		return nil, c.servicesErr
	}
	return append([]types.ServiceType(nil), c.services...), nil
}

func (c *fakeChannel) Sync([]types.ServiceType) error { return nil }

func (c *fakeChannel) Release() error {
	c.released++
	return c.releaseErr
}

// plainChannel 没有释放钩子的测试通道
type plainChannel struct {
	handle   uuid.UUID
	protocol types.ProtocolID
}

func (c *plainChannel) Handle() uuid.UUID { return c.handle }

func (c *plainChannel) ProtocolID() (types.ProtocolID, error) { return c.protocol, nil }

func (c *plainChannel) SupportedServices() ([]types.ServiceType, error) {
	return []types.ServiceType{types.ServiceBootstrap}, nil
}

func (c *plainChannel) Sync([]types.ServiceType) error { return nil }

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	m, err := NewManager(log.Discard(), opts...)
	require.NoError(t, err)
	return m
}
