//go:build !unix

package sockutil

import (
	"net/netip"

	"github.com/dep2p/go-devclient/pkg/types"
)

// OpenTCPSocket 当前平台不支持
func OpenTCPSocket(netip.AddrPort) (FD, error) { return -1, types.ErrSocketError }

// CheckSocket 当前平台不支持
func CheckSocket(FD, netip.AddrPort) SocketState { return SocketError }

// Write 当前平台不支持
func Write(FD, []byte) (int, error) { return 0, types.ErrSocketError }

// Read 当前平台不支持
func Read(FD, []byte) (int, error) { return 0, types.ErrSocketError }

// Close 当前平台不支持
func Close(FD) error { return types.ErrSocketError }
