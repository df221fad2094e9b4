//go:build unix

package sockutil

import (
	"errors"
	"fmt"
	"net/netip"

	"golang.org/x/sys/unix"

	"github.com/dep2p/go-devclient/pkg/types"
)

// OpenTCPSocket 创建非阻塞 TCP socket 并发起连接
//
// 连接在后台完成，调用方通过 CheckSocket 查询进度。
func OpenTCPSocket(dest netip.AddrPort) (FD, error) {
	if !dest.IsValid() {
		return -1, fmt.Errorf("%w: invalid destination %s", types.ErrBadParam, dest)
	}

	sa, family := sockaddr(dest)
	fd, err := unix.Socket(family, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, fmt.Errorf("%w: %v", types.ErrSocketError, err)
	}
	unix.CloseOnExec(fd)

	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("%w: set non-blocking: %v", types.ErrSocketError, err)
	}

	if err := unix.Connect(fd, sa); err != nil && !errors.Is(err, unix.EINPROGRESS) {
		unix.Close(fd)
		return -1, fmt.Errorf("%w: %s: %v", types.ErrConnectError, dest, err)
	}
	return FD(fd), nil
}

// CheckSocket 查询连接进度
func CheckSocket(fd FD, dest netip.AddrPort) SocketState {
	sa, _ := sockaddr(dest)
	err := unix.Connect(int(fd), sa)
	switch {
	case err == nil, errors.Is(err, unix.EISCONN):
		return SocketConnected
	case errors.Is(err, unix.EINPROGRESS), errors.Is(err, unix.EALREADY):
		return SocketConnecting
	default:
		return SocketError
	}
}

// Write 非阻塞写
//
// 发送缓冲区已满时返回 0 和 types.ErrWouldBlock。
func Write(fd FD, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, fmt.Errorf("%w: empty buffer", types.ErrBadParam)
	}

	n, err := unix.Write(int(fd), p)
	if err != nil {
		if isWouldBlock(err) {
			return 0, types.ErrWouldBlock
		}
		return 0, fmt.Errorf("%w: %v", types.ErrIOError, err)
	}
	return n, nil
}

// Read 非阻塞读
//
// 对端关闭返回 types.ErrEOF，暂无数据返回 types.ErrWouldBlock。
func Read(fd FD, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, fmt.Errorf("%w: empty buffer", types.ErrBadParam)
	}

	n, err := unix.Read(int(fd), p)
	switch {
	case err != nil && isWouldBlock(err):
		return 0, types.ErrWouldBlock
	case err != nil:
		return 0, fmt.Errorf("%w: %v", types.ErrIOError, err)
	case n == 0:
		return 0, types.ErrEOF
	}
	return n, nil
}

// Close 关闭 socket
func Close(fd FD) error {
	if err := unix.Close(int(fd)); err != nil {
		return fmt.Errorf("%w: close: %v", types.ErrSocketError, err)
	}
	return nil
}

func isWouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}

func sockaddr(ap netip.AddrPort) (unix.Sockaddr, int) {
	addr := ap.Addr().Unmap()
	if addr.Is4() {
		return &unix.SockaddrInet4{Port: int(ap.Port()), Addr: addr.As4()}, unix.AF_INET
	}
	return &unix.SockaddrInet6{Port: int(ap.Port()), Addr: addr.As16()}, unix.AF_INET6
}
