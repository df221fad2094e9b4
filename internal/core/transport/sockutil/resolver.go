package sockutil

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/miekg/dns"

	"github.com/dep2p/go-devclient/pkg/types"
)

// ResolveInfo 解析请求
type ResolveInfo struct {
	// Hostname 主机名或 IP 字面量
	Hostname string

	// Port 结果地址使用的端口，可以为 0
	Port uint16
}

// Resolver 主机名解析器
//
// 配置了 DNS 服务器时直接向其查询 A/AAAA 记录，否则使用系统解析器。
type Resolver struct {
	server string
	client *dns.Client
}

// NewResolver 创建解析器
//
// server 为 host:port 形式的 DNS 服务器地址，为空时使用系统解析器。
func NewResolver(server string, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Resolver{
		server: server,
		client: &dns.Client{Net: "udp", Timeout: timeout},
	}
}

// Resolve 解析主机名并写入 dst，返回写入的地址数
//
// dst 无法容纳任何结果时返回 types.ErrBufferTooSmall；结果多于 dst 容量时截断。
func (r *Resolver) Resolve(ctx context.Context, info ResolveInfo, dst []netip.AddrPort) (int, error) {
	if info.Hostname == "" {
		return 0, fmt.Errorf("%w: empty hostname", types.ErrBadParam)
	}
	if len(dst) == 0 {
		return 0, types.ErrBufferTooSmall
	}

	addrs, err := r.lookup(ctx, info.Hostname)
	if err != nil {
		return 0, err
	}
	if len(addrs) == 0 {
		return 0, fmt.Errorf("%w: no address for %s", types.ErrNotFound, info.Hostname)
	}

	n := 0
	for _, addr := range addrs {
		if n == len(dst) {
			break
		}
		dst[n] = netip.AddrPortFrom(addr.Unmap(), info.Port)
		n++
	}
	return n, nil
}

func (r *Resolver) lookup(ctx context.Context, host string) ([]netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return []netip.Addr{addr}, nil
	}

	if r.server == "" {
		addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
		if err != nil {
			return nil, fmt.Errorf("%w: resolve %s: %v", types.ErrNotFound, host, err)
		}
		return addrs, nil
	}

	var addrs []netip.Addr
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		found, err := r.query(ctx, host, qtype)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, found...)
	}
	return addrs, nil
}

func (r *Resolver) query(ctx context.Context, host string, qtype uint16) ([]netip.Addr, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), qtype)
	msg.RecursionDesired = true

	in, _, err := r.client.ExchangeContext(ctx, msg, r.server)
	if err != nil {
		return nil, fmt.Errorf("%w: dns exchange with %s: %v", types.ErrIOError, r.server, err)
	}

	switch in.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, fmt.Errorf("%w: %s does not exist", types.ErrNotFound, host)
	default:
		return nil, fmt.Errorf("%w: dns %s for %s", types.ErrIOError, dns.RcodeToString[in.Rcode], host)
	}

	var addrs []netip.Addr
	for _, rr := range in.Answer {
		var ip net.IP
		switch v := rr.(type) {
		case *dns.A:
			ip = v.A
		case *dns.AAAA:
			ip = v.AAAA
		default:
			continue
		}
		if addr, ok := netip.AddrFromSlice(ip); ok {
			addrs = append(addrs, addr.Unmap())
		}
	}
	return addrs, nil
}
