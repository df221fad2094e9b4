package sockutil

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-devclient/pkg/types"
)

// startDNSServer 启动本地 DNS 服务器
func startDNSServer(t *testing.T, records map[string][]string) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	handler := dns.HandlerFunc(func(w dns.ResponseWriter, req *dns.Msg) {
		resp := new(dns.Msg)
		resp.SetReply(req)

		q := req.Question[0]
		rrs, ok := records[q.Name]
		if !ok {
			resp.SetRcode(req, dns.RcodeNameError)
		}
		for _, s := range rrs {
			rr, err := dns.NewRR(s)
			if err == nil && rr.Header().Rrtype == q.Qtype {
				resp.Answer = append(resp.Answer, rr)
			}
		}
		_ = w.WriteMsg(resp)
	})

	started := make(chan struct{})
	srv := &dns.Server{PacketConn: pc, Handler: handler, NotifyStartedFunc: func() { close(started) }}
	go func() { _ = srv.ActivateAndServe() }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("dns server did not start")
	}
	return pc.LocalAddr().String()
}

// TestResolver_DNSServer 测试通过指定 DNS 服务器解析
func TestResolver_DNSServer(t *testing.T) {
	server := startDNSServer(t, map[string][]string{
		"ops.device.test.": {
			"ops.device.test. 60 IN A 10.1.2.3",
			"ops.device.test. 60 IN A 10.1.2.4",
			"ops.device.test. 60 IN AAAA 2001:db8::1",
		},
	})
	r := NewResolver(server, 2*time.Second)

	dst := make([]netip.AddrPort, 4)
	n, err := r.Resolve(context.Background(), ResolveInfo{Hostname: "ops.device.test", Port: 9997}, dst)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	assert.Equal(t, netip.MustParseAddrPort("10.1.2.3:9997"), dst[0])
	assert.Equal(t, netip.MustParseAddrPort("10.1.2.4:9997"), dst[1])
	assert.Equal(t, netip.MustParseAddrPort("[2001:db8::1]:9997"), dst[2])

	// 结果按 dst 容量截断
	small := make([]netip.AddrPort, 1)
	n, err = r.Resolve(context.Background(), ResolveInfo{Hostname: "ops.device.test"}, small)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, uint16(0), small[0].Port())
}

func TestResolver_NameError(t *testing.T) {
	server := startDNSServer(t, map[string][]string{})
	r := NewResolver(server, 2*time.Second)

	_, err := r.Resolve(context.Background(), ResolveInfo{Hostname: "missing.device.test"}, make([]netip.AddrPort, 1))
	assert.True(t, errors.Is(err, types.ErrNotFound), "got %v", err)
}

// TestResolver_Params 测试参数校验
func TestResolver_Params(t *testing.T) {
	r := NewResolver("", 0)

	_, err := r.Resolve(context.Background(), ResolveInfo{}, make([]netip.AddrPort, 1))
	assert.True(t, errors.Is(err, types.ErrBadParam))

	_, err = r.Resolve(context.Background(), ResolveInfo{Hostname: "127.0.0.1"}, nil)
	assert.True(t, errors.Is(err, types.ErrBufferTooSmall))
}

func TestResolver_IPLiteral(t *testing.T) {
	r := NewResolver("", 0)

	dst := make([]netip.AddrPort, 1)
	n, err := r.Resolve(context.Background(), ResolveInfo{Hostname: "192.0.2.7", Port: 80}, dst)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, netip.MustParseAddrPort("192.0.2.7:80"), dst[0])
}
