package httpexec

import (
	"net"
	"net/http"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// tcpKeepAliveIdle and httpKeepAliveIdle are the two timers spec §4.4
// calls out explicitly: TCP keep-alive probes start after 60s of
// silence, but pooled HTTP connections are recycled after only 2s idle
// "to avoid idle-reset hazards observed against this database's HTTP
// endpoint" (servers fronting the database tend to reset connections
// that sit idle in a pool longer than that).
const (
	tcpKeepAliveIdle  = 60 * time.Second
	httpKeepAliveIdle = 2 * time.Second
)

// newTransport builds the *http.Transport every Executor shares
// across requests, with TCP keepalive tuned via raw socket options
// (spec §4.4) and an aggressive idle-connection timeout.
func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: tcpKeepAliveIdle,
		Control:   setKeepAliveIdle,
	}
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        64,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     httpKeepAliveIdle,
	}
}

// setKeepAliveIdle enables SO_KEEPALIVE and sets TCP_KEEPIDLE on the
// raw socket so probes start after tcpKeepAliveIdle of silence, rather
// than relying on whatever the OS default happens to be.
func setKeepAliveIdle(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1)
		if sockErr != nil {
			return
		}
		sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPIDLE, int(tcpKeepAliveIdle.Seconds()))
	})
	if err != nil {
		return err
	}
	return sockErr
}
