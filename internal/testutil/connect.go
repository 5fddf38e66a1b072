package testutil

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
)

// HandleHTTPConnect speaks the server side of an HTTP CONNECT exchange
// on c and then relays bytes to the requested target. With a non-empty
// wantAuth it requires a matching Proxy-Authorization header value.
func HandleHTTPConnect(ctx context.Context, c net.Conn, wantAuth string) error {
	br := bufio.NewReader(c)
	req, err := http.ReadRequest(br)
	if err != nil {
		return err
	}
	if req.Method != http.MethodConnect {
		_, _ = fmt.Fprintf(c, "HTTP/1.1 405 Method Not Allowed\r\n\r\n")
		return nil
	}
	if wantAuth != "" && req.Header.Get("Proxy-Authorization") != wantAuth {
		_, _ = fmt.Fprintf(c, "HTTP/1.1 407 Proxy Authentication Required\r\n\r\n")
		return nil
	}

	d := net.Dialer{}
	dst, err := d.DialContext(ctx, "tcp", req.Host)
	if err != nil {
		_, _ = fmt.Fprintf(c, "HTTP/1.1 502 Bad Gateway\r\n\r\n")
		return nil
	}
	defer dst.Close()

	if _, err := io.WriteString(c, "HTTP/1.1 200 Connection Established\r\n\r\n"); err != nil {
		return err
	}

	go func() {
		// br may hold bytes the client pipelined after CONNECT.
		_, _ = io.Copy(dst, br)
		_ = dst.Close()
	}()
	_, _ = io.Copy(c, dst)

	return nil
}
