package haproxyadmin

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/opsart/haproxyadmin/internal/testutil/testlog"
	"github.com/opsart/haproxyadmin/internal/testutil/tlstest"
)

func TestInfoScrubsNoiseKeys(t *testing.T) {
	testlog.Start(t)
	conn := &scriptConn{lines: []string{"", "Name: HAProxy", "> Name", "Uptime: 100", ""}}
	client, _ := newScriptedClient(t, conn)

	res, err := client.Info(context.Background())
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if len(res) != 1 || res["Uptime"] != "100" {
		t.Fatalf("unexpected result %v", res)
	}
	if conn.sent[1] != "set severity-output number; show info\n" {
		t.Fatalf("unexpected wire command %q", conn.sent[1])
	}
}

func TestCertsScrubsHeader(t *testing.T) {
	testlog.Start(t)
	conn := &scriptConn{lines: []string{"", "# filename", "/etc/ssl/site.pem", "/etc/ssl/other.pem", ""}}
	client, _ := newScriptedClient(t, conn)

	res, err := client.Certs(context.Background())
	if err != nil {
		t.Fatalf("certs: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("unexpected result %v", res)
	}
	if _, ok := res["/etc/ssl/site.pem"]; !ok {
		t.Fatalf("missing certificate key: %v", res)
	}
	if conn.sent[1] != "set severity-output number; show ssl cert\n" {
		t.Fatalf("unexpected wire command %q", conn.sent[1])
	}
}

func TestCertNamesSorted(t *testing.T) {
	testlog.Start(t)
	conn := &scriptConn{lines: []string{"", "# filename", "/etc/ssl/zz.pem", "/etc/ssl/aa.pem", ""}}
	client, _ := newScriptedClient(t, conn)

	names, err := client.CertNames(context.Background())
	if err != nil {
		t.Fatalf("cert names: %v", err)
	}
	if len(names) != 2 || names[0] != "/etc/ssl/aa.pem" || names[1] != "/etc/ssl/zz.pem" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestCertInfo(t *testing.T) {
	testlog.Start(t)
	conn := &scriptConn{lines: []string{"", "Filename: /etc/ssl/site.pem", "Serial: 03E8", "Not After: Dec 31 23:59:59 2026 GMT", ""}}
	client, _ := newScriptedClient(t, conn)

	res, err := client.CertInfo(context.Background(), "/etc/ssl/site.pem")
	if err != nil {
		t.Fatalf("cert info: %v", err)
	}
	if _, ok := res["Filename"]; ok {
		t.Fatalf("header echo should be scrubbed: %v", res)
	}
	if res["Serial"] != "03E8" {
		t.Fatalf("unexpected result %v", res)
	}
	if conn.sent[1] != "set severity-output number; show ssl cert /etc/ssl/site.pem\n" {
		t.Fatalf("unexpected wire command %q", conn.sent[1])
	}
}

func TestUpdateCert(t *testing.T) {
	testlog.Start(t)
	payload := tlstest.PEMPayload(t, "site.example")
	conn := &scriptConn{lines: []string{"", "", "", ""}}
	client, _ := newScriptedClient(t, conn)

	if err := client.UpdateCert(context.Background(), "site.pem", payload); err != nil {
		t.Fatalf("update cert: %v", err)
	}
	want := "set severity-output number; set ssl cert site.pem <<\n" + payload + "\n\n"
	if conn.sent[1] != want {
		t.Fatalf("unexpected set payload %q", conn.sent[1])
	}
	if conn.sent[3] != "set severity-output number; commit ssl cert site.pem\n" {
		t.Fatalf("unexpected commit command %q", conn.sent[3])
	}
}

func TestUpdateCertCommitErrorNoAbort(t *testing.T) {
	testlog.Start(t)
	conn := &scriptConn{lines: []string{"", "", "", "[3]: commit rejected"}}
	client, _ := newScriptedClient(t, conn)

	err := client.UpdateCert(context.Background(), "site.pem", "not checked here")
	if !errors.Is(err, ErrTransaction) {
		t.Fatalf("expected ErrTransaction, got %v", err)
	}
	var perr *ProtocolError
	if !errors.As(err, &perr) || perr.Message != "commit rejected" {
		t.Fatalf("commit error lost: %v", err)
	}
	for _, cmd := range conn.sent {
		if strings.Contains(cmd, "abort ssl cert") {
			t.Fatalf("abort must not follow a commit failure: %q", conn.sent)
		}
	}
}

func TestUpdateCertSetErrorAborts(t *testing.T) {
	testlog.Start(t)
	conn := &scriptConn{lines: []string{"", "[2]: payload rejected", "", ""}}
	client, _ := newScriptedClient(t, conn)

	err := client.UpdateCert(context.Background(), "site.pem", "bad payload")
	var perr *ProtocolError
	if !errors.As(err, &perr) || perr.Severity != 2 || perr.Message != "payload rejected" {
		t.Fatalf("original set error should be returned, got %v", err)
	}
	if errors.Is(err, ErrTransaction) {
		t.Fatalf("set failure must surface unwrapped, got %v", err)
	}
	found := false
	for _, cmd := range conn.sent {
		if cmd == "set severity-output number; abort ssl cert site.pem\n" {
			found = true
		}
	}
	if !found {
		t.Fatalf("abort not issued after failed set: %q", conn.sent)
	}
}

func TestClientOverTCP(t *testing.T) {
	testlog.Start(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		reader := bufio.NewReader(conn)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			switch {
			case strings.HasPrefix(line, "prompt"):
				_, _ = conn.Write([]byte("\n"))
			case strings.HasPrefix(line, "set timeout cli"):
				_, _ = conn.Write([]byte("\n"))
			case strings.Contains(line, "show info"):
				_, _ = conn.Write([]byte("Name: HAProxy\n> Name\nUptime: 100\n\n"))
			default:
				_, _ = conn.Write([]byte("[3]: unknown command\n"))
			}
		}
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	client, err := New(Config{Address: host, Port: port})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	res, err := client.Info(context.Background())
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if len(res) != 1 || res["Uptime"] != "100" {
		t.Fatalf("unexpected result %v", res)
	}

	// Second call reuses the connection through the liveness probe.
	res, err = client.Info(context.Background())
	if err != nil {
		t.Fatalf("second info: %v", err)
	}
	if res["Uptime"] != "100" {
		t.Fatalf("unexpected result %v", res)
	}

	_ = client.Close()
	<-done
}

func TestNewAppliesDefaults(t *testing.T) {
	testlog.Start(t)
	client, err := New(Config{})
	if err != nil {
		t.Fatalf("zero config should be usable: %v", err)
	}
	if client.cfg.Address != DefaultAddress || client.cfg.Port != DefaultPort {
		t.Fatalf("defaults not applied: %+v", client.cfg)
	}
	if client.probeCmd != "set timeout cli 600\n" {
		t.Fatalf("probe command not precomputed: %q", client.probeCmd)
	}
}
