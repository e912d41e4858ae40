package builder

import "testing"

func TestNewClientConstructsWithoutDialing(t *testing.T) {
	cli, err := NewClient()
	if err != nil {
		t.Fatalf("unexpected error constructing client: %s", err)
	}
	if cli == nil {
		t.Fatal("expected a non-nil client")
	}
	defer cli.Close()
}

func TestNewTLSClientRejectsMissingCertDir(t *testing.T) {
	if _, err := NewTLSClient("tcp://example.com:2376", "/nonexistent/cert/dir"); err == nil {
		t.Fatal("expected an error when the cert directory does not exist")
	}
}
