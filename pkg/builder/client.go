package builder

import (
	"context"
	"net/http"
	"time"

	"github.com/docker/docker/client"
	"github.com/docker/go-connections/tlsconfig"
)

// APIVersion records the daemon API version this package was written
// against. The clients below do not pin it: they negotiate the version
// with the daemon.
const APIVersion = "1.41"

// NewClient dials the daemon, negotiating the API version against
// whatever DOCKER_HOST/TLS environment is present, rather than
// hard-coding a socket path.
func NewClient() (*client.Client, error) {
	return client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
}

// NewTLSClient dials a daemon exposed over TCP with client-certificate
// authentication, for hosts that set DOCKER_HOST to a tcp:// address but
// are not running under a Docker Desktop/docker-machine environment
// client.FromEnv already understands. certDir holds ca.pem/cert.pem/key.pem
// in the conventional docker layout.
func NewTLSClient(host, certDir string) (*client.Client, error) {
	tlsConfig, err := tlsconfig.Client(tlsconfig.Options{
		CAFile:             certDir + "/ca.pem",
		CertFile:           certDir + "/cert.pem",
		KeyFile:            certDir + "/key.pem",
		InsecureSkipVerify: false,
	})
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Transport: &http.Transport{TLSClientConfig: tlsConfig},
	}

	return client.NewClientWithOpts(
		client.WithHost(host),
		client.WithHTTPClient(httpClient),
		client.WithAPIVersionNegotiation(),
	)
}

// Ping verifies the daemon is reachable within a short timeout, used by
// the orchestrator to fail fast with a clear DaemonError instead of
// hanging on the first real operation.
func Ping(cli *client.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err := cli.Ping(ctx)
	return err
}
