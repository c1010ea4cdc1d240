package socket

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	ErrTLSRequired             = errors.New("socket: tls required")
	ErrTLSCertFileRequired     = errors.New("socket: tls cert file required")
	ErrTLSKeyFileRequired      = errors.New("socket: tls key file required")
	ErrTLSCAFileRequired       = errors.New("socket: tls ca file required")
	ErrTLSInsecureSkipNotAllow = errors.New("socket: insecure skip verify not allowed with mutual tls")
)

// TLSConfig turns a TCP client into an SSL client.
type TLSConfig struct {
	Enabled            bool   `toml:"enabled"`
	Mutual             bool   `toml:"mutual"`
	CAFile             string `toml:"ca_file"`
	CertFile           string `toml:"cert_file"`
	KeyFile            string `toml:"key_file"`
	ServerName         string `toml:"server_name"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
}

func (c TLSConfig) Validate() error {
	if c.Mutual && !c.Enabled {
		return ErrTLSRequired
	}
	if !c.Enabled {
		return nil
	}
	if strings.TrimSpace(c.CAFile) == "" && !c.InsecureSkipVerify {
		return ErrTLSCAFileRequired
	}
	if c.Mutual {
		if c.InsecureSkipVerify {
			return ErrTLSInsecureSkipNotAllow
		}
		if strings.TrimSpace(c.CertFile) == "" {
			return ErrTLSCertFileRequired
		}
		if strings.TrimSpace(c.KeyFile) == "" {
			return ErrTLSKeyFileRequired
		}
	}
	return nil
}

// clientConfig loads the files named by c. It returns nil when TLS is off.
func (c TLSConfig) clientConfig(host string) (*tls.Config, error) {
	if !c.Enabled {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	out := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		ServerName:         c.ServerName,
		InsecureSkipVerify: c.InsecureSkipVerify,
	}
	if out.ServerName == "" {
		out.ServerName = host
	}
	if c.CAFile != "" {
		pem, err := os.ReadFile(c.CAFile)
		if err != nil {
			return nil, fmt.Errorf("socket: read ca file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("socket: no certificates in %s", c.CAFile)
		}
		out.RootCAs = pool
	}
	if c.Mutual {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("socket: load client cert: %w", err)
		}
		out.Certificates = []tls.Certificate{cert}
	}
	return out, nil
}
