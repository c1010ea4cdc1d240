// Package tlstest issues a throwaway CA with one server and one client
// certificate for TLS socket tests.
package tlstest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Files are PEM paths under a test temp dir. The server certificate is valid
// for localhost and 127.0.0.1.
type Files struct {
	CA         string
	ServerCert string
	ServerKey  string
	ClientCert string
	ClientKey  string
}

type issuer struct {
	t    testing.TB
	dir  string
	cert *x509.Certificate
	key  *ecdsa.PrivateKey
}

// New writes a CA plus server and client pairs signed by it.
func New(t testing.TB) Files {
	t.Helper()
	iss := &issuer{t: t, dir: t.TempDir()}

	caTmpl := iss.template("ccview-test-ca")
	caTmpl.IsCA = true
	caTmpl.BasicConstraintsValid = true
	caTmpl.KeyUsage = x509.KeyUsageCertSign
	var files Files
	files.CA, _ = iss.sign("ca", caTmpl)

	srv := iss.template("server")
	srv.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}
	srv.DNSNames = []string{"localhost"}
	srv.IPAddresses = []net.IP{net.ParseIP("127.0.0.1")}
	files.ServerCert, files.ServerKey = iss.sign("server", srv)

	cli := iss.template("client")
	cli.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth}
	files.ClientCert, files.ClientKey = iss.sign("client", cli)
	return files
}

func (i *issuer) template(cn string) *x509.Certificate {
	now := time.Now()
	return &x509.Certificate{
		SerialNumber: big.NewInt(now.UnixNano()),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
}

// sign self-signs the first certificate and signs the rest with it.
func (i *issuer) sign(name string, tmpl *x509.Certificate) (string, string) {
	i.t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		i.t.Fatalf("generate %s key: %v", name, err)
	}
	parent, parentKey := tmpl, key
	if i.cert != nil {
		parent, parentKey = i.cert, i.key
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, parent, &key.PublicKey, parentKey)
	if err != nil {
		i.t.Fatalf("create %s cert: %v", name, err)
	}
	if i.cert == nil {
		if i.cert, err = x509.ParseCertificate(der); err != nil {
			i.t.Fatalf("parse %s cert: %v", name, err)
		}
		i.key = key
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		i.t.Fatalf("marshal %s key: %v", name, err)
	}
	certPath := i.write(name+".crt", "CERTIFICATE", der, 0o644)
	keyPath := i.write(name+".key", "EC PRIVATE KEY", keyDER, 0o600)
	return certPath, keyPath
}

func (i *issuer) write(file, blockType string, der []byte, perm os.FileMode) string {
	path := filepath.Join(i.dir, file)
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	if err := os.WriteFile(path, data, perm); err != nil {
		i.t.Fatalf("write %s: %v", file, err)
	}
	return path
}
