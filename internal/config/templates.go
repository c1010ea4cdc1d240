package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "session", "tcp":
		return sessionTemplate, nil
	case "ssl":
		return sslTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const sessionTemplate = `name = "ccview"
protocol = "demo"

[socket]
type = "tcp_client"

[socket.options]
host = "127.0.0.1"
port = 20000
connect_timeout_ms = 5000
attempts = 3

[[filters]]
type = "tap"

[filters.options]
label = "wire"

[session]
manual_connect = false
log_limit = 10000

[http]
addr = ":9400"
cors_origins = ["http://localhost:3000"]
`

const sslTemplate = `name = "ccview-ssl"
protocol = "demo"

[socket]
type = "ssl_client"

[socket.options]
host = "localhost"
port = 20443

[socket.options.tls]
mutual = true
ca_file = "certs/ca.pem"
cert_file = "certs/client.pem"
key_file = "certs/client-key.pem"

[http]
addr = ":9400"
# bearer token required by POST /api/send
token = ""
`
