package filter

import (
	"encoding/hex"
	"fmt"

	"github.com/danmuck/ccview/internal/protocol"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/chacha20"
)

// Inter-plugin property keys honored by the ChaCha20 filter. Values may be
// []byte or hex strings.
const (
	PropChaChaKey   = "chacha20.key"
	PropChaChaNonce = "chacha20.nonce"
)

type ChaCha20Config struct {
	Key   string `toml:"key"`
	Nonce string `toml:"nonce"`
}

// ChaCha20 runs one unauthenticated ChaCha20 keystream per direction. Both
// streams restart whenever the key changes or the socket connects.
type ChaCha20 struct {
	Base
	key   []byte
	nonce []byte
	recv  *chacha20.Cipher
	send  *chacha20.Cipher
}

func NewChaCha20(cfg ChaCha20Config) (*ChaCha20, error) {
	f := &ChaCha20{Base: NewBase("chacha20")}
	if cfg.Key == "" {
		return f, nil
	}
	key, err := hex.DecodeString(cfg.Key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	nonce, err := hex.DecodeString(cfg.Nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", ErrInvalidKey, err)
	}
	if err := f.rekey(key, nonce); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *ChaCha20) rekey(key, nonce []byte) error {
	if len(nonce) == 0 {
		nonce = make([]byte, chacha20.NonceSize)
	}
	recv, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	send, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	f.key = append([]byte(nil), key...)
	f.nonce = append([]byte(nil), nonce...)
	f.recv = recv
	f.send = send
	return nil
}

func (f *ChaCha20) RecvData(info protocol.DataInfo) []protocol.DataInfo {
	return f.apply(f.recv, info)
}

func (f *ChaCha20) SendData(info protocol.DataInfo) []protocol.DataInfo {
	return f.apply(f.send, info)
}

func (f *ChaCha20) apply(c *chacha20.Cipher, info protocol.DataInfo) []protocol.DataInfo {
	if c == nil {
		f.reportError(ErrNoKey)
		return nil
	}
	out := make([]byte, len(info.Data))
	c.XORKeyStream(out, info.Data)
	return []protocol.DataInfo{derive(info, out)}
}

func (f *ChaCha20) SocketConnectionReport(connected bool) {
	if connected && f.key != nil {
		if err := f.rekey(f.key, f.nonce); err != nil {
			f.reportError(err)
		}
	}
}

func (f *ChaCha20) ApplyInterPluginConfig(props map[string]any) {
	rawKey, ok := props[PropChaChaKey]
	if !ok {
		return
	}
	key, err := propBytes(rawKey)
	if err != nil {
		f.reportError(fmt.Errorf("%w: %v", ErrInvalidKey, err))
		return
	}
	var nonce []byte
	if rawNonce, ok := props[PropChaChaNonce]; ok {
		if nonce, err = propBytes(rawNonce); err != nil {
			f.reportError(fmt.Errorf("%w: nonce: %v", ErrInvalidKey, err))
			return
		}
	}
	if err := f.rekey(key, nonce); err != nil {
		f.reportError(err)
		return
	}
	log.Debug().Str("filter", f.Name()).Msg("chacha20_rekeyed")
}

func propBytes(v any) ([]byte, error) {
	switch t := v.(type) {
	case []byte:
		return t, nil
	case string:
		return hex.DecodeString(t)
	default:
		return nil, fmt.Errorf("unsupported property type %T", v)
	}
}
