package entity

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
)

// Signature imagen de firma capturada en el navegador (canvas -> data URL).
type Signature struct {
	MIME string // image/png | image/jpeg
	Data []byte
}

var (
	pngMagic  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	jpegMagic = []byte{0xff, 0xd8, 0xff}
)

// ErrSignatureFormat el payload no es una imagen PNG/JPEG en base64.
var ErrSignatureFormat = errors.New("la firma debe ser una imagen PNG o JPEG en base64")

// ParseSignature acepta "data:image/png;base64,...." o base64 sin prefijo.
// El tipo real se detecta por los bytes, no por el prefijo.
func ParseSignature(payload string) (*Signature, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, ErrSignatureFormat
	}
	if strings.HasPrefix(payload, "data:") {
		i := strings.Index(payload, ",")
		if i < 0 || !strings.Contains(payload[:i], ";base64") {
			return nil, ErrSignatureFormat
		}
		payload = payload[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, ErrSignatureFormat
		}
	}
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return &Signature{MIME: "image/png", Data: data}, nil
	case bytes.HasPrefix(data, jpegMagic):
		return &Signature{MIME: "image/jpeg", Data: data}, nil
	}
	return nil, ErrSignatureFormat
}

// DataURL forma canónica en que se guarda la firma en el pedido.
func (s *Signature) DataURL() string {
	return "data:" + s.MIME + ";base64," + base64.StdEncoding.EncodeToString(s.Data)
}
