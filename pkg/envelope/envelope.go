// Package envelope implements the hybrid encryption used by the encrypted
// upload endpoint: an ephemeral client X25519 key agrees a secret with the
// server key, HKDF-SHA256 stretches it into an XChaCha20-Poly1305 key, and
// the export travels sealed under that key. All wire values are standard
// base64.
package envelope

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	apperrors "github.com/otherjamesbrown/moodsense/pkg/errors"
)

// HKDFInfo binds derived keys to this protocol version.
const HKDFInfo = "moodsense-xchacha20-v1"

// KeySize is the length of X25519 keys and the derived AEAD key.
const KeySize = 32

// Payload is the JSON body of an encrypted upload.
type Payload struct {
	ClientPublicKey string `json:"client_public_key"`
	Nonce           string `json:"nonce"`
	Ciphertext      string `json:"ciphertext"`
}

// KeyPair is a base64-encoded X25519 key pair.
type KeyPair struct {
	PrivateKey string `json:"private_key" yaml:"private_key"`
	PublicKey  string `json:"public_key" yaml:"public_key"`
}

// GenerateKeyPair returns a fresh server key pair.
func GenerateKeyPair() (KeyPair, error) {
	priv, pub, err := newKey(rand.Reader)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{
		PrivateKey: base64.StdEncoding.EncodeToString(priv),
		PublicKey:  base64.StdEncoding.EncodeToString(pub),
	}, nil
}

func newKey(r io.Reader) (priv, pub []byte, err error) {
	priv = make([]byte, KeySize)
	if _, err := io.ReadFull(r, priv); err != nil {
		return nil, nil, fmt.Errorf("generating private key: %w", err)
	}
	pub, err = curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return nil, nil, fmt.Errorf("deriving public key: %w", err)
	}
	return priv, pub, nil
}

// deriveKey stretches the X25519 shared secret into the AEAD key.
func deriveKey(priv, peer []byte) ([]byte, error) {
	shared, err := curve25519.X25519(priv, peer)
	if err != nil {
		return nil, err
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, shared, nil, []byte(HKDFInfo)), key); err != nil {
		return nil, err
	}
	return key, nil
}

// Decrypter holds the server's long-term private key.
type Decrypter struct {
	priv []byte
	pub  []byte
}

// NewDecrypter builds a Decrypter from a base64 private key.
func NewDecrypter(privateKeyB64 string) (*Decrypter, error) {
	priv, err := decodeKey("private key", privateKeyB64)
	if err != nil {
		return nil, err
	}
	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("deriving public key: %w", err)
	}
	return &Decrypter{priv: priv, pub: pub}, nil
}

// PublicKeyB64 returns the server public key clients encrypt to.
func (d *Decrypter) PublicKeyB64() string {
	return base64.StdEncoding.EncodeToString(d.pub)
}

// Decrypt opens a payload produced by Encrypt. Every failure wraps
// apperrors.ErrDecryption.
func (d *Decrypter) Decrypt(p Payload) ([]byte, error) {
	peer, err := decodeKey("client public key", p.ClientPublicKey)
	if err != nil {
		return nil, err
	}
	nonce, err := base64.StdEncoding.DecodeString(p.Nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", apperrors.ErrDecryption, err)
	}
	if len(nonce) != chacha20poly1305.NonceSizeX {
		return nil, fmt.Errorf("%w: nonce must be %d bytes, got %d",
			apperrors.ErrDecryption, chacha20poly1305.NonceSizeX, len(nonce))
	}
	ciphertext, err := base64.StdEncoding.DecodeString(p.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext: %v", apperrors.ErrDecryption, err)
	}

	key, err := deriveKey(d.priv, peer)
	if err != nil {
		return nil, fmt.Errorf("%w: key agreement: %v", apperrors.ErrDecryption, err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDecryption, err)
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDecryption, err)
	}
	return plaintext, nil
}

// Encrypt seals plaintext for the holder of serverPublicKeyB64 using a
// fresh ephemeral client key.
func Encrypt(serverPublicKeyB64 string, plaintext []byte) (Payload, error) {
	serverPub, err := decodeKey("server public key", serverPublicKeyB64)
	if err != nil {
		return Payload{}, err
	}
	clientPriv, clientPub, err := newKey(rand.Reader)
	if err != nil {
		return Payload{}, err
	}
	key, err := deriveKey(clientPriv, serverPub)
	if err != nil {
		return Payload{}, fmt.Errorf("key agreement: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return Payload{}, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return Payload{}, fmt.Errorf("generating nonce: %w", err)
	}
	return Payload{
		ClientPublicKey: base64.StdEncoding.EncodeToString(clientPub),
		Nonce:           base64.StdEncoding.EncodeToString(nonce),
		Ciphertext:      base64.StdEncoding.EncodeToString(aead.Seal(nil, nonce, plaintext, nil)),
	}, nil
}

func decodeKey(name, b64 string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrDecryption, name, err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: %s must be %d bytes, got %d", apperrors.ErrDecryption, name, KeySize, len(key))
	}
	return key, nil
}
