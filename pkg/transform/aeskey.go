package transform

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	"github.com/dsgmesh/dsgcore/pkg/dsgerr"
)

// AesKey bundles an AES-256 key with its CBC IV, the same 48-byte layout
// the original merge-with-key transform keys itself with (32-byte key,
// 16-byte IV).
type AesKey [48]byte

func (k AesKey) key() []byte { return k[:32] }
func (k AesKey) iv() []byte  { return k[32:48] }

// GenerateAesKey draws a fresh random key+IV bundle for a new Backup
// contract's merge function (spec.md §4.4 "Backup storage generates a
// per-contract AES key").
func GenerateAesKey() (AesKey, error) {
	var k AesKey
	if _, err := rand.Read(k[:]); err != nil {
		return k, dsgerr.Wrap(dsgerr.SystemVariant(dsgerr.Failed), "draw aes key", err)
	}
	return k, nil
}

// EncBlockLen is the CBC block size stored-chunk headers are zero-padded
// to (spec.md §4.4 "enc_block (=16)").
const EncBlockLen = aes.BlockSize

// EncryptCBC encrypts data in place with no padding; len(data) must be a
// multiple of EncBlockLen.
func EncryptCBC(k AesKey, data []byte) error {
	if len(data)%EncBlockLen != 0 {
		return dsgerr.New(dsgerr.SystemVariant(dsgerr.OutOfLimit), "ciphertext length not block-aligned")
	}
	block, err := aes.NewCipher(k.key())
	if err != nil {
		return dsgerr.Wrap(dsgerr.SystemVariant(dsgerr.Failed), "build aes cipher", err)
	}
	cipher.NewCBCEncrypter(block, k.iv()).CryptBlocks(data, data)
	return nil
}

// DecryptCBC decrypts data in place with no padding removal.
func DecryptCBC(k AesKey, data []byte) error {
	if len(data)%EncBlockLen != 0 {
		return dsgerr.New(dsgerr.SystemVariant(dsgerr.OutOfLimit), "ciphertext length not block-aligned")
	}
	block, err := aes.NewCipher(k.key())
	if err != nil {
		return dsgerr.Wrap(dsgerr.SystemVariant(dsgerr.Failed), "build aes cipher", err)
	}
	cipher.NewCBCDecrypter(block, k.iv()).CryptBlocks(data, data)
	return nil
}

// padToBlock zero-pads data up to the next EncBlockLen boundary.
func padToBlock(data []byte) []byte {
	rem := len(data) % EncBlockLen
	if rem == 0 {
		return data
	}
	return append(data, make([]byte, EncBlockLen-rem)...)
}
