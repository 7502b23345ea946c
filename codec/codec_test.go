/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Tue Jun 12 12:33:41 2018 mstenber
 * Last modified: Fri Aug 17 14:40:12 2018 mstenber
 * Edit time:     25 min
 *
 */

package codec

import (
	"bytes"
	"testing"

	"github.com/stvp/assert"
)

func ProdCodec(t *testing.T, c Codec) {
	ad := []byte("ad")
	data := []byte("some data to play with, compressible it is too: aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	enc, err := c.EncodeBytes(data, ad)
	assert.Nil(t, err)
	dec, err := c.DecodeBytes(enc, ad)
	assert.Nil(t, err)
	assert.Equal(t, string(dec), string(data))
}

func TestCompressingCodec(t *testing.T) {
	c := &CompressingCodec{}
	ProdCodec(t, c)

	// Compressible payloads should actually shrink
	data := bytes.Repeat([]byte("a"), 4096)
	enc, err := c.EncodeBytes(data, nil)
	assert.Nil(t, err)
	assert.True(t, len(enc) < len(data))

	// Incompressible ones pay only the tag byte
	enc, err = c.EncodeBytes([]byte{1, 2, 3}, nil)
	assert.Nil(t, err)
	assert.Equal(t, len(enc), 4)
}

func TestEncryptingCodec(t *testing.T) {
	c := EncryptingCodec{}.Init([]byte("password"), []byte("salt"), 16)
	ProdCodec(t, c)

	// Wrong password must not decode
	c2 := EncryptingCodec{}.Init([]byte("password2"), []byte("salt"), 16)
	enc, err := c.EncodeBytes([]byte("data"), nil)
	assert.Nil(t, err)
	_, err = c2.DecodeBytes(enc, nil)
	assert.Equal(t, err, ErrDecode)

	// Wrong additionalData must not decode either
	_, err = c.DecodeBytes(enc, []byte("x"))
	assert.Equal(t, err, ErrDecode)
}

func TestCodecChain(t *testing.T) {
	enc := EncryptingCodec{}.Init([]byte("password"), []byte("salt"), 16)
	c := CodecChain{}.Init(enc, &CompressingCodec{})
	ProdCodec(t, c)
}
