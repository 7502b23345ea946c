/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Mon Jun 18 09:31:02 2018 mstenber
 * Last modified: Tue Aug 21 10:20:34 2018 mstenber
 * Edit time:     38 min
 *
 */

package fs

import (
	"encoding/binary"
	"time"
)

// Header is the superblock, always block 0 and never moving.
//
// Layout (little-endian):
//
//	off  0  signature  [8]byte "RedoxFS\0"
//	off  8  version    u64
//	off 16  size       u64  filesystem size in bytes
//	off 24  free       u64  block of the free list node
//	off 32  root       u64  block of the root directory node
//	off 40  ctime      u64  creation time, seconds
//	off 48  ctime_nsec u32
//
// The rest of the block is zero.
type Header struct {
	Version   uint64
	Size      uint64
	Free      uint64
	Root      uint64
	Ctime     uint64
	CtimeNsec uint32
}

func NewHeader(size uint64, ctime time.Time) *Header {
	return &Header{
		Version:   Version,
		Size:      size,
		Ctime:     uint64(ctime.Unix()),
		CtimeNsec: uint32(ctime.Nanosecond()),
	}
}

func (self *Header) Encode() []byte {
	buf := make([]byte, BlockSize)
	copy(buf[0:8], Signature)
	binary.LittleEndian.PutUint64(buf[8:], self.Version)
	binary.LittleEndian.PutUint64(buf[16:], self.Size)
	binary.LittleEndian.PutUint64(buf[24:], self.Free)
	binary.LittleEndian.PutUint64(buf[32:], self.Root)
	binary.LittleEndian.PutUint64(buf[40:], self.Ctime)
	binary.LittleEndian.PutUint32(buf[48:], self.CtimeNsec)
	return buf
}

// Decode validates the signature and version before anything else; a
// store that fails either check is foreign or corrupt, not ours.
func (self *Header) Decode(buf []byte) error {
	if len(buf) < BlockSize || string(buf[0:8]) != Signature {
		return ErrCorruptHeader
	}
	version := binary.LittleEndian.Uint64(buf[8:])
	if version != Version {
		return ErrVersionMismatch
	}
	self.Version = version
	self.Size = binary.LittleEndian.Uint64(buf[16:])
	self.Free = binary.LittleEndian.Uint64(buf[24:])
	self.Root = binary.LittleEndian.Uint64(buf[32:])
	self.Ctime = binary.LittleEndian.Uint64(buf[40:])
	self.CtimeNsec = binary.LittleEndian.Uint32(buf[48:])
	return nil
}
