/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Mon Jun 18 10:55:20 2018 mstenber
 * Last modified: Tue Aug 21 11:30:17 2018 mstenber
 * Edit time:     71 min
 *
 */

package fs

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// Node is the inode equivalent: the metadata block of one file or
// directory. After the fixed fields comes an inline extent array
// sized to fill the block; when that runs out, ExNode points at the
// head of the overflow chain.
//
// For a file the extents cover the file content and their lengths sum
// to exactly Size. For a directory every block in the extents is a
// child Node block and Size is the child count times BlockSize.
//
// Layout (little-endian):
//
//	off   0  mode       u16
//	off   2  uid        u32
//	off   6  gid        u32
//	off  10  ctime      u64
//	off  18  ctime_nsec u32
//	off  22  mtime      u64
//	off  30  mtime_nsec u32
//	off  34  size       u64
//	off  42  name       [214]byte, NUL padded
//	off 256  parent     u64
//	off 264  exnode     u64
//	off 272  extents    [239]Extent
type Node struct {
	// Block is where this node lives. Not serialized.
	Block uint64

	Mode      uint16
	Uid       uint32
	Gid       uint32
	Ctime     uint64
	CtimeNsec uint32
	Mtime     uint64
	MtimeNsec uint32
	Size      uint64
	name      [NameLen]byte
	Parent    uint64
	ExNode    uint64
	Extents   [NodeExtents]Extent
}

func NewNode(name string, mode uint16, parent uint64, ts time.Time) (*Node, error) {
	self := &Node{
		Mode:      mode,
		Parent:    parent,
		Ctime:     uint64(ts.Unix()),
		CtimeNsec: uint32(ts.Nanosecond()),
		Mtime:     uint64(ts.Unix()),
		MtimeNsec: uint32(ts.Nanosecond()),
	}
	if err := self.SetName(name); err != nil {
		return nil, err
	}
	return self, nil
}

func (self *Node) Name() string {
	i := 0
	for i < NameLen && self.name[i] != 0 {
		i++
	}
	return string(self.name[:i])
}

func (self *Node) SetName(name string) error {
	if len(name) > NameLen {
		return ErrNameTooLong
	}
	if strings.ContainsAny(name, "/\x00") {
		return fmt.Errorf("invalid name %q", name)
	}
	self.name = [NameLen]byte{}
	copy(self.name[:], name)
	return nil
}

func (self *Node) IsDir() bool {
	return self.Mode&ModeType == ModeDir
}

func (self *Node) IsFile() bool {
	return self.Mode&ModeType == ModeFile
}

func (self *Node) SetMtime(ts time.Time) {
	self.Mtime = uint64(ts.Unix())
	self.MtimeNsec = uint32(ts.Nanosecond())
}

func (self *Node) Encode() []byte {
	buf := make([]byte, BlockSize)
	binary.LittleEndian.PutUint16(buf[0:], self.Mode)
	binary.LittleEndian.PutUint32(buf[2:], self.Uid)
	binary.LittleEndian.PutUint32(buf[6:], self.Gid)
	binary.LittleEndian.PutUint64(buf[10:], self.Ctime)
	binary.LittleEndian.PutUint32(buf[18:], self.CtimeNsec)
	binary.LittleEndian.PutUint64(buf[22:], self.Mtime)
	binary.LittleEndian.PutUint32(buf[30:], self.MtimeNsec)
	binary.LittleEndian.PutUint64(buf[34:], self.Size)
	copy(buf[42:42+NameLen], self.name[:])
	binary.LittleEndian.PutUint64(buf[256:], self.Parent)
	binary.LittleEndian.PutUint64(buf[264:], self.ExNode)
	for i, e := range self.Extents {
		encodeExtent(buf[nodeFixedSize+i*ExtentSize:], e)
	}
	return buf
}

func (self *Node) Decode(buf []byte) error {
	if len(buf) < BlockSize {
		return ErrBadNode
	}
	self.Mode = binary.LittleEndian.Uint16(buf[0:])
	self.Uid = binary.LittleEndian.Uint32(buf[2:])
	self.Gid = binary.LittleEndian.Uint32(buf[6:])
	self.Ctime = binary.LittleEndian.Uint64(buf[10:])
	self.CtimeNsec = binary.LittleEndian.Uint32(buf[18:])
	self.Mtime = binary.LittleEndian.Uint64(buf[22:])
	self.MtimeNsec = binary.LittleEndian.Uint32(buf[30:])
	self.Size = binary.LittleEndian.Uint64(buf[34:])
	copy(self.name[:], buf[42:42+NameLen])
	self.Parent = binary.LittleEndian.Uint64(buf[256:])
	self.ExNode = binary.LittleEndian.Uint64(buf[264:])
	for i := range self.Extents {
		self.Extents[i] = decodeExtent(buf[nodeFixedSize+i*ExtentSize:])
	}
	return nil
}
