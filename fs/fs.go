/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Tue Jun 19 08:14:09 2018 mstenber
 * Last modified: Wed Aug 22 09:55:41 2018 mstenber
 * Edit time:     132 min
 *
 */

package fs

import (
	"fmt"
	"math"
	"time"

	"github.com/fingon/go-redoxfs/disk"
	"github.com/fingon/go-redoxfs/mlog"
)

// FileSystem is the live handle over an open disk. It owns the disk
// exclusively while open; Close syncs and invalidates the handle.
type FileSystem struct {
	d      disk.Disk
	header Header
	closed bool
}

// Open reads and validates the header of an existing filesystem.
func Open(d disk.Disk) (*FileSystem, error) {
	self := &FileSystem{d: d}
	buf := make([]byte, BlockSize)
	if _, err := d.ReadAt(0, buf); err != nil {
		return nil, err
	}
	if err := self.header.Decode(buf); err != nil {
		return nil, err
	}
	total := self.header.Size / BlockSize
	if self.header.Root == 0 || self.header.Root >= total ||
		self.header.Free == 0 || self.header.Free >= total {
		return nil, ErrCorruptHeader
	}
	mlog.Printf2("fs/fs", "Open size:%v root:%v free:%v",
		self.header.Size, self.header.Root, self.header.Free)
	return self, nil
}

// Create formats the disk and returns the open filesystem.
//
// size is the filesystem size in bytes; 0 means the disk's own size,
// which disks with unbounded size (sparse and kv backed ones) cannot
// provide. reserved, if non-nil, is written to fixed blocks right
// after the header and stays outside the allocator forever.
//
// Resulting layout: block 0 header, blocks [1, 1+R) the reserved
// prefix, then the free list node, then the root directory node, then
// the allocatable area.
func Create(d disk.Disk, size uint64, reserved []byte, ctime time.Time) (*FileSystem, error) {
	if size == 0 {
		var err error
		if size, err = d.Size(); err != nil {
			return nil, err
		}
		if size == math.MaxUint64 {
			return nil, fmt.Errorf("explicit size required on an unbounded disk")
		}
	}
	total := size / BlockSize
	reservedBlocks := (uint64(len(reserved)) + BlockSize - 1) / BlockSize
	freeBlock := 1 + reservedBlocks
	rootBlock := freeBlock + 1
	allocStart := rootBlock + 1
	if total <= allocStart {
		return nil, fmt.Errorf("%d bytes is too small for a filesystem", size)
	}
	self := &FileSystem{d: d}
	self.header = *NewHeader(total*BlockSize, ctime)
	self.header.Free = freeBlock
	self.header.Root = rootBlock

	for i := uint64(0); i < reservedBlocks; i++ {
		chunk := reserved[i*BlockSize:]
		if uint64(len(chunk)) > BlockSize {
			chunk = chunk[:BlockSize]
		}
		buf := make([]byte, BlockSize)
		copy(buf, chunk)
		if _, err := d.WriteAt(1+i, buf); err != nil {
			return nil, err
		}
	}

	free, err := NewNode("free", 0, 0, ctime)
	if err != nil {
		return nil, err
	}
	free.Block = freeBlock
	free.Size = (total - allocStart) * BlockSize
	free.Extents[0] = Extent{Block: allocStart, Length: free.Size}
	if err = self.writeNode(free); err != nil {
		return nil, err
	}

	root, err := NewNode("", ModeDir|0755, 0, ctime)
	if err != nil {
		return nil, err
	}
	root.Block = rootBlock
	if err = self.writeNode(root); err != nil {
		return nil, err
	}

	// Header last; a valid header implies a valid layout.
	if _, err = d.WriteAt(0, self.header.Encode()); err != nil {
		return nil, err
	}
	if err = d.Sync(); err != nil {
		return nil, err
	}
	mlog.Printf2("fs/fs", "Create size:%v reserved:%v root:%v free:%v",
		total*BlockSize, reservedBlocks, rootBlock, freeBlock)
	return self, nil
}

// Close syncs and invalidates the handle; every operation on a closed
// handle fails with ErrClosed.
func (self *FileSystem) Close() error {
	if self.closed {
		return ErrClosed
	}
	if err := self.d.Sync(); err != nil {
		return err
	}
	self.closed = true
	return nil
}

func (self *FileSystem) Sync() error {
	if self.closed {
		return ErrClosed
	}
	return self.d.Sync()
}

// Header returns a copy of the superblock.
func (self *FileSystem) Header() Header {
	return self.header
}

// Root is the block number of the root directory node.
func (self *FileSystem) Root() uint64 {
	return self.header.Root
}

// TotalBlocks is the filesystem size in blocks.
func (self *FileSystem) TotalBlocks() uint64 {
	return self.header.Size / BlockSize
}

// allocStart is the first block the allocator may touch. The header,
// the reserved prefix and the free-list and root nodes all sit below
// the higher of the two node pointers.
func (self *FileSystem) allocStart() uint64 {
	s := self.header.Free
	if self.header.Root > s {
		s = self.header.Root
	}
	return s + 1
}

// NodeAt loads the file or directory node at the given block. A block
// that does not hold a file or directory node is caller misuse, not
// an I/O condition.
func (self *FileSystem) NodeAt(block uint64) (*Node, error) {
	if self.closed {
		return nil, ErrClosed
	}
	n, err := self.readNode(block)
	if err != nil {
		return nil, err
	}
	if !n.IsDir() && !n.IsFile() {
		return nil, fmt.Errorf("block %d: %w", block, ErrBadNode)
	}
	return n, nil
}

func (self *FileSystem) readNode(block uint64) (*Node, error) {
	if block == 0 || block >= self.TotalBlocks() {
		return nil, fmt.Errorf("block %d out of range: %w", block, ErrBadNode)
	}
	buf := make([]byte, BlockSize)
	if _, err := self.d.ReadAt(block, buf); err != nil {
		return nil, err
	}
	n := &Node{Block: block}
	if err := n.Decode(buf); err != nil {
		return nil, err
	}
	return n, nil
}

func (self *FileSystem) writeNode(n *Node) error {
	_, err := self.d.WriteAt(n.Block, n.Encode())
	return err
}

func (self *FileSystem) readExNode(block uint64) (*ExNode, error) {
	if block == 0 || block >= self.TotalBlocks() {
		return nil, fmt.Errorf("exnode block %d out of range: %w", block, ErrBadChain)
	}
	buf := make([]byte, BlockSize)
	if _, err := self.d.ReadAt(block, buf); err != nil {
		return nil, err
	}
	x := &ExNode{Block: block}
	if err := x.Decode(buf); err != nil {
		return nil, err
	}
	return x, nil
}

func (self *FileSystem) writeExNode(x *ExNode) error {
	_, err := self.d.WriteAt(x.Block, x.Encode())
	return err
}
