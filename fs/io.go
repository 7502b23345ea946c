/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Thu Jun 21 08:33:29 2018 mstenber
 * Last modified: Thu Aug 23 10:12:54 2018 mstenber
 * Edit time:     171 min
 *
 */

package fs

import (
	"time"

	"github.com/fingon/go-redoxfs/mlog"
)

// File content I/O. Byte ranges are mapped to blocks by walking the
// node's extent list and, within each extent, its block iterator.
//
// Write ordering is: free list first (inside Allocate), data blocks
// second, node metadata last. An I/O failure in the middle can
// therefore leak allocated blocks, but the on-disk tree never points
// at blocks that were not written, and freed blocks can never still
// be referenced. Nothing is rolled back or retried here.

func umin(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// Read reads into buf from the given offset. A short read at end of
// file is not an error; reading past it returns 0.
func (self *FileSystem) Read(node *Node, offset uint64, buf []byte) (int, error) {
	if self.closed {
		return 0, ErrClosed
	}
	if node.IsDir() {
		return 0, ErrIsDir
	}
	if offset >= node.Size {
		return 0, nil
	}
	if offset+uint64(len(buf)) > node.Size {
		buf = buf[:node.Size-offset]
	}
	el, err := self.loadChain(node)
	if err != nil {
		return 0, err
	}
	return self.readRange(el, offset, buf)
}

func (self *FileSystem) readRange(el *extentList, offset uint64, buf []byte) (int, error) {
	read := 0
	pos := uint64(0)
	blockBuf := make([]byte, BlockSize)
	for i := 0; i < el.slotCount() && read < len(buf); i++ {
		e := *el.slot(i)
		if e.Empty() {
			continue
		}
		if offset+uint64(read) >= pos+e.Length {
			pos += e.Length
			continue
		}
		skip := offset + uint64(read) - pos
		inner := uint64(0)
		it := e.Blocks()
		for {
			b, chunk, ok := it.Next()
			if !ok {
				break
			}
			end := inner + chunk
			if skip < end {
				boff := skip - inner
				n := umin(end-skip, uint64(len(buf)-read))
				if _, err := self.d.ReadAt(b, blockBuf[:chunk]); err != nil {
					return read, err
				}
				copy(buf[read:read+int(n)], blockBuf[boff:boff+n])
				read += int(n)
				skip += n
			}
			inner = end
			if read == len(buf) {
				break
			}
		}
		pos += e.Length
	}
	return read, nil
}

// writeRange writes into the blocks covering [offset, offset+count).
// src supplies the bytes; a nil src writes zeroes. The extent list
// must already cover the range.
func (self *FileSystem) writeRange(el *extentList, offset uint64, src []byte, count uint64) (int, error) {
	written := uint64(0)
	pos := uint64(0)
	blockBuf := make([]byte, BlockSize)
	for i := 0; i < el.slotCount() && written < count; i++ {
		e := *el.slot(i)
		if e.Empty() {
			continue
		}
		if offset+written >= pos+e.Length {
			pos += e.Length
			continue
		}
		skip := offset + written - pos
		inner := uint64(0)
		it := e.Blocks()
		for {
			b, chunk, ok := it.Next()
			if !ok {
				break
			}
			end := inner + chunk
			if skip < end {
				boff := skip - inner
				n := umin(end-skip, count-written)
				out := blockBuf[:chunk]
				if boff != 0 || n < chunk {
					// Partial block; keep the bytes around the write.
					if _, err := self.d.ReadAt(b, out); err != nil {
						return int(written), err
					}
				}
				if src != nil {
					copy(out[boff:boff+n], src[written:written+n])
				} else {
					for j := boff; j < boff+n; j++ {
						out[j] = 0
					}
				}
				if _, err := self.d.WriteAt(b, out); err != nil {
					return int(written), err
				}
				written += n
				skip += n
			}
			inner = end
			if written == count {
				break
			}
		}
		pos += e.Length
	}
	return int(written), nil
}

// ensureCapacity grows the extent list to cover newSize bytes: first
// by using the unused tail of the last block, then by allocating new
// runs, merged onto the last extent when they happen to be adjacent.
// The caller zeroes or overwrites whatever the new blocks contain.
func (self *FileSystem) ensureCapacity(el *extentList, newSize uint64) error {
	cap := el.totalBytes()
	if cap >= newSize {
		return nil
	}
	if last := el.lastUsed(); last >= 0 {
		e := el.slot(last)
		aligned := e.NumBlocks() * BlockSize
		if e.Length < aligned {
			grow := umin(aligned-e.Length, newSize-cap)
			e.Length += grow
			cap += grow
			el.markDirty(last)
		}
	}
	for cap < newSize {
		want := (newSize - cap + BlockSize - 1) / BlockSize
		ext, err := self.Allocate(want)
		if err != nil {
			return err
		}
		length := umin(ext.Length, newSize-cap)
		if err = el.append(Extent{Block: ext.Block, Length: length}); err != nil {
			return err
		}
		cap += length
	}
	return nil
}

// Write writes data at the given offset, extending the file (and
// zero-filling any gap before the offset) as needed. A short write
// happens only on error; allocation failure aborts the write instead
// of quietly truncating it.
func (self *FileSystem) Write(node *Node, offset uint64, data []byte, mtime time.Time) (int, error) {
	if self.closed {
		return 0, ErrClosed
	}
	if node.IsDir() {
		return 0, ErrIsDir
	}
	if len(data) == 0 {
		return 0, nil
	}
	newSize := node.Size
	if offset+uint64(len(data)) > newSize {
		newSize = offset + uint64(len(data))
	}
	el, err := self.loadChain(node)
	if err != nil {
		return 0, err
	}
	if err = self.ensureCapacity(el, newSize); err != nil {
		return 0, err
	}
	if offset > node.Size {
		if _, err = self.writeRange(el, node.Size, nil, offset-node.Size); err != nil {
			return 0, err
		}
	}
	n, err := self.writeRange(el, offset, data, uint64(len(data)))
	if err != nil {
		return n, err
	}
	node.Size = newSize
	node.SetMtime(mtime)
	mlog.Printf2("fs/io", "fs.Write %d @%d +%d -> size %d", node.Block, offset, len(data), newSize)
	return n, el.store()
}

// Truncate resizes the file. Shrinking frees the extents past the new
// size (and any emptied ExNodes); growing allocates zeroed blocks.
func (self *FileSystem) Truncate(node *Node, size uint64, mtime time.Time) error {
	if self.closed {
		return ErrClosed
	}
	if node.IsDir() {
		return ErrIsDir
	}
	el, err := self.loadChain(node)
	if err != nil {
		return err
	}
	switch {
	case size > node.Size:
		if err = self.ensureCapacity(el, size); err != nil {
			return err
		}
		if _, err = self.writeRange(el, node.Size, nil, size-node.Size); err != nil {
			return err
		}
		node.Size = size
		node.SetMtime(mtime)
		return el.store()
	case size < node.Size:
		freed := el.shrinkTo(size)
		node.Size = size
		node.SetMtime(mtime)
		// Node first, frees second: a crash in between leaks
		// blocks instead of handing out blocks still referenced.
		if err = el.store(); err != nil {
			return err
		}
		mlog.Printf2("fs/io", "fs.Truncate %d -> %d freeing %v", node.Block, size, freed)
		return self.freeExtents(freed)
	default:
		node.SetMtime(mtime)
		return self.writeNode(node)
	}
}
