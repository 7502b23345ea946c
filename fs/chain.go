/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Tue Jun 19 10:41:58 2018 mstenber
 * Last modified: Wed Aug 22 11:47:30 2018 mstenber
 * Edit time:     168 min
 *
 */

package fs

import "github.com/fingon/go-redoxfs/mlog"

// extentList is the loaded extent chain of one node: the inline array
// plus every ExNode, in order, addressed as one flat run of slots.
// Mutations happen in memory and are written out by store; store
// writes the exnodes first and the node itself last.
type extentList struct {
	fs      *FileSystem
	node    *Node
	exnodes []*ExNode
	dirty   map[int]bool // exnode index -> needs write

	// alloc hands out blocks for chain growth. Normally it is the
	// filesystem allocator; for the free list itself it must be an
	// allocation from the very list being mutated, or the two
	// copies of the list would fight.
	alloc func(blocks uint64) (Extent, error)
}

// loadChain reads the ExNode chain of a node, verifying the links on
// the way: every chain block must be in range, unvisited (no cycles),
// and point back at its predecessor.
func (self *FileSystem) loadChain(node *Node) (*extentList, error) {
	el := &extentList{fs: self, node: node, dirty: make(map[int]bool),
		alloc: self.Allocate}
	visited := make(map[uint64]bool)
	prev := uint64(0)
	for b := node.ExNode; b != 0; {
		if visited[b] {
			return nil, ErrBadChain
		}
		visited[b] = true
		x, err := self.readExNode(b)
		if err != nil {
			return nil, err
		}
		if x.Prev != prev {
			return nil, ErrBadChain
		}
		el.exnodes = append(el.exnodes, x)
		prev = b
		b = x.Next
	}
	return el, nil
}

func (self *extentList) slotCount() int {
	return NodeExtents + len(self.exnodes)*ExNodeExtents
}

func (self *extentList) slot(i int) *Extent {
	if i < NodeExtents {
		return &self.node.Extents[i]
	}
	j := i - NodeExtents
	return &self.exnodes[j/ExNodeExtents].Extents[j%ExNodeExtents]
}

func (self *extentList) markDirty(i int) {
	if i >= NodeExtents {
		self.dirty[(i-NodeExtents)/ExNodeExtents] = true
	}
	// the node itself is always written by store
}

// forEach calls fn for every used extent in list order until fn
// returns false.
func (self *extentList) forEach(fn func(e Extent) bool) {
	for i := 0; i < self.slotCount(); i++ {
		e := *self.slot(i)
		if e.Empty() {
			continue
		}
		if !fn(e) {
			return
		}
	}
}

// totalBytes is the byte length the list covers.
func (self *extentList) totalBytes() uint64 {
	total := uint64(0)
	self.forEach(func(e Extent) bool {
		total += e.Length
		return true
	})
	return total
}

func (self *extentList) lastUsed() int {
	last := -1
	for i := 0; i < self.slotCount(); i++ {
		if !self.slot(i).Empty() {
			last = i
		}
	}
	return last
}

// append adds an extent to the list: merged into the last extent when
// the blocks are contiguous (and the last extent has no partial
// tail), otherwise into the first unused slot, growing the ExNode
// chain by one block when every slot is taken.
func (self *extentList) append(e Extent) error {
	last := self.lastUsed()
	if last >= 0 {
		le := self.slot(last)
		if le.End() == e.Block && le.Length%BlockSize == 0 {
			le.Length += e.Length
			self.markDirty(last)
			return nil
		}
	}
	for i := 0; i < self.slotCount(); i++ {
		if self.slot(i).Empty() {
			*self.slot(i) = e
			self.markDirty(i)
			return nil
		}
	}
	// Chain is full; hang a new ExNode at the end.
	ext, err := self.alloc(1)
	if err != nil {
		return err
	}
	mlog.Printf2("fs/chain", "el.append new exnode %d", ext.Block)
	x := &ExNode{Block: ext.Block}
	if len(self.exnodes) > 0 {
		tail := self.exnodes[len(self.exnodes)-1]
		tail.Next = x.Block
		x.Prev = tail.Block
		self.dirty[len(self.exnodes)-1] = true
	} else {
		self.node.ExNode = x.Block
	}
	x.Extents[0] = e
	self.exnodes = append(self.exnodes, x)
	self.dirty[len(self.exnodes)-1] = true
	return nil
}

// shrinkTo cuts the list down to newSize bytes and returns the freed
// runs, including the blocks of ExNodes that became empty. The caller
// persists the node before actually freeing them.
func (self *extentList) shrinkTo(newSize uint64) []Extent {
	var freed []Extent
	pos := uint64(0)
	for i := 0; i < self.slotCount(); i++ {
		e := self.slot(i)
		if e.Empty() {
			continue
		}
		switch {
		case pos >= newSize:
			freed = append(freed, *e)
			*e = Extent{}
			self.markDirty(i)
		case pos+e.Length > newSize:
			keepBytes := newSize - pos
			keepBlocks := (keepBytes + BlockSize - 1) / BlockSize
			if keepBlocks < e.NumBlocks() {
				freed = append(freed, Extent{
					Block:  e.Block + keepBlocks,
					Length: (e.NumBlocks() - keepBlocks) * BlockSize,
				})
			}
			e.Length = keepBytes
			self.markDirty(i)
			pos += keepBytes
		default:
			pos += e.Length
		}
	}
	// Drop ExNodes that hold nothing any more, from the tail in.
	for len(self.exnodes) > 0 {
		tail := self.exnodes[len(self.exnodes)-1]
		if !tail.Empty() {
			break
		}
		freed = append(freed, Extent{Block: tail.Block, Length: BlockSize})
		delete(self.dirty, len(self.exnodes)-1)
		self.exnodes = self.exnodes[:len(self.exnodes)-1]
		if len(self.exnodes) > 0 {
			self.exnodes[len(self.exnodes)-1].Next = 0
			self.dirty[len(self.exnodes)-1] = true
		} else {
			self.node.ExNode = 0
		}
	}
	return freed
}

// removeBlock takes one block out of the list, splitting the covering
// extent when it sits in the middle. Directory use; lengths here are
// block multiples.
func (self *extentList) removeBlock(block uint64) error {
	for i := 0; i < self.slotCount(); i++ {
		e := self.slot(i)
		if e.Empty() || block < e.Block || block >= e.End() {
			continue
		}
		switch {
		case e.NumBlocks() == 1:
			*e = Extent{}
		case block == e.Block:
			e.Block++
			e.Length -= BlockSize
		case block == e.End()-1:
			e.Length -= BlockSize
		default:
			tail := Extent{
				Block:  block + 1,
				Length: (e.End() - block - 1) * BlockSize,
			}
			e.Length = (block - e.Block) * BlockSize
			self.markDirty(i)
			return self.append(tail)
		}
		self.markDirty(i)
		return nil
	}
	return ErrNotFound
}

// store writes the dirty ExNodes and then the node.
func (self *extentList) store() error {
	for i, x := range self.exnodes {
		if self.dirty[i] {
			if err := self.fs.writeExNode(x); err != nil {
				return err
			}
		}
	}
	self.dirty = make(map[int]bool)
	return self.fs.writeNode(self.node)
}
