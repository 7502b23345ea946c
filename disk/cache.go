/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Thu Jun 14 08:12:40 2018 mstenber
 * Last modified: Mon Aug 20 10:44:09 2018 mstenber
 * Edit time:     97 min
 *
 */

package disk

import (
	"container/list"
	"sort"

	"github.com/fingon/go-redoxfs/mlog"
)

type cacheEntry struct {
	block uint64
	data  []byte
	dirty bool
}

// CacheDisk wraps any Disk with a least-recently-used block cache.
//
// The cache is write-back: WriteAt only updates the cached copy and
// marks it dirty, and the underlying disk is consistent only after
// Sync. Evicting a dirty block flushes that block first. Like every
// Disk, the cache has a single owner and no internal locking.
type CacheDisk struct {
	d        Disk
	capacity int
	lru      *list.List // front = most recently used
	blocks   map[uint64]*list.Element
}

var _ Disk = &CacheDisk{}

// NewCacheDisk wraps d with a cache holding at most capacity blocks.
func NewCacheDisk(d Disk, capacity int) *CacheDisk {
	if capacity < 1 {
		capacity = 1
	}
	return &CacheDisk{d: d,
		capacity: capacity,
		lru:      list.New(),
		blocks:   make(map[uint64]*list.Element)}
}

func (self *CacheDisk) ReadAt(block uint64, buf []byte) (int, error) {
	if e, ok := self.blocks[block]; ok {
		self.lru.MoveToFront(e)
		return copy(buf, e.Value.(*cacheEntry).data), nil
	}
	data := make([]byte, BlockSize)
	if _, err := self.d.ReadAt(block, data); err != nil {
		return 0, err
	}
	if err := self.insert(&cacheEntry{block: block, data: data}); err != nil {
		return 0, err
	}
	return copy(buf, data), nil
}

func (self *CacheDisk) WriteAt(block uint64, buf []byte) (int, error) {
	if e, ok := self.blocks[block]; ok {
		ce := e.Value.(*cacheEntry)
		copy(ce.data, buf)
		ce.dirty = true
		self.lru.MoveToFront(e)
		return len(buf), nil
	}
	data := make([]byte, BlockSize)
	if len(buf) < BlockSize {
		// Partial block write; the rest of the block must survive.
		if _, err := self.d.ReadAt(block, data); err != nil {
			return 0, err
		}
	}
	copy(data, buf)
	if err := self.insert(&cacheEntry{block: block, data: data, dirty: true}); err != nil {
		return 0, err
	}
	return len(buf), nil
}

func (self *CacheDisk) insert(ce *cacheEntry) error {
	for self.lru.Len() >= self.capacity {
		if err := self.evict(); err != nil {
			return err
		}
	}
	self.blocks[ce.block] = self.lru.PushFront(ce)
	return nil
}

func (self *CacheDisk) evict() error {
	e := self.lru.Back()
	ce := e.Value.(*cacheEntry)
	if ce.dirty {
		mlog.Printf2("disk/cache", "cd.evict flushing dirty %d", ce.block)
		if _, err := self.d.WriteAt(ce.block, ce.data); err != nil {
			return err
		}
	}
	self.lru.Remove(e)
	delete(self.blocks, ce.block)
	return nil
}

func (self *CacheDisk) Size() (uint64, error) {
	return self.d.Size()
}

// Sync flushes all dirty blocks, in ascending block order, and then
// syncs the underlying disk.
func (self *CacheDisk) Sync() error {
	dirty := make([]*cacheEntry, 0)
	for e := self.lru.Front(); e != nil; e = e.Next() {
		ce := e.Value.(*cacheEntry)
		if ce.dirty {
			dirty = append(dirty, ce)
		}
	}
	sort.Slice(dirty, func(i, j int) bool { return dirty[i].block < dirty[j].block })
	mlog.Printf2("disk/cache", "cd.Sync %d dirty", len(dirty))
	for _, ce := range dirty {
		if _, err := self.d.WriteAt(ce.block, ce.data); err != nil {
			return err
		}
		ce.dirty = false
	}
	return self.d.Sync()
}

func (self *CacheDisk) Close() error {
	if err := self.Sync(); err != nil {
		return err
	}
	return self.d.Close()
}
