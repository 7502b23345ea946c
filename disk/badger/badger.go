/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Fri Jun 15 10:55:44 2018 mstenber
 * Last modified: Mon Aug 20 12:31:08 2018 mstenber
 * Edit time:     44 min
 *
 */

package badger

import (
	"encoding/binary"
	"math"

	"github.com/dgraph-io/badger"

	"github.com/fingon/go-redoxfs/codec"
	"github.com/fingon/go-redoxfs/disk"
	"github.com/fingon/go-redoxfs/mlog"
)

// BadgerDisk stores blocks in a badger database, keyed by big-endian
// block number; same semantics as the bolt variant (grows on demand,
// optional per-block codec).
type BadgerDisk struct {
	db    *badger.DB
	size  uint64
	codec codec.Codec
}

var _ disk.Disk = &BadgerDisk{}

// NewBadgerDisk opens (creating if need be) a badger-backed disk in
// the given directory. size 0 means unbounded; c may be nil.
func NewBadgerDisk(dir string, size uint64, c codec.Codec) (*BadgerDisk, error) {
	opts := badger.DefaultOptions
	opts.Dir = dir
	opts.ValueDir = dir
	db, err := badger.Open(opts)
	if err != nil {
		mlog.Printf2("disk/badger/badger", "NewBadgerDisk %s: %v", dir, err)
		return nil, disk.ErrIO
	}
	return &BadgerDisk{db: db, size: size, codec: c}, nil
}

func blockKey(block uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, block)
	return k
}

func (self *BadgerDisk) getBlock(block uint64) ([]byte, error) {
	var data []byte
	k := blockKey(block)
	err := self.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, disk.ErrIO
	}
	if self.codec != nil {
		data, err = self.codec.DecodeBytes(data, k)
		if err != nil {
			mlog.Printf2("disk/badger/badger", "bd.getBlock decode %d: %v", block, err)
			return nil, disk.ErrIO
		}
	}
	return data, nil
}

func (self *BadgerDisk) putBlock(block uint64, data []byte) error {
	k := blockKey(block)
	if self.codec != nil {
		var err error
		data, err = self.codec.EncodeBytes(data, k)
		if err != nil {
			return disk.ErrIO
		}
	}
	err := self.db.Update(func(txn *badger.Txn) error {
		return txn.Set(k, data)
	})
	if err != nil {
		mlog.Printf2("disk/badger/badger", "bd.putBlock %d: %v", block, err)
		return disk.ErrIO
	}
	return nil
}

func (self *BadgerDisk) ReadAt(block uint64, buf []byte) (int, error) {
	data, err := self.getBlock(block)
	if err != nil {
		return 0, err
	}
	if data == nil {
		for i := range buf {
			buf[i] = 0
		}
		return len(buf), nil
	}
	return copy(buf, data), nil
}

func (self *BadgerDisk) WriteAt(block uint64, buf []byte) (int, error) {
	data := make([]byte, disk.BlockSize)
	if len(buf) < disk.BlockSize {
		old, err := self.getBlock(block)
		if err != nil {
			return 0, err
		}
		copy(data, old)
	}
	copy(data, buf)
	if err := self.putBlock(block, data); err != nil {
		return 0, err
	}
	return len(buf), nil
}

func (self *BadgerDisk) Size() (uint64, error) {
	if self.size == 0 {
		return math.MaxUint64, nil
	}
	return self.size, nil
}

// Sync is a no-op; badger transactions are durable on commit (default
// SyncWrites).
func (self *BadgerDisk) Sync() error {
	return nil
}

func (self *BadgerDisk) Close() error {
	if err := self.db.Close(); err != nil {
		return disk.ErrIO
	}
	return nil
}
