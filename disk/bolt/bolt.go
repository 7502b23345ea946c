/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Fri Jun 15 09:40:21 2018 mstenber
 * Last modified: Mon Aug 20 12:09:55 2018 mstenber
 * Edit time:     51 min
 *
 */

package bolt

import (
	"encoding/binary"
	"math"

	bbolt "github.com/coreos/bbolt"

	"github.com/fingon/go-redoxfs/codec"
	"github.com/fingon/go-redoxfs/disk"
	"github.com/fingon/go-redoxfs/mlog"
)

var blocksBucket = []byte("blocks")

// BoltDisk stores blocks in a bbolt database, keyed by big-endian
// block number. Like a sparse file, it grows on demand and blocks
// never written read back as zeroes.
//
// If a Codec is given, every block payload goes through it on the way
// in and out, with the key as additional authenticated data; that is
// how encrypted and compressed images work.
type BoltDisk struct {
	db    *bbolt.DB
	size  uint64
	codec codec.Codec
}

var _ disk.Disk = &BoltDisk{}

// NewBoltDisk opens (creating if need be) a bolt-backed disk. size 0
// means unbounded; c may be nil.
func NewBoltDisk(path string, size uint64, c codec.Codec) (*BoltDisk, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		mlog.Printf2("disk/bolt/bolt", "NewBoltDisk %s: %v", path, err)
		return nil, disk.ErrIO
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(blocksBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, disk.ErrIO
	}
	return &BoltDisk{db: db, size: size, codec: c}, nil
}

func blockKey(block uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, block)
	return k
}

func (self *BoltDisk) getBlock(block uint64) ([]byte, error) {
	var data []byte
	k := blockKey(block)
	err := self.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(blocksBucket).Get(k)
		if v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, disk.ErrIO
	}
	if data != nil && self.codec != nil {
		data, err = self.codec.DecodeBytes(data, k)
		if err != nil {
			mlog.Printf2("disk/bolt/bolt", "bd.getBlock decode %d: %v", block, err)
			return nil, disk.ErrIO
		}
	}
	return data, nil
}

func (self *BoltDisk) putBlock(block uint64, data []byte) error {
	k := blockKey(block)
	if self.codec != nil {
		var err error
		data, err = self.codec.EncodeBytes(data, k)
		if err != nil {
			return disk.ErrIO
		}
	}
	err := self.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(blocksBucket).Put(k, data)
	})
	if err != nil {
		mlog.Printf2("disk/bolt/bolt", "bd.putBlock %d: %v", block, err)
		return disk.ErrIO
	}
	return nil
}

func (self *BoltDisk) ReadAt(block uint64, buf []byte) (int, error) {
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

func (self *BoltDisk) WriteAt(block uint64, buf []byte) (int, error) {
	data := make([]byte, disk.BlockSize)
	if len(buf) < disk.BlockSize {
		// Partial write; the rest of the block must survive.
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

func (self *BoltDisk) Size() (uint64, error) {
	if self.size == 0 {
		return math.MaxUint64, nil
	}
	return self.size, nil
}

func (self *BoltDisk) Sync() error {
	if err := self.db.Sync(); err != nil {
		return disk.ErrIO
	}
	return nil
}

func (self *BoltDisk) Close() error {
	if err := self.db.Close(); err != nil {
		return disk.ErrIO
	}
	return nil
}
