/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Fri Jun 15 13:02:18 2018 mstenber
 * Last modified: Mon Aug 20 13:14:27 2018 mstenber
 * Edit time:     39 min
 *
 */

// factory constructs disks by backend name, so tools can take the
// backend as a string option.
package factory

import (
	"fmt"
	"sort"

	"github.com/fingon/go-redoxfs/codec"
	"github.com/fingon/go-redoxfs/disk"
	"github.com/fingon/go-redoxfs/disk/badger"
	"github.com/fingon/go-redoxfs/disk/bolt"
	"github.com/fingon/go-redoxfs/mlog"
)

// Config is what every backend constructor gets.
type Config struct {
	// Path to the backing file (file/sparse/bolt) or directory (badger).
	Path string

	// Size in bytes; 0 means "whatever the backend reports".
	Size uint64

	// Create a fresh disk instead of opening an existing one.
	Create bool

	// CacheBlocks, if nonzero, wraps the disk in an LRU cache of
	// that many blocks.
	CacheBlocks int

	// Password/Salt enable the encrypting+compressing codec on
	// backends that can carry one (bolt, badger).
	Password, Salt string
	Iterations     int
}

type factoryCallback func(config Config) (disk.Disk, error)

var diskFactories = map[string]factoryCallback{
	"file": func(config Config) (disk.Disk, error) {
		if config.Password != "" {
			return nil, fmt.Errorf("backend file cannot carry a codec")
		}
		if config.Create {
			return disk.CreateFileDisk(config.Path, config.Size)
		}
		return disk.OpenFileDisk(config.Path)
	},
	"sparse": func(config Config) (disk.Disk, error) {
		if config.Password != "" {
			return nil, fmt.Errorf("backend sparse cannot carry a codec")
		}
		return disk.CreateSparseDisk(config.Path)
	},
	"memory": func(config Config) (disk.Disk, error) {
		return disk.NewMemDisk(config.Size), nil
	},
	"bolt": func(config Config) (disk.Disk, error) {
		return bolt.NewBoltDisk(config.Path, config.Size, newCodec(config))
	},
	"badger": func(config Config) (disk.Disk, error) {
		return badger.NewBadgerDisk(config.Path, config.Size, newCodec(config))
	}}

func newCodec(config Config) codec.Codec {
	if config.Password == "" {
		return nil
	}
	iter := config.Iterations
	if iter == 0 {
		iter = 4096
	}
	enc := codec.EncryptingCodec{}.Init([]byte(config.Password), []byte(config.Salt), iter)
	return codec.CodecChain{}.Init(enc, &codec.CompressingCodec{})
}

// List returns the known backend names, sorted.
func List() []string {
	keys := make([]string, 0, len(diskFactories))
	for k := range diskFactories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// New constructs the named backend, wrapped in a cache when asked to.
func New(name string, config Config) (disk.Disk, error) {
	mlog.Printf2("disk/factory/factory", "f.New %v %+v", name, config)
	cb, ok := diskFactories[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (have %v)", name, List())
	}
	d, err := cb(config)
	if err != nil {
		return nil, err
	}
	if config.CacheBlocks > 0 {
		d = disk.NewCacheDisk(d, config.CacheBlocks)
	}
	return d, nil
}
