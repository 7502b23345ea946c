/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Wed Jun 13 10:02:17 2018 mstenber
 * Last modified: Mon Aug 20 09:52:36 2018 mstenber
 * Edit time:     34 min
 *
 */

package disk

import (
	"math"
	"os"

	"github.com/fingon/go-redoxfs/mlog"
)

// SparseDisk is a block device backed by a sparse file that grows on
// demand. Blocks that were never written read back as zeroes, and
// Size reports an effectively unbounded device; the filesystem on top
// decides how much of it to actually use.
type SparseDisk struct {
	file *os.File
}

var _ Disk = &SparseDisk{}

func CreateSparseDisk(path string) (*SparseDisk, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		mlog.Printf2("disk/sparse", "CreateSparseDisk %s: %v", path, err)
		return nil, ErrIO
	}
	return &SparseDisk{file: f}, nil
}

func (self *SparseDisk) ReadAt(block uint64, buf []byte) (int, error) {
	fi, err := self.file.Stat()
	if err != nil {
		return 0, ErrIO
	}
	off := int64(block * BlockSize)
	end := off + int64(len(buf))
	want := len(buf)

	// The tail past EOF is all zeroes, including blocks that were
	// never written at all.
	have := fi.Size() - off
	if have <= 0 {
		for i := range buf {
			buf[i] = 0
		}
		return want, nil
	}
	if end > fi.Size() {
		for i := have; i < int64(len(buf)); i++ {
			buf[i] = 0
		}
		buf = buf[:have]
	}
	if _, err := self.file.ReadAt(buf, off); err != nil {
		mlog.Printf2("disk/sparse", "sd.ReadAt %d: %v", block, err)
		return 0, ErrIO
	}
	return want, nil
}

func (self *SparseDisk) WriteAt(block uint64, buf []byte) (int, error) {
	n, err := self.file.WriteAt(buf, int64(block*BlockSize))
	if err != nil {
		mlog.Printf2("disk/sparse", "sd.WriteAt %d: %v", block, err)
		return n, ErrIO
	}
	return n, nil
}

func (self *SparseDisk) Size() (uint64, error) {
	return math.MaxUint64, nil
}

func (self *SparseDisk) Sync() error {
	if err := self.file.Sync(); err != nil {
		return ErrIO
	}
	return nil
}

func (self *SparseDisk) Close() error {
	if err := self.file.Close(); err != nil {
		return ErrIO
	}
	return nil
}
