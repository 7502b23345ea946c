/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Created:       Thu Jun 14 11:22:51 2018 mstenber
 * Last modified: Mon Aug 20 11:18:33 2018 mstenber
 * Edit time:     58 min
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 */

package disk

import (
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stvp/assert"
)

func block(fill byte) []byte {
	b := make([]byte, BlockSize)
	for i := range b {
		b[i] = fill
	}
	return b
}

func ProdDisk(t *testing.T, d Disk) {
	b1 := block(1)
	n, err := d.WriteAt(3, b1)
	assert.Nil(t, err)
	assert.Equal(t, n, BlockSize)

	buf := make([]byte, BlockSize)
	n, err = d.ReadAt(3, buf)
	assert.Nil(t, err)
	assert.Equal(t, n, BlockSize)
	assert.Equal(t, buf, b1)

	// Partial block I/O
	n, err = d.WriteAt(4, []byte("hello"))
	assert.Nil(t, err)
	assert.Equal(t, n, 5)
	small := make([]byte, 5)
	_, err = d.ReadAt(4, small)
	assert.Nil(t, err)
	assert.Equal(t, string(small), "hello")

	assert.Nil(t, d.Sync())
}

func TestFileDisk(t *testing.T) {
	dir, err := ioutil.TempDir("", "disk")
	assert.Nil(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "disk.img")
	d, err := CreateFileDisk(path, 10*BlockSize)
	assert.Nil(t, err)
	ProdDisk(t, d)

	size, err := d.Size()
	assert.Nil(t, err)
	assert.Equal(t, size, uint64(10*BlockSize))
	assert.Nil(t, d.Close())

	// Reopen and verify content survived
	d, err = OpenFileDisk(path)
	assert.Nil(t, err)
	buf := make([]byte, BlockSize)
	_, err = d.ReadAt(3, buf)
	assert.Nil(t, err)
	assert.Equal(t, buf, block(1))
	assert.Nil(t, d.Close())
}

func TestSparseDisk(t *testing.T) {
	dir, err := ioutil.TempDir("", "disk")
	assert.Nil(t, err)
	defer os.RemoveAll(dir)

	d, err := CreateSparseDisk(filepath.Join(dir, "sparse.img"))
	assert.Nil(t, err)
	defer d.Close()

	size, err := d.Size()
	assert.Nil(t, err)
	assert.Equal(t, size, uint64(math.MaxUint64))

	// Unwritten blocks read as zeroes, however far out
	buf := block(42)
	_, err = d.ReadAt(12345, buf)
	assert.Nil(t, err)
	assert.Equal(t, buf, block(0))

	ProdDisk(t, d)
}

func TestMemDisk(t *testing.T) {
	d := NewMemDisk(0)
	ProdDisk(t, d)

	size, err := d.Size()
	assert.Nil(t, err)
	assert.Equal(t, size, uint64(math.MaxUint64))

	d2 := NewMemDisk(10 * BlockSize)
	size, err = d2.Size()
	assert.Nil(t, err)
	assert.Equal(t, size, uint64(10*BlockSize))
}

func TestCacheDisk(t *testing.T) {
	m := NewMemDisk(0)
	d := NewCacheDisk(m, 4)
	ProdDisk(t, d)

	// A read hit must not touch the backend
	reads := m.Reads
	buf := make([]byte, BlockSize)
	_, err := d.ReadAt(3, buf)
	assert.Nil(t, err)
	assert.Equal(t, m.Reads, reads)
	assert.Equal(t, buf, block(1))

	// Writes are held back until Sync
	writes := m.Writes
	_, err = d.WriteAt(7, block(7))
	assert.Nil(t, err)
	assert.Equal(t, m.Writes, writes)
	assert.Nil(t, d.Sync())
	assert.True(t, m.Writes > writes)
	_, err = m.ReadAt(7, buf)
	assert.Nil(t, err)
	assert.Equal(t, buf, block(7))
}

func TestCacheDiskEviction(t *testing.T) {
	m := NewMemDisk(0)
	d := NewCacheDisk(m, 2)

	// Fill the cache with dirty blocks, then overflow it; the
	// least-recently-used dirty block must hit the backend.
	_, err := d.WriteAt(1, block(1))
	assert.Nil(t, err)
	_, err = d.WriteAt(2, block(2))
	assert.Nil(t, err)
	assert.Equal(t, m.Writes, 0)

	_, err = d.WriteAt(3, block(3))
	assert.Nil(t, err)
	assert.Equal(t, m.Writes, 1)

	buf := make([]byte, BlockSize)
	_, err = m.ReadAt(1, buf)
	assert.Nil(t, err)
	assert.Equal(t, buf, block(1))

	// And the data is still correct when read through the cache
	_, err = d.ReadAt(2, buf)
	assert.Nil(t, err)
	assert.Equal(t, buf, block(2))
	assert.Nil(t, d.Sync())
}
