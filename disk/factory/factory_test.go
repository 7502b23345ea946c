/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Fri Jun 15 13:40:09 2018 mstenber
 * Last modified: Mon Aug 20 13:25:41 2018 mstenber
 * Edit time:     21 min
 *
 */

package factory

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/fingon/go-redoxfs/disk"
	"github.com/stvp/assert"
)

func ProdFactoryDisk(t *testing.T, name string, config Config) {
	d, err := New(name, config)
	assert.Nil(t, err)

	buf := make([]byte, disk.BlockSize)
	buf[0] = 42
	_, err = d.WriteAt(7, buf)
	assert.Nil(t, err)

	buf2 := make([]byte, disk.BlockSize)
	_, err = d.ReadAt(7, buf2)
	assert.Nil(t, err)
	assert.Equal(t, buf2, buf)
	assert.Nil(t, d.Close())
}

func TestFactory(t *testing.T) {
	dir, err := ioutil.TempDir("", "factory")
	assert.Nil(t, err)
	defer os.RemoveAll(dir)

	assert.Equal(t, List(), []string{"badger", "bolt", "file", "memory", "sparse"})

	ProdFactoryDisk(t, "memory", Config{})
	ProdFactoryDisk(t, "memory", Config{CacheBlocks: 16})
	ProdFactoryDisk(t, "file",
		Config{Path: filepath.Join(dir, "file.img"), Size: 16 * disk.BlockSize, Create: true})
	ProdFactoryDisk(t, "sparse", Config{Path: filepath.Join(dir, "sparse.img")})
	ProdFactoryDisk(t, "bolt",
		Config{Path: filepath.Join(dir, "bolt.db"), Password: "siikret", Salt: "salt", Iterations: 16})

	bdir := filepath.Join(dir, "badger")
	assert.Nil(t, os.Mkdir(bdir, 0700))
	ProdFactoryDisk(t, "badger", Config{Path: bdir, Password: "siikret", Salt: "salt", Iterations: 16})

	_, err = New("nosuch", Config{})
	assert.NotNil(t, err)

	_, err = New("file", Config{Path: filepath.Join(dir, "x.img"), Password: "p"})
	assert.NotNil(t, err)
}
