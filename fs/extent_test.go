/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Mon Jun 18 09:40:12 2018 mstenber
 * Last modified: Tue Aug 21 10:11:30 2018 mstenber
 * Edit time:     24 min
 *
 */

package fs

import (
	"testing"

	"github.com/stvp/assert"
)

func TestExtentEmpty(t *testing.T) {
	t.Parallel()
	assert.True(t, Extent{}.Empty())
	assert.True(t, !Extent{Block: 1, Length: 1}.Empty())
}

func TestExtentNumBlocks(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Extent{Block: 1, Length: 1}.NumBlocks(), uint64(1))
	assert.Equal(t, Extent{Block: 1, Length: BlockSize}.NumBlocks(), uint64(1))
	assert.Equal(t, Extent{Block: 1, Length: BlockSize + 1}.NumBlocks(), uint64(2))
	assert.Equal(t, Extent{Block: 3, Length: 2 * BlockSize}.End(), uint64(5))
}

func TestBlockIter(t *testing.T) {
	t.Parallel()
	e := Extent{Block: 7, Length: 3*BlockSize + 5}
	it := e.Blocks()
	want := uint64(7)
	total := uint64(0)
	count := uint64(0)
	for {
		b, l, ok := it.Next()
		if !ok {
			break
		}
		assert.Equal(t, b, want)
		want++
		total += l
		count++
	}
	assert.Equal(t, count, e.NumBlocks())
	assert.Equal(t, total, e.Length)

	// Reset restarts from the first block.
	it.Reset()
	b, l, ok := it.Next()
	assert.True(t, ok)
	assert.Equal(t, b, uint64(7))
	assert.Equal(t, l, uint64(BlockSize))
}
