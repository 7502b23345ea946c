/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Fri Jun 22 13:40:02 2018 mstenber
 * Last modified: Thu Aug 23 13:02:11 2018 mstenber
 * Edit time:     41 min
 *
 */

package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"time"

	"github.com/fingon/go-redoxfs/disk"
	"github.com/fingon/go-redoxfs/disk/factory"
	"github.com/fingon/go-redoxfs/fs"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n\n%s [flags] PATH\n\nFormats PATH as a filesystem.\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	backendp := flag.String("backend", "file", fmt.Sprintf("Backend to use (possible: %v)", factory.List()))
	size := flag.Uint64("size", 0, "Filesystem size in bytes (0 = whatever the backend has)")
	cache := flag.Int("cache", 0, "Cache size in blocks (0 = no cache)")
	password := flag.String("password", "", "Password (enables encryption on backends that support it)")
	salt := flag.String("salt", "salt", "Salt")
	reservedfile := flag.String("reserved", "", "File whose contents are written to the reserved blocks after the header (e.g. a bootloader)")

	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	var reserved []byte
	if *reservedfile != "" {
		var err error
		if reserved, err = ioutil.ReadFile(*reservedfile); err != nil {
			log.Fatal(err)
		}
	}

	d, err := factory.New(*backendp, factory.Config{
		Path:        flag.Arg(0),
		Size:        *size,
		Create:      true,
		CacheBlocks: *cache,
		Password:    *password,
		Salt:        *salt,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer d.Close()

	myfs, err := fs.Create(d, *size, reserved, time.Now())
	if err != nil {
		log.Fatal(err)
	}
	h := myfs.Header()
	if err = myfs.Close(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s: %d bytes (%d blocks of %d)\n",
		flag.Arg(0), h.Size, h.Size/disk.BlockSize, disk.BlockSize)
	fmt.Printf("  free list at block %d, root directory at block %d\n", h.Free, h.Root)
}
