/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Fri Jun 22 14:12:30 2018 mstenber
 * Last modified: Thu Aug 23 14:21:47 2018 mstenber
 * Edit time:     88 min
 *
 */

package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path"
	"time"

	"github.com/fatih/color"
	"github.com/fingon/go-redoxfs/disk"
	"github.com/fingon/go-redoxfs/disk/factory"
	"github.com/fingon/go-redoxfs/fs"
)

var dirColor = color.New(color.FgBlue, color.Bold)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage:

%s [flags] IMAGE COMMAND [ARGS]

Commands:
  ls [PATH]          list a directory (default /)
  stat PATH          show node metadata
  cat PATH           write file contents to stdout
  put LOCAL PATH     copy a local file into the filesystem
  mkdir PATH         create a directory
  rm PATH            remove a file or empty directory
  df                 show space usage

`, os.Args[0])
		flag.PrintDefaults()
	}
	backendp := flag.String("backend", "file", fmt.Sprintf("Backend to use (possible: %v)", factory.List()))
	cache := flag.Int("cache", 64, "Cache size in blocks (0 = no cache)")
	password := flag.String("password", "", "Password (for encrypted backends)")
	salt := flag.String("salt", "salt", "Salt")

	flag.Parse()
	if flag.NArg() < 2 {
		flag.Usage()
		os.Exit(1)
	}

	d, err := factory.New(*backendp, factory.Config{
		Path:        flag.Arg(0),
		CacheBlocks: *cache,
		Password:    *password,
		Salt:        *salt,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer d.Close()

	myfs, err := fs.Open(d)
	if err != nil {
		log.Fatal(err)
	}
	defer myfs.Close()

	if err = run(myfs, flag.Arg(1), flag.Args()[2:]); err != nil {
		log.Fatal(err)
	}
}

func run(myfs *fs.FileSystem, command string, args []string) error {
	switch command {
	case "ls":
		p := "/"
		if len(args) > 0 {
			p = args[0]
		}
		return ls(myfs, p)
	case "stat":
		if len(args) != 1 {
			return fmt.Errorf("stat: need PATH")
		}
		return stat(myfs, args[0])
	case "cat":
		if len(args) != 1 {
			return fmt.Errorf("cat: need PATH")
		}
		return cat(myfs, args[0])
	case "put":
		if len(args) != 2 {
			return fmt.Errorf("put: need LOCAL PATH")
		}
		return put(myfs, args[0], args[1])
	case "mkdir":
		if len(args) != 1 {
			return fmt.Errorf("mkdir: need PATH")
		}
		_, err := createAt(myfs, args[0], fs.ModeDir|0755)
		return err
	case "rm":
		if len(args) != 1 {
			return fmt.Errorf("rm: need PATH")
		}
		return rm(myfs, args[0])
	case "df":
		return df(myfs)
	}
	return fmt.Errorf("unknown command %q", command)
}

func ls(myfs *fs.FileSystem, p string) error {
	n, err := myfs.NodeAtPath(p)
	if err != nil {
		return err
	}
	children, err := myfs.ListDir(n)
	if err != nil {
		return err
	}
	for _, c := range children {
		if c.IsDir() {
			dirColor.Printf("%s/\n", c.Name())
		} else {
			fmt.Printf("%s\n", c.Name())
		}
	}
	return nil
}

func stat(myfs *fs.FileSystem, p string) error {
	n, err := myfs.NodeAtPath(p)
	if err != nil {
		return err
	}
	kind := "file"
	if n.IsDir() {
		kind = "directory"
	}
	fmt.Printf("%s: %s, mode %04o, %d bytes, block %d\n",
		p, kind, n.Mode&fs.ModePerm, n.Size, n.Block)
	fmt.Printf("  uid %d gid %d\n", n.Uid, n.Gid)
	fmt.Printf("  ctime %s\n", time.Unix(int64(n.Ctime), int64(n.CtimeNsec)).Format(time.RFC3339))
	fmt.Printf("  mtime %s\n", time.Unix(int64(n.Mtime), int64(n.MtimeNsec)).Format(time.RFC3339))
	return nil
}

func cat(myfs *fs.FileSystem, p string) error {
	n, err := myfs.NodeAtPath(p)
	if err != nil {
		return err
	}
	buf := make([]byte, 64*disk.BlockSize)
	offset := uint64(0)
	for {
		read, err := myfs.Read(n, offset, buf)
		if err != nil {
			return err
		}
		if read == 0 {
			return nil
		}
		if _, err = os.Stdout.Write(buf[:read]); err != nil {
			return err
		}
		offset += uint64(read)
	}
}

// createAt makes a node at the path, resolving everything but the
// last component.
func createAt(myfs *fs.FileSystem, p string, mode uint16) (*fs.Node, error) {
	parent, base := path.Split(path.Clean(p))
	if base == "" || base == "/" || base == "." {
		return nil, fmt.Errorf("cannot create %q", p)
	}
	dir, err := myfs.NodeAtPath(parent)
	if err != nil {
		return nil, err
	}
	return myfs.CreateNode(dir, base, mode, time.Now())
}

func put(myfs *fs.FileSystem, local, p string) error {
	data, err := ioutil.ReadFile(local)
	if err != nil {
		return err
	}
	n, err := createAt(myfs, p, fs.ModeFile|0644)
	if err != nil {
		return err
	}
	_, err = myfs.Write(n, 0, data, time.Now())
	return err
}

func rm(myfs *fs.FileSystem, p string) error {
	parent, base := path.Split(path.Clean(p))
	if base == "" || base == "/" || base == "." {
		return fmt.Errorf("cannot remove %q", p)
	}
	dir, err := myfs.NodeAtPath(parent)
	if err != nil {
		return err
	}
	return myfs.RemoveNode(dir, base, time.Now())
}

func df(myfs *fs.FileSystem) error {
	free, err := myfs.FreeBlocks()
	if err != nil {
		return err
	}
	total := myfs.TotalBlocks()
	used := total - free
	fmt.Printf("%10s %10s %10s\n", "blocks", "used", "free")
	color.New(color.FgGreen).Printf("%10d %10d %10d\n", total, used, free)
	return nil
}
