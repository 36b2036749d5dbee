// main generates testdata/sample.img, a small FAT32 image with a few files,
// to play with the fatvol CLI. Can be executed using 'go generate' from the
// project root.
package main

import (
	"fmt"
	"os"
	"strings"

	diskfs "github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/disk"
	"github.com/diskfs/go-diskfs/filesystem"
)

const (
	target = "testdata/sample.img"

	// 64 MB keeps the cluster count above the FAT32 minimum.
	size = 64 * 1024 * 1024
)

func main() {
	if err := os.MkdirAll("testdata", 0o755); err != nil {
		fail(err)
	}
	// diskfs refuses to create over an existing image.
	if err := os.RemoveAll(target); err != nil {
		fail(err)
	}

	image, err := diskfs.Create(target, size, diskfs.Raw, diskfs.SectorSizeDefault)
	if err != nil {
		fail(err)
	}

	fs, err := image.CreateFilesystem(disk.FilesystemSpec{
		Partition:   0,
		FSType:      filesystem.TypeFat32,
		VolumeLabel: "FATVOL",
	})
	if err != nil {
		fail(err)
	}

	if err := fs.Mkdir("/DOCS"); err != nil {
		fail(err)
	}

	files := map[string]string{
		"/README.TXT":               "A sample FAT32 volume for fatvol.\n",
		"/DOCS/HELLO.TXT":           "Hello from inside the image!\n",
		"/DOCS/My Long Document.md": strings.Repeat("some longer content\n", 512),
	}

	for name, content := range files {
		f, err := fs.OpenFile(name, os.O_CREATE|os.O_RDWR)
		if err != nil {
			fail(err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			fail(err)
		}
	}

	fmt.Println("wrote", target)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
