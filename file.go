package fatvol

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/aligator/fatvol/checkpoint"
	"github.com/spf13/afero"
)

// These errors may occur while processing a file.
var (
	ErrReadFile  = errors.New("could not read file completely")
	ErrSeekFile  = errors.New("could not seek inside of the file")
	ErrWriteFile = errors.New("the volume is read-only")
)

// volumeReader provides all methods needed from the volume for File.
// It mainly exists to be able to mock the Volume in tests.
// Generated mock using mockgen:
//  mockgen -source=file.go -destination=file_mock.go -package fatvol
type volumeReader interface {
	readFileAt(cluster fatEntry, fileSize int64, offset int64, readSize int64) ([]byte, error)
	readRoot() ([]ExtendedEntryHeader, error)
	readDir(cluster fatEntry) ([]ExtendedEntryHeader, error)
}

// File is a read-only handle to one file or directory of the volume.
type File struct {
	fs   volumeReader
	path string

	isDirectory bool
	isReadOnly  bool
	isHidden    bool
	isSystem    bool

	firstCluster fatEntry
	stat         os.FileInfo
	offset       int64
}

var _ afero.File = (*File)(nil)

// Open returns a read-only File for the given slash separated short name
// path. The empty path (or "/") opens the root directory.
func (v *Volume) Open(name string) (*File, error) {
	trimmed := strings.Trim(name, "/")
	if trimmed == "" {
		root := ExtendedEntryHeader{EntryHeader: EntryHeader{Attribute: attrDirectory}}
		return &File{
			fs:           v,
			isDirectory:  true,
			firstCluster: v.info.RootCluster,
			stat:         root.FileInfo(),
		}, nil
	}

	entry, err := v.Resolve(trimmed)
	if err != nil {
		return nil, err
	}

	return &File{
		fs:           v,
		path:         trimmed,
		isDirectory:  entry.IsDir(),
		isReadOnly:   entry.Attribute&attrReadOnly != 0,
		isHidden:     entry.Attribute&attrHidden != 0,
		isSystem:     entry.Attribute&attrSystem != 0,
		firstCluster: entry.FirstCluster(),
		stat:         entry.FileInfo(),
	}, nil
}

func (f *File) Close() error {
	f.fs = nil
	f.path = ""
	f.isDirectory = false
	f.isReadOnly = false
	f.isHidden = false
	f.isSystem = false
	f.firstCluster = 0
	f.stat = nil
	f.offset = 0

	return nil
}

func (f *File) Read(p []byte) (n int, err error) {
	if p == nil {
		return 0, nil
	}

	// Reading a file if the size has been already reached makes no sense.
	if f.stat.Size() <= f.offset {
		return 0, io.EOF
	}

	data, err := f.fs.readFileAt(f.firstCluster, f.stat.Size(), f.offset, int64(len(p)))

	if data != nil {
		copy(p, data)
	}

	// Seek even if an error occurred, errors from reading win over seek errors.
	_, seekErr := f.Seek(int64(len(data)), io.SeekCurrent)

	if err != nil {
		return len(data), checkpoint.Wrap(err, ErrReadFile)
	}

	if seekErr != nil {
		return len(data), checkpoint.Wrap(seekErr, ErrReadFile)
	}

	return len(data), nil
}

func (f *File) ReadAt(p []byte, off int64) (n int, err error) {
	if p == nil {
		return 0, nil
	}

	// Reading over the end makes no sense.
	if f.stat.Size() <= off {
		return 0, io.EOF
	}

	size := len(p)
	data, err := f.fs.readFileAt(f.firstCluster, f.stat.Size(), off, int64(size))

	if data != nil {
		copy(p, data)
	}

	if err != nil {
		return len(data), checkpoint.Wrap(err, ErrReadFile)
	}

	if len(data) < size {
		return len(data), checkpoint.Wrap(err, ErrReadFile)
	}
	return len(data), nil
}

// Seek jumps to a specific offset in the file. This affects all Read
// operations except ReadAt.
// May return a syscall.EINVAL error if the whence value is invalid.
// May return an afero.ErrOutOfRange error if the offset is out of range.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset = f.offset + offset
	case io.SeekEnd:
		offset = f.stat.Size() + offset
	default:
		return 0, checkpoint.Wrap(ErrSeekFile, fmt.Errorf("%w, offset: %v, whence: %v", syscall.EINVAL, offset, whence))
	}

	if offset < 0 || offset > f.stat.Size() {
		return 0, checkpoint.Wrap(afero.ErrOutOfRange, fmt.Errorf("%w, offset: %v, whence: %v", ErrSeekFile, offset, whence))
	}

	f.offset = offset
	return offset, nil
}

// Readdir reads the contents of a directory.
// May return syscall.ENOTDIR if the current File is no directory.
func (f *File) Readdir(count int) ([]os.FileInfo, error) {
	if !f.isDirectory {
		return nil, checkpoint.Wrap(syscall.ENOTDIR, ErrReadDir)
	}

	var content []ExtendedEntryHeader
	var err error
	if f.path == "" {
		content, err = f.fs.readRoot()
	} else {
		content, err = f.fs.readDir(f.firstCluster)
	}

	if err != nil {
		return nil, checkpoint.Wrap(err, ErrReadDir)
	}

	end := len(content)

	if int64(len(content)) < f.offset+int64(count) {
		count = len(content) - int(f.offset)
		err = io.EOF
	}

	if count >= 0 {
		end = int(f.offset) + count
	}

	content = content[f.offset:end]

	if count > 0 {
		f.offset += int64(count)
	} else if count < 0 {
		f.offset = int64(end)
	}

	result := make([]os.FileInfo, len(content))
	for i := range content {
		result[i] = content[i].FileInfo()
	}

	return result, err
}

func (f *File) Readdirnames(count int) ([]string, error) {
	content, err := f.Readdir(count)
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrReadDir)
	}

	names := make([]string, len(content))
	for i, entry := range content {
		names[i] = entry.Name()
	}

	return names, nil
}

func (f *File) Stat() (os.FileInfo, error) {
	return f.stat, nil
}

func (f *File) Name() string {
	return f.stat.Name()
}

func (f *File) Write(p []byte) (n int, err error) {
	return 0, checkpoint.Wrap(syscall.EPERM, ErrWriteFile)
}

func (f *File) WriteAt(p []byte, off int64) (n int, err error) {
	return 0, checkpoint.Wrap(syscall.EPERM, ErrWriteFile)
}

func (f *File) WriteString(s string) (ret int, err error) {
	return 0, checkpoint.Wrap(syscall.EPERM, ErrWriteFile)
}

func (f *File) Sync() error {
	return checkpoint.Wrap(syscall.EPERM, ErrWriteFile)
}

func (f *File) Truncate(size int64) error {
	return checkpoint.Wrap(syscall.EPERM, ErrWriteFile)
}

// readFileAt reads up to readSize bytes of a file starting at the given
// byte offset by walking its cluster chain. The read is clipped at the
// file size, in that case the data is returned together with io.EOF.
func (v *Volume) readFileAt(cluster fatEntry, fileSize int64, offset int64, readSize int64) ([]byte, error) {
	if offset >= fileSize {
		return nil, io.EOF
	}

	clipped := false
	if readSize > fileSize-offset {
		readSize = fileSize - offset
		clipped = true
	}

	follower := newChainFollower(v, cluster)
	current := cluster.maskedValue()

	// Whole clusters before the offset are skipped without reading them.
	for skip := offset / v.info.bytesPerCluster; skip > 0; skip-- {
		next, ok, err := follower.next(current)
		if err != nil {
			return nil, checkpoint.Wrap(err, ErrReadFile)
		}
		if !ok {
			return nil, checkpoint.Wrap(io.ErrUnexpectedEOF, ErrReadFile)
		}
		current = next
	}

	data := make([]byte, 0, readSize)
	buffer := make([]byte, v.info.bytesPerCluster)
	position := offset % v.info.bytesPerCluster

	for {
		if current.Value() == 0 || current.ReadAsEOF() {
			// The chain ended before the file size was reached.
			return data, checkpoint.Wrap(io.ErrUnexpectedEOF, ErrReadFile)
		}

		if err := v.readAt(v.clusterOffset(current), buffer); err != nil {
			return data, checkpoint.Wrap(err, ErrReadFile)
		}

		chunk := readSize - int64(len(data))
		if chunk > v.info.bytesPerCluster-position {
			chunk = v.info.bytesPerCluster - position
		}
		data = append(data, buffer[position:position+chunk]...)
		position = 0

		if int64(len(data)) == readSize {
			break
		}

		next, ok, err := follower.next(current)
		if err != nil {
			return data, checkpoint.Wrap(err, ErrReadFile)
		}
		if !ok {
			return data, checkpoint.Wrap(io.ErrUnexpectedEOF, ErrReadFile)
		}
		current = next
	}

	if clipped {
		return data, io.EOF
	}

	return data, nil
}
