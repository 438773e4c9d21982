package server

import (
	"net/http"
	"os"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryFS serves short-lived generated assets, e.g. the map scripts produced
// by the geomap codec. Entries expire on their own deadline.
type MemoryFS struct {
	Prefix string
	cache  *ttlcache.Cache[string, *MemoryFile]
}

func NewMemoryFS(prefix string) *MemoryFS {
	return &MemoryFS{
		Prefix: prefix,
		cache: ttlcache.New(
			ttlcache.WithCapacity[string, *MemoryFile](500),
			ttlcache.WithDisableTouchOnHit[string, *MemoryFile](),
		),
	}
}

// Start runs the expiration loop, blocking until Stop is called.
func (mfs *MemoryFS) Start() {
	mfs.cache.Start()
}

func (mfs *MemoryFS) Stop() {
	mfs.cache.Stop()
	mfs.cache.DeleteAll()
}

func (mfs *MemoryFS) Open(name string) (http.File, error) {
	if item := mfs.cache.Get(name); item != nil {
		return item.Value().Clone(), nil
	}
	return nil, os.ErrNotExist
}

func (mfs *MemoryFS) VolatileFilePrefix() string {
	return mfs.Prefix
}

func (mfs *MemoryFS) VolatileFileWrite(name string, val []byte, deadline time.Time) {
	mfs.cache.Set(name, &MemoryFile{Name: name, data: val}, time.Until(deadline))
}

func (mfs *MemoryFS) Statz() map[string]any {
	total := int64(0)
	for _, item := range mfs.cache.Items() {
		total += int64(len(item.Value().data))
	}
	return map[string]any{
		"count":      mfs.cache.Len(),
		"total_size": total,
	}
}

type MemoryFile struct {
	Name string
	at   int64
	data []byte
}

func (f *MemoryFile) Clone() *MemoryFile {
	return &MemoryFile{Name: f.Name, at: 0, data: f.data}
}

func (f *MemoryFile) Close() error {
	return nil
}

func (f *MemoryFile) Stat() (os.FileInfo, error) {
	return &memoryFileInfo{f}, nil
}

func (f *MemoryFile) Readdir(count int) ([]os.FileInfo, error) {
	return nil, nil
}

func (f *MemoryFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case 0:
		f.at = offset
	case 1:
		f.at += offset
	case 2:
		f.at = int64(len(f.data)) + offset
	}
	return f.at, nil
}

func (f *MemoryFile) Read(b []byte) (int, error) {
	i := 0
	for f.at < int64(len(f.data)) && i < len(b) {
		b[i] = f.data[f.at]
		i++
		f.at++
	}
	return i, nil
}

type memoryFileInfo struct {
	file *MemoryFile
}

func (fi *memoryFileInfo) Name() string       { return fi.file.Name }
func (fi *memoryFileInfo) Size() int64        { return int64(len(fi.file.data)) }
func (fi *memoryFileInfo) Mode() os.FileMode  { return os.ModeTemporary }
func (fi *memoryFileInfo) ModTime() time.Time { return time.Now() }
func (fi *memoryFileInfo) IsDir() bool        { return false }
func (fi *memoryFileInfo) Sys() any           { return nil }
