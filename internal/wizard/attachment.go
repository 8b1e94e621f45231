package wizard

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
)

var ErrFileReleased = errors.New("attached file has been released")

// AttachedFile is a file picked for a slot in this session and not yet
// uploaded. The content lives wherever the opener reads it from; release
// frees that storage.
type AttachedFile struct {
	Name        string
	ContentType string
	Size        int64

	mu       sync.Mutex
	open     func() (io.ReadCloser, error)
	release  func() error
	released bool
}

// NewAttachedFile wraps an arbitrary content source. release may be nil.
func NewAttachedFile(name, contentType string, size int64, open func() (io.ReadCloser, error), release func() error) *AttachedFile {
	return &AttachedFile{
		Name:        name,
		ContentType: contentType,
		Size:        size,
		open:        open,
		release:     release,
	}
}

// MemoryFile keeps the content in memory.
func MemoryFile(name, contentType string, data []byte) *AttachedFile {
	return NewAttachedFile(name, contentType, int64(len(data)), func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}, nil)
}

// Open returns a fresh reader over the content.
func (f *AttachedFile) Open() (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.released {
		return nil, ErrFileReleased
	}
	return f.open()
}

// Release frees the backing storage. Safe to call more than once.
func (f *AttachedFile) Release() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.released {
		return nil
	}
	f.released = true
	if f.release != nil {
		return f.release()
	}
	return nil
}

// Attachments holds the files picked in this session, one per slot.
type Attachments map[Slot]*AttachedFile

func (a Attachments) Has(slot Slot) bool {
	return a[slot] != nil
}

// Slots returns the attached slots in table order.
func (a Attachments) Slots() []Slot {
	var out []Slot
	for _, spec := range SlotTable {
		if a.Has(spec.Slot) {
			out = append(out, spec.Slot)
		}
	}
	return out
}

func (a Attachments) releaseAll() {
	for slot, f := range a {
		if f != nil {
			_ = f.Release()
		}
		delete(a, slot)
	}
}

// Preview is a scoped read handle over a document. Close is idempotent and
// must be called on every exit path.
type Preview struct {
	Name        string
	ContentType string

	rc   io.ReadCloser
	once sync.Once
	err  error
}

func newPreview(name, contentType string, rc io.ReadCloser) *Preview {
	return &Preview{Name: name, ContentType: contentType, rc: rc}
}

func (p *Preview) Read(b []byte) (int, error) {
	return p.rc.Read(b)
}

func (p *Preview) Close() error {
	p.once.Do(func() {
		p.err = p.rc.Close()
	})
	return p.err
}

// DocumentOpener fetches a stored document by id.
type DocumentOpener interface {
	OpenDocument(ctx context.Context, documentID int) (io.ReadCloser, string, error)
}

// OpenExisting opens a preview of a document already stored by the backend.
func OpenExisting(ctx context.Context, opener DocumentOpener, documentID int, name string) (*Preview, error) {
	rc, contentType, err := opener.OpenDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = "Document"
	}
	return newPreview(name, contentType, rc), nil
}
