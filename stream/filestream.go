package stream

import (
	"sync"

	"github.com/inkfathom/pdfcore/container"
	"github.com/inkfathom/pdfcore/pdferr"
)

// FileDevice is the random-access store a FileStream reads and appends
// to directly, without ever materializing its full payload in memory.
// Declared locally rather than importing refimpl.Device, for the same
// reason Device is: refimpl.MemoryDevice and refimpl.FileDevice satisfy
// this shape structurally, with neither package importing the other.
type FileDevice interface {
	ReadAt(p []byte, off int64) (int, error)
	WriterAt
	Truncate(size int64) error
	Close() error
}

// WriterAt mirrors io.WriterAt, spelled out locally so this file has no
// unexported dependency on the io package's doc comments leaking in.
type WriterAt interface {
	WriteAt(p []byte, off int64) (int, error)
}

// fileStreamLock and fileStreamOwner enforce that at most one
// FileStream may have an append session open against its backing
// device at a time, process-wide: two append sessions writing through
// the same device at overlapping offsets would corrupt each other's
// bytes, and a per-Stream lock alone can't catch two different
// FileStream values sharing one device.
var (
	fileStreamLock  sync.Mutex
	fileStreamOwner *FileStream
)

// FileStream is the file-backed Stream variant: its payload lives on a
// Device at a fixed offset/length rather than in an in-memory slice, so
// reading or writing it never requires holding the whole stream body in
// memory at once.
type FileStream struct {
	owner  Owner
	device FileDevice
	offset int64
	length int64

	appending bool
}

// NewFileStream wraps an existing payload already present on device at
// [offset, offset+length).
func NewFileStream(device FileDevice, offset, length int64) *FileStream {
	return &FileStream{device: device, offset: offset, length: length}
}

// SetOwner attaches (or, with nil, detaches) the dirty-propagation
// target.
func (fs *FileStream) SetOwner(o Owner) { fs.owner = o }

func (fs *FileStream) markDirty() {
	if fs.owner != nil {
		fs.owner.MarkDirty()
	}
}

// BindDictionary is a no-op for FileStream: its /Length is the
// device-resident byte range's own length, which a caller reads via
// Length rather than through dictionary synchronization. Present so
// FileStream satisfies the same StreamAttachment shape as Stream.
func (fs *FileStream) BindDictionary(_ *container.Dictionary) {}

// Length reports the current payload length in bytes.
func (fs *FileStream) Length() int64 { return fs.length }

// Read returns a copy of the payload bytes read directly from the
// backing device.
func (fs *FileStream) Read() ([]byte, error) {
	buf := make([]byte, fs.length)
	if fs.length == 0 {
		return buf, nil
	}
	n, err := fs.device.ReadAt(buf, fs.offset)
	if err != nil && int64(n) < fs.length {
		return nil, pdferr.Wrap(pdferr.InternalLogic, err, "reading file-backed stream payload")
	}
	return buf, nil
}

// Write copies the payload directly from this stream's backing device
// to dest at destOffset, without ever holding the full payload in a
// single buffer, the defining advantage of a file-backed stream over
// Stream's in-memory form for large payloads.
func (fs *FileStream) Write(dest FileDevice, destOffset int64) (int64, error) {
	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	var written int64
	for written < fs.length {
		n := chunkSize
		if remaining := fs.length - written; remaining < int64(n) {
			n = int(remaining)
		}
		if _, err := fs.device.ReadAt(buf[:n], fs.offset+written); err != nil {
			return written, pdferr.Wrap(pdferr.InternalLogic, err, "reading file-backed stream chunk")
		}
		if _, err := dest.WriteAt(buf[:n], destOffset+written); err != nil {
			return written, pdferr.Wrap(pdferr.InternalLogic, err, "writing file-backed stream chunk")
		}
		written += int64(n)
	}
	return written, nil
}

// BeginAppendStream opens an append session against this stream's
// device, refusing if any FileStream anywhere in the process already
// has one open.
func (fs *FileStream) BeginAppendStream() error {
	fileStreamLock.Lock()
	defer fileStreamLock.Unlock()
	if fileStreamOwner != nil {
		return pdferr.New(pdferr.InternalLogic, "another file-backed stream append session is already open")
	}
	fileStreamOwner = fs
	fs.appending = true
	return nil
}

// AppendStream writes p directly to the device immediately after the
// current payload, extending length, and returns the number of bytes
// written.
func (fs *FileStream) AppendStream(p []byte) (int, error) {
	if !fs.appending {
		return 0, pdferr.New(pdferr.InternalLogic, "AppendStream called outside an append session")
	}
	n, err := fs.device.WriteAt(p, fs.offset+fs.length)
	if err != nil {
		return n, pdferr.Wrap(pdferr.InternalLogic, err, "appending to file-backed stream")
	}
	fs.length += int64(n)
	fs.markDirty()
	return n, nil
}

// EndAppendStream closes the session and releases the process-wide
// exclusivity lock.
func (fs *FileStream) EndAppendStream() error {
	fileStreamLock.Lock()
	defer fileStreamLock.Unlock()
	if !fs.appending || fileStreamOwner != fs {
		return pdferr.New(pdferr.InternalLogic, "EndAppendStream called outside an append session")
	}
	fs.appending = false
	fileStreamOwner = nil
	return nil
}

// IsAppending reports whether an append session is currently open.
func (fs *FileStream) IsAppending() bool { return fs.appending }
