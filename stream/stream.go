// Package stream implements the Stream value: a byte payload bound to
// an object's dictionary through /Length (this package does not write a
// /Filter entry), with an append-session state machine (Idle ->
// Appending -> Idle) in which Append accumulates decoded bytes and
// EndAppend commits them as the new content. Encoding through the filter
// chain happens on the whole payload when the filtered form is next
// requested, not once per Append call.
package stream

import (
	"bytes"
	"io"

	"github.com/inkfathom/pdfcore/container"
	"github.com/inkfathom/pdfcore/filter"
	"github.com/inkfathom/pdfcore/pdferr"
	"github.com/inkfathom/pdfcore/pdfval"
)

// Owner is an alias for container.Owner so a Stream can report
// dirtiness back through the same interface an Array/Dictionary uses;
// object.Object satisfies both with a single MarkDirty method.
type Owner = container.Owner

// Device is a random-access byte store, the destination Stream.Write
// emits a serialized stream to. Declared locally (rather than
// importing refimpl.Device) so this package's dependency graph never
// reaches into the test-only reference implementations; refimpl's
// MemoryDevice and FileDevice satisfy this shape without either package
// knowing about the other.
type Device interface {
	io.WriterAt
	Truncate(size int64) error
}

// Encryptor transforms a stream's filtered bytes before they reach a
// Device, e.g. the standard security handler's RC4/AES encryption. A
// nil Encryptor means Write emits the filtered bytes unchanged.
type Encryptor interface {
	Encrypt(plaintext []byte) ([]byte, error)
}

// state names the append-session state machine's two states; Idle
// covers both "never appended to" and "append session closed".
type state int

const (
	stateIdle state = iota
	stateAppending
)

// Stream holds a filtered byte payload plus the chain of filter names
// that produced it, matching pdfcpu's StreamDict{Raw, Content,
// FilterPipeline} split between on-disk and decoded bytes.
type Stream struct {
	owner Owner
	dict  *container.Dictionary // bound via BindDictionary, for /Length sync

	raw     []byte // filtered (on-disk) bytes
	decoded []byte // unfiltered bytes, valid once decodedValid is true

	decodedValid bool
	rawValid     bool

	filterNames []string
	parms       []filter.Params

	appendState  state
	appendFilter filter.Filter
	appendBuf    bytes.Buffer
}

// New builds an empty Stream with no filters.
func New() *Stream {
	return &Stream{rawValid: true, decodedValid: true}
}

// SetOwner attaches (or, with nil, detaches) the dirty-propagation
// target. object.Object calls this via the StreamAttachment interface
// when AttachStream adopts a Stream.
func (s *Stream) SetOwner(o Owner) { s.owner = o }

// BindDictionary records the dictionary whose /Length entry this
// stream's on-disk length keeps in sync, called by object.Object
// whenever a Stream is attached alongside a Dictionary value.
func (s *Stream) BindDictionary(d *container.Dictionary) { s.dict = d }

func (s *Stream) markDirty() {
	if s.owner != nil {
		s.owner.MarkDirty()
	}
}

func (s *Stream) syncLength() {
	if s.dict != nil {
		s.dict.Insert("Length", pdfval.Integer(len(s.raw)))
	}
}

// Filters reports the filter chain currently bound to this stream, in
// application order (first entry applied first on encode).
func (s *Stream) Filters() []string {
	out := make([]string, len(s.filterNames))
	copy(out, s.filterNames)
	return out
}

// SetFilters replaces the filter chain. Zero filters is valid (raw
// passthrough), one filter is the common case, and two or more chain
// left-to-right on encode and right-to-left on decode.
func (s *Stream) SetFilters(names []string, parms []filter.Params) error {
	if parms != nil && len(parms) != len(names) {
		return pdferr.New(pdferr.InternalLogic, "filter params length must match filter name count")
	}
	s.filterNames = append([]string(nil), names...)
	if parms == nil {
		parms = make([]filter.Params, len(names))
	}
	s.parms = append([]filter.Params(nil), parms...)
	s.rawValid = false
	s.markDirty()
	return nil
}

// Set replaces the stream's content with decoded bytes; raw bytes are
// recomputed lazily from the current filter chain on next request. A
// nil filters leaves the current chain untouched; when the stream has
// no filter chain yet (a freshly built Stream, or one whose chain was
// cleared), filters defaults to a single FlateDecode stage, matching
// the common case of a newly authored stream rather than leaving it
// unfiltered.
func (s *Stream) Set(decoded []byte, filters []string) error {
	if filters == nil && len(s.filterNames) == 0 {
		filters = []string{filter.Flate}
	}
	if filters != nil {
		if err := s.SetFilters(filters, nil); err != nil {
			return err
		}
	}
	s.setDecoded(decoded)
	return nil
}

// setDecoded stores decoded as the stream's content without touching
// the filter chain, used by EndAppend so committing an append session
// doesn't reset whatever filters BeginAppend established.
func (s *Stream) setDecoded(decoded []byte) {
	s.decoded = append([]byte(nil), decoded...)
	s.decodedValid = true
	s.rawValid = false
	s.markDirty()
}

// SetRaw replaces the stream's content with already-filtered bytes, as
// read verbatim off disk; decoded bytes are recomputed lazily.
func (s *Stream) SetRaw(raw []byte) {
	s.raw = append([]byte(nil), raw...)
	s.rawValid = true
	s.decodedValid = false
	s.syncLength()
	s.markDirty()
}

func (s *Stream) buildChain() ([]filter.Filter, error) {
	chain := make([]filter.Filter, len(s.filterNames))
	for i, name := range s.filterNames {
		f, err := filter.NewFilter(name, s.parms[i])
		if err != nil {
			return nil, err
		}
		chain[i] = f
	}
	return chain, nil
}

// GetFilteredCopy returns the on-disk (filtered) bytes, encoding the
// decoded payload through the filter chain if the raw form isn't
// cached, and syncing a bound dictionary's /Length to match.
func (s *Stream) GetFilteredCopy() ([]byte, error) {
	if s.rawValid {
		return append([]byte(nil), s.raw...), nil
	}
	chain, err := s.buildChain()
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(s.decoded)
	var buf *bytes.Buffer
	var cur interface{ Read([]byte) (int, error) } = r
	for _, f := range chain {
		buf, err = f.Encode(cur)
		if err != nil {
			return nil, err
		}
		cur = buf
	}
	if buf == nil {
		s.raw = append([]byte(nil), s.decoded...)
	} else {
		s.raw = buf.Bytes()
	}
	s.rawValid = true
	s.syncLength()
	return append([]byte(nil), s.raw...), nil
}

// GetDecodedCopy returns the decoded bytes, running the raw payload
// backwards through the filter chain if the decoded form isn't cached.
func (s *Stream) GetDecodedCopy() ([]byte, error) {
	if s.decodedValid {
		return append([]byte(nil), s.decoded...), nil
	}
	chain, err := s.buildChain()
	if err != nil {
		return nil, err
	}
	var cur interface{ Read([]byte) (int, error) } = bytes.NewReader(s.raw)
	var buf *bytes.Buffer
	for i := len(chain) - 1; i >= 0; i-- {
		buf, err = chain[i].Decode(cur)
		if err != nil {
			return nil, err
		}
		cur = buf
	}
	if buf == nil {
		s.decoded = append([]byte(nil), s.raw...)
	} else {
		s.decoded = buf.Bytes()
	}
	s.decodedValid = true
	return append([]byte(nil), s.decoded...), nil
}

// GetLength reports the current on-disk length, matching whatever
// /Length should read once this stream is serialized.
func (s *Stream) GetLength() (int, error) {
	raw, err := s.GetFilteredCopy()
	if err != nil {
		return 0, err
	}
	return len(raw), nil
}

// Write renders "stream\n<filtered bytes>\nendstream" to device at
// offset, applying encrypt to the filtered bytes first if non-nil, and
// returns the number of payload bytes written (excluding the
// delimiters).
func (s *Stream) Write(device Device, offset int64, encrypt Encryptor) (int64, error) {
	raw, err := s.GetFilteredCopy()
	if err != nil {
		return 0, err
	}
	if encrypt != nil {
		raw, err = encrypt.Encrypt(raw)
		if err != nil {
			return 0, err
		}
	}
	buf := bytes.NewBuffer(nil)
	buf.WriteString("stream\n")
	buf.Write(raw)
	buf.WriteString("\nendstream")
	if _, err := device.WriteAt(buf.Bytes(), offset); err != nil {
		return 0, pdferr.Wrap(pdferr.InternalLogic, err, "writing stream body")
	}
	return int64(len(raw)), nil
}

// BeginAppend opens an append session: subsequent Append calls push
// decoded bytes into an accumulation buffer that EndAppend later
// commits. filters, when non-nil and deleteFilters is false, replaces
// the filter chain new content will be encoded under; deleteFilters
// clears the chain entirely (the appended content becomes an
// unfiltered passthrough) and filters is ignored. clearExisting
// chooses whether the session starts from the stream's current decoded
// content (false, the extend-in-place case) or from empty (true, the
// replace case). Only one append session may be open on a stream at a
// time (the Idle -> Appending -> Idle state machine).
func (s *Stream) BeginAppend(filters []string, clearExisting, deleteFilters bool) error {
	if s.appendState != stateIdle {
		return pdferr.New(pdferr.InternalLogic, "append session already open")
	}
	if deleteFilters {
		if err := s.SetFilters(nil, nil); err != nil {
			return err
		}
	} else if filters != nil {
		if err := s.SetFilters(filters, nil); err != nil {
			return err
		}
	}
	s.appendBuf.Reset()
	if !clearExisting {
		existing, err := s.GetDecodedCopy()
		if err != nil {
			return err
		}
		s.appendBuf.Write(existing)
	}
	s.appendState = stateAppending
	return nil
}

// Append feeds more decoded bytes into an open append session.
func (s *Stream) Append(p []byte) error {
	if s.appendState != stateAppending {
		return pdferr.New(pdferr.InternalLogic, "append called outside an append session")
	}
	s.appendBuf.Write(p)
	return nil
}

// EndAppend closes the session, committing the accumulated bytes as the
// stream's new decoded content and returning to Idle. It uses
// setDecoded rather than Set so it never overrides the filter chain
// BeginAppend established with the default-to-Flate behavior Set
// applies to a chainless stream.
func (s *Stream) EndAppend() error {
	if s.appendState != stateAppending {
		return pdferr.New(pdferr.InternalLogic, "EndAppend called outside an append session")
	}
	s.setDecoded(append([]byte(nil), s.appendBuf.Bytes()...))
	s.appendBuf.Reset()
	s.appendState = stateIdle
	return nil
}

// IsAppending reports whether an append session is currently open.
func (s *Stream) IsAppending() bool {
	return s.appendState == stateAppending
}
