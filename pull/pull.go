// Package pull implements a low-level, streaming pull-parser over FBX
// binary data (versions 7400-7599): a flat sequence of StartFbx/StartNode/
// EndNode/EndFbx events driven one call at a time by NextEvent.
package pull

import (
	"io"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/lo48576/fbxcel-legacy/attr"
	"github.com/lo48576/fbxcel-legacy/source"
)

// Sentinel errors. Compare with errors.Is.
var (
	// ErrFinished is returned once a Parser or Subtree has no more events
	// left to emit.
	ErrFinished = errors.New("pull: finished")
	// ErrMagicMismatch means the 21-byte magic string at the start of the
	// stream didn't match "Kaydara FBX Binary  \x00".
	ErrMagicMismatch = errors.New("pull: magic string mismatch")
	// ErrWrongNodeEndOffset means a node's closing null header was read at
	// a position other than the end_offset recorded in its own header.
	ErrWrongNodeEndOffset = errors.New("pull: node closed at wrong offset")
	// ErrBrokenFooter means that, scanning the footer window backward from
	// its end, more than 16 non-zero bytes were found before a zero byte,
	// so the start of the trailing 16-byte block could not be located.
	ErrBrokenFooter = errors.New("pull: broken FBX footer")
	// ErrHeaderFooterVersionMismatch means the version baked into the
	// footer didn't match the version read from the header.
	ErrHeaderFooterVersionMismatch = errors.New("pull: header/footer FBX version mismatch")
	// ErrNodeNameInvalidUTF8 means a node name's bytes were not valid UTF-8.
	ErrNodeNameInvalidUTF8 = errors.New("pull: node name is not valid UTF-8")
)

const (
	magicLen  = 21
	magicText = "Kaydara FBX Binary  \x00"
)

// EventKind identifies which variant of Event is populated.
type EventKind int

const (
	StartFbx EventKind = iota
	StartNode
	EndNode
	EndFbx
)

// Event is the single flat event type NextEvent produces.
type Event struct {
	Kind EventKind

	// Valid when Kind == StartFbx.
	Version uint32

	// Valid when Kind == StartNode.
	NodeName   string
	Attributes *attr.Decoder

	// Valid when Kind == EndFbx.
	Footer *Footer
}

// Footer holds the non-zero fields of the trailing block at the end of an
// FBX binary stream: 16 unknown bytes, the version, and 16 more unknown
// bytes. The padding and zero runs between them are checked, not kept.
type Footer struct {
	Unknown1 [16]byte
	Version  uint32
	Unknown2 [16]byte
}

type state int

const (
	stateHeader state = iota
	stateNodeStarted
	stateNodeEnded
)

type openNode struct {
	begin         uint64
	end           uint64
	attributesEnd uint64
}

// Parser is the root pull parser. Use New or NewSeekable to create one.
type Parser struct {
	src        source.Source
	st         state
	err        error
	warnings   []string
	fbxVersion uint32
	haveVer    bool
	openNodes  []openNode
	recentName string
	busy       *attr.Decoder
}

// New creates a Parser reading from an arbitrary io.Reader.
func New(r io.Reader) *Parser {
	return &Parser{src: source.NewBasic(r), st: stateHeader}
}

// NewSeekable creates a Parser reading from an io.ReadSeeker, letting
// SkipCurrentNode seek directly instead of discarding bytes.
func NewSeekable(rs io.ReadSeeker) *Parser {
	return &Parser{src: source.NewSeek(rs), st: stateHeader}
}

// NewFromSource creates a Parser over an already-constructed source.Source,
// for callers that need a custom implementation.
func NewFromSource(src source.Source) *Parser {
	return &Parser{src: src, st: stateHeader}
}

// Warn records a non-fatal diagnostic. Implements attr.Warner.
func (p *Parser) Warn(msg string) {
	p.warnings = append(p.warnings, msg)
}

// Warnings returns every warning accumulated so far, in order.
func (p *Parser) Warnings() []string { return p.warnings }

// FBXVersion returns the FBX version read from the header, or 0 if the
// header has not been read yet.
func (p *Parser) FBXVersion() uint32 { return p.fbxVersion }

// Err returns the latched fatal error, if parsing has stopped because of
// one. ErrFinished is not considered a latched error; it is returned
// directly from NextEvent instead.
func (p *Parser) Err() error {
	if errors.Is(p.err, ErrFinished) {
		return nil
	}
	return p.err
}

func (p *Parser) numOpenNodes() int { return len(p.openNodes) }

// drainBusy finishes any attribute/array/special sub-reader left open by
// the most recently returned StartNode event, since nothing else may read
// from the source until that is done.
func (p *Parser) drainBusy() error {
	if p.busy == nil {
		return nil
	}
	d := p.busy
	p.busy = nil
	return d.Finish()
}

// NextEvent decodes and returns the next event in the stream. Once it
// returns ErrFinished, the stream is exhausted; once it returns any other
// error, the parser is latched and all subsequent calls return that same
// error.
func (p *Parser) NextEvent() (Event, error) {
	if p.err != nil {
		return Event{}, p.err
	}
	if err := p.drainBusy(); err != nil {
		p.err = err
		return Event{}, err
	}

	var ev Event
	var err error
	switch p.st {
	case stateHeader:
		ev, err = p.readHeader()
	case stateNodeStarted:
		ev, err = p.readAfterNodeStart()
	case stateNodeEnded:
		ev, err = p.readAfterNodeEnd()
	}
	if err != nil {
		p.err = err
		return Event{}, err
	}
	if ev.Kind == StartNode {
		p.busy = ev.Attributes
	}
	return ev, nil
}

func (p *Parser) readHeader() (Event, error) {
	var buf [magicLen]byte
	if err := p.src.ReadExact(buf[:]); err != nil {
		return Event{}, err
	}
	if string(buf[:]) != magicText {
		return Event{}, errors.Wrapf(ErrMagicMismatch, "at offset 0")
	}
	var unk [2]byte
	if err := p.src.ReadExact(unk[:]); err != nil {
		return Event{}, err
	}
	if unk != [2]byte{0x1a, 0x00} {
		p.Warn("pull: unexpected bytes after magic string")
	}
	ver, err := p.src.ReadU32()
	if err != nil {
		return Event{}, err
	}
	p.fbxVersion = ver
	p.haveVer = true
	p.st = stateNodeEnded
	return Event{Kind: StartFbx, Version: ver}, nil
}

func (p *Parser) readAfterNodeStart() (Event, error) {
	if err := p.skipAttributes(); err != nil {
		return Event{}, err
	}
	if n := len(p.openNodes); n > 0 {
		last := p.openNodes[n-1]
		if p.src.Position() == last.end {
			p.openNodes = p.openNodes[:n-1]
			p.st = stateNodeEnded
			return Event{Kind: EndNode}, nil
		}
	}
	return p.readNodeEvent()
}

func (p *Parser) readAfterNodeEnd() (Event, error) {
	return p.readNodeEvent()
}

func (p *Parser) skipAttributes() error {
	n := len(p.openNodes)
	if n == 0 {
		return nil
	}
	return p.src.SkipTo(p.openNodes[n-1].attributesEnd)
}

type nodeHeader struct {
	endOffset     uint64
	numAttributes uint64
	bytelenAttrs  uint64
	bytelenName   uint8
}

func (p *Parser) readNodeHeader() (nodeHeader, error) {
	var h nodeHeader
	if p.fbxVersion < 7500 {
		a, err := p.src.ReadU32()
		if err != nil {
			return h, err
		}
		b, err := p.src.ReadU32()
		if err != nil {
			return h, err
		}
		c, err := p.src.ReadU32()
		if err != nil {
			return h, err
		}
		h.endOffset, h.numAttributes, h.bytelenAttrs = uint64(a), uint64(b), uint64(c)
	} else {
		a, err := p.src.ReadU64()
		if err != nil {
			return h, err
		}
		b, err := p.src.ReadU64()
		if err != nil {
			return h, err
		}
		c, err := p.src.ReadU64()
		if err != nil {
			return h, err
		}
		h.endOffset, h.numAttributes, h.bytelenAttrs = a, b, c
	}
	n, err := p.src.ReadU8()
	if err != nil {
		return h, err
	}
	h.bytelenName = n
	return h, nil
}

func (h nodeHeader) isNodeEnd() bool {
	return h.endOffset == 0 && h.numAttributes == 0 && h.bytelenAttrs == 0 && h.bytelenName == 0
}

func (p *Parser) readNodeEvent() (Event, error) {
	h, err := p.readNodeHeader()
	if err != nil {
		return Event{}, err
	}
	if h.isNodeEnd() {
		if n := len(p.openNodes); n > 0 {
			last := p.openNodes[n-1]
			p.openNodes = p.openNodes[:n-1]
			cur := p.src.Position()
			if cur != last.end {
				return Event{}, errors.Wrapf(ErrWrongNodeEndOffset,
					"node begin=%d expected_end=%d real_end=%d", last.begin, last.end, cur)
			}
			p.st = stateNodeEnded
			return Event{Kind: EndNode}, nil
		}
		footer, err := p.readFooter()
		if err != nil {
			return Event{}, err
		}
		p.err = ErrFinished
		return Event{Kind: EndFbx, Footer: footer}, nil
	}

	nameBuf := make([]byte, h.bytelenName)
	if err := p.src.ReadExact(nameBuf); err != nil {
		return Event{}, err
	}
	if !utf8.Valid(nameBuf) {
		return Event{}, errors.Wrapf(ErrNodeNameInvalidUTF8, "at offset %d", p.src.Position())
	}
	p.recentName = string(nameBuf)

	cur := p.src.Position()
	p.openNodes = append(p.openNodes, openNode{
		begin:         cur,
		end:           h.endOffset,
		attributesEnd: cur + h.bytelenAttrs,
	})
	p.st = stateNodeStarted
	return Event{
		Kind:       StartNode,
		NodeName:   p.recentName,
		Attributes: attr.NewDecoder(p.src, uint32(h.numAttributes), p),
	}, nil
}

// readFooter parses the trailing footer block, including the
// tolerant-padding heuristic for exporters that omit the expected padding.
func (p *Parser) readFooter() (*Footer, error) {
	var f Footer
	if err := p.src.ReadExact(f.Unknown1[:]); err != nil {
		return nil, err
	}
	expectedPadding := (16 - (p.src.Position() & 0x0f)) & 0x0f

	const bufLen = 144
	buf := make([]byte, bufLen)
	if err := p.src.ReadExact(buf); err != nil {
		return nil, err
	}

	partial := 0
	for partial <= 16 && buf[bufLen-1-partial] != 0 {
		partial++
	}
	if partial > 16 {
		return nil, ErrBrokenFooter
	}

	copy(f.Unknown2[:partial], buf[bufLen-partial:])
	if err := p.src.ReadExact(f.Unknown2[partial:]); err != nil {
		return nil, err
	}

	if uint64(16-partial) != expectedPadding {
		p.Warn("pull: footer padding length differs from expectation")
	}

	verOffset := 20 - partial
	footerVer := uint32(buf[verOffset]) | uint32(buf[verOffset+1])<<8 |
		uint32(buf[verOffset+2])<<16 | uint32(buf[verOffset+3])<<24
	if footerVer != p.fbxVersion {
		return nil, errors.Wrapf(ErrHeaderFooterVersionMismatch, "header=%d footer=%d", p.fbxVersion, footerVer)
	}
	f.Version = footerVer
	return &f, nil
}

// SkipCurrentNode closes the most recently opened node by skipping straight
// to its end offset, reporting false if no node is currently open.
func (p *Parser) SkipCurrentNode() (bool, error) {
	if err := p.drainBusy(); err != nil {
		p.err = err
		return false, err
	}
	n := len(p.openNodes)
	if n == 0 {
		return false, nil
	}
	end := p.openNodes[n-1].end
	p.openNodes = p.openNodes[:n-1]
	if err := p.src.SkipTo(end); err != nil {
		p.err = err
		return false, err
	}
	p.st = stateNodeEnded
	return true, nil
}

// Subtree returns a view bounded to the current node's children: it stops
// (returning ErrFinished) once the open-node depth drops back below the
// depth it was created at.
func (p *Parser) Subtree() *Subtree {
	return &Subtree{root: p, initialDepth: p.numOpenNodes()}
}

// Subtree is a depth-bounded view over a Parser's event stream, scoped to
// exactly one node's children.
type Subtree struct {
	root         *Parser
	initialDepth int
}

// Root returns the underlying root Parser, letting a caller open a fresh,
// more deeply nested Subtree right after receiving a StartNode event (the
// node it just started is already reflected in the root's open-node depth).
func (s *Subtree) Root() *Parser { return s.root }

// Finished reports whether the subtree has emitted all of its events.
func (s *Subtree) Finished() bool {
	return s.root.err != nil || s.root.numOpenNodes() < s.initialDepth
}

func (s *Subtree) checkFinished() error {
	if s.root.err != nil {
		return s.root.err
	}
	if s.root.numOpenNodes() < s.initialDepth {
		return ErrFinished
	}
	return nil
}

// NextEvent forwards to the root Parser, refusing once the subtree is
// exhausted.
func (s *Subtree) NextEvent() (Event, error) {
	if err := s.checkFinished(); err != nil {
		return Event{}, err
	}
	return s.root.NextEvent()
}

// SkipCurrentNode forwards to the root Parser, refusing once the subtree is
// exhausted.
func (s *Subtree) SkipCurrentNode() (bool, error) {
	if err := s.checkFinished(); err != nil {
		return false, err
	}
	return s.root.SkipCurrentNode()
}

// SkipToEnd drains every remaining event in the subtree by repeatedly
// skipping the current node, used by schema loaders that stop reading a
// node's children early (e.g. after finding the field they need).
func (s *Subtree) SkipToEnd() error {
	for {
		ok, err := s.SkipCurrentNode()
		if errors.Is(err, ErrFinished) {
			return nil
		}
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}
