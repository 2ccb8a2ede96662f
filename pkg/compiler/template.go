package compiler

import (
	"fmt"
	"slices"
	"strings"
)

// Segment is one piece of a Template: Text or SlotRef.
type Segment interface {
	segment()
}

// Text is literal output, already escaped.
type Text string

// SlotRef refers to Template.Slots by index.
type SlotRef int

func (Text) segment()    {}
func (SlotRef) segment() {}

// Template is static text interleaved with dynamic slots. Adjacent Text
// segments are always merged, and slot references appear in index order.
type Template struct {
	Segments []Segment
	Slots    []Slot
}

// Static returns the template text when it has no slots.
func (t *Template) Static() (string, bool) {
	if len(t.Slots) > 0 {
		return "", false
	}
	var b strings.Builder
	for _, s := range t.Segments {
		b.WriteString(string(s.(Text)))
	}
	return b.String(), true
}

// templateBuilder accumulates a Template. Each method returns a new builder;
// the receiver is never modified.
type templateBuilder struct {
	segs  []Segment
	slots []Slot
}

func (b templateBuilder) text(s string) templateBuilder {
	if s == "" {
		return b
	}
	segs := slices.Clip(b.segs)
	if n := len(segs); n > 0 {
		if prev, ok := segs[n-1].(Text); ok {
			segs = append(slices.Clone(segs[:n-1]), prev+Text(s))
			return templateBuilder{segs: segs, slots: b.slots}
		}
	}
	return templateBuilder{segs: append(segs, Text(s)), slots: b.slots}
}

func (b templateBuilder) slot(s Slot) templateBuilder {
	ref := SlotRef(len(b.slots))
	return templateBuilder{
		segs:  append(slices.Clip(b.segs), ref),
		slots: append(slices.Clip(b.slots), s),
	}
}

func (b templateBuilder) build() (*Template, error) {
	t := &Template{Segments: slices.Clone(b.segs), Slots: slices.Clone(b.slots)}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Template) validate() error {
	next := 0
	prevText := false
	for i, s := range t.Segments {
		switch s := s.(type) {
		case Text:
			if prevText {
				return fmt.Errorf("template: consecutive text segments at %d", i)
			}
			prevText = true
		case SlotRef:
			if int(s) != next {
				return fmt.Errorf("template: slot ref %d out of order, want %d", s, next)
			}
			next++
			prevText = false
		}
	}
	if next != len(t.Slots) {
		return fmt.Errorf("template: %d slot refs for %d slots", next, len(t.Slots))
	}
	return nil
}
