package typegraph

import "encoding/binary"

// tagInterner deduplicates TypeLinkTags by content so that structurally
// equal tags are pointer-identical. Interned tags are immutable; edges hold
// the canonical pointer.
type tagInterner struct {
	tags map[string]*TypeLinkTag
}

func newTagInterner() *tagInterner {
	return &tagInterner{tags: make(map[string]*TypeLinkTag, 64)}
}

// Intern returns the canonical pointer for t, inserting it on first use.
func (in *tagInterner) Intern(t TypeLinkTag) *TypeLinkTag {
	key := t.internKey()
	if tag, ok := in.tags[key]; ok {
		return tag
	}
	tag := &TypeLinkTag{kind: t.kind, oe: t.oe.clone()}
	in.tags[key] = tag
	return tag
}

// Contains reports whether tag is the canonical member for its content.
func (in *tagInterner) Contains(tag *TypeLinkTag) bool {
	if tag == nil {
		return false
	}
	got, ok := in.tags[tag.internKey()]
	return ok && got == tag
}

// Len returns the number of interned tags.
func (in *tagInterner) Len() int {
	return len(in.tags)
}

// internKey encodes the tag content; equal keys iff Compare == 0.
func (t *TypeLinkTag) internKey() string {
	buf := make([]byte, 0, 16+10*len(t.oe.Strides))
	buf = append(buf, byte(t.kind))
	buf = binary.AppendVarint(buf, t.oe.Offset)
	buf = binary.AppendVarint(buf, int64(len(t.oe.Strides)))
	for _, s := range t.oe.Strides {
		buf = binary.AppendVarint(buf, s)
	}
	for _, tc := range t.oe.TripCounts {
		buf = binary.AppendVarint(buf, tc)
	}
	return string(buf)
}
