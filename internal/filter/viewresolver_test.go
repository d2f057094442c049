package filter

import (
	"encoding/binary"
	"testing"

	"fdsgo/internal/ipfix"
	"fdsgo/internal/view"
)

func TestViewResolverAndSlotSource(t *testing.T) {
	bytesField := view.Field{Name: "bytes", DataType: ipfix.U64, Size: 8, Offset: 0, AbsOffset: 4}
	def := &view.Definition{Values: []view.Field{bytesField}, KeysSize: 4, ValuesSize: 8}

	resolver := NewViewResolver(def)
	id, dtype, offset, ok := resolver.Resolve("bytes")
	if !ok {
		t.Fatal("Resolve(bytes) = not found, want found")
	}
	if dtype != ipfix.U64 {
		t.Errorf("dtype = %v, want U64", dtype)
	}
	if offset != 0 {
		t.Errorf("offset = %d, want 0", offset)
	}

	slot := make([]byte, 12)
	binary.BigEndian.PutUint64(slot[4:12], 4242)
	src := NewSlotSource(def, slot)
	gotType, raw := src.Value(id)
	if gotType != ipfix.U64 {
		t.Errorf("Value dtype = %v, want U64", gotType)
	}
	if got := binary.BigEndian.Uint64(raw); got != 4242 {
		t.Errorf("Value raw = %d, want 4242", got)
	}

	if _, _, _, ok := resolver.Resolve("nope"); ok {
		t.Fatal("Resolve(nope) = found, want not found")
	}
}
