package aggregate

import (
	"encoding/binary"
	"testing"

	"fdsgo/internal/ipfix"
	"fdsgo/internal/view"
)

func sliceReaderWith(fields map[ipfix.FieldKey]ipfix.Value) (ipfix.Reader, *ipfix.Record) {
	factory := ipfix.NewSliceReader([]ipfix.SliceRecord{{Kind: ipfix.Unidirectional, Fields: fields}})
	reader, _ := factory("ignored")
	reader.Open("ignored")
	rec, _ := reader.ReadRecord()
	return reader, rec
}

func TestBuildKeyVerbatimField(t *testing.T) {
	proto := view.Field{
		Name: "proto", DataType: ipfix.U8, Size: 1, Offset: 0, IsKey: true, KeyKind: view.KeyVerbatim,
		FwdV4: ipfix.WireRef{Enterprise: 0, ID: 4, Valid: true},
	}
	def := &view.Definition{Keys: []view.Field{proto}, KeysSize: 1}

	reader, rec := sliceReaderWith(map[ipfix.FieldKey]ipfix.Value{
		{Enterprise: 0, ID: 4, Flags: ipfix.FindNone}: {U64: 6},
	})

	buf := make([]byte, 1)
	if !BuildKey(reader, rec, def, view.DirEventAny, ipfix.FindNone, buf) {
		t.Fatal("BuildKey = false, want true")
	}
	if buf[0] != 6 {
		t.Fatalf("buf[0] = %d, want 6", buf[0])
	}
}

func TestBuildKeyMissingFieldDropsEvent(t *testing.T) {
	proto := view.Field{
		Name: "proto", DataType: ipfix.U8, Size: 1, IsKey: true, KeyKind: view.KeyVerbatim,
		FwdV4: ipfix.WireRef{Enterprise: 0, ID: 4, Valid: true},
	}
	def := &view.Definition{Keys: []view.Field{proto}, KeysSize: 1}
	reader, rec := sliceReaderWith(map[ipfix.FieldKey]ipfix.Value{})

	buf := make([]byte, 1)
	if BuildKey(reader, rec, def, view.DirEventAny, ipfix.FindNone, buf) {
		t.Fatal("BuildKey with missing wire field = true, want false")
	}
}

func TestBuildKeyTaggedIPPrefersV4(t *testing.T) {
	ipField := view.Field{
		Name: "ip", DataType: ipfix.IP, Size: 17, IsKey: true, KeyKind: view.KeyBidiIp,
		FwdV4: ipfix.WireRef{Enterprise: 0, ID: 8, Valid: true},
		FwdV6: ipfix.WireRef{Enterprise: 0, ID: 27, Valid: true},
	}
	def := &view.Definition{Keys: []view.Field{ipField}, KeysSize: 17}
	reader, rec := sliceReaderWith(map[ipfix.FieldKey]ipfix.Value{
		{Enterprise: 0, ID: 8, Flags: ipfix.FindNone}: {IPv4: [4]byte{10, 0, 0, 1}},
	})

	buf := make([]byte, 17)
	if !BuildKey(reader, rec, def, view.DirEventAny, ipfix.FindNone, buf) {
		t.Fatal("BuildKey = false, want true")
	}
	if buf[0] != 4 {
		t.Fatalf("tag byte = %d, want 4 (v4)", buf[0])
	}
	if buf[1] != 10 || buf[2] != 0 || buf[3] != 0 || buf[4] != 1 {
		t.Fatalf("address bytes = %v, want [10 0 0 1]", buf[1:5])
	}
}

func TestBuildKeySubnetMasking(t *testing.T) {
	subnet := view.Field{
		Name: "srcipv4", DataType: ipfix.IPv4, Size: 4, IsKey: true, KeyKind: view.KeyIpv4Subnet, PrefixLen: 24,
		FwdV4: ipfix.WireRef{Enterprise: 0, ID: 8, Valid: true},
	}
	def := &view.Definition{Keys: []view.Field{subnet}, KeysSize: 4}
	reader, rec := sliceReaderWith(map[ipfix.FieldKey]ipfix.Value{
		{Enterprise: 0, ID: 8, Flags: ipfix.FindNone}: {IPv4: [4]byte{192, 168, 1, 77}},
	})

	buf := make([]byte, 4)
	if !BuildKey(reader, rec, def, view.DirEventAny, ipfix.FindNone, buf) {
		t.Fatal("BuildKey = false, want true")
	}
	want := [4]byte{192, 168, 1, 0}
	if buf[0] != want[0] || buf[1] != want[1] || buf[2] != want[2] || buf[3] != want[3] {
		t.Fatalf("masked address = %v, want %v", buf, want)
	}
}

func TestBuildKeyBidiPortSwapsByDirection(t *testing.T) {
	port := view.Field{
		Name: "port", DataType: ipfix.U16, Size: 2, IsKey: true, KeyKind: view.KeyBidiPort,
		FwdV4: ipfix.WireRef{Enterprise: 0, ID: 7, Valid: true},
		RevV4: ipfix.WireRef{Enterprise: 0, ID: 11, Valid: true},
	}
	def := &view.Definition{Keys: []view.Field{port}, KeysSize: 2}
	reader, rec := sliceReaderWith(map[ipfix.FieldKey]ipfix.Value{
		{Enterprise: 0, ID: 7, Flags: ipfix.FindNone}:  {U64: 443},
		{Enterprise: 0, ID: 11, Flags: ipfix.FindNone}: {U64: 55000},
	})

	fwdBuf := make([]byte, 2)
	BuildKey(reader, rec, def, view.DirEventFwd, ipfix.FindNone, fwdBuf)
	if got := binary.BigEndian.Uint16(fwdBuf); got != 443 {
		t.Fatalf("forward port = %d, want 443", got)
	}

	revBuf := make([]byte, 2)
	BuildKey(reader, rec, def, view.DirEventRev, ipfix.FindNone, revBuf)
	if got := binary.BigEndian.Uint16(revBuf); got != 55000 {
		t.Fatalf("reverse port = %d, want 55000", got)
	}
}

func TestInitValuesSetsIdentityElements(t *testing.T) {
	sum := view.Field{Name: "bytes", DataType: ipfix.U64, Size: 8, AbsOffset: 0, ValueKind: view.ValueSum}
	min := view.Field{Name: "minpkt", DataType: ipfix.U32, Size: 4, AbsOffset: 8, ValueKind: view.ValueMin}
	max := view.Field{Name: "maxpkt", DataType: ipfix.I32, Size: 4, AbsOffset: 12, ValueKind: view.ValueMax}
	def := &view.Definition{Values: []view.Field{sum, min, max}, ValuesSize: 16}

	slot := make([]byte, 16)
	InitValues(slot, def)

	if v := binary.BigEndian.Uint64(slot[0:8]); v != 0 {
		t.Errorf("sum init = %d, want 0", v)
	}
	if v := binary.BigEndian.Uint32(slot[8:12]); v != 0xFFFFFFFF {
		t.Errorf("min init = %x, want 0xFFFFFFFF", v)
	}
	if v := int32(binary.BigEndian.Uint32(slot[12:16])); v != -2147483648 {
		t.Errorf("max init (signed) = %d, want -2147483648", v)
	}
}
