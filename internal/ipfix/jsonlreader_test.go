package ipfix

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeJSONL(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.jsonl")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()
	for _, l := range lines {
		if _, err := f.WriteString(l + "\n"); err != nil {
			t.Fatalf("WriteString: %v", err)
		}
	}
	return path
}

func TestJSONLReaderDecodesFields(t *testing.T) {
	path := writeJSONL(t, `{"template":"uni","fields":[`+
		`{"enterprise":0,"id":4,"type":"u8","value":6},`+
		`{"enterprise":0,"id":1,"type":"u64","value":1500},`+
		`{"enterprise":0,"id":8,"type":"ipv4","value":[10,0,0,1]}`+
		`]}`)

	r := &JSONLReader{}
	if err := r.Open(path); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	rec, err := r.ReadRecord()
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if rec.TemplateKind != Unidirectional {
		t.Fatalf("TemplateKind = %v, want Unidirectional", rec.TemplateKind)
	}

	v, ok := r.FindField(rec, 0, 4, FindNone)
	if !ok || v.U64 != 6 {
		t.Fatalf("FindField(id=4) = %+v, %v, want U64=6, true", v, ok)
	}
	v, ok = r.FindField(rec, 0, 1, FindNone)
	if !ok || v.U64 != 1500 {
		t.Fatalf("FindField(id=1) = %+v, %v, want U64=1500, true", v, ok)
	}
	v, ok = r.FindField(rec, 0, 8, FindNone)
	if !ok || v.IPv4 != [4]byte{10, 0, 0, 1} {
		t.Fatalf("FindField(id=8) = %+v, %v, want IPv4=10.0.0.1, true", v, ok)
	}

	if _, err := r.ReadRecord(); err != io.EOF {
		t.Fatalf("second ReadRecord err = %v, want io.EOF", err)
	}
	if r.RecordCount() != 1 {
		t.Fatalf("RecordCount() = %d, want 1", r.RecordCount())
	}
}

func TestJSONLReaderBiflowFlags(t *testing.T) {
	path := writeJSONL(t, `{"template":"biflow","fields":[`+
		`{"enterprise":0,"id":1,"flags":"fwd","type":"u64","value":100},`+
		`{"enterprise":0,"id":1,"flags":"rev","type":"u64","value":50}`+
		`]}`)

	r := &JSONLReader{}
	if err := r.Open(path); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	rec, err := r.ReadRecord()
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if rec.TemplateKind != Biflow {
		t.Fatalf("TemplateKind = %v, want Biflow", rec.TemplateKind)
	}

	fwd, ok := r.FindField(rec, 0, 1, FindForward)
	if !ok || fwd.U64 != 100 {
		t.Fatalf("forward value = %+v, %v, want U64=100, true", fwd, ok)
	}
	rev, ok := r.FindField(rec, 0, 1, FindReverse)
	if !ok || rev.U64 != 50 {
		t.Fatalf("reverse value = %+v, %v, want U64=50, true", rev, ok)
	}
}

func TestJSONLReaderSkipsBlankLines(t *testing.T) {
	path := writeJSONL(t, "", `{"template":"uni","fields":[]}`, "")
	r := &JSONLReader{}
	if err := r.Open(path); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	if _, err := r.ReadRecord(); err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if _, err := r.ReadRecord(); err != io.EOF {
		t.Fatalf("ReadRecord after one record err = %v, want io.EOF", err)
	}
}

func TestJSONLReaderMalformedLineReturnsErrDecode(t *testing.T) {
	path := writeJSONL(t, `{not valid json`)
	r := &JSONLReader{}
	if err := r.Open(path); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	if _, err := r.ReadRecord(); !errors.Is(err, ErrDecode) {
		t.Fatalf("ReadRecord err = %v, want wrapped ErrDecode", err)
	}
}

func TestBuildReaderFactory(t *testing.T) {
	if _, err := BuildReaderFactory("jsonl"); err != nil {
		t.Fatalf("BuildReaderFactory(jsonl): %v", err)
	}
	if _, err := BuildReaderFactory(""); err != nil {
		t.Fatalf("BuildReaderFactory(\"\"): %v", err)
	}
	if _, err := BuildReaderFactory("pcap"); err == nil {
		t.Fatal("BuildReaderFactory(pcap): want error, got nil")
	}
}
