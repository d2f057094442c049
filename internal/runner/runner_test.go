package runner

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"fdsgo/internal/filelist"
	"fdsgo/internal/ipfix"
	"fdsgo/internal/sortspec"
	"fdsgo/internal/view"
)

func testPoolDef() *view.Definition {
	proto := view.Field{
		Name: "proto", DataType: ipfix.U8, Size: 1, Offset: 0, AbsOffset: 0, IsKey: true, KeyKind: view.KeyVerbatim,
		FwdV4: ipfix.WireRef{Enterprise: 0, ID: 4, Valid: true},
	}
	bytesField := view.Field{
		Name: "bytes", DataType: ipfix.U64, Size: 8, Offset: 0, AbsOffset: 1, ValueKind: view.ValueSum, DirFilter: view.DirAny,
		FwdV4: ipfix.WireRef{Enterprise: 0, ID: 1, Valid: true},
	}
	return &view.Definition{Keys: []view.Field{proto}, Values: []view.Field{bytesField}, KeysSize: 1, ValuesSize: 8}
}

func TestPoolRunProcessesEveryFileAcrossWorkers(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 4; i++ {
		if err := os.WriteFile(filepath.Join(dir, string(rune('a'+i))+".demo"), []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	var files filelist.List
	if err := files.AddFiles(filepath.Join(dir, "*.demo")); err != nil {
		t.Fatalf("AddFiles: %v", err)
	}

	def := testPoolDef()
	record := ipfix.SliceRecord{Kind: ipfix.Unidirectional, Fields: map[ipfix.FieldKey]ipfix.Value{
		{Enterprise: 0, ID: 4, Flags: ipfix.FindNone}: {U64: 6},
		{Enterprise: 0, ID: 1, Flags: ipfix.FindNone}: {U64: 10},
	}}
	factory := ipfix.NewSliceReader([]ipfix.SliceRecord{record})

	f, _ := def.FieldByName("bytes")
	spec := sortspec.Spec{{Field: f, Ascending: false}}

	pool := &Pool{Def: def, Factory: factory, Sort: spec, NumWorkers: 3}
	results, errs := pool.Run(&files)

	if len(errs) != 0 {
		t.Fatalf("errs = %v, want none", errs)
	}

	// Each worker folds every file it popped into its own table, so a worker
	// holds one proto=6 item whose bytes are 10 per file it read.
	var total uint64
	for _, r := range results {
		if len(r.Items) != 1 {
			t.Fatalf("worker items = %d, want 1 (every record has proto=6)", len(r.Items))
		}
		total += binary.BigEndian.Uint64(r.Items[0][1:9])
	}
	if total != 40 {
		t.Fatalf("total bytes across workers = %d, want 40 (10 per file, 4 files)", total)
	}
}

func TestPoolRunWithNoFilesReturnsNoResults(t *testing.T) {
	var files filelist.List
	def := testPoolDef()
	factory := ipfix.NewSliceReader(nil)
	pool := &Pool{Def: def, Factory: factory, NumWorkers: 2}

	results, errs := pool.Run(&files)
	if len(results) != 0 {
		t.Fatalf("results = %v, want none (no worker ever popped a file)", results)
	}
	if len(errs) != 0 {
		t.Fatalf("errs = %v, want none", errs)
	}
}
