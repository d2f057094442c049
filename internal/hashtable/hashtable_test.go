package hashtable

import "testing"

func TestFindOrCreateInsertsAndReturnsSameSlot(t *testing.T) {
	tbl := New(4, 8)
	key := []byte{1, 2, 3, 4}

	slot1, created := tbl.FindOrCreate(key)
	if !created {
		t.Fatal("first FindOrCreate: created = false, want true")
	}
	slot1[4] = 0xAB

	slot2, created := tbl.FindOrCreate(key)
	if created {
		t.Fatal("second FindOrCreate: created = true, want false")
	}
	if slot2[4] != 0xAB {
		t.Fatalf("slot2[4] = %x, want 0xAB (same underlying slot)", slot2[4])
	}
	if tbl.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tbl.Len())
	}
}

func TestFindReportsAbsence(t *testing.T) {
	tbl := New(4, 8)
	if _, ok := tbl.Find([]byte{9, 9, 9, 9}); ok {
		t.Fatal("Find on empty table: ok = true, want false")
	}
	key := []byte{1, 1, 1, 1}
	tbl.FindOrCreate(key)
	if _, ok := tbl.Find([]byte{2, 2, 2, 2}); ok {
		t.Fatal("Find on distinct key: ok = true, want false")
	}
	if slot, ok := tbl.Find(key); !ok {
		t.Fatal("Find on inserted key: ok = false, want true")
	} else if len(slot) != 12 {
		t.Fatalf("len(slot) = %d, want 12", len(slot))
	}
}

func TestResizeGrowsAndPreservesEntries(t *testing.T) {
	tbl := New(4, 0)
	keys := make([][]byte, 0, 64)
	for i := 0; i < 64; i++ {
		k := []byte{byte(i), byte(i >> 8), byte(i >> 16), byte(i >> 24)}
		keys = append(keys, k)
		tbl.FindOrCreate(k)
	}
	if tbl.NumBlocks() <= 1 {
		t.Fatalf("NumBlocks() = %d, want > 1 after 64 inserts", tbl.NumBlocks())
	}
	if tbl.Len() != 64 {
		t.Fatalf("Len() = %d, want 64", tbl.Len())
	}
	for _, k := range keys {
		if _, ok := tbl.Find(k); !ok {
			t.Fatalf("Find(%v) after resize: ok = false, want true", k)
		}
	}
}

func TestItemsReflectsInsertionOrder(t *testing.T) {
	tbl := New(1, 0)
	tbl.FindOrCreate([]byte{1})
	tbl.FindOrCreate([]byte{2})
	tbl.FindOrCreate([]byte{3})

	items := tbl.Items()
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	for i, want := range []byte{1, 2, 3} {
		if items[i][0] != want {
			t.Errorf("items[%d][0] = %d, want %d", i, items[i][0], want)
		}
	}
}
