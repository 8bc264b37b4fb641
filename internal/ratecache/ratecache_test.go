package ratecache

import (
	"testing"

	"github.com/RobertoA1/OptiCred/internal/ratetable"
)

func TestMemoryCache(t *testing.T) {
	cache := NewMemoryCache()

	if _, ok := cache.Get("missing"); ok {
		t.Error("Get on an empty cache reported a hit")
	}

	if err := cache.Set("key", "value"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	val, ok := cache.Get("key")
	if !ok || val != "value" {
		t.Errorf("Get = (%q, %v), expected (value, true)", val, ok)
	}

	if err := cache.Set("key", "updated"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if val, _ := cache.Get("key"); val != "updated" {
		t.Errorf("Get after overwrite = %q, expected updated", val)
	}
}

func TestStoreAndLoadTable(t *testing.T) {
	cache := NewMemoryCache()

	if _, ok, err := LoadTable(cache); err != nil || ok {
		t.Fatalf("LoadTable on empty cache = (ok=%v, err=%v), expected a clean miss", ok, err)
	}

	table := &ratetable.Table{
		Banks: []string{"BancoA", "BancoB"},
		Products: []ratetable.ProductRow{
			{
				Category: ratetable.CategoryConsumer,
				Product:  "Prestamo personal",
				Cells: []ratetable.Cell{
					{Value: 24.50, Available: true},
					{},
				},
			},
		},
	}

	if err := StoreTable(cache, table); err != nil {
		t.Fatalf("StoreTable returned error: %v", err)
	}

	loaded, ok, err := LoadTable(cache)
	if err != nil {
		t.Fatalf("LoadTable returned error: %v", err)
	}
	if !ok {
		t.Fatal("LoadTable reported a miss after StoreTable")
	}

	rate, err := loaded.Rate("BancoA", ratetable.CategoryConsumer, "Prestamo personal")
	if err != nil {
		t.Fatalf("Rate on loaded table returned error: %v", err)
	}
	if rate != 24.50 {
		t.Errorf("rate = %v, expected 24.50", rate)
	}

	if _, err := loaded.Rate("BancoB", ratetable.CategoryConsumer, "Prestamo personal"); err == nil {
		t.Error("unavailable cell survived the round trip as available")
	}
}

func TestLoadTableCorruptEntry(t *testing.T) {
	cache := NewMemoryCache()
	if err := cache.Set(TableKey, "{not json"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	if _, _, err := LoadTable(cache); err == nil {
		t.Error("expected error for a corrupt cached entry")
	}
}
