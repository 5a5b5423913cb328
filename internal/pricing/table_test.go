package pricing

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestDefaultTablePrices(t *testing.T) {
	table := DefaultTable()
	cases := []struct {
		item    ItemType
		service ServiceType
		want    string
	}{
		{Shirt, Wash, "3.00"},
		{Pants, DryClean, "6.00"},
		{Suit, Wash, "0.00"},
		{Suit, DryClean, "12.00"},
		{Towel, Iron, "1.50"},
		{Skirt, Wash, "4.50"},
	}
	for _, tc := range cases {
		got, err := table.Price(tc.item, tc.service)
		if err != nil {
			t.Fatalf("%s/%s: unexpected error: %v", tc.item, tc.service, err)
		}
		if got.StringFixed(2) != tc.want {
			t.Fatalf("%s/%s: expected %s, got %s", tc.item, tc.service, tc.want, got)
		}
	}
}

func TestPriceZeroIsNotMissing(t *testing.T) {
	price, err := DefaultTable().Price(Suit, Wash)
	if err != nil {
		t.Fatalf("suit wash must be configured, got %v", err)
	}
	if !price.IsZero() {
		t.Fatalf("expected zero price, got %s", price)
	}
}

func TestPriceLookupErrors(t *testing.T) {
	table := DefaultTable()
	_, err := table.Price(ItemType("Curtain"), Wash)
	var lerr *LookupError
	if !errors.As(err, &lerr) || lerr.Item != "Curtain" {
		t.Fatalf("expected lookup error for unknown item, got %v", err)
	}
	if _, err := table.Price(Shirt, ServiceType("steam")); !errors.Is(err, ErrLookup) {
		t.Fatalf("expected lookup error for unknown service, got %v", err)
	}
	var nilTable *Table
	if _, err := nilTable.Price(Shirt, Wash); !errors.Is(err, ErrLookup) {
		t.Fatalf("expected lookup error from nil table, got %v", err)
	}
}

func TestNewTableRequiresCompleteness(t *testing.T) {
	entries := EntriesFromRows(DefaultRows())
	_, err := NewTable(entries[:len(entries)-1])
	var verr *ValidationError
	if !errors.As(err, &verr) || !strings.Contains(verr.Reason, "Skirt/iron") {
		t.Fatalf("expected missing Skirt/iron, got %v", err)
	}
}

func TestNewTableRejectsBadEntries(t *testing.T) {
	base := EntriesFromRows(DefaultRows())

	dup := append(append([]Entry{}, base...), Entry{Item: Shirt, Service: Wash, Price: dec("1")})
	if _, err := NewTable(dup); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}

	neg := append([]Entry{}, base...)
	neg[0].Price = dec("-1")
	if _, err := NewTable(neg); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected negative rejection, got %v", err)
	}

	unknown := append(append([]Entry{}, base...), Entry{Item: "Curtain", Service: Wash, Price: dec("1")})
	if _, err := NewTable(unknown); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected unknown item rejection, got %v", err)
	}
}

func TestRowsRoundTrip(t *testing.T) {
	table := DefaultTable()
	again, err := NewTable(EntriesFromRows(table.Rows()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, e := range table.Entries() {
		got, _ := again.Price(e.Item, e.Service)
		if !got.Equal(e.Price) {
			t.Fatalf("%s/%s: %s != %s", e.Item, e.Service, got, e.Price)
		}
	}
}

func TestParseEnums(t *testing.T) {
	for _, raw := range []string{"dryClean", "dry_clean", "Dry Clean", "DRY-CLEAN"} {
		if got := ParseServiceType(raw); got != DryClean {
			t.Fatalf("%q: expected dryClean, got %q", raw, got)
		}
	}
	if got := ParseServiceType("steam"); got.Valid() {
		t.Fatalf("steam should stay unknown, got %q", got)
	}
	if got := ParseItemType(" shirt "); got != Shirt {
		t.Fatalf("expected Shirt, got %q", got)
	}
	if got := ParseItemType("Curtain"); got.Valid() {
		t.Fatalf("Curtain should stay unknown")
	}
}

func TestRegistryConcurrentSnapshots(t *testing.T) {
	reg := NewRegistry(nil)
	cheap := DefaultRows()
	for i := range cheap {
		cheap[i].Wash, cheap[i].DryClean, cheap[i].Iron = dec("1"), dec("1"), dec("1")
	}
	alt := MustTable(EntriesFromRows(cheap))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if (i+j)%2 == 0 {
					reg.Replace(alt)
				} else {
					reg.Replace(DefaultTable())
				}
				snap := reg.Current()
				wash, _ := snap.Price(Shirt, Wash)
				iron, _ := snap.Price(Shirt, Iron)
				if wash.Equal(dec("1")) != iron.Equal(dec("1")) {
					t.Errorf("observed a mixed table")
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
