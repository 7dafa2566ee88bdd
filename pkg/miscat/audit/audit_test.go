package audit

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/cataloglab/miscat/pkg/miscat"
	"github.com/cataloglab/miscat/pkg/miscat/store"
	"github.com/cataloglab/miscat/pkg/miscat/store/memstore"
)

func trainedModel(t *testing.T) *miscat.Model[string] {
	t.Helper()
	model := miscat.New[string](miscat.DefaultConfig())
	err := model.Fit(
		[]string{
			"red cotton shirt", "wool shirt", "linen shirt classic",
			"leather shoes", "running shoes", "suede shoes low",
		},
		[]string{"clothes", "clothes", "clothes", "footwear", "footwear", "footwear"},
	)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	return model
}

func seedCatalog(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()
	listings := []store.Listing{
		{SKU: "SKU-1", Title: "Blue shirt", Description: "Everyday wear", Category: "clothes"},
		{SKU: "SKU-2", Title: "Trail shoes", Description: "<p>Grippy sole</p>", Category: "footwear"},
		{SKU: "SKU-3", Title: "Canvas shoes", Description: "Casual pair", Category: "clothes"},
		{SKU: "SKU-4", Title: "Garden gnome", Description: "Painted clay", Category: "garden"},
	}
	for _, l := range listings {
		if err := s.UpsertListing(ctx, l); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRunFlagsMiscategorized(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	seedCatalog(t, s)

	auditor, err := New(Options{Store: s, Model: trainedModel(t)})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	rep, err := auditor.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// SKU-3 sells shoes but sits under clothes; SKU-4's category is not in
	// the vocabulary and is skipped, not judged.
	if rep.Audited != 3 || rep.Skipped != 1 {
		t.Errorf("counts: audited=%d skipped=%d", rep.Audited, rep.Skipped)
	}
	if rep.Flagged != 1 || len(rep.Flags) != 1 {
		t.Fatalf("flags: %+v", rep.Flags)
	}
	flag := rep.Flags[0]
	if flag.SKU != "SKU-3" || flag.Category != "clothes" {
		t.Errorf("flag: %+v", flag)
	}
	if !reflect.DeepEqual(flag.Keywords, []string{"shoes"}) {
		t.Errorf("keywords: %v", flag.Keywords)
	}

	// The report was persisted under its ID
	stored, ok, err := s.GetReport(ctx, rep.ID)
	if err != nil || !ok {
		t.Fatalf("report not persisted: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(stored.Flags, rep.Flags) {
		t.Errorf("persisted flags differ: %+v", stored.Flags)
	}
}

func TestRunDeterministicAcrossWorkers(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	seedCatalog(t, s)
	model := trainedModel(t)

	var flags [][]string
	for _, workers := range []int{1, 3, 16} {
		auditor, err := New(Options{Store: s, Model: model, Workers: workers})
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		rep, err := auditor.Run(ctx)
		if err != nil {
			t.Fatalf("run with %d workers: %v", workers, err)
		}
		var skus []string
		for _, f := range rep.Flags {
			skus = append(skus, f.SKU)
		}
		flags = append(flags, skus)
	}

	if !reflect.DeepEqual(flags[0], flags[1]) || !reflect.DeepEqual(flags[1], flags[2]) {
		t.Errorf("worker count changed the outcome: %v", flags)
	}
}

func TestRunEmptyCatalog(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()

	auditor, err := New(Options{Store: s, Model: trainedModel(t)})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	rep, err := auditor.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rep.Audited != 0 || rep.Skipped != 0 || rep.Flagged != 0 {
		t.Errorf("empty catalog: %+v", rep)
	}
	if rep.ID == "" {
		t.Error("even an empty run gets a report ID")
	}
}

func TestRunUntrainedModel(t *testing.T) {
	auditor, err := New(Options{
		Store: memstore.New(),
		Model: miscat.New[string](miscat.DefaultConfig()),
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	_, err = auditor.Run(context.Background())
	if !errors.Is(err, miscat.ErrUntrained) {
		t.Fatalf("got %v, want ErrUntrained", err)
	}
}

func TestNewValidates(t *testing.T) {
	if _, err := New(Options{Model: trainedModel(t)}); err == nil {
		t.Error("nil store should be rejected")
	}
	if _, err := New(Options{Store: memstore.New()}); err == nil {
		t.Error("nil model should be rejected")
	}
}

func TestListingText(t *testing.T) {
	l := store.Listing{
		Title:       "Red ＳＨＩＲＴ",
		Description: "<p>100% <b>cotton</b></p><script>var x;</script>",
	}

	got := ListingText(l)
	want := "Red SHIRT 100% cotton"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestListingTextTitleOnly(t *testing.T) {
	if got := ListingText(store.Listing{Title: "Plain title"}); got != "Plain title" {
		t.Errorf("got %q", got)
	}
}

func TestSplitCoversEverythingOnce(t *testing.T) {
	for _, tc := range []struct{ n, parts int }{
		{0, 4}, {1, 4}, {4, 4}, {5, 4}, {10, 3}, {7, 1}, {3, 16},
	} {
		spans := split(tc.n, tc.parts)
		covered := 0
		last := 0
		for _, sp := range spans {
			if sp.lo != last {
				t.Errorf("split(%d,%d): gap before %d", tc.n, tc.parts, sp.lo)
			}
			if sp.hi <= sp.lo {
				t.Errorf("split(%d,%d): empty span %+v", tc.n, tc.parts, sp)
			}
			covered += sp.hi - sp.lo
			last = sp.hi
		}
		if covered != tc.n {
			t.Errorf("split(%d,%d) covered %d items", tc.n, tc.parts, covered)
		}
		if last != tc.n {
			t.Errorf("split(%d,%d) ended at %d", tc.n, tc.parts, last)
		}
	}
}
