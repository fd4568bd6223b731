package alumnistore_test

import (
	"context"
	"testing"

	alumnistore "github.com/dalemusser/peerhub/internal/app/store/alumni"
	"github.com/dalemusser/peerhub/internal/domain/models"
	"github.com/dalemusser/peerhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func create(t *testing.T, ctx context.Context, store *alumnistore.Store, a models.Alumni) *models.Alumni {
	t.Helper()
	if a.Email == "" {
		a.Email = "alum@example.com"
	}
	got, err := store.Create(ctx, a)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return got
}

func TestStore_CreateAndGetActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := alumnistore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := create(t, ctx, store, models.Alumni{Name: "Ada", GraduationYear: "2020", CurrentCompany: "Acme", CurrentRole: "SWE"})
	if !a.IsActive {
		t.Error("new entries should be active")
	}

	got, err := store.GetActive(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	if got.Name != "Ada" || got.Expertise == nil {
		t.Errorf("unexpected entry: %+v", got)
	}

	if _, err := store.GetActive(ctx, primitive.NewObjectID()); err != alumnistore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_DeactivateHidesEntry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := alumnistore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := create(t, ctx, store, models.Alumni{Name: "Ada", GraduationYear: "2020", CurrentCompany: "Acme", CurrentRole: "SWE"})
	if err := store.Deactivate(ctx, a.ID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	if _, err := store.GetActive(ctx, a.ID); err != alumnistore.ErrNotFound {
		t.Errorf("removed entry should be hidden, got %v", err)
	}
	if n, _ := store.Count(ctx, alumnistore.Filter{}); n != 0 {
		t.Errorf("expected 0 listed, got %d", n)
	}
	if err := store.Deactivate(ctx, primitive.NewObjectID()); err != alumnistore.ErrNotFound {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}

	active := true
	if _, err := store.Update(ctx, a.ID, alumnistore.Changes{IsActive: &active}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if _, err := store.GetActive(ctx, a.ID); err != nil {
		t.Errorf("restored entry should be visible, got %v", err)
	}
}

func TestStore_UpdateIsPartial(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := alumnistore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := create(t, ctx, store, models.Alumni{
		Name: "Ada", GraduationYear: "2020", CurrentCompany: "Acme", CurrentRole: "SWE",
		Location: "Pune",
	})

	company := "Globex"
	expertise := []string{"Go"}
	got, err := store.Update(ctx, a.ID, alumnistore.Changes{CurrentCompany: &company, Expertise: &expertise})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.CurrentCompany != "Globex" || len(got.Expertise) != 1 {
		t.Errorf("changes not applied: %+v", got)
	}
	if got.Location != "Pune" || got.Name != "Ada" {
		t.Errorf("untouched fields changed: %+v", got)
	}
	if !got.UpdatedAt.After(a.UpdatedAt) && !got.UpdatedAt.Equal(a.UpdatedAt) {
		t.Errorf("updated_at went backwards")
	}

	if _, err := store.Update(ctx, primitive.NewObjectID(), alumnistore.Changes{}); err != alumnistore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := alumnistore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	create(t, ctx, store, models.Alumni{Name: "Ada", CollegeName: "MIT", GraduationYear: "2020",
		CurrentCompany: "Acme Corp", CurrentRole: "Backend Engineer", Expertise: []string{"Go"}})
	create(t, ctx, store, models.Alumni{Name: "Grace", CollegeName: "Stanford", GraduationYear: "2021",
		CurrentCompany: "Globex", CurrentRole: "Data Scientist", Expertise: []string{"Python"}})
	gone := create(t, ctx, store, models.Alumni{Name: "Gone", CollegeName: "MIT", GraduationYear: "2020",
		CurrentCompany: "Acme", CurrentRole: "SRE"})
	if err := store.Deactivate(ctx, gone.ID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	tests := []struct {
		name   string
		filter alumnistore.Filter
		want   []string
	}{
		{"all active newest first", alumnistore.Filter{}, []string{"Grace", "Ada"}},
		{"company substring any case", alumnistore.Filter{Company: "acme"}, []string{"Ada"}},
		{"college", alumnistore.Filter{College: "stan"}, []string{"Grace"}},
		{"year exact", alumnistore.Filter{Year: "2020"}, []string{"Ada"}},
		{"year is not a substring match", alumnistore.Filter{Year: "202"}, nil},
		{"search role", alumnistore.Filter{Search: "scientist"}, []string{"Grace"}},
		{"search expertise", alumnistore.Filter{Search: "go"}, []string{"Ada"}},
		{"search metacharacters are literal", alumnistore.Filter{Search: ".*"}, nil},
		{"paging", alumnistore.Filter{Limit: 1, Offset: 1}, []string{"Ada"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := store.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(rows) != len(tt.want) {
				t.Fatalf("expected %v, got %d rows", tt.want, len(rows))
			}
			for i, name := range tt.want {
				if rows[i].Name != name {
					t.Errorf("row %d: expected %q, got %q", i, name, rows[i].Name)
				}
			}
		})
	}

	n, err := store.Count(ctx, alumnistore.Filter{College: "MIT", Limit: 1})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 active MIT entry, got %d", n)
	}
}

func TestStore_Stats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := alumnistore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats on empty collection failed: %v", err)
	}
	if stats.Total != 0 || stats.TopCompanies == nil || stats.ByYear == nil {
		t.Errorf("empty stats should have zero total and empty lists: %+v", stats)
	}

	for _, a := range []models.Alumni{
		{Name: "A", GraduationYear: "2020", CurrentCompany: "Acme", CurrentRole: "x"},
		{Name: "B", GraduationYear: "2021", CurrentCompany: "Acme", CurrentRole: "x"},
		{Name: "C", GraduationYear: "2021", CurrentCompany: "Globex", CurrentRole: "x"},
	} {
		create(t, ctx, store, a)
	}

	stats, err = store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("expected total 3, got %d", stats.Total)
	}
	if len(stats.TopCompanies) != 2 || stats.TopCompanies[0].Company != "Acme" || stats.TopCompanies[0].Count != 2 {
		t.Errorf("unexpected top companies: %+v", stats.TopCompanies)
	}
	if len(stats.ByYear) != 2 || stats.ByYear[0].Year != "2021" || stats.ByYear[0].Count != 2 {
		t.Errorf("unexpected years: %+v", stats.ByYear)
	}
}
