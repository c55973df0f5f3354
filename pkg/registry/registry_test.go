package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cctvmap/pkg/model"
)

func fixture() []model.Location {
	return []model.Location{
		{ID: "gov-01", Name: "Mission Row", Category: model.CategoryPolice, Enabled: true},
		{ID: "fire-01", Name: "Paleto Bay Fire Station", Category: model.CategoryFire, Enabled: true},
		{ID: "hosp-01", Name: "The Bay Care Center", Category: model.CategoryHospital, Enabled: false},
		{ID: "gov-02", Name: "Vespucci Headquarters", Category: model.CategoryPolice, Enabled: true},
	}
}

func TestLoad_PreservesOrder(t *testing.T) {
	r := New()
	r.Load(fixture())

	all := r.All()
	require.Len(t, all, 4)
	for i, want := range []string{"gov-01", "fire-01", "hosp-01", "gov-02"} {
		assert.Equal(t, want, all[i].ID)
	}
	assert.Equal(t, 4, r.Len())
}

func TestLoad_CopiesInput(t *testing.T) {
	in := fixture()
	r := New()
	r.Load(in)

	in[0].Name = "mutated"
	got, ok := r.Get("gov-01")
	require.True(t, ok)
	assert.Equal(t, "Mission Row", got.Name)

	out := r.All()
	out[0].Name = "mutated again"
	got, _ = r.Get("gov-01")
	assert.Equal(t, "Mission Row", got.Name)
}

func TestLoad_ReplacesDataset(t *testing.T) {
	r := New()
	r.Load(fixture())
	r.Load([]model.Location{{ID: "only", Category: model.CategoryFire}})

	assert.Equal(t, 1, r.Len())
	_, ok := r.Get("gov-01")
	assert.False(t, ok)
}

func TestToggleEnabled(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		wantChanged bool
	}{
		{name: "KnownID", id: "fire-01", wantChanged: true},
		{name: "UnknownID", id: "nope", wantChanged: false},
		{name: "CaseSensitive", id: "FIRE-01", wantChanged: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			r.Load(fixture())
			before := r.All()
			v := r.Version()

			changed := r.ToggleEnabled(tt.id)
			assert.Equal(t, tt.wantChanged, changed)

			after := r.All()
			for i := range before {
				if before[i].ID == tt.id && tt.wantChanged {
					assert.Equal(t, !before[i].Enabled, after[i].Enabled)
					continue
				}
				assert.Equal(t, before[i], after[i])
			}
			if tt.wantChanged {
				assert.Greater(t, r.Version(), v)
			} else {
				assert.Equal(t, v, r.Version())
			}
		})
	}
}

func TestToggleEnabled_Involution(t *testing.T) {
	r := New()
	r.Load(fixture())
	before := r.All()

	r.ToggleEnabled("hosp-01")
	r.ToggleEnabled("hosp-01")

	assert.Equal(t, before, r.All())
}

func TestCounts(t *testing.T) {
	r := New()
	r.Load(fixture())

	counts := r.Counts()
	assert.Equal(t, CategoryCount{Total: 2, Enabled: 2}, counts[model.CategoryPolice])
	assert.Equal(t, CategoryCount{Total: 1, Enabled: 0}, counts[model.CategoryHospital])
	assert.Equal(t, CategoryCount{}, counts[model.CategoryPrison])
}

func TestConcurrentAccess(t *testing.T) {
	r := New()
	r.Load(fixture())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.ToggleEnabled(fmt.Sprintf("gov-0%d", i%2+1))
		}(i)
		go func() {
			defer wg.Done()
			assert.Len(t, r.All(), 4)
		}()
	}
	wg.Wait()

	// eight toggles spread evenly over two ids leave the flags unchanged
	assert.Equal(t, fixture(), r.All())
}
