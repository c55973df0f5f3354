package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cctvmap/pkg/model"
)

func TestCategoriesConfig_Resolve(t *testing.T) {
	tests := []struct {
		name    string
		cfg     CategoriesConfig
		wantLen int
		wantErr bool
	}{
		{name: "Emergency", cfg: CategoriesConfig{Set: "emergency"}, wantLen: 8},
		{name: "Commerce", cfg: CategoriesConfig{Set: "commerce"}, wantLen: 6},
		{name: "UnknownSet", cfg: CategoriesConfig{Set: "zoo"}, wantErr: true},
		{name: "HiddenOutsideSet", cfg: CategoriesConfig{Set: "emergency", Hidden: []string{"gas"}}, wantErr: true},
		{name: "HiddenUnknown", cfg: CategoriesConfig{Set: "emergency", Hidden: []string{"bakery"}}, wantErr: true},
		{name: "HiddenValid", cfg: CategoriesConfig{Set: "emergency", Hidden: []string{"Prison"}}, wantLen: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.Resolve()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestCategoriesConfig_Active(t *testing.T) {
	cfg := CategoriesConfig{Set: "emergency", Hidden: []string{"prison", "impound"}}

	active, err := cfg.Active()
	require.NoError(t, err)
	assert.Len(t, active, 6)
	assert.NotContains(t, active, model.CategoryPrison)
	assert.NotContains(t, active, model.CategoryImpound)
	assert.Equal(t, model.CategoryGovernment, active[0])
}
