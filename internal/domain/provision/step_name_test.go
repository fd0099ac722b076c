package provision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStepName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "single segment", input: "bootstrap"},
		{name: "area and action", input: "venv:create"},
		{name: "version", input: "pyenv:python:3.8.7"},
		{name: "module path", input: "pip:verify:google.cloud.storage"},
		{name: "package with hyphen", input: "pip:install:google-cloud-storage"},
		{name: "trims space", input: "  os:packages  "},
		{name: "empty", input: "   ", wantErr: ErrEmptyStepName},
		{name: "leading colon", input: ":packages", wantErr: ErrInvalidStepName},
		{name: "trailing colon", input: "os:", wantErr: ErrInvalidStepName},
		{name: "space inside", input: "os packages", wantErr: ErrInvalidStepName},
		{name: "shell meta", input: "os:packages;rm", wantErr: ErrInvalidStepName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewStepName(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, got.IsZero())
				return
			}
			require.NoError(t, err)
			assert.False(t, got.IsZero())
		})
	}
}

func TestStepName_Area(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pip", MustNewStepName("pip:install:requests").Area())
	assert.Equal(t, "bootstrap", MustNewStepName("bootstrap").Area())
}

func TestMustNewStepName_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { MustNewStepName("bad name") })
}

func TestStepName_MarshalText(t *testing.T) {
	t.Parallel()

	text, err := MustNewStepName("venv:create").MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "venv:create", string(text))
}
