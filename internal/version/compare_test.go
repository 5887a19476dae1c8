package version

import (
	"testing"

	"github.com/rxtech-lab/argo-signal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConfigCompatibility(t *testing.T) {
	tests := []struct {
		name          string
		binaryVersion string
		configVersion string
		expectError   bool
		errorContains string
	}{
		{
			name:          "exact match",
			binaryVersion: "1.2.0",
			configVersion: "1.2.0",
		},
		{
			name:          "binary patch higher",
			binaryVersion: "1.2.3",
			configVersion: "1.2.0",
		},
		{
			name:          "config patch higher",
			binaryVersion: "1.2.0",
			configVersion: "1.2.5",
		},
		{
			name:          "v prefix",
			binaryVersion: "v0.3.0",
			configVersion: "v0.3.1",
		},
		{
			name:          "older config minor",
			binaryVersion: "1.4.0",
			configVersion: "1.2.9",
			expectError:   true,
			errorContains: "minor version mismatch",
		},
		{
			name:          "newer config minor",
			binaryVersion: "1.2.0",
			configVersion: "1.3.0",
			expectError:   true,
			errorContains: "minor version mismatch",
		},
		{
			name:          "major differs",
			binaryVersion: "2.0.0",
			configVersion: "1.2.0",
			expectError:   true,
			errorContains: "major version mismatch",
		},
		{
			name:          "development binary",
			binaryVersion: "main",
			configVersion: "9.9.9",
		},
		{
			name:          "development config",
			binaryVersion: "1.0.0",
			configVersion: "main",
		},
		{
			name:          "unversioned config",
			binaryVersion: "1.0.0",
			configVersion: "",
		},
		{
			name:          "invalid binary version",
			binaryVersion: "not-a-version",
			configVersion: "1.0.0",
			expectError:   true,
			errorContains: "invalid binary version",
		},
		{
			name:          "invalid config version",
			binaryVersion: "1.0.0",
			configVersion: "x.y",
			expectError:   true,
			errorContains: "invalid config version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckConfigCompatibility(tt.binaryVersion, tt.configVersion)
			if !tt.expectError {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
			assert.True(t, errors.HasCode(err, errors.ErrCodeVersionMismatch))
		})
	}
}

func TestGetVersion(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	Version = "v1.2.3"
	assert.Equal(t, "v1.2.3", GetVersion())
}
