package errors_test

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/kodepos-id/kodepos/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "village",
			ID:       "3273010001",
		}
		assert.Equal(t, "village with ID 3273010001 not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("postal code", "40111")
		wrapped := errors.Join(errors.New("lookup failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "confidence",
			Message: "must be within [0,1]",
		}
		assert.Equal(t, "validation failed for field confidence: must be within [0,1]", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "empty precedence chain"}
		assert.Equal(t, "validation failed: empty precedence chain", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})
}

func TestConfigError(t *testing.T) {
	cause := errors.New("no such file or directory")
	err := pkgerrors.NewConfigError("regions", "missing input regions_id.csv", cause)

	assert.Equal(t, "configuration error in regions: missing input regions_id.csv", err.Error())
	assert.True(t, pkgerrors.IsConfigError(err))
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("build: %w", err)
	var cfgErr *pkgerrors.ConfigError
	require.True(t, errors.As(wrapped, &cfgErr))
	assert.Equal(t, "regions", cfgErr.Component)
}

func TestSchemaError(t *testing.T) {
	err := pkgerrors.NewSchemaError("regions_id.csv", []string{"village_name", "village_type"})
	assert.Equal(t, "regions_id.csv missing columns: village_name, village_type", err.Error())
	assert.True(t, pkgerrors.IsSchemaError(fmt.Errorf("load: %w", err)))
	assert.False(t, pkgerrors.IsConfigError(err))
}

func TestDuplicateError(t *testing.T) {
	tests := []struct {
		name string
		err  *pkgerrors.DuplicateError
		want string
	}{
		{
			name: "with line",
			err:  &pkgerrors.DuplicateError{Artifact: "regions_id.csv", ID: "1101012001", Line: 7},
			want: "duplicate identifier 1101012001 in regions_id.csv at line 7",
		},
		{
			name: "without line",
			err:  &pkgerrors.DuplicateError{Artifact: "regions_id.csv", ID: "1101012001"},
			want: "duplicate identifier 1101012001 in regions_id.csv",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, pkgerrors.ErrDuplicate)
		})
	}
}

func TestParseError(t *testing.T) {
	t.Run("file and line", func(t *testing.T) {
		err := &pkgerrors.ParseError{Format: "csv", File: "a.csv", Line: 3, Message: "bare quote"}
		assert.Equal(t, "parse error in csv at a.csv:3: bare quote", err.Error())
	})

	t.Run("file only", func(t *testing.T) {
		err := pkgerrors.NewParseError("json", "postal_codes.json", "unexpected EOF", nil)
		assert.Equal(t, "parse error in json file postal_codes.json: unexpected EOF", err.Error())
	})

	t.Run("no file", func(t *testing.T) {
		err := pkgerrors.NewParseError("yaml", "", "bad indent", nil)
		assert.Equal(t, "yaml parse error: bad indent", err.Error())
	})
}

func TestWrapHelpers(t *testing.T) {
	assert.Nil(t, pkgerrors.WrapIO("read", "x", nil))
	assert.Nil(t, pkgerrors.WrapParse("csv", "x", nil))
	assert.Nil(t, pkgerrors.WrapValidation("f", nil))

	cause := errors.New("disk full")
	err := pkgerrors.WrapIO("write", "out/postal_codes.csv", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "IO error during write of out/postal_codes.csv")

	perr := pkgerrors.WrapParse("jsonl", "lookup.jsonl", cause)
	assert.ErrorIs(t, perr, cause)

	verr := pkgerrors.WrapValidation("year", cause)
	assert.True(t, pkgerrors.IsValidationError(verr))
}
