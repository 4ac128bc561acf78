package errors

import (
	"os"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		exp  Kind
	}{
		{
			name: "Plain error",
			err:  New("boom"),
			exp:  KindUnknown,
		},
		{
			name: "Direct",
			err:  E(ReadError, "hash", "/a", os.ErrNotExist),
			exp:  ReadError,
		},
		{
			name: "Wrapped with context",
			err:  WithContext(E(PackageError, "pack", "/a.zip", nil), "build release"),
			exp:  PackageError,
		},
		{
			name: "First of several",
			err: multierror.Append(nil,
				E(WriteError, "copy", "/dst/a", os.ErrExist),
				E(ReadError, "copy", "/src/b", os.ErrPermission)),
			exp: WriteError,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.exp, KindOf(test.err))
		})
	}
}

func TestIs(t *testing.T) {
	merr := multierror.Append(nil,
		E(WriteError, "copy", "/dst/a", os.ErrExist),
		WithContext(E(ReadError, "copy", "/src/b", os.ErrPermission), "subdir"))

	assert.True(t, Is(merr, WriteError))
	assert.True(t, Is(merr, ReadError))
	assert.False(t, Is(merr, UnpackError))
	assert.False(t, Is(nil, WriteError))

	// The underlying reason is still reachable.
	assert.True(t, IsError(merr, os.ErrExist))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, `copy "/dst/a": file already exists`,
		E(WriteError, "copy", "/dst/a", os.ErrExist).Error())
	assert.Equal(t, "probe", E(LockedOrUnavailable, "probe", "", nil).Error())
}

func TestRootCause(t *testing.T) {
	err := WithContext(E(ReadError, "hash", "/a", ErrFileChanged), "build manifest")
	assert.Equal(t, ErrFileChanged, RootCause(err))
	assert.Equal(t, ErrFileChanged, RootCause(ErrFileChanged))
}

func TestGetPrintableMessage(t *testing.T) {
	friendly := NewFriendlyError("Config %q is invalid.", "/cfg")
	assert.Equal(t, `Config "/cfg" is invalid.`,
		GetPrintableMessage(WithContext(friendly, "parse")))
	assert.Equal(t, "parse: boom", GetPrintableMessage(WithContext(New("boom"), "parse")))
}
