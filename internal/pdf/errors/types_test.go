package errors

import (
	stderrors "errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingAsset(t *testing.T) {
	err := MissingAsset("template", "/srv/assets/template.pdf", fs.ErrNotExist)

	assert.Equal(t, "[MISSING_ASSET] template not found: /srv/assets/template.pdf", err.Error())
	assert.True(t, stderrors.Is(err, fs.ErrNotExist))
	assert.True(t, err.IsFatal())
	assert.False(t, err.Recoverable)

	var fe *FormError
	require.True(t, stderrors.As(error(err), &fe))
	assert.Equal(t, ErrorTypeMissingAsset, fe.Type)
}

func TestErrorType_Recoverable(t *testing.T) {
	recoverable := []ErrorType{
		ErrorTypeMalformedInput, ErrorTypeUnresolvedField,
		ErrorTypeOutOfRangePage, ErrorTypeInvalidPlacement,
	}
	for _, et := range recoverable {
		assert.True(t, et.IsRecoverable(), et.String())
	}
	assert.False(t, ErrorTypeMissingAsset.IsRecoverable())
	assert.False(t, ErrorTypeRenderFailed.IsRecoverable())
	assert.Equal(t, "UNKNOWN", ErrorType(99).String())
}

func TestErrorCollection(t *testing.T) {
	ec := NewErrorCollection()
	assert.Equal(t, "No errors or warnings", ec.Summary())

	ec.Add(NewFormError(ErrorTypeOutOfRangePage, "page 3 of 2").WithField("sig").WithPage(3))
	ec.Add(NewFormError(ErrorTypeUnresolvedField, "no value").WithField("birth"))
	ec.Add(nil)

	errs, warns := ec.Count()
	assert.Equal(t, 0, errs)
	assert.Equal(t, 2, warns)
	assert.False(t, ec.HasFatalErrors())
	assert.Equal(t, 1, ec.CountByType()[ErrorTypeOutOfRangePage])

	ec.Add(NewFormError(ErrorTypeRenderFailed, "boom"))
	assert.Equal(t, "Found 1 error(s) and 2 warning(s) (including fatal errors)", ec.Summary())
}
