package pkgcat_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/pkgcat"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := pkgcat.Errorf(pkgcat.ENOTFOUND, "category %q not found", "astronomy")

	assert.Equal(t, pkgcat.ENOTFOUND, pkgcat.ErrorCode(err))
	assert.Equal(t, "category \"astronomy\" not found", pkgcat.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, pkgcat.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, pkgcat.ErrorMessage(nil))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("resolve: %w", pkgcat.Errorf(pkgcat.EINTERNAL, "asymmetric relation"))

	assert.Equal(t, pkgcat.EINTERNAL, pkgcat.ErrorCode(err))
	assert.Equal(t, "asymmetric relation", pkgcat.ErrorMessage(err))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("disk full")

	assert.Equal(t, pkgcat.EINTERNAL, pkgcat.ErrorCode(err))
	assert.Equal(t, "Internal error.", pkgcat.ErrorMessage(err))
}
