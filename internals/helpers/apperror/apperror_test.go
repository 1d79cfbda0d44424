package apperror

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestInternalKeepsCallerStack(t *testing.T) {
	err := Internal(fmt.Errorf("boom"), "load awards")

	assert.Equal(t, "internal: load awards: boom", err.Error())
	assert.Equal(t, err.Error(), fmt.Sprintf("%v", err))

	verbose := fmt.Sprintf("%+v", err)
	assert.Contains(t, verbose, "internal: load awards: boom")
	assert.Contains(t, verbose, "apperror_test.go")
	assert.Contains(t, verbose, "TestInternalKeepsCallerStack")
}

func TestFormatWithoutCause(t *testing.T) {
	err := StateConflict("team is locked", "awarded")
	assert.Equal(t, "state_conflict: team is locked", fmt.Sprintf("%+v", err))
	assert.Equal(t, `"state_conflict: team is locked"`, fmt.Sprintf("%q", err))
}

func TestFromDB(t *testing.T) {
	assert.Nil(t, FromDB(nil, "x"))
	assert.True(t, Is(FromDB(gorm.ErrRecordNotFound, "award not found"), KindNotFound))
	assert.True(t, Is(FromDB(gorm.ErrRecordNotFound, ""), KindInternal))
	assert.True(t, Is(FromDB(gorm.ErrDuplicatedKey, ""), KindValidation))
	assert.True(t, Is(FromDB(gorm.ErrForeignKeyViolated, ""), KindIntegrity))

	own := Permission("no")
	assert.Same(t, own, FromDB(own, ""))
}

func TestReferenceSortsMissing(t *testing.T) {
	err := Reference("", []string{"S2", "S1"})
	assert.Equal(t, []string{"S1", "S2"}, err.Missing)
	assert.Equal(t, "reference: unknown references: S1, S2", err.Error())
}
