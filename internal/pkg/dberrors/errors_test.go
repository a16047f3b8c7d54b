package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "sections_enrollment_code_key"})
	serial := &pgconn.PgError{Code: "40001"}

	assert.True(t, IsUniqueViolation(unique))
	assert.True(t, IsDuplicateConstraintError(unique, "sections_enrollment_code_key"))
	assert.False(t, IsDuplicateConstraintError(unique, "other"))
	assert.False(t, IsForeignKeyViolation(unique))
	assert.True(t, IsRetryable(serial))
	assert.False(t, IsRetryable(errors.New("boom")))
}
