package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		resource string
		wantCode string
	}{
		{"record not found product", fmt.Errorf("find: %w", gorm.ErrRecordNotFound), "product", ProductNotFound},
		{"record not found bundle", gorm.ErrRecordNotFound, "bundle", BundleNotFound},
		{"record not found other", gorm.ErrRecordNotFound, "order", ResourceNotFound},
		{"postgres duplicate email", fmt.Errorf(`ERROR: duplicate key value violates unique constraint "idx_users_email"`), "user", AuthEmailAlreadyExists},
		{"sqlite duplicate slug", fmt.Errorf("UNIQUE constraint failed: bundle_offers.slug"), "bundle", BundleSlugExists},
		{"still referenced", fmt.Errorf("update or delete violates foreign key constraint, key is still referenced"), "product", ResourceConflict},
		{"unknown", fmt.Errorf("boom"), "", InternalServerError},
		{"nil", nil, "", InternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, ParseError(tt.err, tt.resource).Code)
		})
	}
}
