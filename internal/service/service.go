package service

import (
	"database/sql"
	"errors"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/segyhp/gym-membership/internal/repository"
	customError "github.com/segyhp/gym-membership/pkg/errors"
)

var tracer = otel.Tracer("gym-membership/service")

// Clock returns the current instant; tests replace it
type Clock func() time.Time

// storeError maps a repository failure onto the error the caller should see.
// Business errors pass through untouched.
func storeError(err error, entity, id string) error {
	if err == nil {
		return nil
	}

	var bizErr *customError.BusinessError
	if errors.As(err, &bizErr) {
		return err
	}

	switch {
	case errors.Is(err, repository.ErrVersionConflict), repository.IsSerializationFailure(err):
		return customError.WrapConcurrentModification(entity, id)
	case repository.IsUniqueViolation(err):
		return customError.WrapDuplicateMember()
	case repository.IsConnectionFailure(err):
		return customError.WrapStoreUnavailable(err)
	default:
		return customError.WrapDatabaseError(err)
	}
}

// notFound converts sql.ErrNoRows into the entity's not-found error
func notFound(err error, wrap func(string) *customError.BusinessError, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return wrap(id)
	}
	return err
}
