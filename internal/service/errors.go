package service

import (
	"errors"

	"github.com/spec-kit/complaint-service/internal/policy"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/validation"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

const (
	msgComplaintNotFound = "Complaint"
	msgForbidden         = "Access forbidden"
	msgUnauthenticated   = "Unauthorized"
)

// translate maps validation and repository failures onto the client-facing taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fieldErrs validation.FieldErrors
	if errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(fieldErrs.First(), fieldErrs.Details())
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(msgComplaintNotFound)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict("Resource already exists")
	case errors.Is(err, repository.ErrStoreUnavailable):
		return apperrors.NewStoreUnavailable(err)
	}
	return apperrors.NewInternalError(err)
}

func denial(reason policy.Reason) error {
	switch reason {
	case policy.ReasonUnauthenticated:
		return apperrors.NewUnauthenticated(msgUnauthenticated)
	case policy.ReasonNotFound:
		return apperrors.NewNotFound(msgComplaintNotFound)
	case policy.ReasonForbidden, policy.ReasonNone:
		return apperrors.NewForbidden(msgForbidden)
	}
	return apperrors.NewForbidden(msgForbidden)
}
