package service

import (
	"context"

	"github.com/noah-isme/grc-api/internal/models"
	apperrors "github.com/noah-isme/grc-api/pkg/errors"
)

// referenceLister reads the cached reference lists.
type referenceLister interface {
	ListClassLevels(ctx context.Context) ([]models.ClassLevel, error)
	ListFields(ctx context.Context) ([]models.Field, error)
	ListAxes(ctx context.Context, fieldID string) ([]models.Axis, error)
	ListSubjects(ctx context.Context, fieldID string) ([]models.Subject, error)
}

// ReferenceService exposes the academic reference data used to fill the
// request intake form.
type ReferenceService struct {
	store referenceLister
}

// NewReferenceService constructs the service.
func NewReferenceService(store referenceLister) *ReferenceService {
	return &ReferenceService{store: store}
}

func (s *ReferenceService) ClassLevels(ctx context.Context) ([]models.ClassLevel, error) {
	levels, err := s.store.ListClassLevels(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to list class levels")
	}
	return levels, nil
}

func (s *ReferenceService) Fields(ctx context.Context) ([]models.Field, error) {
	fields, err := s.store.ListFields(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to list fields")
	}
	return fields, nil
}

func (s *ReferenceService) Axes(ctx context.Context, fieldID string) ([]models.Axis, error) {
	axes, err := s.store.ListAxes(ctx, fieldID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to list axes")
	}
	return axes, nil
}

func (s *ReferenceService) Subjects(ctx context.Context, fieldID string) ([]models.Subject, error) {
	subjects, err := s.store.ListSubjects(ctx, fieldID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}
