package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/grc-api/internal/models"
	apperrors "github.com/noah-isme/grc-api/pkg/errors"
)

// profileReader loads the role-specific profile behind a user account.
type profileReader interface {
	GetLecturerByUserID(ctx context.Context, userID string) (*models.Lecturer, error)
	SubjectIDsByLecturer(ctx context.Context, lecturerID string) ([]string, error)
	GetStudentByUserID(ctx context.Context, userID string) (*models.Student, error)
}

// IdentityService turns verified JWT claims into a fully resolved Actor.
type IdentityService struct {
	refs   profileReader
	logger *zap.Logger
}

// NewIdentityService constructs the service.
func NewIdentityService(refs profileReader, logger *zap.Logger) *IdentityService {
	return &IdentityService{refs: refs, logger: logger}
}

// Resolve attaches role-specific profile data to the authenticated identity.
// A lecturer without a profile row still gets a bare staff actor; a student
// without one is rejected, since every student operation needs the profile.
func (s *IdentityService) Resolve(ctx context.Context, claims *models.JWTClaims) (*models.Actor, error) {
	actor := &models.Actor{
		UserID:   claims.UserID,
		FullName: claims.FullName,
		Role:     claims.Role,
	}

	switch claims.Role {
	case models.RoleLecturer:
		lecturer, err := s.refs.GetLecturerByUserID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				s.logger.Warn("lecturer account without profile", zap.String("user_id", claims.UserID))
				return actor, nil
			}
			return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to resolve profile")
		}
		actor.IsHOD = lecturer.IsHOD
		if lecturer.IsHOD && lecturer.FieldID != nil {
			actor.HODFieldID = *lecturer.FieldID
		}
		actor.CelluleMember = lecturer.CelluleMember
		subjects, err := s.refs.SubjectIDsByLecturer(ctx, lecturer.ID)
		if err != nil {
			s.logger.Warn("lecturer subject lookup failed", zap.String("user_id", claims.UserID), zap.Error(err))
		} else {
			actor.SubjectIDs = subjects
		}
	case models.RoleStudent:
		student, err := s.refs.GetStudentByUserID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperrors.Clone(apperrors.ErrForbidden, "no student profile for this account")
			}
			return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to resolve profile")
		}
		actor.StudentID = student.ID
		actor.FullName = student.FullName
	}
	return actor, nil
}
