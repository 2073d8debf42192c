package db

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"gorm.io/gorm"
)

type SessionRepo struct {
	db *DbDao
}

func NewSessionRepo(db *DbDao) *SessionRepo {
	return &SessionRepo{db: db}
}

func (s *SessionRepo) CreateSession(ctx context.Context, session *model.Session) error {
	return s.db.WithContext(ctx).Create(session).Error
}

func (s *SessionRepo) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// RevokeUserSessions 撤銷該使用者所有尚未撤銷的session
func (s *SessionRepo) RevokeUserSessions(ctx context.Context, userID uint, at time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.Session{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", at)
	return res.RowsAffected, res.Error
}
