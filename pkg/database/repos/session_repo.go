package repos

import (
	"github.com/tauraamui/camdoubler/pkg/database/dbconn"
	"github.com/tauraamui/camdoubler/pkg/database/models"
	"github.com/tauraamui/xerror"
)

type SessionRepository struct {
	DB dbconn.GormWrapper
}

func (r *SessionRepository) Create(session *models.Session) error {
	return r.DB.Create(session).Error()
}

func (r *SessionRepository) FindByUUID(uuid string) (models.Session, error) {
	session := models.Session{}
	if err := r.DB.Where("uuid = ?", uuid).First(&session).Error(); err != nil {
		return session, xerror.Errorf("session of uuid %s not found", uuid)
	}

	return session, nil
}

// Recent returns up to limit sessions, most recently started first.
func (r *SessionRepository) Recent(limit int) ([]models.Session, error) {
	sessions := []models.Session{}
	if err := r.DB.Order("started_at desc").Limit(limit).Find(&sessions).Error(); err != nil {
		return nil, xerror.Errorf("unable to list recent sessions: %w", err)
	}

	return sessions, nil
}
