package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"compaward_backend/internals/features/awards/awards/dto"
	awardModel "compaward_backend/internals/features/awards/awards/model"
	catalogModel "compaward_backend/internals/features/competitions/catalog/model"
	eventModel "compaward_backend/internals/features/competitions/events/model"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/apperror"
	"compaward_backend/internals/helpers/dbtime"
)

const msgAwardNotFound = "award not found"

// Service handles awards created by hand, outside the team and application flows.
type Service struct {
	DB    *gorm.DB
	Users UserResolver
}

func NewService(db *gorm.DB, users UserResolver) *Service {
	return &Service{DB: db, Users: users}
}

func preloadAward(q *gorm.DB) *gorm.DB {
	return q.Preload("Competition").
		Preload("Certificate").
		Preload("Participants.Profile").
		Preload("Instructors.Profile")
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*awardModel.AwardModel, error) {
	var a awardModel.AwardModel
	if err := preloadAward(s.DB.WithContext(ctx)).First(&a, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, msgAwardNotFound)
	}
	return &a, nil
}

var awardSortable = map[string]string{
	"award_date": "awards.award_date",
	"created_at": "awards.created_at",
	"level":      "awards.award_level",
}

func (s *Service) List(ctx context.Context, f dto.AwardFilter, p helper.Params) ([]awardModel.AwardModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&awardModel.AwardModel{})
	if f.CompetitionID != nil {
		q = q.Where("awards.competition_id = ?", *f.CompetitionID)
	}
	if f.EventID != nil {
		q = q.Where("awards.event_id = ?", *f.EventID)
	}
	if lv := strings.TrimSpace(f.AwardLevel); lv != "" {
		q = q.Where("awards.award_level = ?", lv)
	}
	if f.Year > 0 {
		q = q.Where("awards.award_year = ?", f.Year)
	}
	if pid := strings.TrimSpace(f.Participant); pid != "" {
		q = q.Where(`awards.id IN (
			SELECT ap.award_id FROM award_participants ap
			JOIN users u ON u.id = ap.participant_id
			WHERE u.institutional_id = ?)`, pid)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal(err, "count awards")
	}
	var rows []awardModel.AwardModel
	if err := preloadAward(q).
		Order(p.OrderClause(awardSortable, "award_date")).
		Order("awards.created_at DESC").
		Limit(p.Limit()).Offset(p.Offset()).
		Find(&rows).Error; err != nil {
		return nil, 0, apperror.Internal(err, "list awards")
	}
	return rows, total, nil
}

func parseDate(field, s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, apperror.FieldError(field, field+" must be YYYY-MM-DD")
	}
	return t, nil
}

// Create records an award without a certificate.
func (s *Service) Create(ctx context.Context, creatorID uuid.UUID, req dto.CreateAwardRequest) (*awardModel.AwardModel, error) {
	date, err := parseDate("award_date", req.AwardDate)
	if err != nil {
		return nil, err
	}

	var id uuid.UUID
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var missing []string
		var n int64
		if err := tx.Model(&catalogModel.CompetitionModel{}).Where("id = ?", req.CompetitionID).Count(&n).Error; err != nil {
			return apperror.Internal(err, "check competition")
		}
		if n == 0 {
			missing = append(missing, "competition:"+req.CompetitionID.String())
		}
		if req.EventID != nil {
			if err := tx.Model(&eventModel.CompetitionEventModel{}).Where("id = ?", *req.EventID).Count(&n).Error; err != nil {
				return apperror.Internal(err, "check event")
			}
			if n == 0 {
				missing = append(missing, "event:"+req.EventID.String())
			}
		}

		m := &Materializer{Users: s.Users}
		participants, instructors, err := m.resolvePeople(ctx, tx, req.ParticipantIDs, req.InstructorIDs)
		if err != nil {
			ae, ok := apperror.As(err)
			if !ok || ae.Kind != apperror.KindReference {
				return err
			}
			missing = append(missing, ae.Missing...)
		}
		if len(missing) > 0 {
			return apperror.Reference("unknown references", missing)
		}

		creator := creatorID
		a := awardModel.AwardModel{
			CompetitionID: req.CompetitionID,
			EventID:       req.EventID,
			AwardLevel:    req.AwardLevel,
			AwardDate:     dbtime.DateOnly(date),
			CreatorID:     &creator,
		}
		if err := tx.Create(&a).Error; err != nil {
			return apperror.FromDB(err, "")
		}
		id = a.ID
		return AttachPeople(tx, a.ID, participants, instructors)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[AWARD] created %s by %s", id, creatorID)
	return s.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req dto.UpdateAwardRequest) (*awardModel.AwardModel, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a awardModel.AwardModel
		if err := tx.First(&a, "id = ?", id).Error; err != nil {
			return apperror.FromDB(err, msgAwardNotFound)
		}

		if req.AwardLevel != nil {
			a.AwardLevel = strings.TrimSpace(*req.AwardLevel)
		}
		if req.AwardDate != nil {
			d, err := parseDate("award_date", *req.AwardDate)
			if err != nil {
				return err
			}
			a.AwardDate = dbtime.DateOnly(d)
		}
		// Save runs BeforeSave, keeping award_year in step.
		if err := tx.Omit("Participants", "Instructors", "Competition", "Event", "Certificate").Save(&a).Error; err != nil {
			return apperror.FromDB(err, "")
		}

		if req.ParticipantIDs != nil || req.InstructorIDs != nil {
			m := &Materializer{Users: s.Users}
			participants, instructors, err := m.resolvePeople(ctx, tx, req.ParticipantIDs, req.InstructorIDs)
			if err != nil {
				return err
			}
			if req.ParticipantIDs != nil {
				if err := tx.Exec("DELETE FROM award_participants WHERE award_id = ?", a.ID).Error; err != nil {
					return apperror.Internal(err, "clear participants")
				}
				if err := insertLinks(tx, awardModel.TableAwardParticipants, "participant_id", a.ID, participants); err != nil {
					return err
				}
			}
			if req.InstructorIDs != nil {
				if err := tx.Exec("DELETE FROM award_instructors WHERE award_id = ?", a.ID).Error; err != nil {
					return apperror.Internal(err, "clear instructors")
				}
				if err := insertLinks(tx, awardModel.TableAwardInstructors, "instructor_id", a.ID, instructors); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the award and its people links. A linked certificate stays and
// can be deleted on its own afterwards.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a awardModel.AwardModel
		if err := tx.First(&a, "id = ?", id).Error; err != nil {
			return apperror.FromDB(err, msgAwardNotFound)
		}
		if err := tx.Exec("DELETE FROM award_participants WHERE award_id = ?", id).Error; err != nil {
			return apperror.Internal(err, "clear participants")
		}
		if err := tx.Exec("DELETE FROM award_instructors WHERE award_id = ?", id).Error; err != nil {
			return apperror.Internal(err, "clear instructors")
		}
		// teams and applications point here with ON DELETE SET NULL
		if err := tx.Table("teams").Where("converted_award_id = ?", id).Update("converted_award_id", nil).Error; err != nil {
			return apperror.Internal(err, "detach teams")
		}
		if err := tx.Table("award_applications").Where("award_id = ?", id).Update("award_id", nil).Error; err != nil {
			return apperror.Internal(err, "detach applications")
		}
		if err := tx.Delete(&a).Error; err != nil {
			return apperror.FromDB(err, "")
		}
		log.Printf("[AWARD] deleted %s", id)
		return nil
	})
}
