package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"compaward_backend/internals/constants"
	"compaward_backend/internals/features/awards/applications/dto"
	"compaward_backend/internals/features/awards/applications/model"
	awardModel "compaward_backend/internals/features/awards/awards/model"
	awardService "compaward_backend/internals/features/awards/awards/service"
	catalogModel "compaward_backend/internals/features/competitions/catalog/model"
	catalogService "compaward_backend/internals/features/competitions/catalog/service"
	notifService "compaward_backend/internals/features/notifications/notifications/service"
	userService "compaward_backend/internals/features/users/users/service"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/apperror"
	"compaward_backend/internals/helpers/authz"
	"compaward_backend/internals/helpers/storage"
)

const msgApplicationNotFound = "award application not found"

// Service handles self-reported awards waiting for review.
type Service struct {
	DB       *gorm.DB
	Store    storage.BlobStore
	Notifier notifService.Notifier
	Awards   *awardService.Materializer
}

func NewService(db *gorm.DB, store storage.BlobStore, notifier notifService.Notifier) *Service {
	if notifier == nil {
		notifier = notifService.Nop{}
	}
	return &Service{
		DB:       db,
		Store:    store,
		Notifier: notifier,
		Awards:   awardService.NewMaterializer(store, userService.Resolver{}),
	}
}

func (s *Service) URL(key string) string {
	if s.Store == nil || key == "" {
		return ""
	}
	return s.Store.URL(key)
}

func parseDate(field, v string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(v), time.UTC)
	if err != nil {
		return time.Time{}, apperror.FieldError(field, field+" must be YYYY-MM-DD")
	}
	return d, nil
}

func (s *Service) storeImage(ctx context.Context, appID uuid.UUID, img dto.CertImage) (string, error) {
	if len(img.Data) == 0 || !constants.IsAllowedAttachment(img.Filename) {
		return "", apperror.FieldError("cert_image", "certificate image must be an image or a PDF")
	}
	data, ext, ctype, err := storage.NormalizeImage(img.Data, img.Filename, storage.DefaultWebPOptions())
	if err != nil {
		return "", apperror.Internal(err, "normalize certificate image")
	}
	key := storage.ApplicationKey(appID, "certificate"+ext)
	if err := storage.PutBytes(ctx, s.Store, key, data, ctype); err != nil {
		return "", apperror.Internal(err, "store certificate image")
	}
	return key, nil
}

/* ===================== READ ===================== */

func (s *Service) Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.AwardApplicationModel, error) {
	var m model.AwardApplicationModel
	if err := s.DB.WithContext(ctx).Preload("Applicant.Profile").First(&m, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, msgApplicationNotFound)
	}
	if m.ApplicantID != actor.UserID && !authz.Can(actor, constants.ActionApplicationViewAll) {
		return nil, apperror.NotFound(msgApplicationNotFound)
	}
	return &m, nil
}

// List: reviewers see every application, everyone else their own.
func (s *Service) List(ctx context.Context, actor authz.Actor, f dto.ApplicationFilter, p helper.Params) ([]model.AwardApplicationModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.AwardApplicationModel{})
	if !authz.Can(actor, constants.ActionApplicationViewAll) {
		q = q.Where("applicant_id = ?", actor.UserID)
	}
	if v := strings.TrimSpace(f.Status); v != "" {
		st, ok := model.ParseApplicationStatus(v)
		if !ok {
			return nil, 0, apperror.FieldError("status", "unknown application status")
		}
		q = q.Where("status = ?", st)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal(err, "count applications")
	}
	var rows []model.AwardApplicationModel
	if err := q.Preload("Applicant.Profile").
		Order("created_at DESC").
		Limit(p.Limit()).Offset(p.Offset()).
		Find(&rows).Error; err != nil {
		return nil, 0, apperror.Internal(err, "list applications")
	}
	return rows, total, nil
}

/* ===================== APPLICANT ===================== */

// Apply stores the scan and the pending application, then tells every
// competition administrator.
func (s *Service) Apply(ctx context.Context, actor authz.Actor, req dto.ApplyRequest, img dto.CertImage) (*model.AwardApplicationModel, error) {
	if err := req.Payload.Validate(); err != nil {
		return nil, err
	}
	date, err := parseDate("award_date", req.AwardDate)
	if err != nil {
		return nil, err
	}

	m := model.AwardApplicationModel{
		ID:          uuid.New(),
		ApplicantID: actor.UserID,
		CertNo:      req.CertNo,
		AwardLevel:  req.AwardLevel,
		AwardDate:   date,
		Payload:     datatypes.NewJSONType(req.Payload),
		Status:      model.ApplicationPending,
	}
	key, err := s.storeImage(ctx, m.ID, img)
	if err != nil {
		return nil, err
	}
	m.CertImageKey = key

	if err := s.DB.WithContext(ctx).Create(&m).Error; err != nil {
		storage.DeleteQuietly(context.WithoutCancel(ctx), s.Store, key)
		return nil, apperror.FromDB(err, "")
	}
	log.Printf("[APPLICATION] %s submitted by %s", m.ID, actor.UserID)

	admins, err := notifService.RecipientsWithRole(ctx, s.DB, constants.RoleCompetitionAdmin)
	if err != nil {
		log.Printf("[APPLICATION] load reviewers failed: %v", err)
	} else {
		sender := actor.UserID
		title := req.Payload.CompetitionTitle
		if title == "" && req.Payload.CompetitionID != nil {
			title = req.Payload.CompetitionID.String()
		}
		s.Notifier.Notify(ctx, notifService.Message{
			SenderID:    &sender,
			Recipients:  admins,
			Verb:        "submitted a new award application",
			Target:      &notifService.Target{Type: "award_application", ID: m.ID},
			Description: "Competition: " + title,
		})
	}
	return &m, nil
}

func (s *Service) lockOwn(tx *gorm.DB, actor authz.Actor, id uuid.UUID) (*model.AwardApplicationModel, error) {
	return findOwn(tx.Clauses(clause.Locking{Strength: "UPDATE"}), actor, id)
}

func findOwn(q *gorm.DB, actor authz.Actor, id uuid.UUID) (*model.AwardApplicationModel, error) {
	var m model.AwardApplicationModel
	if err := q.First(&m, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, msgApplicationNotFound)
	}
	if m.ApplicantID != actor.UserID {
		return nil, apperror.NotFound(msgApplicationNotFound)
	}
	return &m, nil
}

func editable(m *model.AwardApplicationModel) error {
	if m.Status != model.ApplicationPending {
		return apperror.StateConflict("reviewed applications cannot be changed", string(m.Status))
	}
	return nil
}

// Update is allowed to the applicant while the application is pending. A new
// scan replaces the stored one.
func (s *Service) Update(ctx context.Context, actor authz.Actor, id uuid.UUID, req dto.UpdateApplicationRequest, img *dto.CertImage) (*model.AwardApplicationModel, error) {
	updates := map[string]interface{}{}
	if req.CertNo != nil {
		updates["cert_no"] = strings.TrimSpace(*req.CertNo)
	}
	if req.AwardLevel != nil {
		updates["award_level"] = strings.TrimSpace(*req.AwardLevel)
	}
	if req.AwardDate != nil {
		d, err := parseDate("award_date", *req.AwardDate)
		if err != nil {
			return nil, err
		}
		updates["award_date"] = d
	}
	if req.Payload != nil {
		p := req.Payload.Normalized()
		if err := p.Validate(); err != nil {
			return nil, err
		}
		updates["payload"] = datatypes.NewJSONType(p)
	}

	var newKey, oldKey string
	if img != nil {
		// nothing is written under the application's prefix before the
		// caller is known to own a pending application
		m, err := findOwn(s.DB.WithContext(ctx), actor, id)
		if err != nil {
			return nil, err
		}
		if err := editable(m); err != nil {
			return nil, err
		}
		key, err := s.storeImage(ctx, id, *img)
		if err != nil {
			return nil, err
		}
		newKey = key
		updates["cert_image_key"] = key
	}
	if len(updates) == 0 {
		return nil, apperror.FieldError("fields", "nothing to update")
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.lockOwn(tx, actor, id)
		if err != nil {
			return err
		}
		if err := editable(m); err != nil {
			return err
		}
		if newKey != "" {
			oldKey = m.CertImageKey
		}
		return tx.Model(&model.AwardApplicationModel{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		if newKey != "" {
			storage.DeleteQuietly(context.WithoutCancel(ctx), s.Store, newKey)
		}
		return nil, apperror.FromDB(err, "")
	}
	if oldKey != "" && oldKey != newKey {
		storage.DeleteQuietly(context.WithoutCancel(ctx), s.Store, oldKey)
	}
	return s.Get(ctx, actor, id)
}

// Delete: the applicant may withdraw anything that has not been approved.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	var key string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.lockOwn(tx, actor, id)
		if err != nil {
			return err
		}
		if m.Status == model.ApplicationApproved {
			return apperror.StateConflict("approved applications cannot be deleted; contact an administrator", string(m.Status))
		}
		key = m.CertImageKey
		return tx.Delete(m).Error
	})
	if err != nil {
		return apperror.FromDB(err, "")
	}
	storage.DeleteQuietly(context.WithoutCancel(ctx), s.Store, key)
	log.Printf("[APPLICATION] %s withdrawn", id)
	return nil
}

/* ===================== REVIEW ===================== */

// ValidateReferences checks every id named by the payload and reports all
// misses in one reference error.
func ValidateReferences(ctx context.Context, tx *gorm.DB, p model.ApplicationPayload) error {
	var missing []string

	if p.CompetitionID != nil {
		var n int64
		if err := tx.Model(&catalogModel.CompetitionModel{}).Where("id = ?", *p.CompetitionID).Count(&n).Error; err != nil {
			return apperror.Internal(err, "check competition")
		}
		if n == 0 {
			missing = append(missing, "competition:"+p.CompetitionID.String())
		}
	} else {
		refs, err := catalogService.MissingCatalogRefs(tx, p.CategoryID, p.LevelID)
		if err != nil {
			return err
		}
		missing = append(missing, refs...)
	}

	for _, ids := range [][]string{p.ParticipantIDs, p.InstructorIDs} {
		if _, err := userService.ResolveByInstitutionalIDs(ctx, tx, ids); err != nil {
			ae, ok := apperror.As(err)
			if !ok || ae.Kind != apperror.KindReference {
				return err
			}
			missing = append(missing, ae.Missing...)
		}
	}

	if len(missing) > 0 {
		return apperror.Reference("unknown references", missing)
	}
	return nil
}

func pendingGuard(m *model.AwardApplicationModel) error {
	if m.Status != model.ApplicationPending {
		return apperror.StateConflict("the application has already been reviewed", string(m.Status))
	}
	return nil
}

func lockApplication(tx *gorm.DB, id uuid.UUID) (*model.AwardApplicationModel, error) {
	var m model.AwardApplicationModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, msgApplicationNotFound)
	}
	return &m, nil
}

// approveGuard locks the application, requires it to be pending and unchanged
// since read was loaded, and checks every id its payload names.
func approveGuard(ctx context.Context, read *model.AwardApplicationModel) func(tx *gorm.DB) error {
	return func(tx *gorm.DB) error {
		locked, err := lockApplication(tx, read.ID)
		if err != nil {
			return err
		}
		if err := pendingGuard(locked); err != nil {
			return err
		}
		if !locked.UpdatedAt.Equal(read.UpdatedAt) {
			return apperror.StateConflict("the application was edited during review, try again", string(locked.Status))
		}
		return ValidateReferences(ctx, tx, locked.Payload.Data())
	}
}

// Approve turns a pending application into an award with its certificate.
func (s *Service) Approve(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.AwardApplicationModel, error) {
	if err := authz.Require(actor, constants.ActionApplicationReview); err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)

	var app model.AwardApplicationModel
	if err := db.First(&app, "id = ?", id).Error; err != nil {
		return nil, apperror.FromDB(err, msgApplicationNotFound)
	}
	if err := pendingGuard(&app); err != nil {
		return nil, err
	}
	p := app.Payload.Data()
	applicant := app.ApplicantID

	res, err := s.Awards.Materialize(ctx, s.DB, awardService.Input{
		Competition: catalogService.CompetitionSeed{
			ID:          p.CompetitionID,
			Title:       p.CompetitionTitle,
			Year:        p.Year,
			CategoryID:  p.CategoryID,
			LevelID:     p.LevelID,
			Description: p.Description,
			URI:         p.URI,
			CreatorID:   &applicant,
		},
		CertNo:         app.CertNo,
		SourceKey:      app.CertImageKey,
		AwardLevel:     app.AwardLevel,
		AwardDate:      app.AwardDate,
		CreatorID:      &applicant,
		ParticipantIDs: p.ParticipantIDs,
		InstructorIDs:  p.InstructorIDs,
		Guard:          approveGuard(ctx, &app),
		MarkSource: func(tx *gorm.DB, award *awardModel.AwardModel) error {
			r := tx.Model(&model.AwardApplicationModel{}).
				Where("id = ? AND status = ?", id, model.ApplicationPending).
				Updates(map[string]interface{}{
					"status":   model.ApplicationApproved,
					"award_id": award.ID,
				})
			if r.Error != nil {
				return apperror.Internal(r.Error, "mark application approved")
			}
			if r.RowsAffected == 0 {
				return apperror.StateConflict("the application was reviewed concurrently", string(model.ApplicationPending))
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[APPLICATION] %s approved as award %s", id, res.Award.ID)
	sender := actor.UserID
	s.Notifier.Notify(ctx, notifService.Message{
		SenderID:   &sender,
		Recipients: []uuid.UUID{applicant},
		Verb:       "your award application was approved and recorded",
		Target:     &notifService.Target{Type: "award", ID: res.Award.ID},
	})
	return s.Get(ctx, actor, id)
}

func (s *Service) Reject(ctx context.Context, actor authz.Actor, id uuid.UUID, remark string) (*model.AwardApplicationModel, error) {
	if err := authz.Require(actor, constants.ActionApplicationReview); err != nil {
		return nil, err
	}
	var applicant uuid.UUID
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := lockApplication(tx, id)
		if err != nil {
			return err
		}
		if err := pendingGuard(m); err != nil {
			return err
		}
		r := tx.Model(&model.AwardApplicationModel{}).
			Where("id = ? AND status = ?", id, model.ApplicationPending).
			Updates(map[string]interface{}{
				"status":       model.ApplicationRejected,
				"admin_remark": strings.TrimSpace(remark),
			})
		if r.Error != nil {
			return apperror.Internal(r.Error, "reject application")
		}
		if r.RowsAffected == 0 {
			return apperror.StateConflict("the application was reviewed concurrently", string(m.Status))
		}
		applicant = m.ApplicantID
		return nil
	})
	if err != nil {
		return nil, err
	}

	sender := actor.UserID
	desc := ""
	if r := strings.TrimSpace(remark); r != "" {
		desc = fmt.Sprintf("Remark: %s", r)
	}
	s.Notifier.Notify(ctx, notifService.Message{
		SenderID:    &sender,
		Recipients:  []uuid.UUID{applicant},
		Verb:        "your award application was returned",
		Target:      &notifService.Target{Type: "award_application", ID: id},
		Description: desc,
	})
	return s.Get(ctx, actor, id)
}
