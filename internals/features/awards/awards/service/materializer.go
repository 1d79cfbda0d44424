package service

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	awardModel "compaward_backend/internals/features/awards/awards/model"
	certModel "compaward_backend/internals/features/awards/certificates/model"
	catalogService "compaward_backend/internals/features/competitions/catalog/service"
	userModel "compaward_backend/internals/features/users/users/model"
	"compaward_backend/internals/helpers/apperror"
	"compaward_backend/internals/helpers/dbtime"
	"compaward_backend/internals/helpers/storage"
)

// UserResolver maps institutional ids to users inside the caller's transaction.
// A miss must be reported as an apperror reference error listing the ids.
type UserResolver interface {
	Resolve(ctx context.Context, tx *gorm.DB, institutionalIDs []string) ([]userModel.UserModel, error)
}

// Input is everything needed to turn review evidence into an award.
type Input struct {
	Competition catalogService.CompetitionSeed
	EventID     *uuid.UUID

	CertNo    string
	SourceKey string // blob holding the certificate scan

	AwardLevel string
	AwardDate  time.Time
	CreatorID  *uuid.UUID

	ParticipantIDs []string
	InstructorIDs  []string

	// Guard re-reads and locks the source row and re-checks its status.
	Guard func(tx *gorm.DB) error
	// MarkSource flips the source row to its final status with a guarded update.
	MarkSource func(tx *gorm.DB, award *awardModel.AwardModel) error
}

type Result struct {
	Award              *awardModel.AwardModel
	Certificate        *certModel.CertificateModel
	CompetitionCreated bool
}

type Materializer struct {
	Store storage.BlobStore
	Users UserResolver
	Now   func() time.Time
}

func NewMaterializer(store storage.BlobStore, users UserResolver) *Materializer {
	return &Materializer{Store: store, Users: users, Now: time.Now}
}

func (m *Materializer) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (in Input) validate() error {
	fields := map[string][]string{}
	if strings.TrimSpace(in.CertNo) == "" {
		fields["cert_no"] = append(fields["cert_no"], "certificate number is required")
	}
	if strings.TrimSpace(in.SourceKey) == "" {
		fields["certificate"] = append(fields["certificate"], "certificate image is required")
	}
	if strings.TrimSpace(in.AwardLevel) == "" {
		fields["award_level"] = append(fields["award_level"], "award level is required")
	}
	if in.AwardDate.IsZero() {
		fields["award_date"] = append(fields["award_date"], "award date is required")
	}
	if len(in.ParticipantIDs) == 0 {
		fields["participants"] = append(fields["participants"], "at least one participant is required")
	}
	if len(fields) > 0 {
		return apperror.Validation("cannot create award", fields)
	}
	return nil
}

// Materialize creates the competition (when new), certificate and award in one
// transaction. Nothing survives a failure: the certificate object is written
// last and removed again if the commit does not go through.
func (m *Materializer) Materialize(ctx context.Context, db *gorm.DB, in Input) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var (
		res      Result
		certKey  string
		written  bool
		certData []byte
		certType string
	)

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 0) source guard
		if in.Guard != nil {
			if err := in.Guard(tx); err != nil {
				return err
			}
		}

		// 1) competition
		comp, created, err := catalogService.ResolveCompetition(tx, in.Competition)
		if err != nil {
			return err
		}
		res.CompetitionCreated = created

		// 2) certificate row; the object itself is written at the end
		certNo := strings.TrimSpace(in.CertNo)
		var dup int64
		if err := tx.Model(&certModel.CertificateModel{}).Where("cert_no = ?", certNo).Count(&dup).Error; err != nil {
			return apperror.Internal(err, "check certificate number")
		}
		if dup > 0 {
			return apperror.FieldError("cert_no", "certificate number already exists")
		}

		certData, err = storage.ReadAll(ctx, m.Store, in.SourceKey)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperror.FieldError("certificate", "certificate image is missing from storage")
			}
			return apperror.Internal(err, "read certificate source")
		}
		certType = storage.DetectContentType(certData, in.SourceKey)

		cert := certModel.CertificateModel{ID: uuid.New(), CertNo: certNo}
		certKey = storage.CertificateKey(cert.ID, filepath.Ext(in.SourceKey), m.now())
		cert.ImageKey = certKey
		cert.ImageURL = m.Store.URL(certKey)
		if err := tx.Create(&cert).Error; err != nil {
			return apperror.FromDB(err, "")
		}
		res.Certificate = &cert

		// 3) award row
		award := awardModel.AwardModel{
			CompetitionID: comp.ID,
			EventID:       in.EventID,
			CertificateID: &cert.ID,
			AwardLevel:    strings.TrimSpace(in.AwardLevel),
			AwardDate:     dbtime.DateOnly(in.AwardDate),
			CreatorID:     in.CreatorID,
		}
		if err := tx.Create(&award).Error; err != nil {
			return apperror.FromDB(err, "")
		}

		// 4) people, every miss reported at once
		participants, instructors, err := m.resolvePeople(ctx, tx, in.ParticipantIDs, in.InstructorIDs)
		if err != nil {
			return err
		}

		// 5) links
		if err := AttachPeople(tx, award.ID, participants, instructors); err != nil {
			return err
		}
		award.Participants = participants
		award.Instructors = instructors
		award.Competition = comp
		award.Certificate = &cert
		res.Award = &award

		// 6) source row
		if in.MarkSource != nil {
			if err := in.MarkSource(tx, &award); err != nil {
				return err
			}
		}

		// 7) certificate object
		if err := storage.PutBytes(ctx, m.Store, certKey, certData, certType); err != nil {
			return apperror.Internal(err, "write certificate image")
		}
		written = true
		return nil
	})
	if err != nil {
		if written {
			// commit failed after the object was stored
			storage.DeleteQuietly(context.WithoutCancel(ctx), m.Store, certKey)
		}
		if ae, ok := apperror.As(err); !ok || ae.Kind == apperror.KindInternal {
			log.Printf("[MATERIALIZE] failed: %v", err)
		}
		return nil, err
	}

	log.Printf("[MATERIALIZE] award %s certificate %s (%s)", res.Award.ID, res.Certificate.ID, res.Certificate.CertNo)
	return &res, nil
}

func (m *Materializer) resolvePeople(ctx context.Context, tx *gorm.DB, participantIDs, instructorIDs []string) ([]userModel.UserModel, []userModel.UserModel, error) {
	var missing []string

	participants, err := m.Users.Resolve(ctx, tx, participantIDs)
	if err != nil {
		ae, ok := apperror.As(err)
		if !ok || ae.Kind != apperror.KindReference {
			return nil, nil, err
		}
		missing = append(missing, ae.Missing...)
	}
	instructors, err := m.Users.Resolve(ctx, tx, instructorIDs)
	if err != nil {
		ae, ok := apperror.As(err)
		if !ok || ae.Kind != apperror.KindReference {
			return nil, nil, err
		}
		missing = append(missing, ae.Missing...)
	}
	if len(missing) > 0 {
		return nil, nil, apperror.Reference("unknown user ids", uniqueStrings(missing))
	}
	return participants, instructors, nil
}

// AttachPeople inserts the award_participants / award_instructors rows.
func AttachPeople(tx *gorm.DB, awardID uuid.UUID, participants, instructors []userModel.UserModel) error {
	if err := insertLinks(tx, awardModel.TableAwardParticipants, "participant_id", awardID, participants); err != nil {
		return err
	}
	return insertLinks(tx, awardModel.TableAwardInstructors, "instructor_id", awardID, instructors)
}

func insertLinks(tx *gorm.DB, table, col string, awardID uuid.UUID, users []userModel.UserModel) error {
	if len(users) == 0 {
		return nil
	}
	rows := make([]map[string]interface{}, 0, len(users))
	seen := map[uuid.UUID]struct{}{}
	for _, u := range users {
		if _, ok := seen[u.ID]; ok {
			continue
		}
		seen[u.ID] = struct{}{}
		rows = append(rows, map[string]interface{}{"award_id": awardID, col: u.ID})
	}
	if err := tx.Table(table).Create(&rows).Error; err != nil {
		return apperror.Internal(err, "link "+table)
	}
	return nil
}

func uniqueStrings(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
