package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
	"gorm.io/gorm"

	"compaward_backend/internals/constants"
	eventModel "compaward_backend/internals/features/competitions/events/model"
	"compaward_backend/internals/features/competitions/teams/dto"
	"compaward_backend/internals/features/competitions/teams/model"
	userModel "compaward_backend/internals/features/users/users/model"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/apperror"
	"compaward_backend/internals/helpers/authz"
	"compaward_backend/internals/helpers/storage"
)

/* ===================== UPLOAD ===================== */

type pendingFile struct {
	column string
	key    string
	data   []byte
	ctype  string
}

func (s *Service) prepareUploads(teamID uuid.UUID, in dto.UploadFilesInput) ([]pendingFile, error) {
	var out []pendingFile
	fields := map[string][]string{}

	if in.Works != nil {
		if len(in.Works.Data) == 0 || !constants.IsAllowedWorks(in.Works.Filename) {
			fields["works"] = append(fields["works"], "unsupported or empty works file")
		} else {
			out = append(out, pendingFile{
				column: "works_key",
				key:    storage.TeamFileKey(teamID, "works", in.Works.Filename),
				data:   in.Works.Data,
				ctype:  storage.DetectContentType(in.Works.Data, in.Works.Filename),
			})
		}
	}
	if in.Attachment != nil {
		if len(in.Attachment.Data) == 0 || !constants.IsAllowedAttachment(in.Attachment.Filename) {
			fields["attachment"] = append(fields["attachment"], "certificate scan must be an image or a PDF")
		} else {
			data, ext, ctype, err := storage.NormalizeImage(in.Attachment.Data, in.Attachment.Filename, storage.DefaultWebPOptions())
			if err != nil {
				return nil, apperror.Internal(err, "normalize certificate scan")
			}
			out = append(out, pendingFile{
				column: "attachment_key",
				key:    storage.TeamFileKey(teamID, "attachment", "attachment"+ext),
				data:   data,
				ctype:  ctype,
			})
		}
	}
	if len(fields) > 0 {
		return nil, apperror.Validation("invalid upload", fields)
	}
	if len(out) == 0 {
		return nil, apperror.FieldError("files", "works or attachment is required")
	}
	return out, nil
}

func uploadGuard(actor authz.Actor, t *model.TeamModel, ev *eventModel.CompetitionEventModel) error {
	if err := requireLeader(actor, t, "upload files"); err != nil {
		return err
	}
	if err := notArchived(ev); err != nil {
		return err
	}
	if t.Status.IsLocked() {
		return apperror.StateConflict("awarded teams are locked; contact an administrator", string(t.Status))
	}
	return nil
}

// UploadFiles stores the works file and/or the certificate scan. A new scan
// sends the team back to submitted (ended teams stay ended). Replaced objects
// are removed after commit.
func (s *Service) UploadFiles(ctx context.Context, actor authz.Actor, teamID uuid.UUID, in dto.UploadFilesInput) (*model.TeamModel, error) {
	db := s.DB.WithContext(ctx)
	t, err := loadTeam(db, teamID)
	if err != nil {
		return nil, err
	}
	if err := uploadGuard(actor, t, t.Event); err != nil {
		return nil, err
	}

	files, err := s.prepareUploads(teamID, in)
	if err != nil {
		return nil, err
	}

	var written, replaced []string
	for _, f := range files {
		if err := storage.PutBytes(ctx, s.Store, f.key, f.data, f.ctype); err != nil {
			storage.DeleteQuietly(context.WithoutCancel(ctx), s.Store, written...)
			return nil, apperror.Internal(err, "store "+f.column)
		}
		written = append(written, f.key)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		locked, ev, err := lockTeam(tx, teamID)
		if err != nil {
			return err
		}
		if err := uploadGuard(actor, locked, ev); err != nil {
			return err
		}

		updates := map[string]interface{}{}
		for _, f := range files {
			updates[f.column] = f.key
			switch f.column {
			case "works_key":
				replaced = append(replaced, locked.WorksKey)
			case "attachment_key":
				replaced = append(replaced, locked.AttachmentKey)
				target, ok := locked.Status.AttachmentTarget()
				if !ok {
					return apperror.StateConflict("team does not accept a certificate scan", string(locked.Status))
				}
				updates["status"] = target
			}
		}
		return tx.Model(&model.TeamModel{}).Where("id = ?", teamID).Updates(updates).Error
	})
	if err != nil {
		storage.DeleteQuietly(context.WithoutCancel(ctx), s.Store, written...)
		return nil, apperror.FromDB(err, "")
	}

	storage.DeleteQuietly(context.WithoutCancel(ctx), s.Store, replaced...)
	log.Printf("[TEAM] %s uploaded %d file(s)", teamID, len(files))
	return loadTeam(db, teamID)
}

/* ===================== UPDATE INFO ===================== */

// stageFields is what a leader may edit in each event stage. Works are
// handed in through UploadFiles during the ongoing stage.
var stageFields = map[eventModel.EventStatus][]string{
	eventModel.EventRegistration: {"name", "member_ids", "teacher_ids"},
	eventModel.EventOngoing:      {},
	eventModel.EventAwarding:     {"temp_cert_no", "applied_award_level"},
}

func (s *Service) UpdateInfo(ctx context.Context, actor authz.Actor, teamID uuid.UUID, req dto.UpdateInfoRequest) (*model.TeamModel, error) {
	given := req.Fields()
	if len(given) == 0 {
		return nil, apperror.FieldError("fields", "nothing to update")
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, ev, err := lockTeam(tx, teamID)
		if err != nil {
			return err
		}
		if err := requireLeader(actor, t, "edit the team"); err != nil {
			return err
		}
		if t.Status.IsLocked() {
			return apperror.StateConflict("awarded teams are locked", string(t.Status))
		}
		allowed, ok := stageFields[ev.Status]
		if !ok {
			return apperror.StateConflict(fmt.Sprintf("team details cannot be changed while the event is %s", ev.Status), string(ev.Status))
		}

		fields := map[string][]string{}
		for _, f := range given {
			if !contains(allowed, f) {
				msg := fmt.Sprintf("cannot be changed while the event is %s", ev.Status)
				if ev.Status == eventModel.EventOngoing {
					msg += "; upload works through upload-files"
				}
				fields[f] = []string{msg}
			}
		}
		if len(fields) > 0 {
			return apperror.Validation("fields not editable in this stage", fields)
		}

		updates := map[string]interface{}{}
		if req.Name != nil {
			updates["name"] = strings.TrimSpace(*req.Name)
		}
		if req.TempCertNo != nil {
			updates["temp_cert_no"] = strings.TrimSpace(*req.TempCertNo)
		}
		if req.AppliedAwardLevel != nil {
			updates["applied_award_level"] = strings.TrimSpace(*req.AppliedAwardLevel)
		}
		if len(updates) > 0 {
			if err := tx.Model(&model.TeamModel{}).Where("id = ?", teamID).Updates(updates).Error; err != nil {
				return apperror.FromDB(err, "")
			}
		}

		if req.MemberIDs != nil || req.TeacherIDs != nil {
			current, err := loadTeam(tx, teamID)
			if err != nil {
				return err
			}
			memberIDs := institutionalIDs(current.Members)
			teacherIDs := institutionalIDs(current.Teachers)
			if req.MemberIDs != nil {
				memberIDs = *req.MemberIDs
			}
			if req.TeacherIDs != nil {
				teacherIDs = *req.TeacherIDs
			}
			members, teachers, err := resolveRoster(ctx, tx, t.LeaderID, memberIDs, teacherIDs)
			if err != nil {
				return err
			}
			if req.MemberIDs != nil {
				if err := replaceLinks(tx, model.TableTeamMembers, "member_id", teamID, members); err != nil {
					return err
				}
			}
			if req.TeacherIDs != nil {
				if err := replaceLinks(tx, model.TableTeamTeachers, "teacher_id", teamID, teachers); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[TEAM] %s updated %v", teamID, given)
	return loadTeam(s.DB.WithContext(ctx), teamID)
}

func institutionalIDs(users []userModel.UserModel) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.InstitutionalID)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

/* ===================== EXPORT ===================== */

// ExportWorks writes a zip of every shortlisted team's works file to w and
// returns how many files went in. Unreadable objects are skipped.
func (s *Service) ExportWorks(ctx context.Context, eventID uuid.UUID, w io.Writer) (int, error) {
	db := s.DB.WithContext(ctx)

	var ev eventModel.CompetitionEventModel
	if err := db.First(&ev, "id = ?", eventID).Error; err != nil {
		return 0, apperror.FromDB(err, msgEventNotFound)
	}
	if ev.Status.IsArchived() {
		return 0, apperror.StateConflict("archived events cannot be exported", string(ev.Status))
	}

	var teams []model.TeamModel
	if err := db.Select("id", "name", "works_key").
		Where("event_id = ? AND status = ? AND works_key <> ''", eventID, model.TeamShortlisted).
		Order("name").Find(&teams).Error; err != nil {
		return 0, apperror.Internal(err, "load teams")
	}
	if len(teams) == 0 {
		return 0, apperror.NotFound("no shortlisted team has uploaded works")
	}

	zw := zip.NewWriter(w)
	names := newZipNames()
	count := 0
	for _, t := range teams {
		data, err := storage.ReadAll(ctx, s.Store, t.WorksKey)
		if err != nil {
			log.Printf("[TEAM] export: skip %s: %v", t.ID, err)
			continue
		}
		f, err := zw.Create(names.next(t))
		if err != nil {
			return count, apperror.Internal(err, "write zip entry")
		}
		if _, err := f.Write(data); err != nil {
			return count, apperror.Internal(err, "write zip entry")
		}
		count++
	}
	if err := zw.Close(); err != nil {
		return count, apperror.Internal(err, "close zip")
	}
	return count, nil
}

// zipNames hands out "<team name><ext>" entries, adding " (n)" on clashes.
type zipNames struct {
	suffix map[string]int
	taken  map[string]struct{}
}

func newZipNames() *zipNames {
	return &zipNames{suffix: map[string]int{}, taken: map[string]struct{}{}}
}

func (z *zipNames) next(t model.TeamModel) string {
	base := helper.SanitizeFilename(t.Name, 100)
	if base == "" {
		base = "team-" + t.ID.String()
	}
	ext := helper.SafeExt(filepath.Base(t.WorksKey))

	key := strings.ToLower(base + ext)
	name := base + ext
	for n := z.suffix[key]; ; n++ {
		if n > 0 {
			name = fmt.Sprintf("%s (%d)%s", base, n, ext)
		}
		if _, ok := z.taken[strings.ToLower(name)]; !ok {
			z.suffix[key] = n + 1
			break
		}
	}
	z.taken[strings.ToLower(name)] = struct{}{}
	return name
}
