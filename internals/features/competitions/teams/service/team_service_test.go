package service

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"compaward_backend/internals/constants"
	awardModel "compaward_backend/internals/features/awards/awards/model"
	awardService "compaward_backend/internals/features/awards/awards/service"
	certModel "compaward_backend/internals/features/awards/certificates/model"
	catalogService "compaward_backend/internals/features/competitions/catalog/service"
	eventModel "compaward_backend/internals/features/competitions/events/model"
	"compaward_backend/internals/features/competitions/teams/dto"
	"compaward_backend/internals/features/competitions/teams/model"
	notifService "compaward_backend/internals/features/notifications/notifications/service"
	userModel "compaward_backend/internals/features/users/users/model"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/apperror"
	"compaward_backend/internals/helpers/authz"
	"compaward_backend/internals/helpers/dbtime"
	"compaward_backend/internals/helpers/storage"
	"compaward_backend/internals/testutil"
)

type recorder struct {
	mu   sync.Mutex
	msgs []notifService.Message
}

func (r *recorder) Notify(_ context.Context, m notifService.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, m)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

type fixture struct {
	ctx   context.Context
	db    *gorm.DB
	store *storage.LocalStore
	svc   *Service
	notes *recorder

	event eventModel.CompetitionEventModel

	admin   authz.Actor
	leader  userModel.UserModel
	member  userModel.UserModel
	teacher userModel.UserModel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	store, err := storage.NewLocalStore(t.TempDir(), "http://files.test")
	require.NoError(t, err)
	notes := &recorder{}

	comp := testutil.CreateCompetition(t, db, "Programming Contest", 2025)
	f := &fixture{
		ctx:     context.Background(),
		db:      db,
		store:   store,
		svc:     NewService(db, store, notes),
		notes:   notes,
		event:   testutil.CreateEvent(t, db, comp.ID, eventModel.EventRegistration),
		admin:   testutil.Actor(testutil.CreateUser(t, db, "ADM", constants.RoleCompetitionAdmin)),
		leader:  testutil.CreateUser(t, db, "S100", constants.RoleStudent),
		member:  testutil.CreateUser(t, db, "S200", constants.RoleStudent),
		teacher: testutil.CreateUser(t, db, "T100", constants.RoleTeacher),
	}
	return f
}

func (f *fixture) createTeam(t *testing.T) *model.TeamModel {
	t.Helper()
	team, err := f.svc.Create(f.ctx, testutil.Actor(f.leader), dto.CreateTeamRequest{
		EventID:    f.event.ID,
		Name:       "Alpha",
		MemberIDs:  []string{f.member.InstitutionalID},
		TeacherIDs: []string{f.teacher.InstitutionalID},
	})
	require.NoError(t, err)
	return team
}

func (f *fixture) setEvent(t *testing.T, st eventModel.EventStatus) {
	t.Helper()
	require.NoError(t, f.db.Model(&eventModel.CompetitionEventModel{}).Where("id = ?", f.event.ID).Update("status", st).Error)
}

func (f *fixture) setTeam(t *testing.T, id uuid.UUID, updates map[string]interface{}) {
	t.Helper()
	require.NoError(t, f.db.Model(&model.TeamModel{}).Where("id = ?", id).Updates(updates).Error)
}

// readyForAward puts the team in the shape the final review expects.
func (f *fixture) readyForAward(t *testing.T, teamID uuid.UUID) string {
	t.Helper()
	key := storage.TeamFileKey(teamID, "attachment", "scan.pdf")
	require.NoError(t, storage.PutBytes(f.ctx, f.store, key, []byte("%PDF-1.4 scan"), "application/pdf"))
	f.setEvent(t, eventModel.EventAwarding)
	f.setTeam(t, teamID, map[string]interface{}{
		"status":              model.TeamShortlisted,
		"temp_cert_no":        "CERT-2025-001",
		"applied_award_level": "First Prize",
		"attachment_key":      key,
	})
	return key
}

func (f *fixture) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

/* ===================== CREATE ===================== */

func TestCreateTeam(t *testing.T) {
	f := newFixture(t)
	team := f.createTeam(t)

	assert.Equal(t, model.TeamDraft, team.Status)
	assert.Equal(t, f.leader.ID, team.LeaderID)
	require.Len(t, team.Members, 1)
	assert.Equal(t, f.member.ID, team.Members[0].ID)
	require.Len(t, team.Teachers, 1)
	assert.Equal(t, f.teacher.ID, team.Teachers[0].ID)
}

func TestCreateTeamRejectsSecondTeamForLeader(t *testing.T) {
	f := newFixture(t)
	f.createTeam(t)

	_, err := f.svc.Create(f.ctx, testutil.Actor(f.leader), dto.CreateTeamRequest{EventID: f.event.ID, Name: "Beta"})
	ae, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindValidation, ae.Kind)
	assert.Contains(t, ae.Fields, "event_id")
	assert.EqualValues(t, 1, f.count(t, &model.TeamModel{}))
}

func TestCreateTeamRules(t *testing.T) {
	f := newFixture(t)
	leader := testutil.Actor(f.leader)

	_, err := f.svc.Create(f.ctx, testutil.Actor(f.teacher), dto.CreateTeamRequest{EventID: f.event.ID, Name: "T"})
	assert.True(t, apperror.Is(err, apperror.KindPermission))

	_, err = f.svc.Create(f.ctx, leader, dto.CreateTeamRequest{EventID: f.event.ID, Name: "T", MemberIDs: []string{f.leader.InstitutionalID}})
	ae, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindValidation, ae.Kind)
	assert.Contains(t, ae.Fields, "member_ids")

	_, err = f.svc.Create(f.ctx, leader, dto.CreateTeamRequest{EventID: f.event.ID, Name: "T", TeacherIDs: []string{f.member.InstitutionalID}})
	ae, ok = apperror.As(err)
	require.True(t, ok)
	assert.Contains(t, ae.Fields, "teacher_ids")

	_, err = f.svc.Create(f.ctx, leader, dto.CreateTeamRequest{
		EventID: f.event.ID, Name: "T",
		MemberIDs:  []string{"NOPE2", f.member.InstitutionalID},
		TeacherIDs: []string{"NOPE1"},
	})
	ae, ok = apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindReference, ae.Kind)
	assert.Equal(t, []string{"NOPE1", "NOPE2"}, ae.Missing)

	f.setEvent(t, eventModel.EventScreening)
	_, err = f.svc.Create(f.ctx, leader, dto.CreateTeamRequest{EventID: f.event.ID, Name: "T"})
	assert.True(t, apperror.Is(err, apperror.KindStateConflict))

	assert.Zero(t, f.count(t, &model.TeamModel{}))
}

/* ===================== REVIEW ===================== */

func TestSubmitAndShortlist(t *testing.T) {
	f := newFixture(t)
	team := f.createTeam(t)

	_, err := f.svc.SubmitRegistration(f.ctx, testutil.Actor(f.member), team.ID)
	assert.True(t, apperror.Is(err, apperror.KindPermission))

	got, err := f.svc.SubmitRegistration(f.ctx, testutil.Actor(f.leader), team.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TeamSubmitted, got.Status)

	_, err = f.svc.SubmitRegistration(f.ctx, testutil.Actor(f.leader), team.ID)
	assert.True(t, apperror.Is(err, apperror.KindStateConflict))

	_, err = f.svc.ReviewShortlist(f.ctx, testutil.Actor(f.leader), team.ID, ShortlistApprove, "")
	assert.True(t, apperror.Is(err, apperror.KindPermission))

	got, err = f.svc.ReviewShortlist(f.ctx, f.admin, team.ID, ShortlistReject, "incomplete roster")
	require.NoError(t, err)
	assert.Equal(t, model.TeamRejected, got.Status)
	require.Equal(t, 1, f.notes.count())
	assert.Equal(t, []uuid.UUID{f.leader.ID}, f.notes.msgs[0].Recipients)
	assert.Contains(t, f.notes.msgs[0].Description, "incomplete roster")

	_, err = f.svc.SubmitRegistration(f.ctx, testutil.Actor(f.leader), team.ID)
	require.NoError(t, err)
	got, err = f.svc.ReviewShortlist(f.ctx, f.admin, team.ID, ShortlistApprove, "")
	require.NoError(t, err)
	assert.Equal(t, model.TeamShortlisted, got.Status)

	_, err = f.svc.ReviewShortlist(f.ctx, f.admin, team.ID, ShortlistApprove, "")
	assert.True(t, apperror.Is(err, apperror.KindStateConflict))

	// only a new certificate scan sends a shortlisted team back to review
	_, err = f.svc.SubmitRegistration(f.ctx, testutil.Actor(f.leader), team.ID)
	ae, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindStateConflict, ae.Kind)
	assert.Equal(t, string(model.TeamShortlisted), ae.CurrentStatus)
}

func TestReviewAwardMaterializesOnce(t *testing.T) {
	f := newFixture(t)
	team := f.createTeam(t)
	f.readyForAward(t, team.ID)

	got, err := f.svc.ReviewAward(f.ctx, f.admin, team.ID, AwardGrant)
	require.NoError(t, err)
	assert.Equal(t, model.TeamAwarded, got.Status)
	require.NotNil(t, got.ConvertedAwardID)

	var award awardModel.AwardModel
	require.NoError(t, f.db.Preload("Participants").Preload("Instructors").Preload("Certificate").
		First(&award, "id = ?", *got.ConvertedAwardID).Error)
	assert.Equal(t, "First Prize", award.AwardLevel)
	require.NotNil(t, award.EventID)
	assert.Equal(t, f.event.ID, *award.EventID)
	assert.Len(t, award.Participants, 2)
	require.Len(t, award.Instructors, 1)
	assert.Equal(t, f.teacher.ID, award.Instructors[0].ID)
	require.NotNil(t, award.Certificate)
	assert.Equal(t, "CERT-2025-001", award.Certificate.CertNo)

	data, err := storage.ReadAll(f.ctx, f.store, award.Certificate.ImageKey)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 scan", string(data))

	_, err = f.svc.ReviewAward(f.ctx, f.admin, team.ID, AwardGrant)
	assert.True(t, apperror.Is(err, apperror.KindStateConflict))
	assert.EqualValues(t, 1, f.count(t, &awardModel.AwardModel{}))
	assert.EqualValues(t, 1, f.count(t, &certModel.CertificateModel{}))
	assert.Equal(t, 1, f.notes.count())
}

type missingResolver struct{}

func (missingResolver) Resolve(_ context.Context, _ *gorm.DB, ids []string) ([]userModel.UserModel, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return nil, apperror.Reference("unknown user ids", ids)
}

func TestReviewAwardIsAtomic(t *testing.T) {
	f := newFixture(t)
	team := f.createTeam(t)
	f.readyForAward(t, team.ID)
	f.svc.Awards = awardService.NewMaterializer(f.store, missingResolver{})

	_, err := f.svc.ReviewAward(f.ctx, f.admin, team.ID, AwardGrant)
	ae, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindReference, ae.Kind)
	assert.ElementsMatch(t, []string{f.leader.InstitutionalID, f.member.InstitutionalID, f.teacher.InstitutionalID}, ae.Missing)

	assert.Zero(t, f.count(t, &awardModel.AwardModel{}))
	assert.Zero(t, f.count(t, &certModel.CertificateModel{}))

	var stored model.TeamModel
	require.NoError(t, f.db.First(&stored, "id = ?", team.ID).Error)
	assert.Equal(t, model.TeamShortlisted, stored.Status)
	assert.Nil(t, stored.ConvertedAwardID)

	objs, err := f.store.List(f.ctx, "certificate/")
	require.NoError(t, err)
	assert.Empty(t, objs)
	assert.Zero(t, f.notes.count())
}

func TestAwardGuardRejectsEvidenceChangedAfterRead(t *testing.T) {
	f := newFixture(t)
	team := f.createTeam(t)
	f.readyForAward(t, team.ID)

	read, err := loadTeam(f.db, team.ID)
	require.NoError(t, err)
	guard := awardEvidenceGuard(read)
	require.NoError(t, f.db.Transaction(guard))

	// the leader edits the certificate number between the read and the lock
	f.setTeam(t, team.ID, map[string]interface{}{"temp_cert_no": "CERT-2025-002"})
	err = f.db.Transaction(guard)
	assert.True(t, apperror.Is(err, apperror.KindStateConflict))

	_, err = f.svc.Awards.Materialize(f.ctx, f.db, awardService.Input{
		Competition:    catalogService.CompetitionSeed{ID: &read.Event.CompetitionID},
		EventID:        &read.EventID,
		CertNo:         read.TempCertNo,
		SourceKey:      read.AttachmentKey,
		AwardLevel:     read.AppliedAwardLevel,
		AwardDate:      dbtime.Today(),
		ParticipantIDs: []string{f.leader.InstitutionalID},
		Guard:          guard,
	})
	assert.True(t, apperror.Is(err, apperror.KindStateConflict))
	assert.Zero(t, f.count(t, &awardModel.AwardModel{}))
	assert.Zero(t, f.count(t, &certModel.CertificateModel{}))
}

func TestReviewAwardNeedsAwardingStage(t *testing.T) {
	f := newFixture(t)
	team := f.createTeam(t)
	f.readyForAward(t, team.ID)
	f.setEvent(t, eventModel.EventOngoing)

	for _, action := range []string{AwardGrant, AwardFinish} {
		_, err := f.svc.ReviewAward(f.ctx, f.admin, team.ID, action)
		ae, ok := apperror.As(err)
		require.True(t, ok, action)
		assert.Equal(t, apperror.KindStateConflict, ae.Kind)
		assert.Equal(t, string(eventModel.EventOngoing), ae.CurrentStatus)
	}
	assert.Zero(t, f.count(t, &awardModel.AwardModel{}))
}

func TestReviewAwardNeedsCertificateEvidence(t *testing.T) {
	f := newFixture(t)
	team := f.createTeam(t)
	f.readyForAward(t, team.ID)
	f.setTeam(t, team.ID, map[string]interface{}{"temp_cert_no": "", "attachment_key": ""})

	_, err := f.svc.ReviewAward(f.ctx, f.admin, team.ID, AwardGrant)
	ae, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindValidation, ae.Kind)
	assert.Contains(t, ae.Fields, "temp_cert_no")
	assert.Contains(t, ae.Fields, "attachment")
}

func TestFinishAndReset(t *testing.T) {
	f := newFixture(t)
	team := f.createTeam(t)
	f.readyForAward(t, team.ID)

	got, err := f.svc.ReviewAward(f.ctx, f.admin, team.ID, AwardFinish)
	require.NoError(t, err)
	assert.Equal(t, model.TeamEnded, got.Status)

	_, err = f.svc.ResetToDraft(f.ctx, testutil.Actor(f.leader), team.ID)
	assert.True(t, apperror.Is(err, apperror.KindPermission))

	got, err = f.svc.ResetToDraft(f.ctx, f.admin, team.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TeamDraft, got.Status)
	assert.Equal(t, 2, f.notes.count())

	_, err = f.svc.ResetToDraft(f.ctx, f.admin, team.ID)
	assert.True(t, apperror.Is(err, apperror.KindStateConflict))
}

/* ===================== FILES / INFO ===================== */

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadAttachmentResubmits(t *testing.T) {
	f := newFixture(t)
	team := f.createTeam(t)
	f.setTeam(t, team.ID, map[string]interface{}{"status": model.TeamShortlisted})

	got, err := f.svc.UploadFiles(f.ctx, testutil.Actor(f.leader), team.ID, dto.UploadFilesInput{
		Attachment: &dto.FileInput{Filename: "cert.png", Data: pngBytes(t)},
	})
	require.NoError(t, err)
	assert.Equal(t, model.TeamSubmitted, got.Status)
	assert.True(t, strings.HasSuffix(got.AttachmentKey, ".webp"), got.AttachmentKey)
	first := got.AttachmentKey

	// a replacement removes the previous object
	got, err = f.svc.UploadFiles(f.ctx, testutil.Actor(f.leader), team.ID, dto.UploadFilesInput{
		Attachment: &dto.FileInput{Filename: "cert.pdf", Data: []byte("%PDF-1.4")},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got.AttachmentKey, ".pdf"))
	_, err = storage.ReadAll(f.ctx, f.store, first)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUploadKeepsEndedAndRejectsAwarded(t *testing.T) {
	f := newFixture(t)
	team := f.createTeam(t)
	scan := dto.UploadFilesInput{Attachment: &dto.FileInput{Filename: "cert.pdf", Data: []byte("%PDF-1.4")}}

	f.setTeam(t, team.ID, map[string]interface{}{"status": model.TeamEnded})
	got, err := f.svc.UploadFiles(f.ctx, testutil.Actor(f.leader), team.ID, scan)
	require.NoError(t, err)
	assert.Equal(t, model.TeamEnded, got.Status)

	got, err = f.svc.UploadFiles(f.ctx, testutil.Actor(f.leader), team.ID, dto.UploadFilesInput{
		Works: &dto.FileInput{Filename: "robot.zip", Data: []byte("PK")},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, got.WorksKey)

	_, err = f.svc.UploadFiles(f.ctx, testutil.Actor(f.member), team.ID, scan)
	assert.True(t, apperror.Is(err, apperror.KindPermission))

	_, err = f.svc.UploadFiles(f.ctx, testutil.Actor(f.leader), team.ID, dto.UploadFilesInput{
		Attachment: &dto.FileInput{Filename: "cert.exe", Data: []byte("MZ")},
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	f.setTeam(t, team.ID, map[string]interface{}{"status": model.TeamAwarded})
	_, err = f.svc.UploadFiles(f.ctx, testutil.Actor(f.leader), team.ID, scan)
	assert.True(t, apperror.Is(err, apperror.KindStateConflict))

	f.setTeam(t, team.ID, map[string]interface{}{"status": model.TeamDraft})
	f.setEvent(t, eventModel.EventArchived)
	_, err = f.svc.UploadFiles(f.ctx, testutil.Actor(f.leader), team.ID, scan)
	assert.True(t, apperror.Is(err, apperror.KindStateConflict))
}

func strPtr(s string) *string { return &s }

func TestUpdateInfoFollowsStage(t *testing.T) {
	f := newFixture(t)
	team := f.createTeam(t)
	leader := testutil.Actor(f.leader)

	got, err := f.svc.UpdateInfo(f.ctx, leader, team.ID, dto.UpdateInfoRequest{Name: strPtr("Alpha Prime"), MemberIDs: &[]string{}})
	require.NoError(t, err)
	assert.Equal(t, "Alpha Prime", got.Name)
	assert.Empty(t, got.Members)
	require.Len(t, got.Teachers, 1)

	_, err = f.svc.UpdateInfo(f.ctx, leader, team.ID, dto.UpdateInfoRequest{TempCertNo: strPtr("X")})
	ae, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindValidation, ae.Kind)
	assert.Contains(t, ae.Fields, "temp_cert_no")

	f.setEvent(t, eventModel.EventAwarding)
	got, err = f.svc.UpdateInfo(f.ctx, leader, team.ID, dto.UpdateInfoRequest{TempCertNo: strPtr("NO-9"), AppliedAwardLevel: strPtr("Gold")})
	require.NoError(t, err)
	assert.Equal(t, "NO-9", got.TempCertNo)
	assert.Equal(t, "Gold", got.AppliedAwardLevel)

	_, err = f.svc.UpdateInfo(f.ctx, leader, team.ID, dto.UpdateInfoRequest{Name: strPtr("Late")})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	f.setEvent(t, eventModel.EventScreening)
	_, err = f.svc.UpdateInfo(f.ctx, leader, team.ID, dto.UpdateInfoRequest{Name: strPtr("Late")})
	assert.True(t, apperror.Is(err, apperror.KindStateConflict))
}

func TestMyParticipation(t *testing.T) {
	f := newFixture(t)
	outsider := testutil.CreateUser(t, f.db, "S300", constants.RoleStudent)

	p, err := f.svc.MyParticipation(f.ctx, testutil.Actor(f.leader), f.event.ID)
	require.NoError(t, err)
	assert.True(t, p.CanCreate)

	team := f.createTeam(t)

	p, err = f.svc.MyParticipation(f.ctx, testutil.Actor(f.leader), f.event.ID)
	require.NoError(t, err)
	assert.True(t, p.IsLeader)
	assert.False(t, p.CanCreate)
	require.NotNil(t, p.TeamID)
	assert.Equal(t, team.ID, *p.TeamID)

	p, err = f.svc.MyParticipation(f.ctx, testutil.Actor(f.member), f.event.ID)
	require.NoError(t, err)
	assert.True(t, p.IsMember)
	assert.False(t, p.CanCreate)

	p, err = f.svc.MyParticipation(f.ctx, testutil.Actor(f.teacher), f.event.ID)
	require.NoError(t, err)
	assert.False(t, p.CanCreate)

	f.setEvent(t, eventModel.EventScreening)
	p, err = f.svc.MyParticipation(f.ctx, testutil.Actor(outsider), f.event.ID)
	require.NoError(t, err)
	assert.False(t, p.CanCreate)
}

func TestListVisibility(t *testing.T) {
	f := newFixture(t)
	f.createTeam(t)
	other := testutil.CreateUser(t, f.db, "S300", constants.RoleStudent)
	_, err := f.svc.Create(f.ctx, testutil.Actor(other), dto.CreateTeamRequest{EventID: f.event.ID, Name: "Beta"})
	require.NoError(t, err)

	p := helper.Params{Page: 1, PerPage: 10, SortOrder: "desc"}
	for _, tc := range []struct {
		name  string
		actor authz.Actor
		want  int64
	}{
		{"admin", f.admin, 2},
		{"leader", testutil.Actor(f.leader), 1},
		{"member", testutil.Actor(f.member), 1},
		{"teacher", testutil.Actor(f.teacher), 1},
		{"other leader", testutil.Actor(other), 1},
	} {
		_, total, err := f.svc.List(f.ctx, tc.actor, dto.TeamFilter{}, p)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, total, tc.name)
	}
}

func TestExportWorks(t *testing.T) {
	f := newFixture(t)
	works := func(leader userModel.UserModel, name string, status model.TeamStatus) {
		team, err := f.svc.Create(f.ctx, testutil.Actor(leader), dto.CreateTeamRequest{EventID: f.event.ID, Name: name})
		require.NoError(t, err)
		key := storage.TeamFileKey(team.ID, "works", "entry.zip")
		require.NoError(t, storage.PutBytes(f.ctx, f.store, key, []byte(name), "application/zip"))
		f.setTeam(t, team.ID, map[string]interface{}{"works_key": key, "status": status})
	}
	works(f.leader, "Alpha", model.TeamShortlisted)
	works(testutil.CreateUser(t, f.db, "S301", constants.RoleStudent), "Alpha", model.TeamShortlisted)
	works(testutil.CreateUser(t, f.db, "S302", constants.RoleStudent), "Draft Team", model.TeamDraft)
	works(testutil.CreateUser(t, f.db, "S303", constants.RoleStudent), "a/b?", model.TeamShortlisted)

	var buf bytes.Buffer
	n, err := f.svc.ExportWorks(f.ctx, f.event.ID, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	var names []string
	for _, zf := range zr.File {
		names = append(names, zf.Name)
	}
	assert.ElementsMatch(t, []string{"Alpha.zip", "Alpha (1).zip", "ab.zip"}, names)

	f.setEvent(t, eventModel.EventArchived)
	_, err = f.svc.ExportWorks(f.ctx, f.event.ID, &bytes.Buffer{})
	assert.True(t, apperror.Is(err, apperror.KindStateConflict))
}

func TestExportWorksWithoutShortlistedTeams(t *testing.T) {
	f := newFixture(t)
	f.createTeam(t)

	_, err := f.svc.ExportWorks(f.ctx, f.event.ID, &bytes.Buffer{})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestDeleteDraftTeam(t *testing.T) {
	f := newFixture(t)
	team := f.createTeam(t)

	assert.True(t, apperror.Is(f.svc.Delete(f.ctx, testutil.Actor(f.member), team.ID), apperror.KindPermission))

	f.setTeam(t, team.ID, map[string]interface{}{"status": model.TeamSubmitted})
	assert.True(t, apperror.Is(f.svc.Delete(f.ctx, testutil.Actor(f.leader), team.ID), apperror.KindStateConflict))

	f.setTeam(t, team.ID, map[string]interface{}{"status": model.TeamDraft})
	require.NoError(t, f.svc.Delete(f.ctx, testutil.Actor(f.leader), team.ID))
	assert.Zero(t, f.count(t, &model.TeamModel{}))
}
