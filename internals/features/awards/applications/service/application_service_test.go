package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"compaward_backend/internals/constants"
	"compaward_backend/internals/features/awards/applications/dto"
	"compaward_backend/internals/features/awards/applications/model"
	awardModel "compaward_backend/internals/features/awards/awards/model"
	certModel "compaward_backend/internals/features/awards/certificates/model"
	catalogModel "compaward_backend/internals/features/competitions/catalog/model"
	notifService "compaward_backend/internals/features/notifications/notifications/service"
	userModel "compaward_backend/internals/features/users/users/model"
	helper "compaward_backend/internals/helpers"
	"compaward_backend/internals/helpers/apperror"
	"compaward_backend/internals/helpers/authz"
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

func (r *recorder) last() notifService.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.msgs[len(r.msgs)-1]
}

type fixture struct {
	ctx   context.Context
	db    *gorm.DB
	store *storage.LocalStore
	svc   *Service
	notes *recorder

	admin     authz.Actor
	applicant userModel.UserModel
	teacher   userModel.UserModel
	catID     uint
	levelID   uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	store, err := storage.NewLocalStore(t.TempDir(), "http://files.test")
	require.NoError(t, err)
	notes := &recorder{}
	catID, levelID := testutil.FirstCategoryAndLevel(t, db)
	return &fixture{
		ctx:       context.Background(),
		db:        db,
		store:     store,
		svc:       NewService(db, store, notes),
		notes:     notes,
		admin:     testutil.Actor(testutil.CreateUser(t, db, "ADM", constants.RoleCompetitionAdmin)),
		applicant: testutil.CreateUser(t, db, "S100", constants.RoleStudent),
		teacher:   testutil.CreateUser(t, db, "T100", constants.RoleTeacher),
		catID:     catID,
		levelID:   levelID,
	}
}

func (f *fixture) request(payload model.ApplicationPayload) dto.ApplyRequest {
	req := dto.ApplyRequest{
		CertNo:     "APP-2025-7",
		AwardLevel: "Second Prize",
		AwardDate:  "2025-05-20",
		Payload:    payload,
	}
	req.Normalize()
	return req
}

func (f *fixture) payload() model.ApplicationPayload {
	return model.ApplicationPayload{
		CompetitionTitle: "Robotics Open",
		Year:             2025,
		CategoryID:       f.catID,
		LevelID:          f.levelID,
		ParticipantIDs:   []string{f.applicant.InstitutionalID},
		InstructorIDs:    []string{f.teacher.InstitutionalID},
	}
}

func scan() dto.CertImage {
	return dto.CertImage{Filename: "scan.pdf", Data: []byte("%PDF-1.4 certificate")}
}

func (f *fixture) apply(t *testing.T, p model.ApplicationPayload) *model.AwardApplicationModel {
	t.Helper()
	app, err := f.svc.Apply(f.ctx, testutil.Actor(f.applicant), f.request(p), scan())
	require.NoError(t, err)
	return app
}

func (f *fixture) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

func TestApplyStoresScanAndNotifiesReviewers(t *testing.T) {
	f := newFixture(t)
	app := f.apply(t, f.payload())

	assert.Equal(t, model.ApplicationPending, app.Status)
	assert.True(t, strings.HasPrefix(app.CertImageKey, "applications/"+app.ID.String()+"/"))
	data, err := storage.ReadAll(f.ctx, f.store, app.CertImageKey)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 certificate", string(data))

	msg := f.notes.last()
	assert.Equal(t, []uuid.UUID{f.admin.UserID}, msg.Recipients)
	assert.Contains(t, msg.Description, "Robotics Open")
}

func TestApplyRejectsBadPayload(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Apply(f.ctx, testutil.Actor(f.applicant), f.request(model.ApplicationPayload{}), scan())
	ae, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindValidation, ae.Kind)
	assert.Contains(t, ae.Fields, "participant_ids")
	assert.Contains(t, ae.Fields, "competition_title")
}

func TestApproveMaterializesAward(t *testing.T) {
	f := newFixture(t)
	app := f.apply(t, f.payload())

	out, err := f.svc.Approve(f.ctx, f.admin, app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationApproved, out.Status)
	require.NotNil(t, out.AwardID)

	var award awardModel.AwardModel
	require.NoError(t, f.db.Preload("Participants").Preload("Instructors").Preload("Competition").
		First(&award, "id = ?", *out.AwardID).Error)
	assert.Equal(t, "Second Prize", award.AwardLevel)
	assert.Len(t, award.Participants, 1)
	assert.Len(t, award.Instructors, 1)
	require.NotNil(t, award.CreatorID)
	assert.Equal(t, f.applicant.ID, *award.CreatorID)
	require.NotNil(t, award.Competition)
	assert.Equal(t, "Robotics Open", award.Competition.Title)

	var cert certModel.CertificateModel
	require.NoError(t, f.db.First(&cert, "id = ?", *award.CertificateID).Error)
	assert.Equal(t, "APP-2025-7", cert.CertNo)
	_, err = storage.ReadAll(f.ctx, f.store, cert.ImageKey)
	assert.NoError(t, err)

	msg := f.notes.last()
	assert.Equal(t, []uuid.UUID{f.applicant.ID}, msg.Recipients)
	require.NotNil(t, msg.Target)
	assert.Equal(t, "award", msg.Target.Type)

	_, err = f.svc.Approve(f.ctx, f.admin, app.ID)
	assert.True(t, apperror.Is(err, apperror.KindStateConflict))
	assert.EqualValues(t, 1, f.count(t, &awardModel.AwardModel{}))
}

func TestApproveReportsEveryUnknownReference(t *testing.T) {
	f := newFixture(t)
	p := f.payload()
	p.CategoryID = 9999
	p.LevelID = 8888
	p.ParticipantIDs = []string{f.applicant.InstitutionalID, "GHOST1"}
	p.InstructorIDs = []string{"GHOST2"}
	app := f.apply(t, p)

	_, err := f.svc.Approve(f.ctx, f.admin, app.ID)
	ae, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindReference, ae.Kind)
	assert.ElementsMatch(t, []string{"category:9999", "level:8888", "GHOST1", "GHOST2"}, ae.Missing)

	var again model.AwardApplicationModel
	require.NoError(t, f.db.First(&again, "id = ?", app.ID).Error)
	assert.Equal(t, model.ApplicationPending, again.Status)
	assert.EqualValues(t, 0, f.count(t, &awardModel.AwardModel{}))
	assert.EqualValues(t, 0, f.count(t, &certModel.CertificateModel{}))
	var comps int64
	require.NoError(t, f.db.Model(&catalogModel.CompetitionModel{}).Where("title = ?", "Robotics Open").Count(&comps).Error)
	assert.EqualValues(t, 0, comps)
}

func TestApproveRequiresReviewer(t *testing.T) {
	f := newFixture(t)
	app := f.apply(t, f.payload())
	_, err := f.svc.Approve(f.ctx, testutil.Actor(f.applicant), app.ID)
	assert.True(t, apperror.Is(err, apperror.KindPermission))
}

func TestRejectThenOwnerRules(t *testing.T) {
	f := newFixture(t)
	app := f.apply(t, f.payload())
	owner := testutil.Actor(f.applicant)

	out, err := f.svc.Reject(f.ctx, f.admin, app.ID, "  blurry scan ")
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationRejected, out.Status)
	assert.Equal(t, "blurry scan", out.AdminRemark)
	assert.Equal(t, "Remark: blurry scan", f.notes.last().Description)

	level := "Third Prize"
	_, err = f.svc.Update(f.ctx, owner, app.ID, dto.UpdateApplicationRequest{AwardLevel: &level}, nil)
	assert.True(t, apperror.Is(err, apperror.KindStateConflict))

	require.NoError(t, f.svc.Delete(f.ctx, owner, app.ID))
	_, err = storage.ReadAll(f.ctx, f.store, app.CertImageKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateWhilePendingReplacesScan(t *testing.T) {
	f := newFixture(t)
	app := f.apply(t, f.payload())
	owner := testutil.Actor(f.applicant)

	level := "Third Prize"
	img := dto.CertImage{Filename: "better.pdf", Data: []byte("%PDF-1.4 better")}
	out, err := f.svc.Update(f.ctx, owner, app.ID, dto.UpdateApplicationRequest{AwardLevel: &level}, &img)
	require.NoError(t, err)
	assert.Equal(t, "Third Prize", out.AwardLevel)

	data, err := storage.ReadAll(f.ctx, f.store, out.CertImageKey)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 better", string(data))

	assert.NotEqual(t, app.CertImageKey, out.CertImageKey)
	_, err = f.svc.Store.Get(f.ctx, app.CertImageKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	stranger := testutil.Actor(testutil.CreateUser(t, f.db, "S999", constants.RoleStudent))
	_, err = f.svc.Update(f.ctx, stranger, app.ID, dto.UpdateApplicationRequest{AwardLevel: &level}, nil)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestApproveGuardRejectsEditsAfterRead(t *testing.T) {
	f := newFixture(t)
	created := f.apply(t, f.payload())
	var app model.AwardApplicationModel
	require.NoError(t, f.db.First(&app, "id = ?", created.ID).Error)
	guard := approveGuard(f.ctx, &app)
	require.NoError(t, f.db.Transaction(guard))

	later := app.UpdatedAt.Add(time.Second)
	require.NoError(t, f.db.Model(&model.AwardApplicationModel{}).Where("id = ?", app.ID).
		Updates(map[string]interface{}{"cert_no": "APP-2025-8", "updated_at": later}).Error)
	assert.True(t, apperror.Is(f.db.Transaction(guard), apperror.KindStateConflict))
}

func TestUpdateScanIsCheckedBeforeStoring(t *testing.T) {
	f := newFixture(t)
	app := f.apply(t, f.payload())
	prefix := "applications/" + app.ID.String() + "/"
	img := dto.CertImage{Filename: "other.pdf", Data: []byte("%PDF-1.4 other")}

	stranger := testutil.Actor(testutil.CreateUser(t, f.db, "S999", constants.RoleStudent))
	_, err := f.svc.Update(f.ctx, stranger, app.ID, dto.UpdateApplicationRequest{}, &img)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = f.svc.Reject(f.ctx, f.admin, app.ID, "blurry")
	require.NoError(t, err)
	_, err = f.svc.Update(f.ctx, testutil.Actor(f.applicant), app.ID, dto.UpdateApplicationRequest{}, &img)
	assert.True(t, apperror.Is(err, apperror.KindStateConflict))

	objs, err := f.store.List(f.ctx, prefix)
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, app.CertImageKey, objs[0].Key)
}

func TestDeleteApprovedIsRefused(t *testing.T) {
	f := newFixture(t)
	app := f.apply(t, f.payload())
	_, err := f.svc.Approve(f.ctx, f.admin, app.ID)
	require.NoError(t, err)

	err = f.svc.Delete(f.ctx, testutil.Actor(f.applicant), app.ID)
	assert.True(t, apperror.Is(err, apperror.KindStateConflict))
}

func TestListVisibility(t *testing.T) {
	f := newFixture(t)
	f.apply(t, f.payload())
	other := testutil.CreateUser(t, f.db, "S300", constants.RoleStudent)
	p := f.payload()
	p.ParticipantIDs = []string{other.InstitutionalID}
	_, err := f.svc.Apply(f.ctx, testutil.Actor(other), f.request(p), scan())
	require.NoError(t, err)

	params := helper.Params{Page: 1, PerPage: 20}
	mine, total, err := f.svc.List(f.ctx, testutil.Actor(f.applicant), dto.ApplicationFilter{}, params)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, mine, 1)

	_, total, err = f.svc.List(f.ctx, f.admin, dto.ApplicationFilter{Status: "pending"}, params)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	_, _, err = f.svc.List(f.ctx, f.admin, dto.ApplicationFilter{Status: "lost"}, params)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}
