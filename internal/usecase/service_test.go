package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"resume-builder/internal/adapter/repository"
	"resume-builder/internal/domain"
	"resume-builder/internal/editor"
	"resume-builder/internal/export"
	"resume-builder/internal/model"
	"resume-builder/internal/render"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockJobs struct {
	mock.Mock
}

func (m *mockJobs) Save(ctx context.Context, j *domain.ExportJob) error {
	args := m.Called(ctx, *j)
	return args.Error(0)
}

func (m *mockJobs) ListByUser(ctx context.Context, userID string, limit int) ([]domain.ExportJob, error) {
	args := m.Called(ctx, userID, limit)
	jobs, _ := args.Get(0).([]domain.ExportJob)
	return jobs, args.Error(1)
}

type fakeExporter struct {
	err     error
	surface render.Surface
	file    string
}

func (f *fakeExporter) Export(_ context.Context, s render.Surface, fileName string) (export.Result, error) {
	f.surface, f.file = s, fileName
	if f.err != nil {
		return export.Result{}, f.err
	}
	return export.Result{FileName: fileName, Pages: 2, PDF: []byte("%PDF-1.3"), SizeBytes: 8, Location: "/exports/" + fileName}, nil
}

func newService(t *testing.T, exp Exporter, jobs JobsRepo) *Service {
	t.Helper()
	return newServiceWith(t, Deps{KV: repository.NewMemoryKV(), Exporter: exp, Jobs: jobs})
}

func newServiceWith(t *testing.T, d Deps) *Service {
	t.Helper()
	r, err := render.NewRenderer()
	require.NoError(t, err)
	d.Renderer = r
	svc := NewService(d)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	svc.processor.now = svc.now
	t.Cleanup(func() { _ = svc.Close(context.Background()) })
	return svc
}

func TestService_GetSeedsNewUser(t *testing.T) {
	svc := newService(t, &fakeExporter{}, nil)
	v := svc.Get(context.Background(), "u1")
	assert.Equal(t, model.TemplateModern, v.Template)
	assert.Equal(t, model.Seed().WorkExperience, v.Document.WorkExperience)
}

func TestService_ReplaceSection(t *testing.T) {
	svc := newService(t, &fakeExporter{}, nil)
	ctx := context.Background()

	got, err := svc.ReplaceSection(ctx, "u1", model.SectionHobbies, []byte(`["Chess","Go"]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Chess", "Go"}, got)

	_, err = svc.ReplaceSection(ctx, "u1", model.SectionWorkExperience, []byte(`[]`))
	assert.ErrorIs(t, err, model.ErrEmptySection)

	// editors see the replaced section
	_, err = svc.ReplaceSection(ctx, "u1", model.SectionWorkExperience, []byte(`[{"id":"a","company":"Acme"},{"id":"b"}]`))
	require.NoError(t, err)
	got, err = svc.RemoveEntry(ctx, "u1", model.SectionWorkExperience, 1)
	require.NoError(t, err)
	work := got.([]model.WorkEntry)
	require.Len(t, work, 1)
	assert.Equal(t, "Acme", work[0].Company)
}

func TestService_EntryEdits(t *testing.T) {
	svc := newService(t, &fakeExporter{}, nil)
	ctx := context.Background()

	got, err := svc.AddEntry(ctx, "u1", model.SectionProjects, "")
	require.NoError(t, err)
	assert.Len(t, got.([]model.ProjectEntry), 2)

	on := true
	got, err = svc.UpdateEntry(ctx, "u1", model.SectionProjects, 1, EntryChange{
		Fields:  map[string]string{"name": "Engine", "startDate": "2020-01"},
		Current: &on,
	})
	require.NoError(t, err)
	p := got.([]model.ProjectEntry)[1]
	assert.Equal(t, "Engine", p.Name)
	assert.True(t, p.Span.Ongoing())

	_, err = svc.UpdateEntry(ctx, "u1", model.SectionProjects, 1, EntryChange{Fields: map[string]string{"endDate": "2021-01"}})
	assert.ErrorIs(t, err, model.ErrEndDateWhileOngoing)

	_, err = svc.UpdateEntry(ctx, "u1", model.SectionCertifications, 0, EntryChange{Current: &on})
	assert.ErrorIs(t, err, model.ErrUnknownField)

	got, err = svc.UpdateEntry(ctx, "u1", model.SectionPersonalInfo, 0, EntryChange{Fields: map[string]string{"firstName": "Ada"}})
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.(model.PersonalInfo).FirstName)

	got, err = svc.AddItem(ctx, "u1", model.SectionSkills, 0, " Go ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, got.([]model.SkillCategory)[0].Skills)

	_, err = svc.AddItem(ctx, "u1", model.SectionEducation, 0, "x")
	assert.ErrorIs(t, err, model.ErrSectionType)

	_, err = svc.AddEntry(ctx, "u1", model.SectionPersonalInfo, "")
	assert.ErrorIs(t, err, model.ErrSectionType)
}

func TestService_TemplateAndRender(t *testing.T) {
	svc := newService(t, &fakeExporter{}, nil)
	ctx := context.Background()

	_, err := svc.SetTemplate(ctx, "u1", "retro")
	assert.ErrorIs(t, err, model.ErrUnknownTemplate)

	tpl, err := svc.SetTemplate(ctx, "u1", "creative")
	require.NoError(t, err)
	assert.Equal(t, model.TemplateCreative, tpl)

	s, err := svc.Render(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, model.TemplateCreative, s.Variant)
	assert.Equal(t, "u1", s.Key)

	s, err = svc.Render(ctx, "u1", "classic")
	require.NoError(t, err)
	assert.Equal(t, model.TemplateClassic, s.Variant)
}

func TestService_ResetAndSave(t *testing.T) {
	svc := newService(t, &fakeExporter{}, nil)
	ctx := context.Background()

	_, err := svc.UpdateEntry(ctx, "u1", model.SectionPersonalInfo, 0, EntryChange{Fields: map[string]string{"firstName": "Ada"}})
	require.NoError(t, err)
	require.NoError(t, svc.Save(ctx, "u1"))

	v, err := svc.Reset(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, v.Document.PersonalInfo.FirstName)
	assert.Empty(t, svc.sessions["u1"].editors.Personal.Info().FirstName)
}

func TestService_ExportRecordsJob(t *testing.T) {
	jobs := &mockJobs{}
	jobs.On("Save", mock.Anything, mock.MatchedBy(func(j domain.ExportJob) bool {
		return j.Status == domain.ExportStatusRunning
	})).Return(nil).Once()
	jobs.On("Save", mock.Anything, mock.MatchedBy(func(j domain.ExportJob) bool {
		return j.Status == domain.ExportStatusSucceeded && j.Pages == 2 && j.Template == "modern" && !j.FinishedAt.IsZero()
	})).Return(nil).Once()

	exp := &fakeExporter{}
	svc := newService(t, exp, jobs)
	ctx := context.Background()
	_, err := svc.UpdateEntry(ctx, "u1", model.SectionPersonalInfo, 0, EntryChange{Fields: map[string]string{"firstName": "Ada", "lastName": "Lovelace"}})
	require.NoError(t, err)

	res, err := svc.Export(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada_Lovelace_Resume_2024-05-01.pdf", res.FileName)
	assert.Equal(t, "u1", exp.surface.Key)
	jobs.AssertExpectations(t)
}

func TestService_ExportFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status string
	}{
		{"in progress", export.ErrExportInProgress, domain.ExportStatusRejected},
		{"failed", &export.ExportError{Stage: export.StageRasterize, Err: errors.New("chrome")}, domain.ExportStatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := &mockJobs{}
			jobs.On("Save", mock.Anything, mock.MatchedBy(func(j domain.ExportJob) bool {
				return j.Status == domain.ExportStatusRunning
			})).Return(nil).Once()
			jobs.On("Save", mock.Anything, mock.MatchedBy(func(j domain.ExportJob) bool {
				return j.Status == tt.status && j.Error != ""
			})).Return(errors.New("db down")).Once()

			svc := newService(t, &fakeExporter{err: tt.err}, jobs)
			_, err := svc.Export(context.Background(), "u1")
			assert.ErrorIs(t, err, tt.err)
			jobs.AssertExpectations(t)
		})
	}
}

func TestService_ExportHistory(t *testing.T) {
	jobs := &mockJobs{}
	want := []domain.ExportJob{{UserID: "u1", Status: domain.ExportStatusSucceeded}}
	jobs.On("ListByUser", mock.Anything, "u1", 5).Return(want, nil)

	svc := newService(t, &fakeExporter{}, jobs)
	got, err := svc.ExportHistory(context.Background(), "u1", 5)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	none := newService(t, &fakeExporter{}, nil)
	got, err = none.ExportHistory(context.Background(), "u1", 5)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestService_Assist(t *testing.T) {
	r, err := render.NewRenderer()
	require.NoError(t, err)
	svc := NewService(Deps{KV: repository.NewMemoryKV(), Renderer: r, Exporter: &fakeExporter{}, Assist: editor.NewAssist(nil, time.Second, nil)})
	t.Cleanup(func() { _ = svc.Close(context.Background()) })
	ctx := context.Background()

	out, err := svc.AssistSummary(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, out.Applied)
	require.NotNil(t, out.Notice)
	assert.NotEmpty(t, out.Value.(model.PersonalInfo).Summary)

	out, err = svc.AssistAchievements(ctx, "u1", "exp-1")
	require.NoError(t, err)
	assert.NotEmpty(t, out.Value.(model.WorkEntry).Achievements)

	_, err = svc.AssistAchievements(ctx, "u1", "nope")
	assert.ErrorIs(t, err, model.ErrInvalidEntryID)
}
