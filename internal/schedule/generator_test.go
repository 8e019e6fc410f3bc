package schedule

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"week-planner/internal/model"
	"week-planner/internal/repository"
	"week-planner/internal/store"
)

type fakeRemoteSchedule struct {
	fail bool
	data model.ClassScheduleData
	puts int
}

func (f *fakeRemoteSchedule) GetClassSchedule(ctx context.Context) (model.ClassScheduleData, error) {
	if f.fail {
		return model.ClassScheduleData{}, errors.New("connection refused")
	}
	return f.data, nil
}

func (f *fakeRemoteSchedule) PutClassSchedule(ctx context.Context, data model.ClassScheduleData) error {
	if f.fail {
		return errors.New("connection refused")
	}
	f.data = data
	f.puts++
	return nil
}

type fakeImporter struct {
	imported []model.Task
	cleared  int
}

func (f *fakeImporter) ImportGenerated(ctx context.Context, tasks []model.Task) (int, store.SyncStatus) {
	f.imported = append(f.imported, tasks...)
	return len(tasks), store.SyncRemote
}

func (f *fakeImporter) ClearGenerated(ctx context.Context) (int, store.SyncStatus) {
	f.cleared++
	n := len(f.imported)
	f.imported = nil
	return n, store.SyncRemote
}

func newMirror(t *testing.T) *repository.MirrorRepository {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "mirror.db"))
	assert.NoError(t, err)
	return repository.NewMirrorRepository(db)
}

// Two school weeks in August 2026 with a one-week break in the middle.
func sampleSchedule() model.ClassScheduleData {
	return model.ClassScheduleData{
		Semester: model.DateRange{StartDate: "2026-08-03", EndDate: "2026-08-14"},
		Breaks:   []model.DateRange{{Name: "Reading week", StartDate: "2026-08-05", EndDate: "2026-08-07"}},
		Classes: []model.ClassDefinition{
			{
				ID: "c1", Name: "Algorithms", Code: "CS301", Professor: "Rivers", Location: "Hall 2",
				Days: []string{"Monday", "Wednesday"}, StartTime: "10:00", EndTime: "11:30", Color: "blue",
			},
			{
				ID: "c2", Name: "Statistics",
				Days: []string{"Friday"}, StartTime: "14:00", EndTime: "15:00",
			},
		},
	}
}

func TestExpandWalksSemesterSkippingBreaks(t *testing.T) {
	g := New(&fakeRemoteSchedule{}, newMirror(t), &fakeImporter{}, zap.NewNop().Sugar())
	g.data = sampleSchedule()

	sessions, err := g.Expand()
	assert.NoError(t, err)

	// Algorithms: Mon 08-03, Mon 08-10, Wed 08-12 (Wed 08-05 falls in the
	// break). Statistics: Fri 08-14 (Fri 08-07 falls in the break).
	assert.Len(t, sessions, 4)

	var algoDates, statDates []string
	for _, s := range sessions {
		assert.True(t, s.IsClassTask)
		assert.NotEmpty(t, s.ID)
		assert.Equal(t, model.PriorityMedium, s.Priority)
		switch s.ClassID {
		case "c1":
			algoDates = append(algoDates, s.AbsoluteDate)
			assert.Equal(t, "Algorithms", s.Title)
			assert.Equal(t, "CS301 - Prof. Rivers @ Hall 2", s.Description)
			assert.Equal(t, "10:00", s.Time)
			assert.Equal(t, "11:30", s.EndTime)
		case "c2":
			statDates = append(statDates, s.AbsoluteDate)
			assert.Equal(t, "Friday", s.Day)
			assert.Empty(t, s.Description, "no metadata, empty body")
		}
	}
	assert.Equal(t, []string{"2026-08-03", "2026-08-10", "2026-08-12"}, algoDates)
	assert.Equal(t, []string{"2026-08-14"}, statDates)
}

func TestExpandValidation(t *testing.T) {
	g := New(&fakeRemoteSchedule{}, newMirror(t), &fakeImporter{}, zap.NewNop().Sugar())

	_, err := g.Expand()
	assert.Error(t, err, "unset semester rejected")

	g.data = sampleSchedule()
	g.data.Semester = model.DateRange{StartDate: "2026-08-14", EndDate: "2026-08-03"}
	_, err = g.Expand()
	assert.Error(t, err, "inverted semester rejected")

	g.data = sampleSchedule()
	g.data.Classes = nil
	_, err = g.Expand()
	assert.Error(t, err, "empty class list rejected")
}

func TestGenerateAndClearRoundTrip(t *testing.T) {
	importer := &fakeImporter{}
	g := New(&fakeRemoteSchedule{}, newMirror(t), importer, zap.NewNop().Sugar())
	g.data = sampleSchedule()

	added, status, err := g.Generate(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, store.SyncRemote, status)
	assert.Equal(t, 4, added)

	removed, _ := g.Clear(context.Background())
	assert.Equal(t, 4, removed)
}

func TestLoadPrefersRemoteAndMirrors(t *testing.T) {
	remote := &fakeRemoteSchedule{data: sampleSchedule()}
	mirror := newMirror(t)
	g := New(remote, mirror, &fakeImporter{}, zap.NewNop().Sugar())

	assert.NoError(t, g.Load(context.Background()))
	assert.Len(t, g.Data().Classes, 2)

	// Remote goes away: a fresh generator loads the mirrored copy.
	remote.fail = true
	g2 := New(remote, mirror, &fakeImporter{}, zap.NewNop().Sugar())
	assert.NoError(t, g2.Load(context.Background()))
	assert.Len(t, g2.Data().Classes, 2)
}

func TestLoadStartsEmptyWithoutAnyCopy(t *testing.T) {
	g := New(&fakeRemoteSchedule{fail: true}, newMirror(t), &fakeImporter{}, zap.NewNop().Sugar())
	assert.NoError(t, g.Load(context.Background()))
	assert.Empty(t, g.Data().Classes)
}

func TestSaveDegradesWhenRemoteDown(t *testing.T) {
	remote := &fakeRemoteSchedule{}
	mirror := newMirror(t)
	g := New(remote, mirror, &fakeImporter{}, zap.NewNop().Sugar())

	status, err := g.Save(context.Background(), sampleSchedule())
	assert.NoError(t, err)
	assert.Equal(t, store.SyncRemote, status)
	assert.Equal(t, 1, remote.puts)

	remote.fail = true
	status, err = g.Save(context.Background(), model.ClassScheduleData{})
	assert.NoError(t, err)
	assert.Equal(t, store.SyncLocalOnly, status)
}
