package attendance

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/logbook"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/setting"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/google/uuid"
)

var wib = time.FixedZone("WIB", 7*60*60)

var (
	_ attendance.AttendanceRepository = (*fakeAttendanceRepository)(nil)
	_ logbook.EntryChecker            = (*fakeLogbookRepository)(nil)
	_ user.UserRepository             = (*fakeUserRepository)(nil)
	_ setting.SettingRepository       = (*fakeSettingRepository)(nil)
	_ location.Resolver               = (*stubResolver)(nil)
	_ attendance.PhotoUploader        = (*fakePhotoUploader)(nil)
)

func at(h, m int) time.Time {
	return time.Date(2025, 3, 10, h, m, 0, 0, wib)
}

// fakeAttendanceRepository enforces the (user_id, date) uniqueness and the
// conditional close the way the postgres schema does.
type fakeAttendanceRepository struct {
	mu       sync.Mutex
	rows     map[string]*attendance.Attendance
	closeErr map[string]error
	listErr  error

	// getBarrier holds concurrent callers inside GetByUserAndDate until all arrive
	getBarrier *sync.WaitGroup
}

func newFakeAttendanceRepository() *fakeAttendanceRepository {
	return &fakeAttendanceRepository{
		rows:     map[string]*attendance.Attendance{},
		closeErr: map[string]error{},
	}
}

func (f *fakeAttendanceRepository) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.UserID == a.UserID && r.Date.Equal(a.Date) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
	}
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	row := a
	f.rows[a.ID] = &row
	return a, nil
}

func (f *fakeAttendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return *r, nil
}

func (f *fakeAttendanceRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.Attendance, error) {
	if f.getBarrier != nil {
		f.getBarrier.Done()
		f.getBarrier.Wait()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.UserID == userID && r.Date.Equal(date) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAttendanceRepository) UpdateCheckIn(ctx context.Context, a attendance.Attendance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[a.ID]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	if r.CheckInAt != nil {
		return attendance.ErrAlreadyCheckedIn
	}
	row := a
	f.rows[a.ID] = &row
	return nil
}

func (f *fakeAttendanceRepository) Update(ctx context.Context, a attendance.Attendance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[a.ID]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	row := a
	f.rows[a.ID] = &row
	return nil
}

func (f *fakeAttendanceRepository) Close(ctx context.Context, id string, fields attendance.CloseFields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.closeErr[id]; err != nil {
		return err
	}
	r, ok := f.rows[id]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	if r.CheckOutAt != nil {
		return attendance.ErrAlreadyCheckedOut
	}
	applyCloseFields(r, fields)
	return nil
}

func (f *fakeAttendanceRepository) ListOpenForDate(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attendance.Attendance
	for _, r := range f.rows {
		if r.Date.Equal(date) && r.IsOpen() {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (f *fakeAttendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attendance.Attendance
	for _, r := range f.rows {
		if filter.UserID != nil && r.UserID != *filter.UserID {
			continue
		}
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeAttendanceRepository) ListByUser(ctx context.Context, userID string, filter attendance.MyAttendanceFilter) ([]attendance.Attendance, int64, error) {
	return f.List(ctx, filter.AsFilter(userID))
}

// seed stores a record directly, bypassing the service.
func (f *fakeAttendanceRepository) seed(a attendance.Attendance) attendance.Attendance {
	if a.ApprovalStatus == "" {
		a.ApprovalStatus = attendance.ApprovalPending
	}
	if a.Status == "" {
		a.Status = attendance.StatusPresent
	}
	created, _ := f.Create(context.Background(), a)
	return created
}

type fakeLogbookRepository struct {
	entries map[string]bool
}

func (f *fakeLogbookRepository) key(userID string, date time.Time) string {
	return userID + "|" + date.Format("2006-01-02")
}

func (f *fakeLogbookRepository) ExistsForUserAndDate(ctx context.Context, userID string, date time.Time) (bool, error) {
	return f.entries[f.key(userID, date)], nil
}

func (f *fakeLogbookRepository) add(userID string, date time.Time) {
	if f.entries == nil {
		f.entries = map[string]bool{}
	}
	f.entries[f.key(userID, date)] = true
}

type fakeUserRepository struct {
	users map[string]user.User
}

func (f *fakeUserRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

type fakeSettingRepository struct {
	rows []setting.Setting
}

func (f *fakeSettingRepository) GetAll(ctx context.Context) ([]setting.Setting, error) {
	return f.rows, nil
}

func (f *fakeSettingRepository) Upsert(ctx context.Context, settings []setting.Setting) error {
	f.rows = settings
	return nil
}

// stubResolver returns a fixed decision.
type stubResolver struct {
	resolution location.Resolution
}

func (s *stubResolver) Resolve(ctx context.Context, clientIP string, latitude, longitude *float64) location.Resolution {
	return s.resolution
}

var (
	onsite = location.Resolution{
		IsOnsite: true,
		Reason:   "Connected from the HQ network",
		Location: &location.OfficeLocation{ID: "loc-hq", Name: "HQ"},
		Method:   location.MethodIPDirect,
	}
	offsite = location.Resolution{
		IsOnsite: false,
		Reason:   "Not connected to an office network",
		Method:   location.MethodOffsite,
	}
)

type fakePhotoUploader struct {
	mu      sync.Mutex
	uploads []string
}

func (f *fakePhotoUploader) UploadAttendancePhoto(ctx context.Context, userID string, date time.Time, file io.Reader, filename string, kind string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := "attendance/" + userID + "/" + kind + "/" + filename
	f.uploads = append(f.uploads, path)
	return path, nil
}
