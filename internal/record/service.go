package record

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PhotoUploader converts a locally captured image into a durable URL.
// Implemented by the Cloudinary client in internal/photostore.
type PhotoUploader interface {
	Upload(ctx context.Context, data string, kind string) (string, error)
}

// CheckInInput carries everything the front desk collects for one session.
// Photo values are either durable URLs or raw data-URL captures straight
// from the camera; captures are uploaded before the record is persisted.
type CheckInInput struct {
	StudentID         string   `json:"studentId"`
	StudentName       string   `json:"studentName"`
	ClassName         string   `json:"className"`
	DeviceDescription string   `json:"deviceDescription"`
	StudentPhoto      string   `json:"studentPhoto"`
	DevicePhotos      []string `json:"devicePhotos"`
}

// Service orchestrates the record lifecycle: check-in creation with photo
// upload sequencing, and the terminal check-out transition.
type Service struct {
	store         Store
	uploader      PhotoUploader
	uploadLimit   int
	uploadTimeout time.Duration
	now           func() time.Time
}

// NewService creates a lifecycle service.
func NewService(store Store, uploader PhotoUploader, uploadLimit int, uploadTimeout time.Duration) *Service {
	if uploadLimit <= 0 {
		uploadLimit = 6
	}
	if uploadTimeout <= 0 {
		uploadTimeout = 30 * time.Second
	}
	return &Service{
		store:         store,
		uploader:      uploader,
		uploadLimit:   uploadLimit,
		uploadTimeout: uploadTimeout,
		now:           time.Now,
	}
}

// CheckIn validates input, uploads any raw photo captures, and persists a
// new checked-in record. A single failed upload aborts the whole operation
// with no partial record persisted.
func (s *Service) CheckIn(ctx context.Context, in CheckInInput) (Record, error) {
	studentID, err := NormalizeStudentID(in.StudentID)
	if err != nil {
		return Record{}, &ValidationError{Field: "studentId"}
	}
	if strings.TrimSpace(in.StudentName) == "" {
		return Record{}, &ValidationError{Field: "studentName"}
	}
	if strings.TrimSpace(in.ClassName) == "" {
		return Record{}, &ValidationError{Field: "className"}
	}
	if strings.TrimSpace(in.DeviceDescription) == "" {
		return Record{}, &ValidationError{Field: "deviceDescription"}
	}
	if in.StudentPhoto == "" {
		return Record{}, &ValidationError{Field: "studentPhoto"}
	}
	if len(in.DevicePhotos) == 0 {
		return Record{}, &ValidationError{Field: "devicePhotos"}
	}

	studentPhoto, devicePhotos, err := s.resolvePhotos(ctx, in.StudentPhoto, in.DevicePhotos)
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		RecordID:          uuid.NewString(),
		StudentID:         studentID,
		StudentName:       in.StudentName,
		ClassName:         in.ClassName,
		StudentPhoto:      studentPhoto,
		DevicePhotos:      devicePhotos,
		DeviceDescription: in.DeviceDescription,
		CheckInTime:       s.now().UTC(),
		Status:            StatusCheckedIn,
	}
	return s.store.Insert(ctx, rec)
}

// CheckOut looks up the student's open record and applies the terminal
// transition. Repeating the call reports ErrAlreadyCheckedOut and leaves
// the record unchanged.
func (s *Service) CheckOut(ctx context.Context, rawStudentID string) (Record, error) {
	studentID, err := NormalizeStudentID(rawStudentID)
	if err != nil {
		return Record{}, err
	}
	rec, err := s.store.FindByStudentID(ctx, studentID)
	if err != nil {
		return Record{}, err
	}
	if rec.Status != StatusCheckedIn {
		return Record{}, ErrAlreadyCheckedOut
	}
	return s.store.Checkout(ctx, rec.RecordID, s.now().UTC())
}

// resolvePhotos uploads raw captures concurrently, bounded by uploadLimit,
// preserving device photo order. All uploads must succeed before any photo
// reference is returned.
func (s *Service) resolvePhotos(ctx context.Context, studentPhoto string, devicePhotos []string) (string, []string, error) {
	resolvedStudent := studentPhoto
	resolvedDevices := append([]string(nil), devicePhotos...)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.uploadLimit)

	if isLocalCapture(studentPhoto) {
		g.Go(func() error {
			url, err := s.uploadOne(gctx, studentPhoto, PhotoKindStudent)
			if err != nil {
				return err
			}
			resolvedStudent = url
			return nil
		})
	}
	for i := range resolvedDevices {
		if !isLocalCapture(resolvedDevices[i]) {
			continue
		}
		i := i
		g.Go(func() error {
			url, err := s.uploadOne(gctx, resolvedDevices[i], PhotoKindDevice)
			if err != nil {
				return err
			}
			resolvedDevices[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", nil, err
	}
	return resolvedStudent, resolvedDevices, nil
}

func (s *Service) uploadOne(ctx context.Context, data, kind string) (string, error) {
	if s.uploader == nil {
		return "", fmt.Errorf("photo upload: storage not configured")
	}
	uctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()
	url, err := s.uploader.Upload(uctx, data, kind)
	if err != nil {
		return "", fmt.Errorf("photo upload: %w", err)
	}
	return url, nil
}

// isLocalCapture reports whether a photo reference is a raw camera capture
// (a base64 data URL) rather than an already durable URL.
func isLocalCapture(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}
