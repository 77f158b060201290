package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/techversity/crm-api/internal/dto"
	"github.com/techversity/crm-api/internal/models"
	"github.com/techversity/crm-api/internal/repository"
)

// ErrEnquiryNotFound indicates the requested student enquiry does not exist.
var ErrEnquiryNotFound = errors.New("student not found")

// ErrFollowUpDetailsRequired rejects a Follow up transition without a note
// and parseable follow-up date.
var ErrFollowUpDetailsRequired = errors.New("note and follow-up date are required")

// ErrInvalidDateRange rejects an unparseable startDate/endDate pair.
var ErrInvalidDateRange = errors.New("invalid date range")

// Course names recognised in Meta lead-form titles.
var knownCourses = []string{"Software Testing", "Data Analytics", "MERN Stack Development"}

// EnquiryService exposes the student-enquiry use cases.
type EnquiryService interface {
	Create(ctx context.Context, payload dto.StudentCreateRequest) (dto.EnquiryResponse, error)
	BulkUpload(ctx context.Context, payload dto.StudentUploadRequest) (int, error)
	ListBetween(ctx context.Context, startDate, endDate string) ([]dto.EnquiryResponse, error)
	Update(ctx context.Context, id uint, payload dto.StudentUpdateRequest) (dto.EnquiryResponse, error)
}

type enquiryService struct {
	repo      repository.EnquiryRepository
	validator *validator.Validate
	events    EventPublisher
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewEnquiryService builds a new enquiry service.
func NewEnquiryService(repo repository.EnquiryRepository, validate *validator.Validate, events EventPublisher, logger zerolog.Logger) EnquiryService {
	if events == nil {
		events = NopEventPublisher{}
	}

	return &enquiryService{
		repo:      repo,
		validator: validate,
		events:    events,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "enquiry_service").Logger(),
		now:       time.Now,
	}
}

func (s *enquiryService) Create(ctx context.Context, payload dto.StudentCreateRequest) (dto.EnquiryResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EnquiryResponse{}, err
	}

	status := payload.Status
	if status == "" {
		status = models.StatusPending
	}

	enquiry := models.StudentEnquiry{
		Name:               strings.TrimSpace(payload.Name),
		Phone:              strings.TrimSpace(payload.Phone),
		Course:             strings.TrimSpace(payload.Course),
		CourseFee:          payload.CourseFee,
		AreYou:             payload.AreYou,
		CurrentlyWorkingIn: payload.CurrentlyWorkingIn,
		LearningMode:       payload.LearningMode,
		Source:             payload.Source,
		Status:             status,
		Attender:           strings.TrimSpace(payload.Attender),
		BalanceAmount:      payload.CourseFee,
		PaymentStatus:      models.PaymentStatusUnpaid,
	}

	if err := s.repo.Create(ctx, &enquiry); err != nil {
		return dto.EnquiryResponse{}, err
	}

	s.logger.Info().Uint("enquiry_id", enquiry.ID).Str("course", enquiry.Course).Msg("student enquiry created")

	return dto.NewEnquiryResponse(enquiry), nil
}

func (s *enquiryService) BulkUpload(ctx context.Context, payload dto.StudentUploadRequest) (int, error) {
	if err := s.validator.Struct(payload); err != nil {
		return 0, err
	}

	enquiries := make([]models.StudentEnquiry, 0, len(payload.Students))
	for _, row := range payload.Students {
		enquiry := models.StudentEnquiry{
			Name:               strings.TrimSpace(row.FullName),
			Phone:              cleanPhoneNumber(row.PhoneNumber),
			Course:             extractCourseName(row.FormName),
			AreYou:             normalizeExperience(row.AreYou),
			CurrentlyWorkingIn: normalizeWorkingIn(row.WorkingIn),
			LearningMode:       normalizeLearningMode(row.PreferredMode),
			Source:             "Meta",
			Status:             models.StatusPending,
			PaymentStatus:      models.PaymentStatusUnpaid,
		}
		if created, err := time.Parse(time.RFC3339, row.CreatedTime); err == nil {
			enquiry.CreatedAt = created
		}
		enquiries = append(enquiries, enquiry)
	}

	if err := s.repo.CreateBatch(ctx, enquiries); err != nil {
		return 0, err
	}

	s.logger.Info().Int("count", len(enquiries)).Msg("student enquiries uploaded")

	return len(enquiries), nil
}

func (s *enquiryService) ListBetween(ctx context.Context, startDate, endDate string) ([]dto.EnquiryResponse, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad start date %q", ErrInvalidDateRange, startDate)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad end date %q", ErrInvalidDateRange, endDate)
	}
	end = end.Add(24*time.Hour - time.Nanosecond)

	enquiries, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]models.StudentEnquiry, 0, len(enquiries))
	for _, enquiry := range enquiries {
		if enquiryTouchedBetween(enquiry, start, end) {
			matched = append(matched, enquiry)
		}
	}

	return dto.NewEnquiryResponseSlice(matched), nil
}

// enquiryTouchedBetween matches the record's own updated_at or any embedded
// history entry's updated_at against the inclusive range.
func enquiryTouchedBetween(enquiry models.StudentEnquiry, start, end time.Time) bool {
	if !enquiry.UpdatedAt.Before(start) && !enquiry.UpdatedAt.After(end) {
		return true
	}
	for _, entry := range enquiry.History {
		if !entry.UpdatedAt.Before(start) && !entry.UpdatedAt.After(end) {
			return true
		}
	}
	return false
}

// Update is the lifecycle operation: it snapshots pre-update state into the
// history log, appends payments and rederives the balance, then applies the
// status/attender overrides and persists the record with a single write.
func (s *enquiryService) Update(ctx context.Context, id uint, payload dto.StudentUpdateRequest) (dto.EnquiryResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EnquiryResponse{}, err
	}

	enquiry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnquiryResponse{}, ErrEnquiryNotFound
		}
		return dto.EnquiryResponse{}, err
	}

	note := strings.TrimSpace(s.sanitizer.Sanitize(payload.Note))

	var followUpDate *time.Time
	if payload.FollowUpDate != "" {
		parsed, parseErr := time.Parse(time.RFC3339, payload.FollowUpDate)
		if parseErr == nil {
			followUpDate = &parsed
		}
	}

	if payload.Status == models.StatusFollowUp {
		if note == "" || followUpDate == nil {
			return dto.EnquiryResponse{}, ErrFollowUpDetailsRequired
		}
	}

	now := s.now()
	previousStatus := enquiry.Status

	shouldAppendHistory := (payload.Status != "" && payload.Status != enquiry.Status) ||
		(payload.Attender != "" && payload.Attender != enquiry.Attender) ||
		note != "" ||
		followUpDate != nil

	if shouldAppendHistory {
		enquiry.History = append(enquiry.History, models.HistoryEntry{
			UpdatedAt:    now,
			Status:       enquiry.Status,
			Attender:     enquiry.Attender,
			Note:         note,
			FollowUpDate: followUpDate,
		})
	}

	if payload.Amount != nil && payload.PaymentMode != "" {
		enquiry.Payments = append(enquiry.Payments, models.PaymentEntry{
			PaidAmount:  *payload.Amount,
			PaymentMode: payload.PaymentMode,
			PaymentDate: now,
		})

		if payload.CourseFee != nil {
			enquiry.CourseFee = *payload.CourseFee
		}
		enquiry.BalanceAmount, enquiry.PaymentStatus = DeriveBalance(enquiry.CourseFee, enquiry.Payments)
	}

	if payload.Status != "" {
		enquiry.Status = payload.Status
	}
	if payload.Attender != "" {
		enquiry.Attender = payload.Attender
	}

	if err := s.repo.Save(ctx, &enquiry); err != nil {
		return dto.EnquiryResponse{}, err
	}

	if payload.Status != "" && payload.Status != previousStatus {
		s.events.PublishStatusChanged(ctx, enquiry, previousStatus)
	}

	s.logger.Info().
		Uint("enquiry_id", enquiry.ID).
		Str("status", enquiry.Status).
		Bool("history_appended", shouldAppendHistory).
		Msg("student enquiry updated")

	return dto.NewEnquiryResponse(enquiry), nil
}

func extractCourseName(formName string) string {
	if formName == "" {
		return ""
	}

	lower := strings.ToLower(formName)
	for _, course := range knownCourses {
		if strings.Contains(lower, strings.ToLower(course)) {
			return course
		}
	}

	return "Unknown"
}

func cleanPhoneNumber(phone string) string {
	phone = strings.TrimSpace(phone)
	return strings.TrimPrefix(phone, "+91")
}

func normalizeExperience(value string) string {
	if strings.EqualFold(strings.TrimSpace(value), "Experience") {
		return "Experienced"
	}
	return "Fresher"
}

func normalizeLearningMode(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "online":
		return "Online"
	case "offline":
		return "Offline"
	default:
		return ""
	}
}

func normalizeWorkingIn(workingIn string) string {
	lower := strings.ToLower(strings.TrimSpace(workingIn))
	switch {
	case lower == "":
		return ""
	case strings.Contains(lower, "non"):
		return "Non IT"
	case strings.Contains(lower, "it"):
		return "IT"
	default:
		return ""
	}
}
