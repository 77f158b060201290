package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/techversity/crm-api/internal/models"
)

// StatusCount pairs a pipeline status or lead source with its record count.
type StatusCount struct {
	Label string `gorm:"column:label"`
	Count int64  `gorm:"column:count"`
}

// EnquiryRepository defines persistence operations for student enquiries.
// Predicates over the embedded history array live in the service layer; the
// JSON column has no portable SQL element-match across postgres and sqlite.
type EnquiryRepository interface {
	Create(ctx context.Context, enquiry *models.StudentEnquiry) error
	CreateBatch(ctx context.Context, enquiries []models.StudentEnquiry) error
	GetByID(ctx context.Context, id uint) (models.StudentEnquiry, error)
	Save(ctx context.Context, enquiry *models.StudentEnquiry) error
	List(ctx context.Context) ([]models.StudentEnquiry, error)
	ListWithHistory(ctx context.Context) ([]models.StudentEnquiry, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	CountBySource(ctx context.Context) ([]StatusCount, error)
	SumOutstandingBalance(ctx context.Context) (float64, error)
}

type enquiryRepository struct {
	db *gorm.DB
}

// NewEnquiryRepository instantiates a GORM-backed repository.
func NewEnquiryRepository(db *gorm.DB) EnquiryRepository {
	return &enquiryRepository{db: db}
}

func (r *enquiryRepository) Create(ctx context.Context, enquiry *models.StudentEnquiry) error {
	return r.db.WithContext(ctx).Create(enquiry).Error
}

func (r *enquiryRepository) CreateBatch(ctx context.Context, enquiries []models.StudentEnquiry) error {
	if len(enquiries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&enquiries).Error
}

func (r *enquiryRepository) GetByID(ctx context.Context, id uint) (models.StudentEnquiry, error) {
	var enquiry models.StudentEnquiry
	if err := r.db.WithContext(ctx).First(&enquiry, id).Error; err != nil {
		return models.StudentEnquiry{}, err
	}

	return enquiry, nil
}

// Save writes the whole record back, embedded history and payments included.
func (r *enquiryRepository) Save(ctx context.Context, enquiry *models.StudentEnquiry) error {
	return r.db.WithContext(ctx).Save(enquiry).Error
}

func (r *enquiryRepository) List(ctx context.Context) ([]models.StudentEnquiry, error) {
	var enquiries []models.StudentEnquiry
	if err := r.db.WithContext(ctx).Order("updated_at DESC").Find(&enquiries).Error; err != nil {
		return nil, err
	}

	return enquiries, nil
}

// ListWithHistory returns every enquiry carrying at least one history entry.
// The reminder scanner filters the embedded entries against its window.
func (r *enquiryRepository) ListWithHistory(ctx context.Context) ([]models.StudentEnquiry, error) {
	var enquiries []models.StudentEnquiry
	if err := r.db.WithContext(ctx).Find(&enquiries).Error; err != nil {
		return nil, err
	}

	withHistory := enquiries[:0]
	for _, enquiry := range enquiries {
		if len(enquiry.History) > 0 {
			withHistory = append(withHistory, enquiry)
		}
	}

	return withHistory, nil
}

func (r *enquiryRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.WithContext(ctx).
		Model(&models.StudentEnquiry{}).
		Select("status AS label, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error
	return counts, err
}

func (r *enquiryRepository) CountBySource(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.WithContext(ctx).
		Model(&models.StudentEnquiry{}).
		Select("source AS label, COUNT(*) AS count").
		Group("source").
		Scan(&counts).Error
	return counts, err
}

func (r *enquiryRepository) SumOutstandingBalance(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.StudentEnquiry{}).
		Select("COALESCE(SUM(balance_amount), 0)").
		Scan(&total).Error
	return total, err
}
