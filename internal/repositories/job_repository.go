package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"jobtracker_backend/internal/models"
)

var ErrJobNotFound = errors.New("job application not found")

// JobFilter mirrors the query string of GET /jobs.
type JobFilter struct {
	Status   models.JobStatus
	Priority models.JobPriority
	JobType  models.JobType
	Company  string
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	Archived *bool
	Tags     []string
	SortBy   string
	Order    string
	Page
}

// jobSortColumns whitelists sortBy values; anything else falls back to application_date.
var jobSortColumns = map[string]string{
	"applicationDate": "application_date",
	"company":         "company",
	"jobTitle":        "job_title",
	"status":          "status",
	"priority":        "priority",
	"createdAt":       "created_at",
	"updatedAt":       "updated_at",
}

type JobRepository interface {
	Create(db *gorm.DB, job *models.JobApplication) error
	FindByID(db *gorm.DB, userID, id string) (*models.JobApplication, error)
	FindByIDs(db *gorm.DB, userID string, ids []string) ([]models.JobApplication, error)
	Save(db *gorm.DB, job *models.JobApplication) error
	UpdateFields(db *gorm.DB, userID, id string, fields map[string]interface{}) error
	Delete(db *gorm.DB, userID, id string) error
	DeleteAllByUser(db *gorm.DB, userID string) error

	List(db *gorm.DB, userID string, filter JobFilter) ([]models.JobApplication, int64, error)
	FindAll(db *gorm.DB, userID string) ([]models.JobApplication, error)
	FindRecent(db *gorm.DB, userID string, limit int) ([]models.JobApplication, error)
	FindFollowUpCandidates(db *gorm.DB, userID string) ([]models.JobApplication, error)
	FindExistingExternalIDs(db *gorm.DB, userID string, externalIDs []string) (map[string]bool, error)
	IncrementViewCount(db *gorm.DB, userID, id string, at time.Time) error
}

type jobRepository struct {
	store ownedStore[models.JobApplication]
}

func NewJobRepository() JobRepository {
	return &jobRepository{}
}

func mapJobErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrJobNotFound
	}
	return err
}

func (r *jobRepository) Create(db *gorm.DB, job *models.JobApplication) error {
	return r.store.Create(db, job)
}

func (r *jobRepository) FindByID(db *gorm.DB, userID, id string) (*models.JobApplication, error) {
	job, err := r.store.First(db, userID, id)
	return job, mapJobErr(err)
}

func (r *jobRepository) FindByIDs(db *gorm.DB, userID string, ids []string) ([]models.JobApplication, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.store.Find(db, userID, Page{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("id IN ?", ids)
	})
}

func (r *jobRepository) Save(db *gorm.DB, job *models.JobApplication) error {
	return mapJobErr(r.store.Save(db, job))
}

func (r *jobRepository) UpdateFields(db *gorm.DB, userID, id string, fields map[string]interface{}) error {
	return mapJobErr(r.store.Updates(db, userID, id, fields))
}

func (r *jobRepository) Delete(db *gorm.DB, userID, id string) error {
	return mapJobErr(r.store.Delete(db, userID, id))
}

func (r *jobRepository) DeleteAllByUser(db *gorm.DB, userID string) error {
	return r.store.DeleteAll(db, userID)
}

// ---------------- Queries ----------------

func (r *jobRepository) List(db *gorm.DB, userID string, filter JobFilter) ([]models.JobApplication, int64, error) {
	return r.store.FindPage(db, userID, filter.Page, jobFilterScopes(filter), jobOrder(filter.SortBy, filter.Order))
}

func (r *jobRepository) FindAll(db *gorm.DB, userID string) ([]models.JobApplication, error) {
	return r.store.Find(db, userID, Page{}, func(q *gorm.DB) *gorm.DB {
		return q.Order("application_date DESC")
	})
}

func (r *jobRepository) FindRecent(db *gorm.DB, userID string, limit int) ([]models.JobApplication, error) {
	return r.store.Find(db, userID, Page{Page: 1, Limit: limit}, notArchived, func(q *gorm.DB) *gorm.DB {
		return q.Order("created_at DESC")
	})
}

// FindFollowUpCandidates returns open applications; the caller decides which are due.
func (r *jobRepository) FindFollowUpCandidates(db *gorm.DB, userID string) ([]models.JobApplication, error) {
	return r.store.Find(db, userID, Page{}, notArchived, func(q *gorm.DB) *gorm.DB {
		return q.Where("status NOT IN ?", terminalStatuses()).Order("application_date ASC")
	})
}

func (r *jobRepository) FindExistingExternalIDs(db *gorm.DB, userID string, externalIDs []string) (map[string]bool, error) {
	found := make(map[string]bool, len(externalIDs))
	if len(externalIDs) == 0 {
		return found, nil
	}

	var ids []string
	err := r.store.Pluck(db, userID, "external_id", &ids, func(q *gorm.DB) *gorm.DB {
		return q.Where("external_id IN ?", externalIDs)
	})
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		found[id] = true
	}
	return found, nil
}

func (r *jobRepository) IncrementViewCount(db *gorm.DB, userID, id string, at time.Time) error {
	return mapJobErr(r.store.Updates(db, userID, id, map[string]interface{}{
		"analytics_view_count":     gorm.Expr("analytics_view_count + 1"),
		"analytics_last_viewed_at": at,
	}))
}

// ---------------- Scopes ----------------

func notArchived(q *gorm.DB) *gorm.DB {
	return q.Where("is_archived = ?", false)
}

func terminalStatuses() []models.JobStatus {
	var out []models.JobStatus
	for _, s := range models.JobStatuses {
		if s.IsTerminal() {
			out = append(out, s)
		}
	}
	return out
}

func jobFilterScopes(f JobFilter) []Scope {
	var scopes []Scope

	archived := false
	if f.Archived != nil {
		archived = *f.Archived
	}
	scopes = append(scopes, func(q *gorm.DB) *gorm.DB {
		return q.Where("is_archived = ?", archived)
	})

	if f.Status != "" {
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", f.Status) })
	}
	if f.Priority != "" {
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB { return q.Where("priority = ?", f.Priority) })
	}
	if f.JobType != "" {
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB { return q.Where("job_type = ?", f.JobType) })
	}
	if f.Company != "" {
		pattern := "%" + escapeLike(f.Company) + "%"
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB { return q.Where("company ILIKE ?", pattern) })
	}
	if f.Search != "" {
		pattern := "%" + escapeLike(f.Search) + "%"
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB {
			return q.Where("(job_title ILIKE ? OR company ILIKE ? OR notes ILIKE ?)", pattern, pattern, pattern)
		})
	}
	if f.DateFrom != nil {
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB { return q.Where("application_date >= ?", *f.DateFrom) })
	}
	if f.DateTo != nil {
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB { return q.Where("application_date <= ?", *f.DateTo) })
	}
	if len(f.Tags) > 0 {
		tags := pq.StringArray(f.Tags)
		scopes = append(scopes, func(q *gorm.DB) *gorm.DB { return q.Where("tags && ?", tags) })
	}
	return scopes
}

func jobOrder(sortBy, order string) Scope {
	column, ok := jobSortColumns[sortBy]
	if !ok {
		column = "application_date"
	}
	dir := "DESC"
	if strings.EqualFold(order, "asc") {
		dir = "ASC"
	}
	return func(q *gorm.DB) *gorm.DB {
		return q.Order(fmt.Sprintf("%s %s", column, dir)).Order("id")
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
