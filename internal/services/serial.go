package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"autodocs/internal/metrics"
	"autodocs/internal/models"
	"autodocs/internal/repositories"
)

// InvalidTag — префикс серийного номера для неизвестного типа документа.
// Такой номер нельзя сохранять или отдавать клиенту.
const InvalidTag = "INVALID"

var documentTags = map[string]string{
	models.DocCertificate: "CRT",
	models.DocTestimonial: "TST",
	models.DocTranscript:  "TRT",
	models.DocAppeared:    "APR",
}

// DocumentTag сравнивает без учёта регистра и пробелов по краям: "Certificate" → CRT.
func DocumentTag(docType string) string {
	if tag, ok := documentTags[strings.ToLower(strings.TrimSpace(docType))]; ok {
		return tag
	}
	return InvalidTag
}

func lastTwo(s string) string {
	if len(s) <= 2 {
		return s
	}
	return s[len(s)-2:]
}

// GenerateSerial: тег + код университета + код кафедры (%02d) + 2 последние цифры
// student id + 2 последние цифры года начала сессии + YY MM DD HH SS.
// Уникальность не проверяется: в пределах одной секунды возможны совпадения.
func GenerateSerial(u *models.User, dept *models.Department, docType string, now time.Time) string {
	var b strings.Builder
	b.WriteString(DocumentTag(docType))
	b.WriteString(dept.UniversityCode)
	fmt.Fprintf(&b, "%02d", dept.Code)
	b.WriteString(lastTwo(strconv.FormatInt(u.StudentID, 10)))
	start, _, _ := strings.Cut(u.Session, "-")
	b.WriteString(lastTwo(start))
	fmt.Fprintf(&b, "%02d%02d%02d%02d%02d",
		now.Year()%100, int(now.Month()), now.Day(), now.Hour(), now.Second())
	return b.String()
}

type SerialService interface {
	// Issue — серийный номер для владельца заявки; проверяет право на запрос.
	Issue(ctx context.Context, userID int, docType string) (*models.User, string, error)
	// ForUser — без проверки eligibility (используется при одобрении заявки админом).
	ForUser(ctx context.Context, u *models.User, docType string) (string, error)
}

type serialService struct {
	users       repositories.UserRepository
	departments repositories.DepartmentRepository
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewSerialService(users repositories.UserRepository, departments repositories.DepartmentRepository, m *metrics.Metrics) SerialService {
	return &serialService{users: users, departments: departments, metrics: m, now: time.Now}
}

var errNotEligible = &Error{Kind: ErrValidation, Detail: "You're not eligible to make this request"}

func (s *serialService) Issue(ctx context.Context, userID int, docType string) (*models.User, string, error) {
	if strings.TrimSpace(docType) == "" {
		return nil, "", newError(ErrValidation, "document type is required")
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, "", mapRepoError(err)
	}
	if !u.IsEligible || u.IsRejected {
		return nil, "", errNotEligible
	}
	serial, err := s.ForUser(ctx, u, docType)
	if err != nil {
		return nil, "", err
	}
	return u, serial, nil
}

func (s *serialService) ForUser(ctx context.Context, u *models.User, docType string) (string, error) {
	if DocumentTag(docType) == InvalidTag {
		return "", newError(ErrValidation, "Invalid document type %q", docType)
	}
	if u.DepartmentID == nil {
		return "", newError(ErrValidation, "Department is not set for this account")
	}
	dept, err := s.departments.GetByID(ctx, *u.DepartmentID)
	if err != nil {
		return "", mapRepoError(err)
	}
	serial := GenerateSerial(u, dept, docType, s.now())
	s.metrics.SerialsIssued.WithLabelValues(strings.ToLower(strings.TrimSpace(docType))).Inc()
	log.Printf("[serial][issue] student_id=%d doc=%s serial=%s", u.StudentID, docType, serial)
	return serial, nil
}
