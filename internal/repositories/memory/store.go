// Package memory — реализация репозиториев в памяти (database.driver: memory).
// Используется для локального запуска без Postgres и в тестах.
package memory

import (
	"sync"
	"time"

	"autodocs/internal/models"
	"autodocs/internal/repositories"
)

type Store struct {
	mu sync.Mutex

	users        map[int]*models.User
	challenges   []*models.VerificationChallenge
	refs         map[models.ReferenceKind][]*models.Reference
	universities map[int]*models.University
	faculties    map[int]*models.Faculty
	departments  map[int]*models.Department
	requests     map[int]*models.ServiceRequest
	seq          map[string]int
	now          func() time.Time
}

// New — хранилище с теми же справочниками, что и миграция 002_seed.sql.
func New() *Store {
	s := &Store{
		users:        map[int]*models.User{},
		refs:         map[models.ReferenceKind][]*models.Reference{},
		universities: map[int]*models.University{},
		faculties:    map[int]*models.Faculty{},
		departments:  map[int]*models.Department{},
		requests:     map[int]*models.ServiceRequest{},
		seq:          map[string]int{},
		now:          time.Now,
	}
	s.seedRefs(models.RefRole, "Admin", "Student", "Alumni")
	s.seedRefs(models.RefGender, "Male", "Female", "Other")
	s.seedRefs(models.RefDocument, models.DocCertificate, models.DocTestimonial, models.DocTranscript, models.DocAppeared)
	s.seedRefs(models.RefStatus, models.RequestPending, models.RequestAccepted, models.RequestRejected)
	return s
}

func (s *Store) next(name string) int {
	s.seq[name]++
	return s.seq[name]
}

func (s *Store) seedRefs(kind models.ReferenceKind, names ...string) {
	for _, n := range names {
		s.refs[kind] = append(s.refs[kind], &models.Reference{ID: s.next(string(kind)), Kind: kind, Name: n})
	}
}

func (s *Store) AddUniversity(name, code string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next("university")
	s.universities[id] = &models.University{ID: id, Name: name, Code: code}
	return id
}

func (s *Store) AddFaculty(name string, universityID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next("faculty")
	s.faculties[id] = &models.Faculty{ID: id, Name: name, UniversityID: universityID}
	return id
}

func (s *Store) Users() repositories.UserRepository { return &userStore{s} }

func (s *Store) Verifications() repositories.VerificationRepository { return &verificationStore{s} }

func (s *Store) References() repositories.ReferenceRepository { return &referenceStore{s} }

func (s *Store) Departments() repositories.DepartmentRepository { return &departmentStore{s} }

func (s *Store) ServiceRequests() repositories.ServiceRequestRepository {
	return &serviceRequestStore{s}
}

// Challenges — копия журнала (для проверок в тестах).
func (s *Store) Challenges() []models.VerificationChallenge {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.VerificationChallenge, 0, len(s.challenges))
	for _, c := range s.challenges {
		out = append(out, *c)
	}
	return out
}

func (s *Store) refByID(kind models.ReferenceKind, id int) *models.Reference {
	for _, r := range s.refs[kind] {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (s *Store) refByName(kind models.ReferenceKind, name string) *models.Reference {
	for _, r := range s.refs[kind] {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// копия пользователя с подставленным именем роли (аналог JOIN roles)
func (s *Store) userCopy(u *models.User) *models.User {
	cp := *u
	cp.RoleName = ""
	if u.RoleID != nil {
		if r := s.refByID(models.RefRole, *u.RoleID); r != nil {
			cp.RoleName = r.Name
		}
	}
	return &cp
}

func (s *Store) departmentCopy(d *models.Department) *models.Department {
	cp := *d
	if f, ok := s.faculties[d.FacultyID]; ok {
		if u, ok := s.universities[f.UniversityID]; ok {
			cp.UniversityCode = u.Code
		}
	}
	return &cp
}
