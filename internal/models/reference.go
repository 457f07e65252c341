package models

type ReferenceKind string

const (
	RefRole       ReferenceKind = "role"
	RefDepartment ReferenceKind = "department"
	RefGender     ReferenceKind = "gender"
	RefDocument   ReferenceKind = "document"
	RefStatus     ReferenceKind = "status"
)

// Reference — строка любой справочной таблицы (roles, genders, documents, request_statuses).
type Reference struct {
	ID   int           `json:"id"`
	Kind ReferenceKind `json:"kind"`
	Name string        `json:"name"`
}

type University struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type Faculty struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	UniversityID int    `json:"university"`
}

// Department вместе с цепочкой faculty -> university (нужна для серийного номера).
type Department struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Code      int    `json:"code"`
	FacultyID int    `json:"faculty"`

	UniversityCode string `json:"university_code,omitempty"`
}
