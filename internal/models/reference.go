package models

// ClassLevel represents an academic level (L1, L2, ...).
type ClassLevel struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Order int    `db:"sort_order" json:"order"`
}

// Field represents a field of study (GL, GI, ...).
type Field struct {
	ID   string `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// Axis is a sub-division of a field.
type Axis struct {
	ID      string `db:"id" json:"id"`
	Code    string `db:"code" json:"code"`
	Name    string `db:"name" json:"name"`
	FieldID string `db:"field_id" json:"field_id"`
}

// Subject is a taught course belonging to a field.
type Subject struct {
	ID      string `db:"id" json:"id"`
	Code    string `db:"code" json:"code"`
	Name    string `db:"name" json:"name"`
	FieldID string `db:"field_id" json:"field_id"`
}

// Lecturer is the staff profile attached to a user account.
type Lecturer struct {
	ID            string  `db:"id" json:"id"`
	UserID        string  `db:"user_id" json:"user_id"`
	FullName      string  `db:"full_name" json:"full_name"`
	IsHOD         bool    `db:"is_hod" json:"is_hod"`
	FieldID       *string `db:"field_id" json:"field_id,omitempty"`
	CelluleMember bool    `db:"cellule_member" json:"cellule_member"`
}

// Student is the student profile attached to a user account.
type Student struct {
	ID           string  `db:"id" json:"id"`
	UserID       string  `db:"user_id" json:"user_id"`
	FullName     string  `db:"full_name" json:"full_name"`
	Matricule    string  `db:"matricule" json:"matricule"`
	ClassLevelID string  `db:"class_level_id" json:"class_level_id"`
	FieldID      *string `db:"field_id" json:"field_id,omitempty"`
}
