package domain

// Column names of the academic records dataset
const (
	ColumnStudentID  = "student_id"
	ColumnDepartment = "department"
	ColumnUnit       = "unit"
	ColumnSubject    = "subject"
	ColumnInstructor = "instructor"
	ColumnScore      = "score"

	// Optional columns; their presence gates optional report sections
	ColumnAge        = "age"
	ColumnSex        = "sex"
	ColumnReportCard = "report_card"
)

// Score domain and pass threshold
const (
	MinScore      = 0.0
	MaxScore      = 20.0
	PassThreshold = 10.0
)

// RequiredColumns lists the columns every dataset must provide
var RequiredColumns = []string{
	ColumnStudentID,
	ColumnDepartment,
	ColumnUnit,
	ColumnSubject,
	ColumnInstructor,
	ColumnScore,
}

// OptionalColumns lists the columns a dataset may provide
var OptionalColumns = []string{
	ColumnAge,
	ColumnSex,
	ColumnReportCard,
}

// FilterableColumns are the categorical columns exposed to the filter UI
var FilterableColumns = []string{
	ColumnDepartment,
	ColumnUnit,
	ColumnSubject,
	ColumnInstructor,
}

// Record represents one score observation
type Record struct {
	StudentID  string  `json:"student_id"`
	Department string  `json:"department"`
	Unit       string  `json:"unit"`
	Subject    string  `json:"subject"`
	Instructor string  `json:"instructor"`
	Score      float64 `json:"score"`

	Age        *float64 `json:"age,omitempty"`
	Sex        *string  `json:"sex,omitempty"`
	ReportCard *string  `json:"report_card,omitempty"`
}

// Value returns the textual value of a categorical column.
// The second result is false for unknown columns or absent optional values.
func (r Record) Value(column string) (string, bool) {
	switch column {
	case ColumnStudentID:
		return r.StudentID, true
	case ColumnDepartment:
		return r.Department, true
	case ColumnUnit:
		return r.Unit, true
	case ColumnSubject:
		return r.Subject, true
	case ColumnInstructor:
		return r.Instructor, true
	case ColumnSex:
		if r.Sex == nil {
			return "", false
		}
		return *r.Sex, true
	case ColumnReportCard:
		if r.ReportCard == nil {
			return "", false
		}
		return *r.ReportCard, true
	case ColumnAge:
		if r.Age == nil {
			return "", false
		}
		return FormatNumber(*r.Age), true
	}
	return "", false
}

// CanonicalColumn maps accepted column aliases to dataset column names
func CanonicalColumn(column string) string {
	if column == "UE" || column == "ue" {
		return ColumnUnit
	}
	return column
}

// IsCategorical reports whether column holds categorical values usable as
// filter or grouping keys. score is the only non-categorical column.
func IsCategorical(column string) bool {
	switch column {
	case ColumnStudentID, ColumnDepartment, ColumnUnit, ColumnSubject,
		ColumnInstructor, ColumnAge, ColumnSex, ColumnReportCard:
		return true
	}
	return false
}

// Schema is the ordered list of columns present in a dataset
type Schema []string

// Has reports whether the schema contains the column
func (s Schema) Has(column string) bool {
	for _, c := range s {
		if c == column {
			return true
		}
	}
	return false
}

// Missing returns the required columns absent from the schema
func (s Schema) Missing() []string {
	var missing []string
	for _, c := range RequiredColumns {
		if !s.Has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}
