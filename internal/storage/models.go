package storage

// Student is a registered chat user. UserID is the Telegram user id.
type Student struct {
	ID        int64  `db:"id,omitempty"`
	UserID    int64  `db:"user_id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
}

// Score is one exam result of a student.
type Score struct {
	ID        int64  `db:"id,omitempty"`
	StudentID int64  `db:"student_id"`
	Subject   string `db:"subject"`
	Value     int    `db:"score"`
}

const (
	tableStudents = "students"
	tableScores   = "scores"
)
