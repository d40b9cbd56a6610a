// model/loan.go
package model

import "time"

type LoanStatus string

const (
	LoanPending  LoanStatus = "PENDING"
	LoanApproved LoanStatus = "APPROVED"
	LoanRejected LoanStatus = "REJECTED"
	LoanIssued   LoanStatus = "ISSUED"
	LoanReturned LoanStatus = "RETURNED"
)

// Terminal reports whether no further transitions are allowed from s.
func (s LoanStatus) Terminal() bool {
	return s == LoanRejected || s == LoanReturned
}

// Loan is one borrow record: request -> approval -> issue -> return.
// Records are kept forever as fine/audit history.
type Loan struct {
	ID         int64      `json:"id"`
	BookID     int64      `json:"book_id"`
	UserID     int64      `json:"user_id"`
	Status     LoanStatus `json:"status"`
	DueDate    time.Time  `json:"due_date"`
	IssueDate  *time.Time `json:"issue_date,omitempty"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Fine       float64    `json:"fine"`
	Remarks    string     `json:"remarks,omitempty"`
	BookTitle  string     `json:"book_title,omitempty"`
	UserName   string     `json:"user_name,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
