package loan

type RequestLoanReq struct {
	BookID     int64 `json:"book_id" validate:"required,gt=0"`
	DaysNeeded int   `json:"days_needed" validate:"required,gt=0"`
}

type RejectLoanReq struct {
	Remarks string `json:"remarks"`
}
