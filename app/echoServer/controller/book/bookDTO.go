package book

type CreateBookReq struct {
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author" validate:"required"`
	Publication string `json:"publication" validate:"required"`
	CategoryID  int64  `json:"category_id" validate:"required,gt=0"`
	ISBN        string `json:"isbn" validate:"required"`
	Quantity    int64  `json:"quantity" validate:"gte=0"`
	RackNo      string `json:"rack_no" validate:"required"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

type UpdateBookReq struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Publication string `json:"publication"`
	CategoryID  int64  `json:"category_id"`
	ISBN        string `json:"isbn"`
	Quantity    int64  `json:"quantity" validate:"gte=0"`
	RackNo      string `json:"rack_no"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

type RestockReq struct {
	Delta int64 `json:"delta" validate:"required"`
}
