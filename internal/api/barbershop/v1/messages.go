// Package barbershopv1 defines the barbershop.v1 wire messages shared by
// the gRPC and HTTP transports. Messages are plain structs encoded as JSON.
package barbershopv1

type IsAvailableRequest struct {
	StaffID  string `json:"staff_id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
}

type IsAvailableResponse struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason"`
}

type ListAvailableSlotsRequest struct {
	StaffID  string `json:"staff_id"`
	Date     string `json:"date"`
	Location string `json:"location"`
}

type ListAvailableSlotsResponse struct {
	StaffID string   `json:"staff_id"`
	Date    string   `json:"date"`
	Slots   []string `json:"slots"`
}

type GetGridRequest struct {
	Location string `json:"location"`
	Date     string `json:"date"`
}

type GridStaff struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type GridRow struct {
	Time string `json:"time"`
	// Cells follow GetGridResponse.Staff.
	Cells []string `json:"cells"`
	// Available is true when at least one staff member is free.
	Available bool `json:"available"`
}

type GetGridResponse struct {
	Location string      `json:"location"`
	Date     string      `json:"date"`
	Staff    []GridStaff `json:"staff"`
	Rows     []GridRow   `json:"rows"`
}

type ToggleBlockRequest struct {
	StaffID string `json:"staff_id"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Reason  string `json:"reason,omitempty"`
}

type ToggleBlockResponse struct {
	State string `json:"state"`
}

type ListBlockedSlotsRequest struct {
	StaffID string `json:"staff_id,omitempty"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
}

type BlockedSlot struct {
	ID      string `json:"id"`
	StaffID string `json:"staff_id"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Reason  string `json:"reason"`
}

type ListBlockedSlotsResponse struct {
	BlockedSlots []BlockedSlot `json:"blocked_slots"`
}

type Schedule struct {
	StaffID    string `json:"staff_id"`
	DayOfWeek  string `json:"day_of_week"`
	IsWorking  bool   `json:"is_working"`
	StartTime  string `json:"start_time,omitempty"`
	EndTime    string `json:"end_time,omitempty"`
	BreakStart string `json:"break_start,omitempty"`
	BreakEnd   string `json:"break_end,omitempty"`
}

type GetSchedulesRequest struct {
	StaffID string `json:"staff_id"`
}

type GetSchedulesResponse struct {
	Schedules []Schedule `json:"schedules"`
}

type UpsertScheduleRequest struct {
	Schedule Schedule `json:"schedule"`
}

type UpsertScheduleResponse struct {
	Schedule Schedule `json:"schedule"`
}

type Appointment struct {
	ID            string `json:"id"`
	StaffID       string `json:"staff_id"`
	Location      string `json:"location"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Status        string `json:"status"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	Notes         string `json:"notes,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

type BookRequest struct {
	StaffID       string `json:"staff_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Location      string `json:"location"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

type AppointmentRequest struct {
	AppointmentID string `json:"appointment_id"`
}

type AppointmentResponse struct {
	Appointment Appointment `json:"appointment"`
}
