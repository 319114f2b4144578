package http

import (
	"time"

	"github.com/example/roomsync/internal/application"
	"github.com/example/roomsync/internal/recurrence"
	"github.com/example/roomsync/internal/scheduler"
)

type roomDTO struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Capacity int      `json:"capacity"`
	Building string   `json:"building"`
	Features []string `json:"features"`
	Image    string   `json:"image,omitempty"`
}

func toRoomDTO(room application.Room) roomDTO {
	features := room.Features
	if features == nil {
		features = []string{}
	}
	return roomDTO{
		ID:       room.ID,
		Name:     room.Name,
		Capacity: room.Capacity,
		Building: room.Building,
		Features: features,
		Image:    room.Image,
	}
}

func toRoomDTOs(rooms []application.Room) []roomDTO {
	out := make([]roomDTO, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, toRoomDTO(room))
	}
	return out
}

type scheduleDTO struct {
	ID        string `json:"id"`
	RoomID    string `json:"room_id"`
	Subject   string `json:"subject"`
	Section   string `json:"section,omitempty"`
	Teacher   string `json:"teacher"`
	Day       string `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Color     string `json:"color"`
	Kind      string `json:"kind"`
	BookedBy  string `json:"booked_by,omitempty"`
}

func toScheduleDTO(entry scheduler.Entry) scheduleDTO {
	return scheduleDTO{
		ID:        entry.ID,
		RoomID:    entry.RoomID,
		Subject:   entry.Subject,
		Section:   entry.Section,
		Teacher:   entry.Teacher,
		Day:       entry.Day.String(),
		StartTime: entry.Start.String(),
		EndTime:   entry.End.String(),
		StartDate: entry.StartDate.String(),
		EndDate:   entry.EndDate.String(),
		Color:     entry.Color,
		Kind:      string(entry.Kind),
		BookedBy:  entry.BookedBy,
	}
}

func toScheduleDTOs(entries []scheduler.Entry) []scheduleDTO {
	out := make([]scheduleDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toScheduleDTO(entry))
	}
	return out
}

func optionalSchedule(entry *scheduler.Entry) *scheduleDTO {
	if entry == nil {
		return nil
	}
	dto := toScheduleDTO(*entry)
	return &dto
}

type timeContextDTO struct {
	Day  string `json:"day"`
	Time string `json:"time"`
	Date string `json:"date"`
}

func toTimeContextDTO(tc scheduler.TimeContext) timeContextDTO {
	return timeContextDTO{Day: tc.Day.String(), Time: tc.Time.String(), Date: tc.Date.String()}
}

type roomStatusDTO struct {
	Room     roomDTO      `json:"room"`
	Status   string       `json:"status"`
	Occupant *scheduleDTO `json:"occupant"`
	Next     *scheduleDTO `json:"next"`
}

func toRoomStatusDTO(status application.RoomStatus) roomStatusDTO {
	label := "available"
	if !status.Free() {
		label = "occupied"
	}
	return roomStatusDTO{
		Room:     toRoomDTO(status.Room),
		Status:   label,
		Occupant: optionalSchedule(status.Occupant),
		Next:     optionalSchedule(status.Next),
	}
}

func toRoomStatusDTOs(statuses []application.RoomStatus) []roomStatusDTO {
	out := make([]roomStatusDTO, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, toRoomStatusDTO(status))
	}
	return out
}

type occurrenceDTO struct {
	ScheduleID string `json:"schedule_id"`
	RoomID     string `json:"room_id"`
	Subject    string `json:"subject"`
	Date       string `json:"date"`
	Day        string `json:"day_of_week"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

func toOccurrenceDTOs(occurrences []recurrence.Occurrence) []occurrenceDTO {
	out := make([]occurrenceDTO, 0, len(occurrences))
	for _, occ := range occurrences {
		out = append(out, occurrenceDTO{
			ScheduleID: occ.EntryID,
			RoomID:     occ.RoomID,
			Subject:    occ.Subject,
			Date:       occ.Date.String(),
			Day:        occ.Day.String(),
			StartTime:  occ.Start.String(),
			EndTime:    occ.End.String(),
		})
	}
	return out
}

type userDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at,omitempty"`
}

func toUserDTO(user application.User) userDTO {
	dto := userDTO{
		ID:     user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   string(user.Role),
		Status: string(user.Status),
	}
	if !user.CreatedAt.IsZero() {
		dto.CreatedAt = formatTime(user.CreatedAt)
	}
	return dto
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
