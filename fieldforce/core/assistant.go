package core

import "context"

type Insight struct {
	Summary           string  `json:"summary"`
	PunctualityRating float64 `json:"punctualityRating"`
}

// DigestRow is one staff member's day, as given to the assistant.
type DigestRow struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Branch   string `json:"branch"`
	Status   string `json:"status"`
	CheckIn  string `json:"checkIn,omitempty"`
	CheckOut string `json:"checkOut,omitempty"`
}

type AdviceRequest struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Location string `json:"location,omitempty"`
}

// Assistant never fails; implementations fall back to static text.
type Assistant interface {
	SummarizeAttendance(ctx context.Context, rows []DigestRow) Insight
	FieldAdvice(ctx context.Context, req AdviceRequest) string
}

const (
	FallbackSummary = "Attendance analysis is currently unavailable."
	FallbackAdvice  = "Work carefully in the field and send regular updates."
)

// StaticAssistant always answers with the fallback text.
type StaticAssistant struct{}

func (StaticAssistant) SummarizeAttendance(context.Context, []DigestRow) Insight {
	return Insight{Summary: FallbackSummary, PunctualityRating: 0}
}

func (StaticAssistant) FieldAdvice(context.Context, AdviceRequest) string {
	return FallbackAdvice
}

func (s *Service) FieldAdvice(ctx context.Context, viewer Viewer, location string) (string, error) {
	user, err := s.stores.Profiles.Find(ctx, viewer.ID)
	if err != nil {
		return "", &PersistenceError{Op: "find profile", Err: err}
	}
	if user == nil {
		return "", ErrUnknownUser
	}
	return s.assistant.FieldAdvice(ctx, AdviceRequest{Name: user.Name, Role: string(user.Role), Location: location}), nil
}
