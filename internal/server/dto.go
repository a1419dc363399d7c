package server

import (
	"time"

	"github.com/abhisek/seatutor/internal/badges"
	"github.com/abhisek/seatutor/internal/curriculum"
	"github.com/abhisek/seatutor/internal/session"
)

type loginRequest struct {
	Name string `json:"name"`
}

type topicRequest struct {
	Topic string `json:"topic"`
}

type turnRequest struct {
	Text string `json:"text"`
}

type studentDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
}

type topicDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

type badgeDTO struct {
	Tier      string    `json:"tier"`
	Title     string    `json:"title"`
	Icon      string    `json:"icon"`
	Streak    int       `json:"streak"`
	AwardedAt time.Time `json:"awarded_at"`
}

type noticeDTO struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Tier    string `json:"tier,omitempty"`
}

type progressDTO struct {
	StudentID         string     `json:"student_id"`
	StudentName       string     `json:"student_name"`
	Topic             string     `json:"topic"`
	QuestionsAnswered int        `json:"questions_answered"`
	CorrectAnswers    int        `json:"correct_answers"`
	AccuracyPercent   int        `json:"accuracy_percent"`
	CurrentStreak     int        `json:"current_streak"`
	BestStreak        int        `json:"best_streak"`
	NextBadgeAt       int        `json:"next_badge_at"`
	UsedToday         int        `json:"used_today"`
	DailyLimit        int        `json:"daily_limit"`
	LeftToday         int        `json:"left_today"`
	Badges            []badgeDTO `json:"badges"`
}

type turnDTO struct {
	Reply    string      `json:"reply"`
	Verdict  string      `json:"verdict"`
	Notices  []noticeDTO `json:"notices"`
	Progress progressDTO `json:"progress"`
}

type summaryDTO struct {
	Student           studentDTO `json:"student"`
	Topic             string     `json:"topic"`
	DurationSeconds   int        `json:"duration_seconds"`
	QuestionsAnswered int        `json:"questions_answered"`
	CorrectAnswers    int        `json:"correct_answers"`
	AccuracyPercent   int        `json:"accuracy_percent"`
	BestStreak        int        `json:"best_streak"`
	Badges            []badgeDTO `json:"badges"`
}

func toStudentDTO(s session.Student) studentDTO {
	return studentDTO{ID: s.ID, Name: s.Name, FirstName: s.FirstName}
}

func toTopicDTO(t curriculum.Topic) topicDTO {
	return topicDTO{ID: t.ID, Name: t.Name, Icon: t.Icon, Description: t.Description}
}

func toProgressDTO(p session.Progress) progressDTO {
	return progressDTO{
		StudentID:         p.StudentID,
		StudentName:       p.StudentName,
		Topic:             p.Topic,
		QuestionsAnswered: p.QuestionsAnswered,
		CorrectAnswers:    p.CorrectAnswers,
		AccuracyPercent:   p.AccuracyPercent,
		CurrentStreak:     p.CurrentStreak,
		BestStreak:        p.BestStreak,
		NextBadgeAt:       p.NextBadgeAt,
		UsedToday:         p.UsedToday,
		DailyLimit:        p.DailyLimit,
		LeftToday:         p.LeftToday,
		Badges:            toBadgeDTOs(p.Badges),
	}
}

func toBadgeDTOs(awards []badges.Award) []badgeDTO {
	out := make([]badgeDTO, 0, len(awards))
	for _, b := range awards {
		out = append(out, badgeDTO{
			Tier:      string(b.Tier),
			Title:     b.Tier.Title(),
			Icon:      b.Tier.Icon(),
			Streak:    b.Threshold,
			AwardedAt: b.AwardedAt,
		})
	}
	return out
}

func toTurnDTO(r *session.TurnResult) turnDTO {
	out := turnDTO{
		Reply:    r.Reply,
		Verdict:  r.Verdict.String(),
		Notices:  []noticeDTO{},
		Progress: toProgressDTO(r.Progress),
	}
	for _, n := range r.Notices {
		out.Notices = append(out.Notices, noticeDTO{
			Kind:    string(n.Kind),
			Message: n.Message,
			Tier:    string(n.Tier),
		})
	}
	return out
}

func toSummaryDTO(s *session.Summary) summaryDTO {
	return summaryDTO{
		Student:           toStudentDTO(s.Student),
		Topic:             s.Topic,
		DurationSeconds:   int(s.Duration.Seconds()),
		QuestionsAnswered: s.QuestionsAnswered,
		CorrectAnswers:    s.CorrectAnswers,
		AccuracyPercent:   s.AccuracyPercent,
		BestStreak:        s.BestStreak,
		Badges:            toBadgeDTOs(s.Badges),
	}
}
