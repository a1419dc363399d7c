package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// ClassCSVName is the download name for a class report generated at t.
func ClassCSVName(t time.Time) string {
	return fmt.Sprintf("class_report_%s.csv", t.Format("20060102"))
}

// WriteClassCSV writes the overview's student table as CSV, in the
// overview's order.
func WriteClassCSV(w io.Writer, o *Overview) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"Student ID", "Student Name", "Questions", "Correct", "Accuracy", "Time (min)", "Badges", "Sessions", "Last Active",
	}); err != nil {
		return err
	}

	for _, s := range o.Students {
		lastActive := ""
		if !s.LastActive.IsZero() {
			lastActive = s.LastActive.Format("2006-01-02 15:04")
		}
		if err := cw.Write([]string{
			s.StudentID,
			s.Name,
			strconv.Itoa(s.Questions),
			strconv.Itoa(s.Correct),
			fmt.Sprintf("%.1f%%", s.Accuracy),
			strconv.Itoa(s.TimeMinutes),
			strconv.Itoa(s.Badges),
			strconv.Itoa(s.Sessions),
			lastActive,
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
