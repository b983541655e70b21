package holiday

import "github.com/username/hu-holidays/pkg/dateutil"

// DayStatus answers "is this date a holiday, a bridge workday or an ordinary day"
type DayStatus struct {
	Date             Date    `json:"date" yaml:"date"`
	DayOfWeek        string  `json:"day_of_week" yaml:"day_of_week"`
	IsHoliday        bool    `json:"is_holiday" yaml:"is_holiday"`
	HolidayName      *string `json:"holiday_name" yaml:"holiday_name"`
	IsWeekend        bool    `json:"is_weekend" yaml:"is_weekend"`
	IsWeekendWorkday bool    `json:"is_weekend_workday" yaml:"is_weekend_workday"`
	IsWorkingDay     bool    `json:"is_working_day" yaml:"is_working_day"`
}

// Classify computes the status of d against the result for d's year
func Classify(r YearResult, d Date) DayStatus {
	status := DayStatus{
		Date:      d,
		DayOfWeek: d.Weekday().String(),
		IsWeekend: dateutil.IsWeekend(d.Time()),
	}

	if h, ok := r.FindHoliday(d); ok {
		name := h.Name
		status.IsHoliday = true
		status.HolidayName = &name
	}
	_, status.IsWeekendWorkday = r.FindWeekendWorkday(d)

	status.IsWorkingDay = (!status.IsWeekend && !status.IsHoliday) || status.IsWeekendWorkday
	return status
}
