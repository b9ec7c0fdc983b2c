package progress

// ══════════════════════════════════════════════════════════════════════════════
// SUMMARY
// Чистая агрегация записей прогресса. Не обращается к хранилищу и не
// читает кешированный счётчик баллов студента - все значения выводятся
// заново из сырых записей.
// ══════════════════════════════════════════════════════════════════════════════

// CourseSummary - агрегат прогресса по одному курсу.
type CourseSummary struct {
	// CourseID - ID курса.
	CourseID string `json:"course_id"`

	// Completed - количество завершённых записей.
	Completed int `json:"completed"`

	// Total - общее количество записей по курсу.
	Total int `json:"total"`

	// Points - сумма баллов по записям курса.
	Points int `json:"points"`

	// Percentage - round(completed/total*100); 0 при total == 0.
	Percentage int `json:"percentage"`
}

// Summary - глобальный агрегат прогресса студента.
type Summary struct {
	// TotalCompleted - количество завершённых записей по всем курсам.
	TotalCompleted int `json:"total_completed"`

	// TotalPoints - сумма баллов по всем записям.
	//
	// Значение выводится из сырых записей и может законно отличаться
	// от накопленного счётчика Student.TotalPoints: счётчик меняется
	// и вне агрегатора (корректировки администратора).
	TotalPoints int `json:"total_points"`

	// CoursesProgress - агрегаты по каждому курсу.
	CoursesProgress map[string]CourseSummary `json:"courses_progress"`
}

// Summarize агрегирует записи прогресса студента.
// Функция чистая: порядок записей на результат не влияет.
func Summarize(records []*Record) Summary {
	summary := Summary{
		CoursesProgress: make(map[string]CourseSummary),
	}

	for _, r := range records {
		cs := summary.CoursesProgress[r.Key.CourseID]
		cs.CourseID = r.Key.CourseID
		cs.Total++
		cs.Points += r.Points
		if r.Completed {
			cs.Completed++
			summary.TotalCompleted++
		}
		summary.TotalPoints += r.Points
		summary.CoursesProgress[r.Key.CourseID] = cs
	}

	for id, cs := range summary.CoursesProgress {
		cs.Percentage = percentage(cs.Completed, cs.Total)
		summary.CoursesProgress[id] = cs
	}

	return summary
}

// percentage вычисляет round(part/total*100); 0 при total == 0.
func percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (part*100 + total/2) / total
}
