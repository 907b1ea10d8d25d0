package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Timetable
	r.HandleFunc("/api/period", deps.TimetableHandler.List).Methods("GET")
	r.HandleFunc("/api/period", deps.TimetableHandler.Create).Methods("POST")
	r.HandleFunc("/api/period/{periodId}", deps.TimetableHandler.Get).Methods("GET")
	r.HandleFunc("/api/period/{periodId}", deps.TimetableHandler.Update).Methods("PUT")
	r.HandleFunc("/api/period/{periodId}", deps.TimetableHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/period/{periodId}/position", deps.TimetableHandler.Move).Methods("PUT")

	// Subjects and teachers
	r.HandleFunc("/api/subject", deps.SubjectHandler.List).Methods("GET")
	r.HandleFunc("/api/subject", deps.SubjectHandler.Create).Methods("POST")
	r.HandleFunc("/api/subject/{subjectId}", deps.SubjectHandler.Get).Methods("GET")
	r.HandleFunc("/api/subject/{subjectId}", deps.SubjectHandler.Update).Methods("PUT")
	r.HandleFunc("/api/subject/{subjectId}", deps.SubjectHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/subject/{subjectId}/position", deps.SubjectHandler.Move).Methods("PUT")
	r.HandleFunc("/api/teacher", deps.SubjectHandler.ListTeachers).Methods("GET")
	r.HandleFunc("/api/teacher/{teacherId}", deps.SubjectHandler.DeleteTeacher).Methods("DELETE")

	// Weekdays and classes
	r.HandleFunc("/api/weekday", deps.WeekdayHandler.ListWeekdays).Methods("GET")
	r.HandleFunc("/api/weekday/{ordinal:[0-9]+}", deps.WeekdayHandler.GetWeekday).Methods("GET")
	r.HandleFunc("/api/weekday/{ordinal:[0-9]+}/common", deps.WeekdayHandler.SetCommonDay).Methods("PUT")
	r.HandleFunc("/api/weekday/{ordinal:[0-9]+}/class", deps.WeekdayHandler.ClearDay).Methods("DELETE")
	r.HandleFunc("/api/weekday/{ordinal:[0-9]+}/class", deps.WeekdayHandler.AddClass).Methods("POST")
	r.HandleFunc("/api/weekday/{ordinal:[0-9]+}/class/from-period", deps.WeekdayHandler.AddClassFromPeriod).Methods("POST")
	r.HandleFunc("/api/class/{classId}", deps.WeekdayHandler.GetClass).Methods("GET")
	r.HandleFunc("/api/class/{classId}", deps.WeekdayHandler.UpdateClass).Methods("PUT")
	r.HandleFunc("/api/class/{classId}", deps.WeekdayHandler.DeleteClass).Methods("DELETE")
	r.HandleFunc("/api/class/{classId}/position", deps.WeekdayHandler.MoveClass).Methods("PUT")

	// Categories and events
	r.HandleFunc("/api/category", deps.CategoryHandler.ListCategories).Methods("GET")
	r.HandleFunc("/api/category", deps.CategoryHandler.CreateCategory).Methods("POST")
	r.HandleFunc("/api/category/{categoryId}", deps.CategoryHandler.GetCategory).Methods("GET")
	r.HandleFunc("/api/category/{categoryId}", deps.CategoryHandler.UpdateCategory).Methods("PUT")
	r.HandleFunc("/api/category/{categoryId}", deps.CategoryHandler.DeleteCategory).Methods("DELETE")
	r.HandleFunc("/api/category/{categoryId}/position", deps.CategoryHandler.MoveCategory).Methods("PUT")
	r.HandleFunc("/api/category/{categoryId}/event", deps.CategoryHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/event", deps.CategoryHandler.ListEvents).Methods("GET")
	r.HandleFunc("/api/event/{eventId}", deps.CategoryHandler.GetEvent).Methods("GET")
	r.HandleFunc("/api/event/{eventId}", deps.CategoryHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/event/{eventId}", deps.CategoryHandler.DeleteEvent).Methods("DELETE")

	// Agenda
	r.HandleFunc("/api/agenda", deps.ScheduleHandler.Agenda).Methods("GET")

	// Sharing
	r.HandleFunc("/api/share/subjects", deps.SharingHandler.ExportSubjects).Methods("GET")
	r.HandleFunc("/api/share/subjects", deps.SharingHandler.ImportSubjects).Methods("POST")
	r.HandleFunc("/api/share/periods", deps.SharingHandler.ExportPeriods).Methods("GET")
	r.HandleFunc("/api/share/periods", deps.SharingHandler.ImportPeriods).Methods("POST")

	// Settings
	r.HandleFunc("/api/settings", deps.SettingsHandler.Get).Methods("GET")
	r.HandleFunc("/api/settings", deps.SettingsHandler.Update).Methods("PUT")

	// Export
	r.HandleFunc("/api/export/calendar.ics", deps.ExportHandler.Calendar).Methods("GET")
	r.HandleFunc("/api/export/timetable.xlsx", deps.ExportHandler.Timetable).Methods("GET")
}
