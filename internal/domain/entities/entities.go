package entities

import (
	"errors"
	"fmt"
	"time"
)

// Common errors
var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrClassNotFound   = errors.New("class not found")
	ErrSubjectNotFound = errors.New("subject not found")
	ErrCorruptDocument = errors.New("corrupt schedule document")
)

// Entry types as rendered by the calendar widget
const (
	EntryTypeTask  = "task"
	EntryTypeClass = "class"
)

// Colours used when an entry references a subject that has no colour
const (
	DefaultTaskColor  = "#ff6b6b"
	DefaultClassColor = "#4fc3f7"
)

// Task is a one-time, all-day calendar entry.
type Task struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Start           string `json:"start"`
	Subject         string `json:"subject"`
	Type            string `json:"type"`
	AllDay          bool   `json:"allDay"`
	BackgroundColor string `json:"backgroundColor"`
	BorderColor     string `json:"borderColor"`
}

// Class is a weekly recurring calendar entry.
type Class struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	DaysOfWeek      []int  `json:"daysOfWeek"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	Subject         string `json:"subject"`
	Day             string `json:"day"`
	Type            string `json:"type"`
	BackgroundColor string `json:"backgroundColor"`
	BorderColor     string `json:"borderColor"`
}

// Subject is the display settings of a named category. The name is the map key.
type Subject struct {
	Color string `json:"color"`
}

// Document is the whole persisted schedule.
type Document struct {
	Tasks    []Task             `json:"tasks"`
	Classes  []Class            `json:"classes"`
	Subjects map[string]Subject `json:"subjects"`
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		Tasks:    []Task{},
		Classes:  []Class{},
		Subjects: map[string]Subject{},
	}
}

// Normalize replaces nil collections with empty ones so the document always
// serializes with all three keys.
func (d *Document) Normalize() {
	if d.Tasks == nil {
		d.Tasks = []Task{}
	}
	if d.Classes == nil {
		d.Classes = []Class{}
	}
	if d.Subjects == nil {
		d.Subjects = map[string]Subject{}
	}
	for i := range d.Classes {
		if d.Classes[i].DaysOfWeek == nil {
			d.Classes[i].DaysOfWeek = []int{}
		}
	}
}

// SubjectColor resolves the colour of a subject, or fallback when the subject
// is unknown or has no colour set.
func (d *Document) SubjectColor(name, fallback string) string {
	if s, ok := d.Subjects[name]; ok && s.Color != "" {
		return s.Color
	}
	return fallback
}

// Events returns tasks followed by classes, in document order.
func (d *Document) Events() []any {
	events := make([]any, 0, len(d.Tasks)+len(d.Classes))
	for _, t := range d.Tasks {
		events = append(events, t)
	}
	for _, c := range d.Classes {
		events = append(events, c)
	}
	return events
}

// NextID builds a timestamp-derived id with the given prefix. When an entry
// created in the same second already holds that id, a numeric suffix is added.
func (d *Document) NextID(prefix string, now time.Time) string {
	base := fmt.Sprintf("%s_%d", prefix, now.Unix())
	id := base
	for n := 2; d.hasID(id); n++ {
		id = fmt.Sprintf("%s_%d", base, n)
	}
	return id
}

func (d *Document) hasID(id string) bool {
	for _, t := range d.Tasks {
		if t.ID == id {
			return true
		}
	}
	for _, c := range d.Classes {
		if c.ID == id {
			return true
		}
	}
	return false
}

// RemoveTask drops every task with the given id and reports whether any was removed.
func (d *Document) RemoveTask(id string) bool {
	kept := d.Tasks[:0]
	for _, t := range d.Tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	removed := len(kept) != len(d.Tasks)
	d.Tasks = kept
	return removed
}

// RemoveClass drops every class with the given id and reports whether any was removed.
func (d *Document) RemoveClass(id string) bool {
	kept := d.Classes[:0]
	for _, c := range d.Classes {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	removed := len(kept) != len(d.Classes)
	d.Classes = kept
	return removed
}

// FindTask returns a pointer into the document, or nil.
func (d *Document) FindTask(id string) *Task {
	for i := range d.Tasks {
		if d.Tasks[i].ID == id {
			return &d.Tasks[i]
		}
	}
	return nil
}

// FindClass returns a pointer into the document, or nil.
func (d *Document) FindClass(id string) *Class {
	for i := range d.Classes {
		if d.Classes[i].ID == id {
			return &d.Classes[i]
		}
	}
	return nil
}

var dayNumbers = map[string]int{
	"Sunday":    0,
	"Monday":    1,
	"Tuesday":   2,
	"Wednesday": 3,
	"Thursday":  4,
	"Friday":    5,
	"Saturday":  6,
}

// DayNumber converts an English day name to the calendar weekday number
// (Sunday=0). Unknown names map to Monday.
func DayNumber(day string) int {
	if n, ok := dayNumbers[day]; ok {
		return n
	}
	return int(time.Monday)
}

// DefaultSubjects are written into a freshly created data file.
func DefaultSubjects() map[string]Subject {
	return map[string]Subject{
		"Math":    {Color: "#FF5733"},
		"Science": {Color: "#33FF57"},
		"English": {Color: "#3357FF"},
		"History": {Color: "#F333FF"},
	}
}
