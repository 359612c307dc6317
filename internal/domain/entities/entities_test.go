package entities

import (
	"testing"
	"time"
)

func TestDayNumber(t *testing.T) {
	tests := []struct {
		day  string
		want int
	}{
		{"Sunday", 0},
		{"Monday", 1},
		{"Tuesday", 2},
		{"Wednesday", 3},
		{"Thursday", 4},
		{"Friday", 5},
		{"Saturday", 6},
		{"monday", 1},
		{"Funday", 1},
		{"", 1},
	}

	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			if got := DayNumber(tt.day); got != tt.want {
				t.Errorf("DayNumber(%q): got %d, want %d", tt.day, got, tt.want)
			}
		})
	}
}

func TestSubjectColor(t *testing.T) {
	doc := NewDocument()
	doc.Subjects["Math"] = Subject{Color: "#FF5733"}
	doc.Subjects["Blank"] = Subject{}

	if got := doc.SubjectColor("Math", DefaultTaskColor); got != "#FF5733" {
		t.Errorf("known subject: got %q, want #FF5733", got)
	}
	if got := doc.SubjectColor("Art", DefaultTaskColor); got != DefaultTaskColor {
		t.Errorf("unknown subject: got %q, want %q", got, DefaultTaskColor)
	}
	if got := doc.SubjectColor("Blank", DefaultClassColor); got != DefaultClassColor {
		t.Errorf("subject without colour: got %q, want %q", got, DefaultClassColor)
	}
}

func TestNextID(t *testing.T) {
	now := time.Unix(1704067200, 0)
	doc := NewDocument()

	first := doc.NextID("task", now)
	if first != "task_1704067200" {
		t.Fatalf("first id: got %q", first)
	}
	doc.Tasks = append(doc.Tasks, Task{ID: first})

	second := doc.NextID("task", now)
	if second != "task_1704067200_2" {
		t.Fatalf("second id: got %q", second)
	}
	doc.Tasks = append(doc.Tasks, Task{ID: second})

	if third := doc.NextID("task", now); third != "task_1704067200_3" {
		t.Errorf("third id: got %q", third)
	}
	if other := doc.NextID("class", now); other != "class_1704067200" {
		t.Errorf("class id: got %q", other)
	}
}

func TestRemoveTask(t *testing.T) {
	doc := NewDocument()
	doc.Tasks = []Task{{ID: "a"}, {ID: "b"}, {ID: "a"}}

	if doc.RemoveTask("missing") {
		t.Error("RemoveTask(missing) reported a removal")
	}
	if len(doc.Tasks) != 3 {
		t.Fatalf("tasks after no-op removal: got %d, want 3", len(doc.Tasks))
	}
	if !doc.RemoveTask("a") {
		t.Error("RemoveTask(a) reported no removal")
	}
	if len(doc.Tasks) != 1 || doc.Tasks[0].ID != "b" {
		t.Errorf("tasks after removal: got %+v", doc.Tasks)
	}
}

func TestRemoveClass(t *testing.T) {
	doc := NewDocument()
	doc.Classes = []Class{{ID: "x"}, {ID: "y"}}

	if !doc.RemoveClass("y") {
		t.Fatal("RemoveClass(y) reported no removal")
	}
	if len(doc.Classes) != 1 || doc.Classes[0].ID != "x" {
		t.Errorf("classes after removal: got %+v", doc.Classes)
	}
}

func TestEventsOrder(t *testing.T) {
	doc := NewDocument()
	doc.Tasks = []Task{{ID: "t1"}, {ID: "t2"}}
	doc.Classes = []Class{{ID: "c1"}}

	events := doc.Events()
	if len(events) != 3 {
		t.Fatalf("events: got %d, want 3", len(events))
	}
	if task, ok := events[0].(Task); !ok || task.ID != "t1" {
		t.Errorf("events[0]: got %+v", events[0])
	}
	if class, ok := events[2].(Class); !ok || class.ID != "c1" {
		t.Errorf("events[2]: got %+v", events[2])
	}

	if empty := NewDocument().Events(); empty == nil || len(empty) != 0 {
		t.Errorf("empty document events: got %#v", empty)
	}
}

func TestNormalize(t *testing.T) {
	doc := &Document{Classes: []Class{{ID: "c"}}}
	doc.Normalize()

	if doc.Tasks == nil || doc.Subjects == nil {
		t.Fatal("Normalize left nil collections")
	}
	if doc.Classes[0].DaysOfWeek == nil {
		t.Error("Normalize left nil daysOfWeek")
	}
}
