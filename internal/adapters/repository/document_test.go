package repository

import (
	"errors"
	"strings"
	"testing"

	"github.com/studyplanner/core/internal/domain/entities"
)

func TestDecodeDocument(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantTasks   int
		wantClasses int
		wantSubject string
	}{
		{
			name:        "current format",
			data:        `{"tasks":[{"id":"task_1","title":"HW","start":"2024-01-01","subject":"Math","type":"task","allDay":true}],"classes":[{"id":"class_1","daysOfWeek":[2]}],"subjects":{"Math":{"color":"#FF5733"}}}`,
			wantTasks:   1,
			wantClasses: 1,
			wantSubject: "Math",
		},
		{
			name:      "legacy list",
			data:      `[{"id":"task_1","title":"Old"},{"id":"task_2","title":"Older"}]`,
			wantTasks: 2,
		},
		{
			name:        "missing subjects",
			data:        `{"tasks":[],"classes":[]}`,
			wantTasks:   0,
			wantClasses: 0,
		},
		{
			name: "empty object",
			data: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := DecodeDocument([]byte(tt.data))
			if err != nil {
				t.Fatalf("DecodeDocument failed: %v", err)
			}
			if len(doc.Tasks) != tt.wantTasks {
				t.Errorf("tasks: got %d, want %d", len(doc.Tasks), tt.wantTasks)
			}
			if len(doc.Classes) != tt.wantClasses {
				t.Errorf("classes: got %d, want %d", len(doc.Classes), tt.wantClasses)
			}
			if doc.Subjects == nil {
				t.Fatal("subjects is nil")
			}
			if tt.wantSubject != "" {
				if _, ok := doc.Subjects[tt.wantSubject]; !ok {
					t.Errorf("subject %q missing", tt.wantSubject)
				}
			}
		})
	}
}

func TestDecodeDocumentCorrupt(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		wantReason string
	}{
		{"empty", "   \n", ReasonEmpty},
		{"truncated", `{"tasks": [`, ReasonInvalidJSON},
		{"scalar", `"hello"`, ReasonSchema},
		{"null", `null`, ReasonSchema},
		{"tasks not a list", `{"tasks": {"id": "x"}}`, ReasonSchema},
		{"numeric id", `{"tasks": [{"id": 7}]}`, ReasonSchema},
		{"day out of range", `{"classes": [{"id": "c", "daysOfWeek": [9]}]}`, ReasonSchema},
		{"subject not an object", `{"subjects": {"Math": "#FF5733"}}`, ReasonSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDocument([]byte(tt.data))
			if err == nil {
				t.Fatal("DecodeDocument: expected error, got nil")
			}
			if !errors.Is(err, entities.ErrCorruptDocument) {
				t.Errorf("error %v is not ErrCorruptDocument", err)
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("error %T is not *DecodeError", err)
			}
			if de.Reason != tt.wantReason {
				t.Errorf("reason: got %q, want %q", de.Reason, tt.wantReason)
			}
		})
	}
}

func TestEncodeDocument(t *testing.T) {
	doc := &entities.Document{}

	data, err := EncodeDocument(doc)
	if err != nil {
		t.Fatalf("EncodeDocument failed: %v", err)
	}

	got := string(data)
	if !strings.HasSuffix(got, "\n") {
		t.Error("encoded document has no trailing newline")
	}
	for _, key := range []string{`"tasks": []`, `"classes": []`, `"subjects": {}`} {
		if !strings.Contains(got, key) {
			t.Errorf("encoded document missing %s:\n%s", key, got)
		}
	}

	if _, err := DecodeDocument(data); err != nil {
		t.Errorf("encoded document does not decode: %v", err)
	}
}
