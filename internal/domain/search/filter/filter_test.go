package filter

import (
	"testing"

	"github.com/kailas-cloud/synapse/internal/domain/item"
)

func TestNewScope_RequiresUser(t *testing.T) {
	if _, err := NewScope("", item.QueryAll); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

func TestScope_Conditions(t *testing.T) {
	tests := []struct {
		name string
		qt   item.QueryType
		want []Condition
	}{
		{"all has only user", item.QueryAll, []Condition{{FieldUserID, "u1"}}},
		{"image adds type", item.QueryImage, []Condition{{FieldUserID, "u1"}, {FieldType, "image"}}},
		{"unknown collapses to all", item.QueryType("video"), []Condition{{FieldUserID, "u1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScope("u1", tt.qt)
			if err != nil {
				t.Fatalf("NewScope: %v", err)
			}
			got := s.Conditions()
			if len(got) != len(tt.want) {
				t.Fatalf("conditions = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("condition[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestScope_Matches(t *testing.T) {
	image, _ := NewScope("u1", item.QueryImage)
	all, _ := NewScope("u1", item.QueryAll)

	tests := []struct {
		name   string
		scope  Scope
		fields map[string]string
		want   bool
	}{
		{"same user and type", image, map[string]string{"user_id": "u1", "type": "image"}, true},
		{"wrong type", image, map[string]string{"user_id": "u1", "type": "text"}, false},
		{"other user", image, map[string]string{"user_id": "u2", "type": "image"}, false},
		{"all ignores type", all, map[string]string{"user_id": "u1", "type": "text"}, true},
		{"missing user", all, map[string]string{"type": "text"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scope.Matches(tt.fields); got != tt.want {
				t.Errorf("Matches(%v) = %v, want %v", tt.fields, got, tt.want)
			}
		})
	}
}
