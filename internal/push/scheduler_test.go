package push

import (
	"testing"
)

func TestOverdueBody(t *testing.T) {
	tests := []struct {
		names []string
		want  string
	}{
		{[]string{"Dishes"}, "Dishes is overdue"},
		{[]string{"Dishes", "Laundry"}, "Dishes and 1 more chores are overdue"},
		{[]string{"Dishes", "Laundry", "Vacuum"}, "Dishes and 2 more chores are overdue"},
	}
	for _, tt := range tests {
		if got := overdueBody(tt.names); got != tt.want {
			t.Errorf("overdueBody(%v) = %q, want %q", tt.names, got, tt.want)
		}
	}
}

func TestGenerateVAPIDKeys(t *testing.T) {
	pub, priv, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if pub == "" || priv == "" {
		t.Error("empty key material")
	}
	if pub == priv {
		t.Error("public and private keys are identical")
	}
}
