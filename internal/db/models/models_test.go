package models

import (
	"encoding/json"
	"testing"
)

func TestParseReviewStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ReviewStatus
		wantErr bool
	}{
		{name: "pending", input: "pending", want: ReviewStatusPending},
		{name: "completed", input: "completed", want: ReviewStatusCompleted},
		{name: "failed", input: "failed", want: ReviewStatusFailed},
		{name: "unknown", input: "unknown", want: ReviewStatusUnknown},
		{name: "invalid", input: "running", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReviewStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseReviewStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseReviewStatus(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestReviewStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status ReviewStatus
		want   bool
	}{
		{ReviewStatusUnknown, false},
		{ReviewStatusPending, false},
		{ReviewStatusCompleted, true},
		{ReviewStatusFailed, true},
	}

	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.want {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestReviewStatusJSON(t *testing.T) {
	data, err := json.Marshal(ReviewStatusCompleted)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"completed"` {
		t.Errorf("marshal = %s, want %q", data, `"completed"`)
	}

	var status ReviewStatus
	if err := json.Unmarshal([]byte(`"failed"`), &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if status != ReviewStatusFailed {
		t.Errorf("unmarshal = %v, want %v", status, ReviewStatusFailed)
	}

	if err := json.Unmarshal([]byte(`"running"`), &status); err == nil {
		t.Error("unmarshal of invalid status should fail")
	}
}
