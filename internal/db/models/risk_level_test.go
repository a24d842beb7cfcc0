package models

import "testing"

func TestRiskLevelFromInt(t *testing.T) {
	tests := []struct {
		name    string
		input   int
		want    RiskLevel
		wantErr bool
	}{
		{name: "event", input: 0, want: RiskLevelEvent},
		{name: "bug", input: 1, want: RiskLevelBug},
		{name: "insecure", input: 2, want: RiskLevelInsecure},
		{name: "leak", input: 3, want: RiskLevelLeak},
		{name: "negative", input: -1, wantErr: true},
		{name: "out of range", input: 4, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RiskLevelFromInt(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("RiskLevelFromInt(%d) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("RiskLevelFromInt(%d) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// A verdict at level L must notify every threshold at or below L and no
// threshold above it.
func TestRiskLevelMeets(t *testing.T) {
	levels := []RiskLevel{RiskLevelEvent, RiskLevelBug, RiskLevelInsecure, RiskLevelLeak}

	for _, verdict := range levels {
		for _, threshold := range levels {
			want := verdict >= threshold
			if got := verdict.Meets(threshold); got != want {
				t.Errorf("%s.Meets(%s) = %v, want %v", verdict, threshold, got, want)
			}
		}
	}
}

func TestNotificationSettingsValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings NotificationSettings
		wantErr  bool
	}{
		{
			name:     "defaults",
			settings: NotificationSettings{UserID: 1},
		},
		{
			name: "webhook fully configured",
			settings: NotificationSettings{
				UserID:         1,
				WebhookEnabled: true,
				WebhookURL:     "https://example.com/hook",
				WebhookSecret:  "s3cret",
			},
		},
		{
			name: "webhook without url",
			settings: NotificationSettings{
				UserID:         1,
				WebhookEnabled: true,
				WebhookSecret:  "s3cret",
			},
			wantErr: true,
		},
		{
			name: "webhook without secret",
			settings: NotificationSettings{
				UserID:         1,
				WebhookEnabled: true,
				WebhookURL:     "https://example.com/hook",
			},
			wantErr: true,
		},
		{
			name: "invalid level",
			settings: NotificationSettings{
				UserID:      1,
				NotifyLevel: RiskLevel(9),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
