package pipeline

import (
	"strings"
	"testing"

	"github.com/AccelByte/extend-buddy-progression/pkg/notify"
	"github.com/AccelByte/extend-buddy-progression/pkg/service"
	"github.com/AccelByte/extend-buddy-progression/pkg/service/mock"
)

func TestValidateWiring(t *testing.T) {
	messages, err := notify.DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig() error = %v", err)
	}

	tests := []struct {
		name    string
		deps    *service.Dependencies
		wantErr []string
	}{
		{
			name: "fully wired",
			deps: service.NewDependencies().
				WithStateStore(mock.NewStateStore()).
				WithNotificationStore(mock.NewNotificationStore()),
		},
		{
			name:    "nil dependencies",
			deps:    nil,
			wantErr: []string{"no dependencies"},
		},
		{
			name:    "missing both stores",
			deps:    service.NewDependencies(),
			wantErr: []string{"state store", "notification store"},
		},
		{
			name:    "missing notification store",
			deps:    service.NewDependencies().WithStateStore(mock.NewStateStore()),
			wantErr: []string{"notification store"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWiring(tt.deps, messages)
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Errorf("ValidateWiring() error = %v, expected nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateWiring() error = nil, expected an error")
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not mention %q", err, want)
				}
			}
		})
	}
}

func TestConfig(t *testing.T) {
	cfg := Config{StoreTimeout: -1}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted a negative timeout")
	}

	defaults := (&Config{}).withDefaults()
	if defaults.StoreTimeout != DefaultStoreTimeout || defaults.Clock == nil {
		t.Errorf("withDefaults() = %+v, expected the default timeout and clock", defaults)
	}
}
