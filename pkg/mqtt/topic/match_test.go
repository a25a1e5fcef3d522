package topic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		filter string
		topic  string
		want   bool
	}{
		{"PTIN2023/CAR/STARTROUTE", "PTIN2023/CAR/STARTROUTE", true},
		{"PTIN2023/CAR/STARTROUTE", "PTIN2023/CAR/ANOMALIA", false},
		{"PTIN2023/#", "PTIN2023/CAR/ANOMALIA", true},
		{"PTIN2023/+/ANOMALIA", "PTIN2023/CAR/ANOMALIA", true},
		{"PTIN2023/+", "PTIN2023/CAR/ANOMALIA", false},
		{"PTIN2023/CAR/+/x", "PTIN2023/CAR/ANOMALIA", false},
		{"$share/fleet/PTIN2023/CAR/+", "PTIN2023/CAR/ANOMALIA", true},
	}
	for _, tt := range tests {
		t.Run(tt.filter+"|"+tt.topic, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.filter, tt.topic))
		})
	}
}
