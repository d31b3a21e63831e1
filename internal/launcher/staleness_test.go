package launcher

import (
	"testing"
	"time"
)

func TestEvaluate(t *testing.T) {
	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		cond Condition
		want State
	}{
		{
			name: "no marker",
			cond: Condition{},
			want: StateNotProvisioned,
		},
		{
			name: "no marker ignores running container",
			cond: Condition{ContainerRunning: true},
			want: StateNotProvisioned,
		},
		{
			name: "marker present but container gone",
			cond: Condition{MarkerExists: true, MarkerModTime: base},
			want: StateStale,
		},
		{
			name: "dockerfile newer than marker",
			cond: Condition{
				MarkerExists:      true,
				ContainerRunning:  true,
				DockerfileExists:  true,
				DockerfileModTime: base.Add(time.Minute),
				MarkerModTime:     base,
			},
			want: StateStale,
		},
		{
			name: "dockerfile older than marker",
			cond: Condition{
				MarkerExists:      true,
				ContainerRunning:  true,
				DockerfileExists:  true,
				DockerfileModTime: base.Add(-time.Minute),
				MarkerModTime:     base,
			},
			want: StateFresh,
		},
		{
			name: "no dockerfile and running",
			cond: Condition{MarkerExists: true, ContainerRunning: true, MarkerModTime: base},
			want: StateFresh,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(tc.cond); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
