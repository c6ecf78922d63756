package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextPosition(t *testing.T) {
	tests := []struct {
		name        string
		activeCount int
		want        int
	}{
		{name: "empty queue", activeCount: 0, want: 1},
		{name: "one waiting", activeCount: 1, want: 2},
		{name: "busy queue", activeCount: 41, want: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextPosition(tt.activeCount))
		})
	}
}

func TestComputeETA(t *testing.T) {
	tests := []struct {
		name           string
		position       int
		avgServiceTime int
		want           int
	}{
		{name: "front of the queue waits nothing", position: 1, avgServiceTime: 5, want: 0},
		{name: "second in line waits one slot", position: 2, avgServiceTime: 5, want: 5},
		{name: "deep position", position: 10, avgServiceTime: 3, want: 27},
		{name: "zero service time", position: 7, avgServiceTime: 0, want: 0},
		{name: "never negative", position: 0, avgServiceTime: 5, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeETA(tt.position, tt.avgServiceTime))
		})
	}
}
