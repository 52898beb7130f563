package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionAllowsGraphEdges(t *testing.T) {
	allowed := [][2]RequestStatus{
		{StatusSent, StatusReceived},
		{StatusSent, StatusApproved},
		{StatusSent, StatusDone},
		{StatusReceived, StatusApproved},
		{StatusReceived, StatusDone},
		{StatusApproved, StatusInCellule},
		{StatusApproved, StatusDone},
		{StatusInCellule, StatusReturned},
		{StatusReturned, StatusDone},
	}
	for _, edge := range allowed {
		assert.True(t, CanTransition(edge[0], edge[1]), "%s -> %s", edge[0], edge[1])
	}
}

func TestCanTransitionRejectsRegressionsAndSkips(t *testing.T) {
	statuses := []RequestStatus{StatusSent, StatusReceived, StatusApproved, StatusInCellule, StatusReturned, StatusDone}

	// done is terminal
	for _, to := range statuses {
		assert.False(t, CanTransition(StatusDone, to))
	}

	denied := [][2]RequestStatus{
		{StatusReceived, StatusSent},
		{StatusApproved, StatusReceived},
		{StatusSent, StatusInCellule},
		{StatusReceived, StatusInCellule},
		{StatusInCellule, StatusDone},
		{StatusReturned, StatusApproved},
	}
	for _, edge := range denied {
		assert.False(t, CanTransition(edge[0], edge[1]), "%s -> %s", edge[0], edge[1])
	}
}

func TestCanEditOnlyWhileSent(t *testing.T) {
	req := &Request{Status: StatusSent}
	require.True(t, req.CanEdit())

	for _, status := range []RequestStatus{StatusReceived, StatusApproved, StatusInCellule, StatusReturned, StatusDone} {
		req.Status = status
		require.False(t, req.CanEdit(), string(status))
	}
}

func TestStatusLabelsSeparateFromEnum(t *testing.T) {
	assert.Equal(t, "In IT cell", StatusInCellule.Label())
	assert.Equal(t, "Done", StatusDone.Label())
	assert.Equal(t, "mystery", RequestStatus("mystery").Label())
}
