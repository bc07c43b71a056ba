package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialStatus(t *testing.T) {
	tests := []struct {
		name       string
		moderation bool
		limit      int
		want       RequestStatus
	}{
		{"moderated with limit", true, 10, RequestStatusPending},
		{"moderated without limit", true, 0, RequestStatusConfirmed},
		{"not moderated with limit", false, 10, RequestStatusConfirmed},
		{"not moderated without limit", false, 0, RequestStatusConfirmed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InitialStatus(tt.moderation, tt.limit))
		})
	}
}

func TestLimitReached(t *testing.T) {
	assert.False(t, LimitReached(0, 1000))
	assert.False(t, LimitReached(3, 2))
	assert.True(t, LimitReached(3, 3))
	assert.True(t, LimitReached(3, 4))
}

func reqs(ids ...int64) []*ParticipationRequest {
	out := make([]*ParticipationRequest, 0, len(ids))
	for _, id := range ids {
		out = append(out, &ParticipationRequest{ID: id, Status: RequestStatusPending})
	}
	return out
}

func ids(rs []*ParticipationRequest) []int64 {
	out := make([]int64, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestAdmitBatch(t *testing.T) {
	tests := []struct {
		name         string
		limit        int
		confirmed    int64
		batch        []*ParticipationRequest
		wantAdmitted []int64
		wantRejected []int64
		wantConflict bool
	}{
		{
			name:         "overflow spills to rejected in input order",
			limit:        3,
			confirmed:    1,
			batch:        reqs(10, 11, 12),
			wantAdmitted: []int64{10, 11},
			wantRejected: []int64{12},
		},
		{
			name:         "input order decides who gets the last seat",
			limit:        3,
			confirmed:    2,
			batch:        reqs(12, 10, 11),
			wantAdmitted: []int64{12},
			wantRejected: []int64{10, 11},
		},
		{
			name:         "no limit admits everyone",
			limit:        0,
			confirmed:    50,
			batch:        reqs(1, 2, 3),
			wantAdmitted: []int64{1, 2, 3},
			wantRejected: []int64{},
		},
		{
			name:         "limit already reached",
			limit:        2,
			confirmed:    2,
			batch:        reqs(1, 2, 3),
			wantConflict: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admitted, rejected, err := AdmitBatch(tt.limit, tt.confirmed, tt.batch)
			if tt.wantConflict {
				require.Error(t, err)
				require.True(t, errors.Is(err, ErrConflict))
				require.Nil(t, admitted)
				require.Nil(t, rejected)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAdmitted, ids(admitted))
			assert.Equal(t, tt.wantRejected, ids(rejected))
		})
	}
}

func TestDedupeIDs(t *testing.T) {
	assert.Equal(t, []int64{3, 1, 2}, DedupeIDs([]int64{3, 1, 3, 2, 1}))
	assert.Equal(t, []int64{}, DedupeIDs(nil))
}

func TestParseRequestStatus(t *testing.T) {
	st, err := ParseRequestStatus("CONFIRMED")
	require.NoError(t, err)
	assert.Equal(t, RequestStatusConfirmed, st)

	_, err = ParseRequestStatus("APPROVED")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadRequest))
}

func TestPaginationParams_Offset(t *testing.T) {
	assert.Equal(t, 0, PaginationParams{From: 0, Size: 10}.Offset())
	assert.Equal(t, 10, PaginationParams{From: 15, Size: 10}.Offset())
	assert.Equal(t, 0, PaginationParams{From: 5, Size: 0}.Offset())
}
