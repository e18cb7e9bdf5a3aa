package handler_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/handler"
)

type mockTallyServicer struct {
	tally func(ctx context.Context, tripID, caller uuid.UUID) ([]domain.TallyRow, error)
}

func (m *mockTallyServicer) Tally(ctx context.Context, tripID, caller uuid.UUID) ([]domain.TallyRow, error) {
	return m.tally(ctx, tripID, caller)
}

var _ handler.TallyServicer = (*mockTallyServicer)(nil)

func tallyFixture() []domain.TallyRow {
	return []domain.TallyRow{
		{ProposalID: uuid.New(), Kind: domain.KindDateOption, Title: "June 3", Votes: 2, Voters: []string{"Ana", "Guest 1"}},
		{ProposalID: uuid.New(), Kind: domain.KindTerm, Title: "No pets", IsChosen: true, Votes: 0, Voters: []string{}},
	}
}

func TestGetTally_JSON(t *testing.T) {
	svc := &mockTallyServicer{tally: func(context.Context, uuid.UUID, uuid.UUID) ([]domain.TallyRow, error) {
		return tallyFixture(), nil
	}}

	rec := do(t, newHTTPHandler(handler.Services{Tally: svc}), http.MethodGet,
		"/trips/"+uuid.New().String()+"/tally", nil, uuid.New())

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 2)
	assert.EqualValues(t, 2, resp[0]["votes"])
	assert.Equal(t, []any{"Ana", "Guest 1"}, resp[0]["voters"])
	assert.Equal(t, []any{}, resp[1]["voters"])
}

func TestGetTally_CSV(t *testing.T) {
	rows := tallyFixture()
	svc := &mockTallyServicer{tally: func(context.Context, uuid.UUID, uuid.UUID) ([]domain.TallyRow, error) {
		return rows, nil
	}}

	rec := do(t, newHTTPHandler(handler.Services{Tally: svc}), http.MethodGet,
		"/trips/"+uuid.New().String()+"/tally?format=csv", nil, uuid.New())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "tally.csv")

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"proposal_id", "kind", "title", "is_chosen", "votes", "voters"}, records[0])
	assert.Equal(t, []string{rows[0].ProposalID.String(), "date_option", "June 3", "false", "2", "Ana|Guest 1"}, records[1])
	assert.Equal(t, []string{rows[1].ProposalID.String(), "term", "No pets", "true", "0", ""}, records[2])
}
