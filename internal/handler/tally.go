// tally.go implements GET /trips/{tripID}/tally.
// Returns one row per proposal with its vote count and voters.
// Supports content negotiation via ?format=csv (CSV) or default (JSON).

package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{"proposal_id", "kind", "title", "is_chosen", "votes", "voters"}

type tallyRowResponse struct {
	ProposalID openapi_types.UUID `json:"proposal_id"`
	Kind       string             `json:"kind"`
	Title      string             `json:"title"`
	IsChosen   bool               `json:"is_chosen"`
	Votes      int                `json:"votes"`
	Voters     []string           `json:"voters"`
}

// GetTally handles GET /trips/{tripID}/tally.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetTally(w http.ResponseWriter, r *http.Request) {
	req, err := parseTripRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rows, err := s.svc.Tally.Tally(r.Context(), req.tripID, req.caller)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		body := buildCSV(rows)
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="tally.csv"`)
		w.Header().Set("Content-Length", strconv.Itoa(body.Len()))
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		body.WriteTo(w)
		return
	}

	out := make([]tallyRowResponse, len(rows))
	for i, row := range rows {
		out[i] = tallyRowResponse{
			ProposalID: row.ProposalID,
			Kind:       string(row.Kind),
			Title:      row.Title,
			IsChosen:   row.IsChosen,
			Votes:      row.Votes,
			Voters:     row.Voters,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// buildCSV encodes the rows as CSV. Voters within a row are pipe-separated
// ("|") to keep each proposal on a single CSV line.
func buildCSV(rows []domain.TallyRow) *bytes.Buffer {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	w.Write(csvHeaders)
	for _, row := range rows {
		//nolint:errcheck
		w.Write([]string{
			row.ProposalID.String(),
			string(row.Kind),
			row.Title,
			strconv.FormatBool(row.IsChosen),
			strconv.Itoa(row.Votes),
			strings.Join(row.Voters, "|"),
		})
	}
	w.Flush()
	return &buf
}
