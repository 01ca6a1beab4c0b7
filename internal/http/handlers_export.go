package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"fintrack/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleExportWorkbook(w http.ResponseWriter, r *http.Request) {
	userID, month, ok := s.monthScope(w, r)
	if !ok {
		return
	}
	rep, err := s.deps.Reports.Build(r.Context(), userID, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// rendered to a buffer so a failure can still produce a JSON error
	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, rep); err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="fintrack-%s.xlsx"`, month.String()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
