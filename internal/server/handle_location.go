package server

import "net/http"

type LocationRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type LocationResponse struct {
	Recorded bool `json:"recorded"`
}

func handleLocation(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := ownerFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "missing owner identifier")
			return
		}

		var req LocationRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Lat < -90 || req.Lat > 90 || req.Lon < -180 || req.Lon > 180 {
			writeError(w, http.StatusBadRequest, "coordinates out of range")
			return
		}

		if _, err := svc.RecordLocation(r.Context(), owner, req.Lat, req.Lon); err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, LocationResponse{Recorded: true})
	}
}
