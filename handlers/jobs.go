package handlers

import (
	"net/http"

	"github.com/flow-hydraulics/nft-wallet-api/datastore"
	"github.com/flow-hydraulics/nft-wallet-api/jobs"
	"github.com/gorilla/mux"
)

// Jobs is a HTTP server for jobs.
// It provides list and details APIs.
// It uses jobs service to interface with data.
type Jobs struct {
	service *jobs.Service
}

// NewJobs initiates a new jobs server.
func NewJobs(service *jobs.Service) *Jobs {
	return &Jobs{service}
}

func (s *Jobs) List() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		o := datastore.ListOptionsFromQuery(r.FormValue("limit"), r.FormValue("offset"))

		jj, err := s.service.List(o.Limit, o.Offset)
		if err != nil {
			handleError(rw, r, err)
			return
		}

		res := make([]jobs.JSONResponse, len(jj))
		for i, job := range jj {
			res[i] = job.ToJSONResponse()
		}

		handleJsonResponse(rw, http.StatusOK, res)
	})
}

// Details returns details regarding a job.
// It reads the job id for the wanted job from URL.
// Job service is responsible for validating the job id.
func (s *Jobs) Details() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		job, err := s.service.Details(vars["jobId"])
		if err != nil {
			handleError(rw, r, err)
			return
		}

		handleJsonResponse(rw, http.StatusOK, job.ToJSONResponse())
	})
}
