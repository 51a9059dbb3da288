package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tigerroll/weekreport/internal/domain/model"
	"github.com/tigerroll/weekreport/pkg/support/exception"
	"github.com/tigerroll/weekreport/pkg/support/logger"
)

type runFarmReq struct {
	FarmNo int `json:"farmNo"`
	// DayGb defaults to WEEK.
	DayGb string `json:"dayGb"`
	// InsDate is the reference date (YYYYMMDD); empty means today.
	InsDate string `json:"insDate"`
}

type runBatchReq struct {
	InsDate       string `json:"insDate"`
	DayGb         string `json:"dayGb"`
	Include       []int  `json:"include"`
	Exclude       []int  `json:"exclude"`
	ScheduleGroup string `json:"scheduleGroup"`
	Force         bool   `json:"force"`
	DryRun        bool   `json:"dryRun"`
}

type farmResp struct {
	MasterSeq  int64  `json:"masterSeq"`
	FarmNo     int    `json:"farmNo"`
	Status     string `json:"status"`
	ShareToken string `json:"shareToken,omitempty"`
	Period     string `json:"period"`
	DtFrom     string `json:"dtFrom"`
	DtTo       string `json:"dtTo"`
	RowCount   int    `json:"rowCount"`
	Error      string `json:"error,omitempty"`
	ElapsedMs  int64  `json:"elapsedMs"`
}

type farmStatusResp struct {
	FarmNo     int    `json:"farmNo"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	ShareToken string `json:"shareToken,omitempty"`
}

type batchResp struct {
	MasterSeq   int64            `json:"masterSeq"`
	RunID       string           `json:"runId,omitempty"`
	Period      string           `json:"period"`
	Status      string           `json:"status"`
	TargetCnt   int              `json:"targetCnt"`
	CompleteCnt int              `json:"completeCnt"`
	ErrorCnt    int              `json:"errorCnt"`
	Farms       []int            `json:"farms"`
	Results     []farmStatusResp `json:"results"`
	ElapsedMs   int64            `json:"elapsedMs"`
	// Error is set when the farms ran but the job outcome could not be recorded.
	Error string `json:"error,omitempty"`
}

type errorResp struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRunFarm(w http.ResponseWriter, r *http.Request) {
	var req runFarmReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.FarmNo <= 0 {
		writeError(w, http.StatusBadRequest, "farmNo is required")
		return
	}
	dayGb, err := model.ParseDayGb(req.DayGb)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	asOf, err := s.referenceDate(req.InsDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "insDate must be YYYYMMDD")
		return
	}

	res, err := s.runner.RunSingle(r.Context(), req.FarmNo, dayGb, asOf)
	if err != nil && res == nil {
		logger.Warnf("run-farm %d failed: %v", req.FarmNo, err)
		writeError(w, statusOf(err), err.Error())
		return
	}
	if err != nil {
		logger.Warnf("run-farm %d finished with a bookkeeping error: %v", req.FarmNo, err)
	}
	writeJSON(w, http.StatusOK, toFarmResp(res))
}

func (s *Server) handleRunBatch(w http.ResponseWriter, r *http.Request) {
	var req runBatchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	dayGb, err := model.ParseDayGb(req.DayGb)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	hint, err := s.referenceDate(req.InsDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "insDate must be YYYYMMDD")
		return
	}

	res, err := s.runner.Run(r.Context(), hint, model.RunOptions{
		DayGb:         dayGb,
		Include:       req.Include,
		Exclude:       req.Exclude,
		ScheduleGroup: strings.TrimSpace(req.ScheduleGroup),
		Force:         req.Force,
		DryRun:        req.DryRun,
	})
	if err != nil {
		logger.Errorf("run-batch failed: %v", err)
		if res == nil {
			writeError(w, statusOf(err), err.Error())
			return
		}
		out := toBatchResp(res)
		out.Error = err.Error()
		writeJSON(w, statusOf(err), out)
		return
	}
	writeJSON(w, http.StatusOK, toBatchResp(res))
}

// referenceDate parses YYYYMMDD, or returns today in the server's timezone.
func (s *Server) referenceDate(ymd string) (time.Time, error) {
	if strings.TrimSpace(ymd) == "" {
		return model.DateOf(s.now(), s.loc), nil
	}
	return model.ParseYMD(strings.TrimSpace(ymd))
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, exception.ErrFarmInFlight):
		return http.StatusConflict
	case errors.Is(err, exception.ErrFarmNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func toFarmResp(r *model.FarmResult) farmResp {
	out := farmResp{
		MasterSeq:  r.MasterSeq,
		FarmNo:     r.FarmNo,
		Status:     r.Status,
		ShareToken: r.ShareToken,
		Period:     r.Period.Key(),
		DtFrom:     r.DtFrom,
		DtTo:       r.DtTo,
		RowCount:   r.RowCount,
		ElapsedMs:  r.Elapsed.Milliseconds(),
	}
	if r.Err != nil {
		out.Error = exception.ExtractErrorMessage(r.Err)
	}
	return out
}

func toBatchResp(r *model.JobResult) batchResp {
	farms := r.Farms
	if farms == nil {
		farms = []int{}
	}
	results := make([]farmStatusResp, 0, len(r.Results))
	for _, fr := range r.Results {
		item := farmStatusResp{FarmNo: fr.FarmNo, Status: fr.Status, ShareToken: fr.ShareToken}
		if fr.Err != nil {
			item.Error = exception.ExtractErrorMessage(fr.Err)
		}
		results = append(results, item)
	}
	return batchResp{
		MasterSeq:   r.MasterSeq,
		RunID:       r.RunID,
		Period:      r.Period.Key(),
		Status:      r.Status,
		TargetCnt:   r.TargetCnt,
		CompleteCnt: r.CompleteCnt,
		ErrorCnt:    r.ErrorCnt,
		Farms:       farms,
		Results:     results,
		ElapsedMs:   r.Elapsed.Milliseconds(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnf("Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResp{Error: msg})
}
