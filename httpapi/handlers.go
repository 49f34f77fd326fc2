package httpapi

import (
	"net/http"

	"jobmatrimony/access"
	"jobmatrimony/catalog"
	"jobmatrimony/domain"
	"jobmatrimony/platform"
	"jobmatrimony/profile"
)

type handlers struct {
	svc *platform.Service
}

type roleResponse struct {
	Role access.Role `json:"role"`
}

type roleRequest struct {
	Role string `json:"role"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type interestRequest struct {
	Recipient domain.Identity `json:"recipient"`
}

type matchRequest struct {
	User               domain.Identity `json:"user"`
	CompatibilityScore int             `json:"compatibilityScore"`
}

type messageRequest struct {
	To      domain.Identity `json:"to"`
	Content string          `json:"content"`
}

// respond writes v with status on success and the mapped error otherwise.
func respond(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	if v == nil {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, v)
}

// authorize rejects callers who may not run op. Handlers that read a body
// call it first so the error class does not depend on the payload.
func (h *handlers) authorize(w http.ResponseWriter, r *http.Request, op access.Operation) bool {
	if err := h.svc.Authorize(r.Context(), identityFrom(r.Context()), op); err != nil {
		writeError(w, r, err)
		return false
	}
	return true
}

func (h *handlers) initialize(w http.ResponseWriter, r *http.Request) {
	role, err := h.svc.InitializeAccessControl(r.Context(), identityFrom(r.Context()))
	respond(w, r, http.StatusOK, roleResponse{Role: role}, err)
}

func (h *handlers) callerRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.svc.GetCallerUserRole(r.Context(), identityFrom(r.Context()))
	respond(w, r, http.StatusOK, roleResponse{Role: role}, err)
}

func (h *handlers) isAdmin(w http.ResponseWriter, r *http.Request) {
	ok, err := h.svc.IsCallerAdmin(r.Context(), identityFrom(r.Context()))
	respond(w, r, http.StatusOK, map[string]bool{"admin": ok}, err)
}

func (h *handlers) assignRole(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.OpAssignRole) {
		return
	}
	var req roleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	err := h.svc.AssignCallerUserRole(r.Context(), identityFrom(r.Context()), identityParam(r, "id"), req.Role)
	respond(w, r, http.StatusNoContent, nil, err)
}

func (h *handlers) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.GetAllUsers(r.Context(), identityFrom(r.Context()))
	respond(w, r, http.StatusOK, users, err)
}

func (h *handlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteUser(r.Context(), identityFrom(r.Context()), identityParam(r, "id"))
	respond(w, r, http.StatusNoContent, nil, err)
}

func (h *handlers) callerProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetCallerUserProfile(r.Context(), identityFrom(r.Context()))
	respond(w, r, http.StatusOK, p, err)
}

func (h *handlers) saveCallerProfile(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.OpSaveProfile) {
		return
	}
	var p profile.UserProfile
	if err := decode(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	err := h.svc.SaveCallerUserProfile(r.Context(), identityFrom(r.Context()), p)
	respond(w, r, http.StatusNoContent, nil, err)
}

func (h *handlers) saveJobProfile(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.OpPutJobProfile) {
		return
	}
	var p profile.JobProfile
	if err := decode(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	err := h.svc.CreateOrUpdateJobProfile(r.Context(), identityFrom(r.Context()), p)
	respond(w, r, http.StatusNoContent, nil, err)
}

func (h *handlers) saveMatrimonialProfile(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.OpPutMatrimonial) {
		return
	}
	var p profile.MatrimonialProfile
	if err := decode(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	err := h.svc.CreateOrUpdateMatrimonialProfile(r.Context(), identityFrom(r.Context()), p)
	respond(w, r, http.StatusNoContent, nil, err)
}

func (h *handlers) userProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetUserProfile(r.Context(), identityFrom(r.Context()), identityParam(r, "id"))
	respond(w, r, http.StatusOK, p, err)
}

func (h *handlers) userJobProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetJobProfile(r.Context(), identityFrom(r.Context()), identityParam(r, "id"))
	respond(w, r, http.StatusOK, p, err)
}

func (h *handlers) userMatrimonialProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetMatrimonialProfile(r.Context(), identityFrom(r.Context()), identityParam(r, "id"))
	respond(w, r, http.StatusOK, p, err)
}

func (h *handlers) listJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.GetJobListings(r.Context(), identityFrom(r.Context()))
	respond(w, r, http.StatusOK, jobs, err)
}

func (h *handlers) createJob(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.OpCreateListing) {
		return
	}
	var l catalog.Listing
	if err := decode(r, &l); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.svc.CreateJobListing(r.Context(), identityFrom(r.Context()), l)
	respond(w, r, http.StatusCreated, created, err)
}

func (h *handlers) getJob(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	l, err := h.svc.GetJobListingByID(r.Context(), identityFrom(r.Context()), id)
	respond(w, r, http.StatusOK, l, err)
}

func (h *handlers) updateJob(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.OpUpdateListing) {
		return
	}
	id, err := int64Param(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var l catalog.Listing
	if err := decode(r, &l); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.svc.UpdateJobListing(r.Context(), identityFrom(r.Context()), id, l)
	respond(w, r, http.StatusOK, updated, err)
}

func (h *handlers) deleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	err = h.svc.DeleteJobListing(r.Context(), identityFrom(r.Context()), id)
	respond(w, r, http.StatusNoContent, nil, err)
}

func (h *handlers) applyForJob(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	app, err := h.svc.ApplyForJob(r.Context(), identityFrom(r.Context()), id)
	respond(w, r, http.StatusCreated, app, err)
}

func (h *handlers) jobApplications(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	apps, err := h.svc.GetJobApplicationsByJobID(r.Context(), identityFrom(r.Context()), id)
	respond(w, r, http.StatusOK, apps, err)
}

func (h *handlers) callerApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.svc.GetCallerJobApplications(r.Context(), identityFrom(r.Context()))
	respond(w, r, http.StatusOK, apps, err)
}

func (h *handlers) applicantApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.svc.GetJobApplicationsByApplicant(r.Context(), identityFrom(r.Context()), identityParam(r, "id"))
	respond(w, r, http.StatusOK, apps, err)
}

func (h *handlers) updateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.OpUpdateAppStatus) {
		return
	}
	id, err := int64Param(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req statusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	app, err := h.svc.UpdateApplicationStatus(r.Context(), identityFrom(r.Context()), id, req.Status)
	respond(w, r, http.StatusOK, app, err)
}

func (h *handlers) sendInterest(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.OpSendInterest) {
		return
	}
	var req interestRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := h.svc.SendInterest(r.Context(), identityFrom(r.Context()), req.Recipient)
	respond(w, r, http.StatusCreated, in, err)
}

func (h *handlers) acceptInterest(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.svc.AcceptInterest(r.Context(), identityFrom(r.Context()), id)
	respond(w, r, http.StatusOK, res, err)
}

func (h *handlers) rejectInterest(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := h.svc.RejectInterest(r.Context(), identityFrom(r.Context()), id)
	respond(w, r, http.StatusOK, in, err)
}

func (h *handlers) sentInterests(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetCallerSentInterests(r.Context(), identityFrom(r.Context()))
	respond(w, r, http.StatusOK, out, err)
}

func (h *handlers) receivedInterests(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetCallerReceivedInterests(r.Context(), identityFrom(r.Context()))
	respond(w, r, http.StatusOK, out, err)
}

func (h *handlers) callerMatches(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetCallerMatches(r.Context(), identityFrom(r.Context()))
	respond(w, r, http.StatusOK, out, err)
}

func (h *handlers) saveMatch(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.OpSaveMatch) {
		return
	}
	var req matchRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := h.svc.SaveMatch(r.Context(), identityFrom(r.Context()), req.User, req.CompatibilityScore)
	respond(w, r, http.StatusCreated, m, err)
}

func (h *handlers) sendMessage(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, access.OpSendMessage) {
		return
	}
	var req messageRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := h.svc.SendMessage(r.Context(), identityFrom(r.Context()), req.To, req.Content)
	respond(w, r, http.StatusCreated, m, err)
}

// conversation serves GET /v1/messages?a=..&b=..
func (h *handlers) conversation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.svc.GetMessages(r.Context(), identityFrom(r.Context()), domain.Identity(q.Get("a")), domain.Identity(q.Get("b")))
	respond(w, r, http.StatusOK, out, err)
}

func (h *handlers) callerMessages(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetCallerMessages(r.Context(), identityFrom(r.Context()), identityParam(r, "other"))
	respond(w, r, http.StatusOK, out, err)
}

func (h *handlers) recommendations(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetRecommendationsForCaller(r.Context(), identityFrom(r.Context()))
	respond(w, r, http.StatusOK, out, err)
}

func (h *handlers) recommendedJobs(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetRecommendedJobsForCaller(r.Context(), identityFrom(r.Context()))
	respond(w, r, http.StatusOK, out, err)
}

func (h *handlers) recommendedMatches(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetRecommendedMatchesForCaller(r.Context(), identityFrom(r.Context()))
	respond(w, r, http.StatusOK, out, err)
}
