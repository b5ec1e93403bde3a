package bids

import (
	"encoding/json"
	"errors"
	"net/http"

	"gigflow/middleware"
	"gigflow/utils"

	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"
)

type createBidRequest struct {
	GigID   string  `json:"gigId"`
	Message string  `json:"message"`
	Price   float64 `json:"price"`
}

// CreateBid handles POST /api/bids.
func CreateBid(engine *Engine) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		callerID := middleware.UserIDFromContext(r.Context())

		var req createBidRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		bid, err := engine.SubmitBid(r.Context(), req.GigID, callerID, req.Message, req.Price)
		if err != nil {
			respondBidError(w, err)
			return
		}
		utils.RespondWithData(w, http.StatusCreated, bid)
	}
}

// HireFreelancer handles PATCH /api/bids/:bidId/hire.
func HireFreelancer(engine *Engine) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		callerID := middleware.UserIDFromContext(r.Context())

		result, err := engine.Hire(r.Context(), ps.ByName("bidId"), callerID)
		if err != nil {
			respondBidError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"success": true,
			"data":    utils.M{"bid": result.Bid, "gig": result.Gig},
			"message": "Freelancer hired successfully",
		})
	}
}

// GetBidsByGig handles GET /api/bids/:gigId, gig owner only.
func GetBidsByGig(engine *Engine) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		callerID := middleware.UserIDFromContext(r.Context())

		out, err := engine.ListForGig(r.Context(), ps.ByName("gigId"), callerID)
		if err != nil {
			respondBidError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"success": true,
			"count":   len(out),
			"data":    out,
		})
	}
}

// GetMyBids handles GET /api/bids/user/my-bids.
func GetMyBids(engine *Engine) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		callerID := middleware.UserIDFromContext(r.Context())

		out, err := engine.ListForFreelancer(r.Context(), callerID)
		if err != nil {
			respondBidError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"success": true,
			"count":   len(out),
			"data":    out,
		})
	}
}

// respondBidError maps engine errors onto the REST contract.
func respondBidError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrGigNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Gig not found")
	case errors.Is(err, ErrBidNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Bid not found")
	case errors.Is(err, ErrNotOwner):
		utils.RespondWithError(w, http.StatusUnauthorized, "Not authorized for this gig")
	case errors.Is(err, ErrInvalidInput):
		utils.RespondWithError(w, http.StatusBadRequest, "A gig, a message and a positive price are required")
	case errors.Is(err, ErrGigClosed):
		utils.RespondWithError(w, http.StatusBadRequest, "This gig is no longer accepting bids")
	case errors.Is(err, ErrSelfBid):
		utils.RespondWithError(w, http.StatusBadRequest, "You cannot bid on your own gig")
	case errors.Is(err, ErrAlreadyBid):
		utils.RespondWithError(w, http.StatusBadRequest, "You have already bid on this gig")
	case errors.Is(err, ErrGigAssigned):
		utils.RespondWithError(w, http.StatusConflict,
			"This gig has already been assigned to another freelancer. Please refresh the page.")
	case errors.Is(err, ErrBidProcessed):
		utils.RespondWithError(w, http.StatusConflict,
			"This bid has already been processed. Please refresh the page.")
	default:
		log.Printf("bids: internal error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
