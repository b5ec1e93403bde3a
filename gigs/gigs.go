package gigs

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"gigflow/db"
	"gigflow/middleware"
	"gigflow/models"
	"gigflow/utils"

	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type gigInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Budget      float64 `json:"budget"`
}

func (in *gigInput) validate() string {
	if strings.TrimSpace(in.Title) == "" {
		return "Title is required"
	}
	if strings.TrimSpace(in.Description) == "" {
		return "Description is required"
	}
	if in.Budget <= 0 {
		return "Budget must be a positive number"
	}
	return ""
}

// CreateGig handles POST /api/gigs.
func CreateGig(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ownerID := middleware.UserIDFromContext(r.Context())

	var in gigInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := in.validate(); msg != "" {
		utils.RespondWithError(w, http.StatusBadRequest, msg)
		return
	}

	gig := models.Gig{
		GigID:       utils.GenerateID("g"),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Budget:      in.Budget,
		OwnerID:     ownerID,
		Status:      models.GigStatusOpen,
		CreatedAt:   time.Now(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := db.GigCollection.InsertOne(ctx, gig); err != nil {
		log.Printf("gigs: insert failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create gig")
		return
	}

	utils.RespondWithData(w, http.StatusCreated, gig)
}

// UpdateGig handles PUT /api/gigs/:id. Owner only, and only while the
// gig is still open; an assigned gig is frozen.
func UpdateGig(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	callerID := middleware.UserIDFromContext(r.Context())
	gigID := ps.ByName("id")

	var in gigInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := in.validate(); msg != "" {
		utils.RespondWithError(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var gig models.Gig
	err := db.GigCollection.FindOne(ctx, bson.M{"gigid": gigID}).Decode(&gig)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Gig not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if gig.OwnerID != callerID {
		utils.RespondWithError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	// The status guard in the filter keeps an edit from racing a hire:
	// once the gig flips to assigned the update matches nothing.
	res, err := db.GigCollection.UpdateOne(ctx,
		bson.M{"gigid": gigID, "status": models.GigStatusOpen},
		bson.M{"$set": bson.M{
			"title":       strings.TrimSpace(in.Title),
			"description": strings.TrimSpace(in.Description),
			"budget":      in.Budget,
			"updated_at":  time.Now(),
		}},
	)
	if err != nil {
		log.Printf("gigs: update %s failed: %v", gigID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update gig")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Assigned gigs can no longer be edited")
		return
	}

	db.GigCollection.FindOne(ctx, bson.M{"gigid": gigID}).Decode(&gig)
	utils.RespondWithData(w, http.StatusOK, gig)
}

// DeleteGig handles DELETE /api/gigs/:id, owner only.
func DeleteGig(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	callerID := middleware.UserIDFromContext(r.Context())
	gigID := ps.ByName("id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var gig models.Gig
	err := db.GigCollection.FindOne(ctx, bson.M{"gigid": gigID}).Decode(&gig)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Gig not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if gig.OwnerID != callerID {
		utils.RespondWithError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	if _, err := db.GigCollection.DeleteOne(ctx, bson.M{"gigid": gigID}); err != nil {
		log.Printf("gigs: delete %s failed: %v", gigID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete gig")
		return
	}

	utils.RespondWithData(w, http.StatusOK, utils.M{})
}
