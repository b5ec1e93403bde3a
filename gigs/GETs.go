package gigs

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"gigflow/db"
	"gigflow/middleware"
	"gigflow/models"
	"gigflow/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetGigs handles GET /api/gigs. Public. Defaults to open gigs; ?status=
// overrides, ?search= does a case-insensitive match over title and
// description.
func GetGigs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := bson.M{}

	status := r.URL.Query().Get("status")
	if status == "" {
		query["status"] = models.GigStatusOpen
	} else if models.ValidGigStatus(status) {
		query["status"] = status
	} else {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown status filter")
		return
	}

	if search := r.URL.Query().Get("search"); search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		query["$or"] = []bson.M{
			{"title": pattern},
			{"description": pattern},
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := db.GigCollection.Find(ctx, query, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch gigs")
		return
	}
	defer cursor.Close(ctx)

	var gigs []models.Gig
	if err := cursor.All(ctx, &gigs); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode gigs")
		return
	}

	populateOwners(ctx, gigs)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"count":   len(gigs),
		"data":    gigs,
	})
}

// GetGig handles GET /api/gigs/:id. Public.
func GetGig(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var gig models.Gig
	err := db.GigCollection.FindOne(ctx, bson.M{"gigid": ps.ByName("id")}).Decode(&gig)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Gig not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	gigSlice := []models.Gig{gig}
	populateOwners(ctx, gigSlice)
	utils.RespondWithData(w, http.StatusOK, gigSlice[0])
}

// GetMyGigs handles GET /api/gigs/user/my-gigs with an optional status
// filter.
func GetMyGigs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	callerID := middleware.UserIDFromContext(r.Context())

	query := bson.M{"ownerid": callerID}
	if status := r.URL.Query().Get("status"); models.ValidGigStatus(status) {
		query["status"] = status
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := db.GigCollection.Find(ctx, query, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch gigs")
		return
	}
	defer cursor.Close(ctx)

	var gigs []models.Gig
	if err := cursor.All(ctx, &gigs); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode gigs")
		return
	}

	populateOwners(ctx, gigs)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"count":   len(gigs),
		"data":    gigs,
	})
}

// populateOwners attaches owner summaries, one lookup per distinct owner.
func populateOwners(ctx context.Context, gigs []models.Gig) {
	cache := map[string]*models.UserSummary{}
	for i := range gigs {
		ownerID := gigs[i].OwnerID
		if summary, ok := cache[ownerID]; ok {
			gigs[i].Owner = summary
			continue
		}
		var user models.User
		if err := db.UserCollection.FindOne(ctx, bson.M{"userid": ownerID}).Decode(&user); err != nil {
			continue
		}
		cache[ownerID] = user.Summary()
		gigs[i].Owner = cache[ownerID]
	}
}
