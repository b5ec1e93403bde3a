package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"gigflow/db"
	"gigflow/globals"
	"gigflow/middleware"
	"gigflow/models"
	"gigflow/rdx"
	"gigflow/utils"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 30 * 24 * time.Hour // 30 days, matches the cookie

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func registerHandler(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.Email == "" || len(in.Password) < 6 {
		utils.RespondWithError(w, http.StatusBadRequest, "Name, email and a password of at least 6 characters are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var existing models.User
	err := db.UserCollection.FindOne(ctx, bson.M{"email": in.Email}).Decode(&existing)
	if err == nil {
		utils.RespondWithError(w, http.StatusBadRequest, "User already exists")
		return
	} else if err != mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("auth: hash failed for %s: %v", in.Email, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	user := models.User{
		UserID:    utils.GenerateID("u"),
		Name:      in.Name,
		Email:     in.Email,
		Password:  string(hashed),
		CreatedAt: time.Now(),
	}

	if _, err := db.UserCollection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusBadRequest, "User already exists")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	log.WithFields(log.Fields{"userid": user.UserID}).Info("user registered")

	if err := issueToken(w, &user); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	utils.RespondWithData(w, http.StatusCreated, user.Summary())
}

func loginHandler(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"email": in.Email}).Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if _, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"userid": user.UserID},
		bson.M{"$set": bson.M{"last_login": time.Now()}},
	); err != nil {
		log.Printf("auth: last_login update for %s: %v", user.UserID, err)
	}

	if err := issueToken(w, &user); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	utils.RespondWithData(w, http.StatusOK, user.Summary())
}

func logoutHandler(w http.ResponseWriter, r *http.Request) {
	if token := middleware.TokenFromRequest(r); token != "" {
		claims := &middleware.Claims{}
		if _, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
			return globals.JwtSecret, nil
		}); err == nil {
			if _, err := rdx.RdxHdel("tokki", claims.UserID); err != nil {
				log.Printf("auth: token cache delete for %s: %v", claims.UserID, err)
			}
		}
	}

	clearTokenCookie(w)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Logged out successfully"})
}

// meHandler returns the authenticated user. The route sits behind
// middleware.Authenticate, so a missing id means an expired context.
func meHandler(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Not authorized to access this route")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": userID}).Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "User not found")
		return
	}
	utils.RespondWithData(w, http.StatusOK, user.Summary())
}

// issueToken signs a JWT, caches it in Redis and sets the httpOnly
// cookie browser clients authenticate with. API clients can use the
// same token as a Bearer header.
func issueToken(w http.ResponseWriter, user *models.User) error {
	claims := &middleware.Claims{
		Name:   user.Name,
		UserID: user.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(globals.JwtSecret)
	if err != nil {
		return err
	}

	// Best-effort cache of live tokens per user.
	if err := rdx.RdxHset("tokki", user.UserID, tokenString); err != nil {
		log.Printf("auth: token cache store for %s: %v", user.UserID, err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    tokenString,
		Path:     "/",
		MaxAge:   int(tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   os.Getenv("ENV") == "production",
		SameSite: sameSiteMode(),
	})
	w.Header().Set("X-Auth-Token", fmt.Sprintf("Bearer %s", tokenString))
	return nil
}

func clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   os.Getenv("ENV") == "production",
		SameSite: sameSiteMode(),
	})
}

// Cross-site production deployments need None+Secure; Lax keeps local
// dev on a different port working.
func sameSiteMode() http.SameSite {
	if os.Getenv("ENV") == "production" {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
