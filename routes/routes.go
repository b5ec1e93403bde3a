package routes

import (
	"net/http"

	"gigflow/auth"
	"gigflow/bids"
	"gigflow/gigs"
	"gigflow/middleware"
	"gigflow/ratelim"
	"gigflow/ws"

	"github.com/julienschmidt/httprouter"
)

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.Limit(auth.Register))
	router.POST("/api/auth/login", rl.Limit(auth.Login))
	router.POST("/api/auth/logout", auth.Logout)
	router.GET("/api/auth/me", middleware.Authenticate(auth.Me))
}

func AddGigRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/gigs", middleware.OptionalAuth(gigs.GetGigs))
	router.POST("/api/gigs", rl.Limit(middleware.Authenticate(gigs.CreateGig)))
	router.GET("/api/gigs/:id", middleware.OptionalAuth(gigs.GetGig))
	router.PUT("/api/gigs/:id", middleware.Authenticate(gigs.UpdateGig))
	router.DELETE("/api/gigs/:id", middleware.Authenticate(gigs.DeleteGig))
	// /api/gigs/user/my-gigs; httprouter cannot mix a literal segment
	// with the :id wildcard, so the literal is checked in the guard
	router.GET("/api/gigs/:id/my-gigs",
		literal("id", "user", middleware.Authenticate(gigs.GetMyGigs)))
}

func AddBidRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, engine *bids.Engine) {
	router.POST("/api/bids", rl.Limit(middleware.Authenticate(bids.CreateBid(engine))))
	router.PATCH("/api/bids/:bidId/hire", middleware.Authenticate(bids.HireFreelancer(engine)))
	router.GET("/api/bids/:gigId", middleware.Authenticate(bids.GetBidsByGig(engine)))
	// /api/bids/user/my-bids, same wildcard workaround as the gig routes
	router.GET("/api/bids/:gigId/my-bids",
		literal("gigId", "user", middleware.Authenticate(bids.GetMyBids(engine))))
}

func AddNotificationRoutes(router *httprouter.Router, hub *ws.Hub) {
	router.GET("/ws/notifications/:userid", ws.NotificationSocket(hub))
}

// literal 404s unless the named wildcard captured the expected literal
// segment.
func literal(param, want string, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if ps.ByName(param) != want {
			http.NotFound(w, r)
			return
		}
		next(w, r, ps)
	}
}
