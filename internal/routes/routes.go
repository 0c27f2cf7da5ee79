package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/kalimapp/kalima-backend/internal/handlers"
)

// Deps carries the handler groups that need injected services.
type Deps struct {
	Tutor         *handlers.Tutor
	Subscriptions *handlers.Subscriptions
	Uploads       *handlers.Uploads
	Admin         *handlers.Admin
}

func SetupRoutes(r *chi.Mux, deps Deps) {
	// Auth routes (username-only accounts)
	r.Post("/api/auth/signup", handlers.Signup)
	r.Post("/api/auth/signin", handlers.Signin)
	r.Get("/api/auth/me", handlers.GetMe)
	r.Post("/api/auth/logout", handlers.Logout)
	r.Post("/api/auth/check-username", handlers.CheckUsername)

	// Gameplay progress routes
	r.Get("/api/progress/sync", handlers.SyncProgress)
	r.Post("/api/progress/lesson", handlers.CompleteLesson)
	r.Post("/api/progress/life/lose", handlers.LoseLife)
	r.Post("/api/progress/ad-reward", handlers.ClaimAdReward)
	r.Post("/api/progress/reset", handlers.ResetProgress)

	// Weekly leaderboard
	r.Get("/api/leaderboard", handlers.GetLeaderboard)

	// AI tutor (MongoDB history + Redis context)
	r.Post("/api/tutor/message", deps.Tutor.SendMessage)
	r.Get("/api/tutor/history", deps.Tutor.GetHistory)
	r.Delete("/api/tutor/history", deps.Tutor.ClearHistory)

	// WebSocket endpoint for streaming-style tutor chat
	r.Get("/ws/tutor", deps.Tutor.Chat)

	// Subscription (RevenueCat) routes
	r.Post("/api/subscription/sync", deps.Subscriptions.Sync)
	r.Get("/api/subscription/status", deps.Subscriptions.Status)

	// Avatar upload
	r.Post("/api/upload/avatar", deps.Uploads.UploadAvatar)

	// Feedback routes
	r.Post("/api/feedback", handlers.SubmitFeedback)

	// Admin moderation routes
	r.Get("/api/admin/violations", deps.Admin.ListViolations)
	r.Get("/api/admin/blocked-ips", deps.Admin.ListBlockedIPs)
	r.Post("/api/admin/block-ip", deps.Admin.BlockIP)
	r.Put("/api/admin/unblock-ip", deps.Admin.UnblockIP)
	r.Get("/api/admin/users", deps.Admin.ListUsers)
	r.Put("/api/admin/users/deactivate", deps.Admin.DeactivateUser)
	r.Get("/api/admin/feedbacks", deps.Admin.ListFeedback)
}
